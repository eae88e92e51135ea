package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"storefront-merchandising-service/internal/countdown"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "merchctl",
		Short:         "Storefront merchandising operator tool",
		Long:          "Preview homepage sections from a product dump, run campaign countdowns and query a running service.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newCurateCmd(), newCountdownCmd(), newHomepageCmd(), newWatchCmd())
	return root
}

// readJSONFile decodes path into v.
func readJSONFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatSnapshot(s countdown.Snapshot) string {
	if s.State == countdown.Expired {
		return fmt.Sprintf("campaign %d: expired", s.CampaignID)
	}
	return fmt.Sprintf("campaign %d: %dd %02dh %02dm %02ds", s.CampaignID, s.Days, s.Hours, s.Minutes, s.Seconds)
}
