package main

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"storefront-merchandising-service/internal/clock"
	"storefront-merchandising-service/internal/countdown"
	"storefront-merchandising-service/internal/domain"
)

func newCountdownCmd() *cobra.Command {
	var (
		endsAt     string
		campaignID int64
		tick       time.Duration
	)
	cmd := &cobra.Command{
		Use:   "countdown",
		Short: "Run a local countdown to the given end time",
		RunE: func(cmd *cobra.Command, args []string) error {
			end, err := time.Parse(time.RFC3339, endsAt)
			if err != nil {
				return fmt.Errorf("invalid --ends-at: %w", err)
			}
			return runCountdown(cmd, &domain.Campaign{ID: campaignID, EndsAt: end}, tick)
		},
	}
	cmd.Flags().StringVar(&endsAt, "ends-at", "", "Campaign end time (RFC3339)")
	cmd.Flags().Int64Var(&campaignID, "campaign-id", 0, "Campaign id shown in the output")
	cmd.Flags().DurationVar(&tick, "tick", time.Second, "Tick interval")
	_ = cmd.MarkFlagRequired("ends-at")
	return cmd
}

func runCountdown(cmd *cobra.Command, campaign *domain.Campaign, tick time.Duration) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	timer := countdown.NewTimer(clock.Real{}, tick)
	timer.Start(ctx, campaign, func(s countdown.Snapshot) { fmt.Fprintln(out, formatSnapshot(s)) })
	<-timer.Done()
	timer.Stop()
	return nil
}
