package main

import (
	"fmt"
	"math/rand/v2"

	"github.com/spf13/cobra"

	"storefront-merchandising-service/internal/domain"
	"storefront-merchandising-service/internal/merch"
)

type curateOptions struct {
	poolFile     string
	campaignFile string
	rulesFile    string
	section      string
	seed         uint64
}

func newCurateCmd() *cobra.Command {
	var opts curateOptions
	cmd := &cobra.Command{
		Use:   "curate",
		Short: "Curate homepage sections from a JSON product dump",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCurate(cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.poolFile, "pool", "", "JSON file with the product pool (array of products)")
	cmd.Flags().StringVar(&opts.campaignFile, "campaign", "", "JSON file with the active campaign")
	cmd.Flags().StringVar(&opts.rulesFile, "rules", "", "YAML rules file (default: embedded rules)")
	cmd.Flags().StringVar(&opts.section, "section", "", "Only curate this section and show which strategy won")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 0, "Seed for shuffled sections (default: random)")
	_ = cmd.MarkFlagRequired("pool")
	return cmd
}

func runCurate(cmd *cobra.Command, opts curateOptions) error {
	rules, err := merch.LoadRules(opts.rulesFile)
	if err != nil {
		return err
	}

	var pool []domain.Product
	if err := readJSONFile(opts.poolFile, &pool); err != nil {
		return err
	}
	var campaign *domain.Campaign
	if opts.campaignFile != "" {
		campaign = new(domain.Campaign)
		if err := readJSONFile(opts.campaignFile, campaign); err != nil {
			return err
		}
	}

	var curatorOpts []merch.Option
	if cmd.Flags().Changed("seed") {
		curatorOpts = append(curatorOpts, merch.WithSource(rand.New(rand.NewPCG(opts.seed, opts.seed))))
	}
	curator := merch.NewCurator(rules, curatorOpts...)

	if opts.section == "" {
		return writeJSON(cmd.OutOrStdout(), curator.CurateHomepage(pool, campaign))
	}

	name, ok := merch.ParseSection(opts.section)
	if !ok {
		return fmt.Errorf("unknown section %q", opts.section)
	}
	res, ok := curator.Section(pool, campaign, name)
	if !ok {
		return fmt.Errorf("section %q is not curated from the pool", opts.section)
	}
	return writeJSON(cmd.OutOrStdout(), res)
}
