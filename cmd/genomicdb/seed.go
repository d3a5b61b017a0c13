package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/inodb/genomic-db/internal/output"
	"github.com/inodb/genomic-db/internal/sample"
)

func newSeedCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the example genome",
		Long: `Create "` + sample.GenomeName + `" with two chromosomes and three genes.
Nothing is written if a genome with that name already exists.`,
		Args: withUsage(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := a.openEngine()
			if err != nil {
				return err
			}
			defer eng.Close()

			genome, created, err := sample.Seed(cmd.Context(), eng)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !created {
				fmt.Fprintf(out, "Sample data already exists: %s\n", genome)
				return nil
			}

			fmt.Fprintf(out, "Created sample data:\n")
			tw := output.NewTreeWriter(out)
			if err := tw.Write(genome); err != nil {
				return err
			}
			return tw.Flush()
		},
	}
}
