package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/inodb/genomic-db/internal/model"
	"github.com/inodb/genomic-db/internal/output"
)

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show [genome...]",
		Short: "Show genomes with their chromosomes and genes",
		Example: `  genomicdb show
  genomicdb show "Example Genome"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := a.openEngine()
			if err != nil {
				return err
			}
			defer eng.Close()

			s := eng.NewSession(cmd.Context())
			defer s.Close()

			var genomes []model.Genome
			if len(args) == 0 {
				if genomes, err = s.LoadAllGenomeTrees(); err != nil {
					return err
				}
			}
			for _, name := range args {
				g, err := s.LoadGenomeTree(name)
				if err != nil {
					return err
				}
				if g == nil {
					return fmt.Errorf("genome %q not found", name)
				}
				genomes = append(genomes, *g)
			}

			if len(genomes) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No genomes found.")
				return nil
			}
			tw := output.NewTreeWriter(cmd.OutOrStdout())
			for i := range genomes {
				if err := tw.Write(&genomes[i]); err != nil {
					return err
				}
			}
			return tw.Flush()
		},
	}
}
