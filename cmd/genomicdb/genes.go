package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/inodb/genomic-db/internal/output"
)

func newGenesCmd(a *app) *cobra.Command {
	var (
		genome   string
		noHeader bool
	)

	cmd := &cobra.Command{
		Use:   "genes",
		Short: "List a genome's genes with their chromosome",
		Long:  "Write one tab-delimited row per gene: gene, chromosome, genome, start, end, strand, length.",
		Example: `  genomicdb genes --genome "Example Genome"
  genomicdb genes --genome GRCh38 --no-header | sort -k7,7n`,
		Args: withUsage(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := a.openEngine()
			if err != nil {
				return err
			}
			defer eng.Close()

			s := eng.NewSession(cmd.Context())
			defer s.Close()

			genes, err := s.GenesByGenomeName(genome)
			if err != nil {
				return err
			}
			if len(genes) == 0 {
				g, err := s.FindGenomeByName(genome)
				if err != nil {
					return err
				}
				if g == nil {
					return fmt.Errorf("genome %q not found", genome)
				}
			}

			tw := output.NewGeneTabWriter(cmd.OutOrStdout())
			if !noHeader {
				if err := tw.WriteHeader(); err != nil {
					return err
				}
			}
			for i := range genes {
				if err := tw.Write(&genes[i]); err != nil {
					return err
				}
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVarP(&genome, "genome", "g", "", "Genome name (required)")
	cmd.Flags().BoolVar(&noHeader, "no-header", false, "Omit the header line")
	_ = cmd.MarkFlagRequired("genome")
	return cmd
}
