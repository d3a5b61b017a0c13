package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/inodb/genomic-db/internal/duckdb"
	"github.com/inodb/genomic-db/internal/model"
)

func newExportCmd(a *app) *cobra.Command {
	var (
		outputPath string
		genomes    []string
		replace    bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export genomes to a DuckDB file for analysis",
		Long: `Copy genomes with their chromosomes and genes into a DuckDB database.
Genomes already in the file are replaced. Gene lengths are stored in the
genes.length column.`,
		Example: `  genomicdb export --output genomics.duckdb
  genomicdb export -o genomics.duckdb --genome "Example Genome"
  duckdb genomics.duckdb "SELECT name, length FROM genes ORDER BY length DESC"`,
		Args: withUsage(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := a.openEngine()
			if err != nil {
				return err
			}
			defer eng.Close()

			ctx := cmd.Context()
			s := eng.NewSession(ctx)
			defer s.Close()

			var trees []model.Genome
			if len(genomes) == 0 {
				if trees, err = s.LoadAllGenomeTrees(); err != nil {
					return err
				}
			}
			for _, name := range genomes {
				g, err := s.LoadGenomeTree(name)
				if err != nil {
					return err
				}
				if g == nil {
					return fmt.Errorf("genome %q not found", name)
				}
				trees = append(trees, *g)
			}
			version, err := eng.SchemaVersion(ctx)
			if err != nil {
				return err
			}

			start := time.Now()
			db, err := duckdb.Open(outputPath)
			if err != nil {
				return err
			}
			defer db.Close()

			if replace {
				if err := db.Clear(); err != nil {
					return err
				}
			}
			if err := db.WriteGenomes(trees); err != nil {
				return fmt.Errorf("export genomes: %w", err)
			}
			if err := db.WriteSnapshot(duckdb.Snapshot{
				SourceDriver:  string(eng.Driver()),
				SchemaVersion: version,
				Genomes:       len(trees),
				ExportedAt:    start,
			}); err != nil {
				return err
			}

			a.logger.Info("export complete",
				zap.String("output", outputPath),
				zap.Int("genomes", len(trees)),
				zap.Duration("elapsed", time.Since(start)))
			return printStats(cmd, db)
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "DuckDB output file (required)")
	cmd.Flags().StringSliceVarP(&genomes, "genome", "g", nil, "Genome to export (repeatable, default: all)")
	cmd.Flags().BoolVar(&replace, "replace", false, "Remove everything in the file before exporting")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

func printStats(cmd *cobra.Command, db *duckdb.Store) error {
	out := cmd.OutOrStdout()
	for _, table := range []string{"genomes", "chromosomes", "genes"} {
		n, err := db.Count(table)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%-12s %d\n", table, n)
	}

	stats, err := db.ChromosomeStats()
	if err != nil {
		return err
	}
	for _, st := range stats {
		fmt.Fprintf(out, "  %s/%s: %d genes, %d bp in genes, longest %d\n",
			st.Genome, st.Chromosome, st.Genes, st.GeneBases, st.LongestGene)
	}
	return nil
}
