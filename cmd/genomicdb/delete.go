package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/inodb/genomic-db/internal/store"
)

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <genome>",
		Short: "Delete a genome with all of its chromosomes and genes",
		Args:  withUsage(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := a.openEngine()
			if err != nil {
				return err
			}
			defer eng.Close()

			name := args[0]
			var chromosomes, genes int64
			err = eng.WithSession(cmd.Context(), func(s *store.Session) error {
				g, err := s.FindGenomeByName(name)
				if err != nil {
					return err
				}
				if g == nil {
					return fmt.Errorf("genome %q not found", name)
				}
				if chromosomes, genes, err = s.CountGenomeDescendants(g.ID); err != nil {
					return err
				}
				s.Delete(g)
				return nil
			})
			if err != nil {
				return err
			}

			a.logger.Info("genome deleted",
				zap.String("genome", name),
				zap.Int64("chromosomes", chromosomes),
				zap.Int64("genes", genes))
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %q with %d chromosomes and %d genes\n", name, chromosomes, genes)
			return nil
		},
	}
}
