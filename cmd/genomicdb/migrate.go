package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newMigrateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
		Long:  "Apply or roll back the embedded schema migrations for the configured database.",
		Example: `  genomicdb migrate up
  genomicdb migrate status
  genomicdb migrate down`,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  withUsage(cobra.NoArgs),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.runMigrate(cmd, "up")
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the most recent migration",
			Args:  withUsage(cobra.NoArgs),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.runMigrate(cmd, "down")
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show the current schema version",
			Args:  withUsage(cobra.NoArgs),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.runMigrate(cmd, "status")
			},
		},
	)
	return cmd
}

func (a *app) runMigrate(cmd *cobra.Command, direction string) error {
	eng, err := a.openEngine()
	if err != nil {
		return err
	}
	defer eng.Close()

	ctx := cmd.Context()
	switch direction {
	case "up":
		err = eng.Migrate(ctx)
	case "down":
		err = eng.MigrateDown(ctx)
	}
	if err != nil {
		return err
	}

	v, err := eng.SchemaVersion(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Schema version %d (%s)\n", v, eng.Driver())
	return nil
}
