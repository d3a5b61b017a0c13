// Package main provides the genomicdb command-line tool.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/genomic-db/internal/config"
	"github.com/inodb/genomic-db/internal/store"
)

// Exit codes
const (
	ExitSuccess = 0
	ExitError   = 1
	ExitUsage   = 2
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const configName = ".genomicdb"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{v: viper.New(), logger: zap.NewNop()}
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	_ = a.logger.Sync()
	if err == nil {
		return ExitSuccess
	}

	fmt.Fprintf(stderr, "Error: %v\n", err)
	if isUsage(err) {
		fmt.Fprintf(stderr, "Run 'genomicdb --help' for usage.\n")
		return ExitUsage
	}
	return ExitError
}

// isUsage reports whether err came from a bad invocation. Cobra reports
// unknown commands and missing required flags as plain errors.
func isUsage(err error) bool {
	var ue usageError
	if errors.As(err, &ue) {
		return true
	}
	msg := err.Error()
	return strings.HasPrefix(msg, "unknown command") || strings.HasPrefix(msg, "required flag")
}

// app carries state shared by all subcommands.
type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     config.Config
	logger  *zap.Logger
}

// usageError marks errors caused by bad invocation rather than failure.
type usageError struct{ error }

func (e usageError) Unwrap() error { return e.error }

func withUsage(fn cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := fn(cmd, args); err != nil {
			return usageError{err}
		}
		return nil
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "genomicdb",
		Short: "Genome, chromosome and gene database",
		Long: `genomicdb manages a relational database of genomes, their chromosomes,
and the genes located on them. PostgreSQL and SQLite are supported.`,
		Example: `  # Create the schema and load the example genome
  genomicdb migrate up
  genomicdb seed

  # Use a local SQLite file instead of PostgreSQL
  DATABASE_URL=sqlite://genomics.db genomicdb show

  # List genes with their chromosome and genome
  genomicdb genes --genome "Example Genome"`,
		Version:       fmt.Sprintf("%s (%s) built %s", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return usageError{errors.New("a command is required")}
		},
	}
	root.SetVersionTemplate("genomicdb version {{.Version}}\n")
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return usageError{err}
	})

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "Config file (default: ~/"+configName+".yaml)")
	flags.String("database-url", "", "Database URL (overrides DATABASE_URL)")
	flags.String("log-level", "", "Log level: debug, info, warn, error")
	flags.String("log-format", "", "Log format: console, json")
	_ = a.v.BindPFlag("database.url", flags.Lookup("database-url"))
	_ = a.v.BindPFlag("log.level", flags.Lookup("log-level"))
	_ = a.v.BindPFlag("log.format", flags.Lookup("log-format"))

	root.AddCommand(
		newMigrateCmd(a),
		newSeedCmd(a),
		newShowCmd(a),
		newGenesCmd(a),
		newDeleteCmd(a),
		newExportCmd(a),
		newConfigCmd(a),
	)
	return root
}

// setup reads the config file, resolves the configuration and builds the
// logger.
func (a *app) setup() error {
	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
	} else if home, err := os.UserHomeDir(); err == nil {
		a.v.AddConfigPath(home)
		a.v.SetConfigName(configName)
		a.v.SetConfigType("yaml")
	}

	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if a.cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("reading config: %w", err)
		}
	}

	cfg, err := config.Load(a.v)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg.Log)
	if err != nil {
		return usageError{err}
	}
	a.cfg = cfg
	a.logger = logger
	a.logger.Debug("configuration loaded", zap.String("config_file", a.v.ConfigFileUsed()))
	return nil
}

// openEngine connects to the configured database. The caller closes it.
func (a *app) openEngine() (*store.Engine, error) {
	eng, err := store.Open(a.cfg.Database, a.logger)
	if err != nil {
		return nil, err
	}
	return eng, nil
}

// configPath returns the file config changes are written to.
func (a *app) configPath() (string, error) {
	if f := a.v.ConfigFileUsed(); f != "" {
		return f, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, configName+".yaml"), nil
}
