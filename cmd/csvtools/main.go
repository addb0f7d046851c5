// Command csvtools repairs broken delimited exports and reports on their
// structure.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lyrasis/csv-data-tools/internal/config"
	"github.com/lyrasis/csv-data-tools/internal/logging"
)

// app carries the state shared by the subcommands of one invocation.
type app struct {
	configPath string
	verbose    bool
	workers    int
	logFormat  string

	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "csvtools",
		Short: "Repair and check delimited text exports",
		Long: `csvtools recovers the row structure of delimited exports whose line
breaks cannot be trusted, and checks that every row has as many fields as
the header.

Delimiters are named: comma, pipe or tab. Settings come from defaults, an
optional YAML file (--config), a .env file, CSVTOOLS_* environment
variables and finally flags, each overriding the one before.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "YAML config file")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "log at debug level")
	pf.IntVar(&a.workers, "workers", 0, "files processed at once (default GOMAXPROCS)")
	pf.StringVar(&a.logFormat, "log-format", "", "log encoding: console or json")

	root.AddCommand(
		newReconstructCmd(a),
		newCheckCmd(a),
		newShowCmd(a),
		newInfoCmd(a),
		newConfigCmd(a),
	)
	return root
}

// setup loads configuration and builds the logger before any subcommand
// touches a file. Flag values are applied last and only when set.
func (a *app) setup(cmd *cobra.Command) error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if err := applyFlags(cmd, cfg); err != nil {
		return err
	}
	if cmd.Flags().Changed("workers") {
		cfg.Workers = a.workers
	}
	if cmd.Flags().Changed("log-format") {
		cfg.Logging.Format = a.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	a.logger, err = logging.New(cfg.Logging.Level, cfg.Logging.Format, a.verbose)
	if err != nil {
		return err
	}
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
