package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/okian/sppb/internal/config"
	"github.com/okian/sppb/pkg/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

type rootFlags struct {
	configPath string
	dbPath     string
	logLevel   string
}

// env holds what PersistentPreRunE prepared for the subcommand.
type env struct {
	cfg *config.Config
	log logger.Logger
}

func newRootCmd() *cobra.Command {
	var flags rootFlags
	e := &env{}

	root := &cobra.Command{
		Use:   "sppb",
		Short: "Score Short Physical Performance Battery cases and write grounded reports",
		Long: "sppb scores timed balance, gait and chair-rise measurements against stored\n" +
			"rule tables, resolves the interpretation text of every score and asks a\n" +
			"language model to narrate only those facts.",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		Version: version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Logs go to stderr; stdout carries prompts, reports and CSV.
			if err := logger.InitWithWriter(cmd.ErrOrStderr()); err != nil {
				return err
			}
			cfg, err := config.Load(cmd.Context(), config.WithFile(flags.configPath))
			if err != nil {
				return err
			}
			if flags.dbPath != "" {
				cfg.DBPath = flags.dbPath
			}
			if flags.logLevel != "" {
				cfg.LogLevel = flags.logLevel
			}
			if err := logger.SetLevelString(cfg.LogLevel); err != nil {
				return fmt.Errorf("%w: %w", config.ErrInvalidConfig, err)
			}
			e.cfg = cfg
			e.log = logger.Get()
			return nil
		},
	}

	f := root.PersistentFlags()
	f.StringVar(&flags.configPath, "config", "", "YAML config file (overrides $"+config.EnvFile+")")
	f.StringVar(&flags.dbPath, "db", "", "SQLite rule store path (overrides db_path)")
	f.StringVar(&flags.logLevel, "log-level", "", "debug, info, warn or error (overrides log_level)")

	root.AddCommand(newAssessCmd(e))
	root.AddCommand(newBatchCmd(e))
	root.AddCommand(newServeCmd(e))
	root.AddCommand(newRulesCmd(e))
	return root
}
