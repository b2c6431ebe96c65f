/*
loanbot - command-line entry point

COMMANDS:
  serve     Run the HTTP API (form, chat, scenarios)
  check     Evaluate one employee against the policy from the terminal
  rules     Print the rules and checklist extracted from the policy
  import    Copy the policy text and roster into the SQLite store
  version   Print the version

CONFIGURATION:
  See package config. Flags given here win over the config file and the
  LOANBOT_* environment.
*/
package main

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/warp/loan-assistant/config"
	"github.com/warp/loan-assistant/knowledge"
	"github.com/warp/loan-assistant/logger"
	"github.com/warp/loan-assistant/store/sqlite"
	"go.uber.org/zap"
)

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:           config.App,
		Short:         "loanbot answers employee loan eligibility questions from the loan policy and the employee sheet",
		SilenceUsage: true,
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is loanbot.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("log.debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("log.json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	config.SetDefaults(viper.GetViper())
	config.BindEnv(viper.GetViper())

	// We can't proceed if the config file parsed with error.
	if err := config.ReadFile(viper.GetViper(), cfgFile); err != nil {
		log.Fatal(err)
	}
}

// setup decodes the configuration and builds the logger every command uses.
func setup() (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return cfg, nil, err
	}
	logger, err := logger.New(cfg.Log.JSON, cfg.Log.Debug)
	if err != nil {
		return cfg, nil, fmt.Errorf("creating a logger: %w", err)
	}
	return cfg, logger, nil
}

// openSources returns the configured policy and roster sources. The closer
// is never nil.
func openSources(cfg config.Config) (knowledge.Sources, func() error, error) {
	switch cfg.Source {
	case config.SourceSQLite:
		store, err := sqlite.New(cfg.Store.Path)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	default:
		src := knowledge.FileSources{
			PolicyPath: cfg.Policy.Path,
			RosterPath: cfg.Roster.Path,
			Sheet:      cfg.Roster.Sheet,
		}
		return src, func() error { return nil }, nil
	}
}

// loadSnapshot builds a one-off snapshot for the offline commands.
func loadSnapshot(ctx context.Context, cfg config.Config, log *zap.Logger) (*knowledge.Snapshot, error) {
	src, closeFn, err := openSources(cfg)
	if err != nil {
		return nil, err
	}
	defer closeFn()
	return knowledge.Load(ctx, src, log), nil
}
