package main

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/warp/loan-assistant/knowledge"
	"github.com/warp/loan-assistant/roster"
	"github.com/warp/loan-assistant/store/sqlite"
	"go.uber.org/zap"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Copy the loan policy and the employee sheet into the SQLite store",
	Long: `Reads the policy text and the roster export named by the configuration
(or the flags below) and stores them, so "serve --source sqlite" no longer
needs the original files. The roster is validated before anything is written.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		defer logger.Sync()

		if cfg.Policy.Path == "" && cfg.Roster.Path == "" {
			return errors.New("nothing to import: set --policy and/or --roster")
		}

		store, err := sqlite.New(cfg.Store.Path)
		if err != nil {
			return err
		}
		defer store.Close()

		ctx := cmd.Context()
		files := knowledge.FileSources{PolicyPath: cfg.Policy.Path, RosterPath: cfg.Roster.Path, Sheet: cfg.Roster.Sheet}

		if cfg.Policy.Path != "" {
			text, err := files.PolicyText(ctx)
			if err != nil {
				return err
			}
			if err := store.SaveDocument(ctx, sqlite.PolicyDocument, text, cfg.Policy.Path); err != nil {
				return err
			}
			logger.Info("policy imported",
				zap.String("path", cfg.Policy.Path),
				zap.String("size", humanize.Bytes(uint64(len(text)))),
			)
		}

		if cfg.Roster.Path != "" {
			t, err := files.RosterTable(ctx)
			if err != nil {
				return err
			}
			r, err := roster.Normalize(t)
			if err != nil {
				return fmt.Errorf("refusing to import %s: %w", cfg.Roster.Path, err)
			}
			if err := store.ImportTable(ctx, t, cfg.Roster.Path); err != nil {
				return err
			}
			logger.Info("roster imported",
				zap.String("path", cfg.Roster.Path),
				zap.Int("rows", len(t.Rows)),
				zap.Int("employees", r.Len()),
				zap.Int("dropped_rows", len(r.Dropped)),
			)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "imported into %s\n", cfg.Store.Path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().String("db", "", "SQLite database path (default store.path)")
	importCmd.Flags().String("policy", "", "policy text file (default policy.path)")
	importCmd.Flags().String("roster", "", "roster CSV or XLSX (default roster.path)")
	importCmd.Flags().String("sheet", "", "roster worksheet (default roster.sheet)")

	viper.BindPFlag("store.path", importCmd.Flags().Lookup("db"))
	viper.BindPFlag("policy.path", importCmd.Flags().Lookup("policy"))
	viper.BindPFlag("roster.path", importCmd.Flags().Lookup("roster"))
	viper.BindPFlag("roster.sheet", importCmd.Flags().Lookup("sheet"))
}
