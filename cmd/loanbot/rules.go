package main

import (
	"github.com/spf13/cobra"
	"github.com/warp/loan-assistant/policy"
	"gopkg.in/yaml.v3"
)

type rulesOutput struct {
	Ready     bool            `yaml:"ready"`
	Issues    []string        `yaml:"issues,omitempty"`
	Rules     policy.RulesDoc `yaml:"rules"`
	Checklist []string        `yaml:"checklist"`
	Skipped   []string        `yaml:"skipped,omitempty"`
}

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Print the rules and checklist read from the loan policy",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		defer logger.Sync()

		snap, err := loadSnapshot(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}

		out := rulesOutput{Ready: snap.Ready()}
		for _, issue := range snap.Issues {
			out.Issues = append(out.Issues, issue.Source+": "+issue.Message)
		}
		for _, err := range snap.Skipped {
			out.Skipped = append(out.Skipped, err.Error())
		}
		if snap.Policy != nil {
			out.Rules = snap.Policy.Rules.Doc()
			out.Checklist = snap.Policy.Checklist
		}

		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(out)
	},
}

func init() {
	rootCmd.AddCommand(rulesCmd)
}
