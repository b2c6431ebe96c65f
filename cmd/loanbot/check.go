package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/warp/loan-assistant/generic"
	"go.uber.org/zap"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Evaluate one employee's loan eligibility",
	Example: `  loanbot check --name "Sara Khan" --amount 200000 \
    --answer "Confirmed by supervisor=true" --answer "Not serving a notice period=true"`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		name, _ := cmd.Flags().GetString("name")
		amount, _ := cmd.Flags().GetFloat64("amount")
		rawAnswers, _ := cmd.Flags().GetStringArray("answer")

		answers, err := parseAnswers(rawAnswers)
		if err != nil {
			return err
		}

		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		defer logger.Sync()

		snap, err := loadSnapshot(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}

		requested := generic.None()
		if amount > 0 {
			requested = generic.Some(decimal.NewFromFloat(amount))
		}

		verdict, err := snap.Evaluate(name, requested, answers)
		if err != nil {
			return err
		}
		logger.Debug("verdict",
			zap.String("outcome", string(verdict.Outcome)),
			zap.String("reason", string(verdict.Reason)),
			zap.String("detail", verdict.Detail),
		)

		fmt.Fprintln(cmd.OutOrStdout(), verdict.Message())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringP("name", "n", "", "employee name as it appears in the roster")
	checkCmd.Flags().Float64P("amount", "a", 0, "requested amount, 0 for none")
	checkCmd.Flags().StringArray("answer", nil, `checklist answer as "item=true|false", repeatable`)
	checkCmd.MarkFlagRequired("name")
}

// parseAnswers reads "item=bool" pairs. The item text may itself contain "=".
func parseAnswers(raw []string) (map[string]bool, error) {
	answers := make(map[string]bool, len(raw))
	for _, pair := range raw {
		i := strings.LastIndex(pair, "=")
		if i <= 0 {
			return nil, fmt.Errorf("answer %q: expected item=true|false", pair)
		}
		v, err := strconv.ParseBool(strings.TrimSpace(pair[i+1:]))
		if err != nil {
			return nil, fmt.Errorf("answer %q: %w", pair, err)
		}
		answers[strings.TrimSpace(pair[:i])] = v
	}
	return answers, nil
}
