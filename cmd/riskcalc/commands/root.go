package commands

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"tzu-threatmodel/internal/logging"
	"tzu-threatmodel/internal/risk"
)

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "riskcalc",
		Short:        "Score OWASP Risk Rating factor sets",
		SilenceUsage: true,
		Long: `riskcalc scores, validates and classifies OWASP Risk Rating factor sets
without a running server. Factors are given as name=value pairs, e.g.

  riskcalc score skill_level=3 motive=4 financial_damage=7

or as an OWASP vector with --vector. Factors left out score as 0.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level, _ := cmd.Flags().GetString("logLevel")
			logging.Init(level)
		},
	}
	root.PersistentFlags().String("logLevel", "warn", "log level: debug, info, warn, error")

	root.AddCommand(newScoreCmd(), newValidateCmd(), newClassifyCmd(), newRemoteCmd())
	return root
}

// parseAssignments читает пары name=value. Значения остаются строками,
// приведение делает расчёт.
func parseAssignments(args []string, into risk.Factors) error {
	for _, arg := range args {
		name, value, ok := strings.Cut(arg, "=")
		if !ok {
			return errors.Errorf("expected name=value, got %q", arg)
		}
		name = strings.TrimSpace(name)
		if !risk.IsFactor(name) {
			return errors.Wrapf(risk.ErrInvalidFactorName, "%q", name)
		}
		into[name] = strings.TrimSpace(value)
	}
	return nil
}
