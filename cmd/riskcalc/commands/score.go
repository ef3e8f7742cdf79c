package commands

import (
	"encoding/json"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"tzu-threatmodel/internal/risk"
)

type scoreOutput struct {
	risk.Score
	Severity risk.Severity `json:"severity"`
	Color    string        `json:"color"`
	Vector   string        `json:"vector"`
}

func newScoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score [name=value ...]",
		Short: "Compute likelihood, impact and inherent risk",
		Example: `  riskcalc score --vector SL:3/M:4/O:7/S:5/ED:6/EE:5/A:3/ID:2/LC:7/LI:5/LAV:3/LAC:4/FD:5/RD:6/NC:4/PV:5
  riskcalc score skill_level=9 motive=9 --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			factors := risk.Factors{}
			if vector, _ := cmd.Flags().GetString("vector"); vector != "" {
				parsed, err := risk.ParseVector(vector)
				if err != nil {
					return err
				}
				factors = parsed
			}
			if err := parseAssignments(args, factors); err != nil {
				return err
			}

			score := risk.Compute(factors)
			out := scoreOutput{
				Score:    score,
				Severity: score.Severity(),
				Color:    score.Severity().Color().CSS,
				Vector:   risk.FormatVector(factors),
			}

			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}

			tw := table.NewWriter()
			tw.AppendHeader(table.Row{"Likelihood", "Impact", "Inherent risk", "Severity", "Color"})
			tw.AppendRow(table.Row{
				risk.Format(score.Likelihood),
				risk.Format(score.Impact),
				risk.Format(score.Inherent),
				out.Severity,
				out.Color,
			})
			fmt.Fprintln(cmd.OutOrStdout(), tw.Render())
			fmt.Fprintln(cmd.OutOrStdout(), out.Vector)
			return nil
		},
	}
	cmd.Flags().String("vector", "", "OWASP vector, e.g. SL:5/M:4/...")
	cmd.Flags().Bool("json", false, "print JSON instead of a table")
	return cmd
}
