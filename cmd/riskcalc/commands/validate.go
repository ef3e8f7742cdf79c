package commands

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"tzu-threatmodel/internal/risk"
)

var errInvalidFactors = errors.New("factor set is invalid")

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [name=value ...]",
		Short: "Check that every given factor is a number between 0 and 9",
		RunE: func(cmd *cobra.Command, args []string) error {
			factors := risk.Factors{}
			if err := parseAssignments(args, factors); err != nil {
				return err
			}

			res := risk.Validate(factors)
			if res.IsValid {
				fmt.Fprintln(cmd.OutOrStdout(), "valid")
				return nil
			}

			tw := table.NewWriter()
			tw.AppendHeader(table.Row{"#", "Error"})
			for i, e := range res.Errors {
				tw.AppendRow(table.Row{i + 1, e})
			}
			fmt.Fprintln(cmd.OutOrStdout(), tw.Render())
			return errInvalidFactors
		},
	}
}
