package commands

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"tzu-threatmodel/internal/risk"
)

func newClassifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify <score>",
		Short: "Print the severity band of a risk score",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, ok := risk.ParseNumeric(args[0])
			if !ok {
				return errors.Errorf("%q is not a number", args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", risk.Format(v), risk.Classify(v))
			return nil
		},
	}
}
