package commands

import (
	"encoding/json"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"tzu-threatmodel/internal/aggregate"
	"tzu-threatmodel/internal/apiclient"
	"tzu-threatmodel/internal/risk"
)

func newRemoteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remote",
		Short: "Inspect and edit the threats of a system on a running server",
	}
	cmd.PersistentFlags().String("server", "http://localhost:8080", "base URL of the threat-model API")
	cmd.AddCommand(newRemoteShowCmd(), newRemoteEditCmd())
	return cmd
}

func remoteClient(cmd *cobra.Command) *apiclient.Client {
	base, _ := cmd.Flags().GetString("server")
	return apiclient.New(base, nil)
}

func loadAggregate(cmd *cobra.Command, c *apiclient.Client, systemID string) (*aggregate.Aggregate, error) {
	threats, err := c.LoadThreats(cmd.Context(), systemID)
	if err != nil {
		return nil, err
	}
	agg := aggregate.New(systemID)
	agg.Load(threats)
	return agg, nil
}

func newRemoteShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <system-id>",
		Short: "List the threats of a system with their scores",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			agg, err := loadAggregate(cmd, remoteClient(cmd), args[0])
			if err != nil {
				return err
			}

			tw := table.NewWriter()
			tw.AppendHeader(table.Row{"ID", "Title", "Type", "Inherent", "Residual", "Current", "Severity"})
			for _, e := range agg.Threats() {
				v := e.View()
				a := v.Assessment
				tw.AppendRow(table.Row{
					v.ID, v.Title, v.Type,
					risk.Format(a.InherentRisk),
					risk.Format(a.ResidualRisk),
					risk.Format(a.CurrentRisk),
					a.CurrentSeverity,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), tw.Render())
			return nil
		},
	}
}

func newRemoteEditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <system-id> [name=value ...]",
		Short: "Change one threat and delete others, then save in one go",
		Example: `  riskcalc remote edit 5f0c... --threat 9a1b... skill_level=9 --residual 2 --remediated
  riskcalc remote edit 5f0c... --delete 9a1b... --delete 77c2...`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := remoteClient(cmd)
			agg, err := loadAggregate(cmd, c, args[0])
			if err != nil {
				return err
			}

			threatID, _ := cmd.Flags().GetString("threat")
			edits := len(args) > 1 || cmd.Flags().Changed("residual") || cmd.Flags().Changed("remediated")
			if edits {
				if threatID == "" {
					return errors.New("--threat is required to change factors, residual risk or remediation")
				}
				e, err := agg.Threat(threatID)
				if err != nil {
					return errors.Wrapf(err, "%q", threatID)
				}

				factors := risk.Factors{}
				if err := parseAssignments(args[1:], factors); err != nil {
					return err
				}
				if err := e.Risk().SetFactors(factors); err != nil {
					return err
				}
				if cmd.Flags().Changed("residual") {
					v, _ := cmd.Flags().GetFloat64("residual")
					e.Risk().SetResidualRisk(v)
				}
				if cmd.Flags().Changed("remediated") {
					v, _ := cmd.Flags().GetBool("remediated")
					e.Risk().SetRemediationStatus(v)
				}
			}

			deletes, _ := cmd.Flags().GetStringSlice("delete")
			for _, id := range deletes {
				if err := agg.MarkDeleted(id); err != nil {
					return errors.Wrapf(err, "%q", id)
				}
			}

			res, saveErr := agg.Save(cmd.Context(), c)
			if errors.Is(saveErr, aggregate.ErrUpdateFailed) {
				return saveErr
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(res.Report()); err != nil {
				return err
			}
			return saveErr
		},
	}
	cmd.Flags().String("threat", "", "id of the threat to change")
	cmd.Flags().Float64("residual", 0, "residual risk, clamped to 0..9")
	cmd.Flags().Bool("remediated", false, "remediation status")
	cmd.Flags().StringSlice("delete", nil, "ids of threats to delete")
	return cmd
}
