package cli

import (
	"fmt"
	"strconv"

	"github.com/alexanderramin/pmo/internal/cli/formatter"
	"github.com/alexanderramin/pmo/internal/domain"
	"github.com/spf13/cobra"
)

func newEstimateCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "estimate",
		Aliases: []string{"est"},
		Short:   "Manage a project's milestone estimates",
	}

	cmd.AddCommand(
		newEstimateListCmd(app),
		newEstimateAddCmd(app),
	)

	return cmd
}

func newEstimateListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list PROJECT_ID",
		Short: "Show a project's estimate rows and totals",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseEntityID(args[0], "project")
			if err != nil {
				return err
			}
			rows, err := app.Estimations.List(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatEstimations(rows))
			return nil
		},
	}
}

func newEstimateAddCmd(app *App) *cobra.Command {
	var (
		in estimateInput
		id int64
	)

	cmd := &cobra.Command{
		Use:   "add PROJECT_ID",
		Short: "Add or update one estimate row",
		Long: `Person-days are computed as resources x duration x working days per unit
(1, 5 or 20). Pass --id to update an existing row.`,
		Example: `  pmo estimate add 7 --milestone Development --deliverable Backend --resources 2 --duration 3 --unit weeks`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, err := parseEntityID(args[0], "project")
			if err != nil {
				return err
			}
			if in.Milestone == "" || in.Resources == "" || in.Duration == "" {
				if !app.IsInteractive {
					return fmt.Errorf("--milestone, --resources and --duration are required")
				}
				if err := estimateForm(&in).Run(); err != nil {
					return err
				}
			}

			row, err := in.row(projectID)
			if err != nil {
				return err
			}
			if id > 0 {
				row.ID = &id
			}
			saved, err := app.Estimations.Upsert(cmd.Context(), row)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Saved %s estimate: %s person-days\n",
				formatter.StyleGreen.Render("✔"), saved.Milestone, formatter.FormatNumber(saved.PersonDays))
			return nil
		},
	}
	cmd.Flags().Int64Var(&id, "id", 0, "Existing estimation row to update")
	cmd.Flags().StringVar(&in.Milestone, "milestone", "", "Milestone name")
	cmd.Flags().StringVar(&in.Deliverable, "deliverable", "", "Deliverable within the milestone")
	cmd.Flags().StringVar(&in.Resources, "resources", "", "Number of resources")
	cmd.Flags().StringVar(&in.Duration, "duration", "", "Duration in --unit")
	cmd.Flags().StringVar(&in.Unit, "unit", string(domain.UnitDays), "days, weeks or months")

	return cmd
}

func (in estimateInput) row(projectID int64) (domain.ProjectEstimation, error) {
	resources, err := strconv.ParseFloat(in.Resources, 64)
	if err != nil {
		return domain.ProjectEstimation{}, fmt.Errorf("invalid resources %q", in.Resources)
	}
	duration, err := strconv.ParseFloat(in.Duration, 64)
	if err != nil {
		return domain.ProjectEstimation{}, fmt.Errorf("invalid duration %q", in.Duration)
	}
	return domain.ProjectEstimation{
		ProjectID:   projectID,
		Milestone:   in.Milestone,
		Deliverable: in.Deliverable,
		Resources:   resources,
		Duration:    duration,
		Unit:        domain.EstimationUnit(in.Unit),
	}, nil
}
