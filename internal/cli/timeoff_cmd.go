package cli

import (
	"fmt"

	"github.com/alexanderramin/pmo/internal/cli/formatter"
	"github.com/alexanderramin/pmo/internal/domain"
	"github.com/spf13/cobra"
)

func newTimeOffCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "timeoff",
		Short: "Record and review resource time off",
	}

	cmd.AddCommand(
		newTimeOffListCmd(app),
		newTimeOffAddCmd(app),
	)

	return cmd
}

func newTimeOffListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list [RESOURCE_ID]",
		Short: "List time off, for everyone or one resource",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var id int64
			if len(args) == 1 {
				var err error
				if id, err = parseEntityID(args[0], "resource"); err != nil {
					return err
				}
			}
			entries, err := app.TimeOff.List(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatTimeOff(entries))
			return nil
		},
	}
}

func newTimeOffAddCmd(app *App) *cobra.Command {
	var in timeOffInput

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record time off for a resource",
		Long: `Both dates are inclusive. A range that overlaps existing time off for
the same resource is refused. Missing values are prompted for when running
in a terminal.`,
		Example: `  pmo timeoff add --resource 42 --start 2025-03-10 --end 2025-03-14 --reason "Annual Leave"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if in.Resource == "" || in.Start == "" || in.End == "" {
				if !app.IsInteractive {
					return fmt.Errorf("--resource, --start and --end are required")
				}
				if err := timeOffForm(&in).Run(); err != nil {
					return err
				}
			}

			resourceID, err := parseEntityID(in.Resource, "resource")
			if err != nil {
				return err
			}
			entry := domain.TimeOff{
				ResourceID: resourceID,
				StartDate:  in.Start,
				EndDate:    in.End,
				Reason:     in.Reason,
			}
			if err := app.TimeOff.Add(cmd.Context(), entry); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Added %s time off for resource %d from %s to %s\n",
				formatter.StyleGreen.Render("✔"), entry.Reason, entry.ResourceID, entry.StartDate, entry.EndDate)
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Resource, "resource", "", "Resource ID")
	cmd.Flags().StringVar(&in.Start, "start", "", "First day off (YYYY-MM-DD)")
	cmd.Flags().StringVar(&in.End, "end", "", "Last day off (YYYY-MM-DD)")
	cmd.Flags().StringVar(&in.Reason, "reason", domain.TimeOffReasons[0], "Reason for the time off")

	return cmd
}
