package cli

import (
	"fmt"
	"strconv"

	"github.com/alexanderramin/pmo/internal/api"
	"github.com/alexanderramin/pmo/internal/cli/formatter"
	"github.com/alexanderramin/pmo/internal/domain"
	"github.com/alexanderramin/pmo/internal/timesheet"
	"github.com/spf13/cobra"
)

func newTimesheetCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "timesheet",
		Aliases: []string{"ts"},
		Short:   "Log and review weekly actual hours",
	}

	cmd.AddCommand(
		newTimesheetShowCmd(app),
		newTimesheetLogCmd(app),
		newTimesheetDraftCmd(app),
	)

	return cmd
}

func newTimesheetShowCmd(app *App) *cobra.Command {
	var (
		project  int64
		from, to dateFlag
	)

	cmd := &cobra.Command{
		Use:   "show RESOURCE_ID",
		Short: "List a resource's logged weeks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseEntityID(args[0], "resource")
			if err != nil {
				return err
			}
			entries, err := app.Timesheets.List(cmd.Context(), id, api.TimesheetFilter{
				ProjectID: project,
				From:      string(from),
				To:        string(to),
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatTimesheet(entries))
			return nil
		},
	}
	cmd.Flags().Int64Var(&project, "project", 0, "Only this project")
	cmd.Flags().Var(&from, "from", "Earliest week (YYYY-MM-DD)")
	cmd.Flags().Var(&to, "to", "Latest week (YYYY-MM-DD)")

	return cmd
}

func newTimesheetLogCmd(app *App) *cobra.Command {
	var in timesheetInput

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Log hours for a resource, project and week",
		Long: `Any date inside the week may be given; the entry is stored against that
week's Monday to Sunday range. Missing values are prompted for when running
in a terminal.`,
		Example: `  pmo timesheet log --resource 42 --project 7 --week 2025-03-05 --hours 32`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if in.Resource == "" || in.Project == "" || in.Week == "" || in.Hours == "" {
				if !app.IsInteractive {
					return fmt.Errorf("--resource, --project, --week and --hours are required")
				}
				projects, err := app.Directory.ListProjects(ctx)
				if err != nil {
					app.logger().Warn("project directory unavailable", "error", err)
				}
				if err := timesheetForm(&in, projects).Run(); err != nil {
					return err
				}
			}

			entry, err := in.entry()
			if err != nil {
				return err
			}
			if err := app.Timesheets.Log(ctx, entry); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Logged %s on project %d for week %s\n",
				formatter.StyleGreen.Render("✔"), formatter.FormatHours(entry.Hours), entry.ProjectID, entry.WeekStart)
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Resource, "resource", "", "Resource ID")
	cmd.Flags().StringVar(&in.Project, "project", "", "Project ID")
	cmd.Flags().StringVar(&in.Week, "week", "", "Any date in the week (YYYY-MM-DD)")
	cmd.Flags().StringVar(&in.Hours, "hours", "", "Hours worked that week")

	return cmd
}

// entry converts the collected text into a timesheet entry for the week
// containing the given date.
func (in timesheetInput) entry() (domain.TimesheetEntry, error) {
	resourceID, err := parseEntityID(in.Resource, "resource")
	if err != nil {
		return domain.TimesheetEntry{}, err
	}
	projectID, err := parseEntityID(in.Project, "project")
	if err != nil {
		return domain.TimesheetEntry{}, err
	}
	week, err := timesheet.ParseWeek(in.Week)
	if err != nil {
		return domain.TimesheetEntry{}, err
	}
	hours, err := strconv.ParseFloat(in.Hours, 64)
	if err != nil {
		return domain.TimesheetEntry{}, fmt.Errorf("invalid hours %q", in.Hours)
	}
	return domain.TimesheetEntry{
		ResourceID: resourceID,
		ProjectID:  projectID,
		WeekStart:  week.StartString(),
		WeekEnd:    week.EndString(),
		Hours:      hours,
	}, nil
}

func newTimesheetDraftCmd(app *App) *cobra.Command {
	var week dateFlag

	cmd := &cobra.Command{
		Use:   "draft RESOURCE_ID",
		Short: "Draft a week from logged hours and planned allocations",
		Long: `Projects already logged for the week show their actual hours. Other
projects with an allocation overlapping the week show the planned hours,
including staged allocation changes.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := parseEntityID(args[0], "resource")
			if err != nil {
				return err
			}
			w := timesheet.WeekOf(app.now())
			if week != "" {
				if w, err = timesheet.ParseWeek(string(week)); err != nil {
					return err
				}
			}

			logged, err := app.Timesheets.List(ctx, id, api.TimesheetFilter{From: w.StartString(), To: w.EndString()})
			if err != nil {
				return err
			}

			sess, err := openEditor(ctx, app, domain.ModeResource)
			if err != nil {
				return err
			}
			if err := ensureSelected(ctx, app, id); err != nil {
				return err
			}
			rows := timesheet.Draft(w, app.Editor.Allocations(id), logged)
			if err := persistEditor(ctx, app, sess); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatDraft(w, rows))
			return nil
		},
	}
	cmd.Flags().Var(&week, "week", "Any date in the week (default this week)")

	return cmd
}
