package cli

import (
	"fmt"
	"slices"
	"strings"

	"github.com/alexanderramin/pmo/internal/api"
	"github.com/alexanderramin/pmo/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newDashboardCmd(app *App) *cobra.Command {
	var (
		filter     lineFilter
		start, end dateFlag
		interval   intervalFlag
	)

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Chart planned, actual and available hours",
		Long: `Without --portfolio every matching project is charted, grouped by strategic
portfolio and product line. With --portfolio the portfolio aggregate is
charted along with per-resource totals.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			w := cmd.OutOrStdout()

			if filter.portfolio != "" {
				known, err := app.Directory.ListStrategicPortfolios(ctx)
				if err != nil {
					app.logger().Warn("portfolio list unavailable", "error", err)
				} else if !slices.ContainsFunc(known, func(p string) bool { return strings.EqualFold(p, filter.portfolio) }) {
					return fmt.Errorf("unknown portfolio %q (known: %s)", filter.portfolio, strings.Join(known, ", "))
				}

				stop := spin(app, cmd, "Loading portfolio capacity...")
				view, err := app.Dashboard.Portfolio(ctx, api.CapacityQuery{
					StrategicPortfolio: filter.portfolio,
					ProductLine:        filter.line,
					StartDate:          string(start),
					EndDate:            string(end),
					Interval:           string(interval),
				})
				stop()
				if err != nil {
					return err
				}
				fmt.Fprintln(w, formatter.FormatPortfolio(view))
				return nil
			}

			projects, err := app.Directory.ListProjects(ctx)
			if err != nil {
				return err
			}
			projects = filterProjects(projects, filter)
			if len(projects) == 0 {
				fmt.Fprintln(w, "No projects match.")
				return nil
			}

			stop := spin(app, cmd, fmt.Sprintf("Loading capacity for %d project(s)...", len(projects)))
			d, err := app.Dashboard.Build(ctx, projects)
			stop()
			if err != nil {
				return err
			}
			fmt.Fprintln(w, formatter.FormatDashboard(d))
			return nil
		},
	}
	filter.register(cmd)
	cmd.Flags().Var(&start, "start", "Start date for the portfolio view (YYYY-MM-DD)")
	cmd.Flags().Var(&end, "end", "End date for the portfolio view (YYYY-MM-DD)")
	cmd.Flags().Var(&interval, "interval", "Portfolio interval: weekly or monthly")

	return cmd
}

// spin shows a spinner on stderr while interactive and returns its stop func.
func spin(app *App, cmd *cobra.Command, msg string) func() {
	if !app.IsInteractive {
		return func() {}
	}
	return formatter.StartSpinner(cmd.ErrOrStderr(), msg)
}
