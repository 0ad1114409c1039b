package cli

import (
	"fmt"

	"github.com/alexanderramin/pmo/internal/api"
	"github.com/alexanderramin/pmo/internal/cli/formatter"
	"github.com/alexanderramin/pmo/internal/domain"
	"github.com/spf13/cobra"
)

func newCapacityCmd(app *App) *cobra.Command {
	var (
		series     bool
		start, end dateFlag
		interval   intervalFlag
	)

	cmd := &cobra.Command{
		Use:   "capacity RESOURCE_ID",
		Short: "Show a resource's weekly capacity against its allocations",
		Long: `Without --series the figures come from the allocations held in the editor,
including staged changes. With --series the server's capacity history for
the resource is charted instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := parseEntityID(args[0], "resource")
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()

			if series {
				chart, err := app.Dashboard.ResourceSeries(ctx, api.CapacityQuery{
					ResourceID: id,
					StartDate:  string(start),
					EndDate:    string(end),
					Interval:   string(interval),
				})
				if err != nil {
					return err
				}
				fmt.Fprintln(w, formatter.FormatChart(*chart))
				return nil
			}

			sess, err := openEditor(ctx, app, domain.ModeResource)
			if err != nil {
				return err
			}
			if err := ensureSelected(ctx, app, id); err != nil {
				return err
			}
			summary, err := app.Editor.Capacity(id)
			if err != nil {
				return err
			}
			if err := persistEditor(ctx, app, sess); err != nil {
				return err
			}

			res, ok := app.Editor.Resource(id)
			if !ok {
				res = domain.Resource{ID: id}
			}
			fmt.Fprintln(w, formatter.FormatCapacity(res, summary))
			return nil
		},
	}
	cmd.Flags().BoolVar(&series, "series", false, "Chart the server's capacity history instead")
	cmd.Flags().Var(&start, "start", "Series start date (YYYY-MM-DD)")
	cmd.Flags().Var(&end, "end", "Series end date (YYYY-MM-DD)")
	cmd.Flags().Var(&interval, "interval", "Series interval: weekly or monthly")

	return cmd
}
