package cli

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/pmo/internal/cli/formatter"
	"github.com/alexanderramin/pmo/internal/domain"
	"github.com/spf13/cobra"
)

// lineFilter narrows directory listings by business line and name.
type lineFilter struct {
	portfolio string
	line      string
	search    string
}

func (f *lineFilter) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.portfolio, "portfolio", "", "Only this strategic portfolio")
	cmd.Flags().StringVar(&f.line, "line", "", "Only this product line")
	cmd.Flags().StringVarP(&f.search, "search", "s", "", "Case-insensitive name filter")
}

func (f lineFilter) match(portfolio, line, name string) bool {
	if f.portfolio != "" && !strings.EqualFold(portfolio, f.portfolio) {
		return false
	}
	if f.line != "" && !strings.EqualFold(line, f.line) {
		return false
	}
	return f.search == "" || strings.Contains(strings.ToLower(name), strings.ToLower(f.search))
}

func newResourcesCmd(app *App) *cobra.Command {
	var (
		filter  lineFilter
		manager string
	)

	cmd := &cobra.Command{
		Use:   "resources",
		Short: "List resources",
		RunE: func(cmd *cobra.Command, args []string) error {
			resources, err := app.Directory.ListResources(cmd.Context())
			if err != nil {
				return err
			}
			var shown []domain.Resource
			for _, r := range resources {
				if manager != "" && !strings.EqualFold(r.ManagerName, manager) {
					continue
				}
				if filter.match(r.StrategicPortfolio, r.ProductLine, r.Name) {
					shown = append(shown, r)
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatResources(shown))
			return nil
		},
	}
	filter.register(cmd)
	cmd.Flags().StringVar(&manager, "manager", "", "Only resources reporting to this manager")

	return cmd
}

func newProjectsCmd(app *App) *cobra.Command {
	var filter lineFilter

	cmd := &cobra.Command{
		Use:   "projects",
		Short: "List projects grouped by portfolio and product line",
		RunE: func(cmd *cobra.Command, args []string) error {
			projects, err := app.Directory.ListProjects(cmd.Context())
			if err != nil {
				return err
			}
			shown := filterProjects(projects, filter)
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatProjects(shown))
			return nil
		},
	}
	filter.register(cmd)

	return cmd
}

func filterProjects(projects []domain.Project, filter lineFilter) []domain.Project {
	var out []domain.Project
	for _, p := range projects {
		if filter.match(p.StrategicPortfolio, p.ProductLine, p.Name) {
			out = append(out, p)
		}
	}
	return out
}

func newPortfoliosCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "portfolios [PORTFOLIO]",
		Short: "List strategic portfolios and their product lines",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				lines []domain.BusinessLine
				err   error
			)
			if len(args) == 1 {
				lines, err = app.Directory.ListProductLines(cmd.Context(), args[0])
				for i := range lines {
					lines[i].StrategicPortfolio = domain.CoalesceStr(lines[i].StrategicPortfolio, args[0])
				}
			} else {
				lines, err = app.Directory.ListBusinessLines(cmd.Context())
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatBusinessLines(lines))
			return nil
		},
	}
}
