package cli

import (
	"context"
	"log/slog"
	"time"

	"github.com/alexanderramin/pmo/internal/config"
	"github.com/alexanderramin/pmo/internal/dashboard"
	"github.com/alexanderramin/pmo/internal/domain"
	"github.com/alexanderramin/pmo/internal/editor"
	"github.com/alexanderramin/pmo/internal/estimation"
	"github.com/alexanderramin/pmo/internal/logging"
	"github.com/alexanderramin/pmo/internal/repository"
	"github.com/alexanderramin/pmo/internal/session"
	"github.com/alexanderramin/pmo/internal/timeoff"
	"github.com/alexanderramin/pmo/internal/timesheet"
	"github.com/spf13/cobra"
)

// Directory is the read-only project and resource catalogue.
type Directory interface {
	ListProjects(ctx context.Context) ([]domain.Project, error)
	ListResources(ctx context.Context) ([]domain.Resource, error)
	ListBusinessLines(ctx context.Context) ([]domain.BusinessLine, error)
	ListStrategicPortfolios(ctx context.Context) ([]string, error)
	ListProductLines(ctx context.Context, portfolio string) ([]domain.BusinessLine, error)
}

// App holds everything the CLI commands use. One App serves one process.
type App struct {
	Config      config.Config
	Logger      *slog.Logger
	Directory   Directory
	Editor      *editor.Store
	Sessions    *session.Manager
	SaveLog     repository.SaveLogRepo
	Dashboard   *dashboard.Service
	Timesheets  *timesheet.Service
	Estimations *estimation.Service
	TimeOff     *timeoff.Service

	// IsInteractive enables huh prompts and the bubbletea editor.
	IsInteractive bool

	// SessionName selects which saved editor session commands work on.
	SessionName string

	// Now is the clock used for display; nil means time.Now.
	Now func() time.Time

	// Setup, when set, fills in the App from the config file named by
	// --config before any command runs.
	Setup func(configPath string) error
}

func (a *App) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

func (a *App) logger() *slog.Logger {
	return logging.OrDiscard(a.Logger)
}

// NewRootCmd creates the top-level "pmo" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "pmo",
		Short:         "Plan resource allocations against the portfolio API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	var configPath string
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if app.Setup == nil {
			return nil
		}
		return app.Setup(configPath)
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default $XDG_CONFIG_HOME/pmo/config.yaml)")
	root.PersistentFlags().StringVar(&app.SessionName, "session", session.DefaultName, "Name of the editor session to use")

	root.AddCommand(
		newResourcesCmd(app),
		newProjectsCmd(app),
		newPortfoliosCmd(app),
		newAllocCmd(app),
		newCapacityCmd(app),
		newDashboardCmd(app),
		newTimesheetCmd(app),
		newEstimateCmd(app),
		newTimeOffCmd(app),
	)

	return root
}
