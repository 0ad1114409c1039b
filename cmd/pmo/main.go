package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/alexanderramin/pmo/internal/api"
	"github.com/alexanderramin/pmo/internal/cli"
	"github.com/alexanderramin/pmo/internal/config"
	"github.com/alexanderramin/pmo/internal/dashboard"
	"github.com/alexanderramin/pmo/internal/db"
	"github.com/alexanderramin/pmo/internal/domain"
	"github.com/alexanderramin/pmo/internal/editor"
	"github.com/alexanderramin/pmo/internal/estimation"
	"github.com/alexanderramin/pmo/internal/logging"
	"github.com/alexanderramin/pmo/internal/repository"
	"github.com/alexanderramin/pmo/internal/session"
	"github.com/alexanderramin/pmo/internal/timeoff"
	"github.com/alexanderramin/pmo/internal/timesheet"
	"github.com/mattn/go-isatty"
)

// saveLogRetention is how long local save records are kept.
const saveLogRetention = 180 * 24 * time.Hour

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var closers []io.Closer
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i].Close()
		}
	}()

	app := &cli.App{
		IsInteractive: isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd()),
	}
	app.Setup = func(configPath string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}

		logger, logCloser, err := logging.New(cfg.Log, os.Stderr)
		if err != nil {
			return err
		}
		closers = append(closers, logCloser)

		database, err := db.OpenDB(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		closers = append(closers, database)

		client := api.NewClient(cfg.ClientConfig(), api.NewLogObserver(logger))

		sessionRepo := repository.NewSQLiteEditorSessionRepo(database)
		saveLogRepo := repository.NewSQLiteSaveLogRepo(database)
		uow := db.NewSQLiteUnitOfWork(database, db.WithUoWLogger(logger))

		if n, err := saveLogRepo.DeleteBefore(ctx, time.Now().Add(-saveLogRetention)); err != nil {
			logger.Warn("pruning save log failed", "error", err)
		} else if n > 0 {
			logger.Debug("pruned save log", "removed", n)
		}

		app.Config = cfg
		app.Logger = logger
		app.Directory = client
		app.Editor = editor.NewStore(client, domain.ModeResource, editor.WithLogger(logger))
		app.Sessions = session.NewManager(uow, sessionRepo, session.WithLogger(logger))
		app.SaveLog = saveLogRepo
		app.Dashboard = dashboard.NewService(client, dashboard.Config{
			Interval:    cfg.Dashboard.Interval,
			Concurrency: cfg.Dashboard.Concurrency,
		}, logger)
		app.Timesheets = timesheet.NewService(client, logger)
		app.Estimations = estimation.NewService(client, logger)
		app.TimeOff = timeoff.NewService(client, logger)
		return nil
	}

	err := cli.NewRootCmd(app).ExecuteContext(ctx)
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("interrupted")
	}
	return err
}
