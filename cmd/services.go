package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/xvierd/timebox-cli/internal/adapters/git"
	"github.com/xvierd/timebox-cli/internal/adapters/notification"
	"github.com/xvierd/timebox-cli/internal/adapters/storage"
	"github.com/xvierd/timebox-cli/internal/adapters/ticker"
	"github.com/xvierd/timebox-cli/internal/config"
	"github.com/xvierd/timebox-cli/internal/domain"
	"github.com/xvierd/timebox-cli/internal/logger"
	"github.com/xvierd/timebox-cli/internal/ports"
	"github.com/xvierd/timebox-cli/internal/services"
	"github.com/xvierd/timebox-cli/internal/timer"
)

// appDeps groups all service-layer dependencies initialized at startup.
type appDeps struct {
	config   *config.Config
	storage  ports.Storage
	list     *services.TimeboxListService
	active   *services.ActiveTimeboxService
	state    *services.StateService
	git      ports.GitDetector
	notifier *notification.Notifier
}

// app holds all initialized service dependencies.
// Populated by initializeServices() and accessible to all commands.
var app appDeps

// initializeServices sets up all the required services and adapters.
func initializeServices() error {
	var err error
	if configPath == "" {
		configPath, err = config.GetConfigPath()
		if err != nil {
			return err
		}
	}
	app.config, err = config.LoadFrom(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger.SetDebug(debugMode || app.config.Log.Debug)
	if err := logger.Init(config.GetLogPath(app.config)); err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	// Determine database path
	if dbPath == "" {
		dbPath = config.GetDBPath(app.config)
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0750); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}

	app.storage, err = storage.New(dbPath)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	app.list = services.NewTimeboxListService(app.storage)
	if _, err := app.list.Seed(context.Background()); err != nil {
		return fmt.Errorf("failed to seed pending list: %w", err)
	}

	initial, err := app.config.ActiveTimebox()
	if err != nil {
		return err
	}

	workingDir, _ := os.Getwd()
	app.git = git.NewDetector(workingDir)

	machine := timer.New(ticker.New(), timer.WithInterval(time.Duration(app.config.Timer.TickInterval)))
	app.active = services.NewActiveTimeboxService(initial, machine, app.storage, app.git)
	app.active.SetWorkingDir(workingDir)

	app.notifier = notification.New(&app.config.Notifications)
	app.active.OnExpire(func(tb domain.Timebox) {
		if err := app.notifier.NotifyTimeUp(tb); err != nil {
			logger.Warn("notification failed: %v", err)
		}
	})

	app.state = services.NewStateService(app.storage, app.list)
	app.state.SetActiveService(app.active)

	logger.Info("services initialized (db=%s, config=%s, log=%s)", dbPath, configPath, logger.Path())
	return nil
}

// cleanupServices closes all resources. It is safe to call more than once.
func cleanupServices() error {
	if app.active != nil {
		// A run still in progress on exit is recorded.
		if _, err := app.active.Stop(context.Background()); err != nil {
			logger.Warn("failed to record run on exit: %v", err)
		}
		app.active.Close()
		app.active = nil
	}
	var err error
	if app.storage != nil {
		err = app.storage.Close()
		app.storage = nil
	}
	logger.Close()
	return err
}

// setupSignalHandler sets up a context that cancels on interrupt signals.
func setupSignalHandler() context.Context {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		cancel()
	}()

	return ctx
}
