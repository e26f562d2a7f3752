package bootstrap

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	sessioninadapter "hairly/internal/modules/session/adapter/in"
	sessionoutadapter "hairly/internal/modules/session/adapter/out"
	sessionout "hairly/internal/modules/session/port/out"
	sessionservice "hairly/internal/modules/session/service"
	sessionusecase "hairly/internal/modules/session/usecase"
	workflowinadapter "hairly/internal/modules/workflow/adapter/in"
	workflowoutadapter "hairly/internal/modules/workflow/adapter/out"
	"hairly/internal/modules/workflow/domain"
	workflowin "hairly/internal/modules/workflow/port/in"
	workflowusecase "hairly/internal/modules/workflow/usecase"
	"hairly/internal/platform/clock"
	"hairly/internal/platform/config"
	"hairly/internal/platform/logging"
	uiapp "hairly/internal/ui/app"
)

// Mode selects how the app is driven. The terminal UI starts at the login
// screen and logs to a file; headless commands start signed in and log to
// stderr.
type Mode int

const (
	ModeCLI Mode = iota
	ModeTUI
)

// cliUser is the identity headless commands run under.
const cliUser = "cli"

type App struct {
	SessionCLI  sessioninadapter.CLIHandler
	WorkflowCLI workflowinadapter.CLIHandler
	Workflow    workflowin.Usecase
	Logger      *slog.Logger

	closers []io.Closer
}

func New(cfg config.Config, mode Mode) (*App, error) {
	app := &App{}
	app.Logger = app.newLogger(cfg, mode)

	kv := app.openKeyValueStore(cfg)
	store := sessionservice.NewSessionStore(context.Background(), kv, app.Logger)

	nav := domain.NewNavigator()
	if mode == ModeCLI {
		nav = domain.NewAuthenticatedNavigator(cliUser)
	}

	app.Workflow = workflowusecase.NewInteractor(workflowusecase.Dependencies{
		Navigator:           nav,
		Session:             store,
		Gateway:             workflowoutadapter.NewHTTPGateway(cfg.APIBaseURL, cfg.RequestTimeout, app.Logger),
		Loader:              workflowoutadapter.NewFileImageLoader(),
		Exporter:            workflowoutadapter.NewMarkdownPlanExporter(filepath.Join(cfg.DataDir, "plans")),
		Clock:               clock.SystemClock{},
		Logger:              app.Logger,
		LogoutClearsSession: cfg.LogoutClearsSession,
	})
	app.SessionCLI = sessioninadapter.NewCLIHandler(sessionusecase.NewInteractor(store))
	app.WorkflowCLI = workflowinadapter.NewCLIHandler(app.Workflow)

	app.Logger.Debug("app ready",
		"storage", cfg.StorageBackend,
		"api", cfg.APIBaseURL,
		"degraded", store.Degraded(),
	)
	return app, nil
}

func (a *App) newLogger(cfg config.Config, mode Mode) *slog.Logger {
	if mode == ModeCLI {
		return logging.New(os.Stderr, cfg.LogLevel)
	}
	logger, closer, err := logging.NewFile(cfg.LogPath, cfg.LogLevel)
	if err != nil {
		// stdout belongs to the renderer
		return logging.Discard()
	}
	a.closers = append(a.closers, closer)
	return logger
}

// openKeyValueStore returns nil when the configured backend cannot be opened;
// the session store then runs degraded in memory.
func (a *App) openKeyValueStore(cfg config.Config) sessionout.KeyValueStore {
	switch cfg.StorageBackend {
	case config.BackendMemory:
		return sessionoutadapter.NewMemoryKeyValueStore()
	case config.BackendFile:
		return sessionoutadapter.NewFileKeyValueStore(cfg.StatePath)
	default:
		kv, err := sessionoutadapter.NewSQLiteKeyValueStore(cfg.DBPath)
		if err != nil {
			a.Logger.Warn("session storage unavailable", "backend", cfg.StorageBackend, "err", err)
			return nil
		}
		a.closers = append(a.closers, kv)
		return kv
	}
}

func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i].Close())
	}
	a.closers = nil
	return errors.Join(errs...)
}

func RunTUI(app *App) error {
	program := tea.NewProgram(uiapp.NewModel(app.Workflow), tea.WithAltScreen())
	_, err := program.Run()
	return err
}
