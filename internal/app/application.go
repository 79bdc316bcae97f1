package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/raysh454/safeecho/internal/alerts"
	"github.com/raysh454/safeecho/internal/classifier"
	"github.com/raysh454/safeecho/internal/detector"
	"github.com/raysh454/safeecho/internal/logging"
	"github.com/raysh454/safeecho/internal/server"
)

// Application is the runtime state container for `safeecho serve`.
// It owns the model store, the alert store, the scoring engine and the HTTP
// server, and is the only place they are wired together.
type Application struct {
	Config *Config
	Logger logging.Logger

	Alerts *alerts.Store
	Engine *detector.Engine
	Server *server.Server

	models *classifier.ModelStore
}

// NewApplication builds every component from cfg. A missing or unreadable
// model is logged and leaves the engine unavailable unless cfg.Model.Required
// is set.
func NewApplication(ctx context.Context, cfg *Config, logger logging.Logger) (*Application, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		return nil, errors.New("app: nil logger; please pass a valid logging.Logger")
	}

	a := &Application{
		Config: cfg,
		Logger: logger.With(logging.Component("app")),
	}

	model, err := a.openModel(ctx)
	if err != nil {
		if cfg.Model.Required {
			a.Close()
			return nil, err
		}
		a.Logger.Warn("starting without a classifier model", logging.Err(err))
	}

	a.Alerts = alerts.NewStore(alerts.WithLogger(logger))

	a.Engine, err = detector.NewEngine(cfg.Detector, model, a.Alerts, logger)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("creating detector: %w", err)
	}

	a.Server, err = server.NewServer(cfg.Server, a.Engine, a.Alerts, logger)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("creating server: %w", err)
	}

	return a, nil
}

// openModel opens the model store and loads the stored model. The store is
// kept open on success so ReloadModel can reuse it.
func (a *Application) openModel(ctx context.Context) (classifier.Classifier, error) {
	path, err := a.Config.ModelPath()
	if err != nil {
		return nil, fmt.Errorf("expanding model path: %w", err)
	}

	store, err := classifier.OpenModelStore(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("opening model store: %w", err)
	}
	a.models = store

	nb, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading model from %s: %w", path, err)
	}
	a.Logger.Info("loaded classifier model",
		logging.F("path", path),
		logging.F("labels", nb.Labels()),
		logging.F("vocabulary", nb.VocabularySize()),
	)
	return nb, nil
}

// ReloadModel re-reads the model from the store and swaps it into the engine.
// On failure the current model stays in place.
func (a *Application) ReloadModel(ctx context.Context) error {
	if a.models == nil {
		return errors.New("app: model store is not open")
	}
	nb, err := a.models.Load(ctx)
	if err != nil {
		return fmt.Errorf("reloading model: %w", err)
	}
	a.Engine.SetModel(nb)
	a.Logger.Info("reloaded classifier model", logging.F("vocabulary", nb.VocabularySize()))
	return nil
}

// Run listens on the configured address and serves until ctx is cancelled.
func (a *Application) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.Config.Server.ListenAddr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", a.Config.Server.ListenAddr, err)
	}
	return a.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled, then shuts down gracefully within
// Server.ShutdownTimeout.
func (a *Application) Serve(ctx context.Context, ln net.Listener) error {
	srv := a.Server.HTTPServer()

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("serving", logging.F("addr", ln.Addr().String()))
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving http: %w", err)
	case <-ctx.Done():
	}

	a.Logger.Info("application shutdown initiated")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.Logger.Warn("http shutdown returned error", logging.Err(err))
		_ = srv.Close()
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serving http: %w", err)
	}
	return nil
}

// Close releases the model store.
func (a *Application) Close() error {
	if a == nil || a.models == nil {
		return nil
	}
	err := a.models.Close()
	a.models = nil
	return err
}
