package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/ischedule/ischedule/internal/config"
	"github.com/ischedule/ischedule/internal/database"
	"github.com/ischedule/ischedule/pkg/storage"
	log "github.com/sirupsen/logrus"
)

const shutdownTimeout = 10 * time.Second

// Application wires configuration, storage, router, background scheduling and server lifecycle.
type Application struct {
	cfg     config.Application
	deps    *Dependencies
	router  *mux.Router
	srv     *http.Server
	closers []func()
}

// NewApplication constructs the full HTTP application, ready to Run().
func NewApplication() (*Application, error) {
	cfg, err := config.Load("./config/application.yaml")
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	deps, err := BuildDependencies(ctx, store, cfg)
	if err != nil {
		closeStore()
		return nil, err
	}

	r := mux.NewRouter()
	SetupMiddleware(r, deps, cfg)
	RegisterRoutes(r, deps, cfg)

	srv := &http.Server{
		Handler:      r,
		Addr:         cfg.Listen,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Application{cfg: cfg, deps: deps, router: r, srv: srv, closers: []func(){closeStore}}, nil
}

// openStore connects the configured storage backend and returns a function releasing it.
func openStore(ctx context.Context, cfg config.Application) (storage.Store, func(), error) {
	switch cfg.Storage.Backend {
	case config.StorageBackendPostgres:
		if err := database.Migrate(cfg.Database); err != nil {
			return nil, nil, err
		}
		db, err := database.Open(cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		return storage.NewPostgresStore(db), db.Close, nil
	case config.StorageBackendRedis:
		redisCfg := cfg.Storage.Redis
		client, err := storage.NewRedisClient(ctx, redisCfg.Addr, redisCfg.Password, redisCfg.DB)
		if err != nil {
			return nil, nil, err
		}
		closeClient := func() {
			if err := client.Close(); err != nil {
				log.Errorf("failed to close redis client: %v", err)
			}
		}
		return storage.NewRedisStore(client, redisCfg.KeyPrefix), closeClient, nil
	case config.StorageBackendMemory:
		log.Warn("using in-memory storage, data is lost on restart")
		return storage.NewMemoryStore(), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

// Run restores the previous session, starts the reminder schedule and serves HTTP until
// SIGINT or SIGTERM.
func (a *Application) Run() error {
	defer a.close()

	a.deps.ReminderRunner.Start()
	if err := a.deps.SessionManager.Restore(context.Background()); err != nil {
		log.Errorf("failed to restore session: %v", err)
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("Starting server on %s", a.srv.Addr)
		if err := a.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case err := <-errCh:
		a.stopRunner()
		return err
	case sig := <-stop:
		log.Infof("received %s, shutting down", sig)
	}

	a.stopRunner()
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return <-errCh
}

func (a *Application) stopRunner() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	a.deps.ReminderRunner.Stop(ctx)
}

func (a *Application) close() {
	for _, closer := range a.closers {
		closer()
	}
}
