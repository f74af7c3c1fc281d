package lifelogservice

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/lifelog/lifelog-server/internal/api"
	"github.com/lifelog/lifelog-server/internal/auth"
	"github.com/lifelog/lifelog-server/internal/config"
	"github.com/lifelog/lifelog-server/internal/factory"
	"github.com/lifelog/lifelog-server/internal/health"
	"github.com/lifelog/lifelog-server/internal/logger"
	"github.com/lifelog/lifelog-server/internal/store"
)

const (
	healthProbeTimeout = 5 * time.Second
	healthInterval     = 15 * time.Second
)

// Run starts the lifelog HTTP server and blocks until shutdown or error.
func Run() error {
	log := logger.New("lifelog-server")

	cfg, err := config.New()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		return err
	}

	log.Info().
		Str("build_target", cfg.BuildTarget).
		Str("db_driver", cfg.DBDriver).
		Int("http_port", cfg.HTTPPort).
		Msg("Lifelog service starting")

	// Cancellable root context bound to SIGINT/SIGTERM
	ctx, stop := newServerContext()
	defer stop()

	st, err := factory.NewStore(ctx, cfg, log)
	if err != nil {
		log.Error().Stack().Err(err).Msg("Store adapter unavailable")
		return err
	}

	authorizer := auth.NewStaticAuthorizer(cfg.APIKey)
	router := api.NewRouter(st, authorizer)

	// Start health checkers and bind service health
	svcHealth := startHealthCheckers(ctx, log, st)

	// Block startup until the store reports healthy; fail fast otherwise
	if err := waitUntilHealthy(ctx, svcHealth); err != nil {
		log.Error().Stack().Err(err).Msg("startup health check failed")
		return err
	}

	server := newHTTPServer(ctx, cfg, router)
	errCh := serveHTTP(server, log, cfg)

	// Graceful shutdown on context cancel or server error
	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down server")
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctxShutdown); err != nil {
			log.Error().Stack().Err(err).Msg("Server forced to shutdown")
			return err
		}
		log.Info().Msg("Server exited")
		return nil
	case err := <-errCh:
		log.Error().Stack().Err(err).Msg("HTTP server failed")
		return err
	}
}

// startHealthCheckers starts the store checker and the service-level
// aggregator, then binds the health endpoint to the aggregate.
func startHealthCheckers(ctx context.Context, log zerolog.Logger, st store.Store) *health.ServiceHealthChecker {
	storeChecker := store.NewStoreHealthChecker(st, log, healthProbeTimeout)
	go storeChecker.Start(ctx, healthInterval)

	svcHealth := health.NewServiceHealthChecker(log, storeChecker)
	go svcHealth.Start(ctx, healthInterval)
	api.BindServiceHealth(svcHealth.IsHealthy)
	return svcHealth
}

func newHTTPServer(ctx context.Context, cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.GetHTTPAddr(),
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
}

func serveHTTP(server *http.Server, log zerolog.Logger, cfg *config.Config) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.HTTPPort).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	return errCh
}

// waitUntilHealthy blocks until service health is healthy or the startup window expires.
// Checkers start unhealthy and need one probe cycle before the first flip.
func waitUntilHealthy(ctx context.Context, svcHealth *health.ServiceHealthChecker) error {
	deadline := time.Now().Add(60 * time.Second)
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()
	for {
		if svcHealth.IsHealthy() {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("startup aborted: store not healthy within 60 seconds")
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// newServerContext returns a cancellable context that is cancelled on SIGINT/SIGTERM.
func newServerContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
