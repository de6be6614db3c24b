package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/heartmarshall/lexilens/internal/config"
	"github.com/heartmarshall/lexilens/internal/coordinator"
	"github.com/heartmarshall/lexilens/internal/transport/middleware"
	"github.com/heartmarshall/lexilens/internal/transport/rest"
	"github.com/heartmarshall/lexilens/internal/transport/ws"
)

// Run is the daemon entry point. It loads configuration, opens the wordbook
// store, starts the coordinator and serves the REST and WebSocket ports
// until ctx is cancelled, then shuts everything down in reverse order.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log)

	logger.Info("starting lexilensd",
		slog.String("version", BuildVersion()),
		slog.String("addr", cfg.Server.Addr()),
		slog.String("database", cfg.Database.Driver),
		slog.String("log_level", cfg.Log.Level),
	)

	store, err := OpenStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	hub := ws.NewHub(logger, ws.Options{AllowedOrigins: splitOrigins(cfg.CORS.AllowedOrigins)})
	coord := coordinator.New(logger, hub, hub, cfg.Coordinator.InboxSize)

	limiter := middleware.NewRateLimiter(cfg.RateLimit.CleanupInterval)
	defer limiter.Stop()

	handler := newRouter(cfg, logger, routes{
		messages: rest.NewMessageHandler(coord, logger),
		wordbook: rest.NewWordbookHandler(store.Wordbook, logger),
		health:   rest.NewHealthHandler(store, coord, BuildVersion()),
		hub:      hub,
		coord:    coord,
		limiter:  limiter,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	coordCtx, stopCoord := context.WithCancel(context.WithoutCancel(ctx))
	defer stopCoord()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return coord.Run(coordCtx)
	})

	g.Go(func() error {
		logger.Info("http server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Server.ShutdownTimeout)
		defer cancel()

		err := srv.Shutdown(shutdownCtx)
		// Hijacked sockets outlive Shutdown. Their disconnect notices need a
		// running coordinator.
		hub.Close()
		stopCoord()
		if err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("stopped")
	return nil
}

func splitOrigins(s string) []string {
	var out []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
