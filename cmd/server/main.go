package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"cthulhu/internal/archive"
	"cthulhu/internal/cache"
	"cthulhu/internal/config"
	"cthulhu/internal/logging"
	"cthulhu/internal/server"
	serverstore "cthulhu/internal/server/store"
	"cthulhu/internal/shutdown"
)

const sessionCleanupInterval = time.Hour

func main() {
	ctx, done := shutdown.New()
	defer done()

	cfg, err := config.Load()
	if err != nil {
		logging.DefaultLogger().Fatalf("processing the config: %v", err)
	}

	logger := logging.NewLogger(cfg.Debug)
	ctx = logging.WithLogger(ctx, logger)
	defer func() { _ = logger.Sync() }()

	if err := realMain(ctx, cfg); err != nil {
		logger.Fatalf("main.realMain: %v", err)
	}
}

func realMain(ctx context.Context, cfg config.Config) error {
	logger := logging.FromContext(ctx).Named("main.realMain")

	statsCache, err := cache.NewLRU(cfg.CacheSize)
	if err != nil {
		return fmt.Errorf("can not create lru cache: %w", err)
	}

	store, err := serverstore.New(cfg.SQLitePath(), statsCache)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			logger.Errorw("closing store", "error", cerr)
		}
	}()

	matches, err := archive.Open(ctx, cfg.ArchivePath())
	if err != nil {
		return fmt.Errorf("opening archive: %w", err)
	}
	defer func() {
		if cerr := matches.Close(ctx); cerr != nil {
			logger.Errorw("closing archive", "error", cerr)
		}
	}()

	hub := server.NewHub(ctx, server.Options{
		BotDeclareDelay:     cfg.BotDeclareDelay,
		BotDeclareStagger:   cfg.BotDeclareStagger,
		BotInvestigateDelay: cfg.BotInvestigateDelay,
		MessageRate:         cfg.MessageRate,
		MessageBurst:        cfg.MessageBurst,
		RecordTimeout:       cfg.ShutdownTimeout,
	}, store, matches)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	server.NewAPI(hub, store, matches, cfg.SessionTTL).RegisterRoutes(r)

	staticDir := http.Dir(filepath.Join(cfg.WebDir, "static"))
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(staticDir)))
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, filepath.Join(cfg.WebDir, "index.html"))
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Infow("server listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen and serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		ticker := time.NewTicker(sessionCleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				n, err := store.CleanupExpiredSessions(gctx)
				if err != nil {
					logger.Warnw("cleanup sessions", "error", err)
					continue
				}
				logger.Debugw("expired sessions removed", "count", n)
			}
		}
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Infof("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		if err := hub.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("hub shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}
