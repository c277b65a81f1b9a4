// Package main is the entry point for the t2s HTTP server. It loads config,
// opens the audit log and the queried database, wires the question pipeline,
// and serves the JSON API under /api/v1 alongside the web UI at /.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"t2s/internal/api"
	"t2s/internal/app"
	"t2s/internal/config"
	"t2s/internal/db"
	"t2s/internal/engine"
	"t2s/internal/middleware"
	"t2s/internal/ui"

	_ "github.com/duckdb/duckdb-go/v2"
	_ "github.com/mattn/go-sqlite3"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)
	for _, warning := range cfg.Warnings {
		logger.Warn(warning)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	writeDB, readDB, err := db.OpenAuditStore(cfg.LogDBPath, 4)
	if err != nil {
		return fmt.Errorf("open audit log: %w", err)
	}
	defer writeDB.Close()
	defer readDB.Close()

	eng, err := engine.New(cfg.Dialect, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open %s database: %w", cfg.Dialect, err)
	}
	defer eng.Close()

	a, err := app.New(ctx, app.Deps{
		Cfg:     cfg,
		Engine:  eng,
		WriteDB: writeDB,
		ReadDB:  readDB,
		Logger:  logger,
	})
	if err != nil {
		return err
	}

	if err := a.Sweeper.Start(ctx); err != nil {
		logger.Warn("audit retention sweeper not started", "error", err)
	}
	defer a.Sweeper.Stop()

	apiHandler := api.NewHandler(a.Services.Ask, a.Services.Audit, eng, logger.With("component", "api"))
	uiHandler := ui.NewHandler(a.Services.Ask, a.Services.Audit, eng, a.Gen, cfg, logger.With("component", "ui"))

	r := chi.NewRouter()
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.ClientKey)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
	r.Use(middleware.RateLimiter(middleware.RateLimitConfig{
		RequestsPerSecond: cfg.HTTPRateRPS,
		Burst:             cfg.HTTPRateBurst,
	}))

	r.Get("/healthz", api.Healthz)
	r.Mount("/api/v1", apiHandler.Routes())
	ui.MountRoutes(r, uiHandler)

	srv := &http.Server{
		Addr:        cfg.ListenAddr,
		Handler:     r,
		ReadTimeout: 15 * time.Second,
		// SSE responses stay open while the model streams, so the write
		// budget is generous.
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		<-ctx.Done()
		logger.Info("shutting down")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("t2s listening",
		"addr", cfg.ListenAddr,
		"provider", a.Gen.Name(),
		"model", a.Gen.Model(),
		"dialect", eng.Dialect(),
	)
	logger.Info("web UI ready", "url", "http://"+browseHostForListenAddr(cfg.ListenAddr)+"/")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}

// browseHostForListenAddr rewrites a listen address into a host a browser on
// the same machine can reach, for the startup hint log. Wildcard and empty
// hosts become localhost; anything unparseable passes through untouched.
func browseHostForListenAddr(addr string) string {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		addr = ":8080"
	}
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	switch host {
	case "", "0.0.0.0", "::":
		host = "localhost"
	}
	return net.JoinHostPort(host, port)
}
