// Package app provides application-level wiring: it assembles repositories
// and services from the handles main() opens, so the HTTP server and the CLI
// share one construction path.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"t2s/internal/config"
	"t2s/internal/db/repository"
	"t2s/internal/domain"
	"t2s/internal/provider"
	"t2s/internal/ratelimit"
	"t2s/internal/service/ask"
	"t2s/internal/service/audit"
)

// Deps holds the external dependencies that main() must provide.
// These are things the app package cannot (or should not) create itself:
// config, the query engine, and the audit log database pools.
type Deps struct {
	Cfg     *config.Config
	Engine  domain.Engine
	WriteDB *sql.DB // audit log writes, single-connection pool
	ReadDB  *sql.DB // audit log reads
	Logger  *slog.Logger
}

// Services groups the service pointers that the API handler and the web UI
// call into.
type Services struct {
	Ask   *ask.Service
	Audit *audit.Service
}

// App holds the fully-wired application, plus the generator and sweeper that
// main() needs for startup logging and lifecycle control.
type App struct {
	Services Services
	Gen      domain.Generator
	Sweeper  *audit.Sweeper
}

// New wires repositories and services from the provided deps. It builds the
// generator for the configured provider, so it fails when the provider name
// is unknown or its credentials are missing. The retention sweeper is
// returned stopped; callers decide whether to Start it.
func New(ctx context.Context, deps Deps) (*App, error) {
	cfg := deps.Cfg

	if err := deps.WriteDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("audit log database: %w", err)
	}

	gen, err := provider.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("provider: %w", err)
	}

	logRepo := repository.NewQueryLogRepo(deps.WriteDB, deps.ReadDB)
	auditSvc := audit.NewService(logRepo, cfg.HistoryLimit, deps.Logger.With("component", "audit"))
	sweeper := audit.NewSweeper(logRepo, cfg.AuditRetentionDays, deps.Logger.With("component", "sweeper"))
	askSvc := ask.NewService(
		cfg, gen, deps.Engine, ratelimit.New(), auditSvc,
		deps.Logger.With("component", "ask"),
	)

	return &App{
		Services: Services{
			Ask:   askSvc,
			Audit: auditSvc,
		},
		Gen:     gen,
		Sweeper: sweeper,
	}, nil
}
