package cli

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"t2s/internal/app"
	"t2s/internal/config"
	"t2s/internal/db"
	"t2s/internal/db/repository"
	"t2s/internal/domain"
	"t2s/internal/engine"
	"t2s/internal/service/audit"
)

// cliLogger keeps warnings visible on stderr without polluting command
// output with info-level chatter.
func cliLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

// cliRuntime is the fully-wired pipeline plus the handles to close when the
// command finishes. Commands that execute questions use this.
type cliRuntime struct {
	cfg     *config.Config
	app     *app.App
	eng     domain.Engine
	writeDB *sql.DB
	readDB  *sql.DB
}

func (rt *cliRuntime) Close() {
	_ = rt.eng.Close()
	_ = rt.readDB.Close()
	_ = rt.writeDB.Close()
}

// openRuntime wires the pipeline the way the server does. The retention
// sweeper stays stopped: one-shot commands leave pruning to the server.
func openRuntime(ctx context.Context) (*cliRuntime, error) {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	writeDB, readDB, err := db.OpenAuditStore(cfg.LogDBPath, 2)
	if err != nil {
		return nil, fmt.Errorf("open audit log: %w", err)
	}

	eng, err := engine.New(cfg.Dialect, cfg.DBPath)
	if err != nil {
		_ = readDB.Close()
		_ = writeDB.Close()
		return nil, fmt.Errorf("open %s database: %w", cfg.Dialect, err)
	}

	a, err := app.New(ctx, app.Deps{
		Cfg:     cfg,
		Engine:  eng,
		WriteDB: writeDB,
		ReadDB:  readDB,
		Logger:  cliLogger(),
	})
	if err != nil {
		_ = eng.Close()
		_ = readDB.Close()
		_ = writeDB.Close()
		return nil, err
	}

	return &cliRuntime{cfg: cfg, app: a, eng: eng, writeDB: writeDB, readDB: readDB}, nil
}

// auditRuntime is the audit-log-only wiring used by history commands, which
// must not touch the queried database or the provider.
type auditRuntime struct {
	cfg     *config.Config
	audit   *audit.Service
	writeDB *sql.DB
	readDB  *sql.DB
}

func (rt *auditRuntime) Close() {
	_ = rt.readDB.Close()
	_ = rt.writeDB.Close()
}

func openAuditRuntime() (*auditRuntime, error) {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	writeDB, readDB, err := db.OpenAuditStore(cfg.LogDBPath, 2)
	if err != nil {
		return nil, fmt.Errorf("open audit log: %w", err)
	}

	logRepo := repository.NewQueryLogRepo(writeDB, readDB)
	return &auditRuntime{
		cfg:     cfg,
		audit:   audit.NewService(logRepo, cfg.HistoryLimit, cliLogger().With("component", "audit")),
		writeDB: writeDB,
		readDB:  readDB,
	}, nil
}
