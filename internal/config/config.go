// Package config handles application configuration and environment loading.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Provider names accepted in T2S_PROVIDER.
const (
	ProviderOllama = "ollama"
	ProviderGroq   = "groq"
)

// Dialect names accepted in T2S_DB_DIALECT.
const (
	DialectSQLite = "sqlite"
	DialectDuckDB = "duckdb"
)

// Config holds the configuration for the ask pipeline and the HTTP server.
type Config struct {
	// Provider selection
	Provider        string // "ollama" (default) or "groq"
	OllamaBaseURL   string // Ollama server base URL (default http://localhost:11434)
	OllamaModel     string // Ollama chat model (default llama3.1:8b-instruct)
	GroqAPIKey      string // Groq API key (required when Provider is "groq")
	GroqModel       string // Groq chat model (default llama-3.3-70b-versatile)
	GroqBaseURL     string // Groq API base URL (default https://api.groq.com)
	MaxOutputTokens int    // generation token cap (default 256)

	// Target database
	DBPath  string // queried database file (default ./data/student.db)
	Dialect string // "sqlite" (default) or "duckdb"

	// Audit log
	LogDBPath          string // audit SQLite file (default ./data/t2s_log.db)
	HistoryLimit       int    // default rows for history listings (default 20)
	AuditRetentionDays int    // prune audit rows older than this; 0 keeps forever

	// Pipeline limits
	MaxInputChars   int           // question length cap in runes (default 500)
	DefaultRowLimit int           // LIMIT bound added to unbounded queries (default 100)
	RateLimitMax    int           // admitted requests per client per window (default 15)
	RateLimitWindow time.Duration // sliding window length (default 60s)
	GenerateTimeout time.Duration // provider call budget (default 60s)
	ExecTimeout     time.Duration // query execution budget (default 30s)

	// HTTP server
	ListenAddr         string   // listen address (default ":8080")
	LogLevel           string   // debug, info, warn, error (default "info")
	HTTPRateRPS        float64  // transport-level sustained requests per second (default 10)
	HTTPRateBurst      int      // transport-level burst capacity (default 20)
	CORSAllowedOrigins []string // allowed origins for CORS (default ["*"])

	// Warnings collects non-fatal findings from loading. They are logged
	// by the caller once the logger exists.
	Warnings []string
}

// SlogLevel maps the LogLevel string to an slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LoadFromEnv loads configuration from environment variables, reading a
// .env file first when one is present. Environment variables win over
// .env entries.
func LoadFromEnv() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Provider:        strings.ToLower(envString("T2S_PROVIDER", ProviderOllama)),
		OllamaBaseURL:   envString("OLLAMA_BASE_URL", "http://localhost:11434"),
		OllamaModel:     envString("OLLAMA_MODEL", "llama3.1:8b-instruct"),
		GroqAPIKey:      os.Getenv("GROQ_API_KEY"),
		GroqModel:       envString("GROQ_MODEL", "llama-3.3-70b-versatile"),
		GroqBaseURL:     envString("GROQ_BASE_URL", "https://api.groq.com"),
		MaxOutputTokens: envInt("T2S_MAX_OUTPUT_TOKENS", 256),

		DBPath:  envString("T2S_DB_PATH", "./data/student.db"),
		Dialect: strings.ToLower(envString("T2S_DB_DIALECT", DialectSQLite)),

		LogDBPath:          envString("T2S_LOG_DB_PATH", "./data/t2s_log.db"),
		HistoryLimit:       envInt("T2S_HISTORY_LIMIT", 20),
		AuditRetentionDays: envInt("T2S_AUDIT_RETENTION_DAYS", 0),

		MaxInputChars:   envInt("T2S_MAX_INPUT_CHARS", 500),
		DefaultRowLimit: envInt("T2S_DEFAULT_ROW_LIMIT", 100),
		RateLimitMax:    envInt("T2S_RATE_LIMIT_MAX_REQUESTS", 15),
		RateLimitWindow: time.Duration(envInt("T2S_RATE_LIMIT_WINDOW_SEC", 60)) * time.Second,
		GenerateTimeout: time.Duration(envInt("T2S_GENERATE_TIMEOUT_SEC", 60)) * time.Second,
		ExecTimeout:     time.Duration(envInt("T2S_EXEC_TIMEOUT_SEC", 30)) * time.Second,

		ListenAddr:    envString("T2S_HTTP_ADDR", ":8080"),
		LogLevel:      envString("T2S_LOG_LEVEL", "info"),
		HTTPRateRPS:   10,
		HTTPRateBurst: envInt("T2S_HTTP_RATE_BURST", 20),
	}

	if v := os.Getenv("T2S_HTTP_RATE_RPS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.HTTPRateRPS = f
		}
	}

	cfg.CORSAllowedOrigins = []string{"*"}
	if v := os.Getenv("T2S_CORS_ALLOWED_ORIGINS"); v != "" {
		origins := strings.Split(v, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		cfg.CORSAllowedOrigins = origins
	}

	switch cfg.Provider {
	case ProviderOllama, ProviderGroq:
	default:
		return nil, fmt.Errorf("unknown T2S_PROVIDER %q (want %q or %q)", cfg.Provider, ProviderOllama, ProviderGroq)
	}
	switch cfg.Dialect {
	case DialectSQLite, DialectDuckDB:
	default:
		return nil, fmt.Errorf("unknown T2S_DB_DIALECT %q (want %q or %q)", cfg.Dialect, DialectSQLite, DialectDuckDB)
	}

	if cfg.Provider == ProviderGroq && cfg.GroqAPIKey == "" {
		cfg.Warnings = append(cfg.Warnings, "GROQ_API_KEY is not set, building the groq provider will fail")
	}
	if cfg.RateLimitMax <= 0 || cfg.RateLimitWindow <= 0 {
		cfg.Warnings = append(cfg.Warnings, "per-client rate limiting is disabled")
	}

	return cfg, nil
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
