// Package provider implements the generation backends that turn prompts
// into SQL text.
package provider

import (
	"fmt"

	"t2s/internal/config"
	"t2s/internal/domain"
)

// New builds the configured Generator. Call deadlines come from the
// request context; the pipeline owns the generation timeout.
func New(cfg *config.Config) (domain.Generator, error) {
	switch cfg.Provider {
	case config.ProviderOllama:
		return NewOllama(cfg.OllamaBaseURL, cfg.OllamaModel, cfg.MaxOutputTokens), nil
	case config.ProviderGroq:
		return NewGroq(cfg.GroqAPIKey, cfg.GroqBaseURL, cfg.GroqModel, cfg.MaxOutputTokens)
	default:
		return nil, fmt.Errorf("unknown provider %q (use %q or %q)", cfg.Provider, config.ProviderOllama, config.ProviderGroq)
	}
}
