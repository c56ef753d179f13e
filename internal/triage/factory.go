package triage

import (
	"net/http"

	"github.com/spec-kit/supportops/internal/config"
)

// NewGenerator picks the backend named by cfg.Provider. It returns nil when
// enrichment is disabled.
func NewGenerator(cfg config.AIConfig) Generator {
	switch cfg.Provider {
	case config.AIProviderNone:
		return nil
	case config.AIProviderOpenAI:
		return NewOpenAI(cfg.APIToken, cfg.OpenAIBaseURL, cfg.OpenAIModel)
	default:
		return NewHuggingFace(cfg.ModelURL, cfg.APIToken, &http.Client{})
	}
}
