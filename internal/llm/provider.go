package llm

import (
	"context"
	"fmt"

	"gourmet-guide/internal/config"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// NewFromConfig builds the TextGenerator selected by cfg.LLMProvider.
// The returned Closer must be closed when the generator is no longer needed.
func NewFromConfig(ctx context.Context, cfg *config.Config) (TextGenerator, Closer, error) {
	switch cfg.LLMProvider {
	case config.ProviderOpenAI:
		return NewOpenAIClient(cfg), nopCloser{}, nil
	case config.ProviderGroq:
		return NewGroqClient(cfg), nopCloser{}, nil
	case config.ProviderGemini:
		c, err := NewGeminiClient(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		return c, c, nil
	default:
		return nil, nil, fmt.Errorf("unsupported LLM provider %q", cfg.LLMProvider)
	}
}
