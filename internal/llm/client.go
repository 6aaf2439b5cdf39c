// Package llm adapts hosted language-model services to the training pages.
package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/ashureev/ajiwai-labs/internal/config"
	"github.com/ashureev/ajiwai-labs/internal/domain"
	"github.com/ashureev/ajiwai-labs/internal/metrics"
)

// ErrEmptyCompletion is returned when a provider answers without any text.
var ErrEmptyCompletion = errors.New("completion returned no content")

// Completer turns an ordered list of role-tagged messages into one reply.
type Completer interface {
	Complete(ctx context.Context, messages []domain.Message) (string, error)
}

// Embedder converts texts into dense vectors, one per input, in input order.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Clients bundles what a provider offers. Embedder is nil when the provider
// has no embeddings endpoint.
type Clients struct {
	Provider  string
	Completer Completer
	Embedder  Embedder
}

// New builds the configured provider, wrapped with metrics and logging.
func New(cfg config.LLMConfig, m *metrics.Metrics) (*Clients, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		c, err := NewOpenAIClient(cfg)
		if err != nil {
			return nil, err
		}
		return &Clients{
			Provider:  cfg.Provider,
			Completer: NewInstrumented(cfg.Provider, c, m),
			Embedder:  c,
		}, nil
	case config.ProviderAnthropic:
		c, err := NewAnthropicClient(cfg)
		if err != nil {
			return nil, err
		}
		return &Clients{
			Provider:  cfg.Provider,
			Completer: NewInstrumented(cfg.Provider, c, m),
		}, nil
	case config.ProviderMock:
		return &Clients{
			Provider:  cfg.Provider,
			Completer: NewInstrumented(cfg.Provider, NewMock(), m),
		}, nil
	default:
		return nil, fmt.Errorf("unsupported provider %q", cfg.Provider)
	}
}
