// Package embedding assembles an embedding service from application settings
// and provides a rate-limiting wrapper shared by all providers.
package embedding

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/kb-core/internal/adapters/driven/embedding/ollama"
	"github.com/custodia-labs/kb-core/internal/adapters/driven/embedding/openai"
	"github.com/custodia-labs/kb-core/internal/core/domain"
	"github.com/custodia-labs/kb-core/internal/core/ports/driven"
)

// NewFromSettings builds the configured embedding service. Returns nil for
// ProviderNone: the caller runs without semantic retrieval.
func NewFromSettings(cfg domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	var svc driven.EmbeddingService

	switch cfg.Provider {
	case domain.ProviderNone:
		return nil, nil
	case domain.ProviderOllama:
		svc = ollama.NewEmbeddingService(ollama.Config{
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
		})
	case domain.ProviderOpenAI:
		var err error
		svc, err = openai.NewEmbeddingService(openai.Config{
			APIKey:     cfg.APIKey,
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
		})
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: unknown embedding provider %q", domain.ErrInvalidInput, cfg.Provider)
	}

	if cfg.RequestsPerSecond > 0 {
		svc = Throttle(svc, cfg.RequestsPerSecond)
	}
	return svc, nil
}

// Ensure throttled implements the interface.
var _ driven.EmbeddingService = (*throttled)(nil)

// throttled rate-limits calls to an underlying embedding service.
type throttled struct {
	inner   driven.EmbeddingService
	limiter *rate.Limiter
}

// Throttle wraps an embedding service so provider calls stay under
// requestsPerSecond. A batch counts as a single request.
func Throttle(inner driven.EmbeddingService, requestsPerSecond float64) driven.EmbeddingService {
	return &throttled{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
	}
}

func (t *throttled) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}
	return t.inner.Embed(ctx, text)
}

func (t *throttled) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}
	return t.inner.EmbedBatch(ctx, texts)
}

func (t *throttled) Dimensions() int {
	return t.inner.Dimensions()
}

func (t *throttled) ModelName() string {
	return t.inner.ModelName()
}

func (t *throttled) Ping(ctx context.Context) error {
	return t.inner.Ping(ctx)
}

func (t *throttled) Close() error {
	return t.inner.Close()
}
