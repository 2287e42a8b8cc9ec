package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/kb-core/internal/core/domain"
	"github.com/custodia-labs/kb-core/internal/core/ports/driven"
	"github.com/custodia-labs/kb-core/internal/core/ports/driving"
	"github.com/custodia-labs/kb-core/internal/logger"
)

// noProviderContext is returned in place of passages when no embedding
// provider is configured. The caller gets a usable explanation rather
// than an error.
const noProviderContext = "No knowledge base results: semantic retrieval is not available " +
	"because no embedding provider is configured. Configure one with " +
	"'kb settings embedding' and reembed existing documents."

// SearchService implements driving.SearchService: it embeds the query and
// ranks visible chunks by cosine similarity.
type SearchService struct {
	docStore driven.DocumentStore
	embedder driven.EmbeddingService // optional
	bounds   domain.SearchSettings
}

var _ driving.SearchService = (*SearchService)(nil)

// NewSearchService creates the service. The embedder may be nil, in which
// case every search returns an empty, explained response.
func NewSearchService(docStore driven.DocumentStore, embedder driven.EmbeddingService, bounds domain.SearchSettings) *SearchService {
	if bounds.DefaultLimit <= 0 {
		bounds.DefaultLimit = domain.DefaultSearchLimit
	}
	if bounds.MaxLimit <= 0 {
		bounds.MaxLimit = domain.DefaultSearchMaxLimit
	}
	if bounds.DefaultThreshold <= 0 {
		bounds.DefaultThreshold = domain.DefaultSearchThreshold
	}
	return &SearchService{
		docStore: docStore,
		embedder: embedder,
		bounds:   bounds,
	}
}

// Search runs a semantic retrieval query over the documents visible to the
// scope. An unconfigured provider yields an empty response whose Context
// explains the situation; a configured but failing provider is an error.
func (s *SearchService) Search(ctx context.Context, scope domain.OwnerScope, query string, opts domain.SearchOptions) (*domain.SearchResponse, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: empty query", domain.ErrInvalidInput)
	}
	if len(query) > domain.MaxQueryLength {
		return nil, fmt.Errorf("%w: %d characters exceeds limit of %d",
			domain.ErrQueryTooLong, len(query), domain.MaxQueryLength)
	}

	limit := s.clampLimit(opts.Limit)
	threshold := s.clampThreshold(opts.Threshold)

	if s.embedder == nil {
		logger.Debug("Search without embedding provider, returning empty response")
		return &domain.SearchResponse{Context: noProviderContext}, nil
	}

	logger.Section("Search")
	logger.Debug("Query: %q (limit=%d, threshold=%.2f)", query, limit, threshold)

	queryVec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	hits, err := s.docStore.SimilaritySearch(ctx, scope, queryVec, limit, threshold)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}

	results, err := s.hydrate(ctx, hits)
	if err != nil {
		return nil, err
	}

	logger.Debug("Search returned %d results", len(results))
	return &domain.SearchResponse{
		Results: results,
		Count:   len(results),
		Context: formatContext(results),
	}, nil
}

// hydrate attaches document names to hits for citation.
func (s *SearchService) hydrate(ctx context.Context, hits []driven.ChunkHit) ([]domain.SearchResult, error) {
	names := make(map[string]string)
	results := make([]domain.SearchResult, 0, len(hits))

	for _, hit := range hits {
		name, ok := names[hit.Chunk.DocumentID]
		if !ok {
			doc, err := s.docStore.GetDocument(ctx, hit.Chunk.DocumentID)
			if err != nil {
				return nil, fmt.Errorf("resolve document %s: %w", hit.Chunk.DocumentID, err)
			}
			name = doc.Name
			names[hit.Chunk.DocumentID] = name
		}
		results = append(results, domain.SearchResult{
			Chunk:        hit.Chunk,
			DocumentName: name,
			Similarity:   hit.Similarity,
		})
	}
	return results, nil
}

func (s *SearchService) clampLimit(limit int) int {
	if limit <= 0 {
		return s.bounds.DefaultLimit
	}
	if limit > s.bounds.MaxLimit {
		return s.bounds.MaxLimit
	}
	return limit
}

func (s *SearchService) clampThreshold(threshold float64) float64 {
	if threshold <= 0 {
		return s.bounds.DefaultThreshold
	}
	if threshold > 1 {
		return 1
	}
	return threshold
}

// formatContext renders results as a citation-bearing block for direct use
// as grounding context by a language-model caller.
func formatContext(results []domain.SearchResult) string {
	if len(results) == 0 {
		return "No knowledge base results matched the query."
	}

	var b strings.Builder
	for i, r := range results {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "[%d] From %q (chunk %d, relevance %.2f):\n%s",
			i+1, r.DocumentName, r.Chunk.ChunkIndex, r.Similarity, r.Chunk.Content)
	}
	return b.String()
}
