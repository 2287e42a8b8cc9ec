package driving

import (
	"context"

	"github.com/custodia-labs/kb-core/internal/core/domain"
)

// SearchService answers similarity queries over the caller's visible chunks.
type SearchService interface {
	// Search embeds the query, runs an owner-scoped similarity search and
	// returns ranked excerpts plus a pre-formatted context block.
	Search(ctx context.Context, scope domain.OwnerScope, query string, opts domain.SearchOptions) (*domain.SearchResponse, error)
}
