package driven

import (
	"context"

	"github.com/custodia-labs/kb-core/internal/core/domain"
)

// DocumentStore persists documents and their chunks.
// Backed by SQLite for metadata and embedding storage.
type DocumentStore interface {
	// SaveDocument stores or updates a document.
	SaveDocument(ctx context.Context, doc *domain.Document) error

	// GetDocument retrieves a document by ID regardless of scope.
	// Callers enforce visibility.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// ListDocuments returns the documents visible to the scope,
	// newest first.
	ListDocuments(ctx context.Context, scope domain.OwnerScope) ([]domain.Document, error)

	// DeleteDocument removes a document and all its chunks.
	DeleteDocument(ctx context.Context, id string) error

	// SaveChunks stores a batch of chunks in slice order.
	SaveChunks(ctx context.Context, chunks []domain.DocumentChunk) error

	// DeleteChunks removes all chunks for a document.
	DeleteChunks(ctx context.Context, documentID string) error

	// GetChunks retrieves a document's chunks ordered by chunk index.
	GetChunks(ctx context.Context, documentID string) ([]domain.DocumentChunk, error)

	// UpdateChunkEmbedding attaches a vector to an existing chunk.
	UpdateChunkEmbedding(ctx context.Context, chunkID string, embedding []float32) error

	// SimilaritySearch scores chunks visible to the scope against the query
	// vector, skipping chunks without embeddings. Results are ordered by
	// descending similarity, cut at threshold and truncated to limit.
	SimilaritySearch(ctx context.Context, scope domain.OwnerScope, query []float32, limit int, threshold float64) ([]ChunkHit, error)
}

// ChunkHit is a similarity search result.
type ChunkHit struct {
	// Chunk is the matched passage.
	Chunk domain.DocumentChunk

	// Similarity is the cosine similarity to the query vector.
	Similarity float64
}
