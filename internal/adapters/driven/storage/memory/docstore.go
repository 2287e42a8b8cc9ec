package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/kb-core/internal/core/domain"
	"github.com/custodia-labs/kb-core/internal/core/ports/driven"
)

// Ensure DocumentStore implements the interface.
var _ driven.DocumentStore = (*DocumentStore)(nil)

// DocumentStore is an in-memory implementation of driven.DocumentStore.
// Used by tests and as a reference for the SQLite adapter's semantics.
type DocumentStore struct {
	mu        sync.RWMutex
	documents map[string]domain.Document
	chunks    map[string][]domain.DocumentChunk
}

// NewDocumentStore creates a new in-memory document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		documents: make(map[string]domain.Document),
		chunks:    make(map[string][]domain.DocumentChunk),
	}
}

// SaveDocument stores or updates a document.
func (s *DocumentStore) SaveDocument(_ context.Context, doc *domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents[doc.ID] = *doc
	return nil
}

// GetDocument retrieves a document by ID.
func (s *DocumentStore) GetDocument(_ context.Context, id string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

// ListDocuments returns the documents visible to the scope, newest first.
func (s *DocumentStore) ListDocuments(_ context.Context, scope domain.OwnerScope) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []domain.Document
	for id := range s.documents {
		doc := s.documents[id]
		if scope.CanRead(&doc) {
			result = append(result, doc)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

// DeleteDocument removes a document and its chunks.
func (s *DocumentStore) DeleteDocument(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.documents[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.documents, id)
	delete(s.chunks, id)
	return nil
}

// SaveChunks appends a batch of chunks in slice order.
func (s *DocumentStore) SaveChunks(_ context.Context, chunks []domain.DocumentChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, chunk := range chunks {
		s.chunks[chunk.DocumentID] = append(s.chunks[chunk.DocumentID], chunk)
	}
	return nil
}

// DeleteChunks removes all chunks for a document.
func (s *DocumentStore) DeleteChunks(_ context.Context, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.chunks, documentID)
	return nil
}

// GetChunks retrieves a document's chunks ordered by chunk index.
func (s *DocumentStore) GetChunks(_ context.Context, documentID string) ([]domain.DocumentChunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	chunks := append([]domain.DocumentChunk(nil), s.chunks[documentID]...)
	sort.Slice(chunks, func(i, j int) bool {
		return chunks[i].ChunkIndex < chunks[j].ChunkIndex
	})
	return chunks, nil
}

// UpdateChunkEmbedding attaches a vector to an existing chunk.
func (s *DocumentStore) UpdateChunkEmbedding(_ context.Context, chunkID string, embedding []float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for docID, chunks := range s.chunks {
		for i := range chunks {
			if chunks[i].ID == chunkID {
				chunks[i].Embedding = append([]float32(nil), embedding...)
				s.chunks[docID] = chunks
				return nil
			}
		}
	}
	return domain.ErrNotFound
}

// SimilaritySearch scores embedded chunks visible to the scope against the
// query vector.
func (s *DocumentStore) SimilaritySearch(_ context.Context, scope domain.OwnerScope, query []float32, limit int, threshold float64) ([]driven.ChunkHit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var hits []driven.ChunkHit
	for docID, chunks := range s.chunks {
		doc, ok := s.documents[docID]
		if !ok || !scope.CanRead(&doc) {
			continue
		}
		for _, chunk := range chunks {
			if !chunk.HasEmbedding() {
				continue
			}
			score := domain.CosineSimilarity(query, chunk.Embedding)
			if score >= threshold {
				hits = append(hits, driven.ChunkHit{Chunk: chunk, Similarity: score})
			}
		}
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Similarity != hits[j].Similarity {
			return hits[i].Similarity > hits[j].Similarity
		}
		return hits[i].Chunk.ID < hits[j].Chunk.ID
	})
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}
