package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/kb-core/internal/core/domain"
	"github.com/custodia-labs/kb-core/internal/core/ports/driven"
	"github.com/custodia-labs/kb-core/internal/core/ports/driving"
	"github.com/custodia-labs/kb-core/internal/logger"
)

// KnowledgeBaseService implements driving.KnowledgeBaseService on top of a
// document store and the ingestion pipeline.
type KnowledgeBaseService struct {
	docStore driven.DocumentStore
	embedder driven.EmbeddingService // optional, used by Reembed
	pipeline *IngestionPipeline
	ingest   domain.IngestSettings
}

var _ driving.KnowledgeBaseService = (*KnowledgeBaseService)(nil)

// NewKnowledgeBaseService creates the service.
func NewKnowledgeBaseService(
	docStore driven.DocumentStore,
	embedder driven.EmbeddingService,
	pipeline *IngestionPipeline,
	ingest domain.IngestSettings,
) *KnowledgeBaseService {
	if ingest.MaxFileBytes <= 0 {
		ingest.MaxFileBytes = domain.DefaultMaxFileBytes
	}
	return &KnowledgeBaseService{
		docStore: docStore,
		embedder: embedder,
		pipeline: pipeline,
		ingest:   ingest,
	}
}

// Ingest validates the upload, persists a pending document and dispatches a
// background ingestion run. Validation rejects the upload before any state
// is created.
func (s *KnowledgeBaseService) Ingest(ctx context.Context, scope domain.OwnerScope, req driving.IngestRequest) (*domain.Document, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}

	// Size is checked before anything else so oversized uploads are
	// rejected without inspecting their content.
	if int64(len(req.Content)) > s.ingest.MaxFileBytes {
		return nil, fmt.Errorf("%w: %d bytes exceeds limit of %d",
			domain.ErrFileTooLarge, len(req.Content), s.ingest.MaxFileBytes)
	}
	if len(req.Content) == 0 {
		return nil, fmt.Errorf("%w: empty content", domain.ErrInvalidInput)
	}

	contentType, err := domain.ResolveContentType(req.ContentType, req.Filename)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = filepath.Base(req.Filename)
	}
	if name == "" || name == "." {
		return nil, fmt.Errorf("%w: document needs a name or filename", domain.ErrInvalidInput)
	}

	orgID := ""
	if req.Shared {
		if scope.OrganizationID == "" {
			return nil, fmt.Errorf("%w: shared upload requires an organization", domain.ErrInvalidInput)
		}
		orgID = scope.OrganizationID
	}

	doc := &domain.Document{
		ID:             uuid.New().String(),
		UserID:         scope.UserID,
		OrganizationID: orgID,
		Name:           name,
		Filename:       req.Filename,
		ContentType:    contentType,
		SizeBytes:      int64(len(req.Content)),
		Content:        string(req.Content),
		Status:         domain.StatusPending,
		Metadata:       req.Metadata,
		CreatedAt:      time.Now().UTC(),
	}

	if err := s.docStore.SaveDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("save document: %w", err)
	}

	logger.Info("Accepted document %s (%q, %s, %d bytes)", doc.ID, doc.Name, doc.ContentType, doc.SizeBytes)
	s.pipeline.Dispatch(doc.ID)

	return doc, nil
}

// Get retrieves a document the scope can read. A document outside the
// scope's visibility is indistinguishable from a missing one.
func (s *KnowledgeBaseService) Get(ctx context.Context, scope domain.OwnerScope, documentID string) (*domain.Document, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}

	doc, err := s.docStore.GetDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if !scope.CanRead(doc) {
		return nil, domain.ErrNotFound
	}
	return doc, nil
}

// List returns the documents visible to the scope, newest first.
func (s *KnowledgeBaseService) List(ctx context.Context, scope domain.OwnerScope) ([]domain.Document, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	return s.docStore.ListDocuments(ctx, scope)
}

// Delete removes a document and its chunks. Only the sole owner may delete;
// org members who can read a shared document get ErrAccessDenied.
func (s *KnowledgeBaseService) Delete(ctx context.Context, scope domain.OwnerScope, documentID string) error {
	doc, err := s.getOwned(ctx, scope, documentID)
	if err != nil {
		return err
	}

	// The run lock keeps a concurrent ingestion run from resurrecting
	// chunks after the delete.
	err = s.pipeline.WithDocumentLock(doc.ID, func() error {
		if err := s.docStore.DeleteDocument(ctx, doc.ID); err != nil {
			return fmt.Errorf("delete document: %w", err)
		}
		logger.Info("Deleted document %s", doc.ID)
		return nil
	})
	if err != nil {
		return err
	}

	s.pipeline.ForgetDocument(doc.ID)
	return nil
}

// Reprocess resets a ready or failed document to pending and dispatches a
// fresh ingestion run over its stored content.
func (s *KnowledgeBaseService) Reprocess(ctx context.Context, scope domain.OwnerScope, documentID string) error {
	doc, err := s.getOwned(ctx, scope, documentID)
	if err != nil {
		return err
	}

	if !doc.Status.CanReprocess() {
		return fmt.Errorf("%w: document is %s", domain.ErrNotReprocessable, doc.Status)
	}

	err = s.pipeline.WithDocumentLock(doc.ID, func() error {
		if err := s.docStore.DeleteChunks(ctx, doc.ID); err != nil {
			return fmt.Errorf("clear chunks: %w", err)
		}
		doc.Status = domain.StatusPending
		doc.ChunkCount = 0
		doc.ErrorMessage = ""
		if err := s.docStore.SaveDocument(ctx, doc); err != nil {
			return fmt.Errorf("reset document: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info("Reprocessing document %s", doc.ID)
	s.pipeline.Dispatch(doc.ID)
	return nil
}

// Reembed attaches vectors to a ready document's vector-less chunks. It
// recovers a document that ingested while the embedding provider was down
// without re-running the chunker. Returns the number of chunks embedded.
func (s *KnowledgeBaseService) Reembed(ctx context.Context, scope domain.OwnerScope, documentID string) (int, error) {
	if s.embedder == nil {
		return 0, domain.ErrEmbeddingUnavailable
	}

	doc, err := s.getOwned(ctx, scope, documentID)
	if err != nil {
		return 0, err
	}
	if doc.Status != domain.StatusReady {
		return 0, fmt.Errorf("%w: document is %s, not ready", domain.ErrInvalidInput, doc.Status)
	}

	chunks, err := s.docStore.GetChunks(ctx, doc.ID)
	if err != nil {
		return 0, fmt.Errorf("get chunks: %w", err)
	}

	var missing []domain.DocumentChunk
	for _, chunk := range chunks {
		if !chunk.HasEmbedding() {
			missing = append(missing, chunk)
		}
	}
	if len(missing) == 0 {
		return 0, nil
	}

	texts := make([]string, len(missing))
	for i, chunk := range missing {
		texts[i] = chunk.Content
	}
	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(missing) {
		return 0, fmt.Errorf("embedding returned %d vectors for %d chunks", len(vectors), len(missing))
	}

	updated := 0
	for i, chunk := range missing {
		if err := s.docStore.UpdateChunkEmbedding(ctx, chunk.ID, vectors[i]); err != nil {
			return updated, fmt.Errorf("update chunk %s: %w", chunk.ID, err)
		}
		updated++
	}

	logger.Info("Reembedded %d of %d chunks for document %s", updated, len(chunks), doc.ID)
	return updated, nil
}

// getOwned fetches a document and checks the scope may modify it.
// Invisible documents report ErrNotFound; visible but not owned,
// ErrAccessDenied.
func (s *KnowledgeBaseService) getOwned(ctx context.Context, scope domain.OwnerScope, documentID string) (*domain.Document, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}

	doc, err := s.docStore.GetDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if !scope.CanRead(doc) {
		return nil, domain.ErrNotFound
	}
	if !scope.CanModify(doc) {
		return nil, domain.ErrAccessDenied
	}
	return doc, nil
}
