package driving

import (
	"context"

	"github.com/custodia-labs/kb-core/internal/core/domain"
)

// IngestRequest describes an upload.
type IngestRequest struct {
	// Name is the display name. Defaults to Filename when empty.
	Name string

	// Filename is the original upload filename, used for content type
	// inference when ContentType is absent.
	Filename string

	// ContentType is the declared MIME type, possibly empty.
	ContentType string

	// Content is the raw upload.
	Content []byte

	// Shared places the document in the scope's organization space
	// instead of the user's private space.
	Shared bool

	// Metadata contains arbitrary key-value pairs to store with the document.
	Metadata map[string]any
}

// KnowledgeBaseService manages the document lifecycle. Ingestion itself runs
// detached: Ingest returns once the document record exists with status
// pending, and callers observe progress by polling Get or List.
type KnowledgeBaseService interface {
	// Ingest validates the upload, creates a pending document and starts a
	// background ingestion run. Validation failures reject the upload
	// before any record is created.
	Ingest(ctx context.Context, scope domain.OwnerScope, req IngestRequest) (*domain.Document, error)

	// Get retrieves a document visible to the scope.
	Get(ctx context.Context, scope domain.OwnerScope, documentID string) (*domain.Document, error)

	// List returns all documents visible to the scope, newest first.
	// Chunk content is not included.
	List(ctx context.Context, scope domain.OwnerScope) ([]domain.Document, error)

	// Delete removes a document and its chunks. Requires sole ownership.
	Delete(ctx context.Context, scope domain.OwnerScope, documentID string) error

	// Reprocess deletes a document's chunks, resets it to pending and
	// starts a fresh ingestion run. Requires sole ownership and a
	// ready or failed document.
	Reprocess(ctx context.Context, scope domain.OwnerScope, documentID string) error

	// Reembed attaches vectors to a ready document's vector-less chunks,
	// recovering a degraded document without a full reprocess.
	// Requires sole ownership. Returns the number of chunks embedded.
	Reembed(ctx context.Context, scope domain.OwnerScope, documentID string) (int, error)
}
