package domain

import "time"

// DocumentStatus tracks a document through the ingestion state machine.
type DocumentStatus string

// Ingestion lifecycle states.
const (
	// StatusPending means the document is created and waiting for ingestion.
	StatusPending DocumentStatus = "pending"

	// StatusProcessing means an ingestion run is in flight.
	StatusProcessing DocumentStatus = "processing"

	// StatusReady means chunking (and possibly embedding) completed.
	StatusReady DocumentStatus = "ready"

	// StatusFailed means ingestion failed; see Document.ErrorMessage.
	StatusFailed DocumentStatus = "failed"
)

// IsValid returns true if the status is recognised.
func (s DocumentStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusReady, StatusFailed:
		return true
	default:
		return false
	}
}

// IsTerminal returns true once an ingestion run has concluded.
func (s DocumentStatus) IsTerminal() bool {
	return s == StatusReady || s == StatusFailed
}

// CanReprocess returns true if a reprocess request is accepted from this state.
func (s DocumentStatus) CanReprocess() bool {
	return s == StatusReady || s == StatusFailed
}

// String returns the string representation.
func (s DocumentStatus) String() string {
	return string(s)
}

// Document represents an uploaded text document in the knowledge base.
// It owns its chunks: deleting the document deletes all of them.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// UserID is the uploading user. Always set.
	UserID string

	// OrganizationID is set when the document lives in an organization's
	// shared space. Empty means the document is private to UserID.
	// Ownership is exclusive: private XOR shared, never both.
	OrganizationID string

	// Name is the human-readable display name.
	Name string

	// Filename is the original upload filename.
	Filename string

	// ContentType is the normalised MIME type (text/plain or text/markdown).
	ContentType string

	// SizeBytes is the upload size before normalisation.
	SizeBytes int64

	// Content is the normalised text. Retained so reprocessing needs no
	// round-trip to object storage.
	Content string

	// Status is the ingestion lifecycle state.
	Status DocumentStatus

	// ChunkCount equals the number of persisted chunks once Status is
	// StatusReady, and is 0 in every other state.
	ChunkCount int

	// ErrorMessage holds the failure reason when Status is StatusFailed.
	ErrorMessage string

	// Metadata contains arbitrary key-value pairs supplied at upload.
	Metadata map[string]any

	// CreatedAt is when the upload was accepted.
	CreatedAt time.Time

	// ProcessedAt is when the last ingestion run concluded successfully.
	// Zero until the document first reaches StatusReady.
	ProcessedAt time.Time
}

// DocumentChunk is a contiguous, possibly overlapping passage of a document
// and the unit of retrieval.
type DocumentChunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// DocumentID links to the owning Document.
	DocumentID string

	// Content is the passage text.
	Content string

	// ChunkIndex is zero-based and contiguous within a document.
	ChunkIndex int

	// TokenCount is the approximate token count of Content.
	TokenCount int

	// Embedding is the vector representation for semantic search.
	// Nil when the embedding provider was unavailable during ingestion.
	Embedding []float32

	// StartChar and EndChar locate the passage in the normalised document
	// text. Offsets are non-decreasing across increasing ChunkIndex and
	// only adjacent chunks may overlap.
	StartChar int
	EndChar   int
}

// HasEmbedding returns true if the chunk carries a vector.
func (c DocumentChunk) HasEmbedding() bool {
	return len(c.Embedding) > 0
}

// IsDegraded returns true for a ready document whose chunks lack embeddings.
// Degraded documents are excluded from vector search results.
func (d *Document) IsDegraded(chunks []DocumentChunk) bool {
	if d.Status != StatusReady {
		return false
	}
	for _, c := range chunks {
		if c.HasEmbedding() {
			return false
		}
	}
	return len(chunks) > 0
}
