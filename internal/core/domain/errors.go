package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist, or is not
	// visible to the caller. Scope mismatches on reads surface as ErrNotFound
	// so callers learn nothing about resources they cannot see.
	ErrNotFound = errors.New("not found")

	// ErrAccessDenied indicates the caller may see the resource but lacks
	// the sole ownership required to mutate it.
	ErrAccessDenied = errors.New("access denied")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates a content type outside the plain-text allow-list.
	ErrUnsupportedType = errors.New("unsupported content type")

	// ErrFileTooLarge indicates an upload above the configured byte ceiling.
	ErrFileTooLarge = errors.New("file too large")

	// ErrQueryTooLong indicates a search query above the length limit.
	ErrQueryTooLong = errors.New("query too long")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	// Ingestion degrades to vector-less chunks; search returns an empty,
	// explanatory result.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrNotReprocessable indicates a reprocess request against a document
	// that is still pending or processing.
	ErrNotReprocessable = errors.New("document cannot be reprocessed in its current state")
)
