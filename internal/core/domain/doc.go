// Package domain defines the core business entities for the knowledge base.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: An uploaded text document with its ingestion lifecycle
//   - DocumentChunk: A searchable, possibly overlapping passage of a document
//   - OwnerScope: The identity a caller acts under (user + optional organization)
//   - SearchResult: A ranked retrieval hit with its source citation
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
