package mcp

import (
	"github.com/custodia-labs/kb-core/internal/core/domain"
	"github.com/custodia-labs/kb-core/internal/core/ports/driving"
)

// Ports aggregates the driving port interfaces required by the MCP server,
// plus the owner scope every tool call acts under. The MCP surface trusts
// the identity the host application resolved at startup.
type Ports struct {
	// Search provides semantic retrieval.
	Search driving.SearchService

	// KnowledgeBase manages documents.
	KnowledgeBase driving.KnowledgeBaseService

	// Scope is the acting identity for all tool calls.
	Scope domain.OwnerScope
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	if p.KnowledgeBase == nil {
		return ErrMissingKnowledgeBase
	}
	return p.Scope.Validate()
}
