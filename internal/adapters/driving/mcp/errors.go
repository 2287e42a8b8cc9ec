// Package mcp provides an MCP (Model Context Protocol) server adapter for the
// knowledge base. It lets AI assistants search and browse ingested documents.
package mcp

import "errors"

// ErrMissingSearchService is returned when the search service is not provided.
var ErrMissingSearchService = errors.New("mcp: search service is required")

// ErrMissingKnowledgeBase is returned when the knowledge base service is not provided.
var ErrMissingKnowledgeBase = errors.New("mcp: knowledge base service is required")
