package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/kb-core/internal/core/domain"
)

// SearchInput is the input schema for the kb_search tool.
type SearchInput struct {
	Query     string  `json:"query" jsonschema:"the natural language query to search the knowledge base with"`
	Limit     int     `json:"limit,omitempty" jsonschema:"maximum number of passages to return"`
	Threshold float64 `json:"threshold,omitempty" jsonschema:"minimum similarity score between 0 and 1"`
}

// SearchOutput is the output schema for the kb_search tool.
type SearchOutput struct {
	Results []SearchResultOutput `json:"results"`
	Count   int                  `json:"count"`

	// Context is a pre-formatted block of the matched passages with
	// citations, ready to ground an answer on.
	Context string `json:"context"`
}

// SearchResultOutput represents a single retrieved passage.
type SearchResultOutput struct {
	DocumentID   string  `json:"document_id"`
	DocumentName string  `json:"document_name"`
	ChunkIndex   int     `json:"chunk_index"`
	Similarity   float64 `json:"similarity"`
	Content      string  `json:"content"`
}

// ListDocumentsInput is the input schema for the kb_list_documents tool.
type ListDocumentsInput struct{}

// ListDocumentsOutput is the output schema for the kb_list_documents tool.
type ListDocumentsOutput struct {
	Documents []DocumentOutput `json:"documents"`
	Count     int              `json:"count"`
}

// DocumentOutput represents a document without its content.
type DocumentOutput struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	Status      string `json:"status"`
	ChunkCount  int    `json:"chunk_count"`
	Shared      bool   `json:"shared"`
	CreatedAt   string `json:"created_at"`
	Error       string `json:"error,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "kb_search",
		Description: "Search the knowledge base for passages relevant to a query",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "kb_list_documents",
		Description: "List the documents in the knowledge base",
	}, s.handleListDocuments)
}

// handleSearch handles the kb_search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	opts := domain.SearchOptions{
		Limit:     input.Limit,
		Threshold: input.Threshold,
	}

	resp, err := s.ports.Search.Search(ctx, s.ports.Scope, input.Query, opts)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results: make([]SearchResultOutput, len(resp.Results)),
		Count:   resp.Count,
		Context: resp.Context,
	}

	for i := range resp.Results {
		r := &resp.Results[i]
		output.Results[i] = SearchResultOutput{
			DocumentID:   r.Chunk.DocumentID,
			DocumentName: r.DocumentName,
			ChunkIndex:   r.Chunk.ChunkIndex,
			Similarity:   r.Similarity,
			Content:      r.Chunk.Content,
		}
	}

	return nil, output, nil
}

// handleListDocuments handles the kb_list_documents tool invocation.
func (s *Server) handleListDocuments(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListDocumentsInput,
) (*mcp.CallToolResult, ListDocumentsOutput, error) {
	docs, err := s.ports.KnowledgeBase.List(ctx, s.ports.Scope)
	if err != nil {
		return nil, ListDocumentsOutput{}, err
	}

	output := ListDocumentsOutput{
		Documents: make([]DocumentOutput, len(docs)),
		Count:     len(docs),
	}

	for i := range docs {
		d := &docs[i]
		output.Documents[i] = DocumentOutput{
			ID:          d.ID,
			Name:        d.Name,
			ContentType: d.ContentType,
			Status:      d.Status.String(),
			ChunkCount:  d.ChunkCount,
			Shared:      d.OrganizationID != "",
			CreatedAt:   d.CreatedAt.Format("2006-01-02 15:04:05"),
			Error:       d.ErrorMessage,
		}
	}

	return nil, output, nil
}
