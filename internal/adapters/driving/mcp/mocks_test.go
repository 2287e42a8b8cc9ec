package mcp

import (
	"context"

	"github.com/custodia-labs/kb-core/internal/core/domain"
	"github.com/custodia-labs/kb-core/internal/core/ports/driving"
)

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	response *domain.SearchResponse
	err      error
}

func (m *mockSearchService) Search(
	_ context.Context,
	_ domain.OwnerScope,
	_ string,
	_ domain.SearchOptions,
) (*domain.SearchResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.response == nil {
		return &domain.SearchResponse{}, nil
	}
	return m.response, nil
}

// mockKnowledgeBaseService is a mock implementation of driving.KnowledgeBaseService.
type mockKnowledgeBaseService struct {
	documents []domain.Document
	document  *domain.Document
	err       error
}

func (m *mockKnowledgeBaseService) Ingest(
	_ context.Context,
	_ domain.OwnerScope,
	_ driving.IngestRequest,
) (*domain.Document, error) {
	return m.document, m.err
}

func (m *mockKnowledgeBaseService) Get(_ context.Context, _ domain.OwnerScope, _ string) (*domain.Document, error) {
	return m.document, m.err
}

func (m *mockKnowledgeBaseService) List(_ context.Context, _ domain.OwnerScope) ([]domain.Document, error) {
	return m.documents, m.err
}

func (m *mockKnowledgeBaseService) Delete(_ context.Context, _ domain.OwnerScope, _ string) error {
	return m.err
}

func (m *mockKnowledgeBaseService) Reprocess(_ context.Context, _ domain.OwnerScope, _ string) error {
	return m.err
}

func (m *mockKnowledgeBaseService) Reembed(_ context.Context, _ domain.OwnerScope, _ string) (int, error) {
	return 0, m.err
}
