package cli

import (
	"context"
	"errors"
	"time"

	"github.com/custodia-labs/kb-core/internal/core/domain"
	"github.com/custodia-labs/kb-core/internal/core/ports/driving"
)

// setupTestServices installs mock services and returns a cleanup function
// restoring the previous wiring.
func setupTestServices() func() {
	oldSettings := settingsService
	oldKB := kbService
	oldSearch := searchService
	oldScope := scope
	oldInitialized := servicesInitialized

	settingsService = &mockSettingsService{settings: domain.DefaultAppSettings()}
	kbService = &mockKnowledgeBaseService{docs: testDocuments()}
	searchService = &mockSearchService{response: testSearchResponse()}
	scope = domain.OwnerScope{UserID: "user-1"}
	servicesInitialized = true

	return func() {
		settingsService = oldSettings
		kbService = oldKB
		searchService = oldSearch
		scope = oldScope
		servicesInitialized = oldInitialized
	}
}

func testDocuments() []domain.Document {
	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return []domain.Document{
		{
			ID:          "doc-1",
			UserID:      "user-1",
			Name:        "Test Document 1",
			Filename:    "test1.md",
			ContentType: "text/markdown",
			SizeBytes:   42,
			Status:      domain.StatusReady,
			ChunkCount:  3,
			CreatedAt:   created,
			ProcessedAt: created.Add(time.Second),
		},
		{
			ID:             "doc-2",
			UserID:         "user-2",
			OrganizationID: "org-1",
			Name:           "Shared Notes",
			Filename:       "notes.txt",
			ContentType:    "text/plain",
			SizeBytes:      17,
			Status:         domain.StatusFailed,
			ErrorMessage:   "document produced no chunks: content is empty or whitespace",
			CreatedAt:      created.Add(-time.Hour),
		},
	}
}

func testSearchResponse() *domain.SearchResponse {
	return &domain.SearchResponse{
		Results: []domain.SearchResult{
			{
				Chunk: domain.DocumentChunk{
					ID:         "chunk-1",
					DocumentID: "doc-1",
					Content:    "Expenses over 50 EUR require a receipt.",
					ChunkIndex: 2,
				},
				DocumentName: "Test Document 1",
				Similarity:   0.91,
			},
		},
		Count:   1,
		Context: "[1] From \"Test Document 1\" (chunk 2, relevance 0.91):\nExpenses over 50 EUR require a receipt.",
	}
}

// mockKnowledgeBaseService serves canned documents.
type mockKnowledgeBaseService struct {
	docs        []domain.Document
	err         error
	reembedded  int
	lastRequest driving.IngestRequest
}

func (m *mockKnowledgeBaseService) Ingest(_ context.Context, _ domain.OwnerScope, req driving.IngestRequest) (*domain.Document, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.lastRequest = req
	if len(m.docs) > 0 {
		return &m.docs[0], nil
	}
	return &domain.Document{ID: "doc-new", Name: req.Name, Status: domain.StatusPending}, nil
}

func (m *mockKnowledgeBaseService) Get(_ context.Context, _ domain.OwnerScope, documentID string) (*domain.Document, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.docs {
		if m.docs[i].ID == documentID {
			return &m.docs[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockKnowledgeBaseService) List(_ context.Context, _ domain.OwnerScope) ([]domain.Document, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.docs, nil
}

func (m *mockKnowledgeBaseService) Delete(_ context.Context, _ domain.OwnerScope, _ string) error {
	return m.err
}

func (m *mockKnowledgeBaseService) Reprocess(_ context.Context, _ domain.OwnerScope, _ string) error {
	return m.err
}

func (m *mockKnowledgeBaseService) Reembed(_ context.Context, _ domain.OwnerScope, _ string) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	return m.reembedded, nil
}

// mockSearchService returns a canned response.
type mockSearchService struct {
	response *domain.SearchResponse
	err      error
}

func (m *mockSearchService) Search(_ context.Context, _ domain.OwnerScope, _ string, _ domain.SearchOptions) (*domain.SearchResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.response != nil {
		return m.response, nil
	}
	return &domain.SearchResponse{}, nil
}

// mockSettingsService stores settings in memory.
type mockSettingsService struct {
	settings domain.AppSettings
	err      error
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	if m.err != nil {
		return nil, m.err
	}
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(settings *domain.AppSettings) error {
	if m.err != nil {
		return m.err
	}
	m.settings = *settings
	return nil
}

func (m *mockSettingsService) SetEmbeddingProvider(provider domain.EmbeddingProvider, model, apiKey string) error {
	if m.err != nil {
		return m.err
	}
	if !provider.IsValid() {
		return errors.New("unknown provider")
	}
	m.settings.Embedding.Provider = provider
	m.settings.Embedding.Model = model
	m.settings.Embedding.APIKey = apiKey
	return nil
}

func (m *mockSettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}
