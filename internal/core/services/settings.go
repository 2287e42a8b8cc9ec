package services

import (
	"fmt"

	"github.com/custodia-labs/kb-core/internal/core/domain"
	"github.com/custodia-labs/kb-core/internal/core/ports/driven"
	"github.com/custodia-labs/kb-core/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyIdentityUser    = "identity.user_id"
	keyIdentityOrg     = "identity.organization_id"
	keyEmbedProvider   = "embedding.provider"
	keyEmbedModel      = "embedding.model"
	keyEmbedBaseURL    = "embedding.base_url"
	keyEmbedAPIKey     = "embedding.api_key"
	keyEmbedDims       = "embedding.dimensions"
	keyEmbedRPS        = "embedding.requests_per_second"
	keySearchLimit     = "search.default_limit"
	keySearchMaxLimit  = "search.max_limit"
	keySearchThreshold = "search.default_threshold"
	keyIngestMaxBytes  = "ingest.max_file_bytes"
	keyIngestTarget    = "ingest.target_tokens"
	keyIngestOverlap   = "ingest.overlap_tokens"
	keyIngestMinTokens = "ingest.min_tokens"
	keyStorageDataDir  = "storage.data_dir"
)

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get retrieves current application settings, with defaults applied for
// anything unset.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Identity: domain.IdentitySettings{
			UserID:         s.configStore.GetString(keyIdentityUser),
			OrganizationID: s.configStore.GetString(keyIdentityOrg),
		},
		Embedding: domain.EmbeddingSettings{
			Provider:          s.getProvider(defaults.Embedding.Provider),
			Model:             s.configStore.GetString(keyEmbedModel),
			BaseURL:           s.configStore.GetString(keyEmbedBaseURL), // No default - empty is valid for cloud providers
			APIKey:            s.configStore.GetString(keyEmbedAPIKey),
			Dimensions:        s.configStore.GetInt(keyEmbedDims),
			RequestsPerSecond: s.configStore.GetFloat(keyEmbedRPS),
		},
		Search: domain.SearchSettings{
			DefaultLimit:     s.getInt(keySearchLimit, defaults.Search.DefaultLimit),
			MaxLimit:         s.getInt(keySearchMaxLimit, defaults.Search.MaxLimit),
			DefaultThreshold: s.getFloat(keySearchThreshold, defaults.Search.DefaultThreshold),
		},
		Ingest: domain.IngestSettings{
			MaxFileBytes:  int64(s.getInt(keyIngestMaxBytes, int(defaults.Ingest.MaxFileBytes))),
			TargetTokens:  s.getInt(keyIngestTarget, defaults.Ingest.TargetTokens),
			OverlapTokens: s.getInt(keyIngestOverlap, defaults.Ingest.OverlapTokens),
			MinTokens:     s.getInt(keyIngestMinTokens, defaults.Ingest.MinTokens),
		},
		Storage: domain.StorageSettings{
			DataDir: s.configStore.GetString(keyStorageDataDir),
		},
	}

	if settings.Embedding.Model == "" {
		settings.Embedding.Model = defaultModelFor(settings.Embedding.Provider)
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	if err := s.configStore.Set(keyIdentityUser, settings.Identity.UserID); err != nil {
		return fmt.Errorf("save user id: %w", err)
	}
	if err := s.configStore.Set(keyIdentityOrg, settings.Identity.OrganizationID); err != nil {
		return fmt.Errorf("save organization id: %w", err)
	}

	if err := s.configStore.Set(keyEmbedProvider, settings.Embedding.Provider.String()); err != nil {
		return fmt.Errorf("save embedding provider: %w", err)
	}
	if err := s.configStore.Set(keyEmbedModel, settings.Embedding.Model); err != nil {
		return fmt.Errorf("save embedding model: %w", err)
	}
	if err := s.configStore.Set(keyEmbedBaseURL, settings.Embedding.BaseURL); err != nil {
		return fmt.Errorf("save embedding base_url: %w", err)
	}
	if settings.Embedding.APIKey != "" {
		if err := s.configStore.Set(keyEmbedAPIKey, settings.Embedding.APIKey); err != nil {
			return fmt.Errorf("save embedding api_key: %w", err)
		}
	}
	if err := s.configStore.Set(keyEmbedDims, settings.Embedding.Dimensions); err != nil {
		return fmt.Errorf("save embedding dimensions: %w", err)
	}
	if err := s.configStore.Set(keyEmbedRPS, settings.Embedding.RequestsPerSecond); err != nil {
		return fmt.Errorf("save embedding requests_per_second: %w", err)
	}

	if err := s.configStore.Set(keySearchLimit, settings.Search.DefaultLimit); err != nil {
		return fmt.Errorf("save search default_limit: %w", err)
	}
	if err := s.configStore.Set(keySearchMaxLimit, settings.Search.MaxLimit); err != nil {
		return fmt.Errorf("save search max_limit: %w", err)
	}
	if err := s.configStore.Set(keySearchThreshold, settings.Search.DefaultThreshold); err != nil {
		return fmt.Errorf("save search default_threshold: %w", err)
	}

	if err := s.configStore.Set(keyIngestMaxBytes, int(settings.Ingest.MaxFileBytes)); err != nil {
		return fmt.Errorf("save ingest max_file_bytes: %w", err)
	}
	if err := s.configStore.Set(keyIngestTarget, settings.Ingest.TargetTokens); err != nil {
		return fmt.Errorf("save ingest target_tokens: %w", err)
	}
	if err := s.configStore.Set(keyIngestOverlap, settings.Ingest.OverlapTokens); err != nil {
		return fmt.Errorf("save ingest overlap_tokens: %w", err)
	}
	if err := s.configStore.Set(keyIngestMinTokens, settings.Ingest.MinTokens); err != nil {
		return fmt.Errorf("save ingest min_tokens: %w", err)
	}

	if err := s.configStore.Set(keyStorageDataDir, settings.Storage.DataDir); err != nil {
		return fmt.Errorf("save storage data_dir: %w", err)
	}

	return nil
}

// SetEmbeddingProvider configures the embedding provider, picking the
// provider's default model when none is given.
func (s *SettingsService) SetEmbeddingProvider(provider domain.EmbeddingProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: unknown embedding provider %q", domain.ErrInvalidInput, provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("%w: API key required for %s", domain.ErrInvalidInput, provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Embedding.Provider = provider
	settings.Embedding.APIKey = apiKey
	if model != "" {
		settings.Embedding.Model = model
	} else {
		settings.Embedding.Model = defaultModelFor(provider)
	}
	if provider == domain.ProviderOllama && settings.Embedding.BaseURL == "" {
		settings.Embedding.BaseURL = "http://localhost:11434"
	}
	if provider != domain.ProviderOllama {
		settings.Embedding.BaseURL = ""
	}

	return s.Save(settings)
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	val := s.configStore.GetFloat(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getProvider(defaultVal domain.EmbeddingProvider) domain.EmbeddingProvider {
	val, exists := s.configStore.Get(keyEmbedProvider)
	if !exists {
		return defaultVal
	}
	str, ok := val.(string)
	if !ok {
		return defaultVal
	}
	provider := domain.EmbeddingProvider(str)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func defaultModelFor(provider domain.EmbeddingProvider) string {
	return domain.DefaultEmbeddingModel(provider)
}
