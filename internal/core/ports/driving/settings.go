package driving

import "github.com/custodia-labs/kb-core/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings, with defaults applied.
	Get() (*domain.AppSettings, error)

	// Save persists application settings.
	Save(settings *domain.AppSettings) error

	// SetEmbeddingProvider configures and persists the embedding provider.
	// An empty model selects the provider's default model.
	SetEmbeddingProvider(provider domain.EmbeddingProvider, model, apiKey string) error

	// GetDefaults returns the settings used when nothing is configured.
	GetDefaults() domain.AppSettings
}
