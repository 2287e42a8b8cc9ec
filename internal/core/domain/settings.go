package domain

const unknownDescription = "Unknown"

// EmbeddingProvider identifies an embedding service provider.
type EmbeddingProvider string

// Available embedding providers.
const (
	// ProviderNone disables semantic retrieval; documents ingest without vectors.
	ProviderNone EmbeddingProvider = ""

	// ProviderOllama is a local Ollama instance.
	ProviderOllama EmbeddingProvider = "ollama"

	// ProviderOpenAI is the OpenAI cloud API.
	ProviderOpenAI EmbeddingProvider = "openai"
)

// IsValid returns true if the provider is recognised.
func (p EmbeddingProvider) IsValid() bool {
	switch p {
	case ProviderNone, ProviderOllama, ProviderOpenAI:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p EmbeddingProvider) RequiresAPIKey() bool {
	return p == ProviderOpenAI
}

// String returns the string representation.
func (p EmbeddingProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p EmbeddingProvider) Description() string {
	switch p {
	case ProviderNone:
		return "None (semantic retrieval disabled)"
	case ProviderOllama:
		return "Ollama (local)"
	case ProviderOpenAI:
		return "OpenAI (cloud)"
	default:
		return unknownDescription
	}
}

// AllEmbeddingProviders returns every selectable provider, in display order.
func AllEmbeddingProviders() []EmbeddingProvider {
	return []EmbeddingProvider{ProviderNone, ProviderOllama, ProviderOpenAI}
}

// DefaultEmbeddingModel returns the default model for a provider.
func DefaultEmbeddingModel(p EmbeddingProvider) string {
	switch p {
	case ProviderOllama:
		return DefaultOllamaModel
	case ProviderOpenAI:
		return DefaultOpenAIModel
	default:
		return ""
	}
}

// IdentitySettings names the scope the CLI and MCP surfaces act under.
// Session validation belongs to the surrounding application; this core
// only consumes a resolved identity.
type IdentitySettings struct {
	// UserID is the acting user.
	UserID string

	// OrganizationID is the acting organization, if any.
	OrganizationID string
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider selects the embedding backend. Empty disables embeddings.
	Provider EmbeddingProvider

	// Model is the embedding model name.
	Model string

	// BaseURL overrides the provider endpoint. Empty uses the provider default.
	BaseURL string

	// APIKey authenticates cloud providers.
	APIKey string

	// Dimensions overrides the model's vector size when non-zero.
	Dimensions int

	// RequestsPerSecond throttles provider calls. Zero disables throttling.
	RequestsPerSecond float64
}

// SearchSettings bounds retrieval queries. User-supplied limits and
// thresholds are clamped into these bounds, never trusted as-is.
type SearchSettings struct {
	// DefaultLimit applies when the caller does not supply a limit.
	DefaultLimit int

	// MaxLimit caps the caller-supplied limit.
	MaxLimit int

	// DefaultThreshold applies when the caller does not supply a threshold.
	DefaultThreshold float64
}

// IngestSettings bounds uploads and configures chunking.
type IngestSettings struct {
	// MaxFileBytes is the upload ceiling, enforced before any processing.
	MaxFileBytes int64

	// TargetTokens is the chunk size goal.
	TargetTokens int

	// OverlapTokens is the overlap between consecutive chunks.
	OverlapTokens int

	// MinTokens is the smallest chunk worth storing.
	MinTokens int
}

// StorageSettings locates the metadata database.
type StorageSettings struct {
	// DataDir is the directory holding the SQLite database.
	// Empty uses ~/.kb/data.
	DataDir string
}

// AppSettings aggregates all application settings.
type AppSettings struct {
	Identity  IdentitySettings
	Embedding EmbeddingSettings
	Search    SearchSettings
	Ingest    IngestSettings
	Storage   StorageSettings
}

// Default setting values.
const (
	DefaultSearchLimit     = 5
	DefaultSearchMaxLimit  = 25
	DefaultSearchThreshold = 0.7
	DefaultMaxFileBytes    = 10 << 20 // 10 MiB
	DefaultTargetTokens    = 500
	DefaultOverlapTokens   = 50
	DefaultMinTokens       = 100
	DefaultOllamaModel     = "nomic-embed-text"
	DefaultOpenAIModel     = "text-embedding-3-small"
)

// DefaultAppSettings returns the settings used when nothing is configured.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Embedding: EmbeddingSettings{
			Provider: ProviderNone,
		},
		Search: SearchSettings{
			DefaultLimit:     DefaultSearchLimit,
			MaxLimit:         DefaultSearchMaxLimit,
			DefaultThreshold: DefaultSearchThreshold,
		},
		Ingest: IngestSettings{
			MaxFileBytes:  DefaultMaxFileBytes,
			TargetTokens:  DefaultTargetTokens,
			OverlapTokens: DefaultOverlapTokens,
			MinTokens:     DefaultMinTokens,
		},
	}
}
