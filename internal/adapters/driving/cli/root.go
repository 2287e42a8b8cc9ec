// Package cli implements the kb command-line interface using cobra.
// Commands talk to the core services through the driving ports; the
// concrete adapters are wired once in initServices.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/kb-core/internal/adapters/driven/config/file"
	"github.com/custodia-labs/kb-core/internal/adapters/driven/embedding"
	"github.com/custodia-labs/kb-core/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/kb-core/internal/chunker"
	"github.com/custodia-labs/kb-core/internal/core/domain"
	"github.com/custodia-labs/kb-core/internal/core/ports/driving"
	"github.com/custodia-labs/kb-core/internal/core/services"
	"github.com/custodia-labs/kb-core/internal/logger"
)

// version is set at build time via -ldflags.
var version = "0.1.0"

// defaultUserID identifies the acting user when no identity is configured.
// A single-user install works out of the box; multi-user deployments set
// identity.user_id before ingesting.
const defaultUserID = "local"

// Services wired by initServices. Tests swap these for mocks.
var (
	settingsService driving.SettingsService
	kbService       driving.KnowledgeBaseService
	searchService   driving.SearchService

	pipeline *services.IngestionPipeline
	scope    domain.OwnerScope

	servicesInitialized bool
)

var verboseFlag bool

var rootCmd = &cobra.Command{
	Use:   "kb",
	Short: "Personal knowledge base with semantic retrieval",
	Long: `kb ingests text documents into a local knowledge base and answers
semantic queries over them.

Documents are chunked, optionally embedded via a configured provider
(Ollama or OpenAI), and stored in a local SQLite database. Retrieval
returns ranked passages plus a pre-formatted context block for use as
grounding context by AI assistants.`,
	SilenceUsage: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		logger.SetVerbose(verboseFlag)
		return initServices()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable verbose output")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initServices wires the adapters and core services. It runs once; tests
// preinstall mocks and set servicesInitialized to skip it.
func initServices() error {
	if servicesInitialized {
		return nil
	}

	logger.Section("Initializing services")

	configStore, err := file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("failed to open config store: %w", err)
	}
	settingsService = services.NewSettingsService(configStore)

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	scope = domain.OwnerScope{
		UserID:         settings.Identity.UserID,
		OrganizationID: settings.Identity.OrganizationID,
	}
	if scope.UserID == "" {
		scope.UserID = defaultUserID
	}
	logger.Debug("Acting as user %q (organization %q)", scope.UserID, scope.OrganizationID)

	store, err := sqlite.NewStore(settings.Storage.DataDir)
	if err != nil {
		return fmt.Errorf("failed to open document store: %w", err)
	}

	embedder, err := embedding.NewFromSettings(settings.Embedding)
	if err != nil {
		return fmt.Errorf("failed to configure embedding provider: %w", err)
	}
	if embedder == nil {
		logger.Info("No embedding provider configured; documents ingest without vectors")
	} else {
		logger.Debug("Embedding provider: %s (%s)", settings.Embedding.Provider, embedder.ModelName())
	}

	splitter := chunker.New(
		chunker.WithTargetTokens(settings.Ingest.TargetTokens),
		chunker.WithOverlapTokens(settings.Ingest.OverlapTokens),
		chunker.WithMinTokens(settings.Ingest.MinTokens),
	)

	pipeline = services.NewIngestionPipeline(store, embedder, splitter)
	kbService = services.NewKnowledgeBaseService(store, embedder, pipeline, settings.Ingest)
	searchService = services.NewSearchService(store, embedder, settings.Search)

	servicesInitialized = true
	return nil
}

// awaitIngestion blocks until all dispatched ingestion runs conclude.
// No-op when running against mocks without a pipeline.
func awaitIngestion() {
	if pipeline != nil {
		pipeline.Wait()
	}
}
