package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/kb-core/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure identity, embedding provider, search bounds, and
ingestion options.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsEmbeddingCmd = &cobra.Command{
	Use:   "embedding",
	Short: "Configure embedding provider",
	Long:  `Configure the embedding provider used for semantic search.`,
	RunE:  runSettingsEmbedding,
}

var settingsIdentityCmd = &cobra.Command{
	Use:   "identity [user-id]",
	Short: "Set the acting identity",
	Long: `Set the user the CLI acts as, and optionally the organization whose
shared documents are visible.`,
	Args: cobra.ExactArgs(1),
	RunE: runSettingsIdentity,
}

// identityOrg is a flag for the identity command.
var identityOrg string

func init() {
	settingsIdentityCmd.Flags().StringVarP(&identityOrg, "org", "o", "", "organization ID for shared documents")

	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsEmbeddingCmd)
	settingsCmd.AddCommand(settingsIdentityCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Identity]")
	userID := settings.Identity.UserID
	if userID == "" {
		userID = defaultUserID + " (default)"
	}
	cmd.Printf("  User: %s\n", userID)
	if settings.Identity.OrganizationID != "" {
		cmd.Printf("  Organization: %s\n", settings.Identity.OrganizationID)
	}
	cmd.Println()

	cmd.Println("[Embedding]")
	cmd.Printf("  Provider: %s\n", settings.Embedding.Provider.Description())
	if settings.Embedding.Provider != domain.ProviderNone {
		cmd.Printf("  Model: %s\n", settings.Embedding.Model)
		if settings.Embedding.BaseURL != "" {
			cmd.Printf("  Base URL: %s\n", settings.Embedding.BaseURL)
		}
		if settings.Embedding.Provider.RequiresAPIKey() {
			if settings.Embedding.APIKey != "" {
				cmd.Printf("  API Key: %s\n", maskAPIKey(settings.Embedding.APIKey))
			} else {
				cmd.Printf("  API Key: (not set)\n")
			}
		}
		if settings.Embedding.RequestsPerSecond > 0 {
			cmd.Printf("  Rate limit: %.1f req/s\n", settings.Embedding.RequestsPerSecond)
		}
	}
	cmd.Println()

	cmd.Println("[Search]")
	cmd.Printf("  Default limit: %d\n", settings.Search.DefaultLimit)
	cmd.Printf("  Max limit: %d\n", settings.Search.MaxLimit)
	cmd.Printf("  Default threshold: %.2f\n", settings.Search.DefaultThreshold)
	cmd.Println()

	cmd.Println("[Ingest]")
	cmd.Printf("  Max file size: %d bytes\n", settings.Ingest.MaxFileBytes)
	cmd.Printf("  Chunk target: %d tokens\n", settings.Ingest.TargetTokens)
	cmd.Printf("  Chunk overlap: %d tokens\n", settings.Ingest.OverlapTokens)
	cmd.Printf("  Min chunk: %d tokens\n", settings.Ingest.MinTokens)

	return nil
}

func runSettingsEmbedding(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	reader := bufio.NewReader(os.Stdin)

	cmd.Println("Select Embedding Provider")
	providers := domain.AllEmbeddingProviders()
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	input := readLine(reader)
	idx := parseChoice(input, len(providers), 1)
	selectedProvider := providers[idx-1]

	if selectedProvider == domain.ProviderNone {
		if err := settingsService.SetEmbeddingProvider(selectedProvider, "", ""); err != nil {
			return fmt.Errorf("failed to configure embedding provider: %w", err)
		}
		cmd.Println("Semantic retrieval disabled. Documents will ingest without vectors.")
		return nil
	}

	defaultModel := domain.DefaultEmbeddingModel(selectedProvider)
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	var apiKey string
	if selectedProvider.RequiresAPIKey() {
		cmd.Print("Enter API key: ")
		apiKey = readPassword()
		cmd.Println()
		if apiKey == "" {
			return errors.New("API key is required for this provider")
		}
	}

	if err := settingsService.SetEmbeddingProvider(selectedProvider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure embedding provider: %w", err)
	}

	cmd.Printf("Embedding provider configured: %s (%s)\n", selectedProvider.Description(), model)
	cmd.Println("Run 'kb document reembed <doc-id>' to embed existing documents.")
	return nil
}

func runSettingsIdentity(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	userID := strings.TrimSpace(args[0])
	if userID == "" {
		return errors.New("user ID must not be empty")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	settings.Identity.UserID = userID
	if identityOrg != "" {
		settings.Identity.OrganizationID = identityOrg
	}

	if err := settingsService.Save(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	if settings.Identity.OrganizationID != "" {
		cmd.Printf("Acting as %s (organization %s).\n", userID, settings.Identity.OrganizationID)
	} else {
		cmd.Printf("Acting as %s.\n", userID)
	}
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

//nolint:errcheck // CLI helper, error ignored for UX
func readPassword() string {
	// Try to read password without echo
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return string(password)
		}
	}
	// Fallback to regular input
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
