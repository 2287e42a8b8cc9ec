package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/kb-core/internal/core/domain"
)

var (
	searchLimit     int
	searchThreshold float64
	searchJSON      bool
	searchContext   bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the knowledge base",
	Long: `Runs a semantic similarity search over your visible documents and
prints the best-matching passages. Requires a configured embedding
provider; without one the search explains how to set one up.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "maximum number of results (0 = configured default)")
	searchCmd.Flags().Float64VarP(&searchThreshold, "threshold", "t", 0, "minimum similarity score (0 = configured default)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	searchCmd.Flags().BoolVar(&searchContext, "context", false, "print the formatted context block instead of a result list")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := args[0]

	if searchService == nil {
		return errors.New("search service not configured")
	}

	ctx := context.Background()
	opts := domain.SearchOptions{
		Limit:     searchLimit,
		Threshold: searchThreshold,
	}

	response, err := searchService.Search(ctx, scope, query, opts)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, response)
	}
	if searchContext {
		cmd.Println(response.Context)
		return nil
	}

	return outputSearchTable(cmd, response)
}

func outputSearchJSON(cmd *cobra.Command, response *domain.SearchResponse) error {
	data, err := json.MarshalIndent(response, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, response *domain.SearchResponse) error {
	if len(response.Results) == 0 {
		// The context block explains why: no matches, or no provider.
		cmd.Println(response.Context)
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i := range response.Results {
		r := &response.Results[i]
		cmd.Printf("  [%d] %s (chunk %d, %.2f)\n", i+1, r.DocumentName, r.Chunk.ChunkIndex, r.Similarity)
		cmd.Printf("      %s\n", snippet(r.Chunk.Content))
		cmd.Println()
	}

	return nil
}

// snippet trims a passage to a single displayable line.
func snippet(content string) string {
	const maxLen = 200
	for i, c := range content {
		if c == '\n' || i >= maxLen {
			return content[:i] + "..."
		}
	}
	return content
}
