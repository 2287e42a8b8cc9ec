package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/kb-core/internal/core/domain"
	"github.com/custodia-labs/kb-core/internal/core/ports/driving"
)

var (
	ingestName   string
	ingestShared bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [file]",
	Short: "Ingest a document into the knowledge base",
	Long: `Reads a plain-text or markdown file, chunks it, and stores it in the
knowledge base. When an embedding provider is configured the chunks are
embedded for semantic search; otherwise the document is stored without
vectors and can be embedded later with 'kb document reembed'.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVarP(&ingestName, "name", "n", "", "display name (defaults to the filename)")
	ingestCmd.Flags().BoolVar(&ingestShared, "shared", false, "share with your organization")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if kbService == nil {
		return errors.New("knowledge base service not configured")
	}

	path := args[0]
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	ctx := context.Background()
	req := driving.IngestRequest{
		Name:     ingestName,
		Filename: filepath.Base(path),
		Content:  content,
		Shared:   ingestShared,
	}

	doc, err := kbService.Ingest(ctx, scope, req)
	if err != nil {
		return fmt.Errorf("failed to ingest document: %w", err)
	}

	cmd.Printf("Ingesting %q (%d bytes)...\n", doc.Name, doc.SizeBytes)

	// Ingestion runs detached; wait so the process does not exit with the
	// run still in flight.
	awaitIngestion()

	final, err := kbService.Get(ctx, scope, doc.ID)
	if err != nil {
		return fmt.Errorf("failed to check ingestion status: %w", err)
	}

	switch final.Status {
	case domain.StatusReady:
		cmd.Printf("Document %s ready (%d chunks).\n", final.ID, final.ChunkCount)
	case domain.StatusFailed:
		return fmt.Errorf("ingestion failed: %s", final.ErrorMessage)
	default:
		cmd.Printf("Document %s is %s.\n", final.ID, final.Status)
	}

	return nil
}
