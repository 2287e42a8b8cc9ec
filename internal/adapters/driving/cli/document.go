package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/kb-core/internal/core/domain"
)

var documentCmd = &cobra.Command{
	Use:   "document",
	Short: "Manage knowledge base documents",
	Long:  `List, view, delete, reprocess, or reembed knowledge base documents.`,
}

var documentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List visible documents",
	Args:  cobra.NoArgs,
	RunE:  runDocumentList,
}

var documentGetCmd = &cobra.Command{
	Use:   "get [doc-id]",
	Short: "Show document info",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentGet,
}

var documentDeleteCmd = &cobra.Command{
	Use:   "delete [doc-id]",
	Short: "Delete a document and its chunks",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentDelete,
}

var documentReprocessCmd = &cobra.Command{
	Use:   "reprocess [doc-id]",
	Short: "Re-run ingestion for a document",
	Long: `Deletes a document's chunks and runs ingestion again from the stored
content. Useful after changing chunking settings or to retry a failed
document.`,
	Args: cobra.ExactArgs(1),
	RunE: runDocumentReprocess,
}

var documentReembedCmd = &cobra.Command{
	Use:   "reembed [doc-id]",
	Short: "Embed a document's vector-less chunks",
	Long: `Attaches embeddings to chunks that were stored without vectors, for
example because no embedding provider was configured at ingest time.
Requires a configured embedding provider and a ready document.`,
	Args: cobra.ExactArgs(1),
	RunE: runDocumentReembed,
}

func init() {
	documentCmd.AddCommand(documentListCmd)
	documentCmd.AddCommand(documentGetCmd)
	documentCmd.AddCommand(documentDeleteCmd)
	documentCmd.AddCommand(documentReprocessCmd)
	documentCmd.AddCommand(documentReembedCmd)
	rootCmd.AddCommand(documentCmd)
}

func runDocumentList(cmd *cobra.Command, _ []string) error {
	if kbService == nil {
		return errors.New("knowledge base service not configured")
	}

	ctx := context.Background()

	docs, err := kbService.List(ctx, scope)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if len(docs) == 0 {
		cmd.Println("No documents in the knowledge base.")
		return nil
	}

	cmd.Println("Documents:")
	cmd.Println()
	for i := range docs {
		cmd.Printf("  %s\n", docs[i].ID)
		cmd.Printf("    Name:    %s\n", docs[i].Name)
		cmd.Printf("    Status:  %s\n", formatStatus(&docs[i]))
		if docs[i].OrganizationID != "" {
			cmd.Printf("    Shared:  yes (%s)\n", docs[i].OrganizationID)
		}
		cmd.Println()
	}

	cmd.Printf("Total: %d documents\n", len(docs))
	return nil
}

func runDocumentGet(cmd *cobra.Command, args []string) error {
	if kbService == nil {
		return errors.New("knowledge base service not configured")
	}

	docID := args[0]
	ctx := context.Background()

	doc, err := kbService.Get(ctx, scope, docID)
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	cmd.Printf("Document: %s\n\n", doc.ID)
	cmd.Printf("  Name:     %s\n", doc.Name)
	cmd.Printf("  Filename: %s\n", doc.Filename)
	cmd.Printf("  Type:     %s\n", doc.ContentType)
	cmd.Printf("  Size:     %d bytes\n", doc.SizeBytes)
	cmd.Printf("  Status:   %s\n", formatStatus(doc))
	cmd.Printf("  Chunks:   %d\n", doc.ChunkCount)
	if doc.OrganizationID != "" {
		cmd.Printf("  Shared:   yes (%s)\n", doc.OrganizationID)
	}
	cmd.Printf("  Created:  %s\n", doc.CreatedAt.Format("2006-01-02 15:04:05"))
	if !doc.ProcessedAt.IsZero() {
		cmd.Printf("  Processed: %s\n", doc.ProcessedAt.Format("2006-01-02 15:04:05"))
	}

	if len(doc.Metadata) > 0 {
		cmd.Println("\n  Metadata:")
		for k, v := range doc.Metadata {
			cmd.Printf("    %s: %v\n", k, v)
		}
	}

	return nil
}

func runDocumentDelete(cmd *cobra.Command, args []string) error {
	if kbService == nil {
		return errors.New("knowledge base service not configured")
	}

	docID := args[0]
	ctx := context.Background()

	if err := kbService.Delete(ctx, scope, docID); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	cmd.Printf("Document %s deleted.\n", docID)
	return nil
}

func runDocumentReprocess(cmd *cobra.Command, args []string) error {
	if kbService == nil {
		return errors.New("knowledge base service not configured")
	}

	docID := args[0]
	ctx := context.Background()

	cmd.Printf("Reprocessing document %s...\n", docID)

	if err := kbService.Reprocess(ctx, scope, docID); err != nil {
		return fmt.Errorf("failed to reprocess document: %w", err)
	}

	awaitIngestion()

	doc, err := kbService.Get(ctx, scope, docID)
	if err != nil {
		return fmt.Errorf("failed to check reprocess status: %w", err)
	}

	switch doc.Status {
	case domain.StatusReady:
		cmd.Printf("Document %s ready (%d chunks).\n", doc.ID, doc.ChunkCount)
	case domain.StatusFailed:
		return fmt.Errorf("reprocess failed: %s", doc.ErrorMessage)
	default:
		cmd.Printf("Document %s is %s.\n", doc.ID, doc.Status)
	}

	return nil
}

func runDocumentReembed(cmd *cobra.Command, args []string) error {
	if kbService == nil {
		return errors.New("knowledge base service not configured")
	}

	docID := args[0]
	ctx := context.Background()

	count, err := kbService.Reembed(ctx, scope, docID)
	if err != nil {
		return fmt.Errorf("failed to reembed document: %w", err)
	}

	if count == 0 {
		cmd.Println("All chunks already have embeddings.")
		return nil
	}

	cmd.Printf("Embedded %d chunks.\n", count)
	return nil
}

func formatStatus(doc *domain.Document) string {
	if doc.Status == domain.StatusFailed && doc.ErrorMessage != "" {
		return fmt.Sprintf("%s (%s)", doc.Status, doc.ErrorMessage)
	}
	return doc.Status.String()
}
