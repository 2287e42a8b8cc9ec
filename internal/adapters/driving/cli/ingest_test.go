package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/kb-core/internal/core/domain"
)

func writeTestFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestIngestCmd_Use(t *testing.T) {
	assert.Equal(t, "ingest [file]", ingestCmd.Use)
}

func TestIngestCmd_RequiresExactlyOneArg(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"ingest"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestIngestCmd_IngestsFile(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	mock := &mockKnowledgeBaseService{docs: testDocuments()}
	kbService = mock

	path := writeTestFile(t, "handbook.md", "# Handbook\n\nExpenses need receipts.")

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ingest", path})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Equal(t, "handbook.md", mock.lastRequest.Filename)
	assert.Equal(t, "# Handbook\n\nExpenses need receipts.", string(mock.lastRequest.Content))
	assert.Contains(t, buf.String(), "Document doc-1 ready (3 chunks).")
}

func TestIngestCmd_PassesFlags(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	mock := &mockKnowledgeBaseService{docs: testDocuments()}
	kbService = mock

	path := writeTestFile(t, "notes.txt", "shared notes")

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ingest", path, "--name", "Team Notes", "--shared"})
	defer func() {
		rootCmd.SetArgs(nil)
		ingestName = ""
		ingestShared = false
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Equal(t, "Team Notes", mock.lastRequest.Name)
	assert.True(t, mock.lastRequest.Shared)
}

func TestIngestCmd_MissingFile(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"ingest", filepath.Join(t.TempDir(), "missing.txt")})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read")
}

func TestIngestCmd_RejectedUpload(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	kbService = &mockKnowledgeBaseService{err: domain.ErrFileTooLarge}

	path := writeTestFile(t, "big.txt", "content")

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"ingest", path})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrFileTooLarge)
}

func TestIngestCmd_ReportsFailedIngestion(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	docs := testDocuments()
	docs[0].Status = domain.StatusFailed
	docs[0].ErrorMessage = "document produced no chunks: content is empty or whitespace"
	kbService = &mockKnowledgeBaseService{docs: docs}

	path := writeTestFile(t, "empty.txt", "   ")

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"ingest", path})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "ingestion failed")
	assert.Contains(t, err.Error(), "document produced no chunks")
}
