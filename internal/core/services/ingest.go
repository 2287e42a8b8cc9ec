package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/custodia-labs/kb-core/internal/chunker"
	"github.com/custodia-labs/kb-core/internal/core/domain"
	"github.com/custodia-labs/kb-core/internal/core/ports/driven"
	"github.com/custodia-labs/kb-core/internal/logger"
)

// maxErrorMessageLen bounds the failure reason stored on a document.
const maxErrorMessageLen = 500

// IngestionPipeline drives a document through the ingestion state machine:
// pending -> processing -> ready | failed.
//
// Each document has a run lock. The lock serialises an in-flight run against
// reprocess and delete requests for the same document, so a late-arriving
// run can never interleave its writes with a reset.
type IngestionPipeline struct {
	docStore driven.DocumentStore
	embedder driven.EmbeddingService // optional
	splitter *chunker.Chunker

	mu    sync.Mutex
	locks map[string]*sync.Mutex

	wg sync.WaitGroup
}

// NewIngestionPipeline creates a pipeline. The embedder is optional; when
// nil, documents ingest without vectors.
func NewIngestionPipeline(
	docStore driven.DocumentStore,
	embedder driven.EmbeddingService,
	splitter *chunker.Chunker,
) *IngestionPipeline {
	if splitter == nil {
		splitter = chunker.New()
	}
	return &IngestionPipeline{
		docStore: docStore,
		embedder: embedder,
		splitter: splitter,
		locks:    make(map[string]*sync.Mutex),
	}
}

// Dispatch starts a detached ingestion run for the document. The caller
// returns immediately and observes progress by polling reads. Runs carry
// their own context: they outlive the issuing request.
func (p *IngestionPipeline) Dispatch(documentID string) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		if err := p.Process(context.Background(), documentID); err != nil {
			logger.Warn("Ingestion run for %s: %v", documentID, err)
		}
	}()
}

// Wait blocks until all dispatched runs have concluded.
// Used by tests and graceful shutdown.
func (p *IngestionPipeline) Wait() {
	p.wg.Wait()
}

// Process runs ingestion for the document synchronously, holding its
// run lock throughout.
func (p *IngestionPipeline) Process(ctx context.Context, documentID string) error {
	lock := p.lockFor(documentID)
	lock.Lock()
	defer lock.Unlock()

	return p.run(ctx, documentID)
}

// WithDocumentLock runs fn while holding the document's run lock.
// Reprocess and delete use this to avoid racing an in-flight run.
func (p *IngestionPipeline) WithDocumentLock(documentID string, fn func() error) error {
	lock := p.lockFor(documentID)
	lock.Lock()
	defer lock.Unlock()

	return fn()
}

// lockFor returns the run lock for a document, creating it on first use.
func (p *IngestionPipeline) lockFor(documentID string) *sync.Mutex {
	p.mu.Lock()
	defer p.mu.Unlock()

	lock, ok := p.locks[documentID]
	if !ok {
		lock = &sync.Mutex{}
		p.locks[documentID] = lock
	}
	return lock
}

// ForgetDocument drops a document's run lock after deletion, so a long-lived
// process does not accumulate a mutex per document ever ingested. Document IDs
// are never reused, so a waiter still holding the stale mutex cannot collide
// with a later document.
func (p *IngestionPipeline) ForgetDocument(documentID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.locks, documentID)
}

// run executes one ingestion attempt. Any failure leaves the document in
// StatusFailed with a bounded error message and zero persisted chunks.
func (p *IngestionPipeline) run(ctx context.Context, documentID string) error {
	logger.Section("Ingestion Run")
	logger.Debug("Document: %s", documentID)

	doc, err := p.docStore.GetDocument(ctx, documentID)
	if err != nil {
		return fmt.Errorf("get document: %w", err)
	}

	doc.Status = domain.StatusProcessing
	doc.ChunkCount = 0
	doc.ErrorMessage = ""
	if err := p.docStore.SaveDocument(ctx, doc); err != nil {
		return fmt.Errorf("mark processing: %w", err)
	}

	// Step 1: chunking. A document must produce at least one chunk.
	pieces := p.splitter.Chunk(doc.Content)
	logger.Debug("Chunker produced %d chunks", len(pieces))
	if len(pieces) == 0 {
		return p.fail(ctx, doc, "document produced no chunks: content is empty or whitespace")
	}

	// Step 2: embedding, best-effort. A provider failure degrades the
	// document to vector-less chunks instead of failing the run.
	vectors := p.embedAll(ctx, pieces)

	// Step 3: persist chunks in index order, vectors already attached
	// where embedding succeeded.
	chunks := make([]domain.DocumentChunk, len(pieces))
	for i, piece := range pieces {
		chunks[i] = domain.DocumentChunk{
			ID:         uuid.New().String(),
			DocumentID: doc.ID,
			Content:    piece.Content,
			ChunkIndex: piece.Index,
			TokenCount: piece.TokenCount,
			StartChar:  piece.StartChar,
			EndChar:    piece.EndChar,
		}
		if vectors != nil {
			chunks[i].Embedding = vectors[i]
		}
	}

	if err := p.docStore.SaveChunks(ctx, chunks); err != nil {
		return p.fail(ctx, doc, fmt.Sprintf("persist chunks: %v", err))
	}

	// Step 4: the document becomes ready.
	doc.Status = domain.StatusReady
	doc.ChunkCount = len(chunks)
	doc.ProcessedAt = time.Now().UTC()
	if err := p.docStore.SaveDocument(ctx, doc); err != nil {
		return p.fail(ctx, doc, fmt.Sprintf("mark ready: %v", err))
	}

	logger.Info("Document %s ready: %d chunks, embedded=%t", doc.ID, len(chunks), vectors != nil)
	return nil
}

// embedAll embeds all chunk texts as one batch. Returns nil when no
// provider is configured or the call fails; the run continues either way.
func (p *IngestionPipeline) embedAll(ctx context.Context, pieces []chunker.Chunk) [][]float32 {
	if p.embedder == nil {
		logger.Debug("No embedding provider configured, skipping vectors")
		return nil
	}

	texts := make([]string, len(pieces))
	for i, piece := range pieces {
		texts[i] = piece.Content
	}

	vectors, err := p.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		logger.Warn("Embedding failed, document degrades to vector-less chunks: %v", err)
		return nil
	}
	if len(vectors) != len(texts) {
		logger.Warn("Embedding returned %d vectors for %d texts, discarding", len(vectors), len(texts))
		return nil
	}
	return vectors
}

// fail transitions the document to StatusFailed. Chunks from the aborted
// run are removed first so a failed document never holds partial output.
func (p *IngestionPipeline) fail(ctx context.Context, doc *domain.Document, msg string) error {
	if err := p.docStore.DeleteChunks(ctx, doc.ID); err != nil {
		logger.Warn("Cleanup after failed run for %s: %v", doc.ID, err)
	}

	doc.Status = domain.StatusFailed
	doc.ChunkCount = 0
	doc.ErrorMessage = sanitizeError(msg)
	if err := p.docStore.SaveDocument(ctx, doc); err != nil {
		return fmt.Errorf("mark failed: %w", err)
	}

	logger.Info("Document %s failed: %s", doc.ID, doc.ErrorMessage)
	return nil
}

// sanitizeError bounds and cleans a failure reason for storage and display.
// Truncation lands on a rune boundary so the stored message stays valid UTF-8.
func sanitizeError(msg string) string {
	msg = strings.TrimSpace(strings.ToValidUTF8(msg, ""))
	if len(msg) > maxErrorMessageLen {
		cut := maxErrorMessageLen - 3
		for cut > 0 && !utf8.RuneStart(msg[cut]) {
			cut--
		}
		msg = msg[:cut] + "..."
	}
	return msg
}
