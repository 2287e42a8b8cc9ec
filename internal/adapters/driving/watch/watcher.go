// Package watch ingests files dropped into a watched directory.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/kb-core/internal/core/domain"
	"github.com/custodia-labs/kb-core/internal/core/ports/driving"
	"github.com/custodia-labs/kb-core/internal/logger"
)

// settleDelay is how long a file must stay quiet after its last write
// before it is ingested. Editors and copies produce bursts of events.
const settleDelay = 500 * time.Millisecond

// Watcher monitors a directory and ingests supported files as they appear.
type Watcher struct {
	kb    driving.KnowledgeBaseService
	scope domain.OwnerScope
	dir   string

	mu      sync.Mutex
	pending map[string]*time.Timer
}

// NewWatcher creates a watcher over dir for the given scope.
func NewWatcher(kb driving.KnowledgeBaseService, scope domain.OwnerScope, dir string) (*Watcher, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("stat watch directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", domain.ErrInvalidInput, dir)
	}

	return &Watcher{
		kb:      kb,
		scope:   scope,
		dir:     dir,
		pending: make(map[string]*time.Timer),
	}, nil
}

// Run watches the directory until the context is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}

	logger.Info("Watching %s for new documents", w.dir)

	for {
		select {
		case <-ctx.Done():
			w.cancelPending()
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			w.schedule(ctx, event.Name)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error: %v", err)
		}
	}
}

// schedule (re)arms the settle timer for a path. The file is ingested only
// once it has been quiet for settleDelay.
func (w *Watcher) schedule(ctx context.Context, path string) {
	if !w.eligible(path) {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, ok := w.pending[path]; ok {
		timer.Stop()
	}
	w.pending[path] = time.AfterFunc(settleDelay, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()

		w.ingest(ctx, path)
	})
}

func (w *Watcher) cancelPending() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, timer := range w.pending {
		timer.Stop()
		delete(w.pending, path)
	}
}

// eligible filters out hidden files and unsupported types before any I/O.
func (w *Watcher) eligible(path string) bool {
	name := filepath.Base(path)
	if strings.HasPrefix(name, ".") {
		return false
	}
	if _, err := domain.ResolveContentType("", name); err != nil {
		logger.Debug("Skipping %s: unsupported type", name)
		return false
	}
	return true
}

// ingest reads the file and submits it to the knowledge base.
func (w *Watcher) ingest(ctx context.Context, path string) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return
	}

	content, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("Reading %s: %v", path, err)
		return
	}

	doc, err := w.kb.Ingest(ctx, w.scope, driving.IngestRequest{
		Filename: filepath.Base(path),
		Content:  content,
	})
	if err != nil {
		logger.Warn("Ingesting %s: %v", path, err)
		return
	}

	logger.Info("Ingested %s as document %s", filepath.Base(path), doc.ID)
}
