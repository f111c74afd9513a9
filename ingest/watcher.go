package ingest

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/docqa-ai/docqa/log"
)

// Watcher monitors a directory and ingests text files as they appear or
// change.
type Watcher struct {
	ingestor   *Ingestor
	extensions []string
}

// NewWatcher creates a directory watcher. With no extensions given it
// watches .txt and .md files.
func NewWatcher(ingestor *Ingestor, extensions ...string) *Watcher {
	if len(extensions) == 0 {
		extensions = []string{".txt", ".md"}
	}
	return &Watcher{
		ingestor:   ingestor,
		extensions: extensions,
	}
}

// Watch ingests the files already present in dir, then blocks ingesting
// new and modified files until the context is cancelled.
func (w *Watcher) Watch(ctx context.Context, dir string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		w.ingestFile(ctx, filepath.Join(dir, entry.Name()))
	}

	log.Info("watching %s for documents", dir)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			w.ingestFile(ctx, event.Name)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("watch error: %v", err)
		}
	}
}

// ingestFile ingests a single file when its extension is watched. Errors
// are logged, not returned: a bad file must not stop the watch loop.
func (w *Watcher) ingestFile(ctx context.Context, path string) {
	if !w.watchedExtension(path) {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		log.Warn("failed to read %s: %v", path, err)
		return
	}

	if _, err := w.ingestor.Ingest(ctx, filepath.Base(path), string(data)); err != nil {
		log.Warn("failed to ingest %s: %v", path, err)
	}
}

func (w *Watcher) watchedExtension(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range w.extensions {
		if ext == e {
			return true
		}
	}
	return false
}
