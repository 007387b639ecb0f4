package tags

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// TableWatcher reloads a Table's override file whenever it changes on disk.
type TableWatcher struct {
	path    string
	table   *Table
	logger  *slog.Logger
	watcher *fsnotify.Watcher
}

// NewTableWatcher starts watching the directory holding path.
// The directory is watched rather than the file so editors that replace
// the file on save are still seen.
func NewTableWatcher(path string, table *Table, logger *slog.Logger) (*TableWatcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		w.Close()
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	return &TableWatcher{path: abs, table: table, logger: logger, watcher: w}, nil
}

// Run processes file events until ctx is cancelled.
func (tw *TableWatcher) Run(ctx context.Context) error {
	defer tw.watcher.Close()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-tw.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != tw.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			tw.reload()
		case err, ok := <-tw.watcher.Errors:
			if !ok {
				return nil
			}
			tw.logger.Warn("tag table watcher error", slog.String("error", err.Error()))
		}
	}
}

func (tw *TableWatcher) reload() {
	if err := tw.table.LoadOverrideFile(tw.path); err != nil {
		// Keep serving the previous table on a bad edit.
		tw.logger.Warn("tag table reload failed",
			slog.String("path", tw.path),
			slog.String("error", err.Error()))
		return
	}
	tw.logger.Info("tag table reloaded",
		slog.String("path", tw.path),
		slog.Int("codes", tw.table.Len()))
}
