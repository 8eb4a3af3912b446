package index

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/nibi/internal/storage"
)

// Event kinds passed to an EventCallback.
const (
	EventCreated = "created"
	EventUpdated = "updated"
	EventDeleted = "deleted"
)

// EventCallback is called after a watcher-driven index change.
type EventCallback func(kind string, path string)

const reconcileDelay = 200 * time.Millisecond

// Watch watches root (the directory the store serves) and keeps the index
// in step with ingot file changes until ctx is cancelled. cb, if non-nil, is
// called after each successful index mutation.
//
// Directories created at runtime are added to the watch list. fsnotify
// reports a rename on the old path only, so renames delete the old row at
// once and schedule a debounced reconciliation that picks up the new path.
func (ix *Indexer) Watch(ctx context.Context, root string, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, root); err != nil {
		return err
	}
	ix.logger.Info("watcher: started", slog.String("root", root))

	notify := func(kind, path string) {
		if cb != nil {
			cb(kind, path)
		}
	}

	var reconcileTimer *time.Timer
	var reconcileCh <-chan time.Time
	scheduleReconcile := func() {
		if reconcileTimer == nil {
			reconcileTimer = time.NewTimer(reconcileDelay)
			reconcileCh = reconcileTimer.C
		} else {
			reconcileTimer.Reset(reconcileDelay)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if reconcileTimer != nil {
				reconcileTimer.Stop()
			}
			ix.logger.Info("watcher: stopped")
			return nil

		case <-reconcileCh:
			ix.reconcile(notify)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			absPath := ev.Name

			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(absPath); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, absPath); addErr != nil {
						ix.logger.Warn("watcher: add new dir failed",
							slog.String("path", absPath),
							slog.String("error", addErr.Error()))
					}
					ix.indexNewDir(root, absPath, notify)
					continue
				}
			}

			if !storage.IsIngot(filepath.Base(absPath)) {
				continue
			}
			rel, relErr := filepath.Rel(root, absPath)
			if relErr != nil {
				continue
			}
			rel = filepath.ToSlash(rel)

			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				data, readErr := ix.store.Read(rel)
				if readErr != nil {
					ix.logger.Warn("watcher: read failed", slog.String("path", rel), slog.String("error", readErr.Error()))
					continue
				}
				if _, idxErr := ix.IndexFile(rel, data); idxErr != nil {
					ix.logger.Warn("watcher: index failed", slog.String("path", rel), slog.String("error", idxErr.Error()))
					continue
				}
				kind := EventUpdated
				if ev.Op&fsnotify.Create != 0 {
					kind = EventCreated
				}
				ix.logger.Debug("watcher: indexed", slog.String("path", rel), slog.String("op", kind))
				notify(kind, rel)

			case ev.Op&fsnotify.Remove != 0:
				if delErr := ix.db.DeleteIngot(rel); delErr != nil {
					ix.logger.Warn("watcher: delete failed", slog.String("path", rel), slog.String("error", delErr.Error()))
					continue
				}
				ix.logger.Debug("watcher: deleted", slog.String("path", rel))
				notify(EventDeleted, rel)

			case ev.Op&fsnotify.Rename != 0:
				if delErr := ix.db.DeleteIngot(rel); delErr != nil {
					ix.logger.Warn("watcher: rename delete failed", slog.String("path", rel), slog.String("error", delErr.Error()))
				} else {
					notify(EventDeleted, rel)
				}
				scheduleReconcile()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			ix.logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// reconcile removes rows whose files are gone and indexes files whose
// checksum differs from the stored one.
func (ix *Indexer) reconcile(notify EventCallback) {
	checksums, err := ix.db.AllChecksums()
	if err != nil {
		ix.logger.Warn("reconcile: all checksums failed", slog.String("error", err.Error()))
		return
	}
	metas, err := ix.store.List("")
	if err != nil {
		ix.logger.Warn("reconcile: list failed", slog.String("error", err.Error()))
		return
	}

	disk := make(map[string]string, len(metas))
	for _, m := range metas {
		disk[m.Path] = m.Checksum
	}

	for p := range checksums {
		if _, ok := disk[p]; ok {
			continue
		}
		if err := ix.db.DeleteIngot(p); err == nil {
			ix.logger.Debug("reconcile: removed stale", slog.String("path", p))
			notify(EventDeleted, p)
		}
	}

	for p, cs := range disk {
		if checksums[p] == cs {
			continue
		}
		data, err := ix.store.Read(p)
		if err != nil {
			continue
		}
		if _, err := ix.IndexFile(p, data); err == nil {
			ix.logger.Debug("reconcile: indexed", slog.String("path", p))
			notify(EventCreated, p)
		}
	}
}

// indexNewDir indexes the ingot files already present in a directory that
// appeared while watching.
func (ix *Indexer) indexNewDir(root, dir string, notify EventCallback) {
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !storage.IsIngot(d.Name()) {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		data, readErr := ix.store.Read(rel)
		if readErr != nil {
			return nil
		}
		if _, idxErr := ix.IndexFile(rel, data); idxErr == nil {
			ix.logger.Debug("watcher: indexed from new dir", slog.String("path", rel))
			notify(EventCreated, rel)
		}
		return nil
	})
}

func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}
