package snapshot

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ramonehamilton/matchups/internal/matchups"
)

// DefaultDebounce coalesces the burst of events produced by one rewrite.
const DefaultDebounce = 250 * time.Millisecond

// Watcher reloads a snapshot directory whenever one of its files changes.
type Watcher struct {
	dir      string
	debounce time.Duration
	onChange func(matchups.RawTables, error)
	logger   zerolog.Logger
}

// NewWatcher creates a watcher for dir. onChange receives the reloaded
// payloads, or the load error, once per debounced burst of changes.
func NewWatcher(dir string, onChange func(matchups.RawTables, error)) *Watcher {
	return &Watcher{
		dir:      dir,
		debounce: DefaultDebounce,
		onChange: onChange,
		logger:   log.With().Str("component", "snapshot").Str("dir", dir).Logger(),
	}
}

// WithDebounce overrides the debounce interval.
func (w *Watcher) WithDebounce(d time.Duration) *Watcher {
	w.debounce = d
	return w
}

// Run watches until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) (err error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() {
		if closeErr := watcher.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	// Watch the directory, not the files: atomic renames replace the inode.
	if err := watcher.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch snapshot directory: %w", err)
	}
	w.logger.Info().Msg("Watching snapshot directory")

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug().Str("file", event.Name).Str("op", event.Op.String()).Msg("Snapshot changed")
			timer.Reset(w.debounce)
		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn().Err(werr).Msg("File watcher error")
		case <-timer.C:
			raw, loadErr := Load(w.dir)
			if loadErr != nil {
				w.logger.Warn().Err(loadErr).Msg("Snapshot reload failed")
			}
			w.onChange(raw, loadErr)
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return false
	}
	return slices.Contains(Files, filepath.Base(event.Name))
}
