package fs

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/verdantpress/verdant/pkg/core"
)

const debounceWindow = 50 * time.Millisecond

// Watch emits a change event for every essay created, modified or
// removed under the vault. The pattern is a doublestar glob matched
// against "section/slug" keys ("**" watches everything). The stream
// closes when ctx is cancelled.
func (r *Repository) Watch(ctx context.Context, pattern string) (<-chan core.Event, error) {
	if pattern == "" {
		pattern = "**"
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid watch pattern: %s", pattern)
	}

	r.watchMu.Lock()
	if r.watched {
		r.watchMu.Unlock()
		return nil, fmt.Errorf("vault is already being watched")
	}
	r.watched = true
	r.watchMu.Unlock()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		r.setWatched(false)
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := r.addWatchDirs(watcher); err != nil {
		_ = watcher.Close()
		r.setWatched(false)
		return nil, err
	}

	events := make(chan core.Event, 16)
	go r.watchLoop(ctx, watcher, pattern, events)
	return events, nil
}

func (r *Repository) setWatched(v bool) {
	r.watchMu.Lock()
	r.watched = v
	r.watchMu.Unlock()
}

func (r *Repository) addWatchDirs(watcher *fsnotify.Watcher) error {
	if err := watcher.Add(r.Path); err != nil {
		return fmt.Errorf("failed to watch vault root: %w", err)
	}
	entries, err := filepath.Glob(filepath.Join(r.Path, "*"))
	if err != nil {
		return err
	}
	for _, entry := range entries {
		// Section directories; non-directories are rejected by Add anyway.
		_ = watcher.Add(entry)
	}
	return nil
}

func (r *Repository) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, pattern string, out chan<- core.Event) {
	defer func() {
		_ = watcher.Close()
		close(out)
		r.setWatched(false)
	}()

	debounce := newDebouncer(debounceWindow)
	defer debounce.stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Create) {
				// New section directory: start watching it.
				if filepath.Ext(event.Name) == "" {
					_ = watcher.Add(event.Name)
				}
			}

			section, slug, ok := r.splitKey(event.Name)
			if !ok {
				continue
			}
			key := section + "/" + slug
			if match, err := doublestar.Match(pattern, key); err != nil || !match {
				continue
			}

			eventType := mapEventType(event)
			if eventType == "" {
				continue
			}
			debounce.trigger(key, func() {
				r.emit(ctx, out, eventType, section, slug)
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			if r.config.Logger != nil {
				r.config.Logger.Warn("watcher error", "error", err)
			}
		}
	}
}

func (r *Repository) emit(ctx context.Context, out chan<- core.Event, eventType core.EventType, section, slug string) {
	ev := core.Event{
		Type:      eventType,
		Section:   section,
		Slug:      slug,
		Timestamp: time.Now().Unix(),
	}
	if eventType != core.EventDelete {
		if essay, err := r.readFile(r.essayPath(section, slug), section, slug); err == nil {
			ev.ID = essay.ID
		}
	}

	select {
	case out <- ev:
	case <-ctx.Done():
	}
}

// splitKey maps an absolute file path to its (section, slug) key.
// Temp files and non-essay files are rejected.
func (r *Repository) splitKey(path string) (section, slug string, ok bool) {
	rel, err := filepath.Rel(r.Path, path)
	if err != nil {
		return "", "", false
	}
	rel = filepath.ToSlash(rel)
	parts := strings.Split(rel, "/")
	if len(parts) != 2 {
		return "", "", false
	}
	name := parts[1]
	if filepath.Ext(name) != ".md" || strings.HasPrefix(name, tempFilePrefix) {
		return "", "", false
	}
	return parts[0], strings.TrimSuffix(name, ".md"), true
}

func mapEventType(event fsnotify.Event) core.EventType {
	switch {
	case event.Has(fsnotify.Create):
		return core.EventCreate
	case event.Has(fsnotify.Write):
		return core.EventModify
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		return core.EventDelete
	default:
		return ""
	}
}

// debouncer coalesces bursts of events per key into a single callback.
type debouncer struct {
	mu     sync.Mutex
	window time.Duration
	timers map[string]*time.Timer
}

func newDebouncer(window time.Duration) *debouncer {
	return &debouncer{
		window: window,
		timers: make(map[string]*time.Timer),
	}
}

func (d *debouncer) trigger(key string, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if timer, ok := d.timers[key]; ok {
		timer.Stop()
	}
	d.timers[key] = time.AfterFunc(d.window, func() {
		d.mu.Lock()
		delete(d.timers, key)
		d.mu.Unlock()
		fn()
	})
}

func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for key, timer := range d.timers {
		timer.Stop()
		delete(d.timers, key)
	}
}
