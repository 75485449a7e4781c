// Package watcher turns raw filesystem notifications into debounced batches
// of change events. A burst of events within one debounce window yields a
// single batch; classification against the dependency set decides whether
// the batch triggers a recompilation.
package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	folioerrors "github.com/folio-dev/folio/internal/errors"
	"github.com/folio-dev/folio/internal/logging"
)

// EventType classifies a filesystem notification.
type EventType int

const (
	EventTypeCreated EventType = iota
	EventTypeModified
	EventTypeMetadata
	EventTypeRenamed
	EventTypeRemoved
	EventTypeOther
)

// String returns the string representation of the EventType
func (e EventType) String() string {
	switch e {
	case EventTypeCreated:
		return "created"
	case EventTypeModified:
		return "modified"
	case EventTypeMetadata:
		return "metadata"
	case EventTypeRenamed:
		return "renamed"
	case EventTypeRemoved:
		return "removed"
	default:
		return "other"
	}
}

// ChangeEvent is one filesystem change. Renames carry both the old and the
// new path when the platform reports them together.
type ChangeEvent struct {
	Type  EventType
	Paths []string
}

// DependencySet answers whether a path was consulted during the current or
// most recent compilation cycle. Implemented by the vfs cache.
type DependencySet interface {
	Touched(path string) bool
}

// Relevant reports whether this event can affect compilation output.
// Content modifications, creations, renames, and removals matter when any
// carried path is a tracked dependency; metadata-only changes never do.
func (e ChangeEvent) Relevant(deps DependencySet) bool {
	switch e.Type {
	case EventTypeMetadata, EventTypeOther:
		return false
	}
	for _, path := range e.Paths {
		if deps.Touched(path) {
			return true
		}
	}
	return false
}

// AnyRelevant reports whether at least one event in the batch is relevant.
func AnyRelevant(events []ChangeEvent, deps DependencySet) bool {
	for _, event := range events {
		if event.Relevant(deps) {
			return true
		}
	}
	return false
}

// BatchHandler receives one debounced batch of events.
type BatchHandler func(events []ChangeEvent)

// FileWatcher watches a directory tree and delivers debounced event batches.
type FileWatcher struct {
	watcher   *fsnotify.Watcher
	debouncer *debouncer
	handlers  []BatchHandler
	logger    logging.Logger
	mutex     sync.RWMutex
}

// NewFileWatcher creates a file watcher with the given debounce window.
func NewFileWatcher(debounce time.Duration, logger logging.Logger) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, &folioerrors.WatchError{Cause: err}
	}
	if logger == nil {
		logger = logging.Nop()
	}

	return &FileWatcher{
		watcher: watcher,
		debouncer: &debouncer{
			window: debounce,
			events: make(chan ChangeEvent, 256),
			output: make(chan []ChangeEvent, 16),
		},
		logger: logger.WithComponent("watcher"),
	}, nil
}

// AddHandler registers a batch handler.
func (fw *FileWatcher) AddHandler(handler BatchHandler) {
	fw.mutex.Lock()
	defer fw.mutex.Unlock()
	fw.handlers = append(fw.handlers, handler)
}

// AddRecursive watches root and every directory below it.
func (fw *FileWatcher) AddRecursive(root string) error {
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return fw.watcher.Add(path)
		}
		return nil
	})
	if err != nil {
		return &folioerrors.WatchError{Root: root, Cause: err}
	}
	return nil
}

// Start runs the watch and debounce loops until the context is cancelled.
func (fw *FileWatcher) Start(ctx context.Context) {
	go fw.debouncer.run(ctx)
	go fw.dispatchBatches(ctx)
	go fw.watchLoop(ctx)
}

// Stop closes the underlying filesystem subscription.
func (fw *FileWatcher) Stop() error {
	fw.debouncer.stop()
	return fw.watcher.Close()
}

func (fw *FileWatcher) watchLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			fw.debouncer.add(convertEvent(event))
		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.logger.Error(ctx, err, "watch error")
		}
	}
}

func (fw *FileWatcher) dispatchBatches(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case batch := <-fw.debouncer.output:
			fw.mutex.RLock()
			handlers := fw.handlers
			fw.mutex.RUnlock()
			for _, handler := range handlers {
				handler(batch)
			}
		}
	}
}

func convertEvent(event fsnotify.Event) ChangeEvent {
	var eventType EventType
	switch {
	case event.Op.Has(fsnotify.Create):
		eventType = EventTypeCreated
	case event.Op.Has(fsnotify.Write):
		eventType = EventTypeModified
	case event.Op.Has(fsnotify.Rename):
		eventType = EventTypeRenamed
	case event.Op.Has(fsnotify.Remove):
		eventType = EventTypeRemoved
	case event.Op.Has(fsnotify.Chmod):
		eventType = EventTypeMetadata
	default:
		eventType = EventTypeOther
	}
	return ChangeEvent{Type: eventType, Paths: []string{event.Name}}
}
