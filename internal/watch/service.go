// Package watch runs the long-lived watch/recompile loop: it performs an
// initial compilation, subscribes to filesystem changes under the root,
// coalesces event bursts, recompiles when a relevant change occurs, and
// hands rendered pages to the broadcast hub. Compilations are strictly
// sequential; broadcasts are dispatched in completion order on a separate
// task so a stalled viewer cannot delay the next cycle.
package watch

import (
	"context"
	"image"

	"golang.org/x/sync/errgroup"

	"github.com/folio-dev/folio/internal/compile"
	"github.com/folio-dev/folio/internal/logging"
	"github.com/folio-dev/folio/internal/report"
	"github.com/folio-dev/folio/internal/server"
	"github.com/folio-dev/folio/internal/watcher"
)

// Broadcaster receives each completed render. Implemented by the preview
// server.
type Broadcaster interface {
	Broadcast(ctx context.Context, pages []*image.RGBA)
}

var _ Broadcaster = (*server.PreviewServer)(nil)

// Service owns the watch loop for one input document.
type Service struct {
	input       string
	root        string
	orch        *compile.Orchestrator
	fileWatcher *watcher.FileWatcher
	hub         Broadcaster
	printer     *report.Printer
	logger      logging.Logger

	batches chan []watcher.ChangeEvent
	renders chan []*image.RGBA
}

// Options configures a watch Service.
type Options struct {
	Input        string
	Root         string
	Orchestrator *compile.Orchestrator
	FileWatcher  *watcher.FileWatcher
	Hub          Broadcaster
	Printer      *report.Printer
	Logger       logging.Logger
}

// New wires a watch service.
func New(opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	return &Service{
		input:       opts.Input,
		root:        opts.Root,
		orch:        opts.Orchestrator,
		fileWatcher: opts.FileWatcher,
		hub:         opts.Hub,
		printer:     opts.Printer,
		logger:      logger.WithComponent("watch"),

		batches: make(chan []watcher.ChangeEvent, 16),
		renders: make(chan []*image.RGBA, 4),
	}
}

// Run compiles once, then loops on debounced filesystem batches until the
// context is cancelled. A failure to establish the subscription is fatal;
// everything downstream (unreadable files, compile errors, dropped viewers)
// is reported and survived.
func (s *Service) Run(ctx context.Context) error {
	s.fileWatcher.AddHandler(func(events []watcher.ChangeEvent) {
		select {
		case s.batches <- events:
		case <-ctx.Done():
		}
	})
	if err := s.fileWatcher.AddRecursive(s.root); err != nil {
		return err
	}
	// Subscribe before the first compile so changes landing mid-compile are
	// not lost.
	s.fileWatcher.Start(ctx)

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		s.broadcastLoop(ctx)
		return nil
	})
	group.Go(func() error {
		defer close(s.renders)
		s.compileLoop(ctx)
		return nil
	})
	return group.Wait()
}

func (s *Service) compileLoop(ctx context.Context) {
	// Initial render before the first filesystem event is handled.
	s.cycle(ctx)
	s.logger.Info(ctx, "watching for changes", "root", s.root)

	for {
		select {
		case <-ctx.Done():
			return
		case batch := <-s.batches:
			if !watcher.AnyRelevant(batch, s.orch.Cache()) {
				s.logger.Debug(ctx, "ignoring irrelevant batch", "events", len(batch))
				continue
			}
			s.cycle(ctx)
		}
	}
}

// cycle runs one recompilation and queues the result for broadcast.
func (s *Service) cycle(ctx context.Context) {
	result := s.orch.RunOnce(ctx, s.input)
	if !result.OK() {
		s.printer.Print(s.orch.Cache(), result.Diagnostics)
		return
	}

	select {
	case s.renders <- result.Pages:
	case <-ctx.Done():
	}
}

func (s *Service) broadcastLoop(ctx context.Context) {
	for pages := range s.renders {
		s.hub.Broadcast(ctx, pages)
	}
}
