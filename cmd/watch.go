package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/folio-dev/folio/internal/compile"
	"github.com/folio-dev/folio/internal/config"
	"github.com/folio-dev/folio/internal/engine"
	"github.com/folio-dev/folio/internal/fonts"
	"github.com/folio-dev/folio/internal/logging"
	"github.com/folio-dev/folio/internal/report"
	"github.com/folio-dev/folio/internal/server"
	"github.com/folio-dev/folio/internal/vfs"
	"github.com/folio-dev/folio/internal/watch"
	"github.com/folio-dev/folio/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch <file>",
	Short: "Watch a document and serve live previews",
	Long: `Compile the document, then watch it and everything it depends on.
Each relevant change triggers a recompilation, and the rendered pages are
broadcast to every connected viewer.

Examples:
  folio watch main.doc
  folio watch main.doc --host 127.0.0.1:8900
  folio watch main.doc --font-path ./assets/fonts --debounce 250ms`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().String("host", config.DefaultHost, "Address to listen on for viewer connections")
	watchCmd.Flags().String("root", "", "Directory to watch (default is the document's directory)")
	watchCmd.Flags().Duration("debounce", config.DefaultDebounce, "Window for coalescing filesystem event bursts")
	watchCmd.Flags().Float64("scale", config.DefaultScale, "Rasterization scale in pixels per point")
	watchCmd.Flags().StringSlice("font-path", nil, "Additional font search directories")
	watchCmd.Flags().Bool("no-system-fonts", false, "Skip the platform font directories")

	viper.BindPFlag("server.host", watchCmd.Flags().Lookup("host"))
	viper.BindPFlag("watch.root", watchCmd.Flags().Lookup("root"))
	viper.BindPFlag("watch.debounce", watchCmd.Flags().Lookup("debounce"))
	viper.BindPFlag("compile.scale", watchCmd.Flags().Lookup("scale"))

	AddFlagValidation(watchCmd, "host", ValidateListenAddr)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	applyFontFlags(cmd, cfg)

	logger := logging.NewLogger(&logging.LoggerConfig{
		Level:  logging.ParseLevel(cfg.Log.Level),
		Format: cfg.Log.Format,
		File:   cfg.Log.File,
	})
	printer := report.NewPrinter(os.Stderr)

	input, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("resolving %s: %w", args[0], err)
	}
	if _, err := os.Stat(input); err != nil {
		return fmt.Errorf("cannot watch %s: %w", args[0], err)
	}

	root := cfg.Watch.Root
	if root == "" {
		root = filepath.Dir(input)
	}

	book := buildBook(cfg)
	cache := vfs.NewCache()

	orch := compile.NewOrchestrator(compile.Options{
		Cache:       cache,
		Book:        book,
		Compiler:    engine.New(),
		Rasterizer:  engine.NewRasterizer(),
		Scale:       cfg.Compile.Scale,
		EvictionAge: cfg.Compile.EvictionAge,
		Logger:      logger,
	})

	fileWatcher, err := watcher.NewFileWatcher(cfg.Watch.Debounce, logger)
	if err != nil {
		return err
	}
	defer fileWatcher.Stop()

	hub := server.New(cfg.Server.WriteTimeout, logger)
	defer hub.Close()

	svc := watch.New(watch.Options{
		Input:        input,
		Root:         root,
		Orchestrator: orch,
		FileWatcher:  fileWatcher,
		Hub:          hub,
		Printer:      printer,
		Logger:       logger,
	})

	signalCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Serving previews of %s at ws://%s\n", args[0], cfg.Server.Host)

	group, ctx := errgroup.WithContext(signalCtx)
	group.Go(func() error {
		return hub.Listen(ctx, cfg.Server.Host)
	})
	group.Go(func() error {
		return svc.Run(ctx)
	})
	if err := group.Wait(); err != nil && signalCtx.Err() == nil {
		return err
	}
	return nil
}

// buildBook discovers fonts from the configured and platform directories.
func buildBook(cfg *config.Config) *fonts.Book {
	searcher := fonts.NewSearcher(nil)
	for _, dir := range cfg.Fonts.Paths {
		searcher.SearchDir(dir)
	}
	if cfg.Fonts.System {
		searcher.SearchSystem()
	}
	return searcher.Book()
}
