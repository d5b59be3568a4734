package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/localhive/localhive/internal/config"
	"github.com/localhive/localhive/internal/dependency"
	"github.com/localhive/localhive/internal/store"
)

var serveVerbose bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the localhive API server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().BoolVarP(&serveVerbose, "verbose", "v", false, "Verbose logging")
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	level := slog.LevelInfo
	if serveVerbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	container, err := dependency.New(cfg)
	if err != nil {
		return fmt.Errorf("wire services: %w", err)
	}
	defer container.Store().Close()

	// Fresh databases get the stock local types so onboarding works
	// out of the box.
	if st, ok := container.Store().(*store.SQLiteStore); ok {
		if n, err := st.SeedLocalTypes(context.Background()); err != nil {
			return fmt.Errorf("seed local types: %w", err)
		} else if n > 0 {
			slog.Info("seeded local types", "count", n)
		}
	}

	// Graceful shutdown context.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error { return container.Server().Run(gctx) })
	g.Go(func() error { return container.Retention().Start(gctx) })

	fmt.Printf("%s localhive listening on %s. Press Ctrl+C to stop.\n", logo, cfg.Server.Addr)

	if err := g.Wait(); err != nil && err != context.Canceled {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		return err
	}
	fmt.Println("\nShutdown complete.")
	return nil
}
