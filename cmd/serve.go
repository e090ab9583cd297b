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

	"github.com/ArseniyBeglov/corobus/internal/config"
	"github.com/ArseniyBeglov/corobus/internal/container"
	"github.com/ArseniyBeglov/corobus/internal/sim"
)

var (
	servePort    int
	serveVerbose bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the corobus monitor server with scheduled workload rounds",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Monitor port (overrides config)")
	serveCmd.Flags().BoolVarP(&serveVerbose, "verbose", "v", false, "Verbose logging")
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(config.ConfigPath())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if servePort > 0 {
		cfg.Serve.Port = servePort
	}
	if serveVerbose {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	c, err := container.New(cfg)
	if err != nil {
		return fmt.Errorf("wire services: %w", err)
	}

	inj, err := sim.NewInjector(cfg.Serve.InjectEvery)
	if err != nil {
		return err
	}

	fmt.Printf("%s Starting corobus monitor on port %d...\n", logo, cfg.Serve.Port)

	// Graceful shutdown context.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error { return c.Monitor().Start(gctx) })
	g.Go(func() error {
		inj.Start()
		defer inj.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-inj.C():
				rep := c.Workload().RunRound()
				slog.Info("round finished",
					"round", c.Workload().Snapshot().Round,
					"sent", rep.Sent,
					"received", rep.Received,
					"deadlocked", rep.Deadlocked)
			}
		}
	})

	fmt.Printf("%s Serving. Press Ctrl+C to stop.\n", logo)

	if err := g.Wait(); err != nil && err != context.Canceled {
		fmt.Fprintf(os.Stderr, "serve error: %v\n", err)
		return err
	}
	fmt.Println("\nShutdown complete.")
	return nil
}
