package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mertksaa/career-app/internal/recommend"
)

var (
	serveWorkers int
	serveDepth   int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the matching service",
	Long:  `Load the job index into memory, start the background rescore workers, and keep running until interrupted.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&serveWorkers, "workers", 0, "Number of rescore workers (0 = default)")
	serveCmd.Flags().IntVar(&serveDepth, "queue-depth", 0, "Rescore queue capacity (0 = default)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	// Workers get a root context so queued sweeps still drain after a
	// shutdown signal; the signal only ends the wait below.
	ctx := context.Background()

	rt, err := buildRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	workers := serveWorkers
	if workers == 0 {
		workers = rt.cfg.QueueWorkers
	}
	depth := serveDepth
	if depth == 0 {
		depth = rt.cfg.QueueDepth
	}

	queue := recommend.NewQueue(workers, depth, rt.logger)
	service := recommend.NewService(rt.index, rt.pipeline, queue, rt.database, rt.logger)

	service.Start(ctx)
	rt.logger.Info("matching service started",
		zap.Int("indexed_jobs", rt.index.Len()),
		zap.Int("workers", workers))

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-sigCtx.Done()

	rt.logger.Info("shutting down, draining rescore queue")
	service.Stop()

	fmt.Fprintln(os.Stdout, "Shutdown complete")
	return nil
}
