package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var backfillLimit int

var backfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Analyze jobs that are missing requirements or embeddings",
	Long:  `Scan the jobs table for rows without an analysis, run skill extraction and embedding for each, and persist the results. Safe to re-run; already analyzed jobs are skipped.`,
	RunE:  runBackfill,
}

func init() {
	backfillCmd.Flags().IntVar(&backfillLimit, "limit", 0, "Maximum number of jobs to process (0 = all)")
	rootCmd.AddCommand(backfillCmd)
}

func runBackfill(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	rt, err := buildRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	jobs, err := rt.database.ListJobsMissingAnalysis(ctx, backfillLimit)
	if err != nil {
		return fmt.Errorf("failed to list jobs: %w", err)
	}
	if len(jobs) == 0 {
		fmt.Fprintln(os.Stdout, "All jobs already analyzed")
		return nil
	}

	processed, failed := 0, 0
	for _, job := range jobs {
		if err := rt.index.Upsert(ctx, job.ID, job.Title, job.Description); err != nil {
			rt.logger.Warn("failed to analyze job",
				zap.String("job_id", job.ID.String()),
				zap.Error(err))
			failed++
			continue
		}
		processed++
	}

	rt.logger.Info("backfill finished",
		zap.Int("processed", processed),
		zap.Int("failed", failed))
	fmt.Fprintf(os.Stdout, "Analyzed %d jobs (%d failed)\n", processed, failed)
	return nil
}
