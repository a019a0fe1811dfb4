package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var rescoreUser string

var rescoreCmd = &cobra.Command{
	Use:   "rescore",
	Short: "Recompute recommendation scores for candidates",
	Long:  `Run a full scoring sweep for every stored candidate profile, or a single candidate with --user. Each candidate's score rows are replaced atomically.`,
	RunE:  runRescore,
}

func init() {
	rescoreCmd.Flags().StringVar(&rescoreUser, "user", "", "Rescore only this candidate (UUID)")
	rootCmd.AddCommand(rescoreCmd)
}

func runRescore(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	rt, err := buildRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	if err := rt.index.Load(ctx); err != nil {
		return fmt.Errorf("failed to load job index: %w", err)
	}

	var userIDs []uuid.UUID
	if rescoreUser != "" {
		id, err := uuid.Parse(rescoreUser)
		if err != nil {
			return fmt.Errorf("invalid --user value: %w", err)
		}
		userIDs = []uuid.UUID{id}
	} else {
		userIDs, err = rt.database.ListCandidateIDs(ctx)
		if err != nil {
			return fmt.Errorf("failed to list candidates: %w", err)
		}
	}

	processed, failed := 0, 0
	for _, id := range userIDs {
		if err := rt.pipeline.RescoreCandidate(ctx, id); err != nil {
			rt.logger.Warn("failed to rescore candidate",
				zap.String("user_id", id.String()),
				zap.Error(err))
			failed++
			continue
		}
		processed++
	}

	rt.logger.Info("rescore finished",
		zap.Int("processed", processed),
		zap.Int("failed", failed))
	fmt.Fprintf(os.Stdout, "Rescored %d candidates (%d failed)\n", processed, failed)
	return nil
}
