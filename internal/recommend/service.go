package recommend

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mertksaa/career-app/internal/match"
)

// Service is the surface the API layer calls into: synchronous index
// maintenance hooks for job mutations and asynchronous rescore triggers for
// profile mutations.
type Service struct {
	index    *match.Index
	pipeline *Pipeline
	queue    *Queue
	scores   ScoreStore
	logger   *zap.Logger
}

// NewService wires the matching core together.
func NewService(index *match.Index, pipeline *Pipeline, queue *Queue, scores ScoreStore, logger *zap.Logger) *Service {
	return &Service{
		index:    index,
		pipeline: pipeline,
		queue:    queue,
		scores:   scores,
		logger:   logger,
	}
}

// Start loads the index from durable storage and launches the background
// workers. An index load failure is logged but not fatal: the service runs
// with an empty index and degrades to empty recommendations.
func (s *Service) Start(ctx context.Context) {
	if err := s.index.Load(ctx); err != nil {
		s.logger.Error("starting with empty job index", zap.Error(err))
	}
	s.queue.Start(ctx)
}

// Stop drains the background queue.
func (s *Service) Stop() {
	s.queue.Stop()
}

// OnJobCreated patches the index synchronously for a new posting, then
// schedules a sweep so existing candidates' lists pick the job up.
func (s *Service) OnJobCreated(ctx context.Context, jobID uuid.UUID, title, description string) error {
	if err := s.index.Upsert(ctx, jobID, title, description); err != nil {
		return fmt.Errorf("failed to index new job %s: %w", jobID, err)
	}
	s.EnqueueJobRescan(jobID)
	return nil
}

// OnJobUpdated re-analyzes an updated posting. The in-memory entry is
// replaced wholesale; persisted scores for the job stay stale until the
// scheduled sweep completes.
func (s *Service) OnJobUpdated(ctx context.Context, jobID uuid.UUID, title, description string) error {
	if err := s.index.Upsert(ctx, jobID, title, description); err != nil {
		return fmt.Errorf("failed to reindex job %s: %w", jobID, err)
	}
	s.EnqueueJobRescan(jobID)
	return nil
}

// OnJobDeleted removes the index entry and every score row referencing the
// job. Idempotent.
func (s *Service) OnJobDeleted(ctx context.Context, jobID uuid.UUID) error {
	s.index.Remove(jobID)
	if err := s.scores.DeleteJobScores(ctx, jobID); err != nil {
		return fmt.Errorf("failed to drop scores for deleted job %s: %w", jobID, err)
	}
	return nil
}

// EnqueueCandidateRescan schedules a full recommendation sweep for one
// candidate. Fire-and-forget: duplicate triggers are allowed, each run ends
// in a full self-consistent snapshot and the latest completed run wins.
func (s *Service) EnqueueCandidateRescan(userID uuid.UUID) {
	s.queue.Enqueue("rescore_candidate", func(ctx context.Context) error {
		return s.pipeline.RescoreCandidate(ctx, userID)
	})
}

// EnqueueJobRescan schedules the job-scoped sweep over all stored candidate
// profiles.
func (s *Service) EnqueueJobRescan(jobID uuid.UUID) {
	s.queue.Enqueue("rescore_job", func(ctx context.Context) error {
		return s.pipeline.RescoreJob(ctx, jobID)
	})
}
