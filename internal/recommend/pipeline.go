// Package recommend orchestrates scoring sweeps over the job index and
// keeps the persisted recommendation score table in sync with profile and
// job mutations.
package recommend

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mertksaa/career-app/internal/db"
	"github.com/mertksaa/career-app/internal/match"
	"github.com/mertksaa/career-app/internal/nlp"
)

const (
	// DefaultTopK bounds the persisted rows per candidate.
	DefaultTopK = 100
	// rawTextEmbedChars bounds the raw-text fallback when a candidate has
	// no extracted skills to embed.
	rawTextEmbedChars = 2000
	// jobSweepConcurrency bounds parallel candidate embeddings during a
	// job-scoped sweep.
	jobSweepConcurrency = 4
)

// ProfileStore is the slice of durable storage holding candidate profiles.
type ProfileStore interface {
	GetCandidateProfile(ctx context.Context, userID uuid.UUID) (*db.CandidateProfileRow, error)
	ListCandidateIDs(ctx context.Context) ([]uuid.UUID, error)
}

// ScoreStore persists recommendation score snapshots. Each replace call is
// atomic: a reader sees either the full previous snapshot or the full new
// one.
type ScoreStore interface {
	ReplaceUserScores(ctx context.Context, userID uuid.UUID, rows []db.ScoreRow) error
	ReplaceJobScores(ctx context.Context, jobID uuid.UUID, rows []db.ScoreRow) error
	DeleteJobScores(ctx context.Context, jobID uuid.UUID) error
}

// Pipeline computes full recommendation sweeps. All methods are safe for
// concurrent use; racing sweeps are idempotent re-derivations and the last
// completed write wins.
type Pipeline struct {
	index    *match.Index
	scorer   *match.Scorer
	embedder match.Embedder
	inferrer match.TitleInferrer
	profiles ProfileStore
	scores   ScoreStore
	topK     int
	logger   *zap.Logger
}

// NewPipeline wires a Pipeline. topK <= 0 selects DefaultTopK.
func NewPipeline(
	index *match.Index,
	scorer *match.Scorer,
	embedder match.Embedder,
	inferrer match.TitleInferrer,
	profiles ProfileStore,
	scores ScoreStore,
	topK int,
	logger *zap.Logger,
) *Pipeline {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Pipeline{
		index:    index,
		scorer:   scorer,
		embedder: embedder,
		inferrer: inferrer,
		profiles: profiles,
		scores:   scores,
		topK:     topK,
		logger:   logger,
	}
}

// RescoreCandidate runs a full sweep for one candidate and replaces their
// persisted score snapshot. If building the candidate representation fails
// (embedding provider down), the run aborts and the previous snapshot stays
// in place.
func (p *Pipeline) RescoreCandidate(ctx context.Context, userID uuid.UUID) error {
	profile, err := p.profiles.GetCandidateProfile(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load profile for user %s: %w", userID, err)
	}
	if profile == nil {
		p.logger.Info("skipping rescore, candidate has no profile",
			zap.String("user_id", userID.String()))
		return nil
	}

	candidate, err := p.buildCandidate(ctx, profile)
	if err != nil {
		return fmt.Errorf("failed to build candidate %s: %w", userID, err)
	}

	entries := p.index.Snapshot()
	rows := make([]db.ScoreRow, 0, len(entries))
	for _, entry := range entries {
		result := p.scorer.Score(candidate, entry)
		if result.Score > 0 {
			rows = append(rows, db.ScoreRow{
				UserID: userID,
				JobID:  entry.JobID,
				Score:  result.Score,
			})
		}
	}

	// Descending by score; job id breaks ties so reruns over an unchanged
	// index produce an identical ordering.
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Score != rows[j].Score {
			return rows[i].Score > rows[j].Score
		}
		return rows[i].JobID.String() < rows[j].JobID.String()
	})
	if len(rows) > p.topK {
		rows = rows[:p.topK]
	}

	if err := p.scores.ReplaceUserScores(ctx, userID, rows); err != nil {
		return fmt.Errorf("failed to persist scores for user %s: %w", userID, err)
	}

	p.logger.Info("candidate rescored",
		zap.String("user_id", userID.String()),
		zap.Int("jobs_scored", len(entries)),
		zap.Int("rows_kept", len(rows)))
	return nil
}

// RescoreJob runs the symmetric sweep: one job against every stored
// candidate profile, replacing that job's score rows. A failure for one
// candidate skips that candidate with a log line rather than aborting the
// sweep.
func (p *Pipeline) RescoreJob(ctx context.Context, jobID uuid.UUID) error {
	entry, ok := p.index.Get(jobID)
	if !ok {
		// The job was deleted between enqueue and execution; drop any rows
		// still referencing it.
		if err := p.scores.DeleteJobScores(ctx, jobID); err != nil {
			return fmt.Errorf("failed to clear scores for removed job %s: %w", jobID, err)
		}
		return nil
	}

	userIDs, err := p.profiles.ListCandidateIDs(ctx)
	if err != nil {
		return fmt.Errorf("failed to list candidates for job %s: %w", jobID, err)
	}

	var mu sync.Mutex
	rows := make([]db.ScoreRow, 0, len(userIDs))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(jobSweepConcurrency)
	for _, userID := range userIDs {
		userID := userID
		g.Go(func() error {
			profile, err := p.profiles.GetCandidateProfile(gCtx, userID)
			if err != nil || profile == nil {
				if err != nil {
					p.logger.Warn("skipping candidate in job sweep",
						zap.String("user_id", userID.String()), zap.Error(err))
				}
				return nil
			}
			candidate, err := p.buildCandidate(gCtx, profile)
			if err != nil {
				p.logger.Warn("skipping candidate in job sweep",
					zap.String("user_id", userID.String()), zap.Error(err))
				return nil
			}

			result := p.scorer.Score(candidate, entry)
			if result.Score > 0 {
				mu.Lock()
				rows = append(rows, db.ScoreRow{
					UserID: userID,
					JobID:  jobID,
					Score:  result.Score,
				})
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("job sweep for %s failed: %w", jobID, err)
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Score != rows[j].Score {
			return rows[i].Score > rows[j].Score
		}
		return rows[i].UserID.String() < rows[j].UserID.String()
	})

	if err := p.scores.ReplaceJobScores(ctx, jobID, rows); err != nil {
		return fmt.Errorf("failed to persist scores for job %s: %w", jobID, err)
	}

	p.logger.Info("job rescored",
		zap.String("job_id", jobID.String()),
		zap.Int("candidates", len(userIDs)),
		zap.Int("rows_kept", len(rows)))
	return nil
}

// ScoreAgainstJob computes the full breakdown between one candidate and one
// indexed job, for the skill-gap view. Returns nil when the job is not
// indexed.
func (p *Pipeline) ScoreAgainstJob(ctx context.Context, userID, jobID uuid.UUID) (*match.Breakdown, error) {
	entry, ok := p.index.Get(jobID)
	if !ok {
		return nil, nil
	}
	profile, err := p.profiles.GetCandidateProfile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile for user %s: %w", userID, err)
	}
	if profile == nil {
		return nil, nil
	}
	candidate, err := p.buildCandidate(ctx, profile)
	if err != nil {
		return nil, fmt.Errorf("failed to build candidate %s: %w", userID, err)
	}
	result := p.scorer.Score(candidate, entry)
	return &result, nil
}

// buildCandidate assembles the ephemeral scoring representation from a
// stored profile. The embedding text prefers the extracted skills; raw
// resume text (truncated) is the fallback when extraction found nothing. A
// profile with no scorable content gets a zero representation, which scores
// 0 against every job.
func (p *Pipeline) buildCandidate(ctx context.Context, profile *db.CandidateProfileRow) (match.CandidateProfile, error) {
	var embedding match.Vector
	if profile.HasContent() {
		embedText := strings.Join(profile.Skills, " ")
		if embedText == "" {
			embedText = nlp.Truncate(profile.RawText, rawTextEmbedChars)
		}
		var err error
		embedding, err = p.embedder.Embed(ctx, embedText)
		if err != nil {
			return match.CandidateProfile{}, fmt.Errorf("failed to embed candidate text: %w", err)
		}
	}

	titleTokens := titleTokensFor(profile, p.inferrer, p.index)
	return match.NewCandidateProfile(profile.Skills, embedding, titleTokens), nil
}

func titleTokensFor(profile *db.CandidateProfileRow, inferrer match.TitleInferrer, index *match.Index) []string {
	if profile.Title != "" {
		return setToSlice(match.TokenizeTitle(profile.Title))
	}
	if inferrer == nil || profile.RawText == "" {
		return nil
	}
	return setToSlice(inferrer.InferTitleTokens(profile.RawText, index.TitleVocabulary()))
}

func setToSlice(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for token := range set {
		out = append(out, token)
	}
	return out
}
