package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ReplaceUserScores atomically replaces one candidate's recommendation rows
// with the given set. Delete and bulk insert run inside a single
// transaction, so a concurrent reader observes either the previous complete
// snapshot or the new one, never a mix.
func (db *DB) ReplaceUserScores(ctx context.Context, userID uuid.UUID, rows []ScoreRow) error {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin score transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	if _, err := tx.Exec(ctx,
		`DELETE FROM job_recommendation_scores WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to clear scores for user %s: %w", userID, err)
	}

	if err := copyScores(ctx, tx, rows); err != nil {
		return fmt.Errorf("failed to insert scores for user %s: %w", userID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit scores for user %s: %w", userID, err)
	}
	return nil
}

// ReplaceJobScores is the job-scoped variant: it replaces every candidate's
// row for one job inside a single transaction.
func (db *DB) ReplaceJobScores(ctx context.Context, jobID uuid.UUID, rows []ScoreRow) error {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin score transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	if _, err := tx.Exec(ctx,
		`DELETE FROM job_recommendation_scores WHERE job_id = $1`, jobID); err != nil {
		return fmt.Errorf("failed to clear scores for job %s: %w", jobID, err)
	}

	if err := copyScores(ctx, tx, rows); err != nil {
		return fmt.Errorf("failed to insert scores for job %s: %w", jobID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit scores for job %s: %w", jobID, err)
	}
	return nil
}

// DeleteJobScores removes every score row referencing a deleted job.
func (db *DB) DeleteJobScores(ctx context.Context, jobID uuid.UUID) error {
	if _, err := db.pool.Exec(ctx,
		`DELETE FROM job_recommendation_scores WHERE job_id = $1`, jobID); err != nil {
		return fmt.Errorf("failed to delete scores for job %s: %w", jobID, err)
	}
	return nil
}

// TopScoresForUser reads the persisted top-K recommendation rows for one
// candidate, best first. This is the read path the query-serving layer uses;
// scores are never computed inline at read time.
func (db *DB) TopScoresForUser(ctx context.Context, userID uuid.UUID, limit int) ([]ScoreRow, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT user_id, job_id, match_score
		 FROM job_recommendation_scores
		 WHERE user_id = $1
		 ORDER BY match_score DESC, job_id
		 LIMIT $2`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query scores for user %s: %w", userID, err)
	}
	defer rows.Close()

	var scores []ScoreRow
	for rows.Next() {
		var s ScoreRow
		if err := rows.Scan(&s.UserID, &s.JobID, &s.Score); err != nil {
			return nil, fmt.Errorf("failed to scan score row: %w", err)
		}
		scores = append(scores, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read score rows: %w", err)
	}
	return scores, nil
}

// copyScores bulk-inserts score rows using the COPY protocol.
func copyScores(ctx context.Context, tx pgx.Tx, rows []ScoreRow) error {
	if len(rows) == 0 {
		return nil
	}
	_, err := tx.CopyFrom(ctx,
		pgx.Identifier{"job_recommendation_scores"},
		[]string{"user_id", "job_id", "match_score"},
		pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
			return []any{rows[i].UserID, rows[i].JobID, rows[i].Score}, nil
		}))
	return err
}
