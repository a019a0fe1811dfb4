package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/mertksaa/career-app/internal/match"
)

// LoadAllJobs returns every job with its stored analysis, for the index
// rebuild at startup. Jobs whose analysis has not been computed yet come
// back with empty blobs and are skipped by the index.
func (db *DB) LoadAllJobs(ctx context.Context) ([]match.StoredJob, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT job_id, COALESCE(title, ''), COALESCE(description, ''),
		        COALESCE(requirements_json, ''), COALESCE(embedding, '')
		 FROM jobs`)
	if err != nil {
		return nil, fmt.Errorf("failed to load jobs: %w", err)
	}
	defer rows.Close()

	var jobs []match.StoredJob
	for rows.Next() {
		var job match.StoredJob
		if err := rows.Scan(&job.ID, &job.Title, &job.Description,
			&job.RequirementsBlob, &job.EmbeddingBlob); err != nil {
			return nil, fmt.Errorf("failed to scan job row: %w", err)
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read job rows: %w", err)
	}
	return jobs, nil
}

// SaveJobAnalysis persists the derived representation (requirements JSON and
// embedding bytes) for one job.
func (db *DB) SaveJobAnalysis(ctx context.Context, jobID uuid.UUID, requirements, embedding []byte) error {
	tag, err := db.pool.Exec(ctx,
		`UPDATE jobs SET requirements_json = $2, embedding = $3, updated_at = NOW()
		 WHERE job_id = $1`,
		jobID, requirements, embedding)
	if err != nil {
		return fmt.Errorf("failed to save analysis for job %s: %w", jobID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("job %s not found", jobID)
	}
	return nil
}

// GetJob retrieves one job row by id, or nil when absent.
func (db *DB) GetJob(ctx context.Context, jobID uuid.UUID) (*JobRow, error) {
	var j JobRow
	err := db.pool.QueryRow(ctx,
		`SELECT job_id, COALESCE(title, ''), COALESCE(description, ''),
		        COALESCE(requirements_json, ''), COALESCE(embedding, ''),
		        created_at, updated_at
		 FROM jobs WHERE job_id = $1`,
		jobID,
	).Scan(&j.ID, &j.Title, &j.Description, &j.RequirementsJSON, &j.Embedding,
		&j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get job %s: %w", jobID, err)
	}
	return &j, nil
}

// limitArg converts a row cap into a LIMIT parameter. Zero and negative
// values mean unbounded, which Postgres spells LIMIT NULL; passing 0 through
// would instead return no rows at all.
func limitArg(limit int) any {
	if limit <= 0 {
		return nil
	}
	return limit
}

// ListJobsMissingAnalysis returns jobs whose derived representation has not
// been computed yet, all of them when limit <= 0. Running the backfill
// repeatedly is safe: only the gaps are processed.
func (db *DB) ListJobsMissingAnalysis(ctx context.Context, limit int) ([]JobRow, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT job_id, COALESCE(title, ''), COALESCE(description, ''),
		        COALESCE(requirements_json, ''), COALESCE(embedding, ''),
		        created_at, updated_at
		 FROM jobs
		 WHERE requirements_json IS NULL OR embedding IS NULL
		 ORDER BY created_at
		 LIMIT $1`,
		limitArg(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs missing analysis: %w", err)
	}
	defer rows.Close()

	var jobs []JobRow
	for rows.Next() {
		var j JobRow
		if err := rows.Scan(&j.ID, &j.Title, &j.Description, &j.RequirementsJSON,
			&j.Embedding, &j.CreatedAt, &j.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan job row: %w", err)
		}
		jobs = append(jobs, j)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read job rows: %w", err)
	}
	return jobs, nil
}
