package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// GetCandidateProfile retrieves one candidate's stored profile analysis, or
// nil when the candidate has no profile yet.
func (db *DB) GetCandidateProfile(ctx context.Context, userID uuid.UUID) (*CandidateProfileRow, error) {
	var p CandidateProfileRow
	var skillsJSON []byte

	err := db.pool.QueryRow(ctx,
		`SELECT user_id, COALESCE(skills_json, '[]'), COALESCE(raw_text, ''),
		        COALESCE(title, ''), updated_at
		 FROM user_profiles WHERE user_id = $1`,
		userID,
	).Scan(&p.UserID, &skillsJSON, &p.RawText, &p.Title, &p.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get profile for user %s: %w", userID, err)
	}

	if err := json.Unmarshal(skillsJSON, &p.Skills); err != nil {
		return nil, fmt.Errorf("failed to parse skills for user %s: %w", userID, err)
	}
	return &p, nil
}

// SaveCandidateProfile stores the analysis derived from a candidate's CV or
// manual profile entry, replacing any previous one.
func (db *DB) SaveCandidateProfile(ctx context.Context, profile *CandidateProfileRow) error {
	skillsJSON, err := json.Marshal(profile.Skills)
	if err != nil {
		return fmt.Errorf("failed to marshal skills: %w", err)
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO user_profiles (user_id, skills_json, raw_text, title, updated_at)
		 VALUES ($1, $2, $3, $4, NOW())
		 ON CONFLICT (user_id) DO UPDATE SET
		     skills_json = $2, raw_text = $3, title = $4, updated_at = NOW()`,
		profile.UserID, skillsJSON, profile.RawText, profile.Title)
	if err != nil {
		return fmt.Errorf("failed to save profile for user %s: %w", profile.UserID, err)
	}
	return nil
}

// ListCandidateIDs returns the ids of every candidate with a stored
// profile, for job-scoped rescoring sweeps.
func (db *DB) ListCandidateIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := db.pool.Query(ctx, `SELECT user_id FROM user_profiles ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan candidate id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read candidate ids: %w", err)
	}
	return ids, nil
}
