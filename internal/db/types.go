package db

import (
	"time"

	"github.com/google/uuid"
)

// JobRow is one job posting as stored, with its derived analysis columns.
type JobRow struct {
	ID               uuid.UUID
	Title            string
	Description      string
	RequirementsJSON []byte
	Embedding        []byte
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// HasAnalysis reports whether the derived representation has been computed
// for this job. Jobs without analysis are invisible to the matching index
// until a backfill or update fills them in.
func (j *JobRow) HasAnalysis() bool {
	return len(j.RequirementsJSON) > 0 && len(j.Embedding) > 0
}

// CandidateProfileRow is the stored analysis of one candidate's CV or
// manually entered profile.
type CandidateProfileRow struct {
	UserID    uuid.UUID
	Skills    []string
	RawText   string
	Title     string
	UpdatedAt time.Time
}

// HasContent reports whether the profile carries anything scorable.
func (p *CandidateProfileRow) HasContent() bool {
	return len(p.Skills) > 0 || p.RawText != ""
}

// ScoreRow is one (user, job, score) row of the recommendation score table.
type ScoreRow struct {
	UserID uuid.UUID
	JobID  uuid.UUID
	Score  float64
}
