package match

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Embedder maps arbitrary text to a fixed-dimension dense vector. Provided by
// an external service; treated as a pure function by the index.
type Embedder interface {
	Embed(ctx context.Context, text string) (Vector, error)
}

// SkillExtractor maps arbitrary text to a categorized skill set.
type SkillExtractor interface {
	Extract(text string) Requirements
}

// StoredJob is one job row as read back from durable storage at startup.
type StoredJob struct {
	ID               uuid.UUID
	Title            string
	Description      string
	RequirementsBlob []byte
	EmbeddingBlob    []byte
}

// JobStore is the slice of durable storage the index depends on.
type JobStore interface {
	// LoadAllJobs returns every non-deleted job with its stored analysis.
	LoadAllJobs(ctx context.Context) ([]StoredJob, error)
	// SaveJobAnalysis persists the derived representation for one job.
	SaveJobAnalysis(ctx context.Context, jobID uuid.UUID, requirements []byte, embedding []byte) error
}

// Entry is the in-memory representation of one job, owned exclusively by the
// index. Entries are replaced wholesale on update, never mutated in place, so
// a reader holding one never observes a half-written value.
type Entry struct {
	JobID        uuid.UUID
	Title        string
	TitleTokens  map[string]struct{}
	Embedding    Vector
	Requirements Requirements
}

// Index is the in-memory job index: the fast-path read structure every
// scoring sweep iterates. It mirrors exactly the set of non-deleted jobs in
// durable storage, rebuilt at startup and patched synchronously on mutation.
type Index struct {
	store     JobStore
	embedder  Embedder
	extractor SkillExtractor
	logger    *zap.Logger

	mu      sync.RWMutex
	entries map[uuid.UUID]Entry
}

// NewIndex creates an empty index. Call Load to populate it from storage.
func NewIndex(store JobStore, embedder Embedder, extractor SkillExtractor, logger *zap.Logger) *Index {
	return &Index{
		store:     store,
		embedder:  embedder,
		extractor: extractor,
		logger:    logger,
		entries:   make(map[uuid.UUID]Entry),
	}
}

// Load rebuilds the index from durable storage. A storage failure is
// returned to the caller but leaves a usable empty index behind: the process
// degrades to empty recommendations instead of crashing. A malformed row
// skips that one job with a log line.
func (idx *Index) Load(ctx context.Context) error {
	jobs, err := idx.store.LoadAllJobs(ctx)
	if err != nil {
		idx.logger.Error("job index load failed, starting empty", zap.Error(err))
		return fmt.Errorf("failed to load jobs: %w", err)
	}

	entries := make(map[uuid.UUID]Entry, len(jobs))
	skipped := 0
	for _, job := range jobs {
		entry, err := buildStoredEntry(job)
		if err != nil {
			idx.logger.Warn("skipping job with bad stored analysis",
				zap.String("job_id", job.ID.String()), zap.Error(err))
			skipped++
			continue
		}
		entries[job.ID] = entry
	}

	idx.mu.Lock()
	idx.entries = entries
	idx.mu.Unlock()

	idx.logger.Info("job index loaded",
		zap.Int("jobs", len(entries)), zap.Int("skipped", skipped))
	return nil
}

func buildStoredEntry(job StoredJob) (Entry, error) {
	reqs, err := ParseRequirements(job.RequirementsBlob)
	if err != nil {
		return Entry{}, err
	}
	embedding, err := DecodeVector(job.EmbeddingBlob)
	if err != nil {
		return Entry{}, err
	}
	return Entry{
		JobID:        job.ID,
		Title:        normalizeTitle(job.Title),
		TitleTokens:  TokenizeTitle(job.Title),
		Embedding:    embedding,
		Requirements: reqs,
	}, nil
}

// Upsert analyzes the given job text, persists the derived representation,
// and replaces the in-memory entry. Used for both creation and update; the
// replacement is a single map assignment under the write lock, so there is no
// partial state between the old and new entry.
func (idx *Index) Upsert(ctx context.Context, jobID uuid.UUID, title, description string) error {
	combined := strings.TrimSpace(title + " " + description)

	embedding, err := idx.embedder.Embed(ctx, combined)
	if err != nil {
		return fmt.Errorf("failed to embed job %s: %w", jobID, err)
	}
	reqs := idx.extractor.Extract(combined)

	blob, err := reqs.MarshalBlob()
	if err != nil {
		return fmt.Errorf("failed to encode requirements for job %s: %w", jobID, err)
	}
	if err := idx.store.SaveJobAnalysis(ctx, jobID, blob, EncodeVector(embedding)); err != nil {
		return fmt.Errorf("failed to persist analysis for job %s: %w", jobID, err)
	}

	entry := Entry{
		JobID:        jobID,
		Title:        normalizeTitle(title),
		TitleTokens:  TokenizeTitle(title),
		Embedding:    embedding,
		Requirements: reqs,
	}

	idx.mu.Lock()
	delete(idx.entries, jobID)
	idx.entries[jobID] = entry
	idx.mu.Unlock()

	return nil
}

// Remove drops the in-memory entry for a deleted job. Idempotent.
func (idx *Index) Remove(jobID uuid.UUID) {
	idx.mu.Lock()
	delete(idx.entries, jobID)
	idx.mu.Unlock()
}

// Get returns the entry for one job, if present.
func (idx *Index) Get(jobID uuid.UUID) (Entry, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	entry, ok := idx.entries[jobID]
	return entry, ok
}

// Len returns the number of indexed jobs.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.entries)
}

// Snapshot returns a consistent copy of all entries for a scoring sweep.
// The copy is taken under the read lock so concurrent mutation cannot tear
// the iteration; a job deleted mid-sweep is at worst a stale inclusion.
func (idx *Index) Snapshot() []Entry {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	entries := make([]Entry, 0, len(idx.entries))
	for _, entry := range idx.entries {
		entries = append(entries, entry)
	}
	return entries
}

// TitleVocabulary returns the distinct normalized job titles currently in
// the index, longest first. This feeds the title inference heuristic.
func (idx *Index) TitleVocabulary() []string {
	idx.mu.RLock()
	seen := make(map[string]struct{}, len(idx.entries))
	for _, entry := range idx.entries {
		if entry.Title != "" {
			seen[entry.Title] = struct{}{}
		}
	}
	idx.mu.RUnlock()

	titles := make([]string, 0, len(seen))
	for title := range seen {
		titles = append(titles, title)
	}
	sort.Slice(titles, func(i, j int) bool {
		if len(titles[i]) != len(titles[j]) {
			return len(titles[i]) > len(titles[j])
		}
		return titles[i] < titles[j]
	})
	return titles
}
