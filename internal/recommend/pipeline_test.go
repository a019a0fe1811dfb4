package recommend

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mertksaa/career-app/internal/db"
	"github.com/mertksaa/career-app/internal/match"
)

// --- fakes -----------------------------------------------------------------

type fakeJobStore struct {
	jobs []match.StoredJob
}

func (f *fakeJobStore) LoadAllJobs(context.Context) ([]match.StoredJob, error) {
	return f.jobs, nil
}

func (f *fakeJobStore) SaveJobAnalysis(context.Context, uuid.UUID, []byte, []byte) error {
	return nil
}

type fakeEmbedder struct {
	vec match.Vector
	err error
}

func (f *fakeEmbedder) Embed(context.Context, string) (match.Vector, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.vec, nil
}

type fakeExtractor struct{}

func (fakeExtractor) Extract(string) match.Requirements { return match.Requirements{} }

type fakeProfileStore struct {
	profiles map[uuid.UUID]*db.CandidateProfileRow
}

func (f *fakeProfileStore) GetCandidateProfile(_ context.Context, userID uuid.UUID) (*db.CandidateProfileRow, error) {
	return f.profiles[userID], nil
}

func (f *fakeProfileStore) ListCandidateIDs(context.Context) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(f.profiles))
	for id := range f.profiles {
		ids = append(ids, id)
	}
	return ids, nil
}

type fakeScoreStore struct {
	mu         sync.Mutex
	userScores map[uuid.UUID][]db.ScoreRow
	jobScores  map[uuid.UUID][]db.ScoreRow
	deletedJob []uuid.UUID
	replaceErr error
}

func newFakeScoreStore() *fakeScoreStore {
	return &fakeScoreStore{
		userScores: make(map[uuid.UUID][]db.ScoreRow),
		jobScores:  make(map[uuid.UUID][]db.ScoreRow),
	}
}

func (f *fakeScoreStore) ReplaceUserScores(_ context.Context, userID uuid.UUID, rows []db.ScoreRow) error {
	if f.replaceErr != nil {
		return f.replaceErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.userScores[userID] = rows
	return nil
}

func (f *fakeScoreStore) ReplaceJobScores(_ context.Context, jobID uuid.UUID, rows []db.ScoreRow) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.jobScores[jobID] = rows
	return nil
}

func (f *fakeScoreStore) DeleteJobScores(_ context.Context, jobID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletedJob = append(f.deletedJob, jobID)
	return nil
}

// --- fixtures --------------------------------------------------------------

func storedJob(title string, reqs match.Requirements, embedding match.Vector) match.StoredJob {
	blob, _ := reqs.MarshalBlob()
	return match.StoredJob{
		ID:               uuid.New(),
		Title:            title,
		RequirementsBlob: blob,
		EmbeddingBlob:    match.EncodeVector(embedding),
	}
}

type pipelineFixture struct {
	index    *match.Index
	embedder *fakeEmbedder
	profiles *fakeProfileStore
	scores   *fakeScoreStore
	pipeline *Pipeline
}

func newPipelineFixture(t *testing.T, jobs ...match.StoredJob) *pipelineFixture {
	t.Helper()

	embedder := &fakeEmbedder{vec: match.Vector{1, 0}}
	index := match.NewIndex(&fakeJobStore{jobs: jobs}, embedder, fakeExtractor{}, zap.NewNop())
	require.NoError(t, index.Load(context.Background()))

	profiles := &fakeProfileStore{profiles: make(map[uuid.UUID]*db.CandidateProfileRow)}
	scores := newFakeScoreStore()
	pipeline := NewPipeline(index, match.NewScorer(match.DefaultWeights()), embedder,
		match.SubstringInferrer{}, profiles, scores, 0, zap.NewNop())

	return &pipelineFixture{
		index:    index,
		embedder: embedder,
		profiles: profiles,
		scores:   scores,
		pipeline: pipeline,
	}
}

// --- tests -----------------------------------------------------------------

func TestRescoreCandidate(t *testing.T) {
	jobA := storedJob("Backend Developer",
		match.NewRequirements([]string{"python"}, nil, []string{"sql"}), match.Vector{1, 0})
	jobB := storedJob("Marketing Manager",
		match.NewRequirements([]string{"seo"}, nil, nil), match.Vector{0, 1})
	f := newPipelineFixture(t, jobA, jobB)

	userID := uuid.New()
	f.profiles.profiles[userID] = &db.CandidateProfileRow{
		UserID:  userID,
		Skills:  []string{"python", "sql"},
		RawText: "Backend Developer with Python and SQL experience",
	}

	require.NoError(t, f.pipeline.RescoreCandidate(context.Background(), userID))

	rows := f.scores.userScores[userID]
	require.Len(t, rows, 1)
	assert.Equal(t, jobA.ID, rows[0].JobID)
	assert.GreaterOrEqual(t, rows[0].Score, 0.90)
	assert.LessOrEqual(t, rows[0].Score, 0.99)
}

func TestRescoreCandidate_Idempotent(t *testing.T) {
	jobs := []match.StoredJob{
		storedJob("Backend Developer", match.NewRequirements([]string{"python"}, nil, nil), match.Vector{1, 0}),
		storedJob("Data Engineer", match.NewRequirements([]string{"python", "sql"}, nil, nil), match.Vector{0.9, 0.1}),
	}
	f := newPipelineFixture(t, jobs...)

	userID := uuid.New()
	f.profiles.profiles[userID] = &db.CandidateProfileRow{
		UserID: userID,
		Skills: []string{"python", "sql"},
		Title:  "Backend Developer",
	}

	require.NoError(t, f.pipeline.RescoreCandidate(context.Background(), userID))
	first := f.scores.userScores[userID]
	require.NoError(t, f.pipeline.RescoreCandidate(context.Background(), userID))
	second := f.scores.userScores[userID]

	assert.Equal(t, first, second)
}

func TestRescoreCandidate_TopKTruncation(t *testing.T) {
	var jobs []match.StoredJob
	for i := 0; i < 10; i++ {
		jobs = append(jobs, storedJob("Backend Developer",
			match.NewRequirements([]string{"python"}, nil, nil), match.Vector{1, 0}))
	}
	f := newPipelineFixture(t, jobs...)
	f.pipeline.topK = 3

	userID := uuid.New()
	f.profiles.profiles[userID] = &db.CandidateProfileRow{
		UserID: userID, Skills: []string{"python"}, Title: "Backend Developer",
	}

	require.NoError(t, f.pipeline.RescoreCandidate(context.Background(), userID))
	assert.Len(t, f.scores.userScores[userID], 3)
}

func TestRescoreCandidate_EmbedFailureLeavesStoreUntouched(t *testing.T) {
	f := newPipelineFixture(t,
		storedJob("Backend Developer", match.Requirements{}, match.Vector{1, 0}))

	userID := uuid.New()
	f.profiles.profiles[userID] = &db.CandidateProfileRow{
		UserID: userID, Skills: []string{"python"},
	}
	f.scores.userScores[userID] = []db.ScoreRow{{UserID: userID, Score: 0.5}}
	f.embedder.err = errors.New("provider down")

	err := f.pipeline.RescoreCandidate(context.Background(), userID)
	assert.Error(t, err)
	// The last good snapshot survives a failed run.
	assert.Len(t, f.scores.userScores[userID], 1)
}

func TestRescoreCandidate_NoProfileIsANoop(t *testing.T) {
	f := newPipelineFixture(t)
	userID := uuid.New()

	require.NoError(t, f.pipeline.RescoreCandidate(context.Background(), userID))
	assert.NotContains(t, f.scores.userScores, userID)
}

func TestRescoreCandidate_EmptyProfileClearsSnapshot(t *testing.T) {
	f := newPipelineFixture(t,
		storedJob("Backend Developer", match.Requirements{}, match.Vector{1, 0}))

	userID := uuid.New()
	f.profiles.profiles[userID] = &db.CandidateProfileRow{UserID: userID}
	f.scores.userScores[userID] = []db.ScoreRow{{UserID: userID, Score: 0.5}}

	require.NoError(t, f.pipeline.RescoreCandidate(context.Background(), userID))
	// An empty profile scores zero against every job: the stored snapshot is
	// replaced with the empty set.
	assert.Empty(t, f.scores.userScores[userID])
}

func TestRescoreCandidate_DeletedJobNeverAppears(t *testing.T) {
	job := storedJob("Backend Developer",
		match.NewRequirements([]string{"python"}, nil, nil), match.Vector{1, 0})
	f := newPipelineFixture(t, job)

	userID := uuid.New()
	f.profiles.profiles[userID] = &db.CandidateProfileRow{
		UserID: userID, Skills: []string{"python"}, Title: "Backend Developer",
	}

	f.index.Remove(job.ID)
	require.NoError(t, f.pipeline.RescoreCandidate(context.Background(), userID))

	for _, row := range f.scores.userScores[userID] {
		assert.NotEqual(t, job.ID, row.JobID)
	}
}

func TestRescoreCandidate_UsesUpdatedJobText(t *testing.T) {
	job := storedJob("Backend Developer",
		match.NewRequirements([]string{"python"}, nil, nil), match.Vector{1, 0})
	f := newPipelineFixture(t, job)

	userID := uuid.New()
	f.profiles.profiles[userID] = &db.CandidateProfileRow{
		UserID: userID, Skills: []string{"python"}, Title: "Backend Developer",
	}

	require.NoError(t, f.pipeline.RescoreCandidate(context.Background(), userID))
	before := f.scores.userScores[userID]
	require.Len(t, before, 1)

	// Retitle the job away from the candidate's anchor; the next sweep must
	// score only the new representation.
	require.NoError(t, f.index.Upsert(context.Background(), job.ID, "Forklift Operator", "warehouse work"))
	require.NoError(t, f.pipeline.RescoreCandidate(context.Background(), userID))
	after := f.scores.userScores[userID]

	if len(after) > 0 {
		assert.Less(t, after[0].Score, before[0].Score)
	}
}

func TestRescoreJob(t *testing.T) {
	job := storedJob("Backend Developer",
		match.NewRequirements([]string{"python"}, nil, nil), match.Vector{1, 0})
	f := newPipelineFixture(t, job)

	matching := uuid.New()
	f.profiles.profiles[matching] = &db.CandidateProfileRow{
		UserID: matching, Skills: []string{"python"}, Title: "Backend Developer",
	}
	empty := uuid.New()
	f.profiles.profiles[empty] = &db.CandidateProfileRow{UserID: empty}

	require.NoError(t, f.pipeline.RescoreJob(context.Background(), job.ID))

	rows := f.scores.jobScores[job.ID]
	require.Len(t, rows, 1)
	assert.Equal(t, matching, rows[0].UserID)
	assert.Equal(t, job.ID, rows[0].JobID)
}

func TestRescoreJob_MissingEntryDropsRows(t *testing.T) {
	f := newPipelineFixture(t)
	jobID := uuid.New()

	require.NoError(t, f.pipeline.RescoreJob(context.Background(), jobID))
	assert.Contains(t, f.scores.deletedJob, jobID)
}

func TestScoreAgainstJob(t *testing.T) {
	job := storedJob("Backend Developer",
		match.NewRequirements([]string{"python"}, nil, []string{"sql"}), match.Vector{1, 0})
	f := newPipelineFixture(t, job)

	userID := uuid.New()
	f.profiles.profiles[userID] = &db.CandidateProfileRow{
		UserID: userID, Skills: []string{"python"},
	}

	breakdown, err := f.pipeline.ScoreAgainstJob(context.Background(), userID, job.ID)
	require.NoError(t, err)
	require.NotNil(t, breakdown)
	assert.Equal(t, []string{"python"}, breakdown.MatchedSkills)
	assert.Equal(t, []string{"sql"}, breakdown.MissingSkills)

	// Unknown job yields no breakdown, not an error.
	breakdown, err = f.pipeline.ScoreAgainstJob(context.Background(), userID, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, breakdown)
}
