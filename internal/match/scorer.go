package match

import (
	"sort"
)

// Weights holds the tunable constants of the hybrid scoring formula. The
// defaults were tuned empirically against the production job corpus; treat
// them as configuration, not invariants.
type Weights struct {
	// Title-anchored scenario: entered when title Jaccard >= TitleThreshold.
	TitleThreshold    float64 `json:"title_threshold" validate:"gte=0,lte=1"`
	TitleFloor        float64 `json:"title_floor" validate:"gte=0,lte=1"`
	TitleSkillBoost   float64 `json:"title_skill_boost" validate:"gte=0,lte=1"`
	TitleVectorBoost  float64 `json:"title_vector_boost" validate:"gte=0,lte=1"`
	ExactTitleBonus   float64 `json:"exact_title_bonus" validate:"gte=0,lte=1"`
	ExactTitleJaccard float64 `json:"exact_title_jaccard" validate:"gte=0,lte=1"`
	MaxScore          float64 `json:"max_score" validate:"gte=0,lte=1"`

	// Skill-anchored scenario: entered when skill overlap is defined and
	// exceeds SkillThreshold.
	SkillThreshold    float64 `json:"skill_threshold" validate:"gte=0,lte=1"`
	SkillWeight       float64 `json:"skill_weight" validate:"gte=0,lte=1"`
	SkillVectorWeight float64 `json:"skill_vector_weight" validate:"gte=0,lte=1"`

	// Semantic-only scenario.
	VectorWeight      float64 `json:"vector_weight" validate:"gte=0,lte=1"`
	VectorSkillWeight float64 `json:"vector_skill_weight" validate:"gte=0,lte=1"`
	RelevanceCutoff   float64 `json:"relevance_cutoff" validate:"gte=0,lte=1"`
}

// DefaultWeights returns the production defaults of the scoring formula.
func DefaultWeights() Weights {
	return Weights{
		TitleThreshold:    0.33,
		TitleFloor:        0.70,
		TitleSkillBoost:   0.20,
		TitleVectorBoost:  0.10,
		ExactTitleBonus:   0.05,
		ExactTitleJaccard: 0.80,
		MaxScore:          0.99,

		SkillThreshold:    0.40,
		SkillWeight:       0.60,
		SkillVectorWeight: 0.40,

		VectorWeight:      0.70,
		VectorSkillWeight: 0.30,
		RelevanceCutoff:   0.45,
	}
}

// CandidateProfile is the ephemeral scoring-side representation of one
// candidate, rebuilt from their latest stored profile for every sweep.
type CandidateProfile struct {
	Skills      []string
	Embedding   Vector
	TitleTokens map[string]struct{}

	skillSet map[string]struct{}
}

// NewCandidateProfile normalizes the candidate's skills and title tokens into
// lookup sets.
func NewCandidateProfile(skills []string, embedding Vector, titleTokens []string) CandidateProfile {
	skillSet := make(map[string]struct{}, len(skills))
	normalized := make([]string, 0, len(skills))
	for _, s := range skills {
		s = NormalizeSkill(s)
		if s == "" {
			continue
		}
		if _, ok := skillSet[s]; ok {
			continue
		}
		skillSet[s] = struct{}{}
		normalized = append(normalized, s)
	}
	sort.Strings(normalized)

	titleSet := make(map[string]struct{}, len(titleTokens))
	for _, t := range titleTokens {
		t = NormalizeSkill(t)
		if t != "" {
			titleSet[t] = struct{}{}
		}
	}

	return CandidateProfile{
		Skills:      normalized,
		Embedding:   embedding,
		TitleTokens: titleSet,
		skillSet:    skillSet,
	}
}

// HasSkill reports whether the candidate holds the given (normalized) skill.
func (c CandidateProfile) HasSkill(skill string) bool {
	_, ok := c.skillSet[NormalizeSkill(skill)]
	return ok
}

// Breakdown carries the final score together with the per-signal detail that
// the skill-gap view displays.
type Breakdown struct {
	Score float64

	TitleAffinity float64
	SkillOverlap  float64
	// SkillDefined is false when the job has no extracted requirements; the
	// overlap signal is then absent, not zero.
	SkillDefined bool
	Semantic     float64
	Scenario     Scenario

	MatchedSkills []string
	MissingSkills []string
}

// Scenario names which signal dominated the blended score.
type Scenario string

const (
	ScenarioTitle    Scenario = "title"
	ScenarioSkill    Scenario = "skill"
	ScenarioSemantic Scenario = "semantic"
)

// Scorer computes hybrid match scores between candidates and indexed jobs.
// It is a pure computation over in-memory data and safe for concurrent use.
type Scorer struct {
	weights Weights
}

// NewScorer creates a Scorer with the given weights.
func NewScorer(weights Weights) *Scorer {
	return &Scorer{weights: weights}
}

// Score computes the match between one candidate and one indexed job entry.
// The result is always in [0, 1].
func (s *Scorer) Score(candidate CandidateProfile, job Entry) Breakdown {
	b := Breakdown{
		TitleAffinity: jaccard(candidate.TitleTokens, job.TitleTokens),
		Semantic:      Cosine(candidate.Embedding, job.Embedding),
	}
	b.SkillOverlap, b.SkillDefined = skillOverlap(candidate, job.Requirements)
	b.MatchedSkills, b.MissingSkills = skillGap(candidate, job.Requirements)

	w := s.weights
	switch {
	case b.TitleAffinity >= w.TitleThreshold:
		// An explicit title match is a strong prior that the role is
		// relevant; the other signals only re-rank within that set.
		b.Scenario = ScenarioTitle
		score := w.TitleFloor + w.TitleSkillBoost*b.SkillOverlap + w.TitleVectorBoost*b.Semantic
		if b.TitleAffinity > w.ExactTitleJaccard {
			score += w.ExactTitleBonus
		}
		if score > w.MaxScore {
			score = w.MaxScore
		}
		b.Score = score

	case b.SkillDefined && b.SkillOverlap > w.SkillThreshold:
		b.Scenario = ScenarioSkill
		b.Score = w.SkillWeight*b.SkillOverlap + w.SkillVectorWeight*b.Semantic

	default:
		b.Scenario = ScenarioSemantic
		score := w.VectorWeight*b.Semantic + w.VectorSkillWeight*b.SkillOverlap
		if score < w.RelevanceCutoff {
			// Weak coincidental matches would flood the recommendation
			// list; below the cutoff the job is treated as irrelevant.
			score = 0
		}
		b.Score = score
	}

	return b
}

// skillOverlap computes the tier-weighted overlap ratio. The second return
// value is false when the job has no extracted requirements at all.
func skillOverlap(candidate CandidateProfile, reqs Requirements) (float64, bool) {
	if reqs.IsEmpty() {
		return 0, false
	}

	var achieved, possible float64
	count := func(skills []string, weight float64) {
		for _, skill := range skills {
			possible += weight
			if candidate.HasSkill(skill) {
				achieved += weight
			}
		}
	}
	count(reqs.Required, weightRequired)
	count(reqs.Preferred, weightPreferred)
	count(reqs.Unclassified, weightUnclassified)

	if possible == 0 {
		return 0, false
	}
	return achieved / possible, true
}

// skillGap splits the job's requirements into matched and missing sets,
// sorted for deterministic display.
func skillGap(candidate CandidateProfile, reqs Requirements) (matched, missing []string) {
	for _, skill := range reqs.All() {
		if candidate.HasSkill(skill) {
			matched = append(matched, skill)
		} else {
			missing = append(missing, skill)
		}
	}
	sort.Strings(matched)
	sort.Strings(missing)
	return matched, missing
}

// jaccard computes set Jaccard similarity; 0 when either set is empty.
func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	intersection := 0
	for token := range a {
		if _, ok := b[token]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
