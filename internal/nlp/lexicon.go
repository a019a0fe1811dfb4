package nlp

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/mertksaa/career-app/internal/match"
)

// lexiconSchema validates a skill lexicon file: a non-empty array of
// non-empty strings.
const lexiconSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "array",
	"minItems": 1,
	"items": {"type": "string", "minLength": 1}
}`

// Cue words that assign a tier to a skill based on the sentence it appears
// in. A sentence like "Python is required" promotes python to the required
// tier; "React is a plus" demotes react to preferred.
var (
	requiredCues  = []string{"must", "required", "require", "essential", "mandatory"}
	preferredCues = []string{"plus", "nice to have", "advantage", "preferred", "bonus", "familiarity"}
)

// Sentence boundaries: a period only splits when followed by whitespace so
// that "node.js" survives intact.
var sentenceSplitRe = regexp.MustCompile(`[!?;\n]+|\.(?:\s+|$)`)

// LexiconExtractor is the default SkillExtractor: it matches a known skill
// vocabulary against the text on word boundaries and assigns tiers from
// surrounding cue language.
type LexiconExtractor struct {
	// skills sorted longest first so multi-word skills win over their
	// substrings ("project management" before "management").
	skills   []string
	patterns map[string]*regexp.Regexp
}

// LoadLexicon reads a skill lexicon from a JSON file, validating it against
// the lexicon schema before use.
func LoadLexicon(path string) (*LexiconExtractor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read lexicon file %s: %w", path, err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(lexiconSchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to validate lexicon %s: %w", path, err)
	}
	if !result.Valid() {
		var msgs []string
		for _, desc := range result.Errors() {
			msgs = append(msgs, desc.String())
		}
		return nil, fmt.Errorf("invalid lexicon %s: %s", path, strings.Join(msgs, "; "))
	}

	var skills []string
	if err := json.Unmarshal(data, &skills); err != nil {
		return nil, fmt.Errorf("failed to parse lexicon %s: %w", path, err)
	}
	return NewLexiconExtractor(skills), nil
}

// NewLexiconExtractor builds an extractor over the given skill vocabulary.
func NewLexiconExtractor(skills []string) *LexiconExtractor {
	seen := make(map[string]struct{}, len(skills))
	normalized := make([]string, 0, len(skills))
	for _, s := range skills {
		s = match.NormalizeSkill(s)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		normalized = append(normalized, s)
	}
	sort.Slice(normalized, func(i, j int) bool {
		if len(normalized[i]) != len(normalized[j]) {
			return len(normalized[i]) > len(normalized[j])
		}
		return normalized[i] < normalized[j]
	})

	patterns := make(map[string]*regexp.Regexp, len(normalized))
	for _, s := range normalized {
		patterns[s] = skillPattern(s)
	}
	return &LexiconExtractor{skills: normalized, patterns: patterns}
}

// skillPattern matches the skill on non-alphanumeric boundaries. \b is not
// usable here: skills like "c++" and "node.js" end in non-word runes.
func skillPattern(skill string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)(^|[^a-z0-9])` + regexp.QuoteMeta(skill) + `($|[^a-z0-9])`)
}

// Extract scans the text for known skills and buckets them into tiers based
// on cue words in the containing sentence. Never fails: unmatchable text
// yields empty Requirements.
func (e *LexiconExtractor) Extract(text string) match.Requirements {
	if strings.TrimSpace(text) == "" {
		return match.Requirements{}
	}

	normalized := normalizeForMatching(text)

	var required, preferred, unclassified []string
	for _, sentence := range sentenceSplitRe.Split(normalized, -1) {
		if sentence == "" {
			continue
		}
		tier := sentenceTier(sentence)
		for _, skill := range e.skills {
			if !e.patterns[skill].MatchString(sentence) {
				continue
			}
			switch tier {
			case tierRequired:
				required = append(required, skill)
			case tierPreferred:
				preferred = append(preferred, skill)
			default:
				unclassified = append(unclassified, skill)
			}
		}
	}

	return match.NewRequirements(required, preferred, unclassified)
}

// Skills returns the normalized vocabulary, longest first.
func (e *LexiconExtractor) Skills() []string {
	out := make([]string, len(e.skills))
	copy(out, e.skills)
	return out
}

type tier int

const (
	tierUnclassified tier = iota
	tierRequired
	tierPreferred
)

func sentenceTier(sentence string) tier {
	lower := strings.ToLower(sentence)
	for _, cue := range requiredCues {
		if containsWord(lower, cue) {
			return tierRequired
		}
	}
	for _, cue := range preferredCues {
		if containsWord(lower, cue) {
			return tierPreferred
		}
	}
	return tierUnclassified
}

func containsWord(text, word string) bool {
	idx := 0
	for {
		i := strings.Index(text[idx:], word)
		if i < 0 {
			return false
		}
		i += idx
		before := i == 0 || !isAlnum(text[i-1])
		afterIdx := i + len(word)
		after := afterIdx >= len(text) || !isAlnum(text[afterIdx])
		if before && after {
			return true
		}
		idx = i + len(word)
	}
}

func isAlnum(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= '0' && b <= '9')
}

// normalizeForMatching lowercases and maps separator punctuation to spaces,
// matching how skills are written inconsistently across postings
// ("node-js", "node_js", "node/js").
func normalizeForMatching(text string) string {
	return strings.ToLower(strings.Map(func(r rune) rune {
		switch r {
		case '-', '_', '/':
			return ' '
		}
		return r
	}, text))
}
