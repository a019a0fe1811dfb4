package match

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Tier weight constants for skill overlap scoring. A required skill counts
// three times as much as an unclassified mention; a nice-to-have counts half.
const (
	weightRequired     = 3.0
	weightUnclassified = 1.0
	weightPreferred    = 0.5
)

// Requirements holds the categorized skill set extracted from a job posting.
// Skills are stored normalized (lowercase, trimmed) and deduplicated across
// tiers, with the highest tier winning on conflict.
type Requirements struct {
	Required     []string
	Preferred    []string
	Unclassified []string
}

// requirementsBlob mirrors the tiered JSON object form stored in the jobs
// table. Older rows store a flat JSON array of skills instead; both forms are
// normalized into Requirements exactly once, at index-build time.
type requirementsBlob struct {
	Required     []string `json:"must_have"`
	Preferred    []string `json:"nice_to_have"`
	Unclassified []string `json:"skills"`
}

// ParseRequirements normalizes a stored requirements blob. It accepts either
// the tiered object form or the legacy flat array form (treated as all
// unclassified). An empty or null blob yields empty Requirements, not an
// error.
func ParseRequirements(blob []byte) (Requirements, error) {
	trimmed := strings.TrimSpace(string(blob))
	if trimmed == "" || trimmed == "null" {
		return Requirements{}, nil
	}

	if strings.HasPrefix(trimmed, "[") {
		var flat []string
		if err := json.Unmarshal(blob, &flat); err != nil {
			return Requirements{}, fmt.Errorf("failed to parse flat requirements: %w", err)
		}
		return NewRequirements(nil, nil, flat), nil
	}

	var tiered requirementsBlob
	if err := json.Unmarshal(blob, &tiered); err != nil {
		return Requirements{}, fmt.Errorf("failed to parse tiered requirements: %w", err)
	}
	return NewRequirements(tiered.Required, tiered.Preferred, tiered.Unclassified), nil
}

// NewRequirements builds a normalized Requirements value. Duplicate skills
// across tiers keep only their highest-priority tier (required > preferred >
// unclassified) so a skill is never counted twice.
func NewRequirements(required, preferred, unclassified []string) Requirements {
	seen := make(map[string]struct{})

	take := func(skills []string) []string {
		var out []string
		for _, s := range skills {
			s = NormalizeSkill(s)
			if s == "" {
				continue
			}
			if _, ok := seen[s]; ok {
				continue
			}
			seen[s] = struct{}{}
			out = append(out, s)
		}
		sort.Strings(out)
		return out
	}

	r := Requirements{}
	r.Required = take(required)
	r.Preferred = take(preferred)
	r.Unclassified = take(unclassified)
	return r
}

// NormalizeSkill lowercases and trims a skill name for comparison.
func NormalizeSkill(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// IsEmpty reports whether no skills were extracted for the job. In that case
// the skill-overlap signal is undefined rather than zero.
func (r Requirements) IsEmpty() bool {
	return len(r.Required) == 0 && len(r.Preferred) == 0 && len(r.Unclassified) == 0
}

// All returns every requirement skill across all tiers, sorted.
func (r Requirements) All() []string {
	out := make([]string, 0, len(r.Required)+len(r.Preferred)+len(r.Unclassified))
	out = append(out, r.Required...)
	out = append(out, r.Preferred...)
	out = append(out, r.Unclassified...)
	sort.Strings(out)
	return out
}

// MarshalBlob serializes Requirements into the tiered JSON object form for
// storage.
func (r Requirements) MarshalBlob() ([]byte, error) {
	blob := requirementsBlob{
		Required:     r.Required,
		Preferred:    r.Preferred,
		Unclassified: r.Unclassified,
	}
	data, err := json.Marshal(blob)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal requirements: %w", err)
	}
	return data, nil
}
