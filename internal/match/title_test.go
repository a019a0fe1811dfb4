package match

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubstringInferrer_LongestMatchWins(t *testing.T) {
	vocab := []string{"senior backend developer", "backend developer", "developer"}
	inferrer := SubstringInferrer{}

	tokens := inferrer.InferTitleTokens(
		"Jane Doe — Senior Backend Developer with 8 years of experience", vocab)
	assert.Equal(t, TokenizeTitle("senior backend developer"), tokens)
}

func TestSubstringInferrer_NoMatch(t *testing.T) {
	inferrer := SubstringInferrer{}
	tokens := inferrer.InferTitleTokens("Entry level candidate, no stated role",
		[]string{"backend developer"})
	assert.Empty(t, tokens)
}

func TestSubstringInferrer_HeaderRegionOnly(t *testing.T) {
	// A title buried deep in the body must not anchor the candidate.
	body := strings.Repeat("filler text ", 100) + "backend developer"
	inferrer := SubstringInferrer{}

	tokens := inferrer.InferTitleTokens(body, []string{"backend developer"})
	assert.Empty(t, tokens)
}

func TestSubstringInferrer_HeaderWindowCountsRunes(t *testing.T) {
	// Six runes of accented prefix take twelve bytes; a byte-sliced window
	// of 16 would cut "developer" mid-word and miss it.
	inferrer := SubstringInferrer{HeaderChars: 16}
	tokens := inferrer.InferTitleTokens("ééééé developer, remainder of the resume",
		[]string{"developer"})
	assert.Equal(t, TokenizeTitle("developer"), tokens)
}

func TestSubstringInferrer_SkipsShortTitles(t *testing.T) {
	// "qa" is shorter than the minimum length and would match stray words.
	inferrer := SubstringInferrer{}
	tokens := inferrer.InferTitleTokens("Qa enthusiast", []string{"qa"})
	assert.Empty(t, tokens)
}

func TestSubstringInferrer_EmptyInputs(t *testing.T) {
	inferrer := SubstringInferrer{}
	assert.Empty(t, inferrer.InferTitleTokens("", []string{"backend developer"}))
	assert.Empty(t, inferrer.InferTitleTokens("some text", nil))
}

func TestTokenizeTitle(t *testing.T) {
	tests := []struct {
		title    string
		expected []string
	}{
		{"Backend Developer", []string{"backend", "developer"}},
		{"Sr. Backend-Developer", []string{"sr", "backend", "developer"}},
		{"  ", nil},
		{"C++ Developer", []string{"c", "developer"}},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			tokens := TokenizeTitle(tt.title)
			assert.Len(t, tokens, len(tt.expected))
			for _, w := range tt.expected {
				assert.Contains(t, tokens, w)
			}
		})
	}
}

func TestNormalizeTitle(t *testing.T) {
	assert.Equal(t, "sr backend developer", normalizeTitle("Sr. Backend-Developer"))
	assert.Equal(t, "", normalizeTitle("  "))
}
