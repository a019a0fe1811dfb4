package match

import (
	"strings"
	"unicode"
)

const (
	// defaultHeaderChars bounds the resume region scanned for a stated role.
	// A candidate's own title almost always appears near the top.
	defaultHeaderChars = 400
	// minTitleLength skips vocabulary entries too short to be meaningful;
	// matching "it" or "qa" inside arbitrary prose produces false anchors.
	minTitleLength = 5
)

// TitleInferrer derives title tokens from unstructured candidate text when no
// structured title field exists. Implementations are best-effort by design.
type TitleInferrer interface {
	InferTitleTokens(rawText string, vocabulary []string) map[string]struct{}
}

// SubstringInferrer is the default TitleInferrer: it scans the known title
// vocabulary, longest first, for a literal occurrence inside the header
// region of the candidate's text. First match wins.
//
// The result depends on the vocabulary currently indexed, so two runs against
// different job sets can infer different titles. That is an accepted
// limitation, not a bug to engineer away.
type SubstringInferrer struct {
	// HeaderChars overrides the scanned prefix length when > 0.
	HeaderChars int
	// MinLength overrides the minimum title length when > 0.
	MinLength int
}

// InferTitleTokens returns the token set of the first (longest) vocabulary
// title found in the text header, or an empty set when nothing matches.
func (s SubstringInferrer) InferTitleTokens(rawText string, vocabulary []string) map[string]struct{} {
	headerChars := s.HeaderChars
	if headerChars <= 0 {
		headerChars = defaultHeaderChars
	}
	minLength := s.MinLength
	if minLength <= 0 {
		minLength = minTitleLength
	}

	header := strings.ToLower(rawText)
	if runes := []rune(header); len(runes) > headerChars {
		// Slice runes, not bytes, so the window never cuts a multi-byte
		// character in half.
		header = string(runes[:headerChars])
	}
	if header == "" {
		return map[string]struct{}{}
	}

	for _, title := range vocabulary {
		if len(title) < minLength {
			continue
		}
		if strings.Contains(header, title) {
			return TokenizeTitle(title)
		}
	}
	return map[string]struct{}{}
}

// normalizeTitle lowercases a title and collapses runs of non-alphanumeric
// characters into single spaces, so "Sr. Backend-Developer" and "sr backend
// developer" compare equal.
func normalizeTitle(title string) string {
	return strings.Join(titleWords(title), " ")
}

// TokenizeTitle returns the normalized token set of a job title.
func TokenizeTitle(title string) map[string]struct{} {
	words := titleWords(title)
	tokens := make(map[string]struct{}, len(words))
	for _, w := range words {
		tokens[w] = struct{}{}
	}
	return tokens
}

func titleWords(title string) []string {
	return strings.FieldsFunc(strings.ToLower(title), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
