// Package nlp provides the text analysis collaborators of the matching
// engine: embedding providers and skill extractors.
package nlp

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// StripHTML removes markup from a job description, returning plain text.
// Scraped postings frequently arrive with embedded HTML; analysis always
// runs on the text form. Input without markup passes through unchanged.
func StripHTML(content string) (string, error) {
	if !strings.ContainsRune(content, '<') {
		return CleanText(content), nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}
	doc.Find("script, style, noscript").Remove()

	return CleanText(doc.Find("body").Text()), nil
}

// CleanText collapses runs of whitespace and trims the result.
func CleanText(content string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(content, " "))
}

// Truncate bounds text to at most n runes, for embedding providers with
// input limits.
func Truncate(text string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n])
}
