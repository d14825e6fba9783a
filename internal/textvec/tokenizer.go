package textvec

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// DefaultMinTokenLength drops single-character tokens ("a", "I", digits).
const DefaultMinTokenLength = 2

// Tokenizer splits text into comparable terms.
type Tokenizer interface {
	Tokenize(text string) []string
}

// WordTokenizer folds case and splits on anything that is not a letter, digit or underscore.
type WordTokenizer struct {
	minLen    int
	stopWords map[string]struct{}
}

// NewWordTokenizer creates a tokenizer. minLen < 1 is treated as 1.
func NewWordTokenizer(minLen int, stopWords ...string) *WordTokenizer {
	if minLen < 1 {
		minLen = 1
	}
	t := &WordTokenizer{minLen: minLen}
	if len(stopWords) > 0 {
		t.stopWords = make(map[string]struct{}, len(stopWords))
		for _, w := range stopWords {
			t.stopWords[fold(w)] = struct{}{}
		}
	}
	return t
}

// Tokenize returns the terms of text in order of appearance (duplicates kept).
func (t *WordTokenizer) Tokenize(text string) []string {
	if text == "" {
		return nil
	}
	fields := strings.FieldsFunc(fold(text), isSeparator)
	out := fields[:0]
	for _, f := range fields {
		if utf8.RuneCountInString(f) < t.minLen {
			continue
		}
		if _, stop := t.stopWords[f]; stop {
			continue
		}
		out = append(out, f)
	}
	return out
}

// fold applies NFKC and Unicode case folding. A fresh caser per call keeps it goroutine-safe.
func fold(s string) string {
	return cases.Fold().String(norm.NFKC.String(s))
}

func isSeparator(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' && !unicode.Is(unicode.Mn, r)
}
