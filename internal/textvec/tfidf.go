package textvec

import (
	"fmt"
	"math"
	"sort"

	"github.com/kailas-cloud/newsrec/internal/domain"
)

// ErrEmptyVocabulary is returned when the corpus yields no terms.
var ErrEmptyVocabulary = domain.ErrEmptyVocabulary

// Vectorizer fits a vector space on a corpus.
type Vectorizer interface {
	FitTransform(corpus []string) (Space, error)
}

// Space is a fitted vector space: the corpus vectors plus projection of new text.
type Space interface {
	Dim() int
	Vocabulary() *Vocabulary
	Vectors() []Vector
	Transform(text string) Vector
}

// Option configures a TFIDF vectorizer.
type Option func(*TFIDF)

// WithTokenizer replaces the default word tokenizer.
func WithTokenizer(t Tokenizer) Option {
	return func(v *TFIDF) { v.tokenizer = t }
}

// WithMinTokenLength sets the shortest token kept by the default tokenizer.
func WithMinTokenLength(n int) Option {
	return func(v *TFIDF) { v.minTokenLen = n }
}

// WithStopWords drops the given words in the default tokenizer.
func WithStopWords(words ...string) Option {
	return func(v *TFIDF) { v.stopWords = append(v.stopWords, words...) }
}

// WithSublinearTF replaces raw counts with 1 + ln(count).
func WithSublinearTF() Option {
	return func(v *TFIDF) { v.sublinearTF = true }
}

// TFIDF is a stateless term-frequency/inverse-document-frequency vectorizer.
// Each FitTransform call builds a fresh vocabulary; nothing is cached between calls.
type TFIDF struct {
	tokenizer   Tokenizer
	minTokenLen int
	stopWords   []string
	sublinearTF bool
}

// NewTFIDF creates a vectorizer.
func NewTFIDF(opts ...Option) *TFIDF {
	v := &TFIDF{minTokenLen: DefaultMinTokenLength}
	for _, o := range opts {
		o(v)
	}
	if v.tokenizer == nil {
		v.tokenizer = NewWordTokenizer(v.minTokenLen, v.stopWords...)
	}
	return v
}

var _ Vectorizer = (*TFIDF)(nil)

// FitTransform builds the vocabulary and IDF weights from corpus and returns
// one vector per document. Vectors are not normalized; cosine scoring does that.
func (v *TFIDF) FitTransform(corpus []string) (Space, error) {
	if len(corpus) == 0 {
		return nil, fmt.Errorf("fit: %w", ErrEmptyVocabulary)
	}

	tokenized := make([][]string, len(corpus))
	docFreq := make(map[string]int)
	for i, text := range corpus {
		tokens := v.tokenizer.Tokenize(text)
		tokenized[i] = tokens
		seen := make(map[string]struct{}, len(tokens))
		for _, tok := range tokens {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			docFreq[tok]++
		}
	}
	if len(docFreq) == 0 {
		return nil, fmt.Errorf("fit %d documents: %w", len(corpus), ErrEmptyVocabulary)
	}

	terms := make(map[string]struct{}, len(docFreq))
	for t := range docFreq {
		terms[t] = struct{}{}
	}
	vocab := NewVocabulary(terms)

	// Smoothed IDF: ln((1+n)/(1+df)) + 1. Always >= 1, so no term is fully zeroed.
	n := float64(len(corpus))
	idf := make([]float64, vocab.Len())
	for t, df := range docFreq {
		col, _ := vocab.Index(t)
		idf[col] = math.Log((1+n)/(1+float64(df))) + 1
	}

	m := &Model{vocab: vocab, idf: idf, tokenizer: v.tokenizer, sublinearTF: v.sublinearTF}
	m.vectors = make([]Vector, len(tokenized))
	for i, tokens := range tokenized {
		m.vectors[i] = m.weigh(tokens)
	}
	return m, nil
}

// Model is a fitted TF-IDF space.
type Model struct {
	vocab       *Vocabulary
	idf         []float64
	tokenizer   Tokenizer
	sublinearTF bool
	vectors     []Vector
}

var _ Space = (*Model)(nil)

// Dim returns the number of vocabulary columns.
func (m *Model) Dim() int { return m.vocab.Len() }

// Vocabulary returns the fitted vocabulary.
func (m *Model) Vocabulary() *Vocabulary { return m.vocab }

// Vectors returns the corpus vectors in corpus order.
func (m *Model) Vectors() []Vector { return m.vectors }

// IDF returns the inverse document frequency of column i.
func (m *Model) IDF(i int) float64 { return m.idf[i] }

// Transform projects text into the fitted space. Unknown terms are dropped.
func (m *Model) Transform(text string) Vector {
	return m.weigh(m.tokenizer.Tokenize(text))
}

func (m *Model) weigh(tokens []string) Vector {
	counts := make(map[int]int, len(tokens))
	for _, tok := range tokens {
		if col, ok := m.vocab.Index(tok); ok {
			counts[col]++
		}
	}
	if len(counts) == 0 {
		return Vector{}
	}

	vec := Vector{
		Indices: make([]int, 0, len(counts)),
		Values:  make([]float64, 0, len(counts)),
	}
	for col := range counts {
		vec.Indices = append(vec.Indices, col)
	}
	sort.Ints(vec.Indices)
	for _, col := range vec.Indices {
		tf := float64(counts[col])
		if m.sublinearTF {
			tf = 1 + math.Log(tf)
		}
		vec.Values = append(vec.Values, tf*m.idf[col])
	}
	return vec
}
