package newsrec

import (
	"context"

	"github.com/kailas-cloud/newsrec/internal/domain/recommendation"
	"github.com/kailas-cloud/newsrec/internal/textvec"
	recommenduc "github.com/kailas-cloud/newsrec/internal/usecase/recommend"
)

// DefaultTopN is the number of related articles shown under a post.
const DefaultTopN = recommenduc.DefaultTopN

// Document is a unit of comparison: an identifier and its full text.
type Document struct {
	ID   string
	Text string
}

// Item is one ranked document.
type Item struct {
	ID    string
	Score float64
}

// Status classifies a Result.
type Status string

// Result statuses.
const (
	StatusOK     Status = Status(recommendation.StatusOK)
	StatusEmpty  Status = Status(recommendation.StatusEmpty)
	StatusFailed Status = Status(recommendation.StatusFailed)
)

// Result is the outcome of a recommendation. Items is empty unless Status is StatusOK.
// Reason explains empty and failed results: "empty_corpus", "empty_vocabulary",
// "no_capacity", "internal" or "corpus_fetch".
type Result struct {
	Status Status
	Reason string
	Items  []Item
	Err    error
}

// Engine ranks caller-supplied corpora. It is safe for concurrent use.
type Engine struct {
	svc *recommenduc.Service
}

// NewEngine creates a stateless Engine. Store options are ignored.
func NewEngine(opts ...Option) *Engine {
	cfg := buildConfig(opts)
	return &Engine{svc: newRecommendService(cfg, nil)}
}

// Recommend ranks corpus against query and returns at most topN items,
// highest score first, ties in corpus order. A corpus entry sharing the query ID is skipped.
func (e *Engine) Recommend(ctx context.Context, query Document, corpus []Document, topN int) Result {
	docs := make([]recommendation.Document, len(corpus))
	for i, d := range corpus {
		docs[i] = recommendation.Document{ID: d.ID, Text: d.Text}
	}
	out := e.svc.Recommend(ctx, recommendation.Document{ID: query.ID, Text: query.Text}, docs, topN)
	return resultFromOutcome(out)
}

func newRecommendService(cfg *config, articles recommenduc.ArticleReader) *recommenduc.Service {
	var vopts []textvec.Option
	if cfg.minTokenLength > 0 {
		vopts = append(vopts, textvec.WithMinTokenLength(cfg.minTokenLength))
	}
	if len(cfg.stopWords) > 0 {
		vopts = append(vopts, textvec.WithStopWords(cfg.stopWords...))
	}
	if cfg.sublinearTF {
		vopts = append(vopts, textvec.WithSublinearTF())
	}
	return recommenduc.New(textvec.NewTFIDF(vopts...), articles, cfg.logger).
		WithMaxCorpusSize(cfg.maxCorpusSize)
}

func resultFromOutcome(out recommendation.Outcome) Result {
	items := make([]Item, len(out.Items()))
	for i, it := range out.Items() {
		items[i] = Item{ID: it.ID, Score: it.Score}
	}
	return Result{
		Status: Status(out.Status()),
		Reason: string(out.Reason()),
		Items:  items,
		Err:    out.Err(),
	}
}
