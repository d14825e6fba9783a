package recommend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/newsrec/internal/domain"
	domart "github.com/kailas-cloud/newsrec/internal/domain/article"
	"github.com/kailas-cloud/newsrec/internal/domain/recommendation"
	"github.com/kailas-cloud/newsrec/internal/metrics"
	"github.com/kailas-cloud/newsrec/internal/ranking"
	"github.com/kailas-cloud/newsrec/internal/textvec"
)

// DefaultTopN is the number of related articles shown under a post.
const DefaultTopN = 4

// Service ranks same-category articles by TF-IDF cosine similarity.
// It holds no per-request state and is safe for concurrent use.
type Service struct {
	vectorizer    textvec.Vectorizer
	articles      ArticleReader
	logger        *zap.Logger
	maxCorpusSize int
}

// New creates a recommendation service. articles may be nil when only Recommend is used.
func New(vectorizer textvec.Vectorizer, articles ArticleReader, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{vectorizer: vectorizer, articles: articles, logger: logger}
}

// WithMaxCorpusSize caps the number of candidates RelatedTo feeds to the engine (0 = unlimited).
func (s *Service) WithMaxCorpusSize(n int) *Service {
	if n > 0 {
		s.maxCorpusSize = n
	}
	return s
}

// Recommend ranks corpus against query and returns at most topN items.
// It never returns an error: input-shape problems yield an empty outcome,
// anything else (including panics) yields a failed outcome that has been logged.
func (s *Service) Recommend(
	ctx context.Context, query recommendation.Document, corpus []recommendation.Document, topN int,
) (out recommendation.Outcome) {
	start := time.Now()
	defer func() {
		if rvr := recover(); rvr != nil {
			out = recommendation.Failed(recommendation.ReasonInternal, fmt.Errorf("recommend panic: %v", rvr))
			s.logger.Error("Recommendation panicked",
				zap.String("query_id", query.ID),
				zap.Any("panic", rvr),
				zap.Stack("stacktrace"),
			)
		}
		s.observe(query.ID, len(corpus), out, time.Since(start))
	}()

	if topN <= 0 {
		return recommendation.Empty(recommendation.ReasonNoCapacity)
	}

	candidates := excludeQuery(query.ID, corpus)
	if len(candidates) == 0 {
		return recommendation.Empty(recommendation.ReasonEmptyCorpus)
	}

	texts := make([]string, len(candidates))
	for i, d := range candidates {
		texts[i] = d.Text
	}

	space, err := s.vectorizer.FitTransform(texts)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyVocabulary) {
			return recommendation.Empty(recommendation.ReasonEmptyVocabulary)
		}
		s.logger.Error("Vectorization failed", zap.String("query_id", query.ID), zap.Error(err))
		return recommendation.Failed(recommendation.ReasonInternal, fmt.Errorf("vectorize: %w", err))
	}
	if space == nil || space.Dim() == 0 {
		return recommendation.Empty(recommendation.ReasonEmptyVocabulary)
	}
	metrics.RecommendVocabularySize.Observe(float64(space.Dim()))

	vectors := space.Vectors()
	if len(vectors) != len(candidates) {
		err = fmt.Errorf("vectorize: %d vectors for %d documents", len(vectors), len(candidates))
		s.logger.Error("Vectorization failed", zap.String("query_id", query.ID), zap.Error(err))
		return recommendation.Failed(recommendation.ReasonInternal, err)
	}

	ranked := ranking.Rank(space.Transform(query.Text), vectors, topN)
	items := make([]recommendation.Item, len(ranked))
	for i, r := range ranked {
		items[i] = recommendation.Item{ID: candidates[r.Index].ID, Score: r.Score}
	}
	return recommendation.Found(items)
}

// RelatedTo loads the article, gathers its category corpus (excluding itself) and ranks it.
// A missing article is a caller error; any failure after that degrades to a failed outcome.
func (s *Service) RelatedTo(ctx context.Context, articleID string, topN int) (recommendation.Outcome, error) {
	if s.articles == nil {
		return recommendation.Outcome{}, fmt.Errorf("related to %s: %w", articleID, domain.ErrStorageUnavailable)
	}

	art, err := s.articles.Get(ctx, articleID)
	if err != nil {
		return recommendation.Outcome{}, fmt.Errorf("get article: %w", err)
	}

	peers, err := s.articles.ListByCategory(ctx, art.Category())
	if err != nil {
		s.logger.Error("Failed to load category corpus",
			zap.String("article_id", articleID),
			zap.String("category", art.Category()),
			zap.Error(err),
		)
		out := recommendation.Failed(recommendation.ReasonCorpusFetch, fmt.Errorf("list category: %w", err))
		metrics.RecommendTotal.WithLabelValues(string(out.Status()), string(out.Reason())).Inc()
		return out, nil
	}

	corpus := make([]domart.Article, 0, len(peers))
	for _, p := range peers {
		if p.ID() != art.ID() {
			corpus = append(corpus, p)
		}
	}
	if s.maxCorpusSize > 0 && len(corpus) > s.maxCorpusSize {
		corpus = corpus[:s.maxCorpusSize]
	}

	return s.Recommend(ctx, art.Document(), domart.Documents(corpus), topN), nil
}

func (s *Service) observe(queryID string, corpusSize int, out recommendation.Outcome, d time.Duration) {
	metrics.RecommendTotal.WithLabelValues(string(out.Status()), string(out.Reason())).Inc()
	metrics.RecommendDuration.Observe(d.Seconds())
	metrics.RecommendCorpusSize.Observe(float64(corpusSize))

	s.logger.Debug("Recommendation completed",
		zap.String("query_id", queryID),
		zap.String("status", string(out.Status())),
		zap.String("reason", string(out.Reason())),
		zap.Int("corpus_size", corpusSize),
		zap.Int("items", len(out.Items())),
		zap.Duration("duration", d),
	)
}

// excludeQuery drops candidates sharing the query identifier. Order is preserved.
func excludeQuery(queryID string, corpus []recommendation.Document) []recommendation.Document {
	if queryID == "" {
		return corpus
	}
	out := corpus
	for i, d := range corpus {
		if d.ID != queryID {
			continue
		}
		// Copy only when something has to be removed.
		out = make([]recommendation.Document, 0, len(corpus)-1)
		out = append(out, corpus[:i]...)
		for _, rest := range corpus[i+1:] {
			if rest.ID != queryID {
				out = append(out, rest)
			}
		}
		break
	}
	return out
}

// selfCheckCorpus is a fixed corpus with one clear nearest neighbour of selfCheckQuery.
var (
	selfCheckQuery  = recommendation.Document{ID: "q", Text: "central bank raises interest rates"}
	selfCheckCorpus = []recommendation.Document{
		{ID: "match", Text: "interest rates rise after central bank decision"},
		{ID: "other", Text: "local team wins the football cup final"},
	}
)

// SelfCheck runs the full vectorize and rank path on a fixed corpus.
func (s *Service) SelfCheck(ctx context.Context) error {
	out := s.Recommend(ctx, selfCheckQuery, selfCheckCorpus, 1)
	if !out.OK() {
		return fmt.Errorf("self check: status %s, reason %s: %w", out.Status(), out.Reason(), out.Err())
	}
	if items := out.Items(); items[0].ID != "match" {
		return fmt.Errorf("self check: top item %q, want %q", items[0].ID, "match")
	}
	return nil
}
