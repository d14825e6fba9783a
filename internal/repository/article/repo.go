// Package article stores articles in Redis or Valkey: one hash per article and
// one set of article IDs per category.
package article

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/newsrec/internal/db"
	"github.com/kailas-cloud/newsrec/internal/domain"
	domart "github.com/kailas-cloud/newsrec/internal/domain/article"
)

// DefaultKeyPrefix namespaces every key written by the repository.
const DefaultKeyPrefix = "newsrec:"

// store is the consumer interface for articles (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Del(ctx context.Context, key string) error
	SAdd(ctx context.Context, key string, members ...string) error
	SRem(ctx context.Context, key string, members ...string) error
	SMembers(ctx context.Context, key string) ([]string, error)
}

// Repo implements usecase/article.Repository on a key-value store.
type Repo struct {
	store  store
	prefix string
}

// New creates an article repository. An empty prefix falls back to DefaultKeyPrefix.
func New(s store, prefix string) *Repo {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &Repo{store: s, prefix: prefix}
}

// Upsert creates or replaces an article and keeps its category index current.
// Returns true if created.
func (r *Repo) Upsert(ctx context.Context, a *domart.Article) (bool, error) {
	key := r.articleKey(a.ID())

	prev, err := r.store.HGetAll(ctx, key)
	if err != nil {
		return false, fmt.Errorf("hgetall %s: %w", key, err)
	}
	created := len(prev) == 0

	if err := r.store.HSet(ctx, key, buildHashFields(a)); err != nil {
		return false, fmt.Errorf("hset %s: %w", key, err)
	}

	if old := prev[fieldCategory]; !created && old != "" && old != a.Category() {
		if err := r.store.SRem(ctx, r.categoryKey(old), a.ID()); err != nil {
			return false, fmt.Errorf("srem %s: %w", r.categoryKey(old), err)
		}
	}
	if err := r.store.SAdd(ctx, r.categoryKey(a.Category()), a.ID()); err != nil {
		return false, fmt.Errorf("sadd %s: %w", r.categoryKey(a.Category()), err)
	}

	return created, nil
}

// Get returns an article by ID.
func (r *Repo) Get(ctx context.Context, id string) (domart.Article, error) {
	key := r.articleKey(id)
	m, err := r.store.HGetAll(ctx, key)
	if err != nil {
		return domart.Article{}, fmt.Errorf("hgetall %s: %w", key, err)
	}
	if len(m) == 0 {
		return domart.Article{}, domain.ErrArticleNotFound
	}
	return parseHashFields(id, m), nil
}

// Delete removes an article and its category membership.
func (r *Repo) Delete(ctx context.Context, id string) error {
	key := r.articleKey(id)

	m, err := r.store.HGetAll(ctx, key)
	if err != nil {
		return fmt.Errorf("hgetall %s: %w", key, err)
	}
	if len(m) == 0 {
		return domain.ErrArticleNotFound
	}

	if err := r.store.Del(ctx, key); err != nil {
		return fmt.Errorf("del %s: %w", key, err)
	}
	if category := m[fieldCategory]; category != "" {
		if err := r.store.SRem(ctx, r.categoryKey(category), id); err != nil {
			return fmt.Errorf("srem %s: %w", r.categoryKey(category), err)
		}
	}
	return nil
}

// ListByCategory returns every article in category, newest first, ties by ascending ID.
// Index entries whose hash has vanished are skipped.
func (r *Repo) ListByCategory(ctx context.Context, category string) ([]domart.Article, error) {
	setKey := r.categoryKey(category)
	ids, err := r.store.SMembers(ctx, setKey)
	if err != nil {
		return nil, fmt.Errorf("smembers %s: %w", setKey, err)
	}
	if len(ids) == 0 {
		return []domart.Article{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.articleKey(id)
	}

	hashes, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("hgetall category %s: %w", category, err)
	}
	if len(hashes) != len(ids) {
		return nil, fmt.Errorf("hgetall category %s: %w", category,
			&db.Error{Op: db.OpHGetAll, Err: fmt.Errorf("%d replies for %d keys", len(hashes), len(ids))})
	}

	out := make([]domart.Article, 0, len(ids))
	for i, m := range hashes {
		if len(m) == 0 {
			continue
		}
		out = append(out, parseHashFields(ids[i], m))
	}
	domart.SortNewestFirst(out)
	return out, nil
}

func (r *Repo) articleKey(id string) string {
	return r.prefix + "article:" + id
}

func (r *Repo) categoryKey(category string) string {
	return r.prefix + "category:" + category
}
