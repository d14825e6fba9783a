// Package articlesql stores articles in an embedded SQLite database.
// It backs single-node deployments that run without Redis or Valkey.
package articlesql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/kailas-cloud/newsrec/internal/domain"
	domart "github.com/kailas-cloud/newsrec/internal/domain/article"
)

const schema = `
CREATE TABLE IF NOT EXISTS articles (
	id         TEXT PRIMARY KEY,
	category   TEXT NOT NULL,
	title      TEXT NOT NULL,
	summary    TEXT NOT NULL DEFAULT '',
	content    TEXT NOT NULL DEFAULT '',
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_articles_category ON articles (category, created_at DESC, id);
`

// row is the database shape of an article. created_at is Unix nanoseconds.
type row struct {
	ID        string `db:"id"`
	Category  string `db:"category"`
	Title     string `db:"title"`
	Summary   string `db:"summary"`
	Content   string `db:"content"`
	CreatedAt int64  `db:"created_at"`
}

func toRow(a *domart.Article) row {
	return row{
		ID:        a.ID(),
		Category:  a.Category(),
		Title:     a.Title(),
		Summary:   a.Summary(),
		Content:   a.Content(),
		CreatedAt: a.CreatedAt().UnixNano(),
	}
}

func (r row) article() domart.Article {
	return domart.Reconstruct(r.ID, r.Category, r.Title, r.Summary, r.Content, time.Unix(0, r.CreatedAt).UTC())
}

// Repo implements usecase/article.Repository on SQLite.
type Repo struct {
	db   *sqlx.DB
	path string
}

// Open creates the database file (and its directory) if needed and applies the schema.
func Open(path string) (*Repo, error) {
	if path == "" {
		return nil, errors.New("sqlite path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}

	db, err := sqlx.Connect("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}

	return &Repo{db: db, path: path}, nil
}

// Path returns the database file path.
func (r *Repo) Path() string {
	return r.path
}

// Ping checks the database is reachable.
func (r *Repo) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (r *Repo) Close() error {
	return r.db.Close()
}

// Upsert creates or replaces an article. Returns true if created.
func (r *Repo) Upsert(ctx context.Context, a *domart.Article) (bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var n int
	if err := tx.GetContext(ctx, &n, `SELECT COUNT(*) FROM articles WHERE id = ?`, a.ID()); err != nil {
		return false, fmt.Errorf("check exists %s: %w", a.ID(), err)
	}

	_, err = tx.NamedExecContext(ctx, `
		INSERT INTO articles (id, category, title, summary, content, created_at)
		VALUES (:id, :category, :title, :summary, :content, :created_at)
		ON CONFLICT(id) DO UPDATE SET
			category = excluded.category,
			title = excluded.title,
			summary = excluded.summary,
			content = excluded.content,
			created_at = excluded.created_at`, toRow(a))
	if err != nil {
		return false, fmt.Errorf("upsert %s: %w", a.ID(), err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit: %w", err)
	}
	return n == 0, nil
}

// Get returns an article by ID.
func (r *Repo) Get(ctx context.Context, id string) (domart.Article, error) {
	var rw row
	err := r.db.GetContext(ctx, &rw, `SELECT * FROM articles WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domart.Article{}, domain.ErrArticleNotFound
	}
	if err != nil {
		return domart.Article{}, fmt.Errorf("get %s: %w", id, err)
	}
	return rw.article(), nil
}

// Delete removes an article.
func (r *Repo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM articles WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete %s: %w", id, err)
	}
	if n == 0 {
		return domain.ErrArticleNotFound
	}
	return nil
}

// ListByCategory returns every article in category, newest first, ties by ascending ID.
func (r *Repo) ListByCategory(ctx context.Context, category string) ([]domart.Article, error) {
	var rows []row
	err := r.db.SelectContext(ctx, &rows,
		`SELECT * FROM articles WHERE category = ? ORDER BY created_at DESC, id ASC`, category)
	if err != nil {
		return nil, fmt.Errorf("list category %s: %w", category, err)
	}

	out := make([]domart.Article, len(rows))
	for i, rw := range rows {
		out[i] = rw.article()
	}
	return out, nil
}
