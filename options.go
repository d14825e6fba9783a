package newsrec

import "go.uber.org/zap"

// Option configures an Engine or a Client.
type Option interface {
	apply(*config)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*config)

func (f optionFunc) apply(c *config) { f(c) }

type config struct {
	driver     string // "valkey", "redis" or "sqlite"
	addrs      []string
	password   string
	sqlitePath string
	keyPrefix  string

	minTokenLength int
	stopWords      []string
	sublinearTF    bool
	maxCorpusSize  int

	logger *zap.Logger
}

// WithValkey stores articles in a Valkey instance.
func WithValkey(addr, password string) Option {
	return optionFunc(func(c *config) {
		c.driver = "valkey"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithRedis stores articles in a Redis instance.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *config) {
		c.driver = "redis"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithSQLite stores articles in an embedded SQLite database file.
func WithSQLite(path string) Option {
	return optionFunc(func(c *config) {
		c.driver = "sqlite"
		c.sqlitePath = path
	})
}

// WithKeyPrefix namespaces Redis/Valkey keys. Default: "newsrec:".
func WithKeyPrefix(prefix string) Option {
	return optionFunc(func(c *config) {
		c.keyPrefix = prefix
	})
}

// WithMinTokenLength sets the shortest token kept by the tokenizer. Default: 2.
func WithMinTokenLength(n int) Option {
	return optionFunc(func(c *config) {
		c.minTokenLength = n
	})
}

// WithStopWords drops the given words (case-insensitive) before weighting.
func WithStopWords(words ...string) Option {
	return optionFunc(func(c *config) {
		c.stopWords = append(c.stopWords, words...)
	})
}

// WithSublinearTF weighs term frequency as 1+ln(tf) instead of raw counts.
func WithSublinearTF() Option {
	return optionFunc(func(c *config) {
		c.sublinearTF = true
	})
}

// WithMaxCorpusSize caps the number of newest same-category articles ranked by Related.
// 0 means unlimited.
func WithMaxCorpusSize(n int) Option {
	return optionFunc(func(c *config) {
		c.maxCorpusSize = n
	})
}

// WithLogger enables structured logging. Pass nil to disable (default).
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *config) {
		c.logger = l
	})
}

func buildConfig(opts []Option) *config {
	cfg := &config{}
	for _, o := range opts {
		o.apply(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = zap.NewNop()
	}
	return cfg
}
