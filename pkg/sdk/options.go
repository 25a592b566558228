package pkgsearch

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/pkgsearch/internal/domain/search/params"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

const (
	driverRedis    = "redis"
	driverEmbedded = "embedded"
)

type clientConfig struct {
	driver   string
	addrs    []string
	password string
	dir      string

	indexName string
	keyPrefix string
	window    int
	timeout   time.Duration

	unknownQualifiers string
	boosts            map[string]float64

	logger     *zap.Logger
	metricsReg prometheus.Registerer
}

func defaultConfig() *clientConfig {
	return &clientConfig{
		indexName: "pkgsearch:packages",
		keyPrefix: "pkgsearch:",
		window:    500,
		timeout:   5 * time.Second,
	}
}

// WithRedis connects the client to a Redis instance with the search and
// JSON modules.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = driverRedis
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithEmbedded keeps documents and indexes in dir. An empty dir keeps
// everything in memory.
func WithEmbedded(dir string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = driverEmbedded
		c.dir = dir
	})
}

// WithIndex sets the index name and the document key prefix.
// Defaults: "pkgsearch:packages" and "pkgsearch:".
func WithIndex(name, keyPrefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.indexName = name
		c.keyPrefix = keyPrefix
	})
}

// WithCandidateWindow sets how many text-scored candidates are ranked per
// query. Default: 500.
func WithCandidateWindow(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.window = n
	})
}

// WithTimeout bounds every index round trip. Zero disables the bound.
// Default: 5s.
func WithTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.timeout = d
	})
}

// WithRejectUnknownQualifiers fails queries that use an unsupported
// qualifier instead of searching for it as text.
func WithRejectUnknownQualifiers() Option {
	return optionFunc(func(c *clientConfig) {
		c.unknownQualifiers = "reject"
	})
}

// WithFieldBoost overrides the relevance multiplier of name, description
// or keywords.
func WithFieldBoost(field string, boost float64) Option {
	return optionFunc(func(c *clientConfig) {
		if c.boosts == nil {
			c.boosts = make(map[string]float64)
		}
		c.boosts[field] = boost
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default).
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}

// SearchOption sets pagination on a search or suggestions call.
type SearchOption func(*params.Pagination)

// From sets the result offset. Ignored by Suggestions.
func From(n int) SearchOption {
	return func(p *params.Pagination) { p.From = &n }
}

// Size sets the page size.
func Size(n int) SearchOption {
	return func(p *params.Pagination) { p.Size = &n }
}

func pagination(opts []SearchOption) params.Pagination {
	var p params.Pagination
	for _, o := range opts {
		o(&p)
	}
	return p
}
