package pkgsearch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/pkgsearch/internal/db"
	"github.com/kailas-cloud/pkgsearch/internal/db/embedded"
	dbRedis "github.com/kailas-cloud/pkgsearch/internal/db/redis"
	"github.com/kailas-cloud/pkgsearch/internal/domain/pkginfo"
	"github.com/kailas-cloud/pkgsearch/internal/domain/search/params"
	"github.com/kailas-cloud/pkgsearch/internal/domain/search/qualifier"
	"github.com/kailas-cloud/pkgsearch/internal/domain/search/request"
	"github.com/kailas-cloud/pkgsearch/internal/domain/search/result"
	pkginforepo "github.com/kailas-cloud/pkgsearch/internal/repository/pkginfo"
	searchrepo "github.com/kailas-cloud/pkgsearch/internal/repository/search"
	healthuc "github.com/kailas-cloud/pkgsearch/internal/usecase/health"
	pkginfouc "github.com/kailas-cloud/pkgsearch/internal/usecase/pkginfo"
	searchuc "github.com/kailas-cloud/pkgsearch/internal/usecase/search"
)

const defaultReadinessTimeout = 10 * time.Second

// Internal interfaces, replaced by mocks in tests.
type searchUseCase interface {
	Search(ctx context.Context, raw string, page params.Pagination) (result.Page, error)
	Suggestions(ctx context.Context, raw string, size *int) ([]result.Result, error)
	Explain(raw string, page params.Pagination) (request.Explanation, error)
}

type packageUseCase interface {
	Get(ctx context.Context, name string) (pkginfo.Info, error)
	MGet(ctx context.Context, names []string) (map[string]pkginfo.Info, error)
}

type packageWriter interface {
	EnsureIndex(ctx context.Context) (bool, error)
	Put(ctx context.Context, docs []result.Document) error
}

type metadataWriter interface {
	Put(ctx context.Context, metas map[string]pkginfo.Metadata) error
}

// Client is the pkgsearch SDK entry point.
type Client struct {
	store     db.Store
	searchSvc searchUseCase
	pkgSvc    packageUseCase
	packages  packageWriter
	metadata  metadataWriter
	healthSvc healthUseCase
	obs       *observer
}

// New creates a Client and connects to the configured backend.
// The provided context is used for the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := defaultConfig()
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.driver == "" {
		return nil, errors.New("pkgsearch: backend required (use WithRedis or WithEmbedded)")
	}
	compiler, err := newCompiler(cfg)
	if err != nil {
		return nil, err
	}
	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	store, err := createStore(cfg)
	if err != nil {
		return nil, err
	}
	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("pkgsearch: database not ready: %w", err)
	}

	return wireClient(store, compiler, cfg, obs), nil
}

func createStore(cfg *clientConfig) (db.Store, error) {
	switch cfg.driver {
	case driverRedis:
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.addrs,
			Password: cfg.password,
		})
		if err != nil {
			return nil, fmt.Errorf("pkgsearch: create redis store: %w", err)
		}
		return s, nil
	case driverEmbedded:
		logger := cfg.logger
		if logger == nil {
			logger = zap.NewNop()
		}
		s, err := embedded.Open(embedded.Config{Dir: cfg.dir}, logger)
		if err != nil {
			return nil, fmt.Errorf("pkgsearch: open embedded store: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("pkgsearch: unknown driver %q", cfg.driver)
	}
}

func newCompiler(cfg *clientConfig) (*request.Compiler, error) {
	opts := request.DefaultOptions()

	policy, err := qualifier.ParseUnknownPolicy(cfg.unknownQualifiers)
	if err != nil {
		return nil, fmt.Errorf("pkgsearch: %w", err)
	}
	opts.Unknown = policy

	known := make(map[string]bool, len(opts.Boosts))
	for _, fb := range opts.Boosts {
		known[fb.Field] = true
	}
	for field, boost := range cfg.boosts {
		if !known[field] {
			return nil, fmt.Errorf("pkgsearch: unknown boost field %q", field)
		}
		if boost <= 0 {
			return nil, fmt.Errorf("pkgsearch: boost for %q must be positive", field)
		}
	}
	return request.NewCompiler(opts.WithBoosts(cfg.boosts)), nil
}

func wireClient(store db.Store, compiler *request.Compiler, cfg *clientConfig, obs *observer) *Client {
	index := searchrepo.PackageIndex(cfg.indexName, cfg.keyPrefix)
	searchRepo := searchrepo.New(store, index, cfg.window)
	infoRepo := pkginforepo.New(store, cfg.keyPrefix, index)

	return &Client{
		store:     store,
		searchSvc: searchuc.New(searchRepo, compiler, cfg.timeout),
		pkgSvc:    pkginfouc.New(infoRepo, cfg.timeout),
		packages:  searchRepo,
		metadata:  infoRepo,
		healthSvc: healthuc.New(store, searchRepo),
		obs:       obs,
	}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Search runs a query and returns one page of ranked packages.
func (c *Client) Search(ctx context.Context, query string, opts ...SearchOption) (page SearchPage, err error) {
	start := time.Now()
	defer func() { c.obs.observe("search", start, err) }()

	p, err := c.searchSvc.Search(ctx, query, pagination(opts))
	if err != nil {
		return SearchPage{}, err
	}
	return fromPage(p), nil
}

// Suggestions runs a query with the prefix-matching profile. Results carry
// a highlighted package name.
func (c *Client) Suggestions(ctx context.Context, query string, opts ...SearchOption) (out []SearchResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe("suggestions", start, err) }()

	res, err := c.searchSvc.Suggestions(ctx, query, pagination(opts).Size)
	if err != nil {
		return nil, err
	}
	out = make([]SearchResult, len(res))
	for i, r := range res {
		out[i] = fromResult(r)
	}
	return out, nil
}

// Explain compiles a query without running it.
func (c *Client) Explain(query string, opts ...SearchOption) (Explanation, error) {
	return c.searchSvc.Explain(query, pagination(opts))
}

// Package returns the analysis record of one package.
func (c *Client) Package(ctx context.Context, name string) (info Info, err error) {
	start := time.Now()
	defer func() { c.obs.observe("package", start, err) }()

	return c.pkgSvc.Get(ctx, name)
}

// Packages returns the analysis records of the named packages. Unknown
// names are absent from the map.
func (c *Client) Packages(ctx context.Context, names []string) (out map[string]Info, err error) {
	start := time.Now()
	defer func() { c.obs.observe("packages", start, err) }()

	return c.pkgSvc.MGet(ctx, names)
}

// Index creates the package index when missing, then stores the documents
// and their analysis metadata. Existing packages are replaced by name.
func (c *Client) Index(ctx context.Context, docs []Document, metas map[string]Metadata) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("index", start, err) }()

	for i := range docs {
		if err := pkginfo.ValidateName(docs[i].Name); err != nil {
			return fmt.Errorf("document %d: %w", i, err)
		}
	}
	if _, err := c.packages.EnsureIndex(ctx); err != nil {
		return fmt.Errorf("index: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return c.packages.Put(gctx, docs) })
	g.Go(func() error { return c.metadata.Put(gctx, metas) })
	if err := g.Wait(); err != nil {
		return fmt.Errorf("index: %w", err)
	}
	return nil
}
