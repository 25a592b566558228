package pkginfo

import (
	"context"
	"encoding/json"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/pkgsearch/internal/db"
	"github.com/kailas-cloud/pkgsearch/internal/domain"
	"github.com/kailas-cloud/pkgsearch/internal/domain/pkginfo"
	"github.com/kailas-cloud/pkgsearch/internal/domain/search/result"
)

// InfoKeyPrefix namespaces metadata documents under the configured key prefix.
const InfoKeyPrefix = "info:"

// store is the consumer interface for package info (ISP).
type store interface {
	JSONSetMulti(ctx context.Context, items []db.JSONSetItem) error
	JSONMGet(ctx context.Context, keys []string) ([][]byte, error)
	Lookup(ctx context.Context, def *db.IndexDefinition, ids []string) ([][]byte, error)
}

// Repo implements usecase/pkginfo.Repository. Metadata documents live in the
// key-value store; scores come from the package index.
type Repo struct {
	store  store
	prefix string
	index  *db.IndexDefinition
}

// New creates a package info repository.
func New(s store, keyPrefix string, index *db.IndexDefinition) *Repo {
	return &Repo{store: s, prefix: keyPrefix + InfoKeyPrefix, index: index}
}

type scoreDoc struct {
	Score result.Score `json:"score"`
}

// GetMany returns the info of every name that has both a metadata document
// and an indexed package. Missing names are absent from the map.
func (r *Repo) GetMany(ctx context.Context, names []string) (map[string]pkginfo.Info, error) {
	if len(names) == 0 {
		return map[string]pkginfo.Info{}, nil
	}

	keys := make([]string, len(names))
	for i, n := range names {
		keys[i] = r.prefix + n
	}

	var metas, scores [][]byte
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if metas, err = r.store.JSONMGet(gctx, keys); err != nil {
			return fmt.Errorf("get metadata: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if scores, err = r.store.Lookup(gctx, r.index, names); err != nil {
			return fmt.Errorf("lookup scores: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrUpstreamUnavailable, err)
	}

	out := make(map[string]pkginfo.Info, len(names))
	for i, n := range names {
		if i >= len(metas) || i >= len(scores) || metas[i] == nil || scores[i] == nil {
			continue
		}
		var info pkginfo.Info
		if err := json.Unmarshal(metas[i], &info.Metadata); err != nil {
			return nil, fmt.Errorf("decode metadata %s: %w", n, err)
		}
		var sd scoreDoc
		if err := json.Unmarshal(scores[i], &sd); err != nil {
			return nil, fmt.Errorf("decode score %s: %w", n, err)
		}
		info.Score = sd.Score
		out[n] = info
	}
	return out, nil
}

// Put stores metadata documents keyed by package name.
func (r *Repo) Put(ctx context.Context, metas map[string]pkginfo.Metadata) error {
	if len(metas) == 0 {
		return nil
	}
	items := make([]db.JSONSetItem, 0, len(metas))
	for name, m := range metas {
		data, err := json.Marshal(m)
		if err != nil {
			return fmt.Errorf("marshal metadata %s: %w", name, err)
		}
		items = append(items, db.JSONSetItem{Key: r.prefix + name, Path: "$", Data: data})
	}
	if err := r.store.JSONSetMulti(ctx, items); err != nil {
		return fmt.Errorf("%w: store %d metadata documents: %w", domain.ErrUpstreamUnavailable, len(items), err)
	}
	return nil
}
