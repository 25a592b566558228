package pkginfo

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/pkgsearch/internal/domain"
	"github.com/kailas-cloud/pkgsearch/internal/domain/pkginfo"
)

// Service serves package analysis records.
type Service struct {
	repo    Repository
	timeout time.Duration
}

// New creates a package info service.
func New(repo Repository, timeout time.Duration) *Service {
	return &Service{repo: repo, timeout: timeout}
}

// Get returns the info of a single package.
func (s *Service) Get(ctx context.Context, name string) (pkginfo.Info, error) {
	if err := pkginfo.ValidateName(name); err != nil {
		return pkginfo.Info{}, err //nolint:wrapcheck // parameter errors reach the client as is
	}

	found, err := s.fetch(ctx, []string{name})
	if err != nil {
		return pkginfo.Info{}, err
	}
	info, ok := found[name]
	if !ok {
		return pkginfo.Info{}, fmt.Errorf("package %q: %w", name, domain.ErrNotFound)
	}
	return info, nil
}

// MGet returns the info of every listed package that exists, keyed by name.
func (s *Service) MGet(ctx context.Context, names []string) (map[string]pkginfo.Info, error) {
	names, err := pkginfo.NormalizeNames(names)
	if err != nil {
		return nil, err //nolint:wrapcheck // parameter errors reach the client as is
	}
	return s.fetch(ctx, names)
}

func (s *Service) fetch(ctx context.Context, names []string) (map[string]pkginfo.Info, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	found, err := s.repo.GetMany(ctx, names)
	if err != nil {
		return nil, fmt.Errorf("get %d packages: %w", len(names), err)
	}
	return found, nil
}
