package search

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/kailas-cloud/pkgsearch/internal/domain"
	"github.com/kailas-cloud/pkgsearch/internal/domain/search/mode"
	"github.com/kailas-cloud/pkgsearch/internal/domain/search/params"
	"github.com/kailas-cloud/pkgsearch/internal/domain/search/request"
	"github.com/kailas-cloud/pkgsearch/internal/domain/search/result"
	"github.com/kailas-cloud/pkgsearch/internal/metrics"
)

// Service compiles raw queries and runs them against the package index.
type Service struct {
	repo     Repository
	compiler *request.Compiler
	timeout  time.Duration
}

// New creates a search service. A zero timeout leaves the caller's deadline alone.
func New(repo Repository, compiler *request.Compiler, timeout time.Duration) *Service {
	return &Service{repo: repo, compiler: compiler, timeout: timeout}
}

// Search returns one ranked page of packages matching raw.
func (s *Service) Search(ctx context.Context, raw string, page params.Pagination) (result.Page, error) {
	q, err := s.compiler.Compile(raw, page)
	if err != nil {
		record(mode.Search, err)
		return result.Page{}, err //nolint:wrapcheck // parameter errors reach the client as is
	}

	res, err := s.run(ctx, &q)
	record(mode.Search, err)
	if err != nil {
		return result.Page{}, err
	}
	metrics.SearchResultsReturned.WithLabelValues(string(mode.Search)).Observe(float64(res.Len()))
	return res, nil
}

// Suggestions returns the top name matches for raw, with highlights.
func (s *Service) Suggestions(ctx context.Context, raw string, size *int) ([]result.Result, error) {
	q, err := s.compiler.CompileSuggestions(raw, size)
	if err != nil {
		record(mode.Suggestions, err)
		return nil, err //nolint:wrapcheck // parameter errors reach the client as is
	}

	res, err := s.run(ctx, &q)
	record(mode.Suggestions, err)
	if err != nil {
		return nil, err
	}
	out := slices.Collect(res.Results())
	if out == nil {
		out = []result.Result{}
	}
	metrics.SearchResultsReturned.WithLabelValues(string(mode.Suggestions)).Observe(float64(len(out)))
	return out, nil
}

// Explain compiles raw without running it.
func (s *Service) Explain(raw string, page params.Pagination) (request.Explanation, error) {
	q, err := s.compiler.Compile(raw, page)
	if err != nil {
		return request.Explanation{}, err //nolint:wrapcheck // parameter errors reach the client as is
	}
	return q.Explain(), nil
}

func (s *Service) run(ctx context.Context, q *request.Query) (result.Page, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	res, err := s.repo.Search(ctx, q)
	if err != nil {
		if !errors.Is(err, domain.ErrUpstreamUnavailable) && errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("%w: %w", domain.ErrUpstreamUnavailable, err)
		}
		return result.Page{}, fmt.Errorf("%s: %w", q.Mode(), err)
	}
	return res, nil
}

func record(m mode.Mode, err error) {
	outcome := metrics.OutcomeOK
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrInvalidParameter):
		outcome = metrics.OutcomeInvalid
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		outcome = metrics.OutcomeUpstream
	default:
		outcome = metrics.OutcomeError
	}
	metrics.SearchRequestsTotal.WithLabelValues(string(m), outcome).Inc()
}
