package pkginfo

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"testing"
	"time"

	"github.com/kailas-cloud/pkgsearch/internal/domain"
	"github.com/kailas-cloud/pkgsearch/internal/domain/pkginfo"
	"github.com/kailas-cloud/pkgsearch/internal/domain/search/result"
)

// --- Mocks ---

type mockRepo struct {
	infos map[string]pkginfo.Info
	err   error
	calls [][]string
}

func (m *mockRepo) GetMany(ctx context.Context, names []string) (map[string]pkginfo.Info, error) {
	m.calls = append(m.calls, names)
	if _, ok := ctx.Deadline(); !ok {
		return nil, errors.New("expected a deadline")
	}
	if m.err != nil {
		return nil, m.err
	}
	out := make(map[string]pkginfo.Info)
	for _, n := range names {
		if info, ok := m.infos[n]; ok {
			out[n] = info
		}
	}
	return out, nil
}

func newRepo() *mockRepo {
	return &mockRepo{infos: map[string]pkginfo.Info{
		"react":       {Score: result.Score{Final: 0.9}},
		"@babel/core": {Score: result.Score{Final: 0.8}},
	}}
}

// --- Get ---

func TestGet_Found(t *testing.T) {
	svc := New(newRepo(), time.Second)

	info, err := svc.Get(context.Background(), "@babel/core")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.Score.Final != 0.8 {
		t.Errorf("expected score 0.8, got %v", info.Score.Final)
	}
}

func TestGet_NotFound(t *testing.T) {
	_, err := New(newRepo(), time.Second).Get(context.Background(), "left-pad")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGet_InvalidName(t *testing.T) {
	repo := newRepo()
	for _, name := range []string{"", ".hidden", "node_modules", "has space", "@scope"} {
		_, err := New(repo, time.Second).Get(context.Background(), name)
		if !errors.Is(err, domain.ErrInvalidParameter) {
			t.Errorf("Get(%q): expected ErrInvalidParameter, got %v", name, err)
		}
	}
	if len(repo.calls) != 0 {
		t.Errorf("repository must not be called, got %d calls", len(repo.calls))
	}
}

func TestGet_UpstreamError(t *testing.T) {
	repo := &mockRepo{err: fmt.Errorf("%w: connection refused", domain.ErrUpstreamUnavailable)}
	_, err := New(repo, time.Second).Get(context.Background(), "react")
	if !errors.Is(err, domain.ErrUpstreamUnavailable) {
		t.Fatalf("expected ErrUpstreamUnavailable, got %v", err)
	}
}

// --- MGet ---

func TestMGet_DeduplicatesAndOmitsMissing(t *testing.T) {
	repo := newRepo()
	got, err := New(repo, time.Second).MGet(context.Background(), []string{"react", "left-pad", "react", "@babel/core"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 results, got %d", len(got))
	}
	if _, ok := got["left-pad"]; ok {
		t.Error("missing package must be omitted")
	}
	want := []string{"react", "left-pad", "@babel/core"}
	if len(repo.calls) != 1 || !slices.Equal(repo.calls[0], want) {
		t.Errorf("expected one call with %v, got %v", want, repo.calls)
	}
}

func TestMGet_Bounds(t *testing.T) {
	tooMany := make([]string, pkginfo.MaxBulkNames+1)
	for i := range tooMany {
		tooMany[i] = fmt.Sprintf("pkg-%d", i)
	}

	tests := []struct {
		name  string
		names []string
	}{
		{"empty", nil},
		{"too many", tooMany},
		{"invalid member", []string{"react", "_private"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(newRepo(), time.Second).MGet(context.Background(), tt.names)
			if !errors.Is(err, domain.ErrInvalidParameter) {
				t.Fatalf("expected ErrInvalidParameter, got %v", err)
			}
		})
	}
}
