package search

import (
	"context"

	"github.com/kailas-cloud/pkgsearch/internal/domain/search/request"
	"github.com/kailas-cloud/pkgsearch/internal/domain/search/result"
)

// Repository defines the storage contract for search operations.
type Repository interface {
	Search(ctx context.Context, q *request.Query) (result.Page, error)
}
