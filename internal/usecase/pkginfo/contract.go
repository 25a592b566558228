package pkginfo

import (
	"context"

	"github.com/kailas-cloud/pkgsearch/internal/domain/pkginfo"
)

// Repository reads package info records.
type Repository interface {
	// GetMany returns the info of every name found; missing names are absent.
	GetMany(ctx context.Context, names []string) (map[string]pkginfo.Info, error)
}
