// Package resolver turns cell tower identifiers into approximate coordinates.
package resolver

import (
	"context"
	"errors"
)

var (
	// ErrAuth means the service rejected our credentials.
	ErrAuth = errors.New("cell resolver authentication failed")
	// ErrRateLimited means the service or the local limiter refused the call.
	ErrRateLimited = errors.New("cell resolver rate limit exceeded")
	// ErrBadCellData means the tower could not be located from the given identifiers.
	ErrBadCellData = errors.New("cell tower data could not be resolved")
	// ErrUnavailable covers timeouts, transport failures and unexpected responses.
	ErrUnavailable = errors.New("cell resolver unavailable")
)

// CellQuery identifies a single serving cell.
type CellQuery struct {
	CID int
	LAC int
	MCC int
	MNC int
}

// Location is a resolved position. Accuracy is nil when the service gives none.
type Location struct {
	Lat      float64
	Lng      float64
	Accuracy *float64
}

// Resolver resolves cell identifiers to a location.
type Resolver interface {
	Resolve(ctx context.Context, q CellQuery) (Location, error)
}
