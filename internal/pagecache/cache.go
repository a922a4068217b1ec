package pagecache

import (
	"context"
	"errors"
	"time"
)

// DefaultTTL is how long a generated page stays viewable.
const DefaultTTL = time.Hour

// ErrNotFound is returned for unknown or expired pages.
var ErrNotFound = errors.New("page not found")

// Cache stores rendered viewer pages by view id.
type Cache interface {
	Get(ctx context.Context, viewID string) (string, error)
	Set(ctx context.Context, viewID, html string) error
	// Sweep drops expired pages and returns how many were removed.
	Sweep(ctx context.Context) (int, error)
}
