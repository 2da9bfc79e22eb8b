// Package cache keeps recent aggregation results for the lifetime of the process.
package cache

import (
	"context"
	"time"

	"github.com/google/uuid"

	"RealizedBands/internal/model"
)

// Snapshot is one cached aggregation result.
type Snapshot struct {
	ID        string               `json:"id"`
	CreatedAt time.Time            `json:"created_at"`
	Response  *model.ChartResponse `json:"response"`
}

// NewSnapshot wraps resp with a fresh id and the current time.
func NewSnapshot(resp *model.ChartResponse) *Snapshot {
	return &Snapshot{ID: uuid.NewString(), CreatedAt: time.Now(), Response: resp}
}

// Store persists snapshots. Latest returns nil, nil when nothing is fresh enough.
type Store interface {
	Save(ctx context.Context, snap *Snapshot) error
	Latest(ctx context.Context, maxAge time.Duration) (*Snapshot, error)
	Close() error
}
