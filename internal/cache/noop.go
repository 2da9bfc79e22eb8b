package cache

import (
	"context"
	"time"
)

// NoopStore is used when caching is disabled.
type NoopStore struct{}

func NewNoopStore() *NoopStore { return &NoopStore{} }

func (n *NoopStore) Save(_ context.Context, _ *Snapshot) error { return nil }
func (n *NoopStore) Latest(_ context.Context, _ time.Duration) (*Snapshot, error) {
	return nil, nil
}
func (n *NoopStore) Close() error { return nil }
