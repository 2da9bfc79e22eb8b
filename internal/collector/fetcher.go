package collector

import (
	"context"

	"RealizedBands/internal/model"
)

// MetricFetcher retrieves a named on-chain metric as daily (ms, value) points.
type MetricFetcher interface {
	FetchMetric(ctx context.Context, name string) ([]model.RawPoint, error)
	Name() string
}

// HistoryFetcher retrieves the full daily market price history.
type HistoryFetcher interface {
	FetchHistory(ctx context.Context) ([]model.RawPoint, error)
	Name() string
}

// LivePriceFetcher retrieves the current spot price.
type LivePriceFetcher interface {
	FetchLivePrice(ctx context.Context) (float64, error)
	Name() string
}
