package collector

import (
	"context"
	"math"
	"time"

	"RealizedBands/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
// Nil fields are generated; Fail* force the matching feed to fail.
type MockFetcher struct {
	Price       float64
	Days        int
	MetricData  map[string][]model.RawPoint
	HistoryData []model.RawPoint
	FailMetrics map[string]bool
	FailHistory bool
	FailLive    bool
	Delay       time.Duration
	Now         func() time.Time
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchMetric(ctx context.Context, name string) ([]model.RawPoint, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	if m.FailMetrics[name] {
		return nil, payloadErr("metric/"+name, "mock failure")
	}
	if d, ok := m.MetricData[name]; ok {
		return d, nil
	}
	// realized price trails spot at roughly 45%
	return generateMockSeries(m.Price*0.45, m.days(), m.now()), nil
}

func (m *MockFetcher) FetchHistory(ctx context.Context) ([]model.RawPoint, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	if m.FailHistory {
		return nil, payloadErr("history", "mock failure")
	}
	if m.HistoryData != nil {
		return m.HistoryData, nil
	}
	return generateMockSeries(m.Price, m.days(), m.now()), nil
}

func (m *MockFetcher) FetchLivePrice(ctx context.Context) (float64, error) {
	if err := m.wait(ctx); err != nil {
		return 0, err
	}
	if m.FailLive {
		return 0, payloadErr("live", "mock failure")
	}
	return m.Price, nil
}

func (m *MockFetcher) wait(ctx context.Context) error {
	if m.Delay <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return &FeedError{Feed: "mock", Kind: KindTransport, Err: ctx.Err()}
	case <-time.After(m.Delay):
		return nil
	}
}

func (m *MockFetcher) days() int {
	if m.Days > 0 {
		return m.Days
	}
	return 3000
}

func (m *MockFetcher) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}

// generateMockSeries produces count daily points ending at the UTC midnight
// before now, oscillating around basePrice.
func generateMockSeries(basePrice float64, count int, now time.Time) []model.RawPoint {
	if basePrice <= 0 {
		basePrice = 50000
	}
	end := now.UTC().Truncate(24 * time.Hour)
	pts := make([]model.RawPoint, count)
	for i := 0; i < count; i++ {
		age := count - 1 - i
		drift := 1 - float64(age)/float64(count)*0.8
		wave := 1 + 0.15*math.Sin(float64(i)/90)
		pts[i] = model.RawPoint{
			Time:  end.AddDate(0, 0, -age).UnixMilli(),
			Value: basePrice * drift * wave,
		}
	}
	return pts
}
