package merge

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"RealizedBands/internal/model"
	"RealizedBands/internal/series"
)

var base = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

func dayMs(n int) int64 { return base.AddDate(0, 0, n).UnixMilli() }

// dailySeries returns n consecutive daily points starting at base.
func dailySeries(n int, value func(i int) float64) []model.RawPoint {
	pts := make([]model.RawPoint, n)
	for i := range pts {
		pts[i] = model.RawPoint{Time: dayMs(i), Value: value(i)}
	}
	return pts
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 4, cfg.Stride)
	assert.Equal(t, 100, cfg.MinCoverage)
	assert.Equal(t, 12*time.Hour, cfg.ReplaceAfter)
	assert.Equal(t, int64(1514764800000), cfg.WindowStart.UnixMilli())
}

func TestConfig_ValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"non increasing", func(c *Config) { c.Multipliers[2] = 1.25 }},
		{"non positive", func(c *Config) { c.Multipliers[0] = 0 }},
		{"does not bracket one", func(c *Config) { c.Multipliers = [5]float64{1.1, 1.25, 1.7, 2.4, 3.2} }},
		{"zero stride", func(c *Config) { c.Stride = 0 }},
		{"negative coverage", func(c *Config) { c.MinCoverage = -1 }},
		{"zero replace window", func(c *Config) { c.ReplaceAfter = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestGate(t *testing.T) {
	e := NewEngine(DefaultConfig())
	history := dailySeries(300, func(int) float64 { return 30000 })

	t.Run("primary too short", func(t *testing.T) {
		primary := series.Build(dailySeries(50, func(int) float64 { return 20000 }))
		err := e.Gate(primary, history)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInsufficientData))
	})

	t.Run("primary absent", func(t *testing.T) {
		assert.ErrorIs(t, e.Gate(nil, history), ErrInsufficientData)
	})

	t.Run("history too short", func(t *testing.T) {
		primary := series.Build(dailySeries(150, func(int) float64 { return 20000 }))
		assert.ErrorIs(t, e.Gate(primary, history[:99]), ErrInsufficientData)
	})

	t.Run("pass at threshold", func(t *testing.T) {
		primary := series.Build(dailySeries(100, func(int) float64 { return 20000 }))
		assert.NoError(t, e.Gate(primary, history[:100]))
	})

	t.Run("duplicate days do not count", func(t *testing.T) {
		pts := dailySeries(60, func(int) float64 { return 20000 })
		for i := 0; i < 60; i++ {
			pts = append(pts, model.RawPoint{Time: dayMs(i) + 3600_000, Value: 20001})
		}
		assert.ErrorIs(t, e.Gate(series.Build(pts), history), ErrInsufficientData)
	})
}

func TestMerge_GateFailureReturnsNoRecords(t *testing.T) {
	e := NewEngine(DefaultConfig())
	recs, err := e.Merge(Inputs{
		Primary: series.Build(dailySeries(50, func(int) float64 { return 20000 })),
		History: dailySeries(300, func(int) float64 { return 30000 }),
	})
	assert.ErrorIs(t, err, ErrInsufficientData)
	assert.Nil(t, recs)
}

func TestWindow(t *testing.T) {
	e := NewEngine(DefaultConfig())
	start := DefaultConfig().WindowStart.UnixMilli()
	history := []model.RawPoint{
		{Time: start - series.DayMs, Value: 14000},
		{Time: start - 1, Value: 14100},
		{Time: start + 2*series.DayMs, Value: 0},
		{Time: start + 3*series.DayMs, Value: 15000},
		{Time: start, Value: 13500},
		{Time: start + series.DayMs, Value: -5},
	}

	got := e.Window(history)
	require.Len(t, got, 2)
	assert.Equal(t, start, got[0].Time)
	assert.Equal(t, start+3*series.DayMs, got[1].Time)
	for _, p := range got {
		assert.GreaterOrEqual(t, p.Time, start)
		assert.Greater(t, p.Value, 0.0)
	}
}

func TestResample(t *testing.T) {
	e := NewEngine(DefaultConfig())
	tests := []struct {
		n    int
		want []int // kept indices
	}{
		{0, nil},
		{1, []int{0}},
		{2, []int{0, 1}},
		{4, []int{0, 3}},
		{5, []int{0, 4}},
		{6, []int{0, 4, 5}},
		{9, []int{0, 4, 8}},
		{10, []int{0, 4, 8, 9}},
	}
	for _, tt := range tests {
		pts := dailySeries(tt.n, func(i int) float64 { return float64(i + 1) })
		got := e.Resample(pts)
		var idx []int
		for _, p := range got {
			idx = append(idx, int(p.Value)-1)
		}
		assert.Equal(t, tt.want, idx, "n=%d", tt.n)
		if tt.n > 0 {
			assert.Equal(t, pts[tt.n-1], got[len(got)-1], "n=%d must end on last point", tt.n)
		}
	}
}

func TestMerge_EndToEndExample(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinCoverage = 2
	e := NewEngine(cfg)

	day0, day10 := dayMs(0), dayMs(10)
	in := Inputs{
		Primary: series.Build([]model.RawPoint{{Time: day0, Value: 20000}, {Time: day10, Value: 22000}}),
		History: []model.RawPoint{{Time: day0, Value: 21000}, {Time: day10, Value: 23500}},
	}

	recs, err := e.Merge(in)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	assert.Equal(t, model.CompositeRecord{
		Date: day0, Price: 21000, RP: 20000,
		RP0_8: 16000, RP1_25: 25000, RP1_7: 34000, RP2_4: 48000, RP3_2: 64000,
	}, recs[0])
	assert.Equal(t, model.CompositeRecord{
		Date: day10, Price: 23500, RP: 22000,
		RP0_8: 17600, RP1_25: 27500, RP1_7: 37400, RP2_4: 52800, RP3_2: 70400,
	}, recs[1])
	assert.Nil(t, recs[0].STHRP)
	assert.Nil(t, recs[1].LTHRP)
}

func TestMerge_CohortsAndForwardFill(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinCoverage = 1
	cfg.Stride = 1
	e := NewEngine(cfg)

	in := Inputs{
		Primary: series.Build([]model.RawPoint{{Time: dayMs(0), Value: 20000}}),
		STH:     series.Build([]model.RawPoint{{Time: dayMs(2), Value: 31000.6}}),
		History: []model.RawPoint{
			{Time: dayMs(1) + 5*3600_000, Value: 25000},
			{Time: dayMs(3), Value: 26000},
		},
	}
	recs, err := e.Merge(in)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	assert.Equal(t, int64(20000), recs[0].RP, "forward filled from day 0")
	assert.Nil(t, recs[0].STHRP, "cohort predates point")
	require.NotNil(t, recs[1].STHRP)
	assert.Equal(t, int64(31001), *recs[1].STHRP)
	assert.Nil(t, recs[1].LTHRP)
}

func TestMerge_PrimaryMissDefaultsToZero(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinCoverage = 1
	cfg.Stride = 1
	e := NewEngine(cfg)

	recs, err := e.Merge(Inputs{
		Primary: series.Build([]model.RawPoint{{Time: dayMs(5), Value: 20000}}),
		History: []model.RawPoint{{Time: dayMs(0), Value: 25000}, {Time: dayMs(6), Value: 26000}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), recs[0].RP)
	assert.Equal(t, int64(0), recs[0].RP3_2)
	assert.Equal(t, int64(20000), recs[1].RP)
}

func TestMerge_EmptyWindow(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinCoverage = 1
	e := NewEngine(cfg)
	old := cfg.WindowStart.AddDate(-1, 0, 0).UnixMilli()

	_, err := e.Merge(Inputs{
		Primary: series.Build([]model.RawPoint{{Time: old, Value: 5000}}),
		History: []model.RawPoint{{Time: old, Value: 9000}},
	})
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestMerge_BandMonotonicity(t *testing.T) {
	e := NewEngine(DefaultConfig())
	primary := series.Build(dailySeries(400, func(i int) float64 { return 3000 + float64(i)*37.3 }))
	history := dailySeries(400, func(i int) float64 { return 5000 + float64(i%17)*211.9 })

	recs, err := e.Merge(Inputs{Primary: primary, History: history})
	require.NoError(t, err)
	require.NotEmpty(t, recs)

	for i, r := range recs {
		require.Greater(t, r.RP, int64(0))
		assert.Less(t, r.RP0_8, r.RP)
		assert.Less(t, r.RP, r.RP1_25)
		assert.Less(t, r.RP1_25, r.RP1_7)
		assert.Less(t, r.RP1_7, r.RP2_4)
		assert.Less(t, r.RP2_4, r.RP3_2)
		if i > 0 {
			assert.Greater(t, r.Date, recs[i-1].Date)
		}
	}
	assert.Equal(t, history[len(history)-1].Time, recs[len(recs)-1].Date)
}
