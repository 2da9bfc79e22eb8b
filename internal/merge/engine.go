// Package merge aligns the realized price series with the price history and
// produces the chart's composite records.
package merge

import (
	"errors"
	"fmt"
	"sort"

	"RealizedBands/internal/calculator"
	"RealizedBands/internal/model"
	"RealizedBands/internal/series"
)

// ErrInsufficientData means an upstream series was present but too sparse to chart.
var ErrInsufficientData = errors.New("insufficient upstream data")

// Inputs are the normalized sources of one aggregation cycle.
// STH and LTH may be nil.
type Inputs struct {
	Primary *series.DaySeries
	STH     *series.DaySeries
	LTH     *series.DaySeries
	History []model.RawPoint
}

// Engine merges day series into composite records. It holds no per-cycle state.
type Engine struct {
	cfg Config
}

// NewEngine creates an Engine. cfg is assumed valid.
func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// Config returns the engine thresholds.
func (e *Engine) Config() Config { return e.cfg }

// Gate rejects cycles whose primary series or price history is too sparse.
func (e *Engine) Gate(primary *series.DaySeries, history []model.RawPoint) error {
	if primary.Len() < e.cfg.MinCoverage {
		return fmt.Errorf("%w: realized price has %d days, need %d", ErrInsufficientData, primary.Len(), e.cfg.MinCoverage)
	}
	if len(history) < e.cfg.MinCoverage {
		return fmt.Errorf("%w: price history has %d points, need %d", ErrInsufficientData, len(history), e.cfg.MinCoverage)
	}
	return nil
}

// Window keeps positive prices at or after WindowStart, in time order.
func (e *Engine) Window(history []model.RawPoint) []model.RawPoint {
	start := e.cfg.WindowStart.UnixMilli()
	out := make([]model.RawPoint, 0, len(history))
	for _, p := range history {
		if p.Time >= start && p.Value > 0 {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time < out[j].Time })
	return out
}

// Resample keeps every Stride-th point and always ends on the last point.
func (e *Engine) Resample(points []model.RawPoint) []model.RawPoint {
	n := len(points)
	if n == 0 {
		return nil
	}
	stride := e.cfg.Stride
	out := make([]model.RawPoint, 0, n/stride+2)
	for i := 0; i < n; i += stride {
		out = append(out, points[i])
	}
	if (n-1)%stride != 0 {
		out = append(out, points[n-1])
	}
	return out
}

// Merge runs gate, window, resample and record construction.
func (e *Engine) Merge(in Inputs) ([]model.CompositeRecord, error) {
	if err := e.Gate(in.Primary, in.History); err != nil {
		return nil, err
	}
	windowed := e.Window(in.History)
	if len(windowed) == 0 {
		return nil, fmt.Errorf("%w: no positive prices after %s", ErrInsufficientData, e.cfg.WindowStart.Format("2006-01-02"))
	}
	kept := e.Resample(windowed)

	records := make([]model.CompositeRecord, 0, len(kept))
	for _, p := range kept {
		// gate guarantees coverage; a miss here means the point predates the series
		rp, _ := in.Primary.Lookup(p.Time)
		records = append(records, e.NewRecord(p.Time, p.Value, rp, lookup(in.STH, p.Time), lookup(in.LTH, p.Time)))
	}
	return records, nil
}

// NewRecord builds a record, deriving the multiplier bands from rp.
func (e *Engine) NewRecord(dateMs int64, price, rp float64, sth, lth *float64) model.CompositeRecord {
	b := calculator.Bands(rp, e.cfg.Multipliers[:])
	return model.CompositeRecord{
		Date:   dateMs,
		Price:  calculator.Round(price),
		RP:     calculator.Round(rp),
		RP0_8:  b[0],
		RP1_25: b[1],
		RP1_7:  b[2],
		RP2_4:  b[3],
		RP3_2:  b[4],
		STHRP:  roundPtr(sth),
		LTHRP:  roundPtr(lth),
	}
}

func lookup(s *series.DaySeries, ms int64) *float64 {
	v, ok := s.Lookup(ms)
	if !ok {
		return nil
	}
	return &v
}

func roundPtr(v *float64) *int64 {
	if v == nil {
		return nil
	}
	return model.Int64Ptr(calculator.Round(*v))
}
