// Package series normalizes raw feeds to one value per UTC calendar day.
package series

import (
	"sort"

	"RealizedBands/internal/model"
)

// DayMs is the length of a UTC day in milliseconds.
const DayMs int64 = 24 * 60 * 60 * 1000

// DayKey truncates a unix-millisecond instant to its UTC midnight.
func DayKey(ms int64) int64 {
	k := ms - ms%DayMs
	if ms%DayMs < 0 {
		k -= DayMs
	}
	return k
}

// DaySeries maps day-keys to values. It is immutable once built.
// A nil *DaySeries is an absent series: Len is 0 and every lookup misses.
type DaySeries struct {
	values map[int64]float64
	keys   []int64 // ascending, unique
}

// Build normalizes points to day-keys. Later points for the same day overwrite
// earlier ones. The sorted key slice is derived once here.
func Build(points []model.RawPoint) *DaySeries {
	s := &DaySeries{values: make(map[int64]float64, len(points))}
	for _, p := range points {
		s.values[DayKey(p.Time)] = p.Value
	}
	s.keys = make([]int64, 0, len(s.values))
	for k := range s.values {
		s.keys = append(s.keys, k)
	}
	sort.Slice(s.keys, func(i, j int) bool { return s.keys[i] < s.keys[j] })
	return s
}

// BuildOptional returns nil for an absent feed.
func BuildOptional(points []model.RawPoint) *DaySeries {
	if points == nil {
		return nil
	}
	return Build(points)
}

// Len returns the number of distinct days.
func (s *DaySeries) Len() int {
	if s == nil {
		return 0
	}
	return len(s.keys)
}

// Lookup returns the value for the day containing ms, or the value of the
// nearest earlier day when that day has no entry (forward fill).
func (s *DaySeries) Lookup(ms int64) (float64, bool) {
	if s == nil || len(s.keys) == 0 {
		return 0, false
	}
	target := DayKey(ms)
	if v, ok := s.values[target]; ok {
		return v, true
	}
	// first index with key > target; the one before it is the floor
	i := sort.Search(len(s.keys), func(i int) bool { return s.keys[i] > target })
	if i == 0 {
		return 0, false
	}
	return s.values[s.keys[i-1]], true
}

// Latest returns the last day-key and its value.
func (s *DaySeries) Latest() (int64, float64, bool) {
	if s == nil || len(s.keys) == 0 {
		return 0, 0, false
	}
	k := s.keys[len(s.keys)-1]
	return k, s.values[k], true
}

// Keys returns a copy of the ascending day-keys.
func (s *DaySeries) Keys() []int64 {
	if s == nil {
		return nil
	}
	out := make([]int64, len(s.keys))
	copy(out, s.keys)
	return out
}
