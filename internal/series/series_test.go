package series

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"RealizedBands/internal/model"
)

func day(y int, m time.Month, d int) int64 {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).UnixMilli()
}

func TestDayKey(t *testing.T) {
	midnight := day(2024, time.March, 5)
	tests := []struct {
		name string
		in   int64
		want int64
	}{
		{"midnight", midnight, midnight},
		{"intraday", midnight + 13*time.Hour.Milliseconds() + 17, midnight},
		{"last ms of day", midnight + DayMs - 1, midnight},
		{"epoch", 0, 0},
		{"before epoch", -1, -DayMs},
		{"exact negative day", -DayMs, -DayMs},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DayKey(tt.in))
		})
	}
}

func TestBuild_LastOneWins(t *testing.T) {
	d := day(2024, time.January, 1)
	s := Build([]model.RawPoint{
		{Time: d + 1000, Value: 1},
		{Time: d + 5000, Value: 2},
		{Time: d - DayMs, Value: 0.5},
		{Time: d + 3000, Value: 3},
	})

	require.Equal(t, 2, s.Len())
	v, ok := s.Lookup(d)
	require.True(t, ok)
	assert.Equal(t, 3.0, v)
	assert.Equal(t, []int64{d - DayMs, d}, s.Keys())
}

func TestLookup_ForwardFill(t *testing.T) {
	d1 := day(2023, time.June, 1)
	d2 := day(2023, time.June, 4)
	d3 := day(2023, time.June, 10)
	s := Build([]model.RawPoint{
		{Time: d3, Value: 30},
		{Time: d1, Value: 10},
		{Time: d2, Value: 20},
	})

	tests := []struct {
		name   string
		at     int64
		want   float64
		wantOK bool
	}{
		{"before first day", d1 - 1, 0, false},
		{"exact first", d1, 10, true},
		{"intraday first", d1 + 5*time.Hour.Milliseconds(), 10, true},
		{"gap after first", d1 + 2*DayMs, 10, true},
		{"exact second", d2, 20, true},
		{"day before third", d3 - 1, 20, true},
		{"exact third", d3, 30, true},
		{"far future", d3 + 400*DayMs, 30, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, ok := s.Lookup(tt.at)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, v)
		})
	}
}

func TestNilSeries(t *testing.T) {
	var s *DaySeries
	assert.Equal(t, 0, s.Len())
	_, ok := s.Lookup(day(2024, time.May, 1))
	assert.False(t, ok)
	_, _, ok = s.Latest()
	assert.False(t, ok)
	assert.Nil(t, s.Keys())

	assert.Nil(t, BuildOptional(nil))
	assert.NotNil(t, BuildOptional([]model.RawPoint{}))
}

func TestLatest(t *testing.T) {
	d := day(2024, time.February, 28)
	s := Build([]model.RawPoint{{Time: d, Value: 7}, {Time: d - DayMs, Value: 6}})
	k, v, ok := s.Latest()
	require.True(t, ok)
	assert.Equal(t, d, k)
	assert.Equal(t, 7.0, v)
}
