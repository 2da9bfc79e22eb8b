package calculator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"RealizedBands/internal/model"
)

func TestScaleRound(t *testing.T) {
	tests := []struct {
		v, m float64
		want int64
	}{
		{20000, 0.8, 16000},
		{20000, 1.25, 25000},
		{20000, 1.7, 34000},
		{20000, 2.4, 48000},
		{20000, 3.2, 64000},
		{22000, 1.25, 27500},
		{10001, 1.25, 12501}, // 12501.25
		{10002, 1.25, 12503}, // 12502.5 rounds up
		{0, 3.2, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ScaleRound(tt.v, tt.m), "%v x %v", tt.v, tt.m)
	}
}

func TestRound(t *testing.T) {
	assert.Equal(t, int64(21000), Round(21000.4))
	assert.Equal(t, int64(21001), Round(21000.5))
	assert.Equal(t, int64(0), Round(0.49))
}

func TestBands_Monotonic(t *testing.T) {
	mult := []float64{0.8, 1.25, 1.7, 2.4, 3.2}
	for _, rp := range []float64{7.3, 150, 4021.77, 19999.5, 56000} {
		b := Bands(rp, mult)
		require.Len(t, b, 5)
		r := Round(rp)
		assert.Less(t, b[0], r, "rp=%v", rp)
		assert.Less(t, r, b[1], "rp=%v", rp)
		for i := 1; i < len(b); i++ {
			assert.Less(t, b[i-1], b[i], "rp=%v", rp)
		}
	}
}

func TestRatio(t *testing.T) {
	r, err := Ratio(60000, 30000)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, r, 1e-9)

	_, err = Ratio(60000, 0)
	assert.Error(t, err)
}

func TestClassifyZone_AllBoundaries(t *testing.T) {
	rec := model.CompositeRecord{
		RP: 20000, RP0_8: 16000, RP1_25: 25000, RP1_7: 34000, RP2_4: 48000, RP3_2: 64000,
	}
	tests := []struct {
		price int64
		want  Zone
	}{
		{1000, ZoneDeepValue},
		{15999, ZoneDeepValue},
		{16000, ZoneValue},
		{19999, ZoneValue},
		{20000, ZoneFair},
		{25000, ZoneWarm},
		{34000, ZoneHot},
		{47999, ZoneHot},
		{48000, ZoneOverheated},
		{64000, ZoneEuphoria},
		{200000, ZoneEuphoria},
	}
	for _, tt := range tests {
		z, err := ClassifyZone(tt.price, rec)
		require.NoError(t, err)
		if z != tt.want {
			t.Errorf("price %d: expected %q, got %q", tt.price, tt.want, z)
		}
		assert.NotEqual(t, "unknown", z.Label())
	}

	_, err := ClassifyZone(100, model.CompositeRecord{})
	assert.Error(t, err)
}
