package merge

import (
	"fmt"
	"time"
)

// Config holds the merge engine's thresholds.
type Config struct {
	// Multipliers for rp_0_8, rp_1_25, rp_1_7, rp_2_4, rp_3_2, strictly increasing.
	Multipliers [5]float64
	// WindowStart drops historical prices before this instant.
	WindowStart time.Time
	// Stride keeps every Stride-th windowed price point.
	Stride int
	// MinCoverage is the minimum number of primary days and history points.
	MinCoverage int
	// ReplaceAfter is the age of the last record past which a live tick is appended.
	ReplaceAfter time.Duration
}

// DefaultConfig returns the production thresholds.
func DefaultConfig() Config {
	return Config{
		Multipliers:  [5]float64{0.8, 1.25, 1.7, 2.4, 3.2},
		WindowStart:  time.Date(2018, time.January, 1, 0, 0, 0, 0, time.UTC),
		Stride:       4,
		MinCoverage:  100,
		ReplaceAfter: 12 * time.Hour,
	}
}

// Validate checks that the configuration can produce well-formed records.
func (c Config) Validate() error {
	if c.Multipliers[0] <= 0 {
		return fmt.Errorf("multipliers must be positive")
	}
	for i := 1; i < len(c.Multipliers); i++ {
		if c.Multipliers[i] <= c.Multipliers[i-1] {
			return fmt.Errorf("multipliers must be strictly increasing: %v", c.Multipliers)
		}
	}
	if c.Multipliers[0] >= 1 || c.Multipliers[1] <= 1 {
		return fmt.Errorf("multipliers must bracket 1.0: %v", c.Multipliers)
	}
	if c.Stride < 1 {
		return fmt.Errorf("stride must be >= 1, got %d", c.Stride)
	}
	if c.MinCoverage < 0 {
		return fmt.Errorf("min coverage must be >= 0, got %d", c.MinCoverage)
	}
	if c.ReplaceAfter <= 0 {
		return fmt.Errorf("replace_after must be positive")
	}
	return nil
}
