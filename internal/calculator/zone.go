package calculator

import (
	"errors"

	"RealizedBands/internal/model"
)

// Zone names where a price sits relative to the realized price bands.
type Zone string

const (
	ZoneDeepValue  Zone = "below_rp_0_8"
	ZoneValue      Zone = "rp_0_8_to_rp"
	ZoneFair       Zone = "rp_to_1_25"
	ZoneWarm       Zone = "1_25_to_1_7"
	ZoneHot        Zone = "1_7_to_2_4"
	ZoneOverheated Zone = "2_4_to_3_2"
	ZoneEuphoria   Zone = "above_3_2"
)

// Ratio returns price / realized price (MVRV-style multiple).
func Ratio(price, rp int64) (float64, error) {
	if rp <= 0 {
		return 0, errors.New("realized price must be positive")
	}
	return float64(price) / float64(rp), nil
}

// ClassifyZone returns the band interval containing price. Lower bounds are inclusive.
func ClassifyZone(price int64, rec model.CompositeRecord) (Zone, error) {
	if rec.RP <= 0 {
		return "", errors.New("record has no realized price")
	}
	switch {
	case price < rec.RP0_8:
		return ZoneDeepValue, nil
	case price < rec.RP:
		return ZoneValue, nil
	case price < rec.RP1_25:
		return ZoneFair, nil
	case price < rec.RP1_7:
		return ZoneWarm, nil
	case price < rec.RP2_4:
		return ZoneHot, nil
	case price < rec.RP3_2:
		return ZoneOverheated, nil
	default:
		return ZoneEuphoria, nil
	}
}

// Label returns a short human-readable description of the zone.
func (z Zone) Label() string {
	switch z {
	case ZoneDeepValue:
		return "deep value (below 0.8x RP)"
	case ZoneValue:
		return "value (0.8x to 1x RP)"
	case ZoneFair:
		return "fair (1x to 1.25x RP)"
	case ZoneWarm:
		return "warming (1.25x to 1.7x RP)"
	case ZoneHot:
		return "hot (1.7x to 2.4x RP)"
	case ZoneOverheated:
		return "overheated (2.4x to 3.2x RP)"
	case ZoneEuphoria:
		return "euphoria (above 3.2x RP)"
	default:
		return "unknown"
	}
}
