package model

// RawPoint is a single observation of a feed at a point in time.
type RawPoint struct {
	Time  int64 // unix milliseconds
	Value float64
}

// CompositeRecord is one row of the merged valuation dataset.
type CompositeRecord struct {
	Date   int64  `json:"date"`
	Price  int64  `json:"price"`
	RP     int64  `json:"rp"`
	RP0_8  int64  `json:"rp_0_8"`
	RP1_25 int64  `json:"rp_1_25"`
	RP1_7  int64  `json:"rp_1_7"`
	RP2_4  int64  `json:"rp_2_4"`
	RP3_2  int64  `json:"rp_3_2"`
	STHRP  *int64 `json:"sth_rp"`
	LTHRP  *int64 `json:"lth_rp"`
}

// Bands returns the five multiplier bands in ascending multiplier order.
func (r CompositeRecord) Bands() [5]int64 {
	return [5]int64{r.RP0_8, r.RP1_25, r.RP1_7, r.RP2_4, r.RP3_2}
}
