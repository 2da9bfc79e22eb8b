package model

import "time"

// Feeds holds the settled result of one fan-out over the upstream sources.
// A nil slice or pointer means the feed was absent for this cycle.
type Feeds struct {
	RealizedPrice []RawPoint
	STH           []RawPoint
	LTH           []RawPoint
	History       []RawPoint
	LivePrice     *float64
	FetchedAt     time.Time
}

// ChartResponse is the payload served to chart and commentary consumers.
type ChartResponse struct {
	Data         []CompositeRecord `json:"data"`
	LatestRP     int64             `json:"latestRP"`
	LatestRPDate string            `json:"latestRPDate"`
	LatestSTH    *int64            `json:"latestSTH"`
	LatestLTH    *int64            `json:"latestLTH"`
	CurrentPrice int64             `json:"currentPrice"`
	UpdatedAt    time.Time         `json:"updatedAt"`
	Source       string            `json:"source"`
	Count        int               `json:"count"`
}

// Int64Ptr returns a pointer to v.
func Int64Ptr(v int64) *int64 { return &v }
