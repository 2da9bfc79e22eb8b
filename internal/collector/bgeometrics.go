package collector

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"RealizedBands/internal/model"
)

// BGeometricsFetcher reads metric files shaped as [[timestampMs, value], ...].
type BGeometricsFetcher struct {
	BaseURL string
	Client  *http.Client
}

// NewBGeometricsFetcher creates a metric fetcher rooted at baseURL.
func NewBGeometricsFetcher(baseURL, proxyURL string) *BGeometricsFetcher {
	return &BGeometricsFetcher{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  newHTTPClient(proxyURL),
	}
}

func (f *BGeometricsFetcher) Name() string { return "BGeometrics" }

func (f *BGeometricsFetcher) FetchMetric(ctx context.Context, name string) ([]model.RawPoint, error) {
	feed := "metric/" + name
	endpoint := fmt.Sprintf("%s/%s.json", f.BaseURL, url.PathEscape(name))

	var pairs [][]*float64
	if err := getJSON(ctx, f.Client, feed, endpoint, &pairs); err != nil {
		return nil, err
	}

	points := make([]model.RawPoint, 0, len(pairs))
	for _, p := range pairs {
		if len(p) != 2 || p[0] == nil || p[1] == nil {
			continue // gaps are published as nulls
		}
		points = append(points, model.RawPoint{Time: int64(*p[0]), Value: *p[1]})
	}
	if len(points) == 0 {
		return nil, payloadErr(feed, "no data points")
	}
	sort.SliceStable(points, func(i, j int) bool { return points[i].Time < points[j].Time })
	return points, nil
}
