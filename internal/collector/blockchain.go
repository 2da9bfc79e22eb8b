package collector

import (
	"context"
	"net/http"
	"sort"

	"RealizedBands/internal/model"
)

// BlockchainFetcher reads the charts API market-price history.
type BlockchainFetcher struct {
	URL    string
	Client *http.Client
}

// NewBlockchainFetcher creates a history fetcher for the given chart URL.
func NewBlockchainFetcher(chartURL, proxyURL string) *BlockchainFetcher {
	return &BlockchainFetcher{URL: chartURL, Client: newHTTPClient(proxyURL)}
}

func (f *BlockchainFetcher) Name() string { return "Blockchain.com" }

// chartResponse is the charts API envelope. x is unix seconds.
type chartResponse struct {
	Status string `json:"status"`
	Values []struct {
		X int64   `json:"x"`
		Y float64 `json:"y"`
	} `json:"values"`
}

func (f *BlockchainFetcher) FetchHistory(ctx context.Context) ([]model.RawPoint, error) {
	const feed = "history"
	var chart chartResponse
	if err := getJSON(ctx, f.Client, feed, f.URL, &chart); err != nil {
		return nil, err
	}
	if chart.Status != "ok" {
		return nil, payloadErr(feed, "status %q", chart.Status)
	}
	if len(chart.Values) == 0 {
		return nil, payloadErr(feed, "no values returned")
	}

	points := make([]model.RawPoint, len(chart.Values))
	for i, v := range chart.Values {
		points[i] = model.RawPoint{Time: v.X * 1000, Value: v.Y}
	}
	sort.SliceStable(points, func(i, j int) bool { return points[i].Time < points[j].Time })
	return points, nil
}
