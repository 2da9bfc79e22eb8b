package collector

import (
	"context"
	"net/http"
)

// CoinGeckoFetcher reads the simple price endpoint: {"<coin>": {"<currency>": price}}.
type CoinGeckoFetcher struct {
	URL        string
	CoinID     string
	VsCurrency string
	Client     *http.Client
}

// NewCoinGeckoFetcher creates a live price fetcher.
func NewCoinGeckoFetcher(priceURL, proxyURL string) *CoinGeckoFetcher {
	return &CoinGeckoFetcher{
		URL:        priceURL,
		CoinID:     "bitcoin",
		VsCurrency: "usd",
		Client:     newHTTPClient(proxyURL),
	}
}

func (f *CoinGeckoFetcher) Name() string { return "CoinGecko" }

func (f *CoinGeckoFetcher) FetchLivePrice(ctx context.Context) (float64, error) {
	const feed = "live"
	var result map[string]map[string]float64
	if err := getJSON(ctx, f.Client, feed, f.URL, &result); err != nil {
		return 0, err
	}
	price, ok := result[f.CoinID][f.VsCurrency]
	if !ok {
		return 0, payloadErr(feed, "missing %s.%s", f.CoinID, f.VsCurrency)
	}
	if price <= 0 {
		return 0, payloadErr(feed, "non-positive price %v", price)
	}
	return price, nil
}
