package collector

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"RealizedBands/internal/model"
)

// MetricNames are the metric resources for the primary series and both cohorts.
type MetricNames struct {
	Primary string
	STH     string
	LTH     string
}

// FetchObserver receives one call per settled fetch. err is nil on success.
type FetchObserver interface {
	ObserveFetch(feed string, err error, took time.Duration)
}

// Collector fans out to every upstream feed and waits for all of them.
// Any failed feed becomes absent in the result; Collect never fails.
type Collector struct {
	Metrics     MetricFetcher
	History     HistoryFetcher
	Live        LivePriceFetcher
	Names       MetricNames
	Timeout     time.Duration
	LiveTimeout time.Duration
	Observer    FetchObserver
}

// NewCollector creates a Collector with the given fetchers and timeouts.
func NewCollector(metrics MetricFetcher, history HistoryFetcher, live LivePriceFetcher, names MetricNames, timeout, liveTimeout time.Duration) *Collector {
	return &Collector{
		Metrics:     metrics,
		History:     history,
		Live:        live,
		Names:       names,
		Timeout:     timeout,
		LiveTimeout: liveTimeout,
	}
}

// Source describes where the data comes from, for display.
func (c *Collector) Source() string {
	return fmt.Sprintf("%s (realized price, STH/LTH), %s (price history), %s (live price)",
		c.Metrics.Name(), c.History.Name(), c.Live.Name())
}

// Collect runs all fetches concurrently. Each has its own deadline; a slow or
// failing feed does not cancel the others.
func (c *Collector) Collect(ctx context.Context) *model.Feeds {
	feeds := &model.Feeds{}
	var wg sync.WaitGroup

	series := func(feed string, dst *[]model.RawPoint, fetch func(context.Context) ([]model.RawPoint, error)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.run(ctx, feed, c.Timeout, func(fctx context.Context) error {
				pts, err := fetch(fctx)
				if err == nil {
					*dst = pts
				}
				return err
			})
		}()
	}

	series("realized_price", &feeds.RealizedPrice, func(fctx context.Context) ([]model.RawPoint, error) {
		return c.Metrics.FetchMetric(fctx, c.Names.Primary)
	})
	series("sth_realized_price", &feeds.STH, func(fctx context.Context) ([]model.RawPoint, error) {
		return c.Metrics.FetchMetric(fctx, c.Names.STH)
	})
	series("lth_realized_price", &feeds.LTH, func(fctx context.Context) ([]model.RawPoint, error) {
		return c.Metrics.FetchMetric(fctx, c.Names.LTH)
	})
	series("price_history", &feeds.History, c.History.FetchHistory)

	wg.Add(1)
	go func() {
		defer wg.Done()
		c.run(ctx, "live_price", c.LiveTimeout, func(fctx context.Context) error {
			p, err := c.Live.FetchLivePrice(fctx)
			if err == nil {
				feeds.LivePrice = &p
			}
			return err
		})
	}()

	wg.Wait()
	feeds.FetchedAt = time.Now()
	return feeds
}

func (c *Collector) run(ctx context.Context, feed string, timeout time.Duration, fetch func(context.Context) error) {
	fctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	err := fetch(fctx)
	took := time.Since(start)
	if err != nil {
		log.Printf("[WARN] feed %s unavailable after %v (%s): %v", feed, took.Round(time.Millisecond), KindOf(err), err)
	}
	if c.Observer != nil {
		c.Observer.ObserveFetch(feed, err, took)
	}
}
