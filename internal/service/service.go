// Package service runs one aggregation cycle: fetch, normalize, merge,
// reconcile the live tick and assemble the chart response.
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"RealizedBands/internal/cache"
	"RealizedBands/internal/calculator"
	"RealizedBands/internal/merge"
	"RealizedBands/internal/model"
	"RealizedBands/internal/series"
)

// Source supplies the upstream feeds of one cycle.
type Source interface {
	Collect(ctx context.Context) *model.Feeds
	Source() string
}

// Observer receives aggregation and cache outcomes.
type Observer interface {
	ObserveAggregation(result string, records int, took time.Duration)
	ObserveCache(hit bool)
}

// Service serves the merged dataset, reusing a cached result while it is fresh.
type Service struct {
	source   Source
	engine   *merge.Engine
	store    cache.Store
	ttl      time.Duration
	observer Observer
	now      func() time.Time
	group    singleflight.Group
}

// Option configures a Service.
type Option func(*Service)

// WithCache sets the snapshot store and how long a snapshot is served.
func WithCache(store cache.Store, ttl time.Duration) Option {
	return func(s *Service) {
		s.store = store
		s.ttl = ttl
	}
}

// WithObserver sets the metrics observer.
func WithObserver(o Observer) Option {
	return func(s *Service) { s.observer = o }
}

// WithClock overrides the wall clock used for the live tick.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New creates a Service. Without WithCache every call aggregates.
func New(source Source, engine *merge.Engine, opts ...Option) *Service {
	s := &Service{
		source: source,
		engine: engine,
		store:  cache.NewNoopStore(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Aggregate returns a cached response when one is younger than the TTL, otherwise
// aggregates. Concurrent misses share one aggregation.
func (s *Service) Aggregate(ctx context.Context) (*model.ChartResponse, error) {
	if s.ttl > 0 {
		snap, err := s.store.Latest(ctx, s.ttl)
		if err != nil {
			log.Printf("[WARN] cache lookup failed: %v", err)
		}
		if snap != nil {
			s.observeCache(true)
			return snap.Response, nil
		}
		s.observeCache(false)
	}
	return s.Refresh(ctx)
}

// Refresh aggregates from the upstream feeds, bypassing the cache, and stores
// the result on success. The shared run ignores caller cancellation; only the
// per-feed timeouts bound it.
func (s *Service) Refresh(ctx context.Context) (*model.ChartResponse, error) {
	v, err, _ := s.group.Do("aggregate", func() (any, error) {
		ctx := context.WithoutCancel(ctx)
		resp, err := s.aggregate(ctx)
		if err != nil {
			return nil, err
		}
		if s.ttl > 0 {
			if err := s.store.Save(ctx, cache.NewSnapshot(resp)); err != nil {
				log.Printf("[WARN] cache save failed: %v", err)
			}
		}
		return resp, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*model.ChartResponse), nil
}

func (s *Service) aggregate(ctx context.Context) (resp *model.ChartResponse, err error) {
	runID := uuid.NewString()[:8]
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			log.Printf("[ERROR] aggregation %s panicked: %v\n%s", runID, r, debug.Stack())
			resp, err = nil, &Error{Kind: KindInternal, Message: "internal error", Err: fmt.Errorf("panic: %v", r)}
		}
		result, n := "ok", 0
		if err != nil {
			result = string(errorKind(err))
			log.Printf("[ERROR] aggregation %s failed after %v: %v", runID, time.Since(start).Round(time.Millisecond), err)
		} else {
			n = resp.Count
			log.Printf("[INFO] aggregation %s: %d records in %v", runID, n, time.Since(start).Round(time.Millisecond))
		}
		if s.observer != nil {
			s.observer.ObserveAggregation(result, n, time.Since(start))
		}
	}()

	feeds := s.source.Collect(ctx)
	resp, err = s.build(feeds)
	if err != nil {
		if errors.Is(err, merge.ErrInsufficientData) {
			return nil, &Error{Kind: KindUpstreamInsufficient, Message: "insufficient upstream data", Err: err}
		}
		return nil, &Error{Kind: KindInternal, Message: "internal error", Err: err}
	}
	resp.Source = s.source.Source()
	return resp, nil
}

// build turns settled feeds into a response. It has no side effects.
func (s *Service) build(feeds *model.Feeds) (*model.ChartResponse, error) {
	in := merge.Inputs{
		Primary: series.BuildOptional(feeds.RealizedPrice),
		STH:     series.BuildOptional(feeds.STH),
		LTH:     series.BuildOptional(feeds.LTH),
		History: feeds.History,
	}

	records, err := s.engine.Merge(in)
	if err != nil {
		return nil, err
	}
	now := s.now()
	records = s.engine.Reconcile(records, feeds.LivePrice, now, in)
	if len(records) == 0 {
		return nil, errors.New("merge produced no records")
	}

	resp := &model.ChartResponse{
		Data:         records,
		CurrentPrice: merge.CurrentPrice(feeds.LivePrice, feeds.History, records),
		UpdatedAt:    now.UTC(),
		Count:        len(records),
	}
	if day, rp, ok := in.Primary.Latest(); ok {
		resp.LatestRP = calculator.Round(rp)
		resp.LatestRPDate = time.UnixMilli(day).UTC().Format("2006-01-02")
	}
	resp.LatestSTH = latest(in.STH)
	resp.LatestLTH = latest(in.LTH)
	return resp, nil
}

func latest(s *series.DaySeries) *int64 {
	_, v, ok := s.Latest()
	if !ok {
		return nil
	}
	return model.Int64Ptr(calculator.Round(v))
}

func (s *Service) observeCache(hit bool) {
	if s.observer != nil {
		s.observer.ObserveCache(hit)
	}
}

func errorKind(err error) ErrorKind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}

// KindOf returns the failure kind of an error from Aggregate or Refresh.
func KindOf(err error) ErrorKind { return errorKind(err) }
