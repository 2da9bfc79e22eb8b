package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// ErrorKind classifies why a feed was absent.
type ErrorKind string

const (
	KindTransport ErrorKind = "transport"
	KindStatus    ErrorKind = "status"
	KindPayload   ErrorKind = "payload"
)

// FeedError describes a failed fetch. The collector turns it into absence.
type FeedError struct {
	Feed string
	Kind ErrorKind
	Err  error
}

func (e *FeedError) Error() string {
	return fmt.Sprintf("%s %s error: %v", e.Feed, e.Kind, e.Err)
}

func (e *FeedError) Unwrap() error { return e.Err }

// KindOf returns the classification of err, or KindTransport when unknown.
func KindOf(err error) ErrorKind {
	var fe *FeedError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindTransport
}

func payloadErr(feed string, format string, args ...any) error {
	return &FeedError{Feed: feed, Kind: KindPayload, Err: fmt.Errorf(format, args...)}
}

// newHTTPClient builds a client with optional proxy support.
func newHTTPClient(proxyURL string) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &http.Client{
		Timeout:   30 * time.Second,
		Transport: transport,
	}
}

// getJSON issues a GET and decodes a 200 response body into out.
func getJSON(ctx context.Context, client *http.Client, feed, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return &FeedError{Feed: feed, Kind: KindTransport, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := client.Do(req)
	if err != nil {
		return &FeedError{Feed: feed, Kind: KindTransport, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &FeedError{Feed: feed, Kind: KindTransport, Err: fmt.Errorf("read body: %w", err)}
	}
	if resp.StatusCode != http.StatusOK {
		return &FeedError{Feed: feed, Kind: KindStatus, Err: fmt.Errorf("status %d", resp.StatusCode)}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &FeedError{Feed: feed, Kind: KindPayload, Err: fmt.Errorf("decode: %w", err)}
	}
	return nil
}
