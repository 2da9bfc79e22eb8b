// Package server exposes the aggregated dataset over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"RealizedBands/internal/model"
	"RealizedBands/internal/service"
)

// Aggregator produces the chart response.
type Aggregator interface {
	Aggregate(ctx context.Context) (*model.ChartResponse, error)
}

// Server represents the HTTP server
type Server struct {
	addr    string
	agg     Aggregator
	metrics http.Handler
	server  *http.Server
}

// New creates a server. metrics may be nil.
func New(addr string, agg Aggregator, metrics http.Handler) *Server {
	return &Server{addr: addr, agg: agg, metrics: metrics}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/realized-price", s.handleRealizedPrice)
	mux.HandleFunc("/health", s.handleHealth)
	if s.metrics != nil {
		mux.Handle("/metrics", s.metrics)
	}
	return mux
}

// Start blocks serving HTTP until Shutdown is called.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.Printf("[INFO] http server listening on %s", s.addr)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func (s *Server) handleRealizedPrice(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	resp, err := s.agg.Aggregate(r.Context())
	if err != nil {
		kind := service.KindOf(err)
		status := http.StatusInternalServerError
		msg := "internal error"
		if kind == service.KindUpstreamInsufficient {
			status = http.StatusServiceUnavailable
			msg = "insufficient upstream data"
		}
		log.Printf("[WARN] %s %s: %v", r.Method, r.URL.Path, err)
		writeJSON(w, status, errorBody{Error: msg, Kind: string(kind)})
		return
	}

	w.Header().Set("Cache-Control", "public, max-age=300")
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[ERROR] encode response: %v", err)
	}
}
