// Package server serves the dashboard views and its small JSON API.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Duddu64/economia/internal/dataset"
	"github.com/Duddu64/economia/internal/fetch"
	"github.com/Duddu64/economia/internal/loader"
	"github.com/Duddu64/economia/internal/refresh"
)

// RateSource fetches the interest series of the financing view.
type RateSource interface {
	Series(ctx context.Context, seriesID string, w *fetch.DateWindow) ([]dataset.InterestRateObservation, error)
}

// Server holds the handlers of the dashboard.
type Server struct {
	loader    *loader.Loader
	refresher *refresh.Refresher
	rates     RateSource
	series    string
	history   func(now time.Time) *fetch.DateWindow
	log       *zap.Logger
	now       func() time.Time

	router *mux.Router
}

// Option configures a Server.
type Option func(*Server)

// WithRateSeries selects the SGS series and the date window of the
// financing view.
func WithRateSeries(id string, history func(now time.Time) *fetch.DateWindow) Option {
	return func(s *Server) {
		if id != "" {
			s.series = id
		}
		if history != nil {
			s.history = history
		}
	}
}

// WithLogger sets the request logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// New builds the router of the dashboard.
func New(l *loader.Loader, ref *refresh.Refresher, rates RateSource, opts ...Option) *Server {
	s := &Server{
		loader:    l,
		refresher: ref,
		rates:     rates,
		series:    fetch.FinancingRateSeries,
		history:   func(time.Time) *fetch.DateWindow { return nil },
		log:       zap.NewNop(),
		now:       time.Now,
	}
	for _, o := range opts {
		o(s)
	}

	r := mux.NewRouter()
	r.Use(s.logRequests)
	r.HandleFunc("/", s.handleView).Methods(http.MethodGet)
	r.HandleFunc("/views/{view}", s.handleView).Methods(http.MethodGet)
	r.HandleFunc("/api/refresh", s.handleRefresh).Methods(http.MethodPost)
	r.HandleFunc("/api/reset", s.handleReset).Methods(http.MethodPost)
	r.HandleFunc("/api/data", s.handleData).Methods(http.MethodGet)
	r.HandleFunc("/api/download", s.handleDownload).Methods(http.MethodGet)
	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("took", time.Since(start)))
	})
}

// ListenAndServe serves on addr until ctx is done, then shuts down.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.log.Info("dashboard listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdown)
	})
	return g.Wait()
}
