// SPDX-License-Identifier: MIT

// Package api exposes the solver service over HTTP: synchronous and
// asynchronous solves, job inspection, the puzzle library and resource
// estimation.
package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/qsolv/qsudoku/internal/cache"
	"github.com/qsolv/qsudoku/internal/config"
	"github.com/qsolv/qsudoku/internal/estimate"
	"github.com/qsolv/qsudoku/internal/jobs"
	"github.com/qsolv/qsudoku/internal/library"
	"github.com/qsolv/qsudoku/internal/log"
	"github.com/qsolv/qsudoku/internal/solver"
)

// Deps are the server's collaborators. Store, Manager and Library are
// required; Cache and Archive degrade gracefully when absent.
type Deps struct {
	Config    *config.Config
	Solver    *solver.Solver
	Estimator *estimate.Estimator
	Manager   *jobs.Manager
	Library   *library.Library
	Cache     cache.Cache
	Archive   *estimate.Archive
}

// Server handles HTTP requests.
type Server struct {
	cfg       *config.Config
	solver    *solver.Solver
	estimator *estimate.Estimator
	manager   *jobs.Manager
	lib       *library.Library
	cache     cache.Cache
	archive   *estimate.Archive
	logger    zerolog.Logger
	started   time.Time
}

// New validates deps and returns a Server.
func New(d Deps) (*Server, error) {
	if d.Config == nil {
		return nil, fmt.Errorf("api: config is required")
	}
	if d.Manager == nil {
		return nil, fmt.Errorf("api: job manager is required")
	}
	if d.Library == nil {
		return nil, fmt.Errorf("api: library is required")
	}
	if d.Solver == nil {
		d.Solver = solver.New()
	}
	if d.Estimator == nil {
		d.Estimator = estimate.New()
	}
	if d.Cache == nil {
		d.Cache = cache.NoOp{}
	}
	return &Server{
		cfg:       d.Config,
		solver:    d.Solver,
		estimator: d.Estimator,
		manager:   d.Manager,
		lib:       d.Library,
		cache:     d.Cache,
		archive:   d.Archive,
		logger:    log.WithComponent("api"),
		started:   time.Now(),
	}, nil
}

// Router builds the HTTP routing tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(recoverer)
	r.Use(requestID)
	r.Use(s.accessLog)

	r.Get("/healthz", s.handleHealthz)
	r.Get("/readyz", s.handleReadyz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(httprate.Limit(
			s.cfg.RateLimit,
			time.Minute,
			httprate.WithKeyFuncs(httprate.KeyByIP),
			httprate.WithLimitHandler(rateLimited),
		))
		r.Use(s.auth)

		r.Post("/api/solve", s.handleSolve)
		r.Get("/api/jobs", s.handleListJobs)
		r.Get("/api/jobs/{id}", s.handleGetJob)
		r.Get("/api/puzzles", s.handleListPuzzles)
		r.Get("/api/puzzles/{name}", s.handleGetPuzzle)
		r.Post("/api/estimate", s.handleEstimate)
		r.Post("/api/estimate/sweep", s.handleSweep)
		r.Get("/api/estimates", s.handleRecentEstimates)
	})

	return r
}
