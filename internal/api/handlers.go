// SPDX-License-Identifier: MIT

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/qsolv/qsudoku/internal/board"
	"github.com/qsolv/qsudoku/internal/cache"
	"github.com/qsolv/qsudoku/internal/estimate"
	"github.com/qsolv/qsudoku/internal/library"
	"github.com/qsolv/qsudoku/internal/log"
	"github.com/qsolv/qsudoku/internal/solver"
)

type solveRequest struct {
	Grid         [][]int `json:"grid,omitempty"`
	Puzzle       string  `json:"puzzle,omitempty"` // library file name
	Strategy     string  `json:"strategy,omitempty"`
	Shots        int     `json:"shots,omitempty"`
	Seed         int64   `json:"seed,omitempty"`
	Iterations   int     `json:"iterations,omitempty"`
	NumSolutions int     `json:"numSolutions,omitempty"`
	Async        bool    `json:"async,omitempty"`
}

func (s *Server) handleSolve(w http.ResponseWriter, r *http.Request) {
	var req solveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}

	b, err := s.requestBoard(req.Grid, req.Puzzle)
	if err != nil {
		if errors.Is(err, library.ErrNotFound) {
			writeNotFound(w)
			return
		}
		writeError(w, http.StatusBadRequest, err)
		return
	}

	opts := s.cfg.SolveOptions()
	if req.Strategy != "" {
		strategy, err := solver.ParseStrategy(req.Strategy)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		opts.Strategy = strategy
	}
	if req.Shots > 0 {
		opts.Shots = req.Shots
	}
	if req.Seed != 0 {
		opts.Seed = req.Seed
	}
	if req.Iterations > 0 {
		opts.Iterations = req.Iterations
	}
	if req.NumSolutions > 0 {
		opts.NumSolutions = req.NumSolutions
	}

	if req.Async {
		job, err := s.manager.SubmitSolve(r.Context(), b, opts)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusAccepted, job)
		return
	}

	key := cache.Key(b, opts.Strategy)
	if res, ok := s.cache.Get(r.Context(), key); ok {
		writeJSON(w, http.StatusOK, res)
		return
	}

	res, err := s.solver.Solve(r.Context(), b, opts)
	if err != nil {
		switch {
		case errors.Is(err, solver.ErrTooLarge), errors.Is(err, solver.ErrNoSolution):
			writeError(w, http.StatusUnprocessableEntity, err)
		default:
			writeError(w, http.StatusBadRequest, err)
		}
		return
	}
	s.cache.Set(r.Context(), key, res)
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	job, err := s.manager.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if job == nil {
		writeNotFound(w)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	list, err := s.manager.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	writeJSON(w, http.StatusOK, map[string]any{"jobs": list})
}

func (s *Server) handleListPuzzles(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"puzzles": s.lib.List()})
}

func (s *Server) handleGetPuzzle(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	meta, err := s.lib.Get(name)
	if err != nil {
		writeNotFound(w)
		return
	}
	b, err := s.lib.Load(name)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"puzzle": meta, "grid": gridOf(b)})
}

type estimateRequest struct {
	Grid   [][]int `json:"grid,omitempty"`
	Puzzle string  `json:"puzzle,omitempty"`
}

func (s *Server) handleEstimate(w http.ResponseWriter, r *http.Request) {
	var req estimateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}

	b, err := s.requestBoard(req.Grid, req.Puzzle)
	if err != nil {
		if errors.Is(err, library.ErrNotFound) {
			writeNotFound(w)
			return
		}
		writeError(w, http.StatusBadRequest, err)
		return
	}

	res, err := s.estimator.Board(b)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	res.File = req.Puzzle
	if class, ok := estimate.Classify(req.Puzzle); ok {
		res.Class = class
	}

	if s.archive != nil && !res.Classical && res.File != "" {
		report := &estimate.Report{Files: []estimate.FileResult{*res}}
		if err := s.archive.Save(r.Context(), report); err != nil {
			log.FromContext(r.Context()).Warn().Err(err).Msg("archive estimate failed")
		}
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleSweep(w http.ResponseWriter, r *http.Request) {
	job, err := s.manager.SubmitSweep(r.Context(), s.lib.Dir())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusAccepted, job)
}

func (s *Server) handleRecentEstimates(w http.ResponseWriter, r *http.Request) {
	if s.archive == nil {
		writeJSON(w, http.StatusOK, map[string]any{"estimates": []any{}})
		return
	}
	rows, err := s.archive.Recent(r.Context(), 50)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"estimates": rows})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"uptime": time.Since(s.started).String(),
	})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if _, err := s.manager.List(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ready"})
}

// requestBoard resolves the puzzle of a request, either inline as a grid
// or by library file name.
func (s *Server) requestBoard(grid [][]int, puzzle string) (*board.Board, error) {
	switch {
	case len(grid) > 0 && puzzle != "":
		return nil, fmt.Errorf("grid and puzzle are mutually exclusive")
	case puzzle != "":
		return s.lib.Load(puzzle)
	case len(grid) > 0:
		return boardFromGrid(grid)
	default:
		return nil, fmt.Errorf("grid or puzzle is required")
	}
}

// boardFromGrid builds a square board from row-major values, 0 meaning
// empty. The size must be a perfect square.
func boardFromGrid(grid [][]int) (*board.Board, error) {
	size := len(grid)
	unit := int(math.Sqrt(float64(size)))
	if unit*unit != size {
		return nil, fmt.Errorf("grid size %d is not a perfect square", size)
	}
	b, err := board.New(unit, unit, unit, unit)
	if err != nil {
		return nil, err
	}
	for r, row := range grid {
		if len(row) != size {
			return nil, fmt.Errorf("row %d has %d values, want %d", r, len(row), size)
		}
		for c, v := range row {
			if v == 0 {
				continue
			}
			if err := b.Set(r, c, v); err != nil {
				return nil, err
			}
		}
	}
	return b, nil
}

func gridOf(b *board.Board) [][]int {
	out := make([][]int, b.Rows())
	for r := range out {
		out[r] = make([]int, b.Cols())
		for c := range out[r] {
			v, _ := b.Get(r, c)
			if v == board.Empty {
				v = 0
			}
			out[r][c] = v
		}
	}
	return out
}
