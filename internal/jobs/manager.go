// SPDX-License-Identifier: MIT

// Package jobs runs solve and estimation work asynchronously: submitted jobs
// are persisted, executed with bounded concurrency and their artifacts
// written atomically.
package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/qsolv/qsudoku/internal/board"
	"github.com/qsolv/qsudoku/internal/estimate"
	"github.com/qsolv/qsudoku/internal/log"
	"github.com/qsolv/qsudoku/internal/metrics"
	"github.com/qsolv/qsudoku/internal/solver"
)

// Deps holds the manager's dependencies.
type Deps struct {
	Store       Store
	Solver      *solver.Solver
	Estimator   *estimate.Estimator
	ArtifactDir string
	Concurrency int           // parallel jobs, default 2
	Timeout     time.Duration // per job, default 10m
	Clock       func() time.Time
}

// Manager schedules and executes jobs.
type Manager struct {
	log       zerolog.Logger
	store     Store
	solver    *solver.Solver
	estimator *estimate.Estimator
	dir       string
	timeout   time.Duration
	clock     func() time.Time

	sem chan struct{}
	wg  sync.WaitGroup
}

// NewManager returns a Manager. The artifact directory is created if
// missing.
func NewManager(d Deps) (*Manager, error) {
	if d.Store == nil {
		return nil, fmt.Errorf("jobs: store is required")
	}
	if d.Solver == nil {
		d.Solver = solver.New()
	}
	if d.Estimator == nil {
		d.Estimator = estimate.New()
	}
	if d.Concurrency <= 0 {
		d.Concurrency = 2
	}
	if d.Timeout <= 0 {
		d.Timeout = 10 * time.Minute
	}
	if d.Clock == nil {
		d.Clock = time.Now
	}
	if d.ArtifactDir != "" {
		if err := os.MkdirAll(d.ArtifactDir, 0o750); err != nil {
			return nil, fmt.Errorf("jobs: create artifact dir: %w", err)
		}
	}
	return &Manager{
		log:       log.WithComponent("jobs"),
		store:     d.Store,
		solver:    d.Solver,
		estimator: d.Estimator,
		dir:       d.ArtifactDir,
		timeout:   d.Timeout,
		clock:     d.Clock,
		sem:       make(chan struct{}, d.Concurrency),
	}, nil
}

// SubmitSolve queues a solve job for the board.
func (m *Manager) SubmitSolve(ctx context.Context, b *board.Board, opts solver.Options) (*Job, error) {
	job := &Job{
		ID:        uuid.NewString(),
		Kind:      KindSolve,
		State:     StatePending,
		CreatedAt: m.clock(),
		Puzzle:    boardGrid(b),
		Options:   opts,
	}
	if err := m.store.Put(ctx, job); err != nil {
		return nil, err
	}
	m.start(job.ID, func(runCtx context.Context) (string, error) {
		return m.runSolve(runCtx, job.ID, b.Clone(), opts)
	})
	return job, nil
}

// SubmitSweep queues a resource estimation sweep over dir.
func (m *Manager) SubmitSweep(ctx context.Context, dir string) (*Job, error) {
	job := &Job{
		ID:        uuid.NewString(),
		Kind:      KindSweep,
		State:     StatePending,
		CreatedAt: m.clock(),
		SweepDir:  dir,
	}
	if err := m.store.Put(ctx, job); err != nil {
		return nil, err
	}
	m.start(job.ID, func(runCtx context.Context) (string, error) {
		return m.runSweep(runCtx, job.ID, dir)
	})
	return job, nil
}

// Get returns a job by ID, or nil when unknown.
func (m *Manager) Get(ctx context.Context, id string) (*Job, error) {
	return m.store.Get(ctx, id)
}

// List returns all known jobs.
func (m *Manager) List(ctx context.Context) ([]*Job, error) {
	return m.store.List(ctx)
}

// Close waits for running jobs to finish.
func (m *Manager) Close() {
	m.wg.Wait()
}

func (m *Manager) start(id string, run func(context.Context) (string, error)) {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.sem <- struct{}{}
		defer func() { <-m.sem }()

		ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
		defer cancel()
		ctx = log.ContextWithJobID(ctx, id)
		logger := log.WithContext(ctx, m.log)

		metrics.JobStarted()
		started := m.clock()
		if _, err := m.store.Update(ctx, id, func(j *Job) error {
			j.State = StateRunning
			j.StartedAt = started
			return nil
		}); err != nil {
			logger.Error().Err(err).Msg("mark job running")
		}

		artifact, err := run(ctx)
		finished := m.clock()
		state := StateDone
		if err != nil {
			state = StateFailed
		}
		if _, uerr := m.store.Update(ctx, id, func(j *Job) error {
			j.State = state
			j.FinishedAt = finished
			if err != nil {
				j.Error = err.Error()
			}
			j.ArtifactPath = artifact
			return nil
		}); uerr != nil {
			logger.Error().Err(uerr).Msg("record job outcome")
		}
		metrics.JobFinished(string(state))

		if err != nil {
			logger.Error().Err(err).Msg("job failed")
			return
		}
		logger.Info().Str("state", string(state)).Msg("job finished")
	}()
}

func (m *Manager) runSolve(ctx context.Context, id string, b *board.Board, opts solver.Options) (string, error) {
	started := m.clock()
	res, err := m.solver.Solve(ctx, b, opts)
	seconds := m.clock().Sub(started).Seconds()
	if err != nil {
		metrics.RecordSolve(string(opts.Strategy), "failed", seconds)
		return "", err
	}

	outcome := "solved"
	if res.Classical {
		outcome = "classical"
	} else {
		metrics.RecordCircuit(string(res.Strategy), res.Circuit.Qubits, res.Circuit.Gates)
	}
	metrics.RecordSolve(string(res.Strategy), outcome, seconds)

	if _, err := m.store.Update(ctx, id, func(j *Job) error {
		j.Result = res
		return nil
	}); err != nil {
		return "", err
	}

	if m.dir == "" {
		return "", nil
	}
	path := filepath.Join(m.dir, id+".csv")
	if err := writeBoardAtomic(ctx, path, res.Board); err != nil {
		return "", err
	}
	return path, nil
}

func (m *Manager) runSweep(ctx context.Context, id, dir string) (string, error) {
	report, err := m.estimator.SweepDir(ctx, dir)
	if err != nil {
		metrics.RecordEstimateSweep("failure", 0)
		return "", err
	}
	metrics.RecordEstimateSweep("success", len(report.Files))

	if _, err := m.store.Update(ctx, id, func(j *Job) error {
		j.Report = report
		return nil
	}); err != nil {
		return "", err
	}

	if m.dir == "" {
		return "", nil
	}
	path := filepath.Join(m.dir, id+".json")
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", err
	}
	if err := writeFileAtomic(ctx, path, data); err != nil {
		return "", err
	}
	return path, nil
}

func boardGrid(b *board.Board) [][]int {
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
