// SPDX-License-Identifier: MIT

package jobs

import (
	"context"
	"time"

	"github.com/qsolv/qsudoku/internal/estimate"
	"github.com/qsolv/qsudoku/internal/solver"
)

// Kind names the work a job performs.
type Kind string

const (
	KindSolve Kind = "solve"
	KindSweep Kind = "sweep"
)

// State is a job lifecycle state.
type State string

const (
	StatePending State = "pending"
	StateRunning State = "running"
	StateDone    State = "done"
	StateFailed  State = "failed"
)

// Terminal reports whether the state is final.
func (s State) Terminal() bool { return s == StateDone || s == StateFailed }

// Job is one unit of background work together with its outcome.
type Job struct {
	ID         string    `json:"id"`
	Kind       Kind      `json:"kind"`
	State      State     `json:"state"`
	CreatedAt  time.Time `json:"createdAt"`
	StartedAt  time.Time `json:"startedAt,omitempty"`
	FinishedAt time.Time `json:"finishedAt,omitempty"`
	Error      string    `json:"error,omitempty"`

	// solve jobs
	Puzzle  [][]int        `json:"puzzle,omitempty"`
	Options solver.Options `json:"options,omitempty"`
	Result  *solver.Result `json:"result,omitempty"`

	// sweep jobs
	SweepDir string           `json:"sweepDir,omitempty"`
	Report   *estimate.Report `json:"report,omitempty"`

	// artifact written on success (solution CSV or report JSON)
	ArtifactPath string `json:"artifactPath,omitempty"`
}

// Store persists jobs. Implementations must be safe for concurrent use.
type Store interface {
	Put(ctx context.Context, job *Job) error
	Get(ctx context.Context, id string) (*Job, error)
	Update(ctx context.Context, id string, fn func(*Job) error) (*Job, error)
	List(ctx context.Context) ([]*Job, error)
}
