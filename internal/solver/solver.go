// SPDX-License-Identifier: MIT

// Package solver runs the full pipeline: classical candidate reduction,
// circuit construction for the chosen encoding, simulated execution and
// decoding of the measured bitstrings back onto the board.
package solver

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/qsolv/qsudoku/internal/board"
	"github.com/qsolv/qsudoku/internal/circuit"
	"github.com/qsolv/qsudoku/internal/exactcover"
	"github.com/qsolv/qsudoku/internal/grover"
	"github.com/qsolv/qsudoku/internal/log"
	"github.com/qsolv/qsudoku/internal/pattern"
	"github.com/qsolv/qsudoku/internal/preprocess"
	"github.com/qsolv/qsudoku/internal/sim"
)

var (
	// ErrTooLarge marks a circuit wider than the qubit budget.
	ErrTooLarge = errors.New("solver: circuit exceeds qubit budget")
	// ErrNoSolution marks a run whose measured outcomes decode to no valid
	// board.
	ErrNoSolution = errors.New("solver: no measured outcome solves the board")
)

// Strategy selects the circuit encoding.
type Strategy string

const (
	// StrategyPairs colors open fields so that constrained pairs differ.
	StrategyPairs Strategy = "pairs"
	// StrategyCoverSimple searches subset choices with one subset per
	// candidate placement.
	StrategyCoverSimple Strategy = "cover-simple"
	// StrategyCoverPattern searches subset choices with one subset per
	// per-digit placement pattern.
	StrategyCoverPattern Strategy = "cover-pattern"
)

// ParseStrategy maps a config string onto a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case StrategyPairs, StrategyCoverSimple, StrategyCoverPattern:
		return Strategy(s), nil
	}
	return "", fmt.Errorf("solver: unknown strategy %q", s)
}

// Options tune a solve run. Zero values fall back to defaults.
type Options struct {
	Strategy     Strategy `json:"strategy"`
	Shots        int      `json:"shots"`        // default 1024
	Seed         int64    `json:"seed"`         // simulator sampling seed
	MaxRounds    int      `json:"maxRounds"`    // reduction rounds, default 10
	Iterations   int      `json:"iterations"`   // 0 derives the count from the search space
	NumSolutions int      `json:"numSolutions"` // assumed solution count for cover encodings, default 1
	MaxQubits    int      `json:"maxQubits"`    // default sim.MaxQubits
}

func (o Options) withDefaults() Options {
	if o.Strategy == "" {
		o.Strategy = StrategyPairs
	}
	if o.Shots <= 0 {
		o.Shots = 1024
	}
	if o.MaxRounds == 0 {
		o.MaxRounds = 10
	}
	if o.NumSolutions <= 0 {
		o.NumSolutions = 1
	}
	if o.MaxQubits <= 0 {
		o.MaxQubits = sim.MaxQubits
	}
	return o
}

// Result reports a completed solve.
type Result struct {
	Board        *board.Board  `json:"-"`
	Grid         [][]int       `json:"grid"`
	Strategy     Strategy      `json:"strategy"`
	Rounds       int           `json:"rounds"`
	Classical    bool          `json:"classical"` // reduction alone finished the board
	Shots        int           `json:"shots,omitempty"`
	Iterations   int           `json:"iterations,omitempty"`
	Outcome      string        `json:"outcome,omitempty"`
	OutcomeCount int           `json:"outcomeCount,omitempty"`
	Circuit      circuit.Stats `json:"circuit,omitempty"`
}

// Runner executes a measured circuit and returns shot counts.
type Runner func(c *circuit.Circuit, shots int, seed int64) (sim.Counts, error)

// Deps are the solver's injectable dependencies.
type Deps struct {
	Runner Runner // defaults to sim.Run
}

// Solver executes solve runs. Safe for concurrent use.
type Solver struct {
	log zerolog.Logger
	run Runner
}

// New returns a Solver backed by the dense statevector simulator.
func New() *Solver {
	return NewWithDeps(Deps{})
}

// NewWithDeps returns a Solver with explicit dependencies.
func NewWithDeps(d Deps) *Solver {
	if d.Runner == nil {
		d.Runner = sim.Run
	}
	return &Solver{log: log.WithComponent("solver"), run: d.Runner}
}

// Solve reduces the board classically and, if cells remain open, runs the
// configured quantum strategy on the simulator. The input board is not
// mutated.
func (s *Solver) Solve(ctx context.Context, b *board.Board, opts Options) (*Result, error) {
	opts = opts.withDefaults()
	logger := log.WithContext(ctx, s.log)

	if !b.Valid() {
		return nil, fmt.Errorf("solver: board violates its constraints")
	}

	work := b.Clone()
	reducer := preprocess.New(work)
	red, err := reducer.Reduce(opts.MaxRounds)
	if err != nil {
		return nil, err
	}
	logger.Info().
		Str(log.FieldStrategy, string(opts.Strategy)).
		Int(log.FieldRounds, red.Rounds).
		Int("open_cells", red.OpenCells).
		Msg("reduction finished")

	res := &Result{Strategy: opts.Strategy, Rounds: red.Rounds}
	if work.Complete() {
		if !work.Solved() {
			return nil, fmt.Errorf("solver: reduction produced an invalid board")
		}
		res.Board = work
		res.Grid = grid(work)
		res.Classical = true
		return res, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	switch opts.Strategy {
	case StrategyPairs:
		err = s.solvePairs(ctx, work, opts, res)
	case StrategyCoverSimple, StrategyCoverPattern:
		err = s.solveCover(ctx, work, reducer, opts, res)
	default:
		err = fmt.Errorf("solver: unknown strategy %q", opts.Strategy)
	}
	if err != nil {
		return nil, err
	}
	res.Board = work
	res.Grid = grid(work)
	return res, nil
}

func (s *Solver) solvePairs(ctx context.Context, work *board.Board, opts Options, res *Result) error {
	builder, err := grover.New(work.OpenPairIndexes(), work.Givens(), work.UnitHeight(), work.UnitWidth())
	if err != nil {
		return err
	}

	iterations := opts.Iterations
	if iterations <= 0 {
		iterations = builder.Iterations()
	}
	if iterations < 1 {
		iterations = 1
	}

	c, err := builder.CircuitWithIterations(iterations)
	if err != nil {
		return err
	}
	if c.Qubits() > opts.MaxQubits {
		return fmt.Errorf("%w: %d qubits, budget %d", ErrTooLarge, c.Qubits(), opts.MaxQubits)
	}

	counts, err := s.run(c, opts.Shots, opts.Seed)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	for _, oc := range byCountDesc(counts) {
		assignment, err := builder.Decode(oc.bits)
		if err != nil {
			continue
		}
		trial := work.Clone()
		if applyAssignment(trial, assignment) && trial.Solved() {
			copyFields(work, trial)
			res.Shots = opts.Shots
			res.Iterations = iterations
			res.Outcome = oc.bits
			res.OutcomeCount = oc.n
			res.Circuit = c.Size()
			s.logOutcome(res)
			return nil
		}
	}
	return ErrNoSolution
}

func (s *Solver) solveCover(ctx context.Context, work *board.Board, reducer *preprocess.Reducer, opts Options, res *Result) error {
	open := reducer.OpenTriples()
	enc, err := exactcover.New(open, coverUnitSize(work))
	if err != nil {
		return err
	}

	var inst exactcover.Instance
	if opts.Strategy == StrategyCoverPattern {
		fixed := reducer.FixedTriples()
		patterns := pattern.New(open, fixed, work.Digits()).Generate()
		inst = enc.Patterns(patterns, fixed)
		if len(inst.Subsets) == 0 {
			return fmt.Errorf("solver: no placement patterns survive cleanup")
		}
	} else {
		inst = enc.Simple()
	}

	cc, err := exactcover.NewCircuit(inst, opts.NumSolutions)
	if err != nil {
		return err
	}
	if cc.Qubits() > opts.MaxQubits {
		return fmt.Errorf("%w: %d qubits, budget %d", ErrTooLarge, cc.Qubits(), opts.MaxQubits)
	}

	iterations := opts.Iterations
	if iterations <= 0 {
		iterations = cc.Iterations()
	}
	if iterations < 1 {
		iterations = 1
	}

	c, err := cc.Build(iterations)
	if err != nil {
		return err
	}
	counts, err := s.run(c, opts.Shots, opts.Seed)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	for _, oc := range byCountDesc(counts) {
		covers, err := cc.Covers(oc.bits)
		if err != nil {
			continue
		}
		trial := work.Clone()
		if applyCovers(trial, covers) && trial.Solved() {
			copyFields(work, trial)
			res.Shots = opts.Shots
			res.Iterations = iterations
			res.Outcome = oc.bits
			res.OutcomeCount = oc.n
			res.Circuit = c.Size()
			s.logOutcome(res)
			return nil
		}
	}
	return ErrNoSolution
}

func (s *Solver) logOutcome(res *Result) {
	s.log.Info().
		Str(log.FieldStrategy, string(res.Strategy)).
		Int(log.FieldShots, res.Shots).
		Int(log.FieldIterations, res.Iterations).
		Int(log.FieldQubits, res.Circuit.Qubits).
		Int(log.FieldGates, res.Circuit.Gates).
		Str("outcome", res.Outcome).
		Msg("solution found")
}

// coverUnitSize returns the subgrid dimension of the cover encoding. Boards
// without square subunits carry no subgrid constraint family.
func coverUnitSize(b *board.Board) int {
	if b.UnitHeight() == b.UnitWidth() {
		return b.UnitHeight()
	}
	return 1
}

func applyAssignment(b *board.Board, assignment map[int]int) bool {
	for idx, digit := range assignment {
		r, c := b.Position(idx)
		if err := b.Set(r, c, digit); err != nil {
			return false
		}
	}
	return true
}

func applyCovers(b *board.Board, covers []exactcover.Subset) bool {
	for _, s := range covers {
		for _, t := range s.Placements {
			if err := b.Set(t.Row, t.Col, t.Digit); err != nil {
				return false
			}
		}
	}
	return true
}

func copyFields(dst, src *board.Board) {
	for r := 0; r < src.Rows(); r++ {
		for c := 0; c < src.Cols(); c++ {
			v, _ := src.Get(r, c)
			if v == board.Empty {
				continue
			}
			_ = dst.Set(r, c, v)
		}
	}
}

func grid(b *board.Board) [][]int {
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

type outcome struct {
	bits string
	n    int
}

// byCountDesc orders outcomes by shot count, ties broken by bitstring for
// deterministic decode order.
func byCountDesc(counts sim.Counts) []outcome {
	out := make([]outcome, 0, len(counts))
	for bits, n := range counts {
		out = append(out, outcome{bits, n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].n != out[j].n {
			return out[i].n > out[j].n
		}
		return out[i].bits < out[j].bits
	})
	return out
}
