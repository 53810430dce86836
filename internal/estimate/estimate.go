// SPDX-License-Identifier: MIT

// Package estimate sweeps a directory of puzzle CSVs and reports the qubit
// and gate counts both cover encodings would need per difficulty class,
// without building a single gate list.
package estimate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/qsolv/qsudoku/internal/board"
	"github.com/qsolv/qsudoku/internal/exactcover"
	"github.com/qsolv/qsudoku/internal/log"
	"github.com/qsolv/qsudoku/internal/pattern"
	"github.com/qsolv/qsudoku/internal/preprocess"
)

// Class buckets puzzle files by filename, the way the estimation data set is
// organised.
type Class string

const (
	Class4x4    Class = "4x4"
	ClassEasy   Class = "easy"
	ClassMedium Class = "medium"
	ClassHard   Class = "hard"
)

// Classify maps a puzzle filename onto its class. Files naming a 2x2 board
// and files matching no class are skipped (ok = false).
func Classify(name string) (Class, bool) {
	base := strings.ToLower(filepath.Base(name))
	if strings.Contains(base, "2x2") {
		return "", false
	}
	for _, c := range []Class{Class4x4, ClassEasy, ClassMedium, ClassHard} {
		if strings.Contains(base, string(c)) {
			return c, true
		}
	}
	return "", false
}

// FileResult carries both encoding estimates for one puzzle file.
type FileResult struct {
	File      string               `json:"file"`
	Class     Class                `json:"class"`
	Classical bool                 `json:"classical,omitempty"` // reduction left nothing to encode
	Simple    exactcover.Resources `json:"simple"`
	Pattern   exactcover.Resources `json:"pattern"`
}

// Average is the per-class mean over a sweep.
type Average struct {
	Qubits float64 `json:"qubits"`
	Gates  float64 `json:"gates"`
}

// Report is a finished sweep.
type Report struct {
	Files    []FileResult       `json:"files"`
	Averages map[string]Average `json:"averages"` // keyed <class>_simple / <class>_pattern
}

// Estimator runs resource sweeps. Safe for concurrent use.
type Estimator struct {
	log       zerolog.Logger
	maxRounds int
}

// New returns an Estimator. Reduction ahead of encoding runs the same two
// rounds the estimation data set was measured with.
func New() *Estimator {
	return &Estimator{log: log.WithComponent("estimate"), maxRounds: 2}
}

// Board estimates both encodings for a single board. The board is not
// mutated.
func (e *Estimator) Board(b *board.Board) (*FileResult, error) {
	work := b.Clone()
	reducer := preprocess.New(work)
	if _, err := reducer.Reduce(e.maxRounds); err != nil {
		return nil, err
	}

	open := reducer.OpenTriples()
	if len(open) == 0 {
		return &FileResult{Classical: true}, nil
	}

	enc, err := exactcover.New(open, coverUnitSize(work))
	if err != nil {
		return nil, err
	}

	res := &FileResult{}
	simple, err := exactcover.NewCircuit(enc.Simple(), 1)
	if err != nil {
		return nil, err
	}
	res.Simple = simple.Resources(simple.Iterations())

	fixed := reducer.FixedTriples()
	patterns := pattern.New(open, fixed, work.Digits()).Generate()
	inst := enc.Patterns(patterns, fixed)
	if len(inst.Subsets) == 0 {
		return nil, fmt.Errorf("estimate: no placement patterns survive cleanup")
	}
	patt, err := exactcover.NewCircuit(inst, 1)
	if err != nil {
		return nil, err
	}
	res.Pattern = patt.Resources(patt.Iterations())
	return res, nil
}

// File loads a puzzle CSV and estimates it.
func (e *Estimator) File(path string) (*FileResult, error) {
	b, err := board.LoadFile(path)
	if err != nil {
		return nil, err
	}
	res, err := e.Board(b)
	if err != nil {
		return nil, fmt.Errorf("estimate %s: %w", path, err)
	}
	res.File = filepath.Base(path)
	return res, nil
}

// SweepDir estimates every classifiable CSV in dir, in parallel, and
// averages the results per class and encoding.
func (e *Estimator) SweepDir(ctx context.Context, dir string) (*Report, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	type task struct {
		path  string
		class Class
	}
	var tasks []task
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		class, ok := Classify(entry.Name())
		if !ok {
			e.log.Debug().Str(log.FieldPath, entry.Name()).Msg("skipping unclassified file")
			continue
		}
		tasks = append(tasks, task{filepath.Join(dir, entry.Name()), class})
	}
	if len(tasks) == 0 {
		return nil, fmt.Errorf("estimate: no classifiable puzzles in %s", dir)
	}

	results := make([]*FileResult, len(tasks))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, t := range tasks {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := e.File(t.path)
			if err != nil {
				return err
			}
			res.Class = t.class
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &Report{Averages: make(map[string]Average)}
	for _, res := range results {
		report.Files = append(report.Files, *res)
	}
	sort.Slice(report.Files, func(i, j int) bool { return report.Files[i].File < report.Files[j].File })

	type acc struct {
		qubits, gates, n int
	}
	sums := make(map[string]*acc)
	add := func(key string, r exactcover.Resources) {
		a := sums[key]
		if a == nil {
			a = &acc{}
			sums[key] = a
		}
		a.qubits += r.Qubits
		a.gates += r.TotalGates
		a.n++
	}
	for _, res := range report.Files {
		if res.Classical {
			continue
		}
		add(string(res.Class)+"_simple", res.Simple)
		add(string(res.Class)+"_pattern", res.Pattern)
	}
	for key, a := range sums {
		report.Averages[key] = Average{
			Qubits: float64(a.qubits) / float64(a.n),
			Gates:  float64(a.gates) / float64(a.n),
		}
	}

	e.log.Info().Int("files", len(report.Files)).Str(log.FieldPath, dir).Msg("sweep finished")
	return report, nil
}

// coverUnitSize mirrors the solver's rule: only square subunits carry a
// subgrid constraint family.
func coverUnitSize(b *board.Board) int {
	if b.UnitHeight() == b.UnitWidth() {
		return b.UnitHeight()
	}
	return 1
}
