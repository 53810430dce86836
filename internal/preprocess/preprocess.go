// SPDX-License-Identifier: MIT

// Package preprocess runs classical candidate reduction ahead of any quantum
// work. Each round excludes digits already placed in a cell's row, column or
// subunit and promotes cells with a single remaining candidate to givens,
// shrinking the search space the quantum circuits have to cover.
package preprocess

import (
	"errors"
	"fmt"
	"sort"

	"github.com/qsolv/qsudoku/internal/board"
)

// ErrUnsatisfiable marks a puzzle in which some empty cell has no remaining
// candidate digit.
var ErrUnsatisfiable = errors.New("preprocess: puzzle is unsatisfiable")

// Triple is one (row, column, digit) placement candidate.
type Triple struct {
	Row   int `json:"row"`
	Col   int `json:"col"`
	Digit int `json:"digit"`
}

// Result summarises a reduction run.
type Result struct {
	Rounds     int   `json:"rounds"`
	FixedCells []int `json:"fixedCells"` // cells promoted per round
	OpenCells  int   `json:"openCells"`
}

// Reducer holds the candidate state for one board. The board is mutated as
// cells get promoted.
type Reducer struct {
	b          *board.Board
	candidates map[board.Cell][]int
}

// New returns a reducer for b.
func New(b *board.Board) *Reducer {
	return &Reducer{b: b, candidates: make(map[board.Cell][]int)}
}

// invalidDigits collects every digit already placed in the row, column or
// subunit of (r, c).
func (p *Reducer) invalidDigits(r, c int) map[int]bool {
	invalid := make(map[int]bool)
	for cc := 0; cc < p.b.Cols(); cc++ {
		if v, _ := p.b.Get(r, cc); v != board.Empty {
			invalid[v] = true
		}
	}
	for rr := 0; rr < p.b.Rows(); rr++ {
		if v, _ := p.b.Get(rr, c); v != board.Empty {
			invalid[v] = true
		}
	}
	or, oc := p.b.SubunitOrigin(r, c)
	for rr := or; rr < or+p.b.UnitHeight(); rr++ {
		for cc := oc; cc < oc+p.b.UnitWidth(); cc++ {
			if v, _ := p.b.Get(rr, cc); v != board.Empty {
				invalid[v] = true
			}
		}
	}
	return invalid
}

// Round performs one digit-exclusion pass and promotes every cell whose
// candidate set collapsed to a single digit. It returns the number of cells
// promoted. A cell with no candidate left fails with ErrUnsatisfiable.
func (p *Reducer) Round() (int, error) {
	p.candidates = make(map[board.Cell][]int)
	type fix struct {
		cell  board.Cell
		digit int
	}
	var fixes []fix

	for r := 0; r < p.b.Rows(); r++ {
		for c := 0; c < p.b.Cols(); c++ {
			if v, _ := p.b.Get(r, c); v != board.Empty {
				continue
			}
			invalid := p.invalidDigits(r, c)
			var cands []int
			for d := 1; d <= p.b.Digits(); d++ {
				if !invalid[d] {
					cands = append(cands, d)
				}
			}
			switch len(cands) {
			case 0:
				return 0, fmt.Errorf("%w: cell (%d,%d) has no candidates", ErrUnsatisfiable, r, c)
			case 1:
				fixes = append(fixes, fix{board.Cell{Row: r, Col: c}, cands[0]})
			default:
				p.candidates[board.Cell{Row: r, Col: c}] = cands
			}
		}
	}

	for _, f := range fixes {
		if err := p.b.Set(f.cell.Row, f.cell.Col, f.digit); err != nil {
			return 0, err
		}
	}
	return len(fixes), nil
}

// Reduce runs rounds until a fixpoint or until maxRounds is exhausted.
func (p *Reducer) Reduce(maxRounds int) (Result, error) {
	res := Result{}
	for i := 0; maxRounds <= 0 || i < maxRounds; i++ {
		fixed, err := p.Round()
		if err != nil {
			return res, err
		}
		res.Rounds++
		res.FixedCells = append(res.FixedCells, fixed)
		if fixed == 0 {
			break
		}
	}
	res.OpenCells = len(p.candidates)
	return res, nil
}

// Candidates returns the remaining candidate digits per open cell, as of the
// last round.
func (p *Reducer) Candidates() map[board.Cell][]int {
	out := make(map[board.Cell][]int, len(p.candidates))
	for cell, cands := range p.candidates {
		cp := make([]int, len(cands))
		copy(cp, cands)
		out[cell] = cp
	}
	return out
}

// OpenTriples returns one triple per remaining (cell, candidate) pair, in
// deterministic row-major, digit-ascending order.
func (p *Reducer) OpenTriples() []Triple {
	var out []Triple
	for cell, cands := range p.candidates {
		for _, d := range cands {
			out = append(out, Triple{Row: cell.Row, Col: cell.Col, Digit: d})
		}
	}
	sortTriples(out)
	return out
}

// FixedTriples returns one triple per given on the board, in deterministic
// order.
func (p *Reducer) FixedTriples() []Triple {
	var out []Triple
	for r := 0; r < p.b.Rows(); r++ {
		for c := 0; c < p.b.Cols(); c++ {
			if v, _ := p.b.Get(r, c); v != board.Empty {
				out = append(out, Triple{Row: r, Col: c, Digit: v})
			}
		}
	}
	return out
}

func sortTriples(ts []Triple) {
	sort.Slice(ts, func(i, j int) bool {
		if ts[i].Row != ts[j].Row {
			return ts[i].Row < ts[j].Row
		}
		if ts[i].Col != ts[j].Col {
			return ts[i].Col < ts[j].Col
		}
		return ts[i].Digit < ts[j].Digit
	})
}
