// SPDX-License-Identifier: MIT

// Package board models the Sudoku puzzle surface: a Grid of Subunits, each
// Subunit a rectangle of Fields. Fields are addressed either by (row, column)
// or by their row-major field index starting at 0 in the top-left corner.
package board

import (
	"fmt"
	"strings"
)

// Empty is the sentinel value of a field with no digit placed.
const Empty = -1

// Cell addresses a single field by row and column.
type Cell struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Pair is an ordered pair of cells that must not hold the same digit.
type Pair struct {
	A Cell `json:"a"`
	B Cell `json:"b"`
}

// Board is the full puzzle surface. Geometry is fixed at construction;
// field values are the only mutable state.
type Board struct {
	unitHeight int
	unitWidth  int
	gridHeight int
	gridWidth  int
	rows       int
	cols       int
	fields     []int // row-major, len rows*cols
}

// New returns a board with the given subunit and grid geometry, every field
// initialised to Empty. All dimensions must be positive.
func New(unitHeight, unitWidth, gridHeight, gridWidth int) (*Board, error) {
	if unitHeight < 1 || unitWidth < 1 || gridHeight < 1 || gridWidth < 1 {
		return nil, fmt.Errorf("board: invalid geometry %dx%d units in %dx%d grid",
			unitHeight, unitWidth, gridHeight, gridWidth)
	}
	b := &Board{
		unitHeight: unitHeight,
		unitWidth:  unitWidth,
		gridHeight: gridHeight,
		gridWidth:  gridWidth,
		rows:       unitHeight * gridHeight,
		cols:       unitWidth * gridWidth,
	}
	b.fields = make([]int, b.rows*b.cols)
	for i := range b.fields {
		b.fields[i] = Empty
	}
	return b, nil
}

// Rows returns the board height in fields.
func (b *Board) Rows() int { return b.rows }

// Cols returns the board width in fields.
func (b *Board) Cols() int { return b.cols }

// UnitHeight returns the subunit height in fields.
func (b *Board) UnitHeight() int { return b.unitHeight }

// UnitWidth returns the subunit width in fields.
func (b *Board) UnitWidth() int { return b.unitWidth }

// Digits returns the number of distinct digits the board uses, which equals
// the number of fields in one subunit.
func (b *Board) Digits() int { return b.unitHeight * b.unitWidth }

// Index returns the row-major field index for a cell.
func (b *Board) Index(r, c int) int { return r*b.cols + c }

// Position is the inverse of Index.
func (b *Board) Position(idx int) (r, c int) { return idx / b.cols, idx % b.cols }

// SubunitOrigin returns the top-left cell of the subunit containing (r, c).
func (b *Board) SubunitOrigin(r, c int) (int, int) {
	return r - r%b.unitHeight, c - c%b.unitWidth
}

func (b *Board) inBounds(r, c int) bool {
	return r >= 0 && r < b.rows && c >= 0 && c < b.cols
}

// Get returns the value of the field at (r, c).
func (b *Board) Get(r, c int) (int, error) {
	if !b.inBounds(r, c) {
		return 0, fmt.Errorf("board: cell (%d,%d) out of range %dx%d", r, c, b.rows, b.cols)
	}
	return b.fields[b.Index(r, c)], nil
}

// Set places v at (r, c). v must be Empty or in 1..Digits().
func (b *Board) Set(r, c, v int) error {
	if !b.inBounds(r, c) {
		return fmt.Errorf("board: cell (%d,%d) out of range %dx%d", r, c, b.rows, b.cols)
	}
	if v != Empty && (v < 1 || v > b.Digits()) {
		return fmt.Errorf("board: value %d out of range 1..%d", v, b.Digits())
	}
	b.fields[b.Index(r, c)] = v
	return nil
}

// Update applies several placements at once. Values and cells must have
// equal length; the first failing placement aborts with its error.
func (b *Board) Update(values []int, cells []Cell) error {
	if len(values) != len(cells) {
		return fmt.Errorf("board: %d values for %d cells", len(values), len(cells))
	}
	for i, cell := range cells {
		if err := b.Set(cell.Row, cell.Col, values[i]); err != nil {
			return err
		}
	}
	return nil
}

// Clone returns a deep copy of the board.
func (b *Board) Clone() *Board {
	cp := *b
	cp.fields = make([]int, len(b.fields))
	copy(cp.fields, b.fields)
	return &cp
}

// Givens returns every preset field keyed by field index.
func (b *Board) Givens() map[int]int {
	out := make(map[int]int)
	for idx, v := range b.fields {
		if v != Empty {
			out[idx] = v
		}
	}
	return out
}

// EmptyCount returns the number of empty fields.
func (b *Board) EmptyCount() int {
	n := 0
	for _, v := range b.fields {
		if v == Empty {
			n++
		}
	}
	return n
}

// OpenPairs returns every pair of fields that must differ for a valid
// solution, restricted to pairs where at least one field is still empty.
// The list is the minimum set to check: row and column pairs are walked
// forward only, and subunit pairs that coincide with a row or column pair
// are not emitted again.
func (b *Board) OpenPairs() []Pair {
	var pairs []Pair
	open := func(p, q int) bool { return p == Empty || q == Empty }

	for r := 0; r < b.rows; r++ {
		for c := 0; c < b.cols; c++ {
			cur := b.fields[b.Index(r, c)]
			for rr := r + 1; rr < b.rows; rr++ {
				if open(cur, b.fields[b.Index(rr, c)]) {
					pairs = append(pairs, Pair{Cell{r, c}, Cell{rr, c}})
				}
			}
			for cc := c + 1; cc < b.cols; cc++ {
				if open(cur, b.fields[b.Index(r, cc)]) {
					pairs = append(pairs, Pair{Cell{r, c}, Cell{r, cc}})
				}
			}
			or, oc := b.SubunitOrigin(r, c)
			for rr := or; rr < or+b.unitHeight; rr++ {
				for cc := oc; cc < oc+b.unitWidth; cc++ {
					// Same-row and same-column neighbours are already
					// covered above; only walk strictly downward.
					if rr == r || cc == c || rr <= r {
						continue
					}
					if open(cur, b.fields[b.Index(rr, cc)]) {
						pairs = append(pairs, Pair{Cell{r, c}, Cell{rr, cc}})
					}
				}
			}
		}
	}
	return pairs
}

// OpenPairIndexes returns OpenPairs translated to field-index tuples.
func (b *Board) OpenPairIndexes() [][2]int {
	pairs := b.OpenPairs()
	out := make([][2]int, len(pairs))
	for i, p := range pairs {
		out[i] = [2]int{b.Index(p.A.Row, p.A.Col), b.Index(p.B.Row, p.B.Col)}
	}
	return out
}

// Complete reports whether no field is empty.
func (b *Board) Complete() bool { return b.EmptyCount() == 0 }

// Valid reports whether no row, column or subunit contains a duplicate
// digit. Empty fields never count as duplicates.
func (b *Board) Valid() bool {
	seen := make(map[int]bool)
	check := func(cells []int) bool {
		for k := range seen {
			delete(seen, k)
		}
		for _, idx := range cells {
			v := b.fields[idx]
			if v == Empty {
				continue
			}
			if seen[v] {
				return false
			}
			seen[v] = true
		}
		return true
	}

	group := make([]int, 0, b.cols)
	for r := 0; r < b.rows; r++ {
		group = group[:0]
		for c := 0; c < b.cols; c++ {
			group = append(group, b.Index(r, c))
		}
		if !check(group) {
			return false
		}
	}
	for c := 0; c < b.cols; c++ {
		group = group[:0]
		for r := 0; r < b.rows; r++ {
			group = append(group, b.Index(r, c))
		}
		if !check(group) {
			return false
		}
	}
	for or := 0; or < b.rows; or += b.unitHeight {
		for oc := 0; oc < b.cols; oc += b.unitWidth {
			group = group[:0]
			for r := or; r < or+b.unitHeight; r++ {
				for c := oc; c < oc+b.unitWidth; c++ {
					group = append(group, b.Index(r, c))
				}
			}
			if !check(group) {
				return false
			}
		}
	}
	return true
}

// Solved reports whether the board is complete and valid.
func (b *Board) Solved() bool { return b.Complete() && b.Valid() }

// String renders the grid as text. Subunit borders are drawn heavier than
// field borders; empty fields render as dots.
func (b *Board) String() string {
	var sb strings.Builder
	width := len(fmt.Sprint(b.Digits()))

	horizontal := func() {
		sb.WriteString("+")
		for g := 0; g < b.gridWidth; g++ {
			sb.WriteString(strings.Repeat("-", b.unitWidth*(width+1)+1))
			sb.WriteString("+")
		}
		sb.WriteString("\n")
	}

	horizontal()
	for r := 0; r < b.rows; r++ {
		sb.WriteString("|")
		for c := 0; c < b.cols; c++ {
			v := b.fields[b.Index(r, c)]
			cell := strings.Repeat(".", width)
			if v != Empty {
				cell = fmt.Sprintf("%*d", width, v)
			}
			sb.WriteString(" " + cell)
			if (c+1)%b.unitWidth == 0 {
				sb.WriteString(" |")
			}
		}
		sb.WriteString("\n")
		if (r+1)%b.unitHeight == 0 {
			horizontal()
		}
	}
	return sb.String()
}
