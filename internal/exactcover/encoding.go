// SPDX-License-Identifier: MIT

// Package exactcover reduces the remaining candidate placements of a puzzle
// to an exact-cover instance and builds the counter-based Grover circuit
// over it: one qubit per subset, a binary counter per universe element, and
// an oracle that flips phase when every element is covered exactly once.
package exactcover

import (
	"fmt"

	"github.com/qsolv/qsudoku/internal/preprocess"
)

// Kind enumerates universe element families.
type Kind int

const (
	KindCell Kind = iota
	KindRow
	KindCol
	KindSubgrid
)

func (k Kind) String() string {
	switch k {
	case KindCell:
		return "cell"
	case KindRow:
		return "row"
	case KindCol:
		return "col"
	case KindSubgrid:
		return "subgrid"
	}
	return "unknown"
}

// Element is one universe element: a constraint that must be covered
// exactly once. For cells A/B are row/column; for rows and columns A is the
// row or column index; for subgrids A/B are the subgrid origin.
type Element struct {
	Kind  Kind
	A, B  int
	Digit int
}

// Subset is one choice the cover may take, together with the placements it
// commits to.
type Subset struct {
	Name       string
	Elements   []int // indexes into the instance universe
	Placements []preprocess.Triple
}

// Instance is a fully encoded exact-cover problem.
type Instance struct {
	Universe []Element
	Subsets  []Subset
}

// Encoding derives instances from the open triples of a reduced puzzle.
// unitSize is the subunit dimension (3 for 9x9 boards, 2 for 4x4, 1 for
// 2x2); boards with unitSize 1 have no subgrid constraint family, their
// subgrids coincide with cells.
type Encoding struct {
	open     []preprocess.Triple
	unitSize int
}

// New returns an encoding over the open triples.
func New(open []preprocess.Triple, unitSize int) (*Encoding, error) {
	if len(open) == 0 {
		return nil, fmt.Errorf("exactcover: no open triples")
	}
	if unitSize < 1 {
		return nil, fmt.Errorf("exactcover: invalid unit size %d", unitSize)
	}
	return &Encoding{open: open, unitSize: unitSize}, nil
}

func (e *Encoding) withSubgrids() bool { return e.unitSize >= 2 }

func (e *Encoding) elements(t preprocess.Triple) []Element {
	els := []Element{
		{Kind: KindCell, A: t.Row, B: t.Col},
		{Kind: KindRow, A: t.Row, Digit: t.Digit},
		{Kind: KindCol, A: t.Col, Digit: t.Digit},
	}
	if e.withSubgrids() {
		els = append(els, Element{
			Kind:  KindSubgrid,
			A:     (t.Row / e.unitSize) * e.unitSize,
			B:     (t.Col / e.unitSize) * e.unitSize,
			Digit: t.Digit,
		})
	}
	return els
}

// universe builds the deduplicated element list in first-appearance order
// over the open triples, plus the index lookup.
func (e *Encoding) universe() ([]Element, map[Element]int) {
	var universe []Element
	index := make(map[Element]int)
	add := func(el Element) {
		if _, ok := index[el]; !ok {
			index[el] = len(universe)
			universe = append(universe, el)
		}
	}
	// family by family, mirroring cell/row/col/subgrid universe order
	for _, t := range e.open {
		add(Element{Kind: KindCell, A: t.Row, B: t.Col})
	}
	for _, t := range e.open {
		add(Element{Kind: KindRow, A: t.Row, Digit: t.Digit})
	}
	for _, t := range e.open {
		add(Element{Kind: KindCol, A: t.Col, Digit: t.Digit})
	}
	if e.withSubgrids() {
		for _, t := range e.open {
			add(Element{
				Kind:  KindSubgrid,
				A:     (t.Row / e.unitSize) * e.unitSize,
				B:     (t.Col / e.unitSize) * e.unitSize,
				Digit: t.Digit,
			})
		}
	}
	return universe, index
}

// Simple encodes one subset per open triple: the placement covers its cell,
// row, column and subgrid elements.
func (e *Encoding) Simple() Instance {
	universe, index := e.universe()
	subsets := make([]Subset, 0, len(e.open))
	for i, t := range e.open {
		els := e.elements(t)
		idx := make([]int, len(els))
		for j, el := range els {
			idx[j] = index[el]
		}
		subsets = append(subsets, Subset{
			Name:       fmt.Sprintf("S_%d", i),
			Elements:   idx,
			Placements: []preprocess.Triple{t},
		})
	}
	return Instance{Universe: universe, Subsets: subsets}
}

// Patterns encodes one subset per (digit, pattern): the subset commits to
// every placement of the pattern that is not already fixed, covering the
// matching cell, row, column and subgrid elements.
func (e *Encoding) Patterns(patterns map[int][][]int, fixed []preprocess.Triple) Instance {
	universe, index := e.universe()

	omitted := make(map[int]map[[2]int]bool)
	for _, t := range fixed {
		if omitted[t.Digit] == nil {
			omitted[t.Digit] = make(map[[2]int]bool)
		}
		omitted[t.Digit][[2]int{t.Row, t.Col}] = true
	}

	var subsets []Subset
	n := 0
	maxDigit := 0
	for digit := range patterns {
		if digit > maxDigit {
			maxDigit = digit
		}
	}
	for digit := 1; digit <= maxDigit; digit++ {
		for _, p := range patterns[digit] {
			s := Subset{Name: fmt.Sprintf("S_%d", n)}
			seen := make(map[int]bool)
			for col, row := range p {
				if omitted[digit][[2]int{row, col}] {
					continue
				}
				t := preprocess.Triple{Row: row, Col: col, Digit: digit}
				s.Placements = append(s.Placements, t)
				for _, el := range e.elements(t) {
					if idx, ok := index[el]; ok && !seen[idx] {
						seen[idx] = true
						s.Elements = append(s.Elements, idx)
					}
				}
			}
			subsets = append(subsets, s)
			n++
		}
	}
	return Instance{Universe: universe, Subsets: subsets}
}
