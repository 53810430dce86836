// SPDX-License-Identifier: MIT

// Package pattern expands candidate placements into per-digit placement
// patterns. A pattern for digit d assigns one row to every column, so that d
// appears exactly once per column; only patterns whose rows form a
// permutation (one appearance per row too) survive cleanup. The exact-cover
// pattern encoding builds its subsets from these.
package pattern

import (
	"sort"

	"github.com/qsolv/qsudoku/internal/preprocess"
)

const unset = -1

// Generator derives placement patterns from the open and fixed triples of a
// reduced puzzle.
type Generator struct {
	open  []preprocess.Triple
	fixed []preprocess.Triple
	size  int // digits per board, equals rows and columns
}

// New returns a generator for a board with size digits.
func New(open, fixed []preprocess.Triple, size int) *Generator {
	return &Generator{open: open, fixed: fixed, size: size}
}

// Generate returns the valid patterns per digit. Each pattern has length
// size and maps column index to row index.
func (g *Generator) Generate() map[int][][]int {
	patterns := g.seedPatterns()

	// candidate rows per digit and column, from the open triples
	rows := make(map[int]map[int][]int)
	for _, t := range g.open {
		if rows[t.Digit] == nil {
			rows[t.Digit] = make(map[int][]int)
		}
		rows[t.Digit][t.Col] = append(rows[t.Digit][t.Col], t.Row)
	}

	for digit := 1; digit <= g.size; digit++ {
		byCol := rows[digit]
		cols := make([]int, 0, len(byCol))
		for col := range byCol {
			cols = append(cols, col)
		}
		sort.Ints(cols)

		// Every open column multiplies the pattern set: each existing
		// pattern is replaced by one variant per candidate row.
		for _, col := range cols {
			var expanded [][]int
			for _, p := range patterns[digit] {
				for _, row := range byCol[col] {
					variant := make([]int, len(p))
					copy(variant, p)
					variant[col] = row
					expanded = append(expanded, variant)
				}
			}
			patterns[digit] = expanded
		}
	}

	return g.cleanup(patterns)
}

// seedPatterns starts one pattern per digit holding only the fixed
// placements.
func (g *Generator) seedPatterns() map[int][][]int {
	patterns := make(map[int][][]int, g.size)
	for digit := 1; digit <= g.size; digit++ {
		seed := make([]int, g.size)
		for i := range seed {
			seed[i] = unset
		}
		for _, t := range g.fixed {
			if t.Digit == digit {
				seed[t.Col] = t.Row
			}
		}
		patterns[digit] = [][]int{seed}
	}
	return patterns
}

// cleanup keeps only fully assigned patterns whose rows are all distinct.
func (g *Generator) cleanup(patterns map[int][][]int) map[int][][]int {
	out := make(map[int][][]int, len(patterns))
	for digit, list := range patterns {
		var valid [][]int
		for _, p := range list {
			if isPermutation(p, g.size) {
				valid = append(valid, p)
			}
		}
		out[digit] = valid
	}
	return out
}

func isPermutation(p []int, size int) bool {
	if len(p) != size {
		return false
	}
	seen := make(map[int]bool, size)
	for _, row := range p {
		if row == unset || row < 0 || row >= size || seen[row] {
			return false
		}
		seen[row] = true
	}
	return true
}
