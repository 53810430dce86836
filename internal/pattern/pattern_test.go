// SPDX-License-Identifier: MIT
package pattern

import (
	"strings"
	"testing"

	"github.com/qsolv/qsudoku/internal/board"
	"github.com/qsolv/qsudoku/internal/preprocess"
)

func TestGenerateTinyBoard(t *testing.T) {
	// Two digits, digit 1 fixed at (0,0), everything else open.
	fixed := []preprocess.Triple{{Row: 0, Col: 0, Digit: 1}}
	open := []preprocess.Triple{
		{Row: 1, Col: 1, Digit: 1},
		{Row: 1, Col: 0, Digit: 2},
		{Row: 0, Col: 1, Digit: 2},
	}

	patterns := New(open, fixed, 2).Generate()

	if len(patterns[1]) != 1 {
		t.Fatalf("digit 1 patterns = %v, want one", patterns[1])
	}
	if p := patterns[1][0]; p[0] != 0 || p[1] != 1 {
		t.Fatalf("digit 1 pattern = %v, want [0 1]", p)
	}
	if len(patterns[2]) != 1 {
		t.Fatalf("digit 2 patterns = %v, want one", patterns[2])
	}
	if p := patterns[2][0]; p[0] != 1 || p[1] != 0 {
		t.Fatalf("digit 2 pattern = %v, want [1 0]", p)
	}
}

func TestGenerateFromReducedPuzzle(t *testing.T) {
	b, err := board.ParseCSV(strings.NewReader("1,0,0,0\n0,4,0,0\n0,2,0,0\n3,0,0,0\n"))
	if err != nil {
		t.Fatal(err)
	}
	p := preprocess.New(b)
	if _, err := p.Reduce(10); err != nil {
		t.Fatal(err)
	}

	patterns := New(p.OpenTriples(), p.FixedTriples(), b.Digits()).Generate()

	// After reduction digit 1 sits in columns 0 and 1; columns 2 and 3 can
	// take rows 1 and 2 either way round.
	if len(patterns[1]) != 2 {
		t.Fatalf("digit 1 patterns = %d, want 2", len(patterns[1]))
	}
	for digit, list := range patterns {
		for _, pat := range list {
			seen := make(map[int]bool)
			for _, row := range pat {
				if seen[row] {
					t.Fatalf("digit %d pattern %v repeats a row", digit, pat)
				}
				seen[row] = true
			}
		}
	}
}

func TestGenerateDropsIncompletePatterns(t *testing.T) {
	// Digit 2 has no candidate for column 1, so no full pattern exists.
	open := []preprocess.Triple{{Row: 0, Col: 0, Digit: 2}}
	patterns := New(open, nil, 2).Generate()
	if len(patterns[2]) != 0 {
		t.Fatalf("digit 2 patterns = %v, want none", patterns[2])
	}
}
