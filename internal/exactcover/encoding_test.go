// SPDX-License-Identifier: MIT
package exactcover

import (
	"testing"

	"github.com/qsolv/qsudoku/internal/preprocess"
)

// emptyTinyTriples lists every candidate of the empty 2x2 board: four cells,
// two digits each.
func emptyTinyTriples() []preprocess.Triple {
	var open []preprocess.Triple
	for r := 0; r < 2; r++ {
		for c := 0; c < 2; c++ {
			for d := 1; d <= 2; d++ {
				open = append(open, preprocess.Triple{Row: r, Col: c, Digit: d})
			}
		}
	}
	return open
}

func TestSimpleEncoding(t *testing.T) {
	enc, err := New(emptyTinyTriples(), 1)
	if err != nil {
		t.Fatal(err)
	}
	inst := enc.Simple()

	// 4 cell + 4 row + 4 col elements; no subgrid family at unit size 1
	if len(inst.Universe) != 12 {
		t.Fatalf("universe size = %d, want 12", len(inst.Universe))
	}
	for _, el := range inst.Universe {
		if el.Kind == KindSubgrid {
			t.Fatalf("unexpected subgrid element %v", el)
		}
	}
	if len(inst.Subsets) != 8 {
		t.Fatalf("subsets = %d, want 8", len(inst.Subsets))
	}
	for i, s := range inst.Subsets {
		if len(s.Elements) != 3 {
			t.Fatalf("subset %d covers %d elements, want 3", i, len(s.Elements))
		}
		if len(s.Placements) != 1 {
			t.Fatalf("subset %d has %d placements, want 1", i, len(s.Placements))
		}
	}
	// subsets follow open-triple order
	first := inst.Subsets[0].Placements[0]
	if first != (preprocess.Triple{Row: 0, Col: 0, Digit: 1}) {
		t.Fatalf("first placement = %v", first)
	}
}

func TestSimpleEncodingSubgrids(t *testing.T) {
	open := []preprocess.Triple{{Row: 2, Col: 3, Digit: 4}}
	enc, err := New(open, 2)
	if err != nil {
		t.Fatal(err)
	}
	inst := enc.Simple()
	if len(inst.Universe) != 4 {
		t.Fatalf("universe size = %d, want 4", len(inst.Universe))
	}
	var sub *Element
	for i := range inst.Universe {
		if inst.Universe[i].Kind == KindSubgrid {
			sub = &inst.Universe[i]
		}
	}
	if sub == nil {
		t.Fatal("no subgrid element")
	}
	if sub.A != 2 || sub.B != 2 || sub.Digit != 4 {
		t.Fatalf("subgrid element = %v, want origin (2,2) digit 4", *sub)
	}
}

func TestPatternsEncoding(t *testing.T) {
	enc, err := New(emptyTinyTriples(), 1)
	if err != nil {
		t.Fatal(err)
	}
	patterns := map[int][][]int{
		1: {{0, 1}, {1, 0}},
		2: {{0, 1}, {1, 0}},
	}
	inst := enc.Patterns(patterns, nil)

	if len(inst.Subsets) != 4 {
		t.Fatalf("subsets = %d, want 4", len(inst.Subsets))
	}
	for i, s := range inst.Subsets {
		if len(s.Placements) != 2 {
			t.Fatalf("subset %d has %d placements, want 2", i, len(s.Placements))
		}
		if len(s.Elements) != 6 {
			t.Fatalf("subset %d covers %d elements, want 6", i, len(s.Elements))
		}
	}
	// digit 1 subsets come first
	if inst.Subsets[0].Placements[0].Digit != 1 || inst.Subsets[3].Placements[0].Digit != 2 {
		t.Fatalf("subset digit order broken: %+v", inst.Subsets)
	}
}

func TestPatternsOmitFixedCells(t *testing.T) {
	enc, err := New(emptyTinyTriples(), 1)
	if err != nil {
		t.Fatal(err)
	}
	patterns := map[int][][]int{1: {{0, 1}}}
	fixed := []preprocess.Triple{{Row: 0, Col: 0, Digit: 1}}
	inst := enc.Patterns(patterns, fixed)

	if len(inst.Subsets) != 1 {
		t.Fatalf("subsets = %d, want 1", len(inst.Subsets))
	}
	got := inst.Subsets[0].Placements
	if len(got) != 1 || got[0] != (preprocess.Triple{Row: 1, Col: 1, Digit: 1}) {
		t.Fatalf("placements = %v, want only (1,1,1)", got)
	}
}

func TestNewRejectsBadInput(t *testing.T) {
	if _, err := New(nil, 2); err == nil {
		t.Fatal("empty triple list accepted")
	}
	if _, err := New(emptyTinyTriples(), 0); err == nil {
		t.Fatal("zero unit size accepted")
	}
}
