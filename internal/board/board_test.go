// SPDX-License-Identifier: MIT
package board

import (
	"strings"
	"testing"
)

func mustBoard(t *testing.T, unitH, unitW, gridH, gridW int) *Board {
	t.Helper()
	b, err := New(unitH, unitW, gridH, gridW)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return b
}

func TestNewRejectsInvalidGeometry(t *testing.T) {
	for _, dims := range [][4]int{
		{0, 2, 2, 2},
		{2, 0, 2, 2},
		{2, 2, -1, 2},
		{2, 2, 2, 0},
	} {
		if _, err := New(dims[0], dims[1], dims[2], dims[3]); err == nil {
			t.Fatalf("New(%v) accepted invalid geometry", dims)
		}
	}
}

func TestSetGetBounds(t *testing.T) {
	b := mustBoard(t, 2, 2, 2, 2)

	if err := b.Set(1, 2, 3); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	v, err := b.Get(1, 2)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if v != 3 {
		t.Fatalf("Get = %d, want 3", v)
	}

	if err := b.Set(4, 0, 1); err == nil {
		t.Fatal("Set out of range accepted")
	}
	if err := b.Set(0, 0, 5); err == nil {
		t.Fatal("Set accepted value above Digits()")
	}
	if err := b.Set(0, 0, Empty); err != nil {
		t.Fatalf("Set(Empty) failed: %v", err)
	}
	if _, err := b.Get(-1, 0); err == nil {
		t.Fatal("Get out of range accepted")
	}
}

func TestFieldIndexRowMajor(t *testing.T) {
	b := mustBoard(t, 2, 2, 2, 2)
	if got := b.Index(0, 0); got != 0 {
		t.Fatalf("Index(0,0) = %d", got)
	}
	if got := b.Index(1, 2); got != 6 {
		t.Fatalf("Index(1,2) = %d, want 6", got)
	}
	r, c := b.Position(6)
	if r != 1 || c != 2 {
		t.Fatalf("Position(6) = (%d,%d), want (1,2)", r, c)
	}
}

func TestOpenPairsEmptyBoard(t *testing.T) {
	// Empty 4x4 board: per field 3 row + 3 column partners plus the one
	// subunit partner not sharing a row or column, forward-walked once.
	b := mustBoard(t, 2, 2, 2, 2)
	pairs := b.OpenPairs()
	if len(pairs) != 56 {
		t.Fatalf("OpenPairs = %d pairs, want 56", len(pairs))
	}

	seen := make(map[Pair]bool)
	for _, p := range pairs {
		if seen[p] {
			t.Fatalf("duplicate pair %v", p)
		}
		seen[p] = true
	}
}

func TestOpenPairsSkipsSettledPairs(t *testing.T) {
	b := mustBoard(t, 2, 2, 2, 2)
	if err := b.Set(0, 0, 1); err != nil {
		t.Fatal(err)
	}
	if err := b.Set(0, 1, 2); err != nil {
		t.Fatal(err)
	}

	for _, p := range b.OpenPairs() {
		if p.A == (Cell{0, 0}) && p.B == (Cell{0, 1}) {
			t.Fatal("pair of two givens emitted")
		}
	}
}

func TestOpenPairIndexes(t *testing.T) {
	b := mustBoard(t, 1, 2, 2, 1) // 2x2 board, 1x2 subunits
	idx := b.OpenPairIndexes()
	want := map[[2]int]bool{
		{0, 2}: true, // column
		{0, 1}: true, // row / subunit
		{1, 3}: true,
		{2, 3}: true,
	}
	if len(idx) != len(want) {
		t.Fatalf("OpenPairIndexes = %v, want %d pairs", idx, len(want))
	}
	for _, p := range idx {
		if !want[p] {
			t.Fatalf("unexpected pair %v", p)
		}
	}
}

func TestValidAndSolved(t *testing.T) {
	b := mustBoard(t, 2, 2, 2, 2)
	solution := [][]int{
		{1, 2, 3, 4},
		{3, 4, 1, 2},
		{2, 1, 4, 3},
		{4, 3, 2, 1},
	}
	for r, row := range solution {
		for c, v := range row {
			if err := b.Set(r, c, v); err != nil {
				t.Fatal(err)
			}
		}
	}
	if !b.Solved() {
		t.Fatal("valid solution rejected")
	}

	if err := b.Set(0, 0, 2); err != nil {
		t.Fatal(err)
	}
	if b.Valid() {
		t.Fatal("duplicate in row accepted")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	b := mustBoard(t, 2, 2, 2, 2)
	if err := b.Set(0, 0, 1); err != nil {
		t.Fatal(err)
	}
	cp := b.Clone()
	if err := cp.Set(0, 0, 2); err != nil {
		t.Fatal(err)
	}
	v, _ := b.Get(0, 0)
	if v != 1 {
		t.Fatal("Clone shares field storage")
	}
}

func TestStringRendersGivens(t *testing.T) {
	b := mustBoard(t, 2, 2, 2, 2)
	if err := b.Set(0, 0, 1); err != nil {
		t.Fatal(err)
	}
	out := b.String()
	if !strings.Contains(out, "1") || !strings.Contains(out, ".") {
		t.Fatalf("unexpected rendering:\n%s", out)
	}
}
