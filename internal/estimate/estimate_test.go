// SPDX-License-Identifier: MIT
package estimate

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/qsolv/qsudoku/internal/board"
)

const sample4x4 = "1,0,0,0\n0,4,0,0\n0,2,0,0\n3,0,0,0\n"

func TestClassify(t *testing.T) {
	for _, tc := range []struct {
		name  string
		class Class
		ok    bool
	}{
		{"4x4sudoku.csv", Class4x4, true},
		{"easy_01.csv", ClassEasy, true},
		{"sudoku_medium.csv", ClassMedium, true},
		{"HARD.csv", ClassHard, true},
		{"2x2sudoku.csv", "", false},
		{"readme.txt", "", false},
	} {
		class, ok := Classify(tc.name)
		if class != tc.class || ok != tc.ok {
			t.Fatalf("Classify(%q) = (%q, %v), want (%q, %v)", tc.name, class, ok, tc.class, tc.ok)
		}
	}
}

func TestBoardEstimate(t *testing.T) {
	b, err := board.ParseCSV(strings.NewReader(sample4x4))
	if err != nil {
		t.Fatal(err)
	}
	res, err := New().Board(b)
	if err != nil {
		t.Fatal(err)
	}
	if res.Classical {
		t.Fatal("reducible-but-open board reported classical")
	}

	// Two reduction rounds leave 16 open triples over a 32-element universe.
	// Simple: 16 subsets, 4 counter bits; pattern: 8 subsets, 3 counter bits.
	if res.Simple.Qubits != 145 {
		t.Fatalf("Simple.Qubits = %d, want 145", res.Simple.Qubits)
	}
	if res.Simple.TotalGates != 166044 {
		t.Fatalf("Simple.TotalGates = %d, want 166044", res.Simple.TotalGates)
	}
	if res.Pattern.Qubits != 105 {
		t.Fatalf("Pattern.Qubits = %d, want 105", res.Pattern.Qubits)
	}
	if res.Pattern.TotalGates != 7258 {
		t.Fatalf("Pattern.TotalGates = %d, want 7258", res.Pattern.TotalGates)
	}
	// board untouched
	if b.EmptyCount() != 12 {
		t.Fatalf("input board mutated, %d empty cells", b.EmptyCount())
	}
}

func TestBoardEstimateClassical(t *testing.T) {
	b, err := board.New(1, 2, 2, 1)
	if err != nil {
		t.Fatal(err)
	}
	if err := b.Set(0, 0, 1); err != nil {
		t.Fatal(err)
	}
	res, err := New().Board(b)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Classical {
		t.Fatalf("fully reducible board not reported classical: %+v", res)
	}
}

func TestSweepDir(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write("4x4sudoku.csv", sample4x4)
	write("2x2sudoku.csv", "1,0\n0,0\n") // skipped by name
	write("readme.txt", "not a puzzle")  // unclassified

	report, err := New().SweepDir(context.Background(), dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Files) != 1 {
		t.Fatalf("files = %d, want 1", len(report.Files))
	}
	f := report.Files[0]
	if f.File != "4x4sudoku.csv" || f.Class != Class4x4 {
		t.Fatalf("unexpected file result %+v", f)
	}

	simple, ok := report.Averages["4x4_simple"]
	if !ok || simple.Qubits != 145 {
		t.Fatalf("4x4_simple average = %+v (ok=%v)", simple, ok)
	}
	pattern, ok := report.Averages["4x4_pattern"]
	if !ok || pattern.Qubits != 105 {
		t.Fatalf("4x4_pattern average = %+v (ok=%v)", pattern, ok)
	}
}

func TestSweepDirEmpty(t *testing.T) {
	if _, err := New().SweepDir(context.Background(), t.TempDir()); err == nil {
		t.Fatal("empty directory accepted")
	}
}
