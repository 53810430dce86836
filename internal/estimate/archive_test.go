// SPDX-License-Identifier: MIT
package estimate

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/qsolv/qsudoku/internal/exactcover"
)

func testReport() *Report {
	return &Report{
		Files: []FileResult{
			{
				File:    "4x4sudoku.csv",
				Class:   Class4x4,
				Simple:  exactcover.Resources{Qubits: 145, TotalGates: 166044, MCXGates: 152961},
				Pattern: exactcover.Resources{Qubits: 105, TotalGates: 7258, MCXGates: 6852},
			},
			{File: "trivial.csv", Class: Class4x4, Classical: true},
		},
	}
}

func TestArchiveSaveRecent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "estimates.db")
	a, err := OpenArchive(path)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = a.Close() }()

	ctx := context.Background()
	if err := a.Save(ctx, testReport()); err != nil {
		t.Fatal(err)
	}

	rows, err := a.Recent(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	// classical file is not archived; the other yields one row per encoding
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	for _, r := range rows {
		if r.File != "4x4sudoku.csv" || r.Class != Class4x4 {
			t.Fatalf("unexpected row %+v", r)
		}
		if r.CreatedAt.IsZero() {
			t.Fatalf("missing timestamp in %+v", r)
		}
		switch r.Encoding {
		case "simple":
			if r.Qubits != 145 || r.MCXGates != 152961 {
				t.Fatalf("bad simple row %+v", r)
			}
		case "pattern":
			if r.Qubits != 105 || r.TotalGates != 7258 {
				t.Fatalf("bad pattern row %+v", r)
			}
		default:
			t.Fatalf("unexpected encoding %q", r.Encoding)
		}
	}
}

func TestArchiveRecentEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "estimates.db")
	a, err := OpenArchive(path)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = a.Close() }()

	rows, err := a.Recent(context.Background(), 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 0 {
		t.Fatalf("rows = %d, want 0", len(rows))
	}
}
