// SPDX-License-Identifier: MIT
package solver

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/qsolv/qsudoku/internal/board"
	"github.com/qsolv/qsudoku/internal/circuit"
	"github.com/qsolv/qsudoku/internal/sim"
)

func tinyBoard(t *testing.T) *board.Board {
	t.Helper()
	b, err := board.New(1, 2, 2, 1)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func TestParseStrategy(t *testing.T) {
	for _, s := range []string{"pairs", "cover-simple", "cover-pattern"} {
		if _, err := ParseStrategy(s); err != nil {
			t.Fatalf("ParseStrategy(%q) failed: %v", s, err)
		}
	}
	if _, err := ParseStrategy("annealing"); err == nil {
		t.Fatal("unknown strategy accepted")
	}
}

func TestSolveClassical(t *testing.T) {
	b := tinyBoard(t)
	if err := b.Set(0, 0, 1); err != nil {
		t.Fatal(err)
	}
	res, err := New().Solve(context.Background(), b, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !res.Classical {
		t.Fatal("expected classical solve")
	}
	if !res.Board.Solved() {
		t.Fatalf("board not solved:\n%s", res.Board)
	}
	// input board untouched
	if b.EmptyCount() != 3 {
		t.Fatalf("input board mutated, %d empty cells", b.EmptyCount())
	}
}

func TestSolvePairs(t *testing.T) {
	b := tinyBoard(t)
	res, err := New().Solve(context.Background(), b, Options{
		Strategy: StrategyPairs,
		Shots:    2048,
		Seed:     11,
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Classical {
		t.Fatal("empty board solved classically")
	}
	if !res.Board.Solved() {
		t.Fatalf("board not solved:\n%s", res.Board)
	}
	if res.Iterations != 1 {
		t.Fatalf("Iterations = %d, want 1", res.Iterations)
	}
	if res.Outcome == "" || res.OutcomeCount == 0 {
		t.Fatalf("missing outcome in result: %+v", res)
	}
	if res.Circuit.Qubits == 0 {
		t.Fatal("missing circuit stats")
	}
}

func TestSolveInvalidBoard(t *testing.T) {
	const grid = "1,1,0,0\n0,0,0,0\n0,0,0,0\n0,0,0,0\n"
	b, err := board.ParseCSV(strings.NewReader(grid))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := New().Solve(context.Background(), b, Options{}); err == nil {
		t.Fatal("invalid board accepted")
	}
}

func TestSolveCoverTooLarge(t *testing.T) {
	// the simple cover encoding of the empty 2x2 board needs 45 qubits
	b := tinyBoard(t)
	_, err := New().Solve(context.Background(), b, Options{Strategy: StrategyCoverSimple})
	if !errors.Is(err, ErrTooLarge) {
		t.Fatalf("err = %v, want ErrTooLarge", err)
	}
}

// stubRunner returns fixed counts without touching the simulator, so cover
// circuits wider than the simulable limit can still exercise decoding.
func stubRunner(counts sim.Counts) Runner {
	return func(_ *circuit.Circuit, _ int, _ int64) (sim.Counts, error) {
		return counts, nil
	}
}

func TestSolveCoverPatternDecoding(t *testing.T) {
	// Pattern subsets of the empty 2x2 board, in digit order:
	//   S0: digit 1 at rows [0 1], S1: digit 1 at rows [1 0]
	//   S2: digit 2 at rows [0 1], S3: digit 2 at rows [1 0]
	// {S0,S3} is an exact cover and solves the board as 1 2 / 2 1.
	s := NewWithDeps(Deps{Runner: stubRunner(sim.Counts{
		"1001": 700,
		"0101": 200, // digit collision, must be skipped
		"0000": 100,
	})})
	b := tinyBoard(t)
	res, err := s.Solve(context.Background(), b, Options{
		Strategy:  StrategyCoverPattern,
		MaxQubits: 64,
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Outcome != "1001" {
		t.Fatalf("Outcome = %q, want 1001", res.Outcome)
	}
	want := [][]int{{1, 2}, {2, 1}}
	for r := range want {
		for c := range want[r] {
			if res.Grid[r][c] != want[r][c] {
				t.Fatalf("Grid = %v, want %v", res.Grid, want)
			}
		}
	}
}

func TestSolveCoverSimpleDecoding(t *testing.T) {
	// Simple subsets follow sorted open-triple order; bits name subsets from
	// the right. Placements (0,0,1), (0,1,2), (1,0,2), (1,1,1) are subsets
	// 0, 3, 5 and 6.
	s := NewWithDeps(Deps{Runner: stubRunner(sim.Counts{
		"01101001": 900,
		"00000000": 50,
	})})
	b := tinyBoard(t)
	res, err := s.Solve(context.Background(), b, Options{
		Strategy:  StrategyCoverSimple,
		MaxQubits: 64,
	})
	if err != nil {
		t.Fatal(err)
	}
	if !res.Board.Solved() {
		t.Fatalf("board not solved:\n%s", res.Board)
	}
	if res.Outcome != "01101001" {
		t.Fatalf("Outcome = %q", res.Outcome)
	}
}

func TestSolveCoverNoSolution(t *testing.T) {
	s := NewWithDeps(Deps{Runner: stubRunner(sim.Counts{
		"1111": 500, // every pattern at once, collides everywhere
		"0000": 500,
	})})
	b := tinyBoard(t)
	_, err := s.Solve(context.Background(), b, Options{
		Strategy:  StrategyCoverPattern,
		MaxQubits: 64,
	})
	if !errors.Is(err, ErrNoSolution) {
		t.Fatalf("err = %v, want ErrNoSolution", err)
	}
}

func TestSolveCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	b := tinyBoard(t)
	if _, err := New().Solve(ctx, b, Options{Strategy: StrategyPairs}); err == nil {
		t.Fatal("cancelled context accepted")
	}
}
