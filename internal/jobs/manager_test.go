// SPDX-License-Identifier: MIT
package jobs_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/qsolv/qsudoku/internal/board"
	"github.com/qsolv/qsudoku/internal/jobs"
	"github.com/qsolv/qsudoku/internal/solver"
	"github.com/qsolv/qsudoku/internal/store"
)

const sample4x4 = "1,0,0,0\n0,4,0,0\n0,2,0,0\n3,0,0,0\n"

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func tinyBoard(t *testing.T) *board.Board {
	t.Helper()
	b, err := board.New(1, 2, 2, 1)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func newTestManager(t *testing.T) (*jobs.Manager, string) {
	t.Helper()
	dir := t.TempDir()
	m, err := jobs.NewManager(jobs.Deps{
		Store:       store.NewMemory(),
		ArtifactDir: dir,
		Concurrency: 1,
		Timeout:     30 * time.Second,
	})
	if err != nil {
		t.Fatal(err)
	}
	return m, dir
}

func waitDone(t *testing.T, m *jobs.Manager, id string) *jobs.Job {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		job, err := m.Get(context.Background(), id)
		if err != nil {
			t.Fatal(err)
		}
		if job != nil && job.State.Terminal() {
			return job
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("job did not finish in time")
	return nil
}

func TestSubmitSolve(t *testing.T) {
	m, dir := newTestManager(t)
	defer m.Close()

	b := tinyBoard(t)
	if err := b.Set(0, 0, 1); err != nil {
		t.Fatal(err)
	}
	job, err := m.SubmitSolve(context.Background(), b, solver.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if job.Kind != jobs.KindSolve || job.State != jobs.StatePending {
		t.Fatalf("submitted job = %+v", job)
	}
	if len(job.Puzzle) != 2 || job.Puzzle[0][0] != 1 {
		t.Fatalf("puzzle snapshot = %v", job.Puzzle)
	}

	done := waitDone(t, m, job.ID)
	if done.State != jobs.StateDone {
		t.Fatalf("state = %q, error = %q", done.State, done.Error)
	}
	if done.Result == nil || !done.Result.Classical {
		t.Fatalf("result = %+v", done.Result)
	}
	if done.StartedAt.IsZero() || done.FinishedAt.IsZero() {
		t.Fatal("missing timestamps")
	}

	want := filepath.Join(dir, job.ID+".csv")
	if done.ArtifactPath != want {
		t.Fatalf("artifact = %q, want %q", done.ArtifactPath, want)
	}
	data, err := os.ReadFile(want)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) == 0 {
		t.Fatal("empty solution artifact")
	}
}

func TestSubmitSolveFailure(t *testing.T) {
	m, _ := newTestManager(t)
	defer m.Close()

	// A repeated digit in a row makes the board unsolvable.
	b := tinyBoard(t)
	if err := b.Set(0, 0, 1); err != nil {
		t.Fatal(err)
	}
	if err := b.Set(0, 1, 1); err != nil {
		t.Fatal(err)
	}
	job, err := m.SubmitSolve(context.Background(), b, solver.Options{})
	if err != nil {
		t.Fatal(err)
	}

	done := waitDone(t, m, job.ID)
	if done.State != jobs.StateFailed {
		t.Fatalf("state = %q, want failed", done.State)
	}
	if done.Error == "" {
		t.Fatal("missing error message")
	}
	if done.ArtifactPath != "" {
		t.Fatalf("failed job wrote artifact %q", done.ArtifactPath)
	}
}

func TestSubmitSweep(t *testing.T) {
	m, artifactDir := newTestManager(t)
	defer m.Close()

	puzzles := t.TempDir()
	if err := os.WriteFile(filepath.Join(puzzles, "4x4sudoku.csv"), []byte(sample4x4), 0o644); err != nil {
		t.Fatal(err)
	}
	job, err := m.SubmitSweep(context.Background(), puzzles)
	if err != nil {
		t.Fatal(err)
	}
	if job.Kind != jobs.KindSweep || job.SweepDir != puzzles {
		t.Fatalf("submitted job = %+v", job)
	}

	done := waitDone(t, m, job.ID)
	if done.State != jobs.StateDone {
		t.Fatalf("state = %q, error = %q", done.State, done.Error)
	}
	if done.Report == nil || len(done.Report.Files) != 1 {
		t.Fatalf("report = %+v", done.Report)
	}

	want := filepath.Join(artifactDir, job.ID+".json")
	if done.ArtifactPath != want {
		t.Fatalf("artifact = %q, want %q", done.ArtifactPath, want)
	}
	if _, err := os.Stat(want); err != nil {
		t.Fatal(err)
	}
}

func TestManagerList(t *testing.T) {
	m, _ := newTestManager(t)
	defer m.Close()

	b := tinyBoard(t)
	if err := b.Set(0, 0, 1); err != nil {
		t.Fatal(err)
	}
	if _, err := m.SubmitSolve(context.Background(), b, solver.Options{}); err != nil {
		t.Fatal(err)
	}
	if _, err := m.SubmitSolve(context.Background(), b, solver.Options{}); err != nil {
		t.Fatal(err)
	}

	list, err := m.List(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 {
		t.Fatalf("List = %d jobs, want 2", len(list))
	}
}

func TestNewManagerRequiresStore(t *testing.T) {
	if _, err := jobs.NewManager(jobs.Deps{}); err == nil {
		t.Fatal("manager accepted nil store")
	}
}
