// SPDX-License-Identifier: MIT
package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/qsolv/qsudoku/internal/jobs"
)

func testJob(id string) *jobs.Job {
	return &jobs.Job{
		ID:        id,
		Kind:      jobs.KindSolve,
		State:     jobs.StatePending,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
		Puzzle:    [][]int{{1, 0}, {0, 2}},
	}
}

func runStoreTests(t *testing.T, s jobs.Store) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, testJob("a")))
	require.NoError(t, s.Put(ctx, testJob("b")))

	got, err := s.Get(ctx, "a")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "a", got.ID)
	require.Equal(t, jobs.KindSolve, got.Kind)
	require.Equal(t, 2, got.Puzzle[1][1])

	missing, err := s.Get(ctx, "nope")
	require.NoError(t, err)
	require.Nil(t, missing)

	updated, err := s.Update(ctx, "a", func(j *jobs.Job) error {
		j.State = jobs.StateDone
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, jobs.StateDone, updated.State)

	got, err = s.Get(ctx, "a")
	require.NoError(t, err)
	require.Equal(t, jobs.StateDone, got.State)

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
}

func TestMemoryStore(t *testing.T) {
	runStoreTests(t, NewMemory())
}

func TestMemoryStoreUpdateUnknown(t *testing.T) {
	_, err := NewMemory().Update(context.Background(), "ghost", func(j *jobs.Job) error { return nil })
	require.Error(t, err)
}

func TestBadgerStore(t *testing.T) {
	s, err := OpenBadger(t.TempDir())
	require.NoError(t, err)
	defer func() { _ = s.Close() }()
	runStoreTests(t, s)
}

func TestBadgerDelete(t *testing.T) {
	s, err := OpenBadger(t.TempDir())
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	ctx := context.Background()
	require.NoError(t, s.Put(ctx, testJob("gone")))
	require.NoError(t, s.Delete(ctx, "gone"))

	got, err := s.Get(ctx, "gone")
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestBadgerPersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := OpenBadger(dir)
	require.NoError(t, err)
	require.NoError(t, s.Put(ctx, testJob("keep")))
	require.NoError(t, s.Close())

	s, err = OpenBadger(dir)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	got, err := s.Get(ctx, "keep")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "keep", got.ID)
}
