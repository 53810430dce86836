// SPDX-License-Identifier: MIT

// Package library indexes a directory of puzzle CSV files and keeps the
// index current by watching the directory for changes.
package library

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/qsolv/qsudoku/internal/board"
	"github.com/qsolv/qsudoku/internal/estimate"
	"github.com/qsolv/qsudoku/internal/log"
	"github.com/qsolv/qsudoku/internal/metrics"
)

// ErrNotFound signals that a requested puzzle is not in the index.
var ErrNotFound = errors.New("puzzle not found")

// Puzzle describes one indexed CSV file.
type Puzzle struct {
	Name       string         `json:"name"`
	Class      estimate.Class `json:"class,omitempty"`
	Rows       int            `json:"rows"`
	Cols       int            `json:"cols"`
	UnitHeight int            `json:"unitHeight"`
	UnitWidth  int            `json:"unitWidth"`
	Givens     int            `json:"givens"`
	SizeBytes  int64          `json:"sizeBytes"`
	ModTime    time.Time      `json:"modTime"`
}

// Library is a thread-safe index over a puzzle directory.
type Library struct {
	dir    string
	logger zerolog.Logger

	mu      sync.RWMutex
	puzzles map[string]Puzzle
}

// New indexes dir and returns the library. Files that do not parse as
// puzzle CSVs are skipped with a warning.
func New(dir string) (*Library, error) {
	l := &Library{
		dir:     dir,
		logger:  log.WithComponent("library"),
		puzzles: make(map[string]Puzzle),
	}
	if err := l.Rescan(context.Background()); err != nil {
		return nil, err
	}
	return l, nil
}

// Dir returns the indexed directory.
func (l *Library) Dir() string { return l.dir }

// Rescan rebuilds the index from the directory contents.
func (l *Library) Rescan(ctx context.Context) error {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return fmt.Errorf("read puzzle dir: %w", err)
	}

	next := make(map[string]Puzzle)
	for _, e := range entries {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".csv") {
			continue
		}
		p, err := l.index(e.Name())
		if err != nil {
			l.logger.Warn().Err(err).Str(log.FieldPath, e.Name()).Msg("skipping unreadable puzzle")
			continue
		}
		next[p.Name] = p
	}

	l.mu.Lock()
	l.puzzles = next
	l.mu.Unlock()

	metrics.SetLibraryPuzzles(len(next))
	metrics.IncLibraryRescan()
	l.logger.Info().Int("puzzles", len(next)).Msg("library index rebuilt")
	return nil
}

func (l *Library) index(name string) (Puzzle, error) {
	path := filepath.Join(l.dir, name)
	b, err := board.LoadFile(path)
	if err != nil {
		return Puzzle{}, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return Puzzle{}, err
	}

	givens := 0
	for _, n := range b.Givens() {
		givens += n
	}
	p := Puzzle{
		Name:       name,
		Rows:       b.Rows(),
		Cols:       b.Cols(),
		UnitHeight: b.UnitHeight(),
		UnitWidth:  b.UnitWidth(),
		Givens:     givens,
		SizeBytes:  info.Size(),
		ModTime:    info.ModTime(),
	}
	if class, ok := estimate.Classify(name); ok {
		p.Class = class
	}
	return p, nil
}

// List returns all indexed puzzles sorted by name.
func (l *Library) List() []Puzzle {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Puzzle, 0, len(l.puzzles))
	for _, p := range l.puzzles {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Get returns the index entry for name.
func (l *Library) Get(name string) (Puzzle, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	p, ok := l.puzzles[name]
	if !ok {
		return Puzzle{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return p, nil
}

// Load parses the named puzzle from disk. The name must be a plain file
// name; path components are rejected to keep reads confined to the
// library directory.
func (l *Library) Load(name string) (*board.Board, error) {
	if name != filepath.Base(name) || name == "." || name == ".." {
		return nil, fmt.Errorf("invalid puzzle name %q", name)
	}
	if _, err := l.Get(name); err != nil {
		return nil, err
	}
	return board.LoadFile(filepath.Join(l.dir, name))
}
