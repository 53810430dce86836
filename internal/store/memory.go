// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/qsolv/qsudoku/internal/jobs"
)

// MemoryStore keeps jobs in process memory.
type MemoryStore struct {
	mu   sync.RWMutex
	jobs map[string]*jobs.Job
}

// NewMemory returns an empty in-memory store.
func NewMemory() *MemoryStore {
	return &MemoryStore{jobs: make(map[string]*jobs.Job)}
}

func (s *MemoryStore) Put(ctx context.Context, job *jobs.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *job
	s.jobs[job.ID] = &cp
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*jobs.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil, nil
	}
	cp := *job
	return &cp, nil
}

func (s *MemoryStore) Update(ctx context.Context, id string, fn func(*jobs.Job) error) (*jobs.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil, fmt.Errorf("store: job %s not found", id)
	}
	if err := fn(job); err != nil {
		return nil, err
	}
	cp := *job
	return &cp, nil
}

func (s *MemoryStore) List(ctx context.Context) ([]*jobs.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*jobs.Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		cp := *job
		out = append(out, &cp)
	}
	return out, nil
}

var _ jobs.Store = (*MemoryStore)(nil)
