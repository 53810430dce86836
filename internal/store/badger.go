// SPDX-License-Identifier: MIT

// Package store persists jobs. The badger store keeps one JSON value per
// job under a prefixed key; the memory store backs tests and cache-less
// deployments.
package store

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/dgraph-io/badger/v4"

	"github.com/qsolv/qsudoku/internal/jobs"
)

const jobPrefix = "job:"

// BadgerStore persists jobs in a badger database.
type BadgerStore struct {
	db *badger.DB
}

// OpenBadger opens (creating if needed) the job database at path.
func OpenBadger(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &BadgerStore{db: db}, nil
}

// Close closes the database.
func (s *BadgerStore) Close() error { return s.db.Close() }

// Put stores the job.
func (s *BadgerStore) Put(ctx context.Context, job *jobs.Job) error {
	key := []byte(jobPrefix + job.ID)
	buf, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, buf)
	})
}

// Get returns the job, or nil when unknown.
func (s *BadgerStore) Get(ctx context.Context, id string) (*jobs.Job, error) {
	key := []byte(jobPrefix + id)
	var out jobs.Job
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &out)
		})
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &out, nil
}

// Update applies fn to the stored job inside one transaction.
func (s *BadgerStore) Update(ctx context.Context, id string, fn func(*jobs.Job) error) (*jobs.Job, error) {
	key := []byte(jobPrefix + id)
	var out jobs.Job
	err := s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &out)
		}); err != nil {
			return err
		}
		if err := fn(&out); err != nil {
			return err
		}
		buf, err := json.Marshal(out)
		if err != nil {
			return err
		}
		return txn.Set(key, buf)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// List returns every stored job.
func (s *BadgerStore) List(ctx context.Context) ([]*jobs.Job, error) {
	prefix := []byte(jobPrefix)
	var list []*jobs.Job
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			item := it.Item()
			var job jobs.Job
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &job)
			}); err != nil {
				continue
			}
			list = append(list, &job)
		}
		return nil
	})
	return list, err
}

// Delete removes a job.
func (s *BadgerStore) Delete(ctx context.Context, id string) error {
	key := []byte(jobPrefix + id)
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
}

var _ jobs.Store = (*BadgerStore)(nil)
