// Package memory holds the in-process dataset snapshot.
package memory

import (
	"sync/atomic"

	"github.com/arts-recruitment/dashboard/internal/domain/enrollment"
	"github.com/arts-recruitment/dashboard/internal/domain/shared"
)

type state struct {
	snap *enrollment.Snapshot
	err  error
}

// SnapshotStore keeps the current dataset snapshot behind an atomic pointer.
// Readers see either the old or the new snapshot, never a mix.
type SnapshotStore struct {
	v atomic.Pointer[state]
}

var _ enrollment.SnapshotStore = (*SnapshotStore)(nil)

// NewSnapshotStore creates an empty store. Until the first Replace or Fail,
// Current reports the dataset as unavailable.
func NewSnapshotStore() *SnapshotStore {
	s := &SnapshotStore{}
	s.v.Store(&state{})
	return s
}

// Current returns the loaded snapshot. When none is loaded the error wraps
// shared.ErrDatasetUnavailable and the last load failure.
func (s *SnapshotStore) Current() (*enrollment.Snapshot, error) {
	st := s.v.Load()
	if st.snap != nil {
		return st.snap, nil
	}
	if st.err != nil {
		return nil, shared.WrapError("dataset", "Load", shared.ErrServiceUnavailable, "dataset is not loaded", st.err)
	}
	return nil, shared.ErrDatasetUnavailable
}

// Replace swaps in a freshly loaded snapshot and clears any load error.
func (s *SnapshotStore) Replace(snap *enrollment.Snapshot) {
	if snap == nil {
		return
	}
	s.v.Store(&state{snap: snap})
}

// Fail records a load failure. A previously loaded snapshot stays in service;
// the failure only surfaces while nothing is loaded.
func (s *SnapshotStore) Fail(err error) {
	if err == nil {
		return
	}
	for {
		old := s.v.Load()
		next := &state{snap: old.snap, err: err}
		if s.v.CompareAndSwap(old, next) {
			return
		}
	}
}

// LastError returns the most recent load failure, if any.
func (s *SnapshotStore) LastError() error {
	return s.v.Load().err
}
