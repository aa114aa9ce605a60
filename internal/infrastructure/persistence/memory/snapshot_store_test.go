package memory

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arts-recruitment/dashboard/internal/domain/enrollment"
	"github.com/arts-recruitment/dashboard/internal/domain/shared"
)

func TestSnapshotStore_EmptyIsUnavailable(t *testing.T) {
	s := NewSnapshotStore()
	_, err := s.Current()
	assert.ErrorIs(t, err, shared.ErrDatasetUnavailable)
}

func TestSnapshotStore_FailThenReplace(t *testing.T) {
	s := NewSnapshotStore()
	cause := errors.New("connection refused")
	s.Fail(cause)

	_, err := s.Current()
	assert.ErrorIs(t, err, shared.ErrDatasetUnavailable)
	assert.ErrorIs(t, err, cause)
	assert.ErrorContains(t, err, "connection refused")

	snap := &enrollment.Snapshot{Dataset: enrollment.Dataset{}, Fingerprint: "abc"}
	s.Replace(snap)

	got, err := s.Current()
	require.NoError(t, err)
	assert.Same(t, snap, got)
	assert.NoError(t, s.LastError())
}

func TestSnapshotStore_FailKeepsLoadedSnapshot(t *testing.T) {
	s := NewSnapshotStore()
	snap := &enrollment.Snapshot{Fingerprint: "abc"}
	s.Replace(snap)
	s.Fail(errors.New("reload failed"))

	got, err := s.Current()
	require.NoError(t, err)
	assert.Same(t, snap, got)
	assert.EqualError(t, s.LastError(), "reload failed")
}

func TestSnapshotStore_ConcurrentReaders(t *testing.T) {
	s := NewSnapshotStore()
	a := &enrollment.Snapshot{Fingerprint: "a"}
	b := &enrollment.Snapshot{Fingerprint: "b"}
	s.Replace(a)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				got, err := s.Current()
				if assert.NoError(t, err) {
					assert.Contains(t, []string{"a", "b"}, got.Fingerprint)
				}
			}
		}()
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				s.Replace(b)
			} else {
				s.Replace(a)
			}
		}(i)
	}
	wg.Wait()
}
