package command

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arts-recruitment/dashboard/internal/domain/enrollment"
	"github.com/arts-recruitment/dashboard/internal/domain/shared"
)

type stubSource struct {
	mu    sync.Mutex
	snaps []*enrollment.Snapshot
	err   error
	calls atomic.Int32
	gate  chan struct{}
}

func (s *stubSource) Describe() string { return "stub://dataset" }

func (s *stubSource) Load(ctx context.Context) (*enrollment.Snapshot, error) {
	s.calls.Add(1)
	if s.gate != nil {
		<-s.gate
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	snap := s.snaps[0]
	if len(s.snaps) > 1 {
		s.snaps = s.snaps[1:]
	}
	return snap, nil
}

type stubStore struct {
	snap *enrollment.Snapshot
	err  error
}

func (s *stubStore) Current() (*enrollment.Snapshot, error) {
	if s.snap != nil {
		return s.snap, nil
	}
	if s.err != nil {
		return nil, s.err
	}
	return nil, shared.ErrDatasetUnavailable
}

func (s *stubStore) Replace(snap *enrollment.Snapshot) { s.snap, s.err = snap, nil }
func (s *stubStore) Fail(err error)                    { s.err = err }

type countingPurger struct{ n int }

func (p *countingPurger) Purge(context.Context) error { p.n++; return nil }

func snapshot(fp string) *enrollment.Snapshot {
	return &enrollment.Snapshot{
		Dataset: enrollment.Dataset{
			enrollment.LakesideSchool: enrollment.School{"Band": enrollment.ProgramRecord{}},
		},
		Metadata:    enrollment.Metadata{GeneratedAt: "2025-09-01 10:00:00"},
		Fingerprint: fp,
		Source:      "stub://dataset",
		LoadedAt:    time.Date(2025, 9, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestReloadDataset_LoadsAndPurges(t *testing.T) {
	src := &stubSource{snaps: []*enrollment.Snapshot{snapshot("aaa"), snapshot("aaa"), snapshot("bbb")}}
	store := &stubStore{}
	purger := &countingPurger{}
	h := NewReloadDatasetHandler(src, store, purger, nil)
	ctx := context.Background()

	res, err := h.Handle(ctx, ReloadDatasetCommand{Reason: "startup"})
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, "aaa", res.Fingerprint)
	assert.Equal(t, 1, res.Schools)
	assert.Equal(t, "2025-09-01 10:00:00", res.GeneratedAt)
	assert.Equal(t, 1, purger.n)

	res, err = h.Handle(ctx, ReloadDatasetCommand{Reason: "manual"})
	require.NoError(t, err)
	assert.False(t, res.Changed, "same content")
	assert.Equal(t, 1, purger.n)

	res, err = h.Handle(ctx, ReloadDatasetCommand{Reason: "manual"})
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, 2, purger.n)

	cur, err := store.Current()
	require.NoError(t, err)
	assert.Equal(t, "bbb", cur.Fingerprint)
}

func TestReloadDataset_FailureKeepsPreviousSnapshot(t *testing.T) {
	boom := errors.New("connection refused")
	prev := snapshot("aaa")
	store := &stubStore{snap: prev}
	h := NewReloadDatasetHandler(&stubSource{err: boom}, store, nil, nil)

	_, err := h.Handle(context.Background(), ReloadDatasetCommand{Reason: "manual"})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.True(t, shared.IsUnavailable(err))
	assert.Equal(t, boom, store.err)

	cur, err := store.Current()
	require.NoError(t, err)
	assert.Same(t, prev, cur)
}

func TestReloadDataset_ConcurrentCallersShareLoad(t *testing.T) {
	src := &stubSource{snaps: []*enrollment.Snapshot{snapshot("aaa")}, gate: make(chan struct{})}
	h := NewReloadDatasetHandler(src, &stubStore{}, nil, nil)

	var wg sync.WaitGroup
	results := make([]*ReloadDatasetResult, 4)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := h.Handle(context.Background(), ReloadDatasetCommand{Reason: "manual"})
			assert.NoError(t, err)
			results[i] = res
		}(i)
	}

	// let the first caller reach the source, then release it
	require.Eventually(t, func() bool { return src.calls.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(src.gate)
	wg.Wait()

	assert.LessOrEqual(t, src.calls.Load(), int32(4))
	for _, r := range results {
		require.NotNil(t, r)
		assert.Equal(t, "aaa", r.Fingerprint)
	}
}
