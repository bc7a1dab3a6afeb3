package sync

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	stdsync "sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/fieldreport/internal/common"
	"github.com/dmitrijs2005/fieldreport/internal/logging"
)

type fakeRec struct {
	key      int64
	remoteID string
	rejected bool
	lastErr  string
}

// fakeSource is an in-memory Source with scripted submission outcomes.
type fakeSource struct {
	mu        stdsync.Mutex
	name      string
	recs      []*fakeRec
	outcomes  map[int64]error // nil entry (or absent) means success
	submitted []int64
	onSubmit  func()
	listErr   error
	countErr  error
}

func newFakeSource(name string, keys ...int64) *fakeSource {
	s := &fakeSource{name: name, outcomes: map[int64]error{}}
	for _, k := range keys {
		s.recs = append(s.recs, &fakeRec{key: k})
	}
	return s
}

func (s *fakeSource) add(key int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recs = append(s.recs, &fakeRec{key: key})
}

func (s *fakeSource) rec(key int64) *fakeRec {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.recs {
		if r.key == key {
			return r
		}
	}
	return nil
}

func (s *fakeSource) Name() string { return s.name }

func (s *fakeSource) CountPending(ctx context.Context) (int, error) {
	if s.countErr != nil {
		return 0, s.countErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range s.recs {
		if r.remoteID == "" && !r.rejected {
			n++
		}
	}
	return n, nil
}

func (s *fakeSource) ListPending(ctx context.Context) ([]Pending, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Pending
	for _, r := range s.recs {
		if r.remoteID != "" || r.rejected {
			continue
		}
		key := r.key
		out = append(out, Pending{
			LocalKey: key,
			Submit: func(ctx context.Context) (string, error) {
				s.mu.Lock()
				s.submitted = append(s.submitted, key)
				hook := s.onSubmit
				err := s.outcomes[key]
				s.mu.Unlock()
				if hook != nil {
					hook()
				}
				if err != nil {
					return "", err
				}
				return fmt.Sprintf("srv-%d", key), nil
			},
		})
	}
	return out, nil
}

func (s *fakeSource) MarkSynced(ctx context.Context, localKey int64, remoteID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.recs {
		if r.key == localKey {
			r.remoteID = remoteID
		}
	}
	return nil
}

func (s *fakeSource) MarkRejected(ctx context.Context, localKey int64, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.recs {
		if r.key == localKey {
			r.rejected = true
			r.lastErr = reason
		}
	}
	return nil
}

type fakePort struct {
	mu     stdsync.Mutex
	online bool
	ch     chan bool
}

func newFakePort(online bool) *fakePort {
	return &fakePort{online: online, ch: make(chan bool, 1)}
}

func (p *fakePort) Online() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.online
}

func (p *fakePort) Subscribe() <-chan bool { return p.ch }

func (p *fakePort) flip(online bool) {
	p.mu.Lock()
	p.online = online
	p.mu.Unlock()
	p.ch <- online
}

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func newTestEngine(port *fakePort, sources ...Source) (*Engine, *Status) {
	status := NewStatus()
	e := NewEngine(sources, port, status, time.Second, testLogger())
	return e, status
}

func TestRunPass_DrainsAllPending(t *testing.T) {
	src := newFakeSource("reports", 1, 2, 3)
	e, status := newTestEngine(newFakePort(true), src)

	require.True(t, e.RunPass(context.Background()))

	for _, k := range []int64{1, 2, 3} {
		assert.Equal(t, fmt.Sprintf("srv-%d", k), src.rec(k).remoteID)
	}
	assert.Equal(t, 0, status.Snapshot().PendingCount)
	assert.False(t, status.Snapshot().IsSyncing)
	assert.False(t, status.Snapshot().LastSyncAt.IsZero())
}

func TestRunPass_SubmitsInInsertionOrder(t *testing.T) {
	src := newFakeSource("reports", 1, 2, 3)
	e, _ := newTestEngine(newFakePort(true), src)

	require.True(t, e.RunPass(context.Background()))
	assert.Equal(t, []int64{1, 2, 3}, src.submitted)
}

func TestRunPass_PartialFailureIsolation(t *testing.T) {
	src := newFakeSource("reports", 1, 2)
	src.outcomes[1] = fmt.Errorf("%w: connection reset", common.ErrUnavailable)
	e, status := newTestEngine(newFakePort(true), src)

	require.True(t, e.RunPass(context.Background()))

	assert.Empty(t, src.rec(1).remoteID, "failed record must stay pending")
	assert.Equal(t, "srv-2", src.rec(2).remoteID, "one failure must not abort the pass")
	assert.Equal(t, 1, status.Snapshot().PendingCount)
}

func TestRunPass_PermanentRejectLeavesRetrySet(t *testing.T) {
	src := newFakeSource("reports", 1)
	src.outcomes[1] = fmt.Errorf("%w: municipio is required", common.ErrPermanentReject)
	e, status := newTestEngine(newFakePort(true), src)

	require.True(t, e.RunPass(context.Background()))

	assert.True(t, src.rec(1).rejected)
	assert.Contains(t, src.rec(1).lastErr, "municipio is required")
	assert.Equal(t, 0, status.Snapshot().PendingCount)

	// a rejected record is never re-submitted
	src.submitted = nil
	require.True(t, e.RunPass(context.Background()))
	assert.Empty(t, src.submitted)
}

func TestRunPass_OfflineIsDropped(t *testing.T) {
	src := newFakeSource("reports", 1)
	e, _ := newTestEngine(newFakePort(false), src)

	assert.False(t, e.RunPass(context.Background()))
	assert.Empty(t, src.submitted)
}

func TestRunPass_ReentrancyGuard(t *testing.T) {
	src := newFakeSource("reports", 1)
	e, _ := newTestEngine(newFakePort(true), src)

	var nested bool
	src.onSubmit = func() {
		nested = e.RunPass(context.Background())
	}

	require.True(t, e.RunPass(context.Background()))
	assert.False(t, nested, "a trigger arriving mid-pass must be dropped, not queued")
}

func TestRunPass_RecordAddedMidPassWaitsForNextTrigger(t *testing.T) {
	src := newFakeSource("reports", 1)
	e, status := newTestEngine(newFakePort(true), src)

	src.onSubmit = func() {
		src.onSubmit = nil
		src.add(2)
	}

	require.True(t, e.RunPass(context.Background()))
	assert.Equal(t, []int64{1}, src.submitted, "snapshot must exclude records captured mid-pass")
	assert.Equal(t, 1, status.Snapshot().PendingCount, "completed pass republishes the count")

	require.True(t, e.RunPass(context.Background()))
	assert.Equal(t, "srv-2", src.rec(2).remoteID)
}

func TestRunPass_SyncedRecordNeverResubmitted(t *testing.T) {
	src := newFakeSource("reports", 1, 2)
	e, _ := newTestEngine(newFakePort(true), src)

	require.True(t, e.RunPass(context.Background()))
	require.Equal(t, []int64{1, 2}, src.submitted)

	src.add(3)
	require.True(t, e.RunPass(context.Background()))
	assert.Equal(t, []int64{1, 2, 3}, src.submitted)
}

func TestRunPass_SnapshotErrorSkipsSource(t *testing.T) {
	broken := newFakeSource("reports", 1)
	broken.listErr = errors.New("database is locked")
	healthy := newFakeSource("people", 10)

	e, _ := newTestEngine(newFakePort(true), broken, healthy)

	require.True(t, e.RunPass(context.Background()))
	assert.Equal(t, "srv-10", healthy.rec(10).remoteID,
		"a broken source must not abort the pass for the others")
}

func TestRunPass_MultipleSourcesInOrder(t *testing.T) {
	reports := newFakeSource("reports", 1)
	people := newFakeSource("people", 2)
	e, status := newTestEngine(newFakePort(true), reports, people)

	require.True(t, e.RunPass(context.Background()))
	assert.Equal(t, "srv-1", reports.rec(1).remoteID)
	assert.Equal(t, "srv-2", people.rec(2).remoteID)
	assert.Equal(t, 0, status.Snapshot().PendingCount)
}

func TestRun_OnlineTransitionTriggersPass(t *testing.T) {
	src := newFakeSource("reports", 1, 2, 3)
	port := newFakePort(false)
	e, status := newTestEngine(port, src)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go e.Run(ctx)

	// offline: capture accumulates, nothing is submitted
	e.TriggerSync()
	time.Sleep(20 * time.Millisecond)
	assert.Empty(t, src.submitted)

	port.flip(true)

	require.Eventually(t, func() bool {
		return status.Snapshot().PendingCount == 0
	}, time.Second, 5*time.Millisecond)

	for _, k := range []int64{1, 2, 3} {
		assert.NotEmpty(t, src.rec(k).remoteID)
	}
	assert.True(t, status.Snapshot().IsOnline)
}
