package stream

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/soundpath/motiontx/motion"
	"github.com/soundpath/motiontx/transport"
)

// fakeTransport records batches and can hold sends open to simulate a slow
// downstream device.
type fakeTransport struct {
	mu      sync.Mutex
	batches []transport.Batch
	delay   time.Duration
	gate    chan struct{}
	err     error
}

func (f *fakeTransport) Send(ctx context.Context, batch transport.Batch) error {
	if f.gate != nil {
		<-f.gate
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	f.mu.Lock()
	f.batches = append(f.batches, batch)
	f.mu.Unlock()
	return f.err
}

func (f *fakeTransport) sent() []transport.Batch {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]transport.Batch, len(f.batches))
	copy(out, f.batches)
	return out
}

func testSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		MinInterval:  10 * time.Millisecond,
		MaxInterval:  100 * time.Millisecond,
		Step:         5 * time.Millisecond,
		MaxBatchSize: 4,
	}
}

func newTestScheduler(t *testing.T, tx transport.Transport) *Scheduler {
	t.Helper()
	return NewScheduler(context.Background(), testSchedulerConfig(), tx, zap.NewNop())
}

func TestSchedulerCoalescing(t *testing.T) {
	tx := &fakeTransport{}
	s := newTestScheduler(t, tx)

	s.AddPosition(1, motion.Position{X: 1}, CoordXYZ)
	s.AddPosition(1, motion.Position{X: 2}, CoordXYZ)
	require.Equal(t, 1, s.Pending())

	s.Flush()
	require.Eventually(t, func() bool {
		return s.Stats().TotalSent == 1
	}, time.Second, time.Millisecond)

	batches := tx.sent()
	require.Len(t, batches, 1)
	require.Len(t, batches[0].Entries, 1)
	require.InDelta(t, 2.0, batches[0].Entries[0].Position.X, 1e-12)
}

func TestSchedulerCoordSystemTravelsWithEntry(t *testing.T) {
	tx := &fakeTransport{}
	s := newTestScheduler(t, tx)

	s.AddPosition(1, motion.Position{X: 1}, CoordXYZ)
	s.AddPosition(1, motion.Position{X: 2}, CoordAED)
	s.Flush()

	require.Eventually(t, func() bool { return s.Stats().TotalSent == 1 }, time.Second, time.Millisecond)
	batches := tx.sent()
	require.Equal(t, "aed", batches[0].Entries[0].Coord)
}

func TestSchedulerEmptyFlushIsNoop(t *testing.T) {
	tx := &fakeTransport{}
	s := newTestScheduler(t, tx)
	s.Flush()
	time.Sleep(20 * time.Millisecond)
	require.Empty(t, tx.sent())
	require.Zero(t, s.Stats().TotalSent)
}

func TestSchedulerBackpressureSkip(t *testing.T) {
	tx := &fakeTransport{gate: make(chan struct{})}
	s := newTestScheduler(t, tx)

	s.AddPosition(1, motion.Position{X: 1}, CoordXYZ)
	s.Flush() // acquires the permit and blocks on the gate

	s.AddPosition(2, motion.Position{Y: 1}, CoordXYZ)
	before := s.AdaptiveInterval()
	s.Flush() // skipped: previous send still in flight
	require.Equal(t, uint64(1), s.Stats().SkippedSends)
	require.Greater(t, s.AdaptiveInterval(), before)

	close(tx.gate)
	require.Eventually(t, func() bool { return s.Stats().TotalSent == 1 }, time.Second, time.Millisecond)

	// The skipped entry is still pending and goes out on the next flush.
	require.Equal(t, 1, s.Pending())
	s.Flush()
	require.Eventually(t, func() bool { return s.Stats().TotalSent == 2 }, time.Second, time.Millisecond)
}

func TestSchedulerIntervalStaysBounded(t *testing.T) {
	cfg := testSchedulerConfig()
	tx := &fakeTransport{gate: make(chan struct{})}
	s := newTestScheduler(t, tx)

	s.AddPosition(1, motion.Position{}, CoordXYZ)
	s.Flush()

	// Hammer the skip path: the interval backs off but never exceeds max.
	for i := 0; i < 200; i++ {
		s.AddPosition(2, motion.Position{}, CoordXYZ)
		s.Flush()
	}
	require.LessOrEqual(t, s.AdaptiveInterval(), cfg.MaxInterval)
	require.GreaterOrEqual(t, s.AdaptiveInterval(), cfg.MinInterval)
	close(tx.gate)

	// Instant sends walk it back down, never below min.
	for i := 0; i < 100; i++ {
		s.AddPosition(3, motion.Position{}, CoordXYZ)
		s.Flush()
		time.Sleep(time.Millisecond)
	}
	require.GreaterOrEqual(t, s.AdaptiveInterval(), cfg.MinInterval)
	require.LessOrEqual(t, s.AdaptiveInterval(), cfg.MaxInterval)
}

func TestSchedulerSlowSendGrowsInterval(t *testing.T) {
	tx := &fakeTransport{delay: 15 * time.Millisecond}
	s := newTestScheduler(t, tx)
	before := s.AdaptiveInterval() // min, 10ms: a 15ms send is >90% of it

	s.AddPosition(1, motion.Position{}, CoordXYZ)
	s.Flush()
	require.Eventually(t, func() bool { return s.Stats().TotalSent == 1 }, time.Second, time.Millisecond)
	require.Greater(t, s.AdaptiveInterval(), before)
}

func TestSchedulerFullBatchForcesFlush(t *testing.T) {
	tx := &fakeTransport{}
	s := newTestScheduler(t, tx)

	for i := 0; i < 4; i++ {
		s.AddPosition(i, motion.Position{X: float64(i)}, CoordXYZ)
	}
	require.Equal(t, 4, s.Pending())

	// A fifth, unseen track exceeds MaxBatchSize and forces a flush first.
	s.AddPosition(9, motion.Position{X: 9}, CoordXYZ)
	require.Eventually(t, func() bool { return s.Stats().TotalSent == 1 }, time.Second, time.Millisecond)
	require.Equal(t, 1, s.Pending())

	batches := tx.sent()
	require.Len(t, batches[0].Entries, 4)
}

func TestSchedulerSendErrorIsRecordedNotFatal(t *testing.T) {
	tx := &fakeTransport{err: errors.New("device offline")}
	s := newTestScheduler(t, tx)

	s.AddPosition(1, motion.Position{X: 1}, CoordXYZ)
	s.Flush()
	require.Eventually(t, func() bool { return s.Stats().SendErrors == 1 }, time.Second, time.Millisecond)
	require.Zero(t, s.Stats().TotalSent)

	// The next natural flush retries with the latest value.
	tx.err = nil
	s.AddPosition(1, motion.Position{X: 5}, CoordXYZ)
	s.Flush()
	require.Eventually(t, func() bool { return s.Stats().TotalSent == 1 }, time.Second, time.Millisecond)
}

func TestSchedulerStopClearsPendingAndAborts(t *testing.T) {
	tx := &fakeTransport{}
	s := newTestScheduler(t, tx)

	s.AddPosition(1, motion.Position{X: 1}, CoordXYZ)
	s.Stop()
	require.Zero(t, s.Pending())

	// Neither new positions nor flushes pass after stop.
	s.AddPosition(2, motion.Position{X: 2}, CoordXYZ)
	s.Flush()
	time.Sleep(20 * time.Millisecond)
	require.Empty(t, tx.sent())

	s.Reset()
	s.AddPosition(3, motion.Position{X: 3}, CoordXYZ)
	s.Flush()
	require.Eventually(t, func() bool { return s.Stats().TotalSent == 1 }, time.Second, time.Millisecond)
}

func TestSchedulerRemoveDropsPendingTracks(t *testing.T) {
	tx := &fakeTransport{}
	s := newTestScheduler(t, tx)

	s.AddPosition(1, motion.Position{X: 1}, CoordXYZ)
	s.AddPosition(2, motion.Position{X: 2}, CoordXYZ)
	s.AddPosition(3, motion.Position{X: 3}, CoordXYZ)

	s.Remove(2)
	require.Equal(t, 2, s.Pending())

	s.Flush()
	require.Eventually(t, func() bool { return s.Stats().TotalSent == 1 }, time.Second, time.Millisecond)
	entries := tx.sent()[0].Entries
	require.Len(t, entries, 2)
	require.Equal(t, []int{1, 3}, []int{entries[0].TrackIndex, entries[1].TrackIndex})
}

func TestSchedulerFullBatchUnderBackpressure(t *testing.T) {
	tx := &fakeTransport{gate: make(chan struct{})}
	s := newTestScheduler(t, tx)

	s.AddPosition(0, motion.Position{}, CoordXYZ)
	s.Flush() // holds the permit, blocked on the gate

	for i := 1; i <= 4; i++ {
		s.AddPosition(i, motion.Position{X: float64(i)}, CoordXYZ)
	}
	require.Equal(t, 4, s.Pending())

	// The forced flush is skipped while the send is in flight; the fresh
	// entry is kept anyway, letting the batch exceed the cap transiently.
	s.AddPosition(5, motion.Position{X: 5}, CoordXYZ)
	require.Equal(t, uint64(1), s.Stats().SkippedSends)
	require.Equal(t, 5, s.Pending())

	close(tx.gate)
	require.Eventually(t, func() bool { return s.Stats().TotalSent == 1 }, time.Second, time.Millisecond)

	// The next flush drains the oversized batch whole.
	s.Flush()
	require.Eventually(t, func() bool { return s.Stats().TotalSent == 2 }, time.Second, time.Millisecond)
	require.Zero(t, s.Pending())
	require.Len(t, tx.sent()[1].Entries, 5)
}

func TestSchedulerEntriesSortedByTrack(t *testing.T) {
	tx := &fakeTransport{}
	s := newTestScheduler(t, tx)

	s.AddPosition(3, motion.Position{}, CoordXYZ)
	s.AddPosition(1, motion.Position{}, CoordXYZ)
	s.AddPosition(2, motion.Position{}, CoordXYZ)
	s.Flush()

	require.Eventually(t, func() bool { return s.Stats().TotalSent == 1 }, time.Second, time.Millisecond)
	entries := tx.sent()[0].Entries
	require.Equal(t, []int{1, 2, 3}, []int{entries[0].TrackIndex, entries[1].TrackIndex, entries[2].TrackIndex})
}
