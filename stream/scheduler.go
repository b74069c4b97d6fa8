package stream

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/soundpath/motiontx/motion"
	"github.com/soundpath/motiontx/transport"
)

// SchedulerConfig bounds the adaptive flush control loop.
type SchedulerConfig struct {
	// MinInterval and MaxInterval bound the adaptive flush interval.
	MinInterval time.Duration
	// MaxInterval also becomes the interval after repeated backpressure.
	MaxInterval time.Duration
	// Step is the fixed adjustment applied by the hysteresis rules.
	Step time.Duration
	// MaxBatchSize caps distinct tracks per pending batch.
	MaxBatchSize int
}

// DefaultSchedulerConfig matches the downstream device's comfortable rate.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		MinInterval:  20 * time.Millisecond,
		MaxInterval:  200 * time.Millisecond,
		Step:         5 * time.Millisecond,
		MaxBatchSize: 64,
	}
}

func (c *SchedulerConfig) normalize() {
	if c.MinInterval <= 0 {
		c.MinInterval = 20 * time.Millisecond
	}
	if c.MaxInterval < c.MinInterval {
		c.MaxInterval = c.MinInterval
	}
	if c.Step <= 0 {
		c.Step = 5 * time.Millisecond
	}
	if c.MaxBatchSize <= 0 {
		c.MaxBatchSize = 64
	}
}

// ThrottleStats is an observable snapshot of the control loop.
type ThrottleStats struct {
	AdaptiveInterval time.Duration `json:"adaptiveIntervalMs"`
	LastSendDuration time.Duration `json:"lastSendDurationMs"`
	SkippedSends     uint64        `json:"skippedSends"`
	TotalSent        uint64        `json:"totalSent"`
	SendErrors       uint64        `json:"sendErrors"`
}

type batchEntry struct {
	position motion.Position
	coord    CoordSystem
}

// Scheduler decouples high-frequency position computation from rate-limited
// transmission. Pending updates coalesce latest-wins per track; Flush
// snapshots and clears the batch and hands it to the transport, holding a
// single-slot permit so at most one send is in flight system-wide. Arrivals
// while the permit is held are skipped, never queued.
type Scheduler struct {
	cfg  SchedulerConfig
	tx   transport.Transport
	log  *zap.Logger
	base context.Context

	mu      sync.Mutex
	pending map[int]batchEntry

	inflight *semaphore.Weighted
	interval int64 // atomic, nanoseconds
	aborted  atomic.Bool

	lastSendNs int64 // atomic
	skipped    uint64
	totalSent  uint64
	sendErrors uint64
}

// NewScheduler builds a scheduler flushing to tx. ctx bounds all sends.
func NewScheduler(ctx context.Context, cfg SchedulerConfig, tx transport.Transport, log *zap.Logger) *Scheduler {
	cfg.normalize()
	s := &Scheduler{
		cfg:      cfg,
		tx:       tx,
		log:      log,
		base:     ctx,
		pending:  make(map[int]batchEntry),
		inflight: semaphore.NewWeighted(1),
	}
	atomic.StoreInt64(&s.interval, int64(cfg.MinInterval))
	return s
}

// AddPosition records the freshest position for a track, overwriting any
// pending entry (latest-wins). When the batch is full and the track is new,
// a flush is forced first so the update is never dropped. If that flush is
// skipped by backpressure the entry is still added: the batch may exceed
// MaxBatchSize until the next successful flush, which drains it whole.
// Dropping the freshest position to hold the cap would be worse.
func (s *Scheduler) AddPosition(trackIndex int, pos motion.Position, coord CoordSystem) {
	if s.aborted.Load() {
		return
	}
	s.mu.Lock()
	_, known := s.pending[trackIndex]
	full := !known && len(s.pending) >= s.cfg.MaxBatchSize
	s.mu.Unlock()

	if full {
		s.Flush()
	}

	s.mu.Lock()
	s.pending[trackIndex] = batchEntry{position: pos, coord: coord}
	s.mu.Unlock()
}

// Flush snapshots and clears the pending batch and sends it asynchronously.
// If a previous send is still in flight the flush is skipped and the
// adaptive interval nudged upward; sends are never queued. Flush returns
// immediately in every case.
func (s *Scheduler) Flush() {
	if s.aborted.Load() {
		return
	}

	s.mu.Lock()
	if len(s.pending) == 0 {
		s.mu.Unlock()
		return
	}

	if !s.inflight.TryAcquire(1) {
		s.mu.Unlock()
		atomic.AddUint64(&s.skipped, 1)
		s.scaleIntervalUp()
		return
	}

	// Snapshot-and-replace: the compute loop keeps writing into a fresh
	// map while the send crosses the asynchronous boundary.
	snapshot := s.pending
	s.pending = make(map[int]batchEntry, len(snapshot))
	s.mu.Unlock()

	go s.send(snapshot)
}

func (s *Scheduler) send(snapshot map[int]batchEntry) {
	defer s.inflight.Release(1)

	if s.aborted.Load() {
		return
	}

	batch := transport.Batch{
		Entries:   make([]transport.Entry, 0, len(snapshot)),
		Timestamp: time.Now(),
	}
	for idx, e := range snapshot {
		batch.Entries = append(batch.Entries, transport.Entry{
			TrackIndex: idx,
			Position:   e.position,
			Coord:      string(e.coord),
		})
	}
	sort.Slice(batch.Entries, func(i, j int) bool {
		return batch.Entries[i].TrackIndex < batch.Entries[j].TrackIndex
	})

	start := time.Now()
	err := s.tx.Send(s.base, batch)
	elapsed := time.Since(start)

	atomic.StoreInt64(&s.lastSendNs, int64(elapsed))
	if err != nil {
		// Not fatal: the next flush resends the latest positions anyway.
		atomic.AddUint64(&s.sendErrors, 1)
		s.log.Warn("batch send failed",
			zap.Int("entries", len(batch.Entries)),
			zap.Error(err))
	} else {
		atomic.AddUint64(&s.totalSent, 1)
	}

	s.adjustInterval(elapsed)
}

// scaleIntervalUp backs off multiplicatively after a backpressure skip.
func (s *Scheduler) scaleIntervalUp() {
	for {
		cur := atomic.LoadInt64(&s.interval)
		next := int64(float64(cur) * 1.1)
		if next > int64(s.cfg.MaxInterval) {
			next = int64(s.cfg.MaxInterval)
		}
		if atomic.CompareAndSwapInt64(&s.interval, cur, next) {
			return
		}
	}
}

// adjustInterval applies the hysteresis rules: grow when the send nearly
// fills the interval, shrink when it uses less than half, hold in between
// to prevent oscillation.
func (s *Scheduler) adjustInterval(sendDuration time.Duration) {
	for {
		cur := atomic.LoadInt64(&s.interval)
		next := cur
		switch {
		case sendDuration > time.Duration(float64(cur)*0.9):
			next = cur + int64(s.cfg.Step)
			if next > int64(s.cfg.MaxInterval) {
				next = int64(s.cfg.MaxInterval)
			}
		case sendDuration < time.Duration(float64(cur)*0.5) && cur > int64(s.cfg.MinInterval):
			next = cur - int64(s.cfg.Step)
			if next < int64(s.cfg.MinInterval) {
				next = int64(s.cfg.MinInterval)
			}
		}
		if atomic.CompareAndSwapInt64(&s.interval, cur, next) {
			return
		}
	}
}

// AdaptiveInterval is the flush cadence the control loop currently wants.
// The owner of the flush loop re-reads it every cycle; the scheduler never
// schedules itself.
func (s *Scheduler) AdaptiveInterval() time.Duration {
	return time.Duration(atomic.LoadInt64(&s.interval))
}

// Stats returns an observable snapshot of the control loop.
func (s *Scheduler) Stats() ThrottleStats {
	return ThrottleStats{
		AdaptiveInterval: s.AdaptiveInterval(),
		LastSendDuration: time.Duration(atomic.LoadInt64(&s.lastSendNs)),
		SkippedSends:     atomic.LoadUint64(&s.skipped),
		TotalSent:        atomic.LoadUint64(&s.totalSent),
		SendErrors:       atomic.LoadUint64(&s.sendErrors),
	}
}

// Remove discards pending entries for the given tracks, so a stopped
// playback's last computed positions are never transmitted after stop.
// A snapshot already handed to the transport is unaffected.
func (s *Scheduler) Remove(trackIndexes ...int) {
	s.mu.Lock()
	for _, idx := range trackIndexes {
		delete(s.pending, idx)
	}
	s.mu.Unlock()
}

// Pending reports the number of coalesced entries awaiting flush.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Stop discards pending entries and arms the abort flag so an in-flight
// send cannot apply stale positions after the animation stopped.
func (s *Scheduler) Stop() {
	s.aborted.Store(true)
	s.mu.Lock()
	s.pending = make(map[int]batchEntry)
	s.mu.Unlock()
}

// Reset rearms a stopped scheduler for the next playback.
func (s *Scheduler) Reset() {
	s.mu.Lock()
	s.pending = make(map[int]batchEntry)
	s.mu.Unlock()
	atomic.StoreInt64(&s.interval, int64(s.cfg.MinInterval))
	s.aborted.Store(false)
}
