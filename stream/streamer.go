package stream

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/soundpath/motiontx/motion"
)

// playback is one live animation with its clock.
type playback struct {
	anim  *Animation
	state *TimingState
	coord CoordSystem
	last  TimeResult
}

// Streamer owns the set of live playbacks, computes per-track positions on
// every tick and feeds them to the scheduler. A second loop drives Flush at
// the scheduler's adaptive cadence.
type Streamer struct {
	cfg   StreamConfig
	sched *Scheduler
	log   *zap.Logger

	mu        sync.Mutex
	playbacks map[string]*playback
	// latest mirrors the last computed position per track for the monitor.
	latest map[int]motion.Position
}

// NewStreamer creates a Streamer pushing to sched.
func NewStreamer(cfg StreamConfig, sched *Scheduler, log *zap.Logger) *Streamer {
	if cfg.TickRate <= 0 {
		cfg.TickRate = 60
	}
	if cfg.Coord == "" {
		cfg.Coord = string(CoordXYZ)
	}
	return &Streamer{
		cfg:       cfg,
		sched:     sched,
		log:       log,
		playbacks: make(map[string]*playback),
		latest:    make(map[int]motion.Position),
	}
}

// Play validates the animation, normalizes its transform against the
// supplied track layout and starts its clock. Configuration errors are
// returned synchronously and block playback.
func (s *Streamer) Play(anim *Animation, tracks []Track) error {
	prepared := Normalize(anim, tracks)
	if err := prepared.Validate(); err != nil {
		return err
	}
	prepared.Prepare()

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.playbacks) == 0 {
		s.sched.Reset()
	}
	s.playbacks[prepared.ID] = &playback{
		anim:  prepared,
		state: NewTimingState(time.Now()),
		coord: CoordSystem(s.cfg.Coord),
	}
	s.log.Info("playback started",
		zap.String("animation", prepared.Name),
		zap.String("id", prepared.ID),
		zap.String("model", string(prepared.MotionType)),
		zap.Int("tracks", len(prepared.Transform.Tracks)))
	return nil
}

// Pause freezes one playback's clock. A send already in flight completes.
func (s *Streamer) Pause(id string) error {
	return s.withPlayback(id, func(p *playback) {
		p.state.Pause(time.Now())
	})
}

// Resume continues a paused playback seamlessly.
func (s *Streamer) Resume(id string) error {
	return s.withPlayback(id, func(p *playback) {
		p.state.Resume(time.Now())
	})
}

// Seek jumps one playback to the given elapsed offset.
func (s *Streamer) Seek(id string, offset time.Duration) error {
	return s.withPlayback(id, func(p *playback) {
		p.state.Seek(time.Now(), offset)
	})
}

// Stop removes a playback and clears its pending transmissions.
func (s *Streamer) Stop(id string) error {
	s.mu.Lock()
	p, ok := s.playbacks[id]
	if ok {
		delete(s.playbacks, id)
	}
	empty := len(s.playbacks) == 0
	if ok && !empty {
		s.dropIdleTracks(p.anim)
	}
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("stream: no playback with id %q", id)
	}

	if empty {
		// Last playback gone: drop pending entries and abort any send that
		// has not yet left, so stale positions never land after stop.
		s.sched.Stop()
	}
	s.log.Info("playback stopped",
		zap.String("animation", p.anim.Name),
		zap.String("id", id))
	return nil
}

func (s *Streamer) withPlayback(id string, fn func(*playback)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.playbacks[id]
	if !ok {
		return fmt.Errorf("stream: no playback with id %q", id)
	}
	fn(p)
	return nil
}

// Run drives the compute and flush loops until ctx is cancelled.
func (s *Streamer) Run(ctx context.Context) {
	go s.flushLoop(ctx)

	tick := time.NewTicker(time.Second / time.Duration(s.cfg.TickRate))
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-tick.C:
			s.step(now)
		}
	}
}

// step evaluates every live playback at now and coalesces the results.
func (s *Streamer) step(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var stopped []*playback
	for id, p := range s.playbacks {
		res := CalculateAnimationTime(now, p.anim, p.state)
		p.last = res

		if res.ShouldStop {
			delete(s.playbacks, id)
			stopped = append(stopped, p)
			continue
		}
		for idx, pos := range TrackPositions(p.anim, res) {
			s.latest[idx] = pos
			s.sched.AddPosition(idx, pos, p.coord)
		}
	}

	for _, p := range stopped {
		s.log.Info("playback finished",
			zap.String("animation", p.anim.Name),
			zap.String("id", p.anim.ID))
	}
	if len(stopped) > 0 && len(s.playbacks) == 0 {
		s.sched.Stop()
	} else {
		for _, p := range stopped {
			s.dropIdleTracks(p.anim)
		}
	}
}

// dropIdleTracks clears pending entries for the stopped animation's tracks,
// skipping any track a remaining playback still drives. Caller holds s.mu.
func (s *Streamer) dropIdleTracks(anim *Animation) {
	live := make(map[int]bool)
	for _, p := range s.playbacks {
		for idx := range p.anim.Transform.Tracks {
			live[idx] = true
		}
	}
	var idle []int
	for idx := range anim.Transform.Tracks {
		if !live[idx] {
			idle = append(idle, idx)
		}
	}
	if len(idle) > 0 {
		s.sched.Remove(idle...)
	}
}

// flushLoop re-reads the adaptive interval every cycle; the scheduler
// itself never self-schedules.
func (s *Streamer) flushLoop(ctx context.Context) {
	timer := time.NewTimer(s.sched.AdaptiveInterval())
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			s.sched.Flush()
			timer.Reset(s.sched.AdaptiveInterval())
		}
	}
}

// PlaybackStatus is a read-only view of one live playback for the monitor.
type PlaybackStatus struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Model         string  `json:"model"`
	AnimationTime float64 `json:"animationTime"`
	Progress      float64 `json:"progress"`
	LoopCount     int     `json:"loopCount"`
	IsReversed    bool    `json:"isReversed"`
	IsPaused      bool    `json:"isPaused"`
}

// Snapshot returns the live playbacks, latest positions and throttle stats.
// The monitor reads it for display only and never mutates pipeline state.
func (s *Streamer) Snapshot() ([]PlaybackStatus, map[int]motion.Position, ThrottleStats) {
	s.mu.Lock()
	statuses := make([]PlaybackStatus, 0, len(s.playbacks))
	for id, p := range s.playbacks {
		statuses = append(statuses, PlaybackStatus{
			ID:            id,
			Name:          p.anim.Name,
			Model:         string(p.anim.MotionType),
			AnimationTime: p.last.AnimationTime,
			Progress:      p.last.Progress,
			LoopCount:     p.last.LoopCount,
			IsReversed:    p.last.IsReversed,
			IsPaused:      p.state.IsPaused,
		})
	}
	positions := make(map[int]motion.Position, len(s.latest))
	for idx, pos := range s.latest {
		positions[idx] = pos
	}
	s.mu.Unlock()
	return statuses, positions, s.sched.Stats()
}
