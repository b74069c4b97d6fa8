package stream

import (
	"math"
	"time"
)

// TimingState is the mutable playback clock of one animation. It is created
// on play, mutated by pause/resume/seek, and discarded on stop.
type TimingState struct {
	StartTime time.Time
	// PausedElapsed is the elapsed wall-clock captured at pause time.
	PausedElapsed time.Duration
	LoopCount     int
	IsReversed    bool
	IsPaused      bool
}

// NewTimingState starts the clock at now.
func NewTimingState(now time.Time) *TimingState {
	return &TimingState{StartTime: now}
}

// TimeResult is one evaluation of the timing state machine.
type TimeResult struct {
	// AnimationTime is elapsed seconds within the current cycle, always in
	// [0, duration].
	AnimationTime float64
	// Progress is AnimationTime normalized to [0, 1].
	Progress float64
	LoopCount  int
	IsReversed bool
	// ShouldLoop fires exactly once per completed duration boundary.
	ShouldLoop bool
	// ShouldStop fires when a non-looping animation has run its course.
	ShouldStop bool
}

// CalculateAnimationTime converts wall-clock time into bounded, loop and
// ping-pong aware animation time and advances the state machine.
func CalculateAnimationTime(now time.Time, anim *Animation, state *TimingState) TimeResult {
	duration := anim.Duration.Seconds()
	if duration <= 0 {
		return TimeResult{ShouldStop: true}
	}

	var elapsed float64
	if state.IsPaused {
		elapsed = state.PausedElapsed.Seconds()
	} else {
		elapsed = now.Sub(state.StartTime).Seconds()
	}
	if elapsed < 0 {
		elapsed = 0
	}

	if !anim.Loop {
		at := math.Min(elapsed, duration)
		return TimeResult{
			AnimationTime: at,
			Progress:      at / duration,
			LoopCount:     0,
			ShouldStop:    elapsed >= duration,
		}
	}

	totalLoops := int(math.Floor(elapsed / duration))
	timeInLoop := math.Mod(elapsed, duration)

	at := timeInLoop
	reversed := false
	if anim.PingPong {
		// Odd loop index runs backward; the transition is continuous
		// because duration - 0 == duration at every boundary.
		reversed = totalLoops%2 == 1
		if reversed {
			at = duration - timeInLoop
		}
	}
	if at < 0 {
		at = 0
	}
	if at > duration {
		at = duration
	}

	// While paused the state is never advanced, so a boundary crossed just
	// before the pause would re-fire on every evaluation. Report it only
	// when running; the first evaluation after resume picks it up.
	shouldLoop := !state.IsPaused && totalLoops > state.LoopCount
	if !state.IsPaused {
		state.LoopCount = totalLoops
		state.IsReversed = reversed
	}

	return TimeResult{
		AnimationTime: at,
		Progress:      at / duration,
		LoopCount:     totalLoops,
		IsReversed:    reversed,
		ShouldLoop:    shouldLoop,
	}
}

// Pause freezes the clock, capturing elapsed wall-clock time.
func (s *TimingState) Pause(now time.Time) {
	if s.IsPaused {
		return
	}
	s.PausedElapsed = now.Sub(s.StartTime)
	s.IsPaused = true
}

// Resume continues playback seamlessly from the paused elapsed time.
func (s *TimingState) Resume(now time.Time) {
	if !s.IsPaused {
		return
	}
	s.StartTime = now.Add(-s.PausedElapsed)
	s.IsPaused = false
}

// Seek jumps the clock so elapsed time equals offset.
func (s *TimingState) Seek(now time.Time, offset time.Duration) {
	if offset < 0 {
		offset = 0
	}
	if s.IsPaused {
		s.PausedElapsed = offset
		return
	}
	s.StartTime = now.Add(-offset)
}

// Reset reinitializes the clock at now.
func (s *TimingState) Reset(now time.Time) {
	s.StartTime = now
	s.PausedElapsed = 0
	s.LoopCount = 0
	s.IsReversed = false
	s.IsPaused = false
}
