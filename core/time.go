package core

import (
	"time"

	"github.com/lumen3d/lumen/scene"
)

// NewTimeline creates a new timeline service.
func NewTimeline(cfg TimeConfiguration) *Timeline {
	var interval time.Duration
	if cfg.FramesPerSecond == 0 {
		interval = time.Millisecond
	} else {
		interval = time.Second / time.Duration(cfg.FramesPerSecond)
	}

	pollDelay := cfg.EventPollDelay
	if pollDelay <= 0 {
		pollDelay = 10
	}

	return &Timeline{
		fps:           cfg.FramesPerSecond,
		frameInterval: interval,
		pollInterval:  time.Duration(pollDelay) * time.Millisecond,
		frameTicker:   time.NewTicker(interval),
		eventTicker:   time.NewTicker(time.Duration(pollDelay) * time.Millisecond),
		started:       time.Now(),
		last:          time.Now(),
	}
}

// Timeline owns the frame clock: the tickers the run loop selects on,
// the frame delta, and the animation clips advancing with it.
type Timeline struct {
	fps           int
	frameInterval time.Duration
	pollInterval  time.Duration
	frameTicker   *time.Ticker
	eventTicker   *time.Ticker

	started time.Time
	last    time.Time
	elapsed float64

	clips []clipState
}

type clipState struct {
	clip *scene.AnimationClip
	at   float64
}

// Fps gets the set frames per second.
func (t *Timeline) Fps() int {
	return t.fps
}

// FrameTicker gets the initialized frame ticker.
func (t *Timeline) FrameTicker() *time.Ticker {
	return t.frameTicker
}

// EventTicker gets the initialized event ticker for the event loop.
func (t *Timeline) EventTicker() *time.Ticker {
	return t.eventTicker
}

// Start resumes both tickers after a Stop. The delta clock restarts
// from now, so the pause never shows up as one giant frame.
func (t *Timeline) Start() {
	t.frameTicker.Reset(t.frameInterval)
	t.eventTicker.Reset(t.pollInterval)
	t.last = time.Now()
}

// Stop halts both tickers until the next Start.
func (t *Timeline) Stop() {
	t.frameTicker.Stop()
	t.eventTicker.Stop()
}

// Advance measures the wall-clock delta since the previous call, in
// seconds. The run loop feeds it to Step.
func (t *Timeline) Advance() float64 {
	now := time.Now()
	dt := now.Sub(t.last).Seconds()
	t.last = now
	return dt
}

// Elapsed returns the total animated time in seconds.
func (t *Timeline) Elapsed() float64 { return t.elapsed }

// AddClip starts advancing a clip with the frame clock. Finished
// non-looping clips drop off the timeline on their own.
func (t *Timeline) AddClip(c *scene.AnimationClip) {
	if c == nil {
		return
	}
	t.clips = append(t.clips, clipState{clip: c})
}

// RemoveClip stops a clip by name.
func (t *Timeline) RemoveClip(name string) {
	for i := range t.clips {
		if t.clips[i].clip.Name == name {
			t.clips = append(t.clips[:i], t.clips[i+1:]...)
			return
		}
	}
}

// Clips returns the clips currently playing.
func (t *Timeline) Clips() []*scene.AnimationClip {
	out := make([]*scene.AnimationClip, len(t.clips))
	for i := range t.clips {
		out[i] = t.clips[i].clip
	}
	return out
}

// Tick advances playheads by dt seconds and samples every active
// clip. Runs on the frame timeline once per Step.
func (t *Timeline) Tick(dt float64) {
	t.elapsed += dt

	keep := t.clips[:0]
	for _, cs := range t.clips {
		cs.at += dt
		done := false
		if cs.clip.Duration > 0 && cs.at >= cs.clip.Duration {
			if cs.clip.Loop {
				for cs.at >= cs.clip.Duration {
					cs.at -= cs.clip.Duration
				}
			} else {
				cs.at = cs.clip.Duration
				done = true
			}
		}
		if cs.clip.Sample != nil {
			cs.clip.Sample(cs.at)
		}
		if !done {
			keep = append(keep, cs)
		}
	}
	t.clips = keep
}
