// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package anim

import (
	"fmt"
	"image"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"

	"github.com/gogpu/fx/internal/logger"
	"github.com/gogpu/fx/render"
)

// Frame is one image of an animation.
type Frame struct {
	// Texture holds the frame image. It may be shared by every frame of a
	// sprite sheet.
	Texture render.Texture

	// Rect is the frame region of Texture in texels. The zero value is the
	// whole texture.
	Rect image.Rectangle

	// Duration is how long the frame is shown.
	Duration float32

	start, end float32
}

// Start returns the frame start offset within one cycle.
func (f Frame) Start() float32 { return f.start }

// End returns the frame end offset within one cycle.
func (f Frame) End() float32 { return f.end }

// Option configures a Timeline.
type Option func(*Timeline)

// WithLoop makes the timeline restart after its last frame.
func WithLoop(loop bool) Option {
	return func(t *Timeline) {
		t.loop = loop
	}
}

// WithLoopCount completes a looping timeline when cycle n would start.
// Zero loops forever.
func WithLoopCount(n int) Option {
	return func(t *Timeline) {
		t.loopCount = max(n, 0)
	}
}

// WithSkipFrame selects whether a large step may skip frames. The default
// is true.
func WithSkipFrame(skip bool) Option {
	return func(t *Timeline) {
		t.skipFrame = skip
	}
}

// WithDuration sets the cycle length. A duration shorter than the sum of
// the frame durations is ignored; a longer one holds the last frame.
func WithDuration(d float32) Option {
	return func(t *Timeline) {
		t.userDuration = d
	}
}

// WithCompleteIndex selects the frame shown once the timeline completes.
// The default is the last frame.
func WithCompleteIndex(i int) Option {
	return func(t *Timeline) {
		t.completeIndex = i
	}
}

// Timeline maps play time to a frame index.
//
// Timeline is not safe for concurrent use.
type Timeline struct {
	id     uuid.UUID
	frames []Frame

	duration      float32
	userDuration  float32
	loop          bool
	loopCount     int
	skipFrame     bool
	completeIndex int

	current     int
	currentTime float32
	clock       float32
	cycle       int
	cycleStart  float32
	completed   bool

	onLoop     func(cycle int)
	onComplete func()
	onFrame    func(index int)
}

// New returns a timeline playing frames from time zero.
func New(frames []Frame, opts ...Option) (*Timeline, error) {
	t := &Timeline{
		id:            uuid.New(),
		skipFrame:     true,
		completeIndex: -1,
	}
	for _, opt := range opts {
		opt(t)
	}
	if err := t.SetFrames(frames); err != nil {
		return nil, err
	}
	return t, nil
}

// ID returns the timeline identifier.
func (t *Timeline) ID() uuid.UUID { return t.id }

// SetFrames replaces the frame list and rewinds to time zero. Frame offsets
// are rebuilt from scratch as a running sum of durations.
func (t *Timeline) SetFrames(frames []Frame) error {
	if len(frames) == 0 {
		return ErrNoFrames
	}
	out := make([]Frame, len(frames))
	var sum float32
	for i, f := range frames {
		if f.Duration <= 0 {
			return fmt.Errorf("%w: frame %d lasts %v", ErrFrameDuration, i, f.Duration)
		}
		f.start = sum
		sum += f.Duration
		f.end = sum
		out[i] = f
	}
	duration := max(t.userDuration, sum)
	out[len(out)-1].end = duration

	t.frames = out
	t.duration = duration
	logger.Get().Debug("anim: frames set", "id", t.id, "frames", len(out), "duration", duration)
	t.Reset()
	return nil
}

// Frames returns the frame list with computed offsets.
func (t *Timeline) Frames() []Frame { return t.frames }

// Duration returns the cycle length.
func (t *Timeline) Duration() float32 { return t.duration }

// CurrentIndex returns the index of the frame shown.
func (t *Timeline) CurrentIndex() int { return t.current }

// CurrentFrame returns the frame shown, or the zero Frame after Destroy.
func (t *Timeline) CurrentFrame() Frame {
	if t.current >= len(t.frames) {
		return Frame{}
	}
	return t.frames[t.current]
}

// CurrentTime returns the play time within the current cycle.
func (t *Timeline) CurrentTime() float32 { return t.currentTime }

// Loops returns the number of times the timeline has wrapped, which is
// also the index of the current cycle.
func (t *Timeline) Loops() int { return t.cycle }

// Completed reports whether the timeline has stopped.
func (t *Timeline) Completed() bool { return t.completed }

// OnLoop registers fn to run each time a cycle wraps. fn receives the new
// cycle number, starting at 1.
func (t *Timeline) OnLoop(fn func(cycle int)) { t.onLoop = fn }

// OnComplete registers fn to run once when the timeline stops.
func (t *Timeline) OnComplete(fn func()) { t.onComplete = fn }

// OnFrame registers fn to run whenever the frame index changes.
func (t *Timeline) OnFrame(fn func(index int)) { t.onFrame = fn }

// Reset rewinds to frame 0 at time zero.
func (t *Timeline) Reset() {
	t.current = 0
	t.currentTime = 0
	t.clock = 0
	t.cycle = 0
	t.cycleStart = 0
	t.completed = false
}

// Update advances the play clock by step and returns the frame index.
func (t *Timeline) Update(step float32) int {
	t.clock += step
	return t.UpdateByTime(t.clock)
}

// UpdateByTime moves the timeline to absolute play time now and returns the
// frame index. A completed timeline ignores further updates.
func (t *Timeline) UpdateByTime(now float32) int {
	t.clock = now
	if t.completed {
		return t.current
	}
	if t.skipFrame {
		t.skipTo(now)
	} else {
		t.stepTo(now)
	}
	return t.current
}

func (t *Timeline) skipTo(now float32) {
	cycle := int(math.Floor(float64(now / t.duration)))
	if cycle < 0 {
		cycle = 0
	}
	if !t.loop && now >= t.duration {
		t.complete(now)
		return
	}
	if t.loop && t.loopCount > 0 && cycle >= t.loopCount {
		t.wrapTo(t.loopCount - 1)
		t.complete(now)
		return
	}
	t.wrapTo(cycle)
	t.cycleStart = float32(cycle) * t.duration
	t.currentTime = now - t.cycleStart
	t.setCurrent(t.indexAt(t.currentTime))
}

// wrapTo advances the cycle counter to cycle, firing OnLoop once per wrap.
func (t *Timeline) wrapTo(cycle int) {
	for t.cycle < cycle {
		t.cycle++
		if t.onLoop != nil {
			t.onLoop(t.cycle)
		}
	}
}

func (t *Timeline) stepTo(now float32) {
	if now >= t.cycleStart+t.frames[t.current].end {
		next := t.current + 1
		if next == len(t.frames) {
			if !t.loop {
				t.complete(now)
				return
			}
			if t.loopCount > 0 && t.cycle+1 >= t.loopCount {
				t.complete(now)
				return
			}
			next = 0
			t.cycle++
			t.cycleStart += t.duration
			if t.onLoop != nil {
				t.onLoop(t.cycle)
			}
		}
		t.setCurrent(next)
	}
	// TODO: decide whether currentTime should snap to
	// CurrentFrame().Start() after a single-step advance.
	t.currentTime = now - t.cycleStart
}

func (t *Timeline) complete(now float32) {
	idx := t.completeIndex
	if idx < 0 || idx >= len(t.frames) {
		idx = len(t.frames) - 1
	}
	t.currentTime = min(now-t.cycleStart, t.duration)
	t.setCurrent(idx)
	t.completed = true
	logger.Get().Debug("anim: timeline complete", "id", t.id, "index", idx, "loops", t.cycle)
	if t.onComplete != nil {
		t.onComplete()
	}
}

// indexAt returns the frame whose [start, end) contains local.
func (t *Timeline) indexAt(local float32) int {
	for i, f := range t.frames {
		if local < f.end {
			return i
		}
	}
	return len(t.frames) - 1
}

func (t *Timeline) setCurrent(i int) {
	if i == t.current {
		return
	}
	t.current = i
	if t.onFrame != nil {
		t.onFrame(i)
	}
}

// Rect returns the current frame region as (x, y, w, h) in normalized
// texture coordinates, the layout of a display's uFrame uniform.
func (t *Timeline) Rect() mgl32.Vec4 {
	f := t.CurrentFrame()
	if f.Texture == nil {
		return mgl32.Vec4{0, 0, 1, 1}
	}
	return FrameRect(f.Rect, f.Texture.Width(), f.Texture.Height())
}

// Destroy drops the frame list. Frame textures belong to the caller.
func (t *Timeline) Destroy() {
	t.frames = nil
	t.current = 0
	t.completed = true
	t.onLoop, t.onComplete, t.onFrame = nil, nil, nil
}
