// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package anim

import (
	"errors"
	"testing"
)

func frames(n int, d float32) []Frame {
	out := make([]Frame, n)
	for i := range out {
		out[i].Duration = d
	}
	return out
}

func mustNew(t *testing.T, f []Frame, opts ...Option) *Timeline {
	t.Helper()
	tl, err := New(f, opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return tl
}

func TestNewErrors(t *testing.T) {
	tests := []struct {
		name   string
		frames []Frame
		want   error
	}{
		{"empty", nil, ErrNoFrames},
		{"zero duration", []Frame{{Duration: 1}, {Duration: 0}}, ErrFrameDuration},
		{"negative duration", []Frame{{Duration: -5}}, ErrFrameDuration},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.frames); !errors.Is(err, tt.want) {
				t.Errorf("New() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestFrameOffsets(t *testing.T) {
	tl := mustNew(t, []Frame{{Duration: 50}, {Duration: 100}, {Duration: 25}})
	want := [][2]float32{{0, 50}, {50, 150}, {150, 175}}
	for i, f := range tl.Frames() {
		if f.Start() != want[i][0] || f.End() != want[i][1] {
			t.Errorf("frame %d = [%v, %v), want [%v, %v)", i, f.Start(), f.End(), want[i][0], want[i][1])
		}
	}
	if got := tl.Duration(); got != 175 {
		t.Errorf("Duration() = %v, want 175", got)
	}
}

func TestDuration(t *testing.T) {
	tests := []struct {
		name    string
		user    float32
		want    float32
		lastEnd float32
	}{
		{"sum", 0, 400, 400},
		{"shorter ignored", 100, 400, 400},
		{"longer holds last frame", 600, 600, 600},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tl := mustNew(t, frames(4, 100), WithDuration(tt.user))
			if got := tl.Duration(); got != tt.want {
				t.Errorf("Duration() = %v, want %v", got, tt.want)
			}
			if got := tl.Frames()[3].End(); got != tt.lastEnd {
				t.Errorf("last End() = %v, want %v", got, tt.lastEnd)
			}
		})
	}

	tl := mustNew(t, frames(4, 100), WithDuration(600), WithLoop(true))
	if got := tl.UpdateByTime(550); got != 3 {
		t.Errorf("UpdateByTime(550) = %d, want 3", got)
	}
	if got := tl.UpdateByTime(650); got != 0 {
		t.Errorf("UpdateByTime(650) = %d, want 0", got)
	}
}

func TestSkipFrameLoop(t *testing.T) {
	tl := mustNew(t, frames(4, 100), WithLoop(true))
	var loops []int
	tl.OnLoop(func(cycle int) { loops = append(loops, cycle) })

	steps := []struct {
		now  float32
		want int
	}{
		{0, 0},
		{250, 2},
		{450, 0},
	}
	for _, s := range steps {
		if got := tl.UpdateByTime(s.now); got != s.want {
			t.Errorf("UpdateByTime(%v) = %d, want %d", s.now, got, s.want)
		}
	}
	if len(loops) != 1 || loops[0] != 1 {
		t.Errorf("OnLoop calls = %v, want [1]", loops)
	}
	if got := tl.CurrentTime(); got != 50 {
		t.Errorf("CurrentTime() = %v, want 50", got)
	}
	if got := tl.Loops(); got != 1 {
		t.Errorf("Loops() = %d, want 1", got)
	}
}

func TestSkipFrameWrapsSeveralCycles(t *testing.T) {
	tl := mustNew(t, frames(4, 100), WithLoop(true))
	calls := 0
	tl.OnLoop(func(int) { calls++ })
	if got := tl.UpdateByTime(1450); got != 2 {
		t.Errorf("UpdateByTime(1450) = %d, want 2", got)
	}
	if calls != 3 {
		t.Errorf("OnLoop calls = %d, want 3", calls)
	}
}

func TestSingleStep(t *testing.T) {
	tl := mustNew(t, frames(4, 100), WithLoop(true), WithSkipFrame(false))
	loops := 0
	tl.OnLoop(func(int) { loops++ })

	// Each call advances at most one frame.
	for i, want := range []int{1, 2, 3, 0, 0} {
		if got := tl.UpdateByTime(450); got != want {
			t.Errorf("call %d: UpdateByTime(450) = %d, want %d", i, got, want)
		}
	}
	if loops != 1 {
		t.Errorf("OnLoop calls = %d, want 1", loops)
	}
	if got := tl.CurrentTime(); got != 50 {
		t.Errorf("CurrentTime() = %v, want 50", got)
	}
}

func TestSkipModesDiffer(t *testing.T) {
	skip := mustNew(t, frames(4, 100), WithLoop(true))
	step := mustNew(t, frames(4, 100), WithLoop(true), WithSkipFrame(false))
	a, b := skip.UpdateByTime(450), step.UpdateByTime(450)
	if a != 0 || b != 1 {
		t.Errorf("UpdateByTime(450) skip = %d, single-step = %d, want 0 and 1", a, b)
	}
	// The single-step time is not snapped to the frame start.
	if got := step.CurrentTime(); got != 450 {
		t.Errorf("single-step CurrentTime() = %v, want 450", got)
	}
}

func TestComplete(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
		now  []float32
		want int
	}{
		{"once", nil, []float32{400}, 3},
		{"complete index", []Option{WithCompleteIndex(1)}, []float32{900}, 1},
		{"out of range complete index", []Option{WithCompleteIndex(9)}, []float32{400}, 3},
		{"loop count", []Option{WithLoop(true), WithLoopCount(2)}, []float32{850}, 3},
		{"single-step once", []Option{WithSkipFrame(false)}, []float32{100, 200, 300, 400}, 3},
		{"single-step loop count", []Option{WithSkipFrame(false), WithLoop(true), WithLoopCount(1)}, []float32{100, 200, 300, 400}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tl := mustNew(t, frames(4, 100), tt.opts...)
			done := 0
			tl.OnComplete(func() { done++ })
			var got int
			for _, now := range tt.now {
				got = tl.UpdateByTime(now)
			}
			if got != tt.want {
				t.Errorf("UpdateByTime() = %d, want %d", got, tt.want)
			}
			if !tl.Completed() || done != 1 {
				t.Errorf("Completed() = %v with %d OnComplete calls, want true and 1", tl.Completed(), done)
			}
			if got := tl.UpdateByTime(50); got != tt.want {
				t.Errorf("UpdateByTime() after completion = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestLoopCountFiresLoops(t *testing.T) {
	tl := mustNew(t, frames(4, 100), WithLoop(true), WithLoopCount(3))
	loops := 0
	tl.OnLoop(func(int) { loops++ })
	tl.UpdateByTime(5000)
	if loops != 2 || tl.Loops() != 2 {
		t.Errorf("OnLoop calls = %d, Loops() = %d, want 2 and 2", loops, tl.Loops())
	}
}

func TestUpdateAccumulates(t *testing.T) {
	tl := mustNew(t, frames(4, 100))
	var changes []int
	tl.OnFrame(func(i int) { changes = append(changes, i) })
	for range 3 {
		tl.Update(100)
	}
	if got := tl.CurrentIndex(); got != 3 {
		t.Errorf("CurrentIndex() = %d, want 3", got)
	}
	if len(changes) != 3 || changes[0] != 1 || changes[2] != 3 {
		t.Errorf("OnFrame calls = %v, want [1 2 3]", changes)
	}
}

func TestReset(t *testing.T) {
	tl := mustNew(t, frames(2, 10))
	tl.UpdateByTime(100)
	if !tl.Completed() {
		t.Fatal("Completed() = false, want true")
	}
	tl.Reset()
	if tl.Completed() || tl.CurrentIndex() != 0 || tl.CurrentTime() != 0 {
		t.Errorf("after Reset() completed=%v index=%d time=%v, want false 0 0",
			tl.Completed(), tl.CurrentIndex(), tl.CurrentTime())
	}
	if got := tl.Update(15); got != 1 {
		t.Errorf("Update(15) = %d, want 1", got)
	}
}

func TestSetFramesRebuilds(t *testing.T) {
	tl := mustNew(t, frames(4, 100), WithLoop(true))
	tl.UpdateByTime(250)
	if err := tl.SetFrames(frames(2, 30)); err != nil {
		t.Fatal(err)
	}
	if tl.CurrentIndex() != 0 || tl.Duration() != 60 || len(tl.Frames()) != 2 {
		t.Errorf("after SetFrames() index=%d duration=%v frames=%d, want 0 60 2",
			tl.CurrentIndex(), tl.Duration(), len(tl.Frames()))
	}
	if err := tl.SetFrames(nil); !errors.Is(err, ErrNoFrames) {
		t.Errorf("SetFrames(nil) error = %v, want ErrNoFrames", err)
	}
}

func TestDestroy(t *testing.T) {
	tl := mustNew(t, frames(2, 10))
	tl.Destroy()
	if got := tl.UpdateByTime(5); got != 0 {
		t.Errorf("UpdateByTime() after Destroy = %d, want 0", got)
	}
	if got := tl.CurrentFrame(); got.Duration != 0 {
		t.Errorf("CurrentFrame() after Destroy = %+v, want zero", got)
	}
}
