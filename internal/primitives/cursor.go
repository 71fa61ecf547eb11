package primitives

import (
	"math"
	"time"

	"folio.dev/internal/animation"
	"folio.dev/internal/frameloop"
)

// Pointer reads the shared pointer position. Followers never write it.
type Pointer func() (x, y float64)

// CursorFollower eases an element toward the pointer each frame.
type CursorFollower struct {
	Target string
	// Smoothing is the fraction of the remaining distance covered per
	// 60Hz frame, in (0,1]. Zero means 0.15.
	Smoothing float64
}

// Follow computes the next position from the current one. dt scales the
// step so motion speed does not depend on frame rate.
func (c CursorFollower) Follow(x, y, px, py float64, dt time.Duration) (float64, float64) {
	k := c.Smoothing
	if k <= 0 || k > 1 {
		k = 0.15
	}
	frames := dt.Seconds() * 60
	if frames <= 0 {
		return x, y
	}
	// 1-(1-k)^frames, so two 8ms steps equal one 16ms step.
	f := 1 - math.Pow(1-k, frames)
	return x + (px-x)*f, y + (py-y)*f
}

// Run subscribes the follower to the loop.
func (c CursorFollower) Run(loop *frameloop.Loop, stage *animation.Stage, owner string, pointer Pointer) (*animation.Driver, error) {
	var x, y float64
	var last time.Duration
	started := false
	return animation.Drive(loop, stage, owner, []string{c.Target}, func(elapsed time.Duration, set animation.Setter) {
		px, py := pointer()
		if !started {
			x, y, started = px, py, true
		} else {
			x, y = c.Follow(x, y, px, py, elapsed-last)
		}
		last = elapsed
		set(c.Target, "x", x)
		set(c.Target, "y", y)
	})
}
