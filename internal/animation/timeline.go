package animation

import (
	"sync"
	"time"

	"folio.dev/internal/frameloop"
)

// Timeline is a running Plan bound to the stage. It is owned by exactly one
// component. Cancel reverts every property it wrote and releases its frame
// subscription.
type Timeline struct {
	mu        sync.Mutex
	loop      *frameloop.Loop
	plan      Plan
	b         *binding
	sub       frameloop.Subscription
	elapsed   time.Duration
	last      time.Time
	paused    bool
	done      bool
	cancelled bool
	err       error
	complete  func()
}

// PlayOption customises a timeline.
type PlayOption func(*Timeline)

// OnComplete runs fn on the loop once the final iteration has finished.
func OnComplete(fn func()) PlayOption {
	return func(t *Timeline) { t.complete = fn }
}

// Play resolves cfg and starts it on loop, writing as owner. The From state
// is applied immediately so the first frame never flashes the un-animated
// value.
func Play(loop *frameloop.Loop, stage *Stage, owner string, cfg TimelineConfig, opts ...PlayOption) (*Timeline, error) {
	t := &Timeline{loop: loop, plan: cfg.Resolve()}
	for _, opt := range opts {
		opt(t)
	}
	b, err := bind(stage, owner, t.plan.Targets(), t)
	if err != nil {
		return nil, err
	}
	t.b = b
	t.apply(0)
	t.sub = loop.OnFrame(t.frame)
	return t, nil
}

// Plan returns the resolved plan.
func (t *Timeline) Plan() Plan {
	return t.plan
}

func (t *Timeline) frame(now time.Time) {
	t.mu.Lock()
	if t.cancelled || t.paused || t.done {
		t.mu.Unlock()
		return
	}
	if !t.last.IsZero() {
		t.elapsed += now.Sub(t.last)
	}
	t.last = now
	local, done := t.plan.LocalTime(t.elapsed)
	t.apply(local)
	var complete func()
	if done {
		t.done = true
		t.sub.Cancel()
		t.b.detach()
		complete = t.complete
	}
	t.mu.Unlock()

	if complete != nil {
		complete()
	}
}

func (t *Timeline) apply(local time.Duration) {
	for _, v := range t.plan.Sample(local) {
		if err := t.b.set(v.Target, v.Property, v.V); err != nil && t.err == nil {
			t.err = err
		}
	}
}

// Cancel stops the timeline and reverts its writes. Safe to call more than
// once and from inside a frame callback.
func (t *Timeline) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancelled {
		return
	}
	t.cancelled = true
	if t.sub != nil {
		t.sub.Cancel()
	}
	if !t.done {
		t.b.detach()
	}
	t.b.revert()
}

// Pause suspends the timeline and drops its frame subscription.
func (t *Timeline) Pause() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancelled || t.done || t.paused {
		return
	}
	t.paused = true
	t.sub.Cancel()
	t.last = time.Time{}
}

// Resume continues a paused timeline from where it stopped.
func (t *Timeline) Resume() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancelled || t.done || !t.paused {
		return
	}
	t.paused = false
	t.sub = t.loop.OnFrame(t.frame)
}

// Seek jumps to elapsed wall time without waiting for frames. Used by
// scroll-scrubbed timelines.
func (t *Timeline) Seek(elapsed time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancelled {
		return
	}
	t.elapsed = elapsed
	local, _ := t.plan.LocalTime(elapsed)
	t.apply(local)
}

// Progress reports overall progress in [0,1].
func (t *Timeline) Progress() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return 1
	}
	return t.plan.Progress(t.elapsed)
}

// Done reports whether the final iteration finished.
func (t *Timeline) Done() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.done
}

// Cancelled reports whether Cancel was called.
func (t *Timeline) Cancelled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cancelled
}

// Err returns the first write error, typically ErrNotOwner.
func (t *Timeline) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}
