package animation

import (
	"sync"
	"time"

	"folio.dev/internal/frameloop"
)

// Setter writes one property through a driver's binding.
type Setter func(element, property string, v float64)

// DriveFunc computes per-frame values for open-ended motion such as idle
// rotation or cursor following. elapsed excludes time spent paused.
type DriveFunc func(elapsed time.Duration, set Setter)

// Driver runs a DriveFunc every frame until cancelled. Like Timeline it
// reverts its writes on Cancel.
type Driver struct {
	mu        sync.Mutex
	loop      *frameloop.Loop
	fn        DriveFunc
	b         *binding
	sub       frameloop.Subscription
	elapsed   time.Duration
	last      time.Time
	paused    bool
	cancelled bool
	err       error
}

// Drive claims targets for owner and subscribes fn to the loop.
func Drive(loop *frameloop.Loop, stage *Stage, owner string, targets []string, fn DriveFunc) (*Driver, error) {
	d := &Driver{loop: loop, fn: fn}
	b, err := bind(stage, owner, uniqueTargets(targets), d)
	if err != nil {
		return nil, err
	}
	d.b = b
	d.sub = loop.OnFrame(d.frame)
	return d, nil
}

func (d *Driver) frame(now time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cancelled || d.paused {
		return
	}
	if !d.last.IsZero() {
		d.elapsed += now.Sub(d.last)
	}
	d.last = now
	d.fn(d.elapsed, func(el, prop string, v float64) {
		if err := d.b.set(el, prop, v); err != nil && d.err == nil {
			d.err = err
		}
	})
}

// Cancel stops the driver and reverts its writes. Idempotent.
func (d *Driver) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cancelled {
		return
	}
	d.cancelled = true
	d.sub.Cancel()
	d.b.detach()
	d.b.revert()
}

// Pause drops the frame subscription, keeping current values.
func (d *Driver) Pause() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cancelled || d.paused {
		return
	}
	d.paused = true
	d.sub.Cancel()
	d.last = time.Time{}
}

// Resume re-subscribes a paused driver.
func (d *Driver) Resume() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cancelled || !d.paused {
		return
	}
	d.paused = false
	d.sub = d.loop.OnFrame(d.frame)
}

// Elapsed returns the running time, excluding pauses.
func (d *Driver) Elapsed() time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.elapsed
}

// Err returns the first write error.
func (d *Driver) Err() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.err
}
