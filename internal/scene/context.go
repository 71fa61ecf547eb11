package scene

import (
	"sync"
	"time"
)

// Restore policy defaults.
const (
	DefaultMaxRestores   = 3
	DefaultRestoreWindow = 30 * time.Second
)

// Action is what to do after the graphics context was lost.
type Action int

const (
	// Restore asks the surface to recreate its context.
	Restore Action = iota
	// Notice gives up and shows the blocking notice.
	Notice
)

func (a Action) String() string {
	if a == Restore {
		return "restore"
	}
	return "notice"
}

// ContextGuard bounds how often a lost graphics context is restored. At
// most max restores are allowed inside any window; the next loss latches
// the guard into the notice state until Reset.
type ContextGuard struct {
	mu       sync.Mutex
	max      int
	window   time.Duration
	restores []time.Time
	noticed  bool
	losses   int
}

// NewContextGuard creates a guard. Non-positive values use the defaults.
func NewContextGuard(max int, window time.Duration) *ContextGuard {
	if max <= 0 {
		max = DefaultMaxRestores
	}
	if window <= 0 {
		window = DefaultRestoreWindow
	}
	return &ContextGuard{max: max, window: window}
}

// Lost records a context loss at now and decides how to react.
func (g *ContextGuard) Lost(now time.Time) Action {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.losses++
	if g.noticed {
		return Notice
	}

	cutoff := now.Add(-g.window)
	kept := g.restores[:0]
	for _, t := range g.restores {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	g.restores = kept

	if len(g.restores) >= g.max {
		g.noticed = true
		return Notice
	}
	g.restores = append(g.restores, now)
	return Restore
}

// Noticed reports whether the guard has given up.
func (g *ContextGuard) Noticed() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.noticed
}

// Losses reports the losses recorded since the guard was created or reset.
func (g *ContextGuard) Losses() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.losses
}

// Reset starts the guard over, as a page reload would.
func (g *ContextGuard) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.restores = nil
	g.noticed = false
	g.losses = 0
}
