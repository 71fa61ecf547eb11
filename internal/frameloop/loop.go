// Package frameloop is the cooperative scheduler every animation runs on.
//
// All frame callbacks and timers execute sequentially, either on the
// goroutine started by Run or on the caller of Step. Nothing registered on a
// Loop ever runs in parallel with anything else registered on the same Loop.
package frameloop

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultInterval is roughly one frame at 60Hz.
const DefaultInterval = 16 * time.Millisecond

// FrameFunc is called once per frame with the frame timestamp.
type FrameFunc func(now time.Time)

// Subscription is a revocable registration on a Loop.
// Cancel is idempotent and may be called from inside a callback.
type Subscription interface {
	Cancel()
}

type entry struct {
	id    uint64
	frame FrameFunc
	timer func()
	due   time.Time
}

// Loop schedules frame callbacks and one-shot timers.
type Loop struct {
	mu       sync.Mutex
	step     sync.Mutex
	interval time.Duration
	nextID   uint64
	frames   map[uint64]*entry
	timers   map[uint64]*entry
	last     time.Time
	now      func() time.Time
	log      *zap.Logger
	onError  func(error)
}

// Option configures a Loop.
type Option func(*Loop)

// WithLogger sets the logger used to report callback faults.
func WithLogger(l *zap.Logger) Option {
	return func(lp *Loop) { lp.log = l }
}

// WithClock overrides the wall clock used by Run and by After before the
// first frame.
func WithClock(now func() time.Time) Option {
	return func(lp *Loop) { lp.now = now }
}

// WithErrorHandler registers a hook for callbacks that panic.
func WithErrorHandler(fn func(error)) Option {
	return func(lp *Loop) { lp.onError = fn }
}

// New creates a loop ticking at interval. A non-positive interval falls back
// to DefaultInterval.
func New(interval time.Duration, opts ...Option) *Loop {
	if interval <= 0 {
		interval = DefaultInterval
	}
	l := &Loop{
		interval: interval,
		frames:   make(map[uint64]*entry),
		timers:   make(map[uint64]*entry),
		now:      time.Now,
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Interval returns the tick interval used by Run.
func (l *Loop) Interval() time.Duration {
	return l.interval
}

// OnFrame registers fn to run on every frame until cancelled.
func (l *Loop) OnFrame(fn FrameFunc) Subscription {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.nextID++
	e := &entry{id: l.nextID, frame: fn}
	l.frames[e.id] = e
	return &subscription{loop: l, id: e.id}
}

// After registers fn to run once on the first frame at or after d from now.
// "Now" is the timestamp of the most recent frame, or the loop clock if no
// frame has run yet.
func (l *Loop) After(d time.Duration, fn func()) Subscription {
	l.mu.Lock()
	defer l.mu.Unlock()
	base := l.last
	if base.IsZero() {
		base = l.now()
	}
	l.nextID++
	e := &entry{id: l.nextID, timer: fn, due: base.Add(d)}
	l.timers[e.id] = e
	return &subscription{loop: l, id: e.id}
}

// Active reports the number of live frame subscriptions plus pending timers.
func (l *Loop) Active() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.frames) + len(l.timers)
}

// Step runs a single frame at now. Timers that are due fire first, in
// registration order, followed by every frame callback in registration order.
func (l *Loop) Step(now time.Time) {
	l.step.Lock()
	defer l.step.Unlock()

	l.mu.Lock()
	l.last = now
	var due []*entry
	for id, e := range l.timers {
		if !now.Before(e.due) {
			due = append(due, e)
			delete(l.timers, id)
		}
	}
	frames := make([]*entry, 0, len(l.frames))
	for _, e := range l.frames {
		frames = append(frames, e)
	}
	l.mu.Unlock()

	sort.Slice(due, func(i, j int) bool { return due[i].id < due[j].id })
	sort.Slice(frames, func(i, j int) bool { return frames[i].id < frames[j].id })

	for _, e := range due {
		l.invoke(e, func() { e.timer() })
	}
	for _, e := range frames {
		if !l.live(e.id) {
			continue
		}
		l.invoke(e, func() { e.frame(now) })
	}
}

// Run ticks the loop until ctx is done. It always returns nil so it can sit
// in an errgroup.
func (l *Loop) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			l.Step(l.now())
		}
	}
}

func (l *Loop) live(id uint64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.frames[id]
	return ok
}

func (l *Loop) cancel(id uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.frames, id)
	delete(l.timers, id)
}

// invoke runs fn, dropping the entry if it panics.
func (l *Loop) invoke(e *entry, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.cancel(e.id)
			err := fmt.Errorf("frameloop: callback %d panicked: %v", e.id, r)
			l.log.Error("frame callback removed after panic", zap.Uint64("id", e.id), zap.Any("panic", r))
			if l.onError != nil {
				l.onError(err)
			}
		}
	}()
	fn()
}

type subscription struct {
	loop *Loop
	id   uint64
	once sync.Once
}

func (s *subscription) Cancel() {
	s.once.Do(func() { s.loop.cancel(s.id) })
}
