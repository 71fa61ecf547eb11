package scene

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"folio.dev/internal/animation"
	"folio.dev/internal/frameloop"
)

// Capabilities describes what the visitor's browser can render.
type Capabilities struct {
	WebGL bool `json:"webgl"`
}

// SurfaceState is where a rendering surface is in its lifecycle.
type SurfaceState int

const (
	SurfaceUnmounted SurfaceState = iota
	SurfaceIdle
	SurfaceRunning
	SurfaceRestoring
	SurfaceFallback
	SurfaceNotice
	SurfaceClosed
)

func (s SurfaceState) String() string {
	switch s {
	case SurfaceUnmounted:
		return "unmounted"
	case SurfaceIdle:
		return "idle"
	case SurfaceRunning:
		return "running"
	case SurfaceRestoring:
		return "restoring"
	case SurfaceFallback:
		return "fallback"
	case SurfaceNotice:
		return "notice"
	case SurfaceClosed:
		return "closed"
	}
	return fmt.Sprintf("surface(%d)", int(s))
}

// ErrSurfaceState is returned for lifecycle calls made out of order.
var ErrSurfaceState = errors.New("invalid surface state")

// Transform is the only thing a surface changes per frame.
type Transform struct {
	Rotation float64
	Scale    float64
	Opacity  float64
}

// Motion maps time spent running to a transform.
type Motion func(elapsed time.Duration) Transform

// IdleRotation spins at speed radians per second with a slow breathing
// scale.
func IdleRotation(speed float64) Motion {
	return func(elapsed time.Duration) Transform {
		s := elapsed.Seconds()
		return Transform{
			Rotation: speed * s,
			Scale:    1 + 0.02*math.Sin(2*math.Pi*s/4),
			Opacity:  1,
		}
	}
}

// SurfaceOptions configures a Surface.
type SurfaceOptions struct {
	// Element is the canvas element id; it is also the stage owner.
	Element  string
	Geometry *Geometry
	Motion   Motion
	Guard    *ContextGuard
	Logger   *zap.Logger
}

// Surface is an isolated rendering surface. Its frame subscription exists
// only while it is running, which requires WebGL and visibility. Geometry is
// fixed at construction; frames only update the transform.
type Surface struct {
	mu      sync.Mutex
	loop    *frameloop.Loop
	stage   *animation.Stage
	opts    SurfaceOptions
	log     *zap.Logger
	state   SurfaceState
	visible bool
	driver  *animation.Driver
}

// NewSurface creates an unmounted surface.
func NewSurface(loop *frameloop.Loop, stage *animation.Stage, opts SurfaceOptions) *Surface {
	if opts.Motion == nil {
		opts.Motion = IdleRotation(0.2)
	}
	if opts.Guard == nil {
		opts.Guard = NewContextGuard(0, 0)
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Surface{
		loop:  loop,
		stage: stage,
		opts:  opts,
		log:   logger.With(zap.String("surface", opts.Element)),
	}
}

// State returns the lifecycle state.
func (s *Surface) State() SurfaceState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Geometry returns the geometry the surface renders.
func (s *Surface) Geometry() *Geometry {
	return s.opts.Geometry
}

// Mount attaches the surface. Without WebGL the surface goes straight to
// the static fallback and never touches the loop.
func (s *Surface) Mount(caps Capabilities) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != SurfaceUnmounted {
		return fmt.Errorf("mount %s from %s: %w", s.opts.Element, s.state, ErrSurfaceState)
	}
	if !caps.WebGL {
		s.state = SurfaceFallback
		s.log.Info("webgl unavailable, rendering fallback")
		return nil
	}
	s.state = SurfaceIdle
	return nil
}

// SetVisible reports whether the container intersects the viewport.
func (s *Surface) SetVisible(visible bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.visible = visible
	switch {
	case visible && s.state == SurfaceIdle:
		if err := s.startLocked(); err != nil {
			return err
		}
		s.state = SurfaceRunning
	case !visible && s.state == SurfaceRunning:
		s.driver.Pause()
		s.state = SurfaceIdle
	}
	return nil
}

func (s *Surface) startLocked() error {
	if s.driver != nil {
		s.driver.Resume()
		return nil
	}
	el, motion := s.opts.Element, s.opts.Motion
	d, err := animation.Drive(s.loop, s.stage, el, []string{el}, func(elapsed time.Duration, set animation.Setter) {
		t := motion(elapsed)
		set(el, "rotateY", t.Rotation)
		set(el, "scale", t.Scale)
		set(el, "opacity", t.Opacity)
	})
	if err != nil {
		return fmt.Errorf("start %s: %w", el, err)
	}
	s.driver = d
	return nil
}

// ContextLost handles loss of the graphics context at now. The surface
// stops rendering and either waits for ContextRestored or, once the guard
// gives up, shows the blocking notice for good.
func (s *Surface) ContextLost(now time.Time) Action {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case SurfaceIdle, SurfaceRunning, SurfaceRestoring:
	default:
		return Notice
	}
	if s.driver != nil {
		s.driver.Pause()
	}
	action := s.opts.Guard.Lost(now)
	if action == Notice {
		s.releaseLocked()
		s.state = SurfaceNotice
		s.log.Warn("graphics context lost too often, showing notice", zap.Int("losses", s.opts.Guard.Losses()))
		return Notice
	}
	s.state = SurfaceRestoring
	s.log.Info("graphics context lost, restoring")
	return Restore
}

// ContextRestored resumes rendering after a successful restore.
func (s *Surface) ContextRestored() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != SurfaceRestoring {
		return fmt.Errorf("restore %s from %s: %w", s.opts.Element, s.state, ErrSurfaceState)
	}
	s.state = SurfaceIdle
	if s.visible {
		if err := s.startLocked(); err != nil {
			return err
		}
		s.state = SurfaceRunning
	}
	return nil
}

// Close stops rendering and reverts the transform. Safe to call twice.
func (s *Surface) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.releaseLocked()
	s.state = SurfaceClosed
}

func (s *Surface) releaseLocked() {
	if s.driver != nil {
		s.driver.Cancel()
		s.driver = nil
	}
	s.stage.Release(s.opts.Element)
}
