// Package section implements the lifecycle every page section follows:
//
//	unmounted → mounted-inactive → active ⇄ paused → reverted
//
// A section owns its timelines and drivers exclusively. Activating again
// first cancels what the previous activation created, and unmounting always
// reverts everything, including after a failed or panicking build.
package section

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"folio.dev/internal/animation"
	"folio.dev/internal/frameloop"
)

// State is a section's lifecycle position.
type State int

const (
	Unmounted State = iota
	MountedInactive
	Active
	Paused
	Reverted
)

func (s State) String() string {
	switch s {
	case Unmounted:
		return "unmounted"
	case MountedInactive:
		return "mounted-inactive"
	case Active:
		return "active"
	case Paused:
		return "paused"
	case Reverted:
		return "reverted"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// ErrState is returned for transitions the lifecycle does not allow.
var ErrState = errors.New("invalid section state")

// Env is what a builder may touch: the shared loop, the stage, and the
// section's own owner id.
type Env struct {
	Loop  *frameloop.Loop
	Stage *animation.Stage
	Owner string
}

// Extra builds an open-ended animation such as a driver.
type Extra func(env Env) (animation.Handle, error)

// Definition is the literal configuration of one section.
type Definition struct {
	ID        string
	Title     string
	Observer  ObserverConfig
	Timelines []animation.TimelineConfig
	Extras    []Extra
}

// Plans resolves every timeline of the definition.
func (d Definition) Plans() []animation.Plan {
	out := make([]animation.Plan, 0, len(d.Timelines))
	for _, tl := range d.Timelines {
		out = append(out, tl.Resolve())
	}
	return out
}

// Section is one mounted instance of a Definition.
type Section struct {
	def      Definition
	env      Env
	log      *zap.Logger
	mu       sync.Mutex
	state    State
	observer *Observer
	handles  []animation.Handle
	runs     int
}

// New creates an unmounted section.
func New(def Definition, loop *frameloop.Loop, stage *animation.Stage, logger *zap.Logger) *Section {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Section{
		def:      def,
		env:      Env{Loop: loop, Stage: stage, Owner: def.ID},
		log:      logger.With(zap.String("section", def.ID)),
		observer: NewObserver(def.Observer),
	}
}

// ID returns the section id.
func (s *Section) ID() string { return s.def.ID }

// Definition returns the section's configuration.
func (s *Section) Definition() Definition { return s.def }

// State returns the current lifecycle state.
func (s *Section) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Handles reports how many animations the section currently owns.
func (s *Section) Handles() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.handles)
}

// Activations reports how many times the section has been activated.
func (s *Section) Activations() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runs
}

// Mount moves an unmounted section to mounted-inactive.
func (s *Section) Mount() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Unmounted {
		return fmt.Errorf("mount %s from %s: %w", s.def.ID, s.state, ErrState)
	}
	s.state = MountedInactive
	s.log.Debug("section mounted")
	return nil
}

// Observe feeds the section's visible fraction in. Crossing the threshold
// activates, pauses or resumes the section according to its observer
// configuration.
func (s *Section) Observe(fraction float64) error {
	s.mu.Lock()
	state := s.state
	if state == Unmounted || state == Reverted {
		s.mu.Unlock()
		return nil
	}
	crossing := s.observer.Observe(fraction)
	s.mu.Unlock()

	switch crossing {
	case Enter:
		switch state {
		case MountedInactive:
			return s.Activate()
		case Paused:
			if s.observer.Once() {
				s.Resume()
				return nil
			}
			return s.Activate()
		}
	case Leave:
		if state == Active {
			s.Pause()
		}
	}
	return nil
}

// Activate builds and starts the section's animations. Anything a previous
// activation created is cancelled first, so two activations never animate
// the same element at once. If building fails, everything built so far is
// cancelled and the section returns to mounted-inactive.
func (s *Section) Activate() (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Unmounted || s.state == Reverted {
		return fmt.Errorf("activate %s from %s: %w", s.def.ID, s.state, ErrState)
	}
	s.cancelLocked()

	var built []animation.Handle
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("activate %s: build panicked: %v", s.def.ID, r)
		}
		if err != nil {
			for i := len(built) - 1; i >= 0; i-- {
				built[i].Cancel()
			}
			s.state = MountedInactive
			s.log.Warn("section activation failed", zap.Error(err))
		}
	}()

	for i, cfg := range s.def.Timelines {
		tl, playErr := animation.Play(s.env.Loop, s.env.Stage, s.env.Owner, cfg)
		if playErr != nil {
			return fmt.Errorf("activate %s: timeline %d: %w", s.def.ID, i, playErr)
		}
		built = append(built, tl)
	}
	for i, extra := range s.def.Extras {
		h, extraErr := extra(s.env)
		if extraErr != nil {
			return fmt.Errorf("activate %s: extra %d: %w", s.def.ID, i, extraErr)
		}
		if h != nil {
			built = append(built, h)
		}
	}

	s.handles = built
	s.state = Active
	s.runs++
	s.log.Debug("section activated", zap.Int("handles", len(built)), zap.Int("activation", s.runs))
	return nil
}

// Pause suspends every pausable animation the section owns.
func (s *Section) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Active {
		return
	}
	for _, h := range s.handles {
		if p, ok := h.(animation.Pauser); ok {
			p.Pause()
		}
	}
	s.state = Paused
}

// Resume restarts animations suspended by Pause.
func (s *Section) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Paused {
		return
	}
	for _, h := range s.handles {
		if p, ok := h.(animation.Pauser); ok {
			p.Resume()
		}
	}
	s.state = Active
}

// Unmount reverts everything the section owns and releases its element
// claims. It is safe to call in any state and more than once.
func (s *Section) Unmount() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Reverted {
		return
	}
	s.cancelLocked()
	s.env.Stage.Release(s.env.Owner)
	s.state = Reverted
	s.log.Debug("section reverted")
}

func (s *Section) cancelLocked() {
	for i := len(s.handles) - 1; i >= 0; i-- {
		s.handles[i].Cancel()
	}
	s.handles = nil
}
