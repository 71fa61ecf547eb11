package scroll

// Stepper is the state machine behind pinned, snapping sections. Its state
// is a step index derived from continuous progress; transitions only happen
// when progress crosses a step boundary.
type Stepper struct {
	steps    int
	current  int
	onChange func(from, to int)
}

// NewStepper creates a stepper with steps discrete states, starting at 0.
func NewStepper(steps int, onChange func(from, to int)) *Stepper {
	if steps < 1 {
		steps = 1
	}
	return &Stepper{steps: steps, onChange: onChange}
}

// Update feeds progress in and reports whether the step changed.
func (s *Stepper) Update(progress float64) bool {
	next := StepIndex(progress, s.steps)
	if next == s.current {
		return false
	}
	prev := s.current
	s.current = next
	if s.onChange != nil {
		s.onChange(prev, next)
	}
	return true
}

// Current returns the active step.
func (s *Stepper) Current() int {
	return s.current
}

// Steps returns the number of steps.
func (s *Stepper) Steps() int {
	return s.steps
}

// Anchor is a navigable section's top edge in document coordinates.
type Anchor struct {
	ID  string  `json:"id"`
	Top float64 `json:"top"`
}

// ActiveAnchor returns the id of the last anchor whose top is above the
// activation line, a third of the way down the viewport. Anchors must be in
// document order. Returns "" when none qualifies.
func ActiveAnchor(anchors []Anchor, offset, viewportHeight float64) string {
	line := offset + viewportHeight/3
	active := ""
	for _, a := range anchors {
		if a.Top <= line {
			active = a.ID
		}
	}
	return active
}
