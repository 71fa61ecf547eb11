package animation

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrNotOwner is returned when a component writes to an element another
// component has claimed.
var ErrNotOwner = errors.New("element owned by another component")

// Stage holds the animated property values of every element on a page.
// Each element has at most one owner; only the owner may write to it.
type Stage struct {
	mu      sync.Mutex
	owners  map[string]string
	values  map[string]map[string]float64
	writers map[string]map[any]struct{}
}

// NewStage creates an empty stage.
func NewStage() *Stage {
	return &Stage{
		owners:  make(map[string]string),
		values:  make(map[string]map[string]float64),
		writers: make(map[string]map[any]struct{}),
	}
}

// Claim grants owner exclusive write access to element. Claiming an element
// already owned by the same owner is a no-op.
func (s *Stage) Claim(element, owner string) error {
	_, err := s.claim(element, owner)
	return err
}

// claim reports whether this call created the claim.
func (s *Stage) claim(element, owner string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.owners[element]
	if ok && cur != owner {
		return false, fmt.Errorf("claim %q for %q: %w (held by %q)", element, owner, ErrNotOwner, cur)
	}
	s.owners[element] = owner
	return !ok, nil
}

func (s *Stage) unclaim(element, owner string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.owners[element] == owner {
		delete(s.owners, element)
	}
}

// Release drops every claim held by owner. Values stay in place.
func (s *Stage) Release(owner string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for el, o := range s.owners {
		if o == owner {
			delete(s.owners, el)
		}
	}
}

// Owner returns the current owner of element, or "".
func (s *Stage) Owner(element string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.owners[element]
}

// Claims reports how many elements are currently claimed.
func (s *Stage) Claims() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.owners)
}

// Get returns the value of property on element.
func (s *Stage) Get(element, property string) (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[element][property]
	return v, ok
}

// Snapshot returns a copy of every property of element.
func (s *Stage) Snapshot(element string) map[string]float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]float64, len(s.values[element]))
	for k, v := range s.values[element] {
		out[k] = v
	}
	return out
}

// Elements lists elements holding at least one value.
func (s *Stage) Elements() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.values))
	for el := range s.values {
		out = append(out, el)
	}
	sort.Strings(out)
	return out
}

// Set writes a property as owner.
func (s *Stage) Set(owner, element, property string, v float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur := s.owners[element]; cur != owner {
		return fmt.Errorf("set %s.%s for %q: %w", element, property, owner, ErrNotOwner)
	}
	props, ok := s.values[element]
	if !ok {
		props = make(map[string]float64)
		s.values[element] = props
	}
	props[property] = v
	return nil
}

// restore writes a value without the ownership check. Reverting must
// succeed even after the owner released its claims.
func (s *Stage) restore(element, property string, v float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	props, ok := s.values[element]
	if !ok {
		props = make(map[string]float64)
		s.values[element] = props
	}
	props[property] = v
}

// unset removes a property, used when reverting to "never animated".
func (s *Stage) unset(element, property string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values[element], property)
	if len(s.values[element]) == 0 {
		delete(s.values, element)
	}
}

// Writers reports how many live animations are currently writing element.
func (s *Stage) Writers(element string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.writers[element])
}

func (s *Stage) attach(element string, w any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.writers[element]
	if !ok {
		set = make(map[any]struct{})
		s.writers[element] = set
	}
	set[w] = struct{}{}
}

func (s *Stage) detach(element string, w any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.writers[element], w)
	if len(s.writers[element]) == 0 {
		delete(s.writers, element)
	}
}
