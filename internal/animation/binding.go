package animation

// Handle is the revocable capability returned for every running animation.
// Cancel is idempotent.
type Handle interface {
	Cancel()
}

// Pauser is implemented by handles that can be suspended without reverting.
type Pauser interface {
	Pause()
	Resume()
}

type propKey struct {
	element  string
	property string
}

type savedValue struct {
	v  float64
	ok bool
}

// binding tracks what one animation wrote so it can be reverted.
type binding struct {
	stage   *Stage
	owner   string
	targets []string
	saved   map[propKey]savedValue
	order   []propKey
	self    any
}

func bind(stage *Stage, owner string, targets []string, self any) (*binding, error) {
	var fresh []string
	for _, el := range targets {
		created, err := stage.claim(el, owner)
		if err != nil {
			for _, f := range fresh {
				stage.unclaim(f, owner)
			}
			return nil, err
		}
		if created {
			fresh = append(fresh, el)
		}
	}
	b := &binding{
		stage:   stage,
		owner:   owner,
		targets: targets,
		saved:   make(map[propKey]savedValue),
		self:    self,
	}
	for _, el := range targets {
		stage.attach(el, self)
	}
	return b, nil
}

func (b *binding) set(element, property string, v float64) error {
	k := propKey{element, property}
	if _, seen := b.saved[k]; !seen {
		prev, ok := b.stage.Get(element, property)
		b.saved[k] = savedValue{v: prev, ok: ok}
		b.order = append(b.order, k)
	}
	return b.stage.Set(b.owner, element, property, v)
}

func (b *binding) detach() {
	for _, el := range b.targets {
		b.stage.detach(el, b.self)
	}
}

// revert restores every property to its value before the first write,
// newest first.
func (b *binding) revert() {
	for i := len(b.order) - 1; i >= 0; i-- {
		k := b.order[i]
		prev := b.saved[k]
		if prev.ok {
			b.stage.restore(k.element, k.property, prev.v)
		} else {
			b.stage.unset(k.element, k.property)
		}
	}
	b.saved = make(map[propKey]savedValue)
	b.order = nil
}

func uniqueTargets(targets []string) []string {
	seen := make(map[string]struct{}, len(targets))
	out := make([]string, 0, len(targets))
	for _, t := range targets {
		if _, ok := seen[t]; ok || t == "" {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
