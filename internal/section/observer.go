package section

import "folio.dev/internal/animation"

// DefaultThreshold is the visible fraction that counts as "in view".
const DefaultThreshold = 0.2

// ObserverConfig configures visibility detection. Once latches the first
// activation: later re-entries resume instead of restarting.
type ObserverConfig struct {
	Threshold float64 `json:"threshold"`
	Once      bool    `json:"once"`
}

// Crossing is the result of one observation.
type Crossing int

const (
	None Crossing = iota
	Enter
	Leave
)

// Observer turns a stream of visible fractions into enter/leave crossings.
type Observer struct {
	threshold float64
	once      bool
	visible   bool
}

// NewObserver creates an observer. A zero threshold uses DefaultThreshold;
// values are clamped to [0,1].
func NewObserver(cfg ObserverConfig) *Observer {
	th := cfg.Threshold
	if th == 0 {
		th = DefaultThreshold
	}
	return &Observer{threshold: animation.Clamp01(th), once: cfg.Once}
}

// Observe reports whether fraction crossed the threshold since the last call.
func (o *Observer) Observe(fraction float64) Crossing {
	vis := fraction > 0 && animation.Clamp01(fraction) >= o.threshold
	switch {
	case vis && !o.visible:
		o.visible = true
		return Enter
	case !vis && o.visible:
		o.visible = false
		return Leave
	}
	return None
}

// Visible reports the last observed visibility.
func (o *Observer) Visible() bool { return o.visible }

// Once reports whether the observer latches after the first activation.
func (o *Observer) Once() bool { return o.once }

// Threshold returns the effective threshold.
func (o *Observer) Threshold() float64 { return o.threshold }
