package animation

import "math"

// Ease names an easing curve. The names follow the conventions the client
// player understands.
type Ease string

const (
	Linear      Ease = "none"
	Power1In    Ease = "power1.in"
	Power1Out   Ease = "power1.out"
	Power1InOut Ease = "power1.inOut"
	Power2In    Ease = "power2.in"
	Power2Out   Ease = "power2.out"
	Power2InOut Ease = "power2.inOut"
	Power3In    Ease = "power3.in"
	Power3Out   Ease = "power3.out"
	Power3InOut Ease = "power3.inOut"
	Power4In    Ease = "power4.in"
	Power4Out   Ease = "power4.out"
	Power4InOut Ease = "power4.inOut"
	BackOut     Ease = "back.out"
	ElasticOut  Ease = "elastic.out"
	SineInOut   Ease = "sine.inOut"
)

// DefaultEase applies when a tween names no curve.
const DefaultEase = Power2Out

var curves = map[Ease]func(float64) float64{
	Linear:      func(t float64) float64 { return t },
	Power1In:    powIn(2),
	Power1Out:   powOut(2),
	Power1InOut: powInOut(2),
	Power2In:    powIn(3),
	Power2Out:   powOut(3),
	Power2InOut: powInOut(3),
	Power3In:    powIn(4),
	Power3Out:   powOut(4),
	Power3InOut: powInOut(4),
	Power4In:    powIn(5),
	Power4Out:   powOut(5),
	Power4InOut: powInOut(5),
	BackOut:     backOut,
	ElasticOut:  elasticOut,
	SineInOut:   func(t float64) float64 { return -(math.Cos(math.Pi*t) - 1) / 2 },
}

// ParseEase resolves a curve name. Unknown names resolve to Linear.
func ParseEase(name string) Ease {
	e := Ease(name)
	if _, ok := curves[e]; ok {
		return e
	}
	return Linear
}

// Known reports whether e names a supported curve.
func (e Ease) Known() bool {
	_, ok := curves[e]
	return ok
}

// Apply maps t in [0,1] through the curve. t is clamped first, and the
// endpoints are exact: Apply(0) == 0 and Apply(1) == 1 for every curve.
func (e Ease) Apply(t float64) float64 {
	t = Clamp01(t)
	if t == 0 || t == 1 {
		return t
	}
	fn, ok := curves[e]
	if !ok {
		return t
	}
	return fn(t)
}

// Clamp01 clamps v to [0,1]. NaN maps to 0.
func Clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

func powIn(p float64) func(float64) float64 {
	return func(t float64) float64 { return math.Pow(t, p) }
}

func powOut(p float64) func(float64) float64 {
	return func(t float64) float64 { return 1 - math.Pow(1-t, p) }
}

func powInOut(p float64) func(float64) float64 {
	return func(t float64) float64 {
		if t < 0.5 {
			return math.Pow(2*t, p) / 2
		}
		return 1 - math.Pow(-2*t+2, p)/2
	}
}

func backOut(t float64) float64 {
	const c1 = 1.70158
	const c3 = c1 + 1
	return 1 + c3*math.Pow(t-1, 3) + c1*math.Pow(t-1, 2)
}

func elasticOut(t float64) float64 {
	const c4 = (2 * math.Pi) / 3
	return math.Pow(2, -10*t)*math.Sin((t*10-0.75)*c4) + 1
}
