package primitives

import (
	"math"
	"strconv"
	"time"

	"folio.dev/internal/animation"
	"folio.dev/internal/frameloop"
)

// FloatingShape bobs an element up and down while slowly rotating it.
type FloatingShape struct {
	Target    string
	Amplitude float64       // px
	Period    time.Duration // one full bob
	Spin      float64       // degrees per second
	Phase     float64       // radians
}

// Offset returns the y offset and rotation at elapsed.
func (f FloatingShape) Offset(elapsed time.Duration) (y, rotate float64) {
	period := f.Period
	if period <= 0 {
		period = 6 * time.Second
	}
	theta := 2*math.Pi*elapsed.Seconds()/period.Seconds() + f.Phase
	return f.Amplitude * math.Sin(theta), math.Mod(f.Spin*elapsed.Seconds(), 360)
}

// Run subscribes the shape to the loop.
func (f FloatingShape) Run(loop *frameloop.Loop, stage *animation.Stage, owner string) (*animation.Driver, error) {
	return animation.Drive(loop, stage, owner, []string{f.Target}, func(elapsed time.Duration, set animation.Setter) {
		y, r := f.Offset(elapsed)
		set(f.Target, "y", y)
		set(f.Target, "rotate", r)
	})
}

// Shapes returns n decorative shapes with phases spread evenly so they never
// move in lockstep.
func Shapes(prefix string, n int) []FloatingShape {
	out := make([]FloatingShape, n)
	for i := range out {
		out[i] = FloatingShape{
			Target:    prefix + "-" + strconv.Itoa(i),
			Amplitude: 12 + float64(i%3)*6,
			Period:    time.Duration(5+i%4) * time.Second,
			Spin:      float64(8 + 4*(i%3)),
			Phase:     2 * math.Pi * float64(i) / float64(n),
		}
	}
	return out
}
