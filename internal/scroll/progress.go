// Package scroll turns the document scroll position into progress values.
//
// The Orchestrator is the only writer of the global ratio. Consumers
// subscribe with a Band and receive their own remapped progress; they never
// write back.
package scroll

import (
	"math"

	"folio.dev/internal/animation"
)

// Range is a closed interval. From may be greater than To for reversed
// output ranges.
type Range struct {
	From float64 `json:"from"`
	To   float64 `json:"to"`
}

// Unit is the identity range [0,1].
var Unit = Range{0, 1}

// Ratio normalises offset over the scrollable range
// (documentHeight - viewportHeight) into [0,1]. A collapsed or invalid range
// yields 0.
func Ratio(offset, documentHeight, viewportHeight float64) float64 {
	scrollable := documentHeight - viewportHeight
	if !finite(scrollable) || scrollable <= 0 || !finite(offset) {
		return 0
	}
	return animation.Clamp01(offset / scrollable)
}

// Remap maps v from in to out with easing, clamping to the output range.
// A degenerate input range returns out.From.
func Remap(v float64, in, out Range, ease animation.Ease) float64 {
	span := in.To - in.From
	if !finite(span) || span == 0 || !finite(v) {
		return out.From
	}
	t := animation.Clamp01((v - in.From) / span)
	return out.From + (out.To-out.From)*ease.Apply(t)
}

// StepIndex derives a discrete step from continuous progress:
// floor(progress × steps), clamped to [0, steps-1]. steps <= 0 yields 0.
func StepIndex(progress float64, steps int) int {
	if steps <= 0 {
		return 0
	}
	i := int(math.Floor(animation.Clamp01(progress) * float64(steps)))
	if i >= steps {
		i = steps - 1
	}
	return i
}

// Visibility is the fraction of an element of the given height, starting at
// top, that lies inside the viewport [offset, offset+viewportHeight].
func Visibility(top, height, offset, viewportHeight float64) float64 {
	if height <= 0 || viewportHeight <= 0 || !finite(top+height+offset+viewportHeight) {
		return 0
	}
	lo := math.Max(top, offset)
	hi := math.Min(top+height, offset+viewportHeight)
	if hi <= lo {
		return 0
	}
	return animation.Clamp01((hi - lo) / height)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
