package primitives

import (
	"math"
	"time"

	"folio.dev/internal/animation"
)

// CounterDuration is how long a stat takes to count up.
const CounterDuration = 2 * time.Second

// Counter counts target's "count" property from 0 up to value.
func Counter(target string, value float64, delay time.Duration) animation.TweenConfig {
	return animation.TweenConfig{
		Target:   target,
		Property: "count",
		From:     0,
		To:       value,
		Duration: CounterDuration,
		Delay:    delay,
		Ease:     animation.Power2Out,
	}
}

// CounterText is the displayed integer for an in-flight count.
func CounterText(v float64) int {
	return int(math.Round(v))
}
