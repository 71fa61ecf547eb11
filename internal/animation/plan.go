package animation

import (
	"encoding/json"
	"math"
	"time"
)

// DefaultDuration applies to tweens that leave Duration unset.
const DefaultDuration = 600 * time.Millisecond

// TweenConfig animates one property of one element from From to To.
//
// Defaults: Duration 600ms, Ease power2.out. An unknown Ease name resolves
// to linear. Negative delays are only meaningful in sequenced timelines,
// where they overlap the previous tween; elsewhere they clamp to zero.
type TweenConfig struct {
	Target   string        `json:"target" yaml:"target"`
	Property string        `json:"property" yaml:"property"`
	From     float64       `json:"from" yaml:"from"`
	To       float64       `json:"to" yaml:"to"`
	Duration time.Duration `json:"duration" yaml:"duration"`
	Delay    time.Duration `json:"delay" yaml:"delay"`
	Ease     Ease          `json:"ease" yaml:"ease"`
}

// TimelineConfig is the literal configuration of one timeline.
//
// Stagger adds index × Stagger to each tween's start. Sequence chains tweens
// end to end instead of starting them together. Repeat is the number of
// extra iterations; -1 repeats forever. Yoyo reverses every other iteration.
type TimelineConfig struct {
	Tweens   []TweenConfig `json:"tweens" yaml:"tweens"`
	Stagger  time.Duration `json:"stagger" yaml:"stagger"`
	Sequence bool          `json:"sequence" yaml:"sequence"`
	Repeat   int           `json:"repeat" yaml:"repeat"`
	Yoyo     bool          `json:"yoyo" yaml:"yoyo"`
}

// Keyframe is a tween resolved onto the timeline's time axis.
type Keyframe struct {
	Target   string
	Property string
	From     float64
	To       float64
	Start    time.Duration
	Duration time.Duration
	Ease     Ease
}

// MarshalJSON writes times in milliseconds for the client player.
func (k Keyframe) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Target     string  `json:"target"`
		Property   string  `json:"property"`
		From       float64 `json:"from"`
		To         float64 `json:"to"`
		StartMS    float64 `json:"start_ms"`
		DurationMS float64 `json:"duration_ms"`
		Ease       Ease    `json:"ease"`
	}{k.Target, k.Property, k.From, k.To, ms(k.Start), ms(k.Duration), k.Ease})
}

// Value is one sampled property.
type Value struct {
	Target   string  `json:"target"`
	Property string  `json:"property"`
	V        float64 `json:"value"`
}

// Plan is a fully resolved timeline. It is pure data: sampling a plan has no
// side effects, which is what the client player and the tests rely on.
type Plan struct {
	Keyframes []Keyframe
	Total     time.Duration
	Repeat    int
	Yoyo      bool
}

// MarshalJSON writes the plan with millisecond totals.
func (p Plan) MarshalJSON() ([]byte, error) {
	kfs := p.Keyframes
	if kfs == nil {
		kfs = []Keyframe{}
	}
	return json.Marshal(struct {
		Keyframes []Keyframe `json:"keyframes"`
		TotalMS   float64    `json:"total_ms"`
		Repeat    int        `json:"repeat"`
		Yoyo      bool       `json:"yoyo"`
	}{kfs, ms(p.Total), p.Repeat, p.Yoyo})
}

// Resolve applies defaults and lays every tween out on the time axis.
func (c TimelineConfig) Resolve() Plan {
	p := Plan{Repeat: c.Repeat, Yoyo: c.Yoyo}
	if p.Repeat < -1 {
		p.Repeat = 0
	}
	stagger := c.Stagger
	if stagger < 0 {
		stagger = 0
	}

	var cursor time.Duration
	for i, tw := range c.Tweens {
		d := tw.Duration
		if d <= 0 {
			d = DefaultDuration
		}
		ease := tw.Ease
		if ease == "" {
			ease = DefaultEase
		} else if !ease.Known() {
			ease = Linear
		}

		var start time.Duration
		if c.Sequence {
			start = cursor + tw.Delay
		} else {
			delay := tw.Delay
			if delay < 0 {
				delay = 0
			}
			start = delay
		}
		start += time.Duration(i) * stagger
		if start < 0 {
			start = 0
		}
		if c.Sequence {
			cursor = start + d
		}

		p.Keyframes = append(p.Keyframes, Keyframe{
			Target:   tw.Target,
			Property: tw.Property,
			From:     tw.From,
			To:       tw.To,
			Start:    start,
			Duration: d,
			Ease:     ease,
		})
		if end := start + d; end > p.Total {
			p.Total = end
		}
	}
	return p
}

// Targets lists the distinct elements the plan writes, in first-use order.
func (p Plan) Targets() []string {
	ts := make([]string, 0, len(p.Keyframes))
	for _, k := range p.Keyframes {
		ts = append(ts, k.Target)
	}
	return uniqueTargets(ts)
}

// Iterations returns the number of passes, or 0 for infinite.
func (p Plan) Iterations() int {
	if p.Repeat < 0 {
		return 0
	}
	return p.Repeat + 1
}

// LocalTime maps elapsed wall time onto the plan's own axis, accounting for
// repeats and yoyo. done reports that the final iteration has completed.
func (p Plan) LocalTime(elapsed time.Duration) (local time.Duration, done bool) {
	if p.Total <= 0 {
		return 0, true
	}
	if elapsed < 0 {
		elapsed = 0
	}
	if n := p.Iterations(); n > 0 && elapsed >= p.Total*time.Duration(n) {
		if p.Yoyo && (n-1)%2 == 1 {
			return 0, true
		}
		return p.Total, true
	}
	cycle := elapsed / p.Total
	local = elapsed % p.Total
	if p.Yoyo && cycle%2 == 1 {
		local = p.Total - local
	}
	return local, false
}

// Progress is elapsed time over the whole run, in [0,1]. Infinite plans
// report progress through the current iteration.
func (p Plan) Progress(elapsed time.Duration) float64 {
	if p.Total <= 0 {
		return 1
	}
	n := p.Iterations()
	if n == 0 {
		return float64(elapsed%p.Total) / float64(p.Total)
	}
	return Clamp01(float64(elapsed) / float64(p.Total*time.Duration(n)))
}

// Sample evaluates every animated property at local time. A property is
// driven by the latest keyframe that has started; before any keyframe for a
// property starts, its first keyframe holds the From value.
func (p Plan) Sample(local time.Duration) []Value {
	idx := make(map[propKey]int)
	var out []Value
	for _, k := range p.Keyframes {
		key := propKey{k.Target, k.Property}
		i, seen := idx[key]
		if seen && local < k.Start {
			continue
		}
		v := k.valueAt(local)
		if !seen {
			idx[key] = len(out)
			out = append(out, Value{Target: k.Target, Property: k.Property, V: v})
			continue
		}
		out[i].V = v
	}
	return out
}

// Final samples the plan at its end state. Infinite plans are sampled at the
// end of their first iteration.
func (p Plan) Final() []Value {
	n := p.Iterations()
	if n == 0 {
		return p.Sample(p.Total)
	}
	local, _ := p.LocalTime(p.Total * time.Duration(n))
	return p.Sample(local)
}

func (k Keyframe) valueAt(local time.Duration) float64 {
	var t float64
	switch {
	case local <= k.Start:
		t = 0
	case k.Duration <= 0:
		t = 1
	default:
		t = float64(local-k.Start) / float64(k.Duration)
	}
	return k.From + (k.To-k.From)*k.Ease.Apply(t)
}

func ms(d time.Duration) float64 {
	return math.Round(float64(d)/float64(time.Microsecond)) / 1000
}
