package primitives

import (
	"time"

	"folio.dev/internal/animation"
	"folio.dev/internal/frameloop"
)

// Typewriter cycles through phrases: type one rune per TypeSpeed, hold,
// delete one rune per DeleteSpeed, pause, then move to the next phrase.
type Typewriter struct {
	Phrases     []string
	TypeSpeed   time.Duration
	DeleteSpeed time.Duration
	Hold        time.Duration
	Gap         time.Duration
}

// DefaultTypewriter returns the hero's settings for phrases.
func DefaultTypewriter(phrases []string) Typewriter {
	return Typewriter{
		Phrases:     phrases,
		TypeSpeed:   100 * time.Millisecond,
		DeleteSpeed: 50 * time.Millisecond,
		Hold:        2 * time.Second,
		Gap:         500 * time.Millisecond,
	}
}

func (tw Typewriter) withDefaults() Typewriter {
	d := DefaultTypewriter(tw.Phrases)
	if tw.TypeSpeed <= 0 {
		tw.TypeSpeed = d.TypeSpeed
	}
	if tw.DeleteSpeed <= 0 {
		tw.DeleteSpeed = d.DeleteSpeed
	}
	if tw.Hold < 0 {
		tw.Hold = 0
	}
	if tw.Gap < 0 {
		tw.Gap = 0
	}
	return tw
}

func (tw Typewriter) cycle(phrase []rune) time.Duration {
	n := time.Duration(len(phrase))
	return n*tw.TypeSpeed + tw.Hold + n*tw.DeleteSpeed + tw.Gap
}

// At returns the phrase index and the visible prefix after elapsed time.
// It is a pure function of elapsed, so the client and tests agree.
func (tw Typewriter) At(elapsed time.Duration) (int, string) {
	if len(tw.Phrases) == 0 {
		return 0, ""
	}
	tw = tw.withDefaults()
	if elapsed < 0 {
		elapsed = 0
	}

	var total time.Duration
	for _, p := range tw.Phrases {
		total += tw.cycle([]rune(p))
	}
	if total <= 0 {
		return 0, ""
	}
	elapsed %= total

	for i, p := range tw.Phrases {
		r := []rune(p)
		c := tw.cycle(r)
		if elapsed >= c {
			elapsed -= c
			continue
		}
		n := time.Duration(len(r))
		switch {
		case elapsed < n*tw.TypeSpeed:
			return i, string(r[:int(elapsed/tw.TypeSpeed)+1])
		case elapsed < n*tw.TypeSpeed+tw.Hold:
			return i, p
		case elapsed < n*tw.TypeSpeed+tw.Hold+n*tw.DeleteSpeed:
			gone := int((elapsed-n*tw.TypeSpeed-tw.Hold)/tw.DeleteSpeed) + 1
			return i, string(r[:len(r)-gone])
		default:
			return i, ""
		}
	}
	return 0, ""
}

// Run drives target's "chars" and "phrase" properties every frame.
func (tw Typewriter) Run(loop *frameloop.Loop, stage *animation.Stage, owner, target string) (*animation.Driver, error) {
	return animation.Drive(loop, stage, owner, []string{target}, func(elapsed time.Duration, set animation.Setter) {
		i, text := tw.At(elapsed)
		set(target, "phrase", float64(i))
		set(target, "chars", float64(len([]rune(text))))
	})
}
