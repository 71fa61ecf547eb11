package animation

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"folio.dev/internal/frameloop"
)

var t0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestEaseEndpointsAreExact(t *testing.T) {
	for name := range curves {
		assert.Equal(t, 0.0, name.Apply(0), name)
		assert.Equal(t, 1.0, name.Apply(1), name)
		assert.Equal(t, 1.0, name.Apply(4), "clamped above: %s", name)
	}
}

func TestParseEaseFallsBackToLinear(t *testing.T) {
	assert.Equal(t, Power3Out, ParseEase("power3.out"))
	assert.Equal(t, Linear, ParseEase("wobble"))
	assert.InDelta(t, 0.25, ParseEase("wobble").Apply(0.25), 1e-9)
}

func TestResolveStaggerIsIndexBased(t *testing.T) {
	cfg := TimelineConfig{
		Stagger: 100 * time.Millisecond,
		Tweens: []TweenConfig{
			{Target: "a", Property: "opacity", To: 1},
			{Target: "b", Property: "opacity", To: 1},
			{Target: "c", Property: "opacity", To: 1, Ease: "bogus"},
		},
	}
	p := cfg.Resolve()

	require.Len(t, p.Keyframes, 3)
	assert.Equal(t, time.Duration(0), p.Keyframes[0].Start)
	assert.Equal(t, 100*time.Millisecond, p.Keyframes[1].Start)
	assert.Equal(t, 200*time.Millisecond, p.Keyframes[2].Start)
	assert.Equal(t, DefaultEase, p.Keyframes[0].Ease)
	assert.Equal(t, Linear, p.Keyframes[2].Ease)
	assert.Equal(t, 200*time.Millisecond+DefaultDuration, p.Total)
}

func TestResolveSequenceChainsTweens(t *testing.T) {
	cfg := TimelineConfig{
		Sequence: true,
		Tweens: []TweenConfig{
			{Target: "title", Property: "y", From: 40, Duration: 500 * time.Millisecond},
			{Target: "subtitle", Property: "y", From: 40, Duration: 500 * time.Millisecond, Delay: -200 * time.Millisecond},
		},
	}
	p := cfg.Resolve()

	assert.Equal(t, 300*time.Millisecond, p.Keyframes[1].Start)
	assert.Equal(t, 800*time.Millisecond, p.Total)
}

func TestLocalTimeRepeatAndYoyo(t *testing.T) {
	p := Plan{Total: time.Second, Repeat: 1, Yoyo: true}

	local, done := p.LocalTime(1500 * time.Millisecond)
	assert.False(t, done)
	assert.Equal(t, 500*time.Millisecond, local)

	local, done = p.LocalTime(3 * time.Second)
	assert.True(t, done)
	assert.Equal(t, time.Duration(0), local)
}

func TestPlanJSONUsesMilliseconds(t *testing.T) {
	p := TimelineConfig{Tweens: []TweenConfig{{Target: "x", Property: "opacity", To: 1, Duration: 250 * time.Millisecond}}}.Resolve()
	raw, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"keyframes":[{"target":"x","property":"opacity","from":0,"to":1,"start_ms":0,"duration_ms":250,"ease":"power2.out"}],"total_ms":250,"repeat":0,"yoyo":false}`, string(raw))
}

func TestTimelineRunsToCompletion(t *testing.T) {
	loop := frameloop.New(0)
	stage := NewStage()
	completed := false
	tl, err := Play(loop, stage, "hero", TimelineConfig{
		Tweens: []TweenConfig{{Target: "hero-title", Property: "opacity", From: 0, To: 1, Duration: 100 * time.Millisecond, Ease: Linear}},
	}, OnComplete(func() { completed = true }))
	require.NoError(t, err)

	v, _ := stage.Get("hero-title", "opacity")
	assert.Equal(t, 0.0, v, "from state applied immediately")
	assert.Equal(t, 1, stage.Writers("hero-title"))

	loop.Step(t0)
	loop.Step(t0.Add(50 * time.Millisecond))
	v, _ = stage.Get("hero-title", "opacity")
	assert.InDelta(t, 0.5, v, 1e-9)

	loop.Step(t0.Add(150 * time.Millisecond))
	v, _ = stage.Get("hero-title", "opacity")
	assert.Equal(t, 1.0, v)
	assert.True(t, tl.Done())
	assert.True(t, completed)
	assert.Equal(t, 0, loop.Active())
	assert.Equal(t, 0, stage.Writers("hero-title"))
}

func TestTimelineCancelRevertsAndIsIdempotent(t *testing.T) {
	loop := frameloop.New(0)
	stage := NewStage()
	require.NoError(t, stage.Claim("card", "projects"))
	require.NoError(t, stage.Set("projects", "card", "scale", 0.5))

	tl, err := Play(loop, stage, "projects", TimelineConfig{
		Tweens: []TweenConfig{
			{Target: "card", Property: "scale", From: 0.8, To: 1},
			{Target: "card", Property: "opacity", From: 0, To: 1},
		},
	})
	require.NoError(t, err)
	loop.Step(t0)
	loop.Step(t0.Add(100 * time.Millisecond))

	tl.Cancel()
	tl.Cancel()

	scale, ok := stage.Get("card", "scale")
	assert.True(t, ok)
	assert.Equal(t, 0.5, scale)
	_, ok = stage.Get("card", "opacity")
	assert.False(t, ok, "property never set before the timeline is removed")
	assert.Equal(t, 0, loop.Active())
	assert.Equal(t, 0, stage.Writers("card"))
}

func TestPauseDropsSubscriptionAndResumeContinues(t *testing.T) {
	loop := frameloop.New(0)
	stage := NewStage()
	tl, err := Play(loop, stage, "about", TimelineConfig{
		Tweens: []TweenConfig{{Target: "bio", Property: "x", From: 0, To: 100, Duration: 200 * time.Millisecond, Ease: Linear}},
	})
	require.NoError(t, err)

	loop.Step(t0)
	loop.Step(t0.Add(50 * time.Millisecond))
	tl.Pause()
	assert.Equal(t, 0, loop.Active())

	loop.Step(t0.Add(time.Second))
	tl.Resume()
	loop.Step(t0.Add(2 * time.Second))
	loop.Step(t0.Add(2*time.Second + 50*time.Millisecond))

	v, _ := stage.Get("bio", "x")
	assert.InDelta(t, 50, v, 1e-9)
	tl.Cancel()
}

func TestPlayRejectsForeignElement(t *testing.T) {
	loop := frameloop.New(0)
	stage := NewStage()
	require.NoError(t, stage.Claim("shared", "skills"))

	_, err := Play(loop, stage, "contact", TimelineConfig{
		Tweens: []TweenConfig{{Target: "shared", Property: "opacity", To: 1}},
	})
	assert.True(t, errors.Is(err, ErrNotOwner))
	assert.Equal(t, 0, loop.Active())
}

func TestPlayFailureKeepsEarlierClaims(t *testing.T) {
	loop := frameloop.New(0)
	stage := NewStage()
	require.NoError(t, stage.Claim("shared", "skills"))
	require.NoError(t, stage.Claim("heading", "contact"))

	_, err := Play(loop, stage, "contact", TimelineConfig{
		Tweens: []TweenConfig{
			{Target: "heading", Property: "opacity", To: 1},
			{Target: "field", Property: "opacity", To: 1},
			{Target: "shared", Property: "opacity", To: 1},
		},
	})
	require.ErrorIs(t, err, ErrNotOwner)
	assert.Equal(t, "contact", stage.Owner("heading"), "claims held before the call stay")
	assert.Equal(t, "", stage.Owner("field"), "claims taken by the failed call are released")
	assert.Equal(t, 2, stage.Claims())
}

func TestDriverRevertsOnCancel(t *testing.T) {
	loop := frameloop.New(0)
	stage := NewStage()
	d, err := Drive(loop, stage, "hero", []string{"orb"}, func(elapsed time.Duration, set Setter) {
		set("orb", "rotate", elapsed.Seconds()*90)
	})
	require.NoError(t, err)

	loop.Step(t0)
	loop.Step(t0.Add(time.Second))
	v, _ := stage.Get("orb", "rotate")
	assert.InDelta(t, 90, v, 1e-9)

	d.Cancel()
	d.Cancel()
	_, ok := stage.Get("orb", "rotate")
	assert.False(t, ok)
	assert.Equal(t, 0, loop.Active())
	assert.NoError(t, d.Err())
}
