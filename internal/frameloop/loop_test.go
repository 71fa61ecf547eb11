package frameloop

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var t0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestOnFrameRunsInRegistrationOrder(t *testing.T) {
	l := New(0)
	var got []string
	l.OnFrame(func(time.Time) { got = append(got, "a") })
	l.OnFrame(func(time.Time) { got = append(got, "b") })
	l.OnFrame(func(time.Time) { got = append(got, "c") })

	l.Step(t0)
	l.Step(t0.Add(DefaultInterval))

	assert.Equal(t, []string{"a", "b", "c", "a", "b", "c"}, got)
}

func TestCancelIsIdempotent(t *testing.T) {
	l := New(0)
	calls := 0
	sub := l.OnFrame(func(time.Time) { calls++ })
	require.Equal(t, 1, l.Active())

	sub.Cancel()
	sub.Cancel()
	l.Step(t0)

	assert.Equal(t, 0, calls)
	assert.Equal(t, 0, l.Active())
}

func TestCancelFromInsideCallbackSkipsLaterSibling(t *testing.T) {
	l := New(0)
	var second Subscription
	ran := false
	l.OnFrame(func(time.Time) { second.Cancel() })
	second = l.OnFrame(func(time.Time) { ran = true })

	l.Step(t0)

	assert.False(t, ran)
	assert.Equal(t, 1, l.Active())
}

func TestAfterFiresOnceWhenDue(t *testing.T) {
	l := New(0)
	l.Step(t0)
	fired := 0
	l.After(100*time.Millisecond, func() { fired++ })

	l.Step(t0.Add(50 * time.Millisecond))
	assert.Equal(t, 0, fired)

	l.Step(t0.Add(100 * time.Millisecond))
	l.Step(t0.Add(200 * time.Millisecond))
	assert.Equal(t, 1, fired)
	assert.Equal(t, 0, l.Active())
}

func TestPanickingCallbackIsRemoved(t *testing.T) {
	var reported error
	l := New(0, WithErrorHandler(func(err error) { reported = err }))
	l.OnFrame(func(time.Time) { panic("boom") })
	healthy := 0
	l.OnFrame(func(time.Time) { healthy++ })

	l.Step(t0)
	l.Step(t0.Add(DefaultInterval))

	require.Error(t, reported)
	assert.Contains(t, reported.Error(), "boom")
	assert.Equal(t, 2, healthy)
	assert.Equal(t, 1, l.Active())
}

func TestRunStopsOnContextCancel(t *testing.T) {
	l := New(time.Millisecond)
	ticks := make(chan struct{}, 1)
	l.OnFrame(func(time.Time) {
		select {
		case ticks <- struct{}{}:
		default:
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()

	<-ticks
	cancel()
	assert.NoError(t, <-done)
}
