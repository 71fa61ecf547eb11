// Package shell holds the process-wide page shell: the frame loop, the
// element stage, the scroll orchestrator with its progress bar, the error
// boundary, telemetry, and the graphics-context guard. It is created on
// first use and torn down explicitly with Close.
package shell

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"folio.dev/internal/analytics"
	"folio.dev/internal/animation"
	"folio.dev/internal/frameloop"
	"folio.dev/internal/perf"
	"folio.dev/internal/scene"
	"folio.dev/internal/scroll"
)

// Options configures a Shell.
type Options struct {
	FrameInterval time.Duration
	PerfInterval  time.Duration
	MaxRestores   int
	RestoreWindow time.Duration
	Analytics     analytics.Options
	Registerer    prometheus.Registerer
	Logger        *zap.Logger
}

// Shell is the page shell state.
type Shell struct {
	Loop     *frameloop.Loop
	Stage    *animation.Stage
	Scroll   *scroll.Orchestrator
	Progress *ProgressBar
	Boundary *Boundary
	Reporter *analytics.Reporter
	Perf     *perf.Monitor
	Guard    *scene.ContextGuard

	log       *zap.Logger
	closeOnce sync.Once
}

// New builds a shell without touching the process-wide instance.
func New(opts Options) (*Shell, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("component", "shell"))

	loop := frameloop.New(opts.FrameInterval,
		frameloop.WithLogger(log),
		frameloop.WithErrorHandler(func(err error) {
			log.Warn("frame callback failed", zap.Error(err))
		}))
	stage := animation.NewStage()
	orch := scroll.NewOrchestrator()

	progress, err := NewProgressBar(orch, stage)
	if err != nil {
		return nil, err
	}

	aopts := opts.Analytics
	if aopts.Logger == nil {
		aopts.Logger = log
	}
	if aopts.Registerer == nil {
		aopts.Registerer = opts.Registerer
	}
	reporter, err := analytics.NewReporter(aopts)
	if err != nil {
		return nil, err
	}
	monitor, err := perf.NewMonitor(opts.PerfInterval, opts.Registerer, log)
	if err != nil {
		return nil, err
	}

	return &Shell{
		Loop:     loop,
		Stage:    stage,
		Scroll:   orch,
		Progress: progress,
		Boundary: NewBoundary(log),
		Reporter: reporter,
		Perf:     monitor,
		Guard:    scene.NewContextGuard(opts.MaxRestores, opts.RestoreWindow),
		log:      log,
	}, nil
}

// Run drives the analytics worker and the perf sampler until ctx is done.
// The frame loop is left to whoever mounts a page: simulate steps it, and a
// server has nothing to animate.
func (s *Shell) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.Reporter.Run(ctx) })
	g.Go(func() error { return s.Perf.Run(ctx) })
	return g.Wait()
}

// ContextLost reports a lost graphics context from the client.
func (s *Shell) ContextLost(now time.Time) scene.Action {
	a := s.Guard.Lost(now)
	s.log.Warn("graphics context lost", zap.Stringer("action", a), zap.Int("losses", s.Guard.Losses()))
	return a
}

// Notice reports whether the blocking context-loss notice should show.
func (s *Shell) Notice() bool {
	return s.Guard.Noticed()
}

// Shutdown releases everything the shell owns. Safe to call twice.
func (s *Shell) Shutdown() {
	s.closeOnce.Do(func() {
		s.Progress.Close()
		s.Reporter.Close()
		s.log.Debug("shell closed")
	})
}

// ErrNotInitialized is returned by Current before Init.
var ErrNotInitialized = errors.New("shell not initialized")

var (
	mu       sync.Mutex
	instance *Shell
)

// Init creates the process-wide shell on first call and returns the same
// shell afterwards; later options are ignored.
func Init(opts Options) (*Shell, error) {
	mu.Lock()
	defer mu.Unlock()
	if instance != nil {
		return instance, nil
	}
	s, err := New(opts)
	if err != nil {
		return nil, err
	}
	instance = s
	return s, nil
}

// Current returns the process-wide shell, or ErrNotInitialized.
func Current() (*Shell, error) {
	mu.Lock()
	defer mu.Unlock()
	if instance == nil {
		return nil, ErrNotInitialized
	}
	return instance, nil
}

// Close shuts the process-wide shell down. A later Init builds a new one.
func Close() {
	mu.Lock()
	s := instance
	instance = nil
	mu.Unlock()
	if s != nil {
		s.Shutdown()
	}
}
