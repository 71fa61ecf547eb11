package shell

import (
	"fmt"
	"sync"

	"folio.dev/internal/animation"
	"folio.dev/internal/scroll"
)

// ProgressBarElement is the element id of the scroll progress bar.
const ProgressBarElement = "scroll-progress"

const shellOwner = "shell"

// ProgressBar republishes the global scroll ratio as a width percentage.
// It only reads the orchestrator.
type ProgressBar struct {
	mu    sync.Mutex
	stage *animation.Stage
	sub   scroll.Subscription
	width float64
}

// NewProgressBar claims the bar element and subscribes to o.
func NewProgressBar(o *scroll.Orchestrator, stage *animation.Stage) (*ProgressBar, error) {
	if err := stage.Claim(ProgressBarElement, shellOwner); err != nil {
		return nil, fmt.Errorf("progress bar: %w", err)
	}
	p := &ProgressBar{stage: stage}
	p.sub = o.Subscribe(scroll.ProgressBand, p.update)
	return p, nil
}

func (p *ProgressBar) update(width float64) {
	p.mu.Lock()
	p.width = width
	p.mu.Unlock()
	_ = p.stage.Set(shellOwner, ProgressBarElement, "width", width)
}

// Width returns the bar width in percent.
func (p *ProgressBar) Width() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.width
}

// Close detaches the bar from the orchestrator.
func (p *ProgressBar) Close() {
	p.sub.Cancel()
	p.stage.Release(shellOwner)
}
