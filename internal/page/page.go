// Package page composes the shell's scroll orchestrator with the section
// lifecycles and scene surfaces of one page view. Feeding it scroll offsets
// drives every section through mount, activation, pause and revert exactly
// as a browser session would.
package page

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"folio.dev/internal/animation"
	"folio.dev/internal/frameloop"
	"folio.dev/internal/scene"
	"folio.dev/internal/scroll"
	"folio.dev/internal/section"
)

// Placement is a section's box in document coordinates.
type Placement struct {
	ID     string  `json:"id"`
	Top    float64 `json:"top"`
	Height float64 `json:"height"`
}

// Layout is the vertical stacking of sections.
type Layout struct {
	Placements []Placement `json:"placements"`
	Viewport   float64     `json:"viewport"`
}

// Stack lays ids out top to bottom, each height tall.
func Stack(ids []string, height, viewport float64) Layout {
	l := Layout{Viewport: viewport}
	var top float64
	for _, id := range ids {
		l.Placements = append(l.Placements, Placement{ID: id, Top: top, Height: height})
		top += height
	}
	return l
}

// DocumentHeight is the bottom edge of the last section.
func (l Layout) DocumentHeight() float64 {
	var h float64
	for _, p := range l.Placements {
		h = max(h, p.Top+p.Height)
	}
	return h
}

// Anchors returns the navigation anchors in document order.
func (l Layout) Anchors() []scroll.Anchor {
	out := make([]scroll.Anchor, 0, len(l.Placements))
	for _, p := range l.Placements {
		out = append(out, scroll.Anchor{ID: p.ID, Top: p.Top})
	}
	return out
}

func (l Layout) lookup(id string) (Placement, bool) {
	for _, p := range l.Placements {
		if p.ID == id {
			return p, true
		}
	}
	return Placement{}, false
}

// Scene attaches a rendering surface to the section that contains it.
type Scene struct {
	Section string
	Surface *scene.Surface
}

// Options configures a Page.
type Options struct {
	Loop         *frameloop.Loop
	Stage        *animation.Stage
	Scroll       *scroll.Orchestrator
	Definitions  []section.Definition
	Layout       Layout
	Scenes       []Scene
	Capabilities scene.Capabilities
	Logger       *zap.Logger
}

// Page is one mounted page view.
type Page struct {
	mu       sync.Mutex
	opts     Options
	log      *zap.Logger
	sections []*section.Section
	subs     []scroll.Subscription
	active   string
	assembly atomic.Uint64
	mounted  bool
}

// New creates an unmounted page.
func New(opts Options) *Page {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Page{opts: opts, log: log}
}

// Mount mounts every section and scene and subscribes the hero assembly
// consumer to the orchestrator. If anything fails, whatever was mounted is
// torn down again.
func (p *Page) Mount() (err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.mounted {
		return errors.New("page already mounted")
	}
	defer func() {
		if err != nil {
			p.teardownLocked()
		}
	}()

	for _, def := range p.opts.Definitions {
		if _, ok := p.opts.Layout.lookup(def.ID); !ok {
			return fmt.Errorf("section %q has no placement", def.ID)
		}
		s := section.New(def, p.opts.Loop, p.opts.Stage, p.log)
		if err := s.Mount(); err != nil {
			return err
		}
		p.sections = append(p.sections, s)
	}
	for _, sc := range p.opts.Scenes {
		if err := sc.Surface.Mount(p.opts.Capabilities); err != nil {
			return err
		}
	}

	p.subs = append(p.subs,
		p.opts.Scroll.Subscribe(scroll.AssemblyBand, func(v float64) {
			p.assembly.Store(math.Float64bits(v))
		}),
	)
	p.mounted = true
	return nil
}

// Scroll moves the viewport to offset and updates every consumer: the
// orchestrator first, then each section's visibility, then the scenes.
func (p *Page) Scroll(offset float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.mounted {
		return errors.New("page not mounted")
	}
	l := p.opts.Layout
	p.opts.Scroll.Update(offset, l.DocumentHeight(), l.Viewport)

	var errs []error
	visible := make(map[string]float64, len(p.sections))
	for _, s := range p.sections {
		pl, _ := l.lookup(s.ID())
		v := scroll.Visibility(pl.Top, pl.Height, offset, l.Viewport)
		visible[s.ID()] = v
		if err := s.Observe(v); err != nil {
			errs = append(errs, err)
		}
	}
	for _, sc := range p.opts.Scenes {
		if err := sc.Surface.SetVisible(visible[sc.Section] > 0); err != nil {
			errs = append(errs, err)
		}
	}
	p.active = scroll.ActiveAnchor(l.Anchors(), offset, l.Viewport)
	return errors.Join(errs...)
}

// Active returns the section the navigation highlights.
func (p *Page) Active() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active
}

// Assembly returns the hero assembly progress in [0,1].
func (p *Page) Assembly() float64 {
	return math.Float64frombits(p.assembly.Load())
}

// Sections returns the mounted sections in page order.
func (p *Page) Sections() []*section.Section {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*section.Section(nil), p.sections...)
}

// Section finds a mounted section by id.
func (p *Page) Section(id string) (*section.Section, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, s := range p.sections {
		if s.ID() == id {
			return s, true
		}
	}
	return nil, false
}

// Unmount reverts every section, closes every scene and detaches from the
// orchestrator. Safe to call twice.
func (p *Page) Unmount() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.teardownLocked()
}

func (p *Page) teardownLocked() {
	for i := len(p.subs) - 1; i >= 0; i-- {
		p.subs[i].Cancel()
	}
	p.subs = nil
	for _, sc := range p.opts.Scenes {
		sc.Surface.Close()
	}
	for i := len(p.sections) - 1; i >= 0; i-- {
		p.sections[i].Unmount()
	}
	p.sections = nil
	p.mounted = false
}
