package scroll

import (
	"sort"
	"sync"

	"folio.dev/internal/animation"
)

// Band is a consumer's slice of the global ratio.
type Band struct {
	Name string         `json:"name"`
	In   Range          `json:"in"`
	Out  Range          `json:"out"`
	Ease animation.Ease `json:"ease"`
}

// Local maps the global ratio into the band's output range.
func (b Band) Local(ratio float64) float64 {
	return Remap(ratio, b.In, b.Out, b.Ease)
}

// Bands used by the built-in consumers.
var (
	AssemblyBand    = Band{Name: "assembly", In: Range{0, 0.3}, Out: Unit, Ease: animation.Linear}
	DisassemblyBand = Band{Name: "disassembly", In: Range{0.8, 1}, Out: Unit, Ease: animation.Linear}
	ProgressBand    = Band{Name: "progress", In: Unit, Out: Range{0, 100}, Ease: animation.Linear}
	ParallaxBand    = Band{Name: "parallax", In: Unit, Out: Range{0, -240}, Ease: animation.Linear}
)

// Consumer receives a band-local value each time the ratio changes.
type Consumer func(local float64)

// Subscription detaches a consumer. Cancel is idempotent.
type Subscription interface {
	Cancel()
}

type consumer struct {
	band Band
	fn   Consumer
}

// Orchestrator owns the global scroll ratio.
type Orchestrator struct {
	mu      sync.Mutex
	ratio   float64
	offset  float64
	nextID  uint64
	readers map[uint64]consumer
}

// NewOrchestrator creates an orchestrator at ratio 0.
func NewOrchestrator() *Orchestrator {
	return &Orchestrator{readers: make(map[uint64]consumer)}
}

// Update recomputes the ratio from the viewport and notifies every consumer
// in subscription order. It returns the new ratio.
func (o *Orchestrator) Update(offset, documentHeight, viewportHeight float64) float64 {
	r := Ratio(offset, documentHeight, viewportHeight)

	o.mu.Lock()
	o.ratio = r
	o.offset = offset
	ids := make([]uint64, 0, len(o.readers))
	for id := range o.readers {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	readers := make([]consumer, 0, len(ids))
	for _, id := range ids {
		readers = append(readers, o.readers[id])
	}
	o.mu.Unlock()

	for _, c := range readers {
		c.fn(c.band.Local(r))
	}
	return r
}

// Ratio returns the last computed ratio.
func (o *Orchestrator) Ratio() float64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.ratio
}

// Offset returns the last scroll offset seen.
func (o *Orchestrator) Offset() float64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.offset
}

// Subscribe registers fn for band. fn is called immediately with the current
// local value so late subscribers start in sync.
func (o *Orchestrator) Subscribe(band Band, fn Consumer) Subscription {
	o.mu.Lock()
	o.nextID++
	id := o.nextID
	o.readers[id] = consumer{band: band, fn: fn}
	r := o.ratio
	o.mu.Unlock()

	fn(band.Local(r))
	return &subscription{o: o, id: id}
}

// Consumers reports the number of live subscriptions.
func (o *Orchestrator) Consumers() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.readers)
}

type subscription struct {
	o    *Orchestrator
	id   uint64
	once sync.Once
}

func (s *subscription) Cancel() {
	s.once.Do(func() {
		s.o.mu.Lock()
		delete(s.o.readers, s.id)
		s.o.mu.Unlock()
	})
}
