package scene

import (
	"errors"
	"fmt"
	"math"
)

// Kind names a procedural geometry generator.
type Kind string

const (
	KindBrain     Kind = "brain"
	KindCircuit   Kind = "circuit"
	KindParticles Kind = "particles"
)

// ErrUnknownKind is returned for geometry kinds with no generator.
var ErrUnknownKind = errors.New("unknown geometry kind")

// Kinds lists every geometry generator.
func Kinds() []Kind {
	return []Kind{KindBrain, KindCircuit, KindParticles}
}

// Primitive tells the renderer how to read Indices.
type Primitive string

const (
	Triangles Primitive = "triangles"
	Lines     Primitive = "lines"
	Points    Primitive = "points"
)

// Geometry is a flat vertex buffer ready to upload. Positions holds x, y, z
// triples.
type Geometry struct {
	Kind      Kind      `json:"kind"`
	Seed      uint64    `json:"seed"`
	Primitive Primitive `json:"primitive"`
	Positions []float32 `json:"positions"`
	Indices   []uint32  `json:"indices,omitempty"`
	Nodes     []uint32  `json:"nodes,omitempty"`
}

// VertexCount returns the number of vertices.
func (g *Geometry) VertexCount() int {
	return len(g.Positions) / 3
}

// Radius returns the distance of the farthest vertex from the origin.
func (g *Geometry) Radius() float64 {
	var r float64
	for i := 0; i+2 < len(g.Positions); i += 3 {
		x, y, z := float64(g.Positions[i]), float64(g.Positions[i+1]), float64(g.Positions[i+2])
		r = math.Max(r, math.Sqrt(x*x+y*y+z*z))
	}
	return r
}

// Params selects one geometry. Size means detail for brains, grid size for
// circuits and particle count for particle fields. Radius is only used by
// particle fields.
type Params struct {
	Kind   Kind    `json:"kind"`
	Seed   uint64  `json:"seed"`
	Size   int     `json:"size"`
	Radius float64 `json:"radius,omitempty"`
}

// Geometry limits.
const (
	DefaultBrainDetail = 4
	MaxBrainDetail     = 8
	DefaultCircuitSize = 16
	MaxCircuitSize     = 64
	DefaultParticles   = 2000
	MaxParticles       = 20000
	DefaultRadius      = 5.0
	MaxRadius          = 100.0
)

// DefaultParams returns the parameters the page uses for kind.
func DefaultParams(kind Kind) Params {
	return Params{Kind: kind, Seed: 42}.normalize()
}

func (p Params) normalize() Params {
	clamp := func(v, def, max int) int {
		switch {
		case v <= 0:
			return def
		case v > max:
			return max
		}
		return v
	}
	switch p.Kind {
	case KindBrain:
		p.Size = clamp(p.Size, DefaultBrainDetail, MaxBrainDetail)
		p.Radius = 0
	case KindCircuit:
		p.Size = clamp(p.Size, DefaultCircuitSize, MaxCircuitSize)
		if p.Size < 2 {
			p.Size = 2
		}
		p.Radius = 0
	case KindParticles:
		p.Size = clamp(p.Size, DefaultParticles, MaxParticles)
		switch {
		case p.Radius <= 0 || math.IsNaN(p.Radius):
			p.Radius = DefaultRadius
		case p.Radius > MaxRadius:
			p.Radius = MaxRadius
		}
	}
	return p
}

// Key identifies the geometry p builds.
func (p Params) Key() string {
	n := p.normalize()
	return fmt.Sprintf("%s:%d:%d:%g", n.Kind, n.Seed, n.Size, n.Radius)
}

// Build runs the generator p selects.
func Build(p Params) (*Geometry, error) {
	p = p.normalize()
	switch p.Kind {
	case KindBrain:
		return Brain(p.Seed, p.Size), nil
	case KindCircuit:
		return Circuit(p.Seed, p.Size), nil
	case KindParticles:
		return Particles(p.Seed, p.Size, p.Radius), nil
	}
	return nil, fmt.Errorf("build %q: %w", p.Kind, ErrUnknownKind)
}

// noise layers for Brain: frequency and amplitude.
var brainLayers = [...]struct{ freq, amp float64 }{
	{2, 0.12},
	{5, 0.05},
	{11, 0.02},
}

// BrainAmplitude is the largest radial displacement Brain can apply.
const BrainAmplitude = 0.19

// Brain builds a unit UV sphere whose vertices are pushed in and out by
// layered periodic noise. Phases come from seed.
func Brain(seed uint64, detail int) *Geometry {
	if detail <= 0 {
		detail = 1
	}
	rng := NewRNG(seed)
	var phases [len(brainLayers)][3]float64
	for i := range phases {
		for j := range phases[i] {
			phases[i][j] = rng.Range(0, 2*math.Pi)
		}
	}

	rings, segs := 8*detail, 16*detail
	g := &Geometry{
		Kind:      KindBrain,
		Seed:      seed,
		Primitive: Triangles,
		Positions: make([]float32, 0, (rings+1)*(segs+1)*3),
		Indices:   make([]uint32, 0, rings*segs*6),
	}
	for i := 0; i <= rings; i++ {
		theta := math.Pi * float64(i) / float64(rings)
		for j := 0; j <= segs; j++ {
			phi := 2 * math.Pi * float64(j) / float64(segs)
			x := math.Sin(theta) * math.Cos(phi)
			y := math.Cos(theta)
			z := math.Sin(theta) * math.Sin(phi)

			d := 1.0
			for l, layer := range brainLayers {
				p := phases[l]
				d += layer.amp * math.Sin(layer.freq*x+p[0]) * math.Sin(layer.freq*y+p[1]) * math.Sin(layer.freq*z+p[2])
			}
			g.Positions = append(g.Positions, float32(x*d), float32(y*d), float32(z*d))
		}
	}
	for i := 0; i < rings; i++ {
		for j := 0; j < segs; j++ {
			a := uint32(i*(segs+1) + j)
			b := a + uint32(segs+1)
			g.Indices = append(g.Indices, a, b, a+1, b, b+1, a+1)
		}
	}
	return g
}

// Circuit lays out a size×size grid in the z=0 plane spanning [-1,1] and
// walks random traces across it. The trace end points are then joined by a
// bus along a minimum spanning tree, so the board is one connected network.
// Indices are line segment pairs; Nodes are the trace end points.
func Circuit(seed uint64, size int) *Geometry {
	if size < 2 {
		size = 2
	}
	rng := NewRNG(seed)
	g := &Geometry{
		Kind:      KindCircuit,
		Seed:      seed,
		Primitive: Lines,
		Positions: make([]float32, 0, size*size*3),
	}
	step := 2 / float64(size-1)
	for row := 0; row < size; row++ {
		for col := 0; col < size; col++ {
			g.Positions = append(g.Positions, float32(-1+float64(col)*step), float32(-1+float64(row)*step), 0)
		}
	}

	dirs := [4][2]int{{1, 0}, {0, 1}, {-1, 0}, {0, -1}}
	type edge struct{ a, b uint32 }
	seenEdge := make(map[edge]bool)
	seenNode := make(map[uint32]bool)
	index := func(col, row int) uint32 { return uint32(row*size + col) }
	link := func(a, b uint32) {
		if a > b {
			a, b = b, a
		}
		if e := (edge{a, b}); !seenEdge[e] {
			seenEdge[e] = true
			g.Indices = append(g.Indices, a, b)
		}
	}

	for t := 0; t < size; t++ {
		col, row := rng.Intn(size), rng.Intn(size)
		dir := rng.Intn(4)
		start := index(col, row)
		length := 2 + rng.Intn(size)
		for s := 0; s < length; s++ {
			if rng.Float64() < 0.3 {
				dir = (dir + 1 + 2*rng.Intn(2)) % 4
			}
			nc, nr := col+dirs[dir][0], row+dirs[dir][1]
			if nc < 0 || nc >= size || nr < 0 || nr >= size {
				break
			}
			link(index(col, row), index(nc, nr))
			col, row = nc, nr
		}
		for _, n := range []uint32{start, index(col, row)} {
			if !seenNode[n] {
				seenNode[n] = true
				g.Nodes = append(g.Nodes, n)
			}
		}
	}

	// Route each bus connection horizontally, then vertically.
	for _, pair := range spanningBus(g.Nodes, size) {
		col, row := int(pair[0])%size, int(pair[0])/size
		toCol, toRow := int(pair[1])%size, int(pair[1])/size
		for col != toCol {
			next := col + sign(toCol-col)
			link(index(col, row), index(next, row))
			col = next
		}
		for row != toRow {
			next := row + sign(toRow-row)
			link(index(col, row), index(col, next))
			row = next
		}
	}
	return g
}

// Particles scatters count points uniformly inside a sphere of radius.
func Particles(seed uint64, count int, radius float64) *Geometry {
	if count < 0 {
		count = 0
	}
	rng := NewRNG(seed)
	g := &Geometry{
		Kind:      KindParticles,
		Seed:      seed,
		Primitive: Points,
		Positions: make([]float32, 0, count*3),
	}
	for len(g.Positions) < count*3 {
		x, y, z := rng.Range(-1, 1), rng.Range(-1, 1), rng.Range(-1, 1)
		if x*x+y*y+z*z > 1 {
			continue
		}
		g.Positions = append(g.Positions, float32(x*radius), float32(y*radius), float32(z*radius))
	}
	return g
}

// ParseKind validates a geometry kind name.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds() {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("parse %q: %w", s, ErrUnknownKind)
}
