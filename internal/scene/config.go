package scene

import "math"

// Effect is a post-processing pass.
type Effect string

const (
	EffectBloom     Effect = "bloom"
	EffectChromatic Effect = "chromatic"
	EffectVignette  Effect = "vignette"
	EffectNoise     Effect = "noise"
)

var knownEffects = map[Effect]bool{
	EffectBloom:     true,
	EffectChromatic: true,
	EffectVignette:  true,
	EffectNoise:     true,
}

// Camera field-of-view bounds, in degrees.
const (
	DefaultFOV = 45.0
	MinFOV     = 10.0
	MaxFOV     = 120.0
)

// Vec3 is an x, y, z triple.
type Vec3 [3]float64

// Camera is the only camera control a consumer gets.
type Camera struct {
	Position Vec3    `json:"position" yaml:"position"`
	FOV      float64 `json:"fov" yaml:"fov"`
}

// Config is the whole configuration surface of a scene. Consumers never
// reach the renderer beyond this.
type Config struct {
	Camera  Camera   `json:"camera" yaml:"camera"`
	Effects []Effect `json:"effects" yaml:"effects"`
	Tier    Tier     `json:"tier" yaml:"tier"`
}

// DefaultConfig is a medium-tier scene looking at the origin from z=5.
func DefaultConfig() Config {
	return Config{
		Camera: Camera{Position: Vec3{0, 0, 5}, FOV: DefaultFOV},
		Tier:   TierMedium,
	}
}

// Normalize returns a copy with the tier resolved, the FOV clamped and
// unknown or repeated effects removed. The dropped effect names are
// returned so callers can log them.
func (c Config) Normalize() (Config, []Effect) {
	out := c
	out.Tier = ParseTier(string(c.Tier))

	switch fov := c.Camera.FOV; {
	case fov == 0 || math.IsNaN(fov):
		out.Camera.FOV = DefaultFOV
	case fov < MinFOV:
		out.Camera.FOV = MinFOV
	case fov > MaxFOV:
		out.Camera.FOV = MaxFOV
	}
	for i, v := range out.Camera.Position {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			out.Camera.Position[i] = 0
		}
	}

	var dropped []Effect
	seen := make(map[Effect]bool, len(c.Effects))
	out.Effects = make([]Effect, 0, len(c.Effects))
	for _, e := range c.Effects {
		if !knownEffects[e] || seen[e] {
			dropped = append(dropped, e)
			continue
		}
		seen[e] = true
		out.Effects = append(out.Effects, e)
	}
	return out, dropped
}

// Descriptor is what the client receives to build a scene.
type Descriptor struct {
	Renderer RendererSettings `json:"renderer"`
	Config   Config           `json:"config"`
}

// Describe normalizes c and pairs it with its renderer settings.
func Describe(c Config) Descriptor {
	n, _ := c.Normalize()
	return Descriptor{Renderer: n.Tier.Settings(), Config: n}
}
