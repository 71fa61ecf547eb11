// Package scene composes the decorative 3D content: renderer tiers, the
// bounded scene configuration, procedural geometry and the rendering
// surface lifecycle.
package scene

import "strings"

// Tier is the coarse performance budget a consumer picks for a scene.
type Tier string

const (
	TierLow    Tier = "low"
	TierMedium Tier = "medium"
	TierHigh   Tier = "high"
)

// PixelRatio bounds the device pixel ratio the renderer may use.
type PixelRatio struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// RendererSettings are the concrete renderer options a tier maps to.
type RendererSettings struct {
	Tier            Tier       `json:"tier"`
	PixelRatio      PixelRatio `json:"pixel_ratio"`
	Antialias       bool       `json:"antialias"`
	PowerPreference string     `json:"power_preference"`
}

// ParseTier maps a name to a tier. Anything unrecognised is medium.
func ParseTier(s string) Tier {
	switch Tier(strings.ToLower(strings.TrimSpace(s))) {
	case TierLow:
		return TierLow
	case TierHigh:
		return TierHigh
	}
	return TierMedium
}

// Settings returns the renderer settings for t.
func (t Tier) Settings() RendererSettings {
	switch t {
	case TierLow:
		return RendererSettings{Tier: TierLow, PixelRatio: PixelRatio{1, 1}, PowerPreference: "low-power"}
	case TierHigh:
		return RendererSettings{Tier: TierHigh, PixelRatio: PixelRatio{1, 2}, Antialias: true, PowerPreference: "high-performance"}
	}
	return RendererSettings{Tier: TierMedium, PixelRatio: PixelRatio{1, 1.5}, Antialias: true, PowerPreference: "default"}
}

// Tiers lists every tier from cheapest to most expensive.
func Tiers() []Tier {
	return []Tier{TierLow, TierMedium, TierHigh}
}
