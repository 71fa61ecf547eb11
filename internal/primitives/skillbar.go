// Package primitives holds the reusable animated widgets sections are built
// from. Each one either returns literal timeline configuration or drives its
// element through an animation.Driver; both are revocable handles.
package primitives

import (
	"time"

	"folio.dev/internal/animation"
	"folio.dev/internal/models"
)

// Bar timing used by the skills section.
const (
	SkillBarDuration = 1500 * time.Millisecond
	SkillBarStagger  = 100 * time.Millisecond
)

// Slug turns a display name into an element-safe identifier.
func Slug(name string) string {
	return models.Slug(name)
}

// SkillBarTarget is the element id of a skill's bar. Catalog validation
// keeps it unique per skill.
func SkillBarTarget(s models.Skill) string {
	return "skill-bar-" + Slug(s.Name)
}

// SkillBar fills one bar from 0 to its clamped percentage.
func SkillBar(s models.Skill) animation.TweenConfig {
	pct := s.Percentage
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	return animation.TweenConfig{
		Target:   SkillBarTarget(s),
		Property: "width",
		From:     0,
		To:       pct,
		Duration: SkillBarDuration,
		Ease:     animation.Power3Out,
	}
}

// SkillBars fills every bar in list order. The stagger is index based, so
// the final widths do not depend on order; only the start times do.
func SkillBars(skills []models.Skill) animation.TimelineConfig {
	cfg := animation.TimelineConfig{Stagger: SkillBarStagger}
	for _, s := range skills {
		cfg.Tweens = append(cfg.Tweens, SkillBar(s))
	}
	return cfg
}
