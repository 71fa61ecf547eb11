package section

import (
	"strconv"
	"time"

	"folio.dev/internal/animation"
	"folio.dev/internal/models"
	"folio.dev/internal/primitives"
)

// Section ids, in page order.
const (
	HeroID         = "hero"
	AboutID        = "about"
	SkillsID       = "skills"
	ProjectsID     = "projects"
	TestimonialsID = "testimonials"
	ContactID      = "contact"
)

func fadeUp(target string, dy float64, d time.Duration, delay time.Duration) []animation.TweenConfig {
	return []animation.TweenConfig{
		{Target: target, Property: "opacity", From: 0, To: 1, Duration: d, Delay: delay, Ease: animation.Power3Out},
		{Target: target, Property: "y", From: dy, To: 0, Duration: d, Delay: delay, Ease: animation.Power3Out},
	}
}

// Hero staggers the intro copy in, then types the roles and floats the
// background shapes for as long as the section is active.
func Hero(p models.Profile) Definition {
	var intro []animation.TweenConfig
	for i, el := range []string{"hero-greeting", "hero-name", "hero-headline", "hero-cta"} {
		intro = append(intro, fadeUp(el, 40, 800*time.Millisecond, time.Duration(i)*150*time.Millisecond)...)
	}
	extras := []Extra{
		func(env Env) (animation.Handle, error) {
			return primitives.DefaultTypewriter(p.Roles).Run(env.Loop, env.Stage, env.Owner, "hero-roles")
		},
	}
	for _, shape := range HeroShapes() {
		shape := shape
		extras = append(extras, func(env Env) (animation.Handle, error) {
			return shape.Run(env.Loop, env.Stage, env.Owner)
		})
	}
	return Definition{
		ID:        HeroID,
		Title:     "Home",
		Observer:  ObserverConfig{Threshold: 0.1, Once: true},
		Timelines: []animation.TimelineConfig{{Tweens: intro}},
		Extras:    extras,
	}
}

// HeroShapes are the decorative shapes floating behind the hero copy.
func HeroShapes() []primitives.FloatingShape {
	return primitives.Shapes("hero-shape", 4)
}

// StatTarget is the element id of the i-th about counter.
func StatTarget(i int) string {
	return "about-stat-" + strconv.Itoa(i)
}

// About slides the portrait and bio in and counts the stats up.
func About(p models.Profile) Definition {
	reveal := animation.TimelineConfig{
		Tweens: []animation.TweenConfig{
			{Target: "about-image", Property: "scale", From: 0.8, To: 1, Duration: time.Second, Ease: animation.BackOut},
			{Target: "about-image", Property: "opacity", From: 0, To: 1, Duration: time.Second},
			{Target: "about-bio", Property: "x", From: -50, To: 0, Duration: 900 * time.Millisecond, Delay: 200 * time.Millisecond, Ease: animation.Power3Out},
			{Target: "about-bio", Property: "opacity", From: 0, To: 1, Duration: 900 * time.Millisecond, Delay: 200 * time.Millisecond},
		},
	}
	counters := animation.TimelineConfig{Stagger: 200 * time.Millisecond}
	for i, st := range p.Stats {
		counters.Tweens = append(counters.Tweens, primitives.Counter(StatTarget(i), st.Value, 400*time.Millisecond))
	}
	tls := []animation.TimelineConfig{reveal}
	if len(counters.Tweens) > 0 {
		tls = append(tls, counters)
	}
	return Definition{
		ID:        AboutID,
		Title:     "About",
		Observer:  ObserverConfig{Threshold: 0.3, Once: true},
		Timelines: tls,
	}
}

// Skills fades the category cards in and fills every bar.
func Skills(groups []models.SkillGroup) Definition {
	cards := animation.TimelineConfig{Stagger: 120 * time.Millisecond}
	var all []models.Skill
	for _, g := range groups {
		cards.Tweens = append(cards.Tweens, animation.TweenConfig{
			Target: "skills-card-" + primitives.Slug(g.Category), Property: "opacity", From: 0, To: 1, Duration: 700 * time.Millisecond,
		})
		all = append(all, g.Skills...)
	}
	tls := []animation.TimelineConfig{cards}
	if len(all) > 0 {
		tls = append(tls, primitives.SkillBars(all))
	}
	return Definition{
		ID:        SkillsID,
		Title:     "Skills",
		Observer:  ObserverConfig{Threshold: 0.2, Once: true},
		Timelines: tls,
	}
}

// ProjectCardTarget is the element id of a project's card.
func ProjectCardTarget(id string) string {
	return "project-card-" + id
}

// Projects raises the cards every time the grid scrolls back into view.
func Projects(projects []models.Project) Definition {
	var cards animation.TimelineConfig
	for i, p := range projects {
		cards.Tweens = append(cards.Tweens, fadeUp(ProjectCardTarget(p.ID), 60, 800*time.Millisecond, time.Duration(i)*150*time.Millisecond)...)
	}
	return Definition{
		ID:        ProjectsID,
		Title:     "Projects",
		Observer:  ObserverConfig{Threshold: 0.15},
		Timelines: []animation.TimelineConfig{cards},
	}
}

// Testimonials fades the quote cards in.
func Testimonials(ts []models.Testimonial) Definition {
	var cards animation.TimelineConfig
	for i, t := range ts {
		cards.Tweens = append(cards.Tweens, fadeUp("testimonial-"+t.ID, 30, 700*time.Millisecond, time.Duration(i)*200*time.Millisecond)...)
	}
	return Definition{
		ID:        TestimonialsID,
		Title:     "Testimonials",
		Observer:  ObserverConfig{Threshold: 0.25, Once: true},
		Timelines: []animation.TimelineConfig{cards},
	}
}

// Contact reveals the form one field at a time.
func Contact() Definition {
	form := animation.TimelineConfig{Sequence: true}
	for _, el := range []string{"contact-heading", "contact-name", "contact-email", "contact-message", "contact-submit"} {
		form.Tweens = append(form.Tweens,
			animation.TweenConfig{Target: el, Property: "opacity", From: 0, To: 1, Duration: 400 * time.Millisecond, Delay: -200 * time.Millisecond},
		)
	}
	return Definition{
		ID:        ContactID,
		Title:     "Contact",
		Observer:  ObserverConfig{Threshold: 0.3, Once: true},
		Timelines: []animation.TimelineConfig{form},
	}
}

// Content is the subset of the catalog the sections are built from.
type Content struct {
	Profile      models.Profile
	SkillGroups  []models.SkillGroup
	Projects     []models.Project
	Testimonials []models.Testimonial
}

// Definitions returns every built-in section in page order.
func Definitions(c Content) []Definition {
	return []Definition{
		Hero(c.Profile),
		About(c.Profile),
		Skills(c.SkillGroups),
		Projects(c.Projects),
		Testimonials(c.Testimonials),
		Contact(),
	}
}

// Lookup finds a definition by id.
func Lookup(defs []Definition, id string) (Definition, bool) {
	for _, d := range defs {
		if d.ID == id {
			return d, true
		}
	}
	return Definition{}, false
}
