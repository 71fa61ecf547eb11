package models

import "time"

// NavigationItem is one section anchor in the site header.
type NavigationItem struct {
	ID    string `json:"id" yaml:"id"`
	Label string `json:"label" yaml:"label"`
}

// Skill is a single proficiency entry.
type Skill struct {
	Name       string  `json:"name" yaml:"name"`
	Percentage float64 `json:"percentage" yaml:"percentage"` // 0-100
	Category   string  `json:"category" yaml:"category"`
	Years      int     `json:"years" yaml:"years"`
}

// SkillGroup is an ordered run of skills sharing a category.
type SkillGroup struct {
	Category string  `json:"category"`
	Skills   []Skill `json:"skills"`
}

// Testimonial is a quote from a client or colleague. ProjectID optionally
// references a Project; it is not guaranteed to resolve.
type Testimonial struct {
	ID        string    `json:"id" yaml:"id"`
	Author    string    `json:"author" yaml:"author"`
	Role      string    `json:"role,omitempty" yaml:"role"`
	Company   string    `json:"company,omitempty" yaml:"company"`
	Content   string    `json:"content" yaml:"content"`
	Rating    int       `json:"rating" yaml:"rating"` // 1-5
	Date      time.Time `json:"date" yaml:"date"`
	ProjectID string    `json:"project_id,omitempty" yaml:"project_id"`
	Verified  bool      `json:"verified" yaml:"verified"`
}

// Profile is the hero/about copy.
type Profile struct {
	Name     string   `json:"name" yaml:"name"`
	Headline string   `json:"headline" yaml:"headline"`
	Roles    []string `json:"roles" yaml:"roles"`
	Bio      string   `json:"bio" yaml:"bio"`
	Email    string   `json:"email" yaml:"email"`
	Location string   `json:"location,omitempty" yaml:"location"`
	Stats    []Stat   `json:"stats" yaml:"stats"`
	Socials  []Social `json:"socials,omitempty" yaml:"socials"`
}

// Stat is an animated counter in the about section.
type Stat struct {
	Label  string  `json:"label" yaml:"label"`
	Value  float64 `json:"value" yaml:"value"`
	Suffix string  `json:"suffix,omitempty" yaml:"suffix"`
}

// Social is an external profile link.
type Social struct {
	Name string `json:"name" yaml:"name"`
	URL  string `json:"url" yaml:"url"`
}
