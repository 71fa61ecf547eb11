package models

import (
	"errors"
	"fmt"
)

// Catalog is the whole static content of the site, loaded once at startup
// and treated as immutable afterwards.
type Catalog struct {
	Site         Site             `json:"site" yaml:"site"`
	Profile      Profile          `json:"profile" yaml:"profile"`
	Navigation   []NavigationItem `json:"navigation" yaml:"navigation"`
	Skills       []Skill          `json:"skills" yaml:"skills"`
	Projects     []Project        `json:"projects" yaml:"projects"`
	Testimonials []Testimonial    `json:"testimonials" yaml:"testimonials"`
}

// Site holds document-level metadata.
type Site struct {
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
	URL         string `json:"url" yaml:"url"`
	Background  string `json:"background" yaml:"background"`
}

// DanglingRef is a testimonial pointing at a project id that does not exist.
type DanglingRef struct {
	TestimonialID string `json:"testimonial_id"`
	ProjectID     string `json:"project_id"`
}

// Validate checks the structural invariants of the catalog. Project ids are
// routing keys, so duplicates are an error. Dangling testimonial references
// are not; see DanglingReferences.
func (c *Catalog) Validate() error {
	var errs []error

	navIDs := make(map[string]struct{}, len(c.Navigation))
	for i, n := range c.Navigation {
		if n.ID == "" {
			errs = append(errs, fmt.Errorf("navigation[%d]: empty id", i))
			continue
		}
		if _, dup := navIDs[n.ID]; dup {
			errs = append(errs, fmt.Errorf("navigation[%d]: duplicate id %q", i, n.ID))
		}
		navIDs[n.ID] = struct{}{}
	}

	// Skill and category slugs become element ids.
	skillSlugs := make(map[string]string, len(c.Skills))
	categorySlugs := make(map[string]string)
	for i, s := range c.Skills {
		if s.Percentage < 0 || s.Percentage > 100 {
			errs = append(errs, fmt.Errorf("skills[%d] %q: percentage %v outside [0,100]", i, s.Name, s.Percentage))
		}
		slug := Slug(s.Name)
		if slug == "" {
			errs = append(errs, fmt.Errorf("skills[%d] %q: name has no usable characters", i, s.Name))
		} else if prev, dup := skillSlugs[slug]; dup {
			errs = append(errs, fmt.Errorf("skills[%d] %q: id %q already used by %q", i, s.Name, slug, prev))
		} else {
			skillSlugs[slug] = s.Name
		}
		cat := Slug(s.Category)
		if prev, dup := categorySlugs[cat]; dup && prev != s.Category {
			errs = append(errs, fmt.Errorf("skills[%d] category %q: id %q already used by %q", i, s.Category, cat, prev))
		} else if !dup {
			categorySlugs[cat] = s.Category
		}
	}

	ids := make(map[string]struct{}, len(c.Projects))
	for i, p := range c.Projects {
		if p.ID == "" {
			errs = append(errs, fmt.Errorf("projects[%d]: empty id", i))
			continue
		}
		if _, dup := ids[p.ID]; dup {
			errs = append(errs, fmt.Errorf("projects[%d]: duplicate id %q", i, p.ID))
		}
		ids[p.ID] = struct{}{}
	}

	for i, t := range c.Testimonials {
		if t.Rating < 1 || t.Rating > 5 {
			errs = append(errs, fmt.Errorf("testimonials[%d] %q: rating %d outside [1,5]", i, t.ID, t.Rating))
		}
	}

	return errors.Join(errs...)
}

// DanglingReferences lists testimonials whose ProjectID does not resolve.
func (c *Catalog) DanglingReferences() []DanglingRef {
	ids := make(map[string]struct{}, len(c.Projects))
	for _, p := range c.Projects {
		ids[p.ID] = struct{}{}
	}
	var out []DanglingRef
	for _, t := range c.Testimonials {
		if t.ProjectID == "" {
			continue
		}
		if _, ok := ids[t.ProjectID]; !ok {
			out = append(out, DanglingRef{TestimonialID: t.ID, ProjectID: t.ProjectID})
		}
	}
	return out
}

// ClearDanglingReferences drops unresolvable ProjectIDs in place and returns
// what was dropped. The testimonials themselves are kept.
func (c *Catalog) ClearDanglingReferences() []DanglingRef {
	refs := c.DanglingReferences()
	if len(refs) == 0 {
		return nil
	}
	bad := make(map[string]struct{}, len(refs))
	for _, r := range refs {
		bad[r.TestimonialID] = struct{}{}
	}
	for i := range c.Testimonials {
		if _, ok := bad[c.Testimonials[i].ID]; ok {
			c.Testimonials[i].ProjectID = ""
		}
	}
	return refs
}
