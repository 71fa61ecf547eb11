// Package web renders the HTML views: the page shell, every section in
// navigation order and the project detail page.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"

	"go.uber.org/zap"

	"folio.dev/internal/models"
	"folio.dev/internal/primitives"
	"folio.dev/internal/scene"
	"folio.dev/internal/section"
	"folio.dev/internal/shell"
)

//go:embed templates/*.html
var templateFS embed.FS

var funcs = template.FuncMap{
	"slug":        primitives.Slug,
	"skillBar":    primitives.SkillBarTarget,
	"count":       primitives.CounterText,
	"statTarget":  section.StatTarget,
	"projectCard": section.ProjectCardTarget,
	"heroShapes":  section.HeroShapes,
	"join":        strings.Join,
	"first": func(s []string) string {
		if len(s) == 0 {
			return ""
		}
		return s[0]
	},
	"stars": func(n int) string {
		n = max(0, min(n, 5))
		return strings.Repeat("★", n) + strings.Repeat("☆", 5-n)
	},
}

// Shell is the data every page shares.
type Shell struct {
	Title      string
	Path       string
	Site       models.Site
	Profile    models.Profile
	Navigation []models.NavigationItem
	Theme      models.Theme
	Themes     []models.Theme
	Tier       scene.Tier
	Body       template.HTML
}

// NewShell fills the shared page data from a catalog.
func NewShell(c *models.Catalog, path string, theme models.Theme, tier scene.Tier) Shell {
	return Shell{
		Title:      c.Site.Title,
		Path:       path,
		Site:       c.Site,
		Profile:    c.Profile,
		Navigation: c.Navigation,
		Theme:      theme,
		Themes:     []models.Theme{models.ThemeLight, models.ThemeDark, models.ThemeSystem},
		Tier:       tier,
	}
}

// Index is the data of the home page sections.
type Index struct {
	Profile      models.Profile
	SkillGroups  []models.SkillGroup
	Projects     []models.Project
	Categories   []string
	Category     string
	Testimonials []models.Testimonial
}

// ProjectPage is the data of a project detail page.
type ProjectPage struct {
	Project      *models.Project
	Testimonials []models.Testimonial
}

// Renderer executes the embedded templates.
type Renderer struct {
	tmpl     *template.Template
	boundary *shell.Boundary
	log      *zap.Logger
}

// NewRenderer parses the embedded templates. Section failures are contained
// by boundary.
func NewRenderer(boundary *shell.Boundary, logger *zap.Logger) (*Renderer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if boundary == nil {
		boundary = shell.NewBoundary(logger)
	}
	tmpl, err := template.New("web").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return &Renderer{tmpl: tmpl, boundary: boundary, log: logger}, nil
}

// HasSection reports whether a section template exists for id.
func (r *Renderer) HasSection(id string) bool {
	return r.tmpl.Lookup("section-"+id) != nil
}

// Index writes the home page. Sections are rendered in navigation order,
// each behind the boundary, so one broken section never blanks the page.
func (r *Renderer) Index(w io.Writer, s Shell, data Index) error {
	var body bytes.Buffer
	for _, item := range s.Navigation {
		name := "section-" + item.ID
		if !r.HasSection(item.ID) {
			r.log.Warn("navigation item has no section template", zap.String("section", item.ID))
			continue
		}
		err := r.boundary.Render(&body, item.ID, func(w io.Writer) error {
			return r.tmpl.ExecuteTemplate(w, name, data)
		})
		if err != nil {
			return err
		}
	}
	return r.layout(w, s, body.String())
}

// Project writes a project detail page.
func (r *Renderer) Project(w io.Writer, s Shell, data ProjectPage) error {
	s.Title = data.Project.Title + " | " + s.Title
	var body bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&body, "project", data); err != nil {
		return fmt.Errorf("render project %s: %w", data.Project.ID, err)
	}
	return r.layout(w, s, body.String())
}

// NotFound writes the 404 page.
func (r *Renderer) NotFound(w io.Writer, s Shell) error {
	s.Title = "Not found | " + s.Title
	var body bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&body, "not-found", s.Path); err != nil {
		return fmt.Errorf("render not found: %w", err)
	}
	return r.layout(w, s, body.String())
}

func (r *Renderer) layout(w io.Writer, s Shell, body string) error {
	// body was produced by html/template, so it is already escaped.
	s.Body = template.HTML(body)
	if err := r.tmpl.ExecuteTemplate(w, "layout", s); err != nil {
		return fmt.Errorf("render layout: %w", err)
	}
	return nil
}
