package web

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"folio.dev/internal/models"
	"folio.dev/internal/primitives"
	"folio.dev/internal/scene"
	"folio.dev/internal/section"
	"folio.dev/internal/shell"
)

func testCatalog() *models.Catalog {
	return &models.Catalog{
		Site: models.Site{Title: "Jane Doe", URL: "https://example.com"},
		Profile: models.Profile{
			Name:  "Jane Doe",
			Roles: []string{"Engineer", "Designer"},
			Email: "jane@example.com",
			Stats: []models.Stat{{Label: "Years", Value: 7.6, Suffix: "+"}},
		},
		Navigation: []models.NavigationItem{
			{ID: section.HeroID, Label: "Home"},
			{ID: section.AboutID, Label: "About"},
			{ID: section.SkillsID, Label: "Skills"},
			{ID: section.ProjectsID, Label: "Projects"},
			{ID: section.TestimonialsID, Label: "Testimonials"},
			{ID: section.ContactID, Label: "Contact"},
		},
		Skills:       []models.Skill{{Name: "Go", Percentage: 90, Category: "Backend"}},
		Projects:     []models.Project{{ID: "orbit", Title: "Orbit", Featured: true}},
		Testimonials: []models.Testimonial{{ID: "maria", Author: "Maria", Rating: 4, ProjectID: "orbit"}},
	}
}

func testIndex(c *models.Catalog) Index {
	return Index{
		Profile:      c.Profile,
		SkillGroups:  []models.SkillGroup{{Category: "Backend", Skills: c.Skills}},
		Projects:     c.Projects,
		Testimonials: c.Testimonials,
	}
}

func parse(t *testing.T, b []byte) *html.Node {
	t.Helper()
	doc, err := html.Parse(bytes.NewReader(b))
	require.NoError(t, err)
	return doc
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func walk(n *html.Node, fn func(*html.Node)) {
	fn(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}

func ids(doc *html.Node) map[string]*html.Node {
	out := make(map[string]*html.Node)
	walk(doc, func(n *html.Node) {
		if n.Type == html.ElementNode {
			if id := attr(n, "id"); id != "" {
				out[id] = n
			}
		}
	})
	return out
}

func sectionOrder(doc *html.Node) []string {
	var order []string
	walk(doc, func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "section" {
			order = append(order, attr(n, "id"))
		}
	})
	return order
}

func TestIndexRendersSectionsInNavigationOrder(t *testing.T) {
	r, err := NewRenderer(nil, nil)
	require.NoError(t, err)
	c := testCatalog()

	var buf bytes.Buffer
	require.NoError(t, r.Index(&buf, NewShell(c, "/", models.ThemeDark, scene.TierHigh), testIndex(c)))
	doc := parse(t, buf.Bytes())

	var want []string
	for _, n := range c.Navigation {
		want = append(want, n.ID)
	}
	assert.Equal(t, want, sectionOrder(doc))

	var root *html.Node
	walk(doc, func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "html" {
			root = n
		}
	})
	require.NotNil(t, root)
	assert.Equal(t, "dark", attr(root, "data-theme"))
}

func TestIndexCarriesAnimationTargets(t *testing.T) {
	r, err := NewRenderer(nil, nil)
	require.NoError(t, err)
	c := testCatalog()

	var buf bytes.Buffer
	require.NoError(t, r.Index(&buf, NewShell(c, "/", models.ThemeSystem, scene.TierMedium), testIndex(c)))
	found := ids(parse(t, buf.Bytes()))

	targets := []string{
		shell.ProgressBarElement,
		"hero-greeting", "hero-name", "hero-headline", "hero-cta", "hero-roles",
		"about-image", "about-bio", section.StatTarget(0),
		"skills-card-backend", primitives.SkillBarTarget(c.Skills[0]),
		section.ProjectCardTarget("orbit"),
		"testimonial-maria",
		"contact-heading", "contact-name", "contact-email", "contact-message", "contact-submit",
	}
	for _, s := range section.HeroShapes() {
		targets = append(targets, s.Target)
	}
	for _, id := range targets {
		assert.Contains(t, found, id)
	}

	stat := found[section.StatTarget(0)]
	require.NotNil(t, stat.FirstChild)
	assert.Equal(t, "8", stat.FirstChild.Data)
	assert.Equal(t, "0%", strings.TrimPrefix(attr(found[shell.ProgressBarElement], "style"), "width: "))

	fallback := found["hero-scene-fallback"]
	require.NotNil(t, fallback, "the scene has static markup for devices without WebGL")
	assert.Equal(t, "hero-canvas", attr(fallback.Parent, "id"))
}

func TestBrokenSectionFallsBack(t *testing.T) {
	boundary := shell.NewBoundary(nil)
	r, err := NewRenderer(boundary, nil)
	require.NoError(t, err)
	_, err = r.tmpl.New("section-broken").Parse(`<section id="broken">{{.NoSuchField}}</section>`)
	require.NoError(t, err)

	c := testCatalog()
	c.Navigation = []models.NavigationItem{{ID: section.HeroID}, {ID: "broken"}, {ID: section.ContactID}}

	var buf bytes.Buffer
	require.NoError(t, r.Index(&buf, NewShell(c, "/", models.ThemeLight, scene.TierLow), testIndex(c)))
	doc := parse(t, buf.Bytes())

	assert.Equal(t, []string{section.HeroID, "broken", section.ContactID}, sectionOrder(doc))
	broken := ids(doc)["broken"]
	require.NotNil(t, broken)
	assert.Contains(t, attr(broken, "class"), "section-fallback")
	assert.EqualValues(t, 1, boundary.Failures())
}

func TestUnknownNavigationItemIsSkipped(t *testing.T) {
	r, err := NewRenderer(nil, nil)
	require.NoError(t, err)
	c := testCatalog()
	c.Navigation = append(c.Navigation, models.NavigationItem{ID: "blog"})

	var buf bytes.Buffer
	require.NoError(t, r.Index(&buf, NewShell(c, "/", models.ThemeLight, scene.TierLow), testIndex(c)))
	assert.NotContains(t, sectionOrder(parse(t, buf.Bytes())), "blog")
	assert.False(t, r.HasSection("blog"))
}

func TestProjectAndNotFound(t *testing.T) {
	r, err := NewRenderer(nil, nil)
	require.NoError(t, err)
	c := testCatalog()

	var buf bytes.Buffer
	require.NoError(t, r.Project(&buf, NewShell(c, "/projects/orbit", models.ThemeLight, scene.TierLow), ProjectPage{
		Project:      &c.Projects[0],
		Testimonials: c.Testimonials,
	}))
	found := ids(parse(t, buf.Bytes()))
	assert.Contains(t, found, "project-orbit")
	assert.Contains(t, found, "testimonial-maria")
	assert.Contains(t, buf.String(), "<title>Orbit | Jane Doe</title>")

	buf.Reset()
	require.NoError(t, r.NotFound(&buf, NewShell(c, "/projects/nope", models.ThemeLight, scene.TierLow)))
	assert.Contains(t, ids(parse(t, buf.Bytes())), "not-found")
	assert.Contains(t, buf.String(), "/projects/nope")
}

func TestStars(t *testing.T) {
	stars := funcs["stars"].(func(int) string)
	assert.Equal(t, "★★★★☆", stars(4))
	assert.Equal(t, "★★★★★", stars(9))
	assert.Equal(t, "☆☆☆☆☆", stars(-1))
}
