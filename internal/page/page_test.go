package page

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"folio.dev/internal/animation"
	"folio.dev/internal/frameloop"
	"folio.dev/internal/models"
	"folio.dev/internal/scene"
	"folio.dev/internal/scroll"
	"folio.dev/internal/section"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var t0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

type fixture struct {
	loop  *frameloop.Loop
	stage *animation.Stage
	orch  *scroll.Orchestrator
	hero  *scene.Surface
	page  *Page
	now   time.Time
}

func newFixture(t *testing.T, caps scene.Capabilities) *fixture {
	t.Helper()
	f := &fixture{
		loop:  frameloop.New(0),
		stage: animation.NewStage(),
		orch:  scroll.NewOrchestrator(),
		now:   t0,
	}
	content := section.Content{
		Profile:      models.Profile{Roles: []string{"Engineer", "Designer"}, Stats: []models.Stat{{Label: "Years", Value: 8}}},
		SkillGroups:  []models.SkillGroup{{Category: "Backend", Skills: []models.Skill{{Name: "Go", Percentage: 90}}}},
		Projects:     []models.Project{{ID: "orbit"}, {ID: "lumen"}},
		Testimonials: []models.Testimonial{{ID: "maria"}},
	}
	defs := section.Definitions(content)
	var ids []string
	for _, d := range defs {
		ids = append(ids, d.ID)
	}
	f.hero = scene.NewSurface(f.loop, f.stage, scene.SurfaceOptions{Element: "hero-canvas", Geometry: scene.Brain(1, 1)})
	f.page = New(Options{
		Loop:         f.loop,
		Stage:        f.stage,
		Scroll:       f.orch,
		Definitions:  defs,
		Layout:       Stack(ids, 1000, 1000),
		Scenes:       []Scene{{Section: section.HeroID, Surface: f.hero}},
		Capabilities: caps,
	})
	return f
}

func (f *fixture) frames(n int) {
	for i := 0; i < n; i++ {
		f.now = f.now.Add(16 * time.Millisecond)
		f.loop.Step(f.now)
	}
}

func (f *fixture) state(t *testing.T, id string) section.State {
	t.Helper()
	s, ok := f.page.Section(id)
	require.True(t, ok, id)
	return s.State()
}

func TestScrollDrivesSectionLifecycles(t *testing.T) {
	f := newFixture(t, scene.Capabilities{WebGL: true})
	require.NoError(t, f.page.Mount())

	require.NoError(t, f.page.Scroll(0))
	f.frames(10)
	assert.Equal(t, section.Active, f.state(t, section.HeroID))
	assert.Equal(t, section.MountedInactive, f.state(t, section.AboutID))
	assert.Equal(t, scene.SurfaceRunning, f.hero.State())
	assert.Equal(t, section.HeroID, f.page.Active())

	require.NoError(t, f.page.Scroll(3000))
	f.frames(10)
	assert.Equal(t, section.Paused, f.state(t, section.HeroID))
	assert.Equal(t, scene.SurfaceIdle, f.hero.State())
	assert.Equal(t, section.Active, f.state(t, section.ProjectsID))
	assert.Equal(t, section.ProjectsID, f.page.Active())
	assert.InDelta(t, 1, f.page.Assembly(), 1e-9)

	require.NoError(t, f.page.Scroll(0))
	require.NoError(t, f.page.Scroll(3000))
	projects, _ := f.page.Section(section.ProjectsID)
	assert.Equal(t, 2, projects.Activations(), "projects replay on every entry")
	assert.Equal(t, 1, f.stage.Writers(section.ProjectCardTarget("orbit")))

	hero, _ := f.page.Section(section.HeroID)
	assert.Equal(t, 1, hero.Activations(), "hero plays once")

	f.page.Unmount()
}

func TestUnmountReleasesEverything(t *testing.T) {
	f := newFixture(t, scene.Capabilities{WebGL: true})
	require.NoError(t, f.page.Mount())

	for offset := 0.0; offset <= 5000; offset += 250 {
		require.NoError(t, f.page.Scroll(offset))
		f.frames(3)
	}
	require.NoError(t, f.page.Scroll(0))
	f.frames(3)
	require.Greater(t, f.loop.Active(), 0)

	f.page.Unmount()
	f.page.Unmount()

	assert.Equal(t, 0, f.loop.Active())
	assert.Equal(t, 0, f.stage.Claims())
	assert.Empty(t, f.stage.Elements())
	assert.Equal(t, 0, f.orch.Consumers())
	assert.Equal(t, scene.SurfaceClosed, f.hero.State())
	assert.Empty(t, f.page.Sections())
}

func TestSceneFallsBackWithoutWebGL(t *testing.T) {
	f := newFixture(t, scene.Capabilities{WebGL: false})
	require.NoError(t, f.page.Mount())
	require.NoError(t, f.page.Scroll(0))

	assert.Equal(t, scene.SurfaceFallback, f.hero.State())
	assert.Equal(t, section.Active, f.state(t, section.HeroID))
	f.page.Unmount()
	assert.Equal(t, 0, f.loop.Active())
}

func TestMountFailureTearsDown(t *testing.T) {
	loop := frameloop.New(0)
	stage := animation.NewStage()
	orch := scroll.NewOrchestrator()
	p := New(Options{
		Loop:        loop,
		Stage:       stage,
		Scroll:      orch,
		Definitions: []section.Definition{section.Contact(), section.About(models.Profile{})},
		Layout:      Stack([]string{section.ContactID}, 800, 800),
	})

	assert.ErrorContains(t, p.Mount(), `section "about" has no placement`)
	assert.Empty(t, p.Sections())
	assert.Equal(t, 0, orch.Consumers())
	assert.Error(t, p.Scroll(0))
}

func TestLayout(t *testing.T) {
	l := Stack([]string{"a", "b", "c"}, 500, 900)
	assert.Equal(t, 1500.0, l.DocumentHeight())
	assert.Equal(t, []scroll.Anchor{{ID: "a", Top: 0}, {ID: "b", Top: 500}, {ID: "c", Top: 1000}}, l.Anchors())
}
