package handlers

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"folio.dev/internal/analytics"
	"folio.dev/internal/config"
	"folio.dev/internal/middleware"
	"folio.dev/internal/models"
	"folio.dev/internal/scene"
	"folio.dev/internal/section"
	"folio.dev/internal/services"
	"folio.dev/internal/shell"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type env struct {
	handler http.Handler
	shell   *shell.Shell
	cache   *scene.GeometryCache
	static  string
}

func testCatalog() *models.Catalog {
	return &models.Catalog{
		Site:    models.Site{Title: "Jane Doe"},
		Profile: models.Profile{Name: "Jane Doe", Roles: []string{"Engineer"}},
		Navigation: []models.NavigationItem{
			{ID: section.HeroID, Label: "Home"},
			{ID: section.ProjectsID, Label: "Projects"},
			{ID: section.ContactID, Label: "Contact"},
		},
		Skills: []models.Skill{
			{Name: "Go", Percentage: 90, Category: "Backend"},
			{Name: "React", Percentage: 80, Category: "Frontend"},
			{Name: "Postgres", Percentage: 75, Category: "Backend"},
		},
		Projects: []models.Project{
			{ID: "orbit", Title: "Orbit", Category: "Graphics", Featured: true},
			{ID: "relay", Title: "Relay", Category: "Backend"},
		},
		Testimonials: []models.Testimonial{
			{ID: "maria", Author: "Maria", Rating: 5, ProjectID: "orbit", Verified: true},
			{ID: "tom", Author: "Tom", Rating: 4},
		},
	}
}

func newEnv(t *testing.T) *env {
	t.Helper()
	reg := prometheus.NewRegistry()
	content, err := services.NewStaticContentService(testCatalog(), nil)
	require.NoError(t, err)
	sh, err := shell.New(shell.Options{
		Registerer: reg,
		Analytics:  analytics.Options{Endpoint: "http://collector.invalid/events", Buffer: 4},
	})
	require.NoError(t, err)
	t.Cleanup(sh.Shutdown)

	static := t.TempDir()
	cfg := &config.Config{
		StaticPath: static,
		Scene:      config.SceneConfig{Tier: "high", MaxRestores: 3, RestoreWindow: time.Minute},
	}
	cache := scene.NewGeometryCache(nil)
	h, err := SetupRoutes(cfg, Deps{Content: content, Shell: sh, Geometry: cache, Metrics: reg})
	require.NoError(t, err)
	return &env{handler: h, shell: sh, cache: cache, static: static}
}

func (e *env) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func (e *env) get(t *testing.T, target string) *httptest.ResponseRecorder {
	return e.do(t, httptest.NewRequest(http.MethodGet, target, nil))
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v), rec.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	e := newEnv(t)
	rec := e.get(t, "/api/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]any](t, rec)
	assert.Equal(t, "ok", body["status"])
	assert.EqualValues(t, 2, body["projects"])
}

func TestProjectsAPI(t *testing.T) {
	e := newEnv(t)

	t.Run("list", func(t *testing.T) {
		got := decode[[]models.Project](t, e.get(t, "/api/projects"))
		assert.Len(t, got, 2)
	})

	t.Run("featured", func(t *testing.T) {
		got := decode[[]models.Project](t, e.get(t, "/api/projects?featured=true"))
		require.Len(t, got, 1)
		assert.Equal(t, "orbit", got[0].ID)
	})

	t.Run("category ignores case", func(t *testing.T) {
		got := decode[[]models.Project](t, e.get(t, "/api/projects?category=backend"))
		require.Len(t, got, 1)
		assert.Equal(t, "relay", got[0].ID)
	})

	t.Run("empty category is an empty list", func(t *testing.T) {
		rec := e.get(t, "/api/projects?category=nothing")
		assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
	})

	t.Run("bad featured", func(t *testing.T) {
		rec := e.get(t, "/api/projects?featured=maybe")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "INVALID_QUERY", decode[errorPayload](t, rec).Error.Code)
	})

	t.Run("by id", func(t *testing.T) {
		got := decode[models.Project](t, e.get(t, "/api/projects/orbit"))
		assert.Equal(t, "Orbit", got.Title)
	})

	t.Run("missing id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/projects/nope", nil)
		req.Header.Set(middleware.RequestIDHeader, "req-1")
		rec := e.do(t, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		body := decode[errorPayload](t, rec)
		assert.Equal(t, "req-1", body.RequestID)
		assert.Equal(t, "NOT_FOUND", body.Error.Code)
	})
}

func TestContentAPI(t *testing.T) {
	e := newEnv(t)

	groups := decode[[]models.SkillGroup](t, e.get(t, "/api/skills?grouped=true"))
	require.Len(t, groups, 2)
	assert.Equal(t, "Backend", groups[0].Category)
	assert.Len(t, groups[0].Skills, 2)

	assert.Len(t, decode[[]models.Skill](t, e.get(t, "/api/skills")), 3)
	assert.Len(t, decode[[]models.Skill](t, e.get(t, "/api/skills?category=frontend")), 1)

	assert.Len(t, decode[[]models.Testimonial](t, e.get(t, "/api/testimonials")), 2)
	assert.Len(t, decode[[]models.Testimonial](t, e.get(t, "/api/testimonials?verified=true")), 1)
	forOrbit := decode[[]models.Testimonial](t, e.get(t, "/api/testimonials?project=orbit"))
	require.Len(t, forOrbit, 1)
	assert.Equal(t, "maria", forOrbit[0].ID)

	nav := decode[[]models.NavigationItem](t, e.get(t, "/api/navigation"))
	assert.Equal(t, section.HeroID, nav[0].ID)
}

func TestTimelinesAPI(t *testing.T) {
	e := newEnv(t)

	rec := e.get(t, "/api/timelines/"+section.ContactID)
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Section  string `json:"section"`
		Observer struct {
			Threshold float64 `json:"threshold"`
			Once      bool    `json:"once"`
		} `json:"observer"`
		Plans []json.RawMessage `json:"plans"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, section.ContactID, body.Section)
	assert.True(t, body.Observer.Once)
	assert.Len(t, body.Plans, 1)

	assert.Equal(t, http.StatusNotFound, e.get(t, "/api/timelines/blog").Code)
}

func TestSceneConfigAPI(t *testing.T) {
	e := newEnv(t)

	d := decode[scene.Descriptor](t, e.get(t, "/api/scene/config"))
	assert.Equal(t, scene.TierHigh, d.Renderer.Tier)

	d = decode[scene.Descriptor](t, e.get(t, "/api/scene/config?tier=low&fov=500&effects=bloom,sparkles,bloom"))
	assert.Equal(t, scene.TierLow.Settings(), d.Renderer)
	assert.Equal(t, scene.MaxFOV, d.Config.Camera.FOV)
	assert.Equal(t, []scene.Effect{scene.EffectBloom}, d.Config.Effects)

	assert.Equal(t, http.StatusBadRequest, e.get(t, "/api/scene/config?fov=wide").Code)
}

func TestSceneGeometryAPI(t *testing.T) {
	e := newEnv(t)

	rec := e.get(t, "/api/scene/geometry/circuit?size=4")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Cache-Control"), "max-age")
	g := decode[scene.Geometry](t, rec)
	assert.Equal(t, scene.KindCircuit, g.Kind)
	assert.Equal(t, scene.Lines, g.Primitive)

	e.get(t, "/api/scene/geometry/circuit?size=4")
	assert.EqualValues(t, 1, e.cache.Builds(), "same parameters are built once")

	assert.Equal(t, http.StatusNotFound, e.get(t, "/api/scene/geometry/teapot").Code)
	assert.Equal(t, http.StatusBadRequest, e.get(t, "/api/scene/geometry/brain?seed=-1").Code)
}

func TestSceneGeometryAPIBoundsInput(t *testing.T) {
	e := newEnv(t)

	rec := e.get(t, "/api/scene/geometry/particles?size=10&radius=1e300")
	require.Equal(t, http.StatusOK, rec.Code)
	g := decode[scene.Geometry](t, rec)
	assert.LessOrEqual(t, g.Radius(), scene.MaxRadius+1e-3)

	for seed := 0; seed < 3*scene.DefaultCacheCapacity; seed++ {
		rec := e.get(t, fmt.Sprintf("/api/scene/geometry/particles?size=10&seed=%d", seed))
		require.Equal(t, http.StatusOK, rec.Code)
	}
	assert.LessOrEqual(t, e.cache.Len(), scene.DefaultCacheCapacity+len(scene.Kinds()))
}

func TestRespondJSONEncodeFailure(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/x", nil)
	req = req.WithContext(middleware.WithRequestID(req.Context(), "req-1"))
	rec := httptest.NewRecorder()

	respondJSON(rec, req, http.StatusOK, map[string]float64{"x": math.Inf(1)})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decode[errorPayload](t, rec)
	assert.Equal(t, "req-1", body.RequestID)
	assert.Equal(t, "INTERNAL_ERROR", body.Error.Code)
}

func TestContextLostIsBoundedPerSession(t *testing.T) {
	e := newEnv(t)

	post := func(cookie *http.Cookie) (contextLostResponse, *httptest.ResponseRecorder) {
		req := httptest.NewRequest(http.MethodPost, "/api/scene/context-lost", nil)
		if cookie != nil {
			req.AddCookie(cookie)
		}
		rec := e.do(t, req)
		require.Equal(t, http.StatusOK, rec.Code)
		var body contextLostResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		return body, rec
	}

	first, rec := post(nil)
	assert.Equal(t, "restore", first.Action)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	session := cookies[0]
	assert.Equal(t, SessionCookie, session.Name)

	for i := 0; i < 2; i++ {
		res, _ := post(session)
		assert.Equal(t, "restore", res.Action)
	}
	res, _ := post(session)
	assert.Equal(t, "notice", res.Action)
	assert.Equal(t, 4, res.Losses)

	other, _ := post(nil)
	assert.Equal(t, "restore", other.Action, "sessions are independent")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(session)
	require.Equal(t, http.StatusOK, e.do(t, req).Code)
	res, _ = post(session)
	assert.Equal(t, "restore", res.Action, "a reload clears the notice")
	assert.Equal(t, 1, res.Losses)
}

func TestGuardRegistryEvictsIdleSessions(t *testing.T) {
	g := newGuardRegistry(3, time.Second)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	g.get("a", now)
	g.get("b", now.Add(5*time.Second))
	assert.Equal(t, 2, g.size())
	g.get("b", now.Add(11*time.Second))
	assert.Equal(t, 1, g.size())
}

func TestAnalyticsEvents(t *testing.T) {
	e := newEnv(t)
	post := func(body string) *httptest.ResponseRecorder {
		return e.do(t, httptest.NewRequest(http.MethodPost, "/api/analytics/events", strings.NewReader(body)))
	}

	rec := post(`{"name":"cta_click","category":"hero"}`)
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, eventsResponse{Accepted: 1}, decode[eventsResponse](t, rec))

	// Buffer is 4 and nothing drains it.
	rec = post(`[{"name":"a"},{"name":"b"},{"name":"c"},{"name":"d"}]`)
	assert.Equal(t, eventsResponse{Accepted: 3, Dropped: 1}, decode[eventsResponse](t, rec))

	assert.Equal(t, http.StatusBadRequest, post(`{"category":"x"}`).Code)
	assert.Equal(t, http.StatusBadRequest, post(`not json`).Code)
	assert.Equal(t, http.StatusRequestEntityTooLarge, post(`[`+strings.Repeat(`{"name":"x"},`, maxBatch)+`{"name":"x"}]`).Code)
	assert.Equal(t, http.StatusRequestEntityTooLarge, post(`{"name":"`+strings.Repeat("x", maxTelemetryBody)+`"}`).Code)
}

func TestPerfReport(t *testing.T) {
	e := newEnv(t)
	rec := e.do(t, httptest.NewRequest(http.MethodPost, "/api/perf", strings.NewReader(`{"lcp":1234,"fps":58}`)))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	latest := e.shell.Perf.Latest()
	assert.Equal(t, 1234.0, latest.LCP)
	assert.Equal(t, 58.0, latest.FPS)
	assert.False(t, latest.SampledAt.IsZero())

	rec = e.do(t, httptest.NewRequest(http.MethodPost, "/api/perf", strings.NewReader(`[]`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestIndexPage(t *testing.T) {
	e := newEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: ThemeCookie, Value: "dark"})
	rec := e.do(t, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	assert.Contains(t, body, `data-theme="dark"`)
	hero := strings.Index(body, `id="hero"`)
	projects := strings.Index(body, `id="projects"`)
	contact := strings.Index(body, `id="contact"`)
	assert.True(t, hero >= 0 && hero < projects && projects < contact, "sections follow navigation order")
	assert.NotContains(t, body, `id="about"`, "sections not in navigation are not rendered")

	rec = e.get(t, "/?category=graphics")
	assert.Contains(t, rec.Body.String(), section.ProjectCardTarget("orbit"))
	assert.NotContains(t, rec.Body.String(), section.ProjectCardTarget("relay"))
}

func TestProjectPage(t *testing.T) {
	e := newEnv(t)

	rec := e.get(t, "/projects/orbit")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `id="project-orbit"`)
	assert.Contains(t, rec.Body.String(), `id="testimonial-maria"`)

	rec = e.get(t, "/projects/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `id="not-found"`)
}

func TestNotFound(t *testing.T) {
	e := newEnv(t)

	rec := e.get(t, "/api/nothing")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", decode[errorPayload](t, rec).Error.Code)

	rec = e.get(t, "/nothing")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `id="not-found"`)

	rec = e.do(t, httptest.NewRequest(http.MethodDelete, "/api/projects", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestSetTheme(t *testing.T) {
	e := newEnv(t)

	form := url.Values{"theme": {"light"}}
	req := httptest.NewRequest(http.MethodPost, "/theme", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Referer", "http://example.com/projects/orbit")
	req.Host = "example.com"
	rec := e.do(t, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/projects/orbit", rec.Header().Get("Location"))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, ThemeCookie, cookies[0].Name)
	assert.Equal(t, "light", cookies[0].Value)

	form = url.Values{"theme": {"neon"}}
	req = httptest.NewRequest(http.MethodPost, "/theme", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Referer", "https://elsewhere.test/phish")
	rec = e.do(t, req)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	assert.Equal(t, "system", rec.Result().Cookies()[0].Value)
}

func TestMetricsAndStatic(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, os.WriteFile(filepath.Join(e.static, "app.js"), []byte("console.log(1)"), 0o644))

	rec := e.get(t, "/static/app.js")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "console.log(1)", rec.Body.String())

	e.get(t, "/api/projects/orbit")
	rec = e.get(t, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `http_requests_total{method="GET",path="/api/projects/{id}",status="200"} 1`)
	assert.Contains(t, rec.Body.String(), "folio_heap_alloc_bytes")
}
