package handlers

import (
	"bytes"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"folio.dev/internal/analytics"
	"folio.dev/internal/models"
	"folio.dev/internal/scene"
	"folio.dev/internal/services"
	"folio.dev/internal/web"
)

// ThemeCookie is the fixed key the theme preference is stored under.
const ThemeCookie = "folio-theme"

// PageHandler serves the HTML pages.
type PageHandler struct {
	content      *services.ContentService
	projects     *services.ProjectService
	skills       *services.SkillService
	testimonials *services.TestimonialService
	renderer     *web.Renderer
	reporter     *analytics.Reporter
	guards       *guardRegistry
	tier         scene.Tier
	log          *zap.Logger
}

func (h *PageHandler) shell(r *http.Request) web.Shell {
	theme := models.ThemeSystem
	if c, err := r.Cookie(ThemeCookie); err == nil {
		theme = models.ParseTheme(c.Value)
	}
	return web.NewShell(h.content.Catalog(), r.URL.Path, theme, h.tier)
}

// Index handles GET /. Loading the page resets the session's graphics
// context guard.
func (h *PageHandler) Index(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(SessionCookie); err == nil {
		h.guards.reset(c.Value)
	}
	category := r.URL.Query().Get("category")
	data := web.Index{
		Profile:      h.content.Catalog().Profile,
		SkillGroups:  h.skills.Groups(),
		Projects:     h.projects.ByCategory(category),
		Categories:   h.projects.Categories(),
		Category:     category,
		Testimonials: h.testimonials.GetAll(),
	}

	var buf bytes.Buffer
	if err := h.renderer.Index(&buf, h.shell(r), data); err != nil {
		h.fail(w, r, err)
		return
	}
	h.reporter.PageView(r.URL.Path)
	writeHTML(w, http.StatusOK, &buf)
}

// Project handles GET /projects/{id}
func (h *PageHandler) Project(w http.ResponseWriter, r *http.Request) {
	project, err := h.projects.GetByID(chi.URLParam(r, "id"))
	if errors.Is(err, services.ErrProjectNotFound) {
		h.NotFound(w, r)
		return
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}

	var buf bytes.Buffer
	err = h.renderer.Project(&buf, h.shell(r), web.ProjectPage{
		Project:      project,
		Testimonials: h.testimonials.ForProject(project.ID),
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.reporter.PageView(r.URL.Path)
	writeHTML(w, http.StatusOK, &buf)
}

// NotFound answers unknown API paths with a JSON error and everything else
// with the 404 page.
func (h *PageHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	if isAPI(r) {
		respondError(w, r, http.StatusNotFound, "NOT_FOUND", "resource not found")
		return
	}
	var buf bytes.Buffer
	if err := h.renderer.NotFound(&buf, h.shell(r)); err != nil {
		h.fail(w, r, err)
		return
	}
	writeHTML(w, http.StatusNotFound, &buf)
}

// SetTheme handles POST /theme. The preference is persisted in a cookie and
// the visitor is sent back where they came from.
func (h *PageHandler) SetTheme(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respondError(w, r, http.StatusBadRequest, "BAD_REQUEST", "bad request")
		return
	}
	theme := models.ParseTheme(r.PostForm.Get("theme"))
	http.SetCookie(w, &http.Cookie{
		Name:     ThemeCookie,
		Value:    string(theme),
		Path:     "/",
		MaxAge:   int((365 * 24 * time.Hour).Seconds()),
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, backTo(r), http.StatusSeeOther)
}

// backTo returns the same-site path of the referring page, or /.
func backTo(r *http.Request) string {
	ref, err := url.Parse(r.Referer())
	if err != nil || !strings.HasPrefix(ref.Path, "/") || (ref.Host != "" && ref.Host != r.Host) {
		return "/"
	}
	if ref.RawQuery != "" {
		return ref.Path + "?" + ref.RawQuery
	}
	return ref.Path
}

func (h *PageHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	h.log.Error("page render failed", zap.String("path", r.URL.Path), zap.Error(err))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func writeHTML(w http.ResponseWriter, status int, buf *bytes.Buffer) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
