package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"folio.dev/internal/scene"
)

// SessionCookie identifies one browser session for the context-loss guard.
const SessionCookie = "folio-session"

// SceneHandler serves renderer settings and procedural geometry, and
// decides how clients react to a lost graphics context.
type SceneHandler struct {
	geometry *scene.GeometryCache
	guards   *guardRegistry
	tier     scene.Tier
	now      func() time.Time
}

// NewSceneHandler creates a new SceneHandler. tier is used when a request
// names none; maxRestores and window bound each session's context guard.
func NewSceneHandler(cache *scene.GeometryCache, tier scene.Tier, maxRestores int, window time.Duration) *SceneHandler {
	return &SceneHandler{
		geometry: cache,
		guards:   newGuardRegistry(maxRestores, window),
		tier:     tier,
		now:      time.Now,
	}
}

// Config handles GET /api/scene/config. Optional: tier, fov and a comma
// separated effects list. Out-of-range values are normalized, not rejected.
func (h *SceneHandler) Config(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	c := scene.DefaultConfig()
	c.Tier = h.tier
	if t := q.Get("tier"); t != "" {
		c.Tier = scene.ParseTier(t)
	}
	if v := q.Get("fov"); v != "" {
		fov, err := strconv.ParseFloat(v, 64)
		if err != nil {
			respondError(w, r, http.StatusBadRequest, "INVALID_QUERY", "fov must be a number")
			return
		}
		c.Camera.FOV = fov
	}
	if v := q.Get("effects"); v != "" {
		for _, e := range strings.Split(v, ",") {
			c.Effects = append(c.Effects, scene.Effect(strings.TrimSpace(e)))
		}
	}
	respondJSON(w, r, http.StatusOK, scene.Describe(c))
}

// Geometry handles GET /api/scene/geometry/{kind}. Optional: seed, size and
// radius.
func (h *SceneHandler) Geometry(w http.ResponseWriter, r *http.Request) {
	kind, err := scene.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		respondError(w, r, http.StatusNotFound, "NOT_FOUND", "unknown geometry kind")
		return
	}
	p := scene.DefaultParams(kind)
	q := r.URL.Query()
	if v := q.Get("seed"); v != "" {
		if p.Seed, err = strconv.ParseUint(v, 10, 64); err != nil {
			respondError(w, r, http.StatusBadRequest, "INVALID_QUERY", "seed must be an unsigned integer")
			return
		}
	}
	if v := q.Get("size"); v != "" {
		if p.Size, err = strconv.Atoi(v); err != nil {
			respondError(w, r, http.StatusBadRequest, "INVALID_QUERY", "size must be an integer")
			return
		}
	}
	if v := q.Get("radius"); v != "" {
		if p.Radius, err = strconv.ParseFloat(v, 64); err != nil {
			respondError(w, r, http.StatusBadRequest, "INVALID_QUERY", "radius must be a number")
			return
		}
	}

	g, err := h.geometry.Get(p)
	if errors.Is(err, scene.ErrUnknownKind) {
		respondError(w, r, http.StatusNotFound, "NOT_FOUND", "unknown geometry kind")
		return
	}
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		return
	}
	// Geometry is a pure function of its parameters.
	w.Header().Set("Cache-Control", "public, max-age=86400")
	respondJSON(w, r, http.StatusOK, g)
}

type contextLostResponse struct {
	Action string `json:"action"`
	Losses int    `json:"losses"`
}

// ContextLost handles POST /api/scene/context-lost. The answer is either
// restore or notice; once a session reaches notice it stays there until the
// page is reloaded.
func (h *SceneHandler) ContextLost(w http.ResponseWriter, r *http.Request) {
	now := h.now()
	g := h.guards.get(sessionID(w, r), now)
	a := g.Lost(now)
	respondJSON(w, r, http.StatusOK, contextLostResponse{Action: a.String(), Losses: g.Losses()})
}

// sessionID returns the session cookie, issuing one when missing.
func sessionID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(SessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

// guardRegistry keeps one context guard per session. Guards untouched for
// longer than idle are dropped on the next access.
type guardRegistry struct {
	mu     sync.Mutex
	max    int
	window time.Duration
	idle   time.Duration
	guards map[string]*guardEntry
}

type guardEntry struct {
	guard *scene.ContextGuard
	seen  time.Time
}

func newGuardRegistry(max int, window time.Duration) *guardRegistry {
	if window <= 0 {
		window = scene.DefaultRestoreWindow
	}
	return &guardRegistry{
		max:    max,
		window: window,
		idle:   10 * window,
		guards: make(map[string]*guardEntry),
	}
}

func (g *guardRegistry) get(id string, now time.Time) *scene.ContextGuard {
	g.mu.Lock()
	defer g.mu.Unlock()
	for k, e := range g.guards {
		if now.Sub(e.seen) > g.idle {
			delete(g.guards, k)
		}
	}
	e, ok := g.guards[id]
	if !ok {
		e = &guardEntry{guard: scene.NewContextGuard(g.max, g.window)}
		g.guards[id] = e
	}
	e.seen = now
	return e.guard
}

// reset clears a session's guard, as a page reload does.
func (g *guardRegistry) reset(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if e, ok := g.guards[id]; ok {
		e.guard.Reset()
	}
}

func (g *guardRegistry) size() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.guards)
}
