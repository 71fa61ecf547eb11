package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"folio.dev/internal/config"
	"folio.dev/internal/middleware"
	"folio.dev/internal/scene"
	"folio.dev/internal/services"
	"folio.dev/internal/shell"
	"folio.dev/internal/web"
)

// Deps are the long-lived components the routes are served from.
type Deps struct {
	Content  *services.ContentService
	Shell    *shell.Shell
	Geometry *scene.GeometryCache
	Metrics  *prometheus.Registry
	Logger   *zap.Logger
}

// SetupRoutes configures all routes and returns the router
func SetupRoutes(cfg *config.Config, d Deps) (http.Handler, error) {
	if d.Content == nil || d.Shell == nil {
		return nil, errors.New("setup routes: content and shell are required")
	}
	log := d.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if d.Metrics == nil {
		d.Metrics = prometheus.NewRegistry()
	}
	if d.Geometry == nil {
		d.Geometry = scene.NewGeometryCache(log)
	}

	metrics, err := middleware.NewPrometheusMiddleware(d.Metrics)
	if err != nil {
		return nil, err
	}
	renderer, err := web.NewRenderer(d.Shell.Boundary, log)
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(log))
	r.Use(middleware.Recovery(log))
	r.Use(metrics.Handler)

	// Initialize services
	projectService := services.NewProjectService(d.Content)
	skillService := services.NewSkillService(d.Content)
	testimonialService := services.NewTestimonialService(d.Content)

	// Initialize handlers
	tier := scene.ParseTier(cfg.Scene.Tier)
	sceneHandler := NewSceneHandler(d.Geometry, tier, cfg.Scene.MaxRestores, cfg.Scene.RestoreWindow)
	pageHandler := &PageHandler{
		content:      d.Content,
		projects:     projectService,
		skills:       skillService,
		testimonials: testimonialService,
		renderer:     renderer,
		reporter:     d.Shell.Reporter,
		guards:       sceneHandler.guards,
		tier:         tier,
		log:          log,
	}
	projectHandler := NewProjectHandler(projectService)
	contentHandler := NewContentHandler(d.Content, skillService, testimonialService)
	timelineHandler := NewTimelineHandler(d.Content, skillService)
	telemetryHandler := NewTelemetryHandler(d.Shell.Reporter, d.Shell.Perf)

	r.NotFound(pageHandler.NotFound)
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
	})

	// Pages
	r.Get("/", pageHandler.Index)
	r.Get("/projects/{id}", pageHandler.Project)
	r.Post("/theme", pageHandler.SetTheme)

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Get("/projects", projectHandler.ListProjects)
		r.Get("/projects/{id}", projectHandler.GetProject)
		r.Get("/skills", contentHandler.ListSkills)
		r.Get("/testimonials", contentHandler.ListTestimonials)
		r.Get("/navigation", contentHandler.Navigation)

		r.Get("/timelines/{section}", timelineHandler.GetTimeline)

		r.Get("/scene/config", sceneHandler.Config)
		r.Get("/scene/geometry/{kind}", sceneHandler.Geometry)
		r.Post("/scene/context-lost", sceneHandler.ContextLost)

		r.Post("/analytics/events", telemetryHandler.Events)
		r.Post("/perf", telemetryHandler.Perf)

		// Health check
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			respondJSON(w, r, http.StatusOK, map[string]any{
				"status":   "ok",
				"projects": len(d.Content.Catalog().Projects),
			})
		})
	})

	r.Handle("/metrics", promhttp.HandlerFor(d.Metrics, promhttp.HandlerOpts{}))

	// Static files
	fileServer := http.FileServer(http.Dir(cfg.StaticPath))
	r.Handle("/static/*", http.StripPrefix("/static", fileServer))

	return r, nil
}

// errorPayload is the body of every API error.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// respondJSON writes a JSON response. The body is encoded before the header
// goes out so an encoding failure still reaches the client as a 500.
func respondJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	body, err := json.Marshal(data)
	if err != nil {
		middleware.LoggerFrom(r.Context()).Error("Error encoding JSON", zap.Error(err))
		status = http.StatusInternalServerError
		body, _ = json.Marshal(errorPayload{
			RequestID: middleware.GetRequestID(r.Context()),
			Error:     errorEnvelope{Code: "INTERNAL_ERROR", Message: "internal server error"},
		})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(append(body, '\n')); err != nil {
		middleware.LoggerFrom(r.Context()).Debug("failed to write response", zap.Error(err))
	}
}

// respondError writes an error JSON response. message must be safe to show
// to clients.
func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	respondJSON(w, r, status, errorPayload{
		RequestID: middleware.GetRequestID(r.Context()),
		Error:     errorEnvelope{Code: code, Message: message},
	})
}

func isAPI(r *http.Request) bool {
	return r.URL.Path == "/api" || strings.HasPrefix(r.URL.Path, "/api/")
}

// orEmpty keeps empty lists encoding as [] rather than null.
func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
