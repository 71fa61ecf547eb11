package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"folio.dev/internal/animation"
	"folio.dev/internal/section"
	"folio.dev/internal/services"
)

// TimelineHandler exports each section's resolved timeline plans so the
// client player only has to interpolate.
type TimelineHandler struct {
	content *services.ContentService
	skills  *services.SkillService
}

// NewTimelineHandler creates a new TimelineHandler
func NewTimelineHandler(content *services.ContentService, ss *services.SkillService) *TimelineHandler {
	return &TimelineHandler{content: content, skills: ss}
}

type timelineResponse struct {
	Section  string                 `json:"section"`
	Title    string                 `json:"title"`
	Observer section.ObserverConfig `json:"observer"`
	Plans    []animation.Plan       `json:"plans"`
}

func (h *TimelineHandler) definitions() []section.Definition {
	c := h.content.Catalog()
	return section.Definitions(section.Content{
		Profile:      c.Profile,
		SkillGroups:  h.skills.Groups(),
		Projects:     c.Projects,
		Testimonials: c.Testimonials,
	})
}

// GetTimeline handles GET /api/timelines/{section}
func (h *TimelineHandler) GetTimeline(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "section")
	def, ok := section.Lookup(h.definitions(), id)
	if !ok {
		respondError(w, r, http.StatusNotFound, "NOT_FOUND", "section not found")
		return
	}
	respondJSON(w, r, http.StatusOK, timelineResponse{
		Section:  def.ID,
		Title:    def.Title,
		Observer: def.Observer,
		Plans:    orEmpty(def.Plans()),
	})
}
