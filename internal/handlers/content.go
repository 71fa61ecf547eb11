package handlers

import (
	"net/http"
	"strconv"

	"folio.dev/internal/services"
)

// ContentHandler serves the rest of the catalog.
type ContentHandler struct {
	content      *services.ContentService
	skills       *services.SkillService
	testimonials *services.TestimonialService
}

// NewContentHandler creates a new ContentHandler
func NewContentHandler(content *services.ContentService, ss *services.SkillService, ts *services.TestimonialService) *ContentHandler {
	return &ContentHandler{content: content, skills: ss, testimonials: ts}
}

// ListSkills handles GET /api/skills. grouped=true returns category groups,
// category=<name> a single category.
func (h *ContentHandler) ListSkills(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if c := q.Get("category"); c != "" {
		respondJSON(w, r, http.StatusOK, orEmpty(h.skills.ByCategory(c)))
		return
	}
	grouped, _ := strconv.ParseBool(q.Get("grouped"))
	if grouped {
		respondJSON(w, r, http.StatusOK, orEmpty(h.skills.Groups()))
		return
	}
	respondJSON(w, r, http.StatusOK, orEmpty(h.skills.GetAll()))
}

// ListTestimonials handles GET /api/testimonials. Optional filters:
// verified=true and project=<id>.
func (h *ContentHandler) ListTestimonials(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	list := h.testimonials.GetAll()
	if id := q.Get("project"); id != "" {
		list = h.testimonials.ForProject(id)
	}
	if verified, _ := strconv.ParseBool(q.Get("verified")); verified {
		filtered := list[:0:0]
		for _, t := range list {
			if t.Verified {
				filtered = append(filtered, t)
			}
		}
		list = filtered
	}
	respondJSON(w, r, http.StatusOK, orEmpty(list))
}

// Navigation handles GET /api/navigation
func (h *ContentHandler) Navigation(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, orEmpty(h.content.Catalog().Navigation))
}
