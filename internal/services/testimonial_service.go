package services

import "folio.dev/internal/models"

// TestimonialService serves testimonials
type TestimonialService struct {
	content *ContentService
}

// NewTestimonialService creates a new TestimonialService
func NewTestimonialService(content *ContentService) *TestimonialService {
	return &TestimonialService{content: content}
}

// GetAll returns all testimonials in catalog order
func (s *TestimonialService) GetAll() []models.Testimonial {
	return s.content.Catalog().Testimonials
}

// Verified returns only verified testimonials
func (s *TestimonialService) Verified() []models.Testimonial {
	var out []models.Testimonial
	for _, t := range s.GetAll() {
		if t.Verified {
			out = append(out, t)
		}
	}
	return out
}

// ForProject returns the testimonials that reference projectID
func (s *TestimonialService) ForProject(projectID string) []models.Testimonial {
	var out []models.Testimonial
	for _, t := range s.GetAll() {
		if t.ProjectID != "" && t.ProjectID == projectID {
			out = append(out, t)
		}
	}
	return out
}
