package services

import (
	"errors"
	"fmt"
	"strings"

	"folio.dev/internal/models"
)

// ErrProjectNotFound is returned when no project has the requested id.
var ErrProjectNotFound = errors.New("project not found")

// ProjectService handles project-related operations
type ProjectService struct {
	content *ContentService
}

// NewProjectService creates a new ProjectService
func NewProjectService(content *ContentService) *ProjectService {
	return &ProjectService{content: content}
}

// GetAll returns all projects in catalog order
func (s *ProjectService) GetAll() []models.Project {
	return s.content.Catalog().Projects
}

// GetByID returns a specific project by ID
func (s *ProjectService) GetByID(id string) (*models.Project, error) {
	projects := s.content.Catalog().Projects
	for i := range projects {
		if projects[i].ID == id {
			p := projects[i]
			return &p, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrProjectNotFound, id)
}

// Featured returns the featured projects in catalog order
func (s *ProjectService) Featured() []models.Project {
	var out []models.Project
	for _, p := range s.GetAll() {
		if p.Featured {
			out = append(out, p)
		}
	}
	return out
}

// ByCategory returns projects whose category matches, ignoring case.
// An empty category returns everything.
func (s *ProjectService) ByCategory(category string) []models.Project {
	if category == "" {
		return s.GetAll()
	}
	var out []models.Project
	for _, p := range s.GetAll() {
		if strings.EqualFold(p.Category, category) {
			out = append(out, p)
		}
	}
	return out
}

// Categories lists distinct categories in order of first appearance
func (s *ProjectService) Categories() []string {
	seen := make(map[string]bool)
	var out []string
	for _, p := range s.GetAll() {
		if p.Category == "" || seen[p.Category] {
			continue
		}
		seen[p.Category] = true
		out = append(out, p.Category)
	}
	return out
}
