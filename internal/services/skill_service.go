package services

import (
	"strings"

	"folio.dev/internal/models"
)

// SkillService groups the catalog's skills for display
type SkillService struct {
	content *ContentService
}

// NewSkillService creates a new SkillService
func NewSkillService(content *ContentService) *SkillService {
	return &SkillService{content: content}
}

// GetAll returns all skills in catalog order
func (s *SkillService) GetAll() []models.Skill {
	return s.content.Catalog().Skills
}

// Groups returns skills grouped by category. Groups appear in order of
// their first skill; skills keep catalog order within a group.
func (s *SkillService) Groups() []models.SkillGroup {
	var groups []models.SkillGroup
	index := make(map[string]int)
	for _, sk := range s.GetAll() {
		i, ok := index[sk.Category]
		if !ok {
			i = len(groups)
			index[sk.Category] = i
			groups = append(groups, models.SkillGroup{Category: sk.Category})
		}
		groups[i].Skills = append(groups[i].Skills, sk)
	}
	return groups
}

// ByCategory returns the skills of one category, ignoring case
func (s *SkillService) ByCategory(category string) []models.Skill {
	var out []models.Skill
	for _, sk := range s.GetAll() {
		if strings.EqualFold(sk.Category, category) {
			out = append(out, sk)
		}
	}
	return out
}
