package dto

import (
	"time"

	"github.com/edumon/forms-api/internal/models"
)

// CreateTemplateRequest describes payload for creating a template shell.
type CreateTemplateRequest struct {
	Name           string                   `json:"name" validate:"required,min=2,max=200"`
	Description    string                   `json:"description" validate:"max=2000"`
	Category       models.TemplateCategory  `json:"category" validate:"required"`
	Settings       *models.TemplateSettings `json:"settings"`
	TargetRoles    []string                 `json:"targetRoles"`
	TargetGrades   []string                 `json:"targetGrades"`
	TargetSubjects []string                 `json:"targetSubjects"`
}

// UpdateTemplateRequest patches template-level attributes; structural edits
// go through the builder endpoints instead.
type UpdateTemplateRequest struct {
	Name           *string                  `json:"name" validate:"omitempty,min=2,max=200"`
	Description    *string                  `json:"description" validate:"omitempty,max=2000"`
	Category       *models.TemplateCategory `json:"category"`
	Settings       *models.TemplateSettings `json:"settings"`
	TargetRoles    []string                 `json:"targetRoles"`
	TargetGrades   []string                 `json:"targetGrades"`
	TargetSubjects []string                 `json:"targetSubjects"`
}

// TemplateFilter narrows template listings.
type TemplateFilter struct {
	Status   models.TemplateStatus   `form:"status"`
	Category models.TemplateCategory `form:"category"`
	Subject  string                  `form:"subject"`
	Grade    string                  `form:"grade"`
	Page     int                     `form:"page"`
	PerPage  int                     `form:"per_page"`
}

// TemplateSummary is the listing projection of a template.
type TemplateSummary struct {
	ID           string                  `json:"id"`
	Name         string                  `json:"name"`
	Category     models.TemplateCategory `json:"category"`
	Status       models.TemplateStatus   `json:"status"`
	SectionCount int                     `json:"sectionCount"`
	FieldCount   int                     `json:"fieldCount"`
	Version      int                     `json:"version"`
	UpdatedAt    *time.Time              `json:"updatedAt,omitempty"`
	CreatedAt    time.Time               `json:"createdAt"`
}

// NewTemplateSummary projects a template onto its listing shape.
func NewTemplateSummary(tpl *models.FormTemplate) TemplateSummary {
	fieldCount := 0
	for _, section := range tpl.Sections {
		fieldCount += len(section.Fields)
	}
	return TemplateSummary{
		ID:           tpl.ID,
		Name:         tpl.Name,
		Category:     tpl.Category,
		Status:       tpl.Status,
		SectionCount: len(tpl.Sections),
		FieldCount:   fieldCount,
		Version:      tpl.Metadata.Version,
		UpdatedAt:    tpl.Metadata.UpdatedAt,
		CreatedAt:    tpl.Metadata.CreatedAt,
	}
}
