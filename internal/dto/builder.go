package dto

import "github.com/edumon/forms-api/internal/models"

// AddSectionRequest creates a section inside a template.
type AddSectionRequest struct {
	ID          string `json:"id"`
	Title       string `json:"title" validate:"required,max=300"`
	Description string `json:"description" validate:"max=2000"`
	Order       *int   `json:"order"`
}

// UpdateSectionRequest patches a section.
type UpdateSectionRequest struct {
	Title       *string `json:"title" validate:"omitempty,max=300"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	Order       *int    `json:"order"`
}

// AddFieldRequest creates a field inside a section.
type AddFieldRequest struct {
	SectionID    string                  `json:"sectionId" validate:"required"`
	ID           string                  `json:"id"`
	Type         models.FieldType        `json:"type" validate:"required"`
	Name         string                  `json:"name"`
	Label        string                  `json:"label" validate:"required"`
	LabelIsKey   bool                    `json:"labelIsKey"`
	Description  string                  `json:"description"`
	Placeholder  string                  `json:"placeholder"`
	DefaultValue interface{}             `json:"defaultValue"`
	Options      []models.FieldOption    `json:"options"`
	Validation   *models.FieldValidation `json:"validation"`
	Conditional  *models.ConditionalRule `json:"conditional"`
	Grid         *models.GridLayout      `json:"grid"`
	Order        *int                    `json:"order"`
}

// UpdateFieldRequest patches a field; nil members stay untouched.
type UpdateFieldRequest struct {
	Type             *models.FieldType       `json:"type"`
	Name             *string                 `json:"name"`
	Label            *string                 `json:"label"`
	LabelIsKey       bool                    `json:"labelIsKey"`
	DeriveName       bool                    `json:"deriveName"`
	Description      *string                 `json:"description"`
	Placeholder      *string                 `json:"placeholder"`
	DefaultValue     interface{}             `json:"defaultValue"`
	HasDefault       bool                    `json:"hasDefault"`
	Options          *[]models.FieldOption   `json:"options"`
	Validation       *models.FieldValidation `json:"validation"`
	Conditional      *models.ConditionalRule `json:"conditional"`
	ClearConditional bool                    `json:"clearConditional"`
	Grid             *models.GridLayout      `json:"grid"`
	Order            *int                    `json:"order"`
}

// AddOptionRequest appends an option to an option-bearing field.
type AddOptionRequest struct {
	Label      string `json:"label" validate:"required"`
	LabelIsKey bool   `json:"labelIsKey"`
	Value      string `json:"value"`
}

// ReorderFieldRequest moves a field to a new position within its section.
type ReorderFieldRequest struct {
	NewIndex int `json:"newIndex" validate:"min=0"`
}
