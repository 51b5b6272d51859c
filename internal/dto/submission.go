package dto

import (
	"github.com/edumon/forms-api/internal/engine"
	"github.com/edumon/forms-api/internal/models"
)

// SubmitFormRequest carries the raw value snapshot keyed by field name.
type SubmitFormRequest struct {
	Values map[string]interface{} `json:"values" validate:"required"`
}

// SubmissionOutcome is returned for every submit attempt. Field-level
// validation failures are data, not errors: FieldErrors is populated and
// Submission stays nil when any visible field fails.
type SubmissionOutcome struct {
	Submission  *models.FormSubmission             `json:"submission,omitempty"`
	Valid       bool                               `json:"valid"`
	FieldErrors map[string]engine.ValidationResult `json:"fieldErrors,omitempty"`
}

// RenderPreviewRequest carries an in-progress value snapshot for preview
// rendering; visibility rules are applied but nothing is stored.
type RenderPreviewRequest struct {
	Values map[string]interface{} `json:"values"`
}

// ReviewSubmissionRequest approves or rejects a pending submission.
type ReviewSubmissionRequest struct {
	Note string `json:"note" validate:"max=2000"`
}

// SubmissionFilter narrows submission listings.
type SubmissionFilter struct {
	Status  models.SubmissionStatus `form:"status"`
	Page    int                     `form:"page"`
	PerPage int                     `form:"per_page"`
}
