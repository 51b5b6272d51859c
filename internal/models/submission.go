package models

import (
	"encoding/json"
	"time"
)

// SubmissionStatus tracks a submission through the approval workflow.
type SubmissionStatus string

const (
	SubmissionPending  SubmissionStatus = "pending"
	SubmissionApproved SubmissionStatus = "approved"
	SubmissionRejected SubmissionStatus = "rejected"
)

// FormSubmission is a recorded answer set for a template. Payload is the
// flat name→value mapping covering only fields visible at submit time.
type FormSubmission struct {
	ID          string           `db:"id" json:"id"`
	FormID      string           `db:"form_id" json:"formId"`
	Status      SubmissionStatus `db:"status" json:"status"`
	Payload     json.RawMessage  `db:"payload" json:"payload"`
	SubmittedBy *string          `db:"submitted_by" json:"submittedBy,omitempty"`
	ReviewedBy  *string          `db:"reviewed_by" json:"reviewedBy,omitempty"`
	ReviewNote  *string          `db:"review_note" json:"reviewNote,omitempty"`
	CreatedAt   time.Time        `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time        `db:"updated_at" json:"updatedAt"`
}

// Values decodes the payload into a name→value map.
func (s *FormSubmission) Values() (map[string]interface{}, error) {
	values := map[string]interface{}{}
	if len(s.Payload) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(s.Payload, &values); err != nil {
		return nil, err
	}
	return values, nil
}
