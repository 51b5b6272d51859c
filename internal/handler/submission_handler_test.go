package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edumon/forms-api/internal/dto"
	"github.com/edumon/forms-api/internal/engine"
	"github.com/edumon/forms-api/internal/middleware"
	"github.com/edumon/forms-api/internal/models"
	appErrors "github.com/edumon/forms-api/pkg/errors"
)

type submissionServiceMock struct {
	outcome   *dto.SubmissionOutcome
	submitErr error
}

func (m *submissionServiceMock) Submit(ctx context.Context, formID string, req dto.SubmitFormRequest, actor *models.JWTClaims) (*dto.SubmissionOutcome, error) {
	if m.submitErr != nil {
		return nil, m.submitErr
	}
	return m.outcome, nil
}

func (m *submissionServiceMock) Get(ctx context.Context, id string) (*models.FormSubmission, error) {
	return &models.FormSubmission{ID: id}, nil
}

func (m *submissionServiceMock) List(ctx context.Context, formID string, filter dto.SubmissionFilter) ([]models.FormSubmission, *models.Pagination, error) {
	return []models.FormSubmission{}, models.NewPagination(1, 20, 0), nil
}

func (m *submissionServiceMock) Approve(ctx context.Context, id string, req dto.ReviewSubmissionRequest, actor *models.JWTClaims) (*models.FormSubmission, error) {
	return &models.FormSubmission{ID: id, Status: models.SubmissionApproved}, nil
}

func (m *submissionServiceMock) Reject(ctx context.Context, id string, req dto.ReviewSubmissionRequest, actor *models.JWTClaims) (*models.FormSubmission, error) {
	return &models.FormSubmission{ID: id, Status: models.SubmissionRejected}, nil
}

func TestSubmissionHandlerSubmitCreated(t *testing.T) {
	mock := &submissionServiceMock{outcome: &dto.SubmissionOutcome{
		Valid:      true,
		Submission: &models.FormSubmission{ID: "sub-1", FormID: "form-1", Status: models.SubmissionApproved},
	}}
	handler := NewSubmissionHandler(mock)
	body, _ := json.Marshal(dto.SubmitFormRequest{Values: map[string]interface{}{"can_read_letters": "yes"}})
	c, w := testContext(t, http.MethodPost, "/forms/form-1/submissions", body)
	c.Params = gin.Params{{Key: "id", Value: "form-1"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "teacher-1", Role: models.RoleTeacher})

	handler.Submit(c)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"sub-1"`)
}

func TestSubmissionHandlerSubmitFieldFailures(t *testing.T) {
	mock := &submissionServiceMock{outcome: &dto.SubmissionOutcome{
		Valid: false,
		FieldErrors: map[string]engine.ValidationResult{
			"can_read_letters": {Valid: false, Errors: []string{"value is required"}},
		},
	}}
	handler := NewSubmissionHandler(mock)
	body, _ := json.Marshal(dto.SubmitFormRequest{Values: map[string]interface{}{}})
	c, w := testContext(t, http.MethodPost, "/forms/form-1/submissions", body)
	c.Params = gin.Params{{Key: "id", Value: "form-1"}}

	handler.Submit(c)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "value is required")
}

func TestSubmissionHandlerSubmitClosed(t *testing.T) {
	handler := NewSubmissionHandler(&submissionServiceMock{submitErr: appErrors.ErrSubmissionClosed})
	body, _ := json.Marshal(dto.SubmitFormRequest{Values: map[string]interface{}{"x": 1}})
	c, w := testContext(t, http.MethodPost, "/forms/form-1/submissions", body)
	c.Params = gin.Params{{Key: "id", Value: "form-1"}}

	handler.Submit(c)
	assert.Equal(t, appErrors.ErrSubmissionClosed.Status, w.Code)
}

func TestSubmissionHandlerReviewInvalidBody(t *testing.T) {
	handler := NewSubmissionHandler(&submissionServiceMock{})
	c, w := testContext(t, http.MethodPost, "/submissions/sub-1/approve", []byte(`broken`))
	c.Params = gin.Params{{Key: "id", Value: "sub-1"}}

	handler.Approve(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
