package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edumon/forms-api/internal/dto"
	"github.com/edumon/forms-api/internal/models"
	appErrors "github.com/edumon/forms-api/pkg/errors"
	"github.com/edumon/forms-api/pkg/response"
)

type submissionService interface {
	Submit(ctx context.Context, formID string, req dto.SubmitFormRequest, actor *models.JWTClaims) (*dto.SubmissionOutcome, error)
	Get(ctx context.Context, id string) (*models.FormSubmission, error)
	List(ctx context.Context, formID string, filter dto.SubmissionFilter) ([]models.FormSubmission, *models.Pagination, error)
	Approve(ctx context.Context, id string, req dto.ReviewSubmissionRequest, actor *models.JWTClaims) (*models.FormSubmission, error)
	Reject(ctx context.Context, id string, req dto.ReviewSubmissionRequest, actor *models.JWTClaims) (*models.FormSubmission, error)
}

// SubmissionHandler exposes form submission endpoints.
type SubmissionHandler struct {
	service submissionService
}

// NewSubmissionHandler builds a new handler.
func NewSubmissionHandler(service submissionService) *SubmissionHandler {
	return &SubmissionHandler{service: service}
}

// Submit godoc
// @Summary Submit values against a published form
// @Tags Submissions
// @Accept json
// @Produce json
// @Param id path string true "Template id"
// @Param payload body dto.SubmitFormRequest true "Value snapshot"
// @Success 201 {object} response.Envelope
// @Success 422 {object} response.Envelope
// @Router /forms/{id}/submissions [post]
func (h *SubmissionHandler) Submit(c *gin.Context) {
	var req dto.SubmitFormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid submission payload"))
		return
	}
	outcome, err := h.service.Submit(c.Request.Context(), c.Param("id"), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	if !outcome.Valid {
		response.JSON(c, http.StatusUnprocessableEntity, outcome, nil)
		return
	}
	response.Created(c, outcome)
}

// List godoc
// @Summary List submissions for a form
// @Tags Submissions
// @Produce json
// @Param id path string true "Template id"
// @Param status query string false "Submission status"
// @Param page query int false "Page number"
// @Param per_page query int false "Items per page"
// @Success 200 {object} response.Envelope
// @Router /forms/{id}/submissions [get]
func (h *SubmissionHandler) List(c *gin.Context) {
	var filter dto.SubmissionFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid listing filter"))
		return
	}
	items, pagination, err := h.service.List(c.Request.Context(), c.Param("id"), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// Get godoc
// @Summary Get a submission by id
// @Tags Submissions
// @Produce json
// @Param id path string true "Submission id"
// @Success 200 {object} response.Envelope
// @Router /submissions/{id} [get]
func (h *SubmissionHandler) Get(c *gin.Context) {
	sub, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sub, nil)
}

// Approve godoc
// @Summary Approve a pending submission
// @Tags Submissions
// @Accept json
// @Produce json
// @Param id path string true "Submission id"
// @Param payload body dto.ReviewSubmissionRequest true "Review payload"
// @Success 200 {object} response.Envelope
// @Router /submissions/{id}/approve [post]
func (h *SubmissionHandler) Approve(c *gin.Context) {
	h.review(c, h.service.Approve)
}

// Reject godoc
// @Summary Reject a pending submission
// @Tags Submissions
// @Accept json
// @Produce json
// @Param id path string true "Submission id"
// @Param payload body dto.ReviewSubmissionRequest true "Review payload"
// @Success 200 {object} response.Envelope
// @Router /submissions/{id}/reject [post]
func (h *SubmissionHandler) Reject(c *gin.Context) {
	h.review(c, h.service.Reject)
}

func (h *SubmissionHandler) review(c *gin.Context, fn func(context.Context, string, dto.ReviewSubmissionRequest, *models.JWTClaims) (*models.FormSubmission, error)) {
	var req dto.ReviewSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid review payload"))
		return
	}
	sub, err := fn(c.Request.Context(), c.Param("id"), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sub, nil)
}
