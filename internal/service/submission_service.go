package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/edumon/forms-api/internal/dto"
	"github.com/edumon/forms-api/internal/engine"
	"github.com/edumon/forms-api/internal/models"
	appErrors "github.com/edumon/forms-api/pkg/errors"
)

type submissionRepository interface {
	Create(ctx context.Context, sub *models.FormSubmission) error
	FindByID(ctx context.Context, id string) (*models.FormSubmission, error)
	ListByForm(ctx context.Context, formID string, filter dto.SubmissionFilter) ([]models.FormSubmission, int, error)
	CountByForm(ctx context.Context, formID string) (int, error)
	Update(ctx context.Context, sub *models.FormSubmission) error
}

type submissionTemplateReader interface {
	FindByID(ctx context.Context, id string) (*models.FormTemplate, error)
}

// SubmissionService records answer sets against published templates and
// runs the review workflow. Field-level validation failures are reported as
// data in the outcome, not as errors: only structural problems (closed form,
// unknown template) surface through the error path.
type SubmissionService struct {
	repo      submissionRepository
	templates submissionTemplateReader
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSubmissionService constructs a SubmissionService.
func NewSubmissionService(repo submissionRepository, templates submissionTemplateReader, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *SubmissionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubmissionService{repo: repo, templates: templates, metrics: metrics, validator: validate, logger: logger}
}

// Submit validates the value snapshot against the template and records it.
// Hidden fields are neither validated nor stored, so the persisted payload
// reflects exactly what the respondent saw.
func (s *SubmissionService) Submit(ctx context.Context, formID string, req dto.SubmitFormRequest, actor *models.JWTClaims) (*dto.SubmissionOutcome, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid submission payload")
	}

	tpl, err := s.loadTemplate(ctx, formID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureOpen(ctx, tpl, actor); err != nil {
		return nil, err
	}

	results := engine.ValidateVisible(tpl, req.Values)
	failures := make(map[string]engine.ValidationResult)
	for name, result := range results {
		if !result.Valid {
			failures[name] = result
		}
	}
	if len(failures) > 0 {
		return &dto.SubmissionOutcome{Valid: false, FieldErrors: failures}, nil
	}

	payload, err := json.Marshal(engine.SubmissionPayload(tpl, req.Values))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode submission payload")
	}

	status := models.SubmissionApproved
	if tpl.Settings.RequireApproval {
		status = models.SubmissionPending
	}
	now := time.Now().UTC()
	sub := &models.FormSubmission{
		ID:          uuid.NewString(),
		FormID:      tpl.ID,
		Status:      status,
		Payload:     payload,
		SubmittedBy: userIDPtr(actor),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, sub); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record submission")
	}

	s.metrics.RecordSubmission(tpl.ID, sub.Status)
	s.logger.Info("submission recorded",
		zap.String("form_id", tpl.ID),
		zap.String("submission_id", sub.ID),
		zap.String("status", string(sub.Status)))
	return &dto.SubmissionOutcome{Submission: sub, Valid: true}, nil
}

// Get fetches one submission.
func (s *SubmissionService) Get(ctx context.Context, id string) (*models.FormSubmission, error) {
	sub, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if isNoRows(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "submission not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch submission")
	}
	return sub, nil
}

// List returns a form's submissions plus pagination info.
func (s *SubmissionService) List(ctx context.Context, formID string, filter dto.SubmissionFilter) ([]models.FormSubmission, *models.Pagination, error) {
	if _, err := s.loadTemplate(ctx, formID); err != nil {
		return nil, nil, err
	}
	subs, total, err := s.repo.ListByForm(ctx, formID, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list submissions")
	}
	return subs, models.NewPagination(filter.Page, filter.PerPage, total), nil
}

// Approve accepts a pending submission.
func (s *SubmissionService) Approve(ctx context.Context, id string, req dto.ReviewSubmissionRequest, actor *models.JWTClaims) (*models.FormSubmission, error) {
	return s.review(ctx, id, models.SubmissionApproved, req, actor)
}

// Reject declines a pending submission.
func (s *SubmissionService) Reject(ctx context.Context, id string, req dto.ReviewSubmissionRequest, actor *models.JWTClaims) (*models.FormSubmission, error) {
	return s.review(ctx, id, models.SubmissionRejected, req, actor)
}

func (s *SubmissionService) review(ctx context.Context, id string, status models.SubmissionStatus, req dto.ReviewSubmissionRequest, actor *models.JWTClaims) (*models.FormSubmission, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid review payload")
	}
	sub, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sub.Status != models.SubmissionPending {
		return nil, appErrors.Clone(appErrors.ErrConflict, "submission already reviewed")
	}

	sub.Status = status
	sub.ReviewedBy = userIDPtr(actor)
	if req.Note != "" {
		note := req.Note
		sub.ReviewNote = &note
	}
	sub.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, sub); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update submission")
	}
	s.logger.Info("submission reviewed",
		zap.String("submission_id", sub.ID),
		zap.String("status", string(status)))
	return sub, nil
}

func (s *SubmissionService) loadTemplate(ctx context.Context, id string) (*models.FormTemplate, error) {
	tpl, err := s.templates.FindByID(ctx, id)
	if err != nil {
		if isNoRows(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "form template not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch template")
	}
	return tpl, nil
}

func (s *SubmissionService) ensureOpen(ctx context.Context, tpl *models.FormTemplate, actor *models.JWTClaims) error {
	if tpl.Status != models.StatusPublished {
		return appErrors.Clone(appErrors.ErrSubmissionClosed, "form is not published")
	}
	if actor == nil && !tpl.Settings.AllowAnonymous {
		return appErrors.Clone(appErrors.ErrUnauthorized, "form does not accept anonymous submissions")
	}

	now := time.Now().UTC()
	if tpl.Settings.ValidFrom != nil && now.Before(*tpl.Settings.ValidFrom) {
		return appErrors.Clone(appErrors.ErrSubmissionClosed, "form is not open yet")
	}
	if tpl.Settings.ValidUntil != nil && now.After(*tpl.Settings.ValidUntil) {
		return appErrors.Clone(appErrors.ErrSubmissionClosed, "form submission window has closed")
	}

	if tpl.Settings.MaxSubmissions != nil {
		count, err := s.repo.CountByForm(ctx, tpl.ID)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count submissions")
		}
		if count >= *tpl.Settings.MaxSubmissions {
			return appErrors.Clone(appErrors.ErrSubmissionClosed, "form has reached its submission limit")
		}
	}
	return nil
}
