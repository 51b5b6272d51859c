package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/edumon/forms-api/internal/dto"
	"github.com/edumon/forms-api/internal/engine"
	"github.com/edumon/forms-api/internal/models"
	appErrors "github.com/edumon/forms-api/pkg/errors"
)

type templateRepository interface {
	Create(ctx context.Context, tpl *models.FormTemplate) error
	FindByID(ctx context.Context, id string) (*models.FormTemplate, error)
	List(ctx context.Context, filter dto.TemplateFilter) ([]*models.FormTemplate, int, error)
	Update(ctx context.Context, tpl *models.FormTemplate) error
	Delete(ctx context.Context, id string) error
}

type templateSubmissionCleaner interface {
	DeleteByForm(ctx context.Context, formID string) error
}

type renderCacheInvalidator interface {
	Invalidate(ctx context.Context, pattern string) error
}

// TemplateService orchestrates the template lifecycle: creation, listing,
// publish/archive transitions, duplication and deletion. Structural edits to
// sections and fields go through BuilderService instead.
type TemplateService struct {
	repo        templateRepository
	submissions templateSubmissionCleaner
	cache       renderCacheInvalidator
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewTemplateService constructs a TemplateService.
func NewTemplateService(repo templateRepository, submissions templateSubmissionCleaner, cache renderCacheInvalidator, validate *validator.Validate, logger *zap.Logger) *TemplateService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TemplateService{
		repo:        repo,
		submissions: submissions,
		cache:       cache,
		validator:   validate,
		logger:      logger,
	}
}

// Create registers a new draft template shell with no sections.
func (s *TemplateService) Create(ctx context.Context, req dto.CreateTemplateRequest, actor *models.JWTClaims) (*models.FormTemplate, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid template payload")
	}
	if !req.Category.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown template category %q", req.Category))
	}

	now := time.Now().UTC()
	tpl := &models.FormTemplate{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Status:      models.StatusDraft,
		Sections:    []models.FormSection{},
		Metadata: models.TemplateMetadata{
			Version:   1,
			CreatedAt: now,
			CreatedBy: userID(actor),
		},
		TargetRoles:    req.TargetRoles,
		TargetGrades:   req.TargetGrades,
		TargetSubjects: req.TargetSubjects,
	}
	if req.Settings != nil {
		tpl.Settings = *req.Settings
	}

	if err := s.repo.Create(ctx, tpl); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create template")
	}
	s.logger.Info("template created", zap.String("template_id", tpl.ID), zap.String("name", tpl.Name))
	return tpl, nil
}

// Get fetches one template.
func (s *TemplateService) Get(ctx context.Context, id string) (*models.FormTemplate, error) {
	tpl, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "form template not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch template")
	}
	return tpl, nil
}

// List returns template summaries plus pagination info.
func (s *TemplateService) List(ctx context.Context, filter dto.TemplateFilter) ([]dto.TemplateSummary, *models.Pagination, error) {
	templates, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list templates")
	}
	summaries := make([]dto.TemplateSummary, 0, len(templates))
	for _, tpl := range templates {
		summaries = append(summaries, dto.NewTemplateSummary(tpl))
	}
	return summaries, models.NewPagination(filter.Page, filter.PerPage, total), nil
}

// Update patches template-level attributes.
func (s *TemplateService) Update(ctx context.Context, id string, req dto.UpdateTemplateRequest, actor *models.JWTClaims) (*models.FormTemplate, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid template payload")
	}
	tpl, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !tpl.Editable() {
		return nil, appErrors.Clone(appErrors.ErrTemplateLocked, "")
	}

	if req.Name != nil {
		tpl.Name = *req.Name
	}
	if req.Description != nil {
		tpl.Description = *req.Description
	}
	if req.Category != nil {
		if !req.Category.Valid() {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown template category %q", *req.Category))
		}
		tpl.Category = *req.Category
	}
	if req.Settings != nil {
		tpl.Settings = *req.Settings
	}
	if req.TargetRoles != nil {
		tpl.TargetRoles = req.TargetRoles
	}
	if req.TargetGrades != nil {
		tpl.TargetGrades = req.TargetGrades
	}
	if req.TargetSubjects != nil {
		tpl.TargetSubjects = req.TargetSubjects
	}

	return s.persist(ctx, tpl, actor)
}

// Publish moves a draft template to published after a full structural check.
func (s *TemplateService) Publish(ctx context.Context, id string, actor *models.JWTClaims) (*models.FormTemplate, error) {
	tpl, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if tpl.Status != models.StatusDraft {
		return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("cannot publish a %s template", tpl.Status))
	}
	if err := engine.ValidateTemplate(tpl); err != nil {
		return nil, err
	}
	tpl.Status = models.StatusPublished
	now := time.Now().UTC()
	tpl.Metadata.PublishedAt = &now
	return s.persist(ctx, tpl, actor)
}

// Archive retires a published template. Archived templates stop accepting
// submissions but remain readable for historical review.
func (s *TemplateService) Archive(ctx context.Context, id string, actor *models.JWTClaims) (*models.FormTemplate, error) {
	tpl, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if tpl.Status == models.StatusArchived {
		return nil, appErrors.Clone(appErrors.ErrConflict, "template already archived")
	}
	tpl.Status = models.StatusArchived
	now := time.Now().UTC()
	tpl.Metadata.ArchivedAt = &now
	return s.persist(ctx, tpl, actor)
}

// Duplicate deep-copies a template into a fresh draft with version reset.
func (s *TemplateService) Duplicate(ctx context.Context, id string, actor *models.JWTClaims) (*models.FormTemplate, error) {
	src, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	copyTpl := src.Clone()
	copyTpl.ID = uuid.NewString()
	copyTpl.Name = src.Name + " (copy)"
	copyTpl.Status = models.StatusDraft
	copyTpl.Metadata = models.TemplateMetadata{
		Version:   1,
		CreatedAt: time.Now().UTC(),
		CreatedBy: userID(actor),
	}
	if err := s.repo.Create(ctx, copyTpl); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to duplicate template")
	}
	s.logger.Info("template duplicated", zap.String("source_id", src.ID), zap.String("template_id", copyTpl.ID))
	return copyTpl, nil
}

// Delete removes a template together with its recorded submissions.
func (s *TemplateService) Delete(ctx context.Context, id string) error {
	if err := s.submissions.DeleteByForm(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete template submissions")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "form template not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete template")
	}
	s.invalidateRenderCache(ctx, id)
	s.logger.Info("template deleted", zap.String("template_id", id))
	return nil
}

func (s *TemplateService) persist(ctx context.Context, tpl *models.FormTemplate, actor *models.JWTClaims) (*models.FormTemplate, error) {
	touchMetadata(tpl, actor)
	if err := s.repo.Update(ctx, tpl); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "form template not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update template")
	}
	s.invalidateRenderCache(ctx, tpl.ID)
	return tpl, nil
}

func (s *TemplateService) invalidateRenderCache(ctx context.Context, templateID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, renderCachePattern(templateID)); err != nil {
		s.logger.Warn("render cache invalidation failed", zap.String("template_id", templateID), zap.Error(err))
	}
}

func renderCachePattern(templateID string) string {
	return fmt.Sprintf("render:%s:*", templateID)
}

func touchMetadata(tpl *models.FormTemplate, actor *models.JWTClaims) {
	now := time.Now().UTC()
	tpl.Metadata.UpdatedAt = &now
	tpl.Metadata.UpdatedBy = userIDPtr(actor)
	if tpl.Settings.EnableVersioning {
		tpl.Metadata.Version++
	}
}

func userIDPtr(actor *models.JWTClaims) *string {
	if actor == nil || actor.UserID == "" {
		return nil
	}
	id := actor.UserID
	return &id
}

func userID(actor *models.JWTClaims) string {
	if actor == nil {
		return ""
	}
	return actor.UserID
}
