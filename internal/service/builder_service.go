package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/edumon/forms-api/internal/dto"
	"github.com/edumon/forms-api/internal/engine"
	"github.com/edumon/forms-api/internal/models"
	appErrors "github.com/edumon/forms-api/pkg/errors"
)

// BuilderService applies structural edits to a template through the engine
// builder: every mutation is validated against the whole schema before it is
// persisted, so a rejected edit leaves the stored template untouched.
type BuilderService struct {
	repo      templateRepository
	cache     renderCacheInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewBuilderService constructs a BuilderService.
func NewBuilderService(repo templateRepository, cache renderCacheInvalidator, validate *validator.Validate, logger *zap.Logger) *BuilderService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BuilderService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// AddSection appends a section to the template.
func (s *BuilderService) AddSection(ctx context.Context, templateID string, req dto.AddSectionRequest, actor *models.JWTClaims) (*models.FormTemplate, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid section payload")
	}
	section := models.FormSection{
		ID:          req.ID,
		Title:       req.Title,
		Description: req.Description,
		Order:       orderOrAuto(req.Order),
		Fields:      []models.FormField{},
	}
	if section.ID == "" {
		section.ID = "section_" + uuid.NewString()
	}
	return s.apply(ctx, templateID, actor, func(b *engine.Builder) error {
		return b.AddSection(section)
	})
}

// UpdateSection patches a section's title, description or order.
func (s *BuilderService) UpdateSection(ctx context.Context, templateID, sectionID string, req dto.UpdateSectionRequest, actor *models.JWTClaims) (*models.FormTemplate, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid section payload")
	}
	patch := engine.SectionPatch{
		Title:       req.Title,
		Description: req.Description,
		Order:       req.Order,
	}
	return s.apply(ctx, templateID, actor, func(b *engine.Builder) error {
		return b.UpdateSection(sectionID, patch)
	})
}

// DeleteSection removes a section and every field it owns.
func (s *BuilderService) DeleteSection(ctx context.Context, templateID, sectionID string, actor *models.JWTClaims) (*models.FormTemplate, error) {
	return s.apply(ctx, templateID, actor, func(b *engine.Builder) error {
		return b.DeleteSection(sectionID)
	})
}

// AddField appends a field to a section. A missing name is derived from the
// label; a missing order lands the field after the section's current maximum.
func (s *BuilderService) AddField(ctx context.Context, templateID string, req dto.AddFieldRequest, actor *models.JWTClaims) (*models.FormTemplate, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid field payload")
	}
	if !req.Type.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown field type "+string(req.Type))
	}
	field := models.FormField{
		ID:           req.ID,
		Type:         req.Type,
		Name:         req.Name,
		Label:        labelRef(req.Label, req.LabelIsKey),
		Description:  models.Literal(req.Description),
		Placeholder:  models.Literal(req.Placeholder),
		DefaultValue: req.DefaultValue,
		Options:      req.Options,
		Validation:   req.Validation,
		Conditional:  req.Conditional,
		Grid:         req.Grid,
		Order:        orderOrAuto(req.Order),
	}
	if field.ID == "" {
		field.ID = "field_" + uuid.NewString()
	}
	return s.apply(ctx, templateID, actor, func(b *engine.Builder) error {
		return b.AddField(req.SectionID, field)
	})
}

// UpdateField merges a partial update into a field.
func (s *BuilderService) UpdateField(ctx context.Context, templateID, fieldID string, req dto.UpdateFieldRequest, actor *models.JWTClaims) (*models.FormTemplate, error) {
	patch := engine.FieldPatch{
		Type:             req.Type,
		Name:             req.Name,
		DefaultValue:     req.DefaultValue,
		HasDefault:       req.HasDefault,
		Options:          req.Options,
		Validation:       req.Validation,
		Conditional:      req.Conditional,
		ClearConditional: req.ClearConditional,
		Grid:             req.Grid,
		Order:            req.Order,
		DeriveName:       req.DeriveName,
	}
	if req.Label != nil {
		label := labelRef(*req.Label, req.LabelIsKey)
		patch.Label = &label
	}
	if req.Description != nil {
		desc := models.Literal(*req.Description)
		patch.Description = &desc
	}
	if req.Placeholder != nil {
		ph := models.Literal(*req.Placeholder)
		patch.Placeholder = &ph
	}
	return s.apply(ctx, templateID, actor, func(b *engine.Builder) error {
		return b.UpdateField(fieldID, patch)
	})
}

// DeleteField removes a field, leaving sibling orders untouched.
func (s *BuilderService) DeleteField(ctx context.Context, templateID, fieldID string, actor *models.JWTClaims) (*models.FormTemplate, error) {
	return s.apply(ctx, templateID, actor, func(b *engine.Builder) error {
		return b.DeleteField(fieldID)
	})
}

// ReorderField moves a field to a new index and renumbers the section.
func (s *BuilderService) ReorderField(ctx context.Context, templateID, fieldID string, req dto.ReorderFieldRequest, actor *models.JWTClaims) (*models.FormTemplate, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid reorder payload")
	}
	return s.apply(ctx, templateID, actor, func(b *engine.Builder) error {
		return b.ReorderField(fieldID, req.NewIndex)
	})
}

// AddOption appends an option to an option-bearing field. An empty value is
// derived from the label.
func (s *BuilderService) AddOption(ctx context.Context, templateID, fieldID string, req dto.AddOptionRequest, actor *models.JWTClaims) (*models.FormTemplate, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid option payload")
	}
	option := models.FieldOption{
		Label: labelRef(req.Label, req.LabelIsKey),
		Value: req.Value,
	}
	return s.apply(ctx, templateID, actor, func(b *engine.Builder) error {
		return b.AddOption(fieldID, option)
	})
}

// DeleteOption removes an option by value. Removing a value that is not
// present is a no-op.
func (s *BuilderService) DeleteOption(ctx context.Context, templateID, fieldID, optionValue string, actor *models.JWTClaims) (*models.FormTemplate, error) {
	return s.apply(ctx, templateID, actor, func(b *engine.Builder) error {
		return b.DeleteOption(fieldID, optionValue)
	})
}

func (s *BuilderService) apply(ctx context.Context, templateID string, actor *models.JWTClaims, op func(*engine.Builder) error) (*models.FormTemplate, error) {
	tpl, err := s.load(ctx, templateID)
	if err != nil {
		return nil, err
	}
	if !tpl.Editable() {
		return nil, appErrors.Clone(appErrors.ErrTemplateLocked, "")
	}

	builder := engine.NewBuilder(tpl)
	if err := op(builder); err != nil {
		return nil, err
	}

	touchMetadata(tpl, actor)
	if err := s.repo.Update(ctx, tpl); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist template")
	}
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, renderCachePattern(templateID)); err != nil {
			s.logger.Warn("render cache invalidation failed", zap.String("template_id", templateID), zap.Error(err))
		}
	}
	return tpl, nil
}

func (s *BuilderService) load(ctx context.Context, id string) (*models.FormTemplate, error) {
	tpl, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if isNoRows(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "form template not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch template")
	}
	return tpl, nil
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func labelRef(text string, isKey bool) models.LabelRef {
	if isKey {
		return models.TranslationKey(text)
	}
	return models.Literal(text)
}

func orderOrAuto(order *int) int {
	if order == nil {
		return -1
	}
	return *order
}
