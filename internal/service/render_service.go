package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/edumon/forms-api/internal/engine"
	"github.com/edumon/forms-api/internal/models"
	appErrors "github.com/edumon/forms-api/pkg/errors"
)

type renderCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

type renderResolverSource interface {
	ResolverFor(ctx context.Context, locale string) (engine.Resolver, error)
}

// RenderService produces the client-facing view of a template: widgets
// resolved from field types, labels resolved through the locale dictionary
// and conditionally hidden fields stripped out. Value-free renders are
// cacheable; renders against a value snapshot never touch the cache because
// visibility depends on the values.
type RenderService struct {
	templates    submissionTemplateReader
	translations renderResolverSource
	cache        renderCache
	cacheTTL     time.Duration
	logger       *zap.Logger
}

// NewRenderService constructs a RenderService. A nil cache disables render
// caching entirely.
func NewRenderService(templates submissionTemplateReader, translations renderResolverSource, cache renderCache, cacheTTL time.Duration, logger *zap.Logger) *RenderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = 10 * time.Minute
	}
	return &RenderService{
		templates:    templates,
		translations: translations,
		cache:        cache,
		cacheTTL:     cacheTTL,
		logger:       logger,
	}
}

// Render builds the rendered view of a template. Values may be nil for the
// blank form.
func (s *RenderService) Render(ctx context.Context, templateID, locale string, values map[string]interface{}) (*engine.RenderedForm, error) {
	cacheable := s.cache != nil && len(values) == 0
	cacheKey := fmt.Sprintf("render:%s:%s", templateID, localeOrDefault(locale))

	if cacheable {
		var cached engine.RenderedForm
		if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
			return &cached, nil
		}
	}

	tpl, err := s.templates.FindByID(ctx, templateID)
	if err != nil {
		if isNoRows(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "form template not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch template")
	}
	if tpl.Status == models.StatusDraft {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "form template not found")
	}

	var resolve engine.Resolver
	if s.translations != nil {
		resolve, err = s.translations.ResolverFor(ctx, locale)
		if err != nil {
			return nil, err
		}
	}

	rendered := engine.Render(tpl, values, resolve)

	if cacheable {
		if err := s.cache.Set(ctx, cacheKey, rendered, s.cacheTTL); err != nil {
			s.logger.Warn("render cache write failed", zap.String("template_id", templateID), zap.Error(err))
		}
	}
	return &rendered, nil
}

func localeOrDefault(locale string) string {
	if locale == "" {
		return "raw"
	}
	return locale
}
