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

type translationRepository interface {
	ListByLocale(ctx context.Context, locale string) ([]models.Translation, error)
	Upsert(ctx context.Context, tr *models.Translation) error
	BulkUpsert(ctx context.Context, items []models.Translation) error
}

type translationCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Invalidate(ctx context.Context, pattern string) error
}

// TranslationService maintains the label dictionaries and builds resolvers
// for the renderer. Unknown keys resolve to themselves so a missing entry
// degrades to the raw key instead of an empty label.
type TranslationService struct {
	repo     translationRepository
	cache    translationCache
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewTranslationService constructs a TranslationService.
func NewTranslationService(repo translationRepository, cache translationCache, cacheTTL time.Duration, logger *zap.Logger) *TranslationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = 10 * time.Minute
	}
	return &TranslationService{repo: repo, cache: cache, cacheTTL: cacheTTL, logger: logger}
}

// Dictionary returns the key→text mapping for a locale.
func (s *TranslationService) Dictionary(ctx context.Context, locale string) (map[string]string, error) {
	cacheKey := translationCacheKey(locale)
	if s.cache != nil {
		var cached map[string]string
		if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
			return cached, nil
		}
	}

	items, err := s.repo.ListByLocale(ctx, locale)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load translations")
	}
	dict := make(map[string]string, len(items))
	for _, item := range items {
		dict[item.Key] = item.Text
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, dict, s.cacheTTL); err != nil {
			s.logger.Warn("translation cache write failed", zap.String("locale", locale), zap.Error(err))
		}
	}
	return dict, nil
}

// ResolverFor builds a renderer resolver for the locale. A nil locale or a
// lookup miss falls through to the key itself.
func (s *TranslationService) ResolverFor(ctx context.Context, locale string) (engine.Resolver, error) {
	if locale == "" {
		return nil, nil
	}
	dict, err := s.Dictionary(ctx, locale)
	if err != nil {
		return nil, err
	}
	return func(key string) string {
		if text, ok := dict[key]; ok {
			return text
		}
		return key
	}, nil
}

// Upsert writes one dictionary entry and drops the locale's cache.
func (s *TranslationService) Upsert(ctx context.Context, tr *models.Translation) error {
	if tr.Key == "" || tr.Locale == "" {
		return appErrors.Clone(appErrors.ErrValidation, "translation key and locale are required")
	}
	tr.UpdatedAt = time.Now().UTC()
	if err := s.repo.Upsert(ctx, tr); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save translation")
	}
	s.dropLocale(ctx, tr.Locale)
	return nil
}

// BulkUpsert writes a batch of dictionary entries.
func (s *TranslationService) BulkUpsert(ctx context.Context, items []models.Translation) error {
	now := time.Now().UTC()
	locales := make(map[string]struct{})
	for i := range items {
		if items[i].Key == "" || items[i].Locale == "" {
			return appErrors.Clone(appErrors.ErrValidation, "translation key and locale are required")
		}
		items[i].UpdatedAt = now
		locales[items[i].Locale] = struct{}{}
	}
	if err := s.repo.BulkUpsert(ctx, items); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save translations")
	}
	for locale := range locales {
		s.dropLocale(ctx, locale)
	}
	return nil
}

func (s *TranslationService) dropLocale(ctx context.Context, locale string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, translationCacheKey(locale)); err != nil {
		s.logger.Warn("translation cache invalidation failed", zap.String("locale", locale), zap.Error(err))
	}
}

func translationCacheKey(locale string) string {
	return fmt.Sprintf("translations:%s", locale)
}
