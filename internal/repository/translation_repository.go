package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/edumon/forms-api/internal/models"
)

// TranslationRepository persists label translations keyed by (key, locale).
type TranslationRepository struct {
	db *sqlx.DB
}

// NewTranslationRepository constructs the repository.
func NewTranslationRepository(db *sqlx.DB) *TranslationRepository {
	return &TranslationRepository{db: db}
}

// ListByLocale returns every translation for a locale.
func (r *TranslationRepository) ListByLocale(ctx context.Context, locale string) ([]models.Translation, error) {
	const query = `SELECT key, locale, text, updated_at FROM translations WHERE locale = $1 ORDER BY key ASC`
	var items []models.Translation
	if err := r.db.SelectContext(ctx, &items, query, locale); err != nil {
		return nil, fmt.Errorf("list translations for %s: %w", locale, err)
	}
	return items, nil
}

// Upsert inserts or replaces a translation entry.
func (r *TranslationRepository) Upsert(ctx context.Context, tr *models.Translation) error {
	const query = `INSERT INTO translations (key, locale, text, updated_at)
VALUES (:key, :locale, :text, :updated_at)
ON CONFLICT (key, locale) DO UPDATE SET text = EXCLUDED.text, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, tr); err != nil {
		return fmt.Errorf("upsert translation %s/%s: %w", tr.Key, tr.Locale, err)
	}
	return nil
}

// BulkUpsert writes a batch of translations inside one transaction.
func (r *TranslationRepository) BulkUpsert(ctx context.Context, items []models.Translation) error {
	if len(items) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin translation batch tx: %w", err)
	}
	const query = `INSERT INTO translations (key, locale, text, updated_at)
VALUES (:key, :locale, :text, :updated_at)
ON CONFLICT (key, locale) DO UPDATE SET text = EXCLUDED.text, updated_at = EXCLUDED.updated_at`
	for i := range items {
		if _, err := tx.NamedExecContext(ctx, query, &items[i]); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("batch upsert translation %s/%s: %w", items[i].Key, items[i].Locale, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit translation batch tx: %w", err)
	}
	return nil
}
