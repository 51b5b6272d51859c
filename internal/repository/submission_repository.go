package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/edumon/forms-api/internal/dto"
	"github.com/edumon/forms-api/internal/models"
)

// SubmissionRepository persists recorded answer sets.
type SubmissionRepository struct {
	db *sqlx.DB
}

// NewSubmissionRepository constructs the repository.
func NewSubmissionRepository(db *sqlx.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

const submissionColumns = `id, form_id, status, payload, submitted_by, reviewed_by, review_note, created_at, updated_at`

// Create inserts a submission.
func (r *SubmissionRepository) Create(ctx context.Context, sub *models.FormSubmission) error {
	const query = `INSERT INTO form_submissions (id, form_id, status, payload, submitted_by, created_at, updated_at)
VALUES (:id, :form_id, :status, :payload, :submitted_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, sub); err != nil {
		return fmt.Errorf("insert submission %s: %w", sub.ID, err)
	}
	return nil
}

// FindByID fetches a single submission.
func (r *SubmissionRepository) FindByID(ctx context.Context, id string) (*models.FormSubmission, error) {
	const query = `SELECT ` + submissionColumns + ` FROM form_submissions WHERE id = $1`
	var sub models.FormSubmission
	if err := r.db.GetContext(ctx, &sub, query, id); err != nil {
		return nil, err
	}
	return &sub, nil
}

// ListByForm returns submissions for a template matching the filter plus the
// total match count.
func (r *SubmissionRepository) ListByForm(ctx context.Context, formID string, filter dto.SubmissionFilter) ([]models.FormSubmission, int, error) {
	conditions := []string{"form_id = $1"}
	args := []interface{}{formID}

	if filter.Status != "" {
		args = append(args, string(filter.Status))
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	where := " WHERE " + strings.Join(conditions, " AND ")

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM form_submissions`+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count submissions for %s: %w", formID, err)
	}

	perPage := filter.PerPage
	if perPage <= 0 {
		perPage = 20
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	args = append(args, perPage, (page-1)*perPage)
	query := fmt.Sprintf(`SELECT `+submissionColumns+` FROM form_submissions%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		where, len(args)-1, len(args))

	var subs []models.FormSubmission
	if err := r.db.SelectContext(ctx, &subs, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list submissions for %s: %w", formID, err)
	}
	return subs, total, nil
}

// CountByForm counts every submission recorded against the template,
// regardless of review status.
func (r *SubmissionRepository) CountByForm(ctx context.Context, formID string) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM form_submissions WHERE form_id = $1`, formID); err != nil {
		return 0, fmt.Errorf("count submissions for %s: %w", formID, err)
	}
	return total, nil
}

// Update persists review state changes.
func (r *SubmissionRepository) Update(ctx context.Context, sub *models.FormSubmission) error {
	const query = `UPDATE form_submissions
SET status = :status, reviewed_by = :reviewed_by, review_note = :review_note, updated_at = :updated_at
WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, sub)
	if err != nil {
		return fmt.Errorf("update submission %s: %w", sub.ID, err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteByForm removes every submission for a template. Called when the
// template itself is deleted.
func (r *SubmissionRepository) DeleteByForm(ctx context.Context, formID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM form_submissions WHERE form_id = $1`, formID); err != nil {
		return fmt.Errorf("delete submissions for %s: %w", formID, err)
	}
	return nil
}
