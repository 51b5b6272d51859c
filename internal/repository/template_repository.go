package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/edumon/forms-api/internal/dto"
	"github.com/edumon/forms-api/internal/models"
)

// TemplateRepository persists form templates. The schema graph (sections,
// settings, metadata, targeting) is stored as JSONB: templates are always
// read and written whole, never field-by-field, which matches the
// single-owner mutation model of the builder.
type TemplateRepository struct {
	db *sqlx.DB
}

// NewTemplateRepository constructs the repository.
func NewTemplateRepository(db *sqlx.DB) *TemplateRepository {
	return &TemplateRepository{db: db}
}

type templateRecord struct {
	ID             string `db:"id"`
	Name           string `db:"name"`
	Description    string `db:"description"`
	Category       string `db:"category"`
	Status         string `db:"status"`
	Sections       []byte `db:"sections"`
	Settings       []byte `db:"settings"`
	Metadata       []byte `db:"metadata"`
	TargetRoles    []byte `db:"target_roles"`
	TargetGrades   []byte `db:"target_grades"`
	TargetSubjects []byte `db:"target_subjects"`
}

const templateColumns = `id, name, description, category, status, sections, settings, metadata, target_roles, target_grades, target_subjects`

func encodeTemplate(tpl *models.FormTemplate) (*templateRecord, error) {
	sections, err := json.Marshal(tpl.Sections)
	if err != nil {
		return nil, fmt.Errorf("marshal sections: %w", err)
	}
	settings, err := json.Marshal(tpl.Settings)
	if err != nil {
		return nil, fmt.Errorf("marshal settings: %w", err)
	}
	metadata, err := json.Marshal(tpl.Metadata)
	if err != nil {
		return nil, fmt.Errorf("marshal metadata: %w", err)
	}
	roles, err := json.Marshal(tpl.TargetRoles)
	if err != nil {
		return nil, fmt.Errorf("marshal target roles: %w", err)
	}
	grades, err := json.Marshal(tpl.TargetGrades)
	if err != nil {
		return nil, fmt.Errorf("marshal target grades: %w", err)
	}
	subjects, err := json.Marshal(tpl.TargetSubjects)
	if err != nil {
		return nil, fmt.Errorf("marshal target subjects: %w", err)
	}
	return &templateRecord{
		ID:             tpl.ID,
		Name:           tpl.Name,
		Description:    tpl.Description,
		Category:       string(tpl.Category),
		Status:         string(tpl.Status),
		Sections:       sections,
		Settings:       settings,
		Metadata:       metadata,
		TargetRoles:    roles,
		TargetGrades:   grades,
		TargetSubjects: subjects,
	}, nil
}

func decodeTemplate(rec *templateRecord) (*models.FormTemplate, error) {
	tpl := &models.FormTemplate{
		ID:          rec.ID,
		Name:        rec.Name,
		Description: rec.Description,
		Category:    models.TemplateCategory(rec.Category),
		Status:      models.TemplateStatus(rec.Status),
	}
	if err := json.Unmarshal(rec.Sections, &tpl.Sections); err != nil {
		return nil, fmt.Errorf("unmarshal sections for %s: %w", rec.ID, err)
	}
	if err := json.Unmarshal(rec.Settings, &tpl.Settings); err != nil {
		return nil, fmt.Errorf("unmarshal settings for %s: %w", rec.ID, err)
	}
	if err := json.Unmarshal(rec.Metadata, &tpl.Metadata); err != nil {
		return nil, fmt.Errorf("unmarshal metadata for %s: %w", rec.ID, err)
	}
	if len(rec.TargetRoles) > 0 {
		if err := json.Unmarshal(rec.TargetRoles, &tpl.TargetRoles); err != nil {
			return nil, fmt.Errorf("unmarshal target roles for %s: %w", rec.ID, err)
		}
	}
	if len(rec.TargetGrades) > 0 {
		if err := json.Unmarshal(rec.TargetGrades, &tpl.TargetGrades); err != nil {
			return nil, fmt.Errorf("unmarshal target grades for %s: %w", rec.ID, err)
		}
	}
	if len(rec.TargetSubjects) > 0 {
		if err := json.Unmarshal(rec.TargetSubjects, &tpl.TargetSubjects); err != nil {
			return nil, fmt.Errorf("unmarshal target subjects for %s: %w", rec.ID, err)
		}
	}
	return tpl, nil
}

// Create inserts a new template.
func (r *TemplateRepository) Create(ctx context.Context, tpl *models.FormTemplate) error {
	rec, err := encodeTemplate(tpl)
	if err != nil {
		return err
	}
	const query = `INSERT INTO form_templates (` + templateColumns + `)
VALUES (:id, :name, :description, :category, :status, :sections, :settings, :metadata, :target_roles, :target_grades, :target_subjects)`
	if _, err := r.db.NamedExecContext(ctx, query, rec); err != nil {
		return fmt.Errorf("insert template %s: %w", tpl.ID, err)
	}
	return nil
}

// Upsert inserts or fully replaces a template. Ingestion relies on this for
// idempotent re-runs of the same source batch.
func (r *TemplateRepository) Upsert(ctx context.Context, tpl *models.FormTemplate) error {
	rec, err := encodeTemplate(tpl)
	if err != nil {
		return err
	}
	const query = `INSERT INTO form_templates (` + templateColumns + `)
VALUES (:id, :name, :description, :category, :status, :sections, :settings, :metadata, :target_roles, :target_grades, :target_subjects)
ON CONFLICT (id)
DO UPDATE SET name = EXCLUDED.name, description = EXCLUDED.description, category = EXCLUDED.category,
              status = EXCLUDED.status, sections = EXCLUDED.sections, settings = EXCLUDED.settings,
              metadata = EXCLUDED.metadata, target_roles = EXCLUDED.target_roles,
              target_grades = EXCLUDED.target_grades, target_subjects = EXCLUDED.target_subjects`
	if _, err := r.db.NamedExecContext(ctx, query, rec); err != nil {
		return fmt.Errorf("upsert template %s: %w", tpl.ID, err)
	}
	return nil
}

// BulkUpsert writes a full ingestion batch inside one transaction so a
// failure leaves no partial schema behind.
func (r *TemplateRepository) BulkUpsert(ctx context.Context, tpls []*models.FormTemplate) error {
	if len(tpls) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin template batch tx: %w", err)
	}
	const query = `INSERT INTO form_templates (` + templateColumns + `)
VALUES (:id, :name, :description, :category, :status, :sections, :settings, :metadata, :target_roles, :target_grades, :target_subjects)
ON CONFLICT (id)
DO UPDATE SET name = EXCLUDED.name, description = EXCLUDED.description, category = EXCLUDED.category,
              status = EXCLUDED.status, sections = EXCLUDED.sections, settings = EXCLUDED.settings,
              metadata = EXCLUDED.metadata, target_roles = EXCLUDED.target_roles,
              target_grades = EXCLUDED.target_grades, target_subjects = EXCLUDED.target_subjects`
	for _, tpl := range tpls {
		rec, err := encodeTemplate(tpl)
		if err != nil {
			_ = tx.Rollback()
			return err
		}
		if _, err := tx.NamedExecContext(ctx, query, rec); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("batch upsert template %s: %w", tpl.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit template batch tx: %w", err)
	}
	return nil
}

// FindByID fetches a single template.
func (r *TemplateRepository) FindByID(ctx context.Context, id string) (*models.FormTemplate, error) {
	const query = `SELECT ` + templateColumns + ` FROM form_templates WHERE id = $1`
	var rec templateRecord
	if err := r.db.GetContext(ctx, &rec, query, id); err != nil {
		return nil, err
	}
	return decodeTemplate(&rec)
}

// List returns templates matching the filter plus the total match count.
func (r *TemplateRepository) List(ctx context.Context, filter dto.TemplateFilter) ([]*models.FormTemplate, int, error) {
	conditions := []string{}
	args := []interface{}{}

	addCondition := func(clause string, value interface{}) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(clause, len(args)))
	}

	if filter.Status != "" {
		addCondition("status = $%d", string(filter.Status))
	}
	if filter.Category != "" {
		addCondition("category = $%d", string(filter.Category))
	}
	if filter.Subject != "" {
		member, _ := json.Marshal([]string{filter.Subject})
		addCondition("target_subjects @> $%d", member)
	}
	if filter.Grade != "" {
		member, _ := json.Marshal([]string{filter.Grade})
		addCondition("target_grades @> $%d", member)
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM form_templates` + where
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count templates: %w", err)
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
	listQuery := fmt.Sprintf(`SELECT `+templateColumns+` FROM form_templates%s ORDER BY name ASC LIMIT $%d OFFSET $%d`,
		where, len(args)-1, len(args))

	var recs []templateRecord
	if err := r.db.SelectContext(ctx, &recs, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list templates: %w", err)
	}

	templates := make([]*models.FormTemplate, 0, len(recs))
	for i := range recs {
		tpl, err := decodeTemplate(&recs[i])
		if err != nil {
			return nil, 0, err
		}
		templates = append(templates, tpl)
	}
	return templates, total, nil
}

// Update replaces the stored template.
func (r *TemplateRepository) Update(ctx context.Context, tpl *models.FormTemplate) error {
	rec, err := encodeTemplate(tpl)
	if err != nil {
		return err
	}
	const query = `UPDATE form_templates
SET name = :name, description = :description, category = :category, status = :status,
    sections = :sections, settings = :settings, metadata = :metadata,
    target_roles = :target_roles, target_grades = :target_grades, target_subjects = :target_subjects
WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, rec)
	if err != nil {
		return fmt.Errorf("update template %s: %w", tpl.ID, err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes the template.
func (r *TemplateRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM form_templates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete template %s: %w", id, err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
