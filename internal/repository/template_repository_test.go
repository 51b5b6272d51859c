package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edumon/forms-api/internal/dto"
	"github.com/edumon/forms-api/internal/models"
)

func newTemplateRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	return sqlxDB, mock, func() {
		sqlxDB.Close()
		db.Close()
	}
}

func sampleTemplate() *models.FormTemplate {
	return &models.FormTemplate{
		ID:       "form_kh_g1",
		Name:     "អំណាន ភាសាខ្មែរ - Khmer Reading - G1",
		Category: models.CategoryObservation,
		Status:   models.StatusPublished,
		Sections: []models.FormSection{
			{
				ID:    "section_LEVEL-1",
				Title: "Beginner",
				Order: 1,
				Fields: []models.FormField{
					{
						ID:         "field_1",
						Name:       "can_read_letters",
						Type:       models.FieldTypeRadio,
						Label:      models.Literal("Can read letters?"),
						Validation: &models.FieldValidation{Required: true},
						Order:      1,
					},
				},
			},
		},
		Settings:       models.TemplateSettings{AllowSaveDraft: true},
		Metadata:       models.TemplateMetadata{Version: 1},
		TargetGrades:   []string{"G1"},
		TargetSubjects: []string{"KH"},
	}
}

func templateRows(t *testing.T, tpl *models.FormTemplate) *sqlmock.Rows {
	t.Helper()
	sections, err := json.Marshal(tpl.Sections)
	require.NoError(t, err)
	settings, err := json.Marshal(tpl.Settings)
	require.NoError(t, err)
	metadata, err := json.Marshal(tpl.Metadata)
	require.NoError(t, err)
	grades, err := json.Marshal(tpl.TargetGrades)
	require.NoError(t, err)
	subjects, err := json.Marshal(tpl.TargetSubjects)
	require.NoError(t, err)
	return sqlmock.NewRows([]string{
		"id", "name", "description", "category", "status",
		"sections", "settings", "metadata", "target_roles", "target_grades", "target_subjects",
	}).AddRow(tpl.ID, tpl.Name, tpl.Description, string(tpl.Category), string(tpl.Status),
		sections, settings, metadata, []byte("[]"), grades, subjects)
}

func TestTemplateRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newTemplateRepoMock(t)
	defer cleanup()

	repo := NewTemplateRepository(db)
	want := sampleTemplate()
	mock.ExpectQuery("SELECT id, name").
		WithArgs("form_kh_g1").
		WillReturnRows(templateRows(t, want))

	got, err := repo.FindByID(context.Background(), "form_kh_g1")
	require.NoError(t, err)
	assert.Equal(t, want.ID, got.ID)
	require.Len(t, got.Sections, 1)
	require.Len(t, got.Sections[0].Fields, 1)
	assert.Equal(t, "can_read_letters", got.Sections[0].Fields[0].Name)
	assert.True(t, got.Sections[0].Fields[0].Validation.Required)
}

func TestTemplateRepositoryFindByIDNotFound(t *testing.T) {
	db, mock, cleanup := newTemplateRepoMock(t)
	defer cleanup()

	repo := NewTemplateRepository(db)
	mock.ExpectQuery("SELECT id, name").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestTemplateRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newTemplateRepoMock(t)
	defer cleanup()

	repo := NewTemplateRepository(db)
	mock.ExpectExec("INSERT INTO form_templates").
		WithArgs("form_kh_g1", sqlmock.AnyArg(), "", "observation", "published",
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.Create(context.Background(), sampleTemplate()))
}

func TestTemplateRepositoryBulkUpsert(t *testing.T) {
	db, mock, cleanup := newTemplateRepoMock(t)
	defer cleanup()

	repo := NewTemplateRepository(db)
	first := sampleTemplate()
	second := sampleTemplate()
	second.ID = "form_math_g1"

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO form_templates").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO form_templates").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.BulkUpsert(context.Background(), []*models.FormTemplate{first, second}))
}

func TestTemplateRepositoryBulkUpsertRollsBack(t *testing.T) {
	db, mock, cleanup := newTemplateRepoMock(t)
	defer cleanup()

	repo := NewTemplateRepository(db)
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO form_templates").
		WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	err := repo.BulkUpsert(context.Background(), []*models.FormTemplate{sampleTemplate()})
	assert.Error(t, err)
}

func TestTemplateRepositoryList(t *testing.T) {
	db, mock, cleanup := newTemplateRepoMock(t)
	defer cleanup()

	repo := NewTemplateRepository(db)
	want := sampleTemplate()

	mock.ExpectQuery("SELECT COUNT").
		WithArgs("published").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("SELECT id, name").
		WithArgs("published", 20, 0).
		WillReturnRows(templateRows(t, want))

	templates, total, err := repo.List(context.Background(), dto.TemplateFilter{Status: models.StatusPublished})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, templates, 1)
	assert.Equal(t, "form_kh_g1", templates[0].ID)
}

func TestTemplateRepositoryUpdateMissing(t *testing.T) {
	db, mock, cleanup := newTemplateRepoMock(t)
	defer cleanup()

	repo := NewTemplateRepository(db)
	mock.ExpectExec("UPDATE form_templates").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), sampleTemplate())
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestTemplateRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newTemplateRepoMock(t)
	defer cleanup()

	repo := NewTemplateRepository(db)
	mock.ExpectExec("DELETE FROM form_templates").
		WithArgs("form_kh_g1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), "form_kh_g1"))
}
