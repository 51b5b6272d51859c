package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edumon/forms-api/internal/dto"
	"github.com/edumon/forms-api/internal/models"
	appErrors "github.com/edumon/forms-api/pkg/errors"
)

func newBuilderService(repo *templateRepoStub) (*BuilderService, *cacheStub) {
	cache := newCacheStub()
	return NewBuilderService(repo, cache, validator.New(), nil), cache
}

func TestBuilderServiceAddFieldDerivesName(t *testing.T) {
	repo := newTemplateRepoStub(draftTemplate("form-1"))
	svc, cache := newBuilderService(repo)

	tpl, err := svc.AddField(context.Background(), "form-1", dto.AddFieldRequest{
		SectionID: "section_LEVEL-1",
		Type:      models.FieldTypeText,
		Label:     "Student's Reading Level?",
	}, nil)
	require.NoError(t, err)

	fields := tpl.Sections[0].Fields
	require.Len(t, fields, 3)
	added := fields[2]
	assert.Equal(t, "student_s_reading_level", added.Name)
	assert.Equal(t, 3, added.Order)
	assert.NotEmpty(t, cache.invalidated)
}

func TestBuilderServiceAddFieldDuplicateNameLeavesStoreUntouched(t *testing.T) {
	repo := newTemplateRepoStub(draftTemplate("form-1"))
	svc, _ := newBuilderService(repo)

	_, err := svc.AddField(context.Background(), "form-1", dto.AddFieldRequest{
		SectionID: "section_LEVEL-1",
		Type:      models.FieldTypeText,
		Name:      "can_read_letters",
		Label:     "Duplicate",
	}, nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrDuplicateName.Code, appErrors.FromError(err).Code)

	stored, findErr := repo.FindByID(context.Background(), "form-1")
	require.NoError(t, findErr)
	assert.Len(t, stored.Sections[0].Fields, 2)
}

func TestBuilderServiceRejectsLockedTemplate(t *testing.T) {
	tpl := publishedTemplate("form-1")
	tpl.Settings.RequireApproval = true
	repo := newTemplateRepoStub(tpl)
	svc, _ := newBuilderService(repo)

	_, err := svc.DeleteField(context.Background(), "form-1", "field_2", nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrTemplateLocked.Code, appErrors.FromError(err).Code)
}

func TestBuilderServiceReorderField(t *testing.T) {
	repo := newTemplateRepoStub(draftTemplate("form-1"))
	svc, _ := newBuilderService(repo)

	tpl, err := svc.ReorderField(context.Background(), "form-1", "field_2", dto.ReorderFieldRequest{NewIndex: 0}, nil)
	require.NoError(t, err)

	fields := tpl.Sections[0].Fields
	require.Len(t, fields, 2)
	assert.Equal(t, "field_2", fields[0].ID)
	assert.Equal(t, 0, fields[0].Order)
	assert.Equal(t, "field_1", fields[1].ID)
	assert.Equal(t, 1, fields[1].Order)
}

func TestBuilderServiceAddOptionDerivesValue(t *testing.T) {
	repo := newTemplateRepoStub(draftTemplate("form-1"))
	svc, _ := newBuilderService(repo)

	tpl, err := svc.AddOption(context.Background(), "form-1", "field_1", dto.AddOptionRequest{Label: "Not Sure"}, nil)
	require.NoError(t, err)

	field, _ := tpl.FieldByID("field_1")
	require.NotNil(t, field)
	require.Len(t, field.Options, 3)
	assert.Equal(t, "not_sure", field.Options[2].Value)
}

func TestBuilderServiceAddOptionOnNonOptionField(t *testing.T) {
	repo := newTemplateRepoStub(draftTemplate("form-1"))
	svc, _ := newBuilderService(repo)

	_, err := svc.AddOption(context.Background(), "form-1", "field_2", dto.AddOptionRequest{Label: "Nope"}, nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnsupportedOptionField.Code, appErrors.FromError(err).Code)
}

func TestBuilderServiceSectionLifecycle(t *testing.T) {
	repo := newTemplateRepoStub(draftTemplate("form-1"))
	svc, _ := newBuilderService(repo)

	tpl, err := svc.AddSection(context.Background(), "form-1", dto.AddSectionRequest{Title: "Level Two"}, nil)
	require.NoError(t, err)
	require.Len(t, tpl.Sections, 2)
	added := tpl.Sections[1]
	assert.Equal(t, 2, added.Order)

	title := "Level 2 (revised)"
	tpl, err = svc.UpdateSection(context.Background(), "form-1", added.ID, dto.UpdateSectionRequest{Title: &title}, nil)
	require.NoError(t, err)
	assert.Equal(t, title, tpl.SectionByID(added.ID).Title)

	tpl, err = svc.DeleteSection(context.Background(), "form-1", added.ID, nil)
	require.NoError(t, err)
	assert.Len(t, tpl.Sections, 1)
}

func TestBuilderServiceConditionalCycleRejected(t *testing.T) {
	repo := newTemplateRepoStub(draftTemplate("form-1"))
	svc, _ := newBuilderService(repo)

	_, err := svc.UpdateField(context.Background(), "form-1", "field_1", dto.UpdateFieldRequest{
		Conditional: &models.ConditionalRule{Field: "letter_notes", Operator: models.OperatorEquals, Value: "x"},
	}, nil)
	require.NoError(t, err)

	_, err = svc.UpdateField(context.Background(), "form-1", "field_2", dto.UpdateFieldRequest{
		Conditional: &models.ConditionalRule{Field: "can_read_letters", Operator: models.OperatorEquals, Value: "yes"},
	}, nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrCyclicConditional.Code, appErrors.FromError(err).Code)

	stored, findErr := repo.FindByID(context.Background(), "form-1")
	require.NoError(t, findErr)
	field, _ := stored.FieldByID("field_2")
	require.NotNil(t, field)
	assert.Nil(t, field.Conditional)
}
