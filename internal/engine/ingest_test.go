package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edumon/forms-api/internal/models"
	appErrors "github.com/edumon/forms-api/pkg/errors"
)

func sampleRows() []SourceRow {
	return []SourceRow{
		{ID: "1", Order: "2", Subject: "KH", Grade: "G1", Level: "LEVEL-1", FieldTypeOne: "radio", Indicator: "Q2"},
		{ID: "2", Order: "1", Subject: "KH", Grade: "G1", Level: "LEVEL-1", FieldTypeOne: "radio", Indicator: "Q1"},
	}
}

func TestTransformGroupsAndSorts(t *testing.T) {
	templates, err := Transform(sampleRows(), TransformOptions{})
	require.NoError(t, err)
	require.Len(t, templates, 1)

	tpl := templates[0]
	assert.Equal(t, "form_kh_g1", tpl.ID)
	assert.Equal(t, models.StatusPublished, tpl.Status)
	assert.Equal(t, []string{"G1"}, tpl.TargetGrades)
	assert.Equal(t, []string{"KH"}, tpl.TargetSubjects)
	assert.True(t, tpl.Settings.AllowSaveDraft)
	assert.False(t, tpl.Settings.RequireApproval)
	assert.True(t, tpl.Settings.EnableVersioning)

	require.Len(t, tpl.Sections, 1)
	section := tpl.Sections[0]
	assert.Equal(t, "section_LEVEL-1", section.ID)
	assert.Equal(t, 1, section.Order)

	// Fields ordered Q1 then Q2 despite input order.
	require.Len(t, section.Fields, 2)
	assert.Equal(t, "Q1", section.Fields[0].Label.Text)
	assert.Equal(t, "Q2", section.Fields[1].Label.Text)
	assert.Equal(t, "field_2", section.Fields[0].ID)
	assert.Equal(t, "question_2", section.Fields[0].Name)
	assert.True(t, section.Fields[0].Validation.Required)
}

func TestTransformSynthesizesYesNoOptions(t *testing.T) {
	templates, err := Transform(sampleRows(), TransformOptions{})
	require.NoError(t, err)

	field := templates[0].Sections[0].Fields[0]
	require.Equal(t, models.FieldTypeRadio, field.Type)
	require.Len(t, field.Options, 2)
	assert.Equal(t, "yes", field.Options[0].Value)
	assert.Equal(t, "no", field.Options[1].Value)
}

func TestTransformDefaultOptionsOverridable(t *testing.T) {
	opts := TransformOptions{
		DefaultOptionsFor: func(t models.FieldType) []models.FieldOption {
			if t != models.FieldTypeRadio {
				return nil
			}
			return []models.FieldOption{{Label: models.Literal("Correct"), Value: "1"}}
		},
	}
	templates, err := Transform(sampleRows(), opts)
	require.NoError(t, err)

	field := templates[0].Sections[0].Fields[0]
	require.Len(t, field.Options, 1)
	assert.Equal(t, "1", field.Options[0].Value)
}

func TestTransformTemplatePerSubjectGradeInFirstSeenOrder(t *testing.T) {
	rows := []SourceRow{
		{ID: "10", Order: "1", Subject: "MATH", Grade: "G2", Level: "LEVEL-1", FieldTypeOne: "radio", Indicator: "M1"},
		{ID: "11", Order: "1", Subject: "KH", Grade: "G1", Level: "LEVEL-1", FieldTypeOne: "radio", Indicator: "K1"},
		{ID: "12", Order: "2", Subject: "MATH", Grade: "G2", Level: "LEVEL-2", FieldTypeOne: "radio", Indicator: "M2"},
	}
	templates, err := Transform(rows, TransformOptions{})
	require.NoError(t, err)
	require.Len(t, templates, 2)
	assert.Equal(t, "form_math_g2", templates[0].ID)
	assert.Equal(t, "form_kh_g1", templates[1].ID)
	require.Len(t, templates[0].Sections, 2)
	assert.Equal(t, 1, templates[0].Sections[0].Order)
	assert.Equal(t, 2, templates[0].Sections[1].Order)
}

func TestTransformGradeListPreservedAndSlugged(t *testing.T) {
	rows := []SourceRow{
		{ID: "1", Order: "1", Subject: "KH", Grade: "G1,G2,G3", Level: "LEVEL-1", FieldTypeOne: "radio", Indicator: "Q1"},
	}
	templates, err := Transform(rows, TransformOptions{})
	require.NoError(t, err)
	require.Len(t, templates, 1)
	assert.Equal(t, "form_kh_g1-g2-g3", templates[0].ID)
	assert.Equal(t, []string{"G1", "G2", "G3"}, templates[0].TargetGrades)
}

func TestTransformRejectsNonNumericOrder(t *testing.T) {
	rows := []SourceRow{
		{ID: "7", Order: "abc", Subject: "KH", Grade: "G1", Level: "LEVEL-1", FieldTypeOne: "radio", Indicator: "Q"},
	}
	_, err := Transform(rows, TransformOptions{})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrMalformedRow.Code, appErr.Code)
	assert.Contains(t, appErr.Message, `"7"`)
}

func TestTransformRejectsUnparseableLevel(t *testing.T) {
	rows := []SourceRow{
		{ID: "8", Order: "1", Subject: "KH", Grade: "G1", Level: "BASELINE", FieldTypeOne: "radio", Indicator: "Q"},
	}
	_, err := Transform(rows, TransformOptions{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrMalformedRow.Code, appErrors.FromError(err).Code)
}

func TestTransformRejectsDuplicateRowID(t *testing.T) {
	rows := []SourceRow{
		{ID: "1", Order: "1", Subject: "KH", Grade: "G1", Level: "LEVEL-1", FieldTypeOne: "radio", Indicator: "Q1"},
		{ID: "1", Order: "2", Subject: "KH", Grade: "G1", Level: "LEVEL-1", FieldTypeOne: "radio", Indicator: "Q2"},
	}
	_, err := Transform(rows, TransformOptions{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrDuplicateFieldID.Code, appErrors.FromError(err).Code)
}

func TestTransformDefaultsUnknownFieldType(t *testing.T) {
	rows := []SourceRow{
		{ID: "1", Order: "1", Subject: "KH", Grade: "G1", Level: "LEVEL-1", FieldTypeOne: "hologram", Indicator: "Q1"},
	}
	templates, err := Transform(rows, TransformOptions{})
	require.NoError(t, err)
	assert.Equal(t, models.FieldTypeRadio, templates[0].Sections[0].Fields[0].Type)
}

func TestTransformIdempotentReingestion(t *testing.T) {
	first, err := Transform(sampleRows(), TransformOptions{})
	require.NoError(t, err)
	second, err := Transform(sampleRows(), TransformOptions{})
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestTransformUnknownLevelTitleFallsBack(t *testing.T) {
	rows := []SourceRow{
		{ID: "1", Order: "1", Subject: "KH", Grade: "G1", Level: "EXTRA-9", FieldTypeOne: "radio", Indicator: "Q1"},
	}
	templates, err := Transform(rows, TransformOptions{})
	require.NoError(t, err)
	section := templates[0].Sections[0]
	assert.Equal(t, "EXTRA-9", section.Title)
	assert.Equal(t, 9, section.Order)
}
