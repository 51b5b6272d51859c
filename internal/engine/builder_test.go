package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edumon/forms-api/internal/models"
	appErrors "github.com/edumon/forms-api/pkg/errors"
)

func builderTemplate() *models.FormTemplate {
	return &models.FormTemplate{
		ID:     "form_kh_g1",
		Name:   "Khmer G1",
		Status: models.StatusDraft,
		Sections: []models.FormSection{
			{
				ID:    "section_LEVEL-1",
				Title: "Level 1",
				Order: 1,
				Fields: []models.FormField{
					{ID: "f1", Type: models.FieldTypeText, Name: "q1", Label: models.Literal("Q1"), Order: 0},
					{ID: "f2", Type: models.FieldTypeText, Name: "q2", Label: models.Literal("Q2"), Order: 1},
					{ID: "f3", Type: models.FieldTypeRadio, Name: "q3", Label: models.Literal("Q3"), Order: 2,
						Options: []models.FieldOption{{Label: models.Literal("Yes"), Value: "yes"}}},
				},
			},
		},
	}
}

func TestBuilderAddFieldAssignsNextOrder(t *testing.T) {
	tpl := builderTemplate()
	b := NewBuilder(tpl)

	err := b.AddField("section_LEVEL-1", models.FormField{
		ID:    "f4",
		Type:  models.FieldTypeText,
		Name:  "q4",
		Label: models.Literal("Q4"),
		Order: -1,
	})
	require.NoError(t, err)

	field, _ := tpl.FieldByID("f4")
	require.NotNil(t, field)
	assert.Equal(t, 3, field.Order)
}

func TestBuilderAddFieldRejectsDuplicateName(t *testing.T) {
	tpl := builderTemplate()
	b := NewBuilder(tpl)

	err := b.AddField("section_LEVEL-1", models.FormField{
		ID:    "f4",
		Type:  models.FieldTypeText,
		Name:  "q1",
		Label: models.Literal("Duplicate"),
		Order: -1,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrDuplicateName.Code, appErrors.FromError(err).Code)

	// Failed operation leaves the template unchanged.
	field, _ := tpl.FieldByID("f4")
	assert.Nil(t, field)
}

func TestBuilderAddFieldDerivesMissingName(t *testing.T) {
	tpl := builderTemplate()
	b := NewBuilder(tpl)

	err := b.AddField("section_LEVEL-1", models.FormField{
		ID:    "f4",
		Type:  models.FieldTypeText,
		Label: models.Literal("Student's Reading Level?"),
		Order: -1,
	})
	require.NoError(t, err)
	field, _ := tpl.FieldByID("f4")
	require.NotNil(t, field)
	assert.Equal(t, "student_s_reading_level", field.Name)
}

func TestBuilderUpdateFieldKeepsExplicitName(t *testing.T) {
	tpl := builderTemplate()
	b := NewBuilder(tpl)

	label := models.Literal("New label")
	require.NoError(t, b.UpdateField("f1", FieldPatch{Label: &label}))

	field, _ := tpl.FieldByID("f1")
	assert.Equal(t, "New label", field.Label.Text)
	assert.Equal(t, "q1", field.Name, "explicit names survive label edits")
}

func TestBuilderUpdateFieldDerivesNameOnRequest(t *testing.T) {
	tpl := builderTemplate()
	b := NewBuilder(tpl)

	label := models.Literal("Reading Score")
	require.NoError(t, b.UpdateField("f1", FieldPatch{Label: &label, DeriveName: true}))

	field, _ := tpl.FieldByID("f1")
	assert.Equal(t, "reading_score", field.Name)
}

func TestBuilderDeleteFieldKeepsOrderGaps(t *testing.T) {
	tpl := builderTemplate()
	b := NewBuilder(tpl)

	require.NoError(t, b.DeleteField("f2"))

	section := tpl.SectionByID("section_LEVEL-1")
	require.Len(t, section.Fields, 2)
	assert.Equal(t, 0, section.Fields[0].Order)
	assert.Equal(t, 2, section.Fields[1].Order, "delete never renumbers siblings")
}

func TestBuilderReorderFieldRenumbersContiguously(t *testing.T) {
	tpl := builderTemplate()
	b := NewBuilder(tpl)

	require.NoError(t, b.ReorderField("f3", 0))

	section := tpl.SectionByID("section_LEVEL-1")
	require.Len(t, section.Fields, 3)
	assert.Equal(t, "f3", section.Fields[0].ID)
	for i, field := range section.Fields {
		assert.Equal(t, i, field.Order)
	}
}

func TestBuilderReorderFieldClampsIndex(t *testing.T) {
	tpl := builderTemplate()
	b := NewBuilder(tpl)

	require.NoError(t, b.ReorderField("f1", 99))

	section := tpl.SectionByID("section_LEVEL-1")
	assert.Equal(t, "f1", section.Fields[len(section.Fields)-1].ID)
}

func TestBuilderAddOptionRejectsDuplicateValue(t *testing.T) {
	tpl := builderTemplate()
	b := NewBuilder(tpl)

	err := b.AddOption("f3", models.FieldOption{Label: models.Literal("Yes"), Value: "yes"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrDuplicateOption.Code, appErrors.FromError(err).Code)

	field, _ := tpl.FieldByID("f3")
	assert.Len(t, field.Options, 1, "option list unchanged after rejection")
}

func TestBuilderAddOptionDerivesValueFromLabel(t *testing.T) {
	tpl := builderTemplate()
	b := NewBuilder(tpl)

	require.NoError(t, b.AddOption("f3", models.FieldOption{Label: models.Literal("Not Sure!")}))

	field, _ := tpl.FieldByID("f3")
	require.Len(t, field.Options, 2)
	assert.Equal(t, "not_sure", field.Options[1].Value)
}

func TestBuilderAddOptionRejectsNonOptionField(t *testing.T) {
	tpl := builderTemplate()
	b := NewBuilder(tpl)

	err := b.AddOption("f1", models.FieldOption{Label: models.Literal("Yes"), Value: "yes"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnsupportedOptionField.Code, appErrors.FromError(err).Code)
}

func TestBuilderDeleteOptionMissingIsNoop(t *testing.T) {
	tpl := builderTemplate()
	b := NewBuilder(tpl)

	require.NoError(t, b.DeleteOption("f3", "absent"))
	field, _ := tpl.FieldByID("f3")
	assert.Len(t, field.Options, 1)

	require.NoError(t, b.DeleteOption("f3", "yes"))
	field, _ = tpl.FieldByID("f3")
	assert.Empty(t, field.Options)
}

func TestBuilderRejectsConditionalCycle(t *testing.T) {
	tpl := builderTemplate()
	b := NewBuilder(tpl)

	ruleOnQ2 := &models.ConditionalRule{Field: "q2", Operator: models.OperatorEquals, Value: "x"}
	require.NoError(t, b.UpdateField("f1", FieldPatch{Conditional: ruleOnQ2}))

	ruleOnQ1 := &models.ConditionalRule{Field: "q1", Operator: models.OperatorEquals, Value: "y"}
	err := b.UpdateField("f2", FieldPatch{Conditional: ruleOnQ1})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrCyclicConditional.Code, appErrors.FromError(err).Code)

	field, _ := tpl.FieldByID("f2")
	assert.Nil(t, field.Conditional, "rejected mutation rolls back")
}

func TestBuilderSectionLifecycle(t *testing.T) {
	tpl := builderTemplate()
	b := NewBuilder(tpl)

	require.NoError(t, b.AddSection(models.FormSection{ID: "section_LEVEL-2", Title: "Level 2", Order: -1}))
	section := tpl.SectionByID("section_LEVEL-2")
	require.NotNil(t, section)
	assert.Equal(t, 2, section.Order)

	title := "Renamed"
	require.NoError(t, b.UpdateSection("section_LEVEL-2", SectionPatch{Title: &title}))
	assert.Equal(t, "Renamed", tpl.SectionByID("section_LEVEL-2").Title)

	require.NoError(t, b.DeleteSection("section_LEVEL-2"))
	assert.Nil(t, tpl.SectionByID("section_LEVEL-2"))
}
