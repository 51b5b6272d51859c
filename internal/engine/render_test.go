package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edumon/forms-api/internal/models"
)

func renderTemplate() *models.FormTemplate {
	return &models.FormTemplate{
		ID:       "form_kh_g1",
		Name:     "Khmer G1",
		Category: models.CategoryObservation,
		Status:   models.StatusPublished,
		Sections: []models.FormSection{
			{
				ID:    "section_LEVEL-2",
				Title: "Level 2",
				Order: 2,
				Fields: []models.FormField{
					{ID: "f3", Type: models.FieldTypeText, Name: "q3", Label: models.TranslationKey("forms.q3.label"), Order: 0},
				},
			},
			{
				ID:    "section_LEVEL-1",
				Title: "Level 1",
				Order: 1,
				Fields: []models.FormField{
					{ID: "f2", Type: models.FieldTypeRadio, Name: "q2", Label: models.Literal("Q2"), Order: 1,
						Options: []models.FieldOption{
							{Label: models.TranslationKey("forms.option.yes"), Value: "yes"},
							{Label: models.Literal("No"), Value: "no"},
						},
						Conditional: &models.ConditionalRule{Field: "q1", Operator: models.OperatorEquals, Value: "yes"},
					},
					{ID: "f1", Type: models.FieldTypeText, Name: "q1", Label: models.Literal("Q1"), Order: 0,
						Validation: &models.FieldValidation{Required: true}},
					{ID: "f0", Type: models.FieldTypeDivider, Label: models.Literal(""), Order: 2},
				},
			},
		},
	}
}

func dictResolver(t *testing.T) Resolver {
	t.Helper()
	dict := map[string]string{
		"forms.q3.label":   "Reading fluency",
		"forms.option.yes": "Yes indeed",
	}
	return func(text string) string {
		if v, ok := dict[text]; ok {
			return v
		}
		return text
	}
}

func TestRenderOrdersSectionsAndResolvesLabels(t *testing.T) {
	form := Render(renderTemplate(), map[string]interface{}{"q1": "yes"}, dictResolver(t))

	require.Len(t, form.Sections, 2)
	assert.Equal(t, "section_LEVEL-1", form.Sections[0].ID)
	assert.Equal(t, "section_LEVEL-2", form.Sections[1].ID)

	level1 := form.Sections[0]
	require.Len(t, level1.Fields, 3)
	assert.Equal(t, "Q1", level1.Fields[0].Label)
	assert.Equal(t, models.WidgetInput, level1.Fields[0].Widget)
	assert.Equal(t, models.WidgetRadioGroup, level1.Fields[1].Widget)
	assert.Equal(t, "Yes indeed", level1.Fields[1].Options[0].Label)
	assert.Equal(t, "No", level1.Fields[1].Options[1].Label)

	assert.Equal(t, "Reading fluency", form.Sections[1].Fields[0].Label)
}

func TestRenderExcludesHiddenFields(t *testing.T) {
	form := Render(renderTemplate(), map[string]interface{}{"q1": "no"}, nil)

	names := []string{}
	for _, section := range form.Sections {
		for _, field := range section.Fields {
			if field.Name != "" {
				names = append(names, field.Name)
			}
		}
	}
	assert.NotContains(t, names, "q2")
	assert.Contains(t, names, "q1")
}

func TestRenderLayoutFieldsHaveNoName(t *testing.T) {
	form := Render(renderTemplate(), map[string]interface{}{"q1": "yes"}, nil)

	divider := form.Sections[0].Fields[2]
	assert.Equal(t, models.WidgetDivider, divider.Widget)
	assert.Empty(t, divider.Name)
}

func TestRenderNilResolverIsIdentity(t *testing.T) {
	form := Render(renderTemplate(), map[string]interface{}{"q1": "yes"}, nil)
	assert.Equal(t, "forms.q3.label", form.Sections[1].Fields[0].Label)
}

func TestRenderCarriesConstraints(t *testing.T) {
	form := Render(renderTemplate(), map[string]interface{}{"q1": "yes"}, nil)
	q1 := form.Sections[0].Fields[0]
	require.NotNil(t, q1.Constraints)
	assert.True(t, q1.Constraints.Required)
}
