package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edumon/forms-api/internal/models"
)

func intPtr(v int) *int             { return &v }
func floatPtr(v float64) *float64   { return &v }
func strPtr(v string) *string       { return &v }

func textField(name string, rules *models.FieldValidation) models.FormField {
	return models.FormField{
		ID:         "field_" + name,
		Type:       models.FieldTypeText,
		Name:       name,
		Label:      models.Literal(name),
		Validation: rules,
	}
}

func TestValidateRequiredShortCircuitsLength(t *testing.T) {
	field := textField("q1", &models.FieldValidation{Required: true, MinLength: intPtr(3)})

	empty := Validate(field, "")
	require.False(t, empty.Valid)
	require.Len(t, empty.Errors, 1)
	assert.Contains(t, empty.Errors[0], "required")

	short := Validate(field, "ab")
	require.False(t, short.Valid)
	require.Len(t, short.Errors, 1)
	assert.Contains(t, short.Errors[0], "at least 3")

	ok := Validate(field, "abc")
	assert.True(t, ok.Valid)
	assert.Empty(t, ok.Errors)
}

func TestValidateCollectsAllFailures(t *testing.T) {
	field := textField("q1", &models.FieldValidation{
		MaxLength: intPtr(4),
		Pattern:   `^[0-9]+$`,
	})
	res := Validate(field, "abcdef")
	require.False(t, res.Valid)
	assert.Len(t, res.Errors, 2)
}

func TestValidateNumericBounds(t *testing.T) {
	field := models.FormField{
		ID:    "field_score",
		Type:  models.FieldTypeNumber,
		Name:  "score",
		Label: models.Literal("Score"),
		Validation: &models.FieldValidation{
			Min: floatPtr(1),
			Max: floatPtr(5),
		},
	}
	assert.False(t, Validate(field, 0).Valid)
	assert.False(t, Validate(field, 9.5).Valid)
	assert.True(t, Validate(field, 3).Valid)
	assert.True(t, Validate(field, "4").Valid)
}

func TestValidateScaleDefaultsBounds(t *testing.T) {
	field := models.FormField{
		ID:    "field_scale",
		Type:  models.FieldTypeScale,
		Name:  "confidence",
		Label: models.Literal("Confidence"),
	}
	assert.True(t, Validate(field, 0).Valid)
	assert.True(t, Validate(field, 10).Valid)
	assert.False(t, Validate(field, 11).Valid)
	assert.False(t, Validate(field, -1).Valid)
}

func TestValidateRequiredEmptyCollection(t *testing.T) {
	field := models.FormField{
		ID:         "field_subjects",
		Type:       models.FieldTypeMultiselect,
		Name:       "subjects",
		Label:      models.Literal("Subjects"),
		Validation: &models.FieldValidation{Required: true},
	}
	assert.False(t, Validate(field, []interface{}{}).Valid)
	assert.False(t, Validate(field, nil).Valid)
	assert.True(t, Validate(field, []interface{}{"kh"}).Valid)
}

func TestValidateCustomValidator(t *testing.T) {
	field := textField("q1", &models.FieldValidation{
		Custom: func(value interface{}) error {
			if value == "blocked" {
				return errors.New("value not allowed")
			}
			return nil
		},
	})
	bad := Validate(field, "blocked")
	require.False(t, bad.Valid)
	assert.Equal(t, []string{"value not allowed"}, bad.Errors)
	assert.True(t, Validate(field, "fine").Valid)
}

func TestValidateLayoutFieldsNeverEvaluated(t *testing.T) {
	field := models.FormField{
		ID:         "field_heading",
		Type:       models.FieldTypeSection,
		Label:      models.Literal("Heading"),
		Validation: &models.FieldValidation{Required: true},
	}
	assert.True(t, Validate(field, nil).Valid)
}

func TestValidateLengthIgnoredForNonStrings(t *testing.T) {
	field := models.FormField{
		ID:         "field_count",
		Type:       models.FieldTypeNumber,
		Name:       "count",
		Label:      models.Literal("Count"),
		Validation: &models.FieldValidation{MinLength: intPtr(5)},
	}
	assert.True(t, Validate(field, 7).Valid)
}
