package engine

import (
	"encoding/json"
	"fmt"
	"reflect"
	"regexp"
	"strconv"

	"github.com/edumon/forms-api/internal/models"
)

// Default bounds for scale fields when none are configured.
const (
	scaleDefaultMin = 0
	scaleDefaultMax = 10
)

// ValidationResult is the outcome of evaluating one field against one value.
// Failures are data, not errors: they are expected, frequent and user-facing.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

func pass() ValidationResult {
	return ValidationResult{Valid: true, Errors: []string{}}
}

// Validate runs every applicable rule for the field and collects all
// failures; it never short-circuits between rules. An empty value only
// trips the required rule - length, bound and pattern checks are skipped so
// an optional field left blank stays valid.
func Validate(field models.FormField, value interface{}) ValidationResult {
	if !field.Type.CarriesValue() {
		return pass()
	}

	rules := field.Validation
	empty := isEmpty(value)

	var errs []string
	if rules != nil && rules.Required && empty {
		errs = append(errs, fmt.Sprintf("%s is required", field.Label.Text))
	}
	if empty {
		return result(errs)
	}

	if rules != nil {
		if s, ok := value.(string); ok {
			if rules.MinLength != nil && len([]rune(s)) < *rules.MinLength {
				errs = append(errs, fmt.Sprintf("must be at least %d characters", *rules.MinLength))
			}
			if rules.MaxLength != nil && len([]rune(s)) > *rules.MaxLength {
				errs = append(errs, fmt.Sprintf("must be at most %d characters", *rules.MaxLength))
			}
			if rules.Pattern != "" {
				re, err := regexp.Compile(rules.Pattern)
				if err != nil {
					errs = append(errs, "invalid validation pattern")
				} else if !re.MatchString(s) {
					errs = append(errs, "value does not match the expected format")
				}
			}
		}
	}

	if num, ok := toFloat(value); ok {
		min, max := numericBounds(field)
		if min != nil && num < *min {
			errs = append(errs, fmt.Sprintf("must be at least %v", *min))
		}
		if max != nil && num > *max {
			errs = append(errs, fmt.Sprintf("must be at most %v", *max))
		}
	}

	if rules != nil && rules.Custom != nil {
		if err := rules.Custom(value); err != nil {
			errs = append(errs, err.Error())
		}
	}

	return result(errs)
}

// numericBounds returns the effective min/max, applying the scale default.
func numericBounds(field models.FormField) (*float64, *float64) {
	var min, max *float64
	if field.Validation != nil {
		min = field.Validation.Min
		max = field.Validation.Max
	}
	if field.Type == models.FieldTypeScale {
		if min == nil {
			v := float64(scaleDefaultMin)
			min = &v
		}
		if max == nil {
			v := float64(scaleDefaultMax)
			max = &v
		}
	}
	return min, max
}

func result(errs []string) ValidationResult {
	if len(errs) == 0 {
		return pass()
	}
	return ValidationResult{Valid: false, Errors: errs}
}

// isEmpty treats nil, empty strings and empty collections as absent.
func isEmpty(value interface{}) bool {
	if value == nil {
		return true
	}
	switch v := value.(type) {
	case string:
		return v == ""
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len() == 0
	}
	return false
}

// toFloat coerces common numeric representations. Strings are parsed so that
// values posted by text inputs still hit numeric bounds.
func toFloat(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(v, 64)
		return f, err == nil
	}
	return 0, false
}
