package engine

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/edumon/forms-api/internal/models"
	appErrors "github.com/edumon/forms-api/pkg/errors"
)

// IsVisible evaluates a field's conditional rule against the current value
// snapshot. Fields without a rule are always visible.
func IsVisible(field models.FormField, values map[string]interface{}) bool {
	rule := field.Conditional
	if rule == nil {
		return true
	}
	referenced := values[rule.Field]

	switch rule.Operator {
	case models.OperatorEquals:
		return equalValues(referenced, rule.Value)
	case models.OperatorNotEquals:
		return !equalValues(referenced, rule.Value)
	case models.OperatorContains:
		return containsValue(referenced, rule.Value)
	case models.OperatorGreaterThan:
		a, aok := toFloat(referenced)
		b, bok := toFloat(rule.Value)
		return aok && bok && a > b
	case models.OperatorLessThan:
		a, aok := toFloat(referenced)
		b, bok := toFloat(rule.Value)
		return aok && bok && a < b
	}
	return false
}

// SubmissionPayload projects the raw value snapshot onto the flat payload a
// submission stores: only visible, value-carrying fields survive. Hidden
// fields are absent from the result, not merely blanked.
func SubmissionPayload(tpl *models.FormTemplate, values map[string]interface{}) map[string]interface{} {
	payload := make(map[string]interface{})
	for i := range tpl.Sections {
		for _, field := range tpl.Sections[i].Fields {
			if !field.Type.CarriesValue() {
				continue
			}
			if !IsVisible(field, values) {
				continue
			}
			if v, ok := values[field.Name]; ok {
				payload[field.Name] = v
			}
		}
	}
	return payload
}

// ValidateVisible validates every visible, value-carrying field against the
// snapshot and reports per-field results keyed by submission name. Hidden
// fields are excluded entirely: their values never reach the evaluator.
func ValidateVisible(tpl *models.FormTemplate, values map[string]interface{}) map[string]ValidationResult {
	results := make(map[string]ValidationResult)
	for i := range tpl.Sections {
		for _, field := range tpl.Sections[i].Fields {
			if !field.Type.CarriesValue() {
				continue
			}
			if !IsVisible(field, values) {
				continue
			}
			results[field.Name] = Validate(field, values[field.Name])
		}
	}
	return results
}

// DetectConditionalCycle walks the conditional-reference graph and rejects
// templates where visibility dependencies loop. Run at template-validation
// time so evaluation never has to cope with cycles.
func DetectConditionalCycle(tpl *models.FormTemplate) error {
	deps := make(map[string]string)
	for i := range tpl.Sections {
		for _, field := range tpl.Sections[i].Fields {
			if field.Conditional != nil {
				deps[field.Name] = field.Conditional.Field
			}
		}
	}

	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)
	state := make(map[string]int, len(deps))

	var visit func(name string, path []string) error
	visit = func(name string, path []string) error {
		switch state[name] {
		case done:
			return nil
		case visiting:
			cycle := append(path, name)
			return appErrors.Clone(appErrors.ErrCyclicConditional,
				fmt.Sprintf("conditional rules form a cycle: %s", strings.Join(cycle, " -> ")))
		}
		state[name] = visiting
		if next, ok := deps[name]; ok {
			if err := visit(next, append(path, name)); err != nil {
				return err
			}
		}
		state[name] = done
		return nil
	}

	for name := range deps {
		if err := visit(name, nil); err != nil {
			return err
		}
	}
	return nil
}

// equalValues compares loosely across numeric representations so a rule
// authored as 2 matches a decoded 2.0, and falls back to deep equality.
func equalValues(a, b interface{}) bool {
	if af, aok := toFloat(a); aok {
		if bf, bok := toFloat(b); bok {
			return af == bf
		}
	}
	return reflect.DeepEqual(a, b)
}

// containsValue handles the two shapes the contains operator accepts:
// substring match on strings and membership on slices.
func containsValue(haystack, needle interface{}) bool {
	switch h := haystack.(type) {
	case string:
		n, ok := needle.(string)
		return ok && strings.Contains(h, n)
	case []string:
		for _, item := range h {
			if equalValues(item, needle) {
				return true
			}
		}
	case []interface{}:
		for _, item := range h {
			if equalValues(item, needle) {
				return true
			}
		}
	}
	return false
}
