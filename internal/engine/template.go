package engine

import (
	"fmt"

	"github.com/edumon/forms-api/internal/models"
	appErrors "github.com/edumon/forms-api/pkg/errors"
)

// ValidateTemplate checks the structural invariants every template must
// hold: unique section ids and orders, unique field ids and orders, unique
// submission names, unique option values, known field types, sane grid
// spans and an acyclic conditional graph.
func ValidateTemplate(tpl *models.FormTemplate) error {
	sectionIDs := make(map[string]struct{}, len(tpl.Sections))
	sectionOrders := make(map[int]string, len(tpl.Sections))
	fieldIDs := make(map[string]struct{})
	fieldNames := make(map[string]struct{})

	for i := range tpl.Sections {
		section := &tpl.Sections[i]
		if _, ok := sectionIDs[section.ID]; ok {
			return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("duplicate section id %q", section.ID))
		}
		sectionIDs[section.ID] = struct{}{}
		if other, ok := sectionOrders[section.Order]; ok {
			return appErrors.Clone(appErrors.ErrConflict,
				fmt.Sprintf("sections %q and %q share order %d", other, section.ID, section.Order))
		}
		sectionOrders[section.Order] = section.ID

		fieldOrders := make(map[int]string, len(section.Fields))
		for _, field := range section.Fields {
			if !field.Type.Valid() {
				return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("field %q has unknown type %q", field.ID, field.Type))
			}
			if _, ok := fieldIDs[field.ID]; ok {
				return appErrors.Clone(appErrors.ErrDuplicateFieldID, fmt.Sprintf("duplicate field id %q", field.ID))
			}
			fieldIDs[field.ID] = struct{}{}

			if field.Type.CarriesValue() {
				if field.Name == "" {
					return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("field %q has no submission name", field.ID))
				}
				if _, ok := fieldNames[field.Name]; ok {
					return appErrors.Clone(appErrors.ErrDuplicateName, fmt.Sprintf("duplicate field name %q", field.Name))
				}
				fieldNames[field.Name] = struct{}{}
			}

			if other, ok := fieldOrders[field.Order]; ok {
				return appErrors.Clone(appErrors.ErrConflict,
					fmt.Sprintf("fields %q and %q share order %d in section %q", other, field.ID, field.Order, section.ID))
			}
			fieldOrders[field.Order] = field.ID

			if len(field.Options) > 0 && !field.Type.SupportsOptions() {
				return appErrors.Clone(appErrors.ErrUnsupportedOptionField,
					fmt.Sprintf("field %q of type %q carries options", field.ID, field.Type))
			}
			optionValues := make(map[string]struct{}, len(field.Options))
			for _, opt := range field.Options {
				if _, ok := optionValues[opt.Value]; ok {
					return appErrors.Clone(appErrors.ErrDuplicateOption,
						fmt.Sprintf("field %q repeats option value %q", field.ID, opt.Value))
				}
				optionValues[opt.Value] = struct{}{}
			}

			if field.Conditional != nil && !field.Conditional.Operator.Valid() {
				return appErrors.Clone(appErrors.ErrValidation,
					fmt.Sprintf("field %q uses unknown operator %q", field.ID, field.Conditional.Operator))
			}
			if field.Grid != nil && !field.Grid.Valid() {
				return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("field %q has grid spans outside 1..24", field.ID))
			}
		}
	}

	return DetectConditionalCycle(tpl)
}
