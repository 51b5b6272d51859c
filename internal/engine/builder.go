package engine

import (
	"fmt"
	"sync"

	"github.com/edumon/forms-api/internal/models"
	appErrors "github.com/edumon/forms-api/pkg/errors"
)

// Builder is the single owner of a template under edit. Every structural
// mutation flows through it: operations are serialised by the mutex, applied
// to a clone, re-validated against the template invariants and only then
// committed, so a failed operation leaves the template untouched.
type Builder struct {
	mu  sync.Mutex
	tpl *models.FormTemplate
}

// NewBuilder wraps a template for editing. The builder takes ownership; the
// caller must not mutate the template directly afterwards.
func NewBuilder(tpl *models.FormTemplate) *Builder {
	return &Builder{tpl: tpl}
}

// Template returns the owned template.
func (b *Builder) Template() *models.FormTemplate {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.tpl
}

// Snapshot returns a deep copy safe to hand to readers.
func (b *Builder) Snapshot() *models.FormTemplate {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.tpl.Clone()
}

func (b *Builder) mutate(fn func(tpl *models.FormTemplate) error) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	draft := b.tpl.Clone()
	if err := fn(draft); err != nil {
		return err
	}
	if err := ValidateTemplate(draft); err != nil {
		return err
	}
	*b.tpl = *draft
	return nil
}

// AddField appends a field to the section. A negative order means
// "unspecified" and is replaced with max(existing)+1.
func (b *Builder) AddField(sectionID string, field models.FormField) error {
	return b.mutate(func(tpl *models.FormTemplate) error {
		section := tpl.SectionByID(sectionID)
		if section == nil {
			return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("section %q not found", sectionID))
		}
		if field.Name == "" && field.Type.CarriesValue() {
			field.Name = DeriveName(field.Label.Text)
		}
		if field.Order < 0 {
			field.Order = section.MaxFieldOrder() + 1
		}
		section.Fields = append(section.Fields, field)
		return nil
	})
}

// FieldPatch is a partial field update; nil members are left unchanged.
type FieldPatch struct {
	Type             *models.FieldType
	Name             *string
	Label            *models.LabelRef
	Description      *models.LabelRef
	Placeholder      *models.LabelRef
	DefaultValue     interface{}
	HasDefault       bool
	Options          *[]models.FieldOption
	Validation       *models.FieldValidation
	Conditional      *models.ConditionalRule
	ClearConditional bool
	Grid             *models.GridLayout
	Order            *int
	DeriveName       bool
}

// UpdateField merges the patch into the field. When the label changes and no
// explicit name accompanies it, the submission name is re-derived from the
// label - but only for fields that never had an explicit name, or when the
// caller requests it, so renaming a label cannot silently break stored
// submissions.
func (b *Builder) UpdateField(fieldID string, patch FieldPatch) error {
	return b.mutate(func(tpl *models.FormTemplate) error {
		field, _ := tpl.FieldByID(fieldID)
		if field == nil {
			return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("field %q not found", fieldID))
		}

		if patch.Type != nil {
			field.Type = *patch.Type
		}
		if patch.Label != nil {
			field.Label = *patch.Label
			if patch.Name == nil && (field.Name == "" || patch.DeriveName) {
				field.Name = DeriveName(patch.Label.Text)
			}
		}
		if patch.Name != nil {
			field.Name = *patch.Name
		}
		if patch.Description != nil {
			field.Description = *patch.Description
		}
		if patch.Placeholder != nil {
			field.Placeholder = *patch.Placeholder
		}
		if patch.HasDefault {
			field.DefaultValue = patch.DefaultValue
		}
		if patch.Options != nil {
			field.Options = append([]models.FieldOption(nil), (*patch.Options)...)
		}
		if patch.Validation != nil {
			field.Validation = patch.Validation.Clone()
		}
		if patch.ClearConditional {
			field.Conditional = nil
		} else if patch.Conditional != nil {
			field.Conditional = patch.Conditional.Clone()
		}
		if patch.Grid != nil {
			field.Grid = patch.Grid.Clone()
		}
		if patch.Order != nil {
			field.Order = *patch.Order
		}
		return nil
	})
}

// DeleteField removes the field. Sibling orders are not renumbered: gaps are
// fine because display order is relative, not contiguous.
func (b *Builder) DeleteField(fieldID string) error {
	return b.mutate(func(tpl *models.FormTemplate) error {
		for i := range tpl.Sections {
			fields := tpl.Sections[i].Fields
			for j := range fields {
				if fields[j].ID == fieldID {
					tpl.Sections[i].Fields = append(fields[:j], fields[j+1:]...)
					return nil
				}
			}
		}
		return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("field %q not found", fieldID))
	})
}

// AddOption appends an option to an option-bearing field. An empty value is
// derived from the label with the same slug rule as field names.
func (b *Builder) AddOption(fieldID string, option models.FieldOption) error {
	return b.mutate(func(tpl *models.FormTemplate) error {
		field, _ := tpl.FieldByID(fieldID)
		if field == nil {
			return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("field %q not found", fieldID))
		}
		if !field.Type.SupportsOptions() {
			return appErrors.Clone(appErrors.ErrUnsupportedOptionField,
				fmt.Sprintf("field type %q does not carry options", field.Type))
		}
		if option.Value == "" {
			option.Value = DeriveName(option.Label.Text)
		}
		for _, existing := range field.Options {
			if existing.Value == option.Value {
				return appErrors.Clone(appErrors.ErrDuplicateOption,
					fmt.Sprintf("option value %q already exists", option.Value))
			}
		}
		field.Options = append(field.Options, option)
		return nil
	})
}

// DeleteOption removes the option by value. A missing value is a no-op, not
// an error.
func (b *Builder) DeleteOption(fieldID, optionValue string) error {
	return b.mutate(func(tpl *models.FormTemplate) error {
		field, _ := tpl.FieldByID(fieldID)
		if field == nil {
			return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("field %q not found", fieldID))
		}
		if !field.Type.SupportsOptions() {
			return appErrors.Clone(appErrors.ErrUnsupportedOptionField,
				fmt.Sprintf("field type %q does not carry options", field.Type))
		}
		for i, existing := range field.Options {
			if existing.Value == optionValue {
				field.Options = append(field.Options[:i], field.Options[i+1:]...)
				return nil
			}
		}
		return nil
	})
}

// ReorderField moves the field to newIndex within its section and renumbers
// every sibling to a contiguous 0..n-1 so drag-and-drop positions stay
// stable. Out-of-range indexes are clamped.
func (b *Builder) ReorderField(fieldID string, newIndex int) error {
	return b.mutate(func(tpl *models.FormTemplate) error {
		_, section := tpl.FieldByID(fieldID)
		if section == nil {
			return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("field %q not found", fieldID))
		}
		section.SortFields()

		current := -1
		for i := range section.Fields {
			if section.Fields[i].ID == fieldID {
				current = i
				break
			}
		}
		moved := section.Fields[current]
		rest := append(section.Fields[:current:current], section.Fields[current+1:]...)

		if newIndex < 0 {
			newIndex = 0
		}
		if newIndex > len(rest) {
			newIndex = len(rest)
		}
		fields := make([]models.FormField, 0, len(rest)+1)
		fields = append(fields, rest[:newIndex]...)
		fields = append(fields, moved)
		fields = append(fields, rest[newIndex:]...)
		for i := range fields {
			fields[i].Order = i
		}
		section.Fields = fields
		return nil
	})
}

// AddSection appends a section. A negative order is replaced with
// max(existing)+1.
func (b *Builder) AddSection(section models.FormSection) error {
	return b.mutate(func(tpl *models.FormTemplate) error {
		if section.Order < 0 {
			max := -1
			for _, existing := range tpl.Sections {
				if existing.Order > max {
					max = existing.Order
				}
			}
			section.Order = max + 1
		}
		if section.Fields == nil {
			section.Fields = []models.FormField{}
		}
		tpl.Sections = append(tpl.Sections, section)
		return nil
	})
}

// SectionPatch is a partial section update.
type SectionPatch struct {
	Title       *string
	Description *string
	Order       *int
}

// UpdateSection merges the patch into the section.
func (b *Builder) UpdateSection(sectionID string, patch SectionPatch) error {
	return b.mutate(func(tpl *models.FormTemplate) error {
		section := tpl.SectionByID(sectionID)
		if section == nil {
			return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("section %q not found", sectionID))
		}
		if patch.Title != nil {
			section.Title = *patch.Title
		}
		if patch.Description != nil {
			section.Description = *patch.Description
		}
		if patch.Order != nil {
			section.Order = *patch.Order
		}
		return nil
	})
}

// DeleteSection removes the section together with the fields it owns.
func (b *Builder) DeleteSection(sectionID string) error {
	return b.mutate(func(tpl *models.FormTemplate) error {
		for i := range tpl.Sections {
			if tpl.Sections[i].ID == sectionID {
				tpl.Sections = append(tpl.Sections[:i], tpl.Sections[i+1:]...)
				return nil
			}
		}
		return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("section %q not found", sectionID))
	})
}
