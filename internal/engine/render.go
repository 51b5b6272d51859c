package engine

import (
	"github.com/edumon/forms-api/internal/models"
)

// Resolver turns a translation key into display text. Identity for plain
// strings; supplied by the translation collaborator.
type Resolver func(text string) string

// RenderedOption is a resolved selectable choice.
type RenderedOption struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// RenderedField is the read-only projection a display surface consumes. It
// is the only view of a field a renderer may depend on.
type RenderedField struct {
	ID           string                  `json:"id"`
	Name         string                  `json:"name,omitempty"`
	Widget       models.WidgetKind       `json:"widget"`
	Label        string                  `json:"label"`
	Description  string                  `json:"description,omitempty"`
	Placeholder  string                  `json:"placeholder,omitempty"`
	DefaultValue interface{}             `json:"defaultValue,omitempty"`
	Constraints  *models.FieldValidation `json:"constraints,omitempty"`
	Options      []RenderedOption        `json:"options,omitempty"`
	Grid         *models.GridLayout      `json:"grid,omitempty"`
}

// RenderedSection groups resolved fields.
type RenderedSection struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Fields      []RenderedField `json:"fields"`
}

// RenderedForm is the visibility-filtered, translation-resolved view of a
// template for one value snapshot.
type RenderedForm struct {
	ID       string                  `json:"id"`
	Name     string                  `json:"name"`
	Category models.TemplateCategory `json:"category"`
	Sections []RenderedSection       `json:"sections"`
}

/// Render projects the template for the given value snapshot: hidden fields
// are dropped, labels resolved, widget kinds derived. A nil resolver is
// treated as identity.
func Render(tpl *models.FormTemplate, values map[string]interface{}, resolve Resolver) RenderedForm {
	if resolve == nil {
		resolve = func(text string) string { return text }
	}

	out := RenderedForm{
		ID:       tpl.ID,
		Name:     tpl.Name,
		Category: tpl.Category,
		Sections: make([]RenderedSection, 0, len(tpl.Sections)),
	}

	sorted := tpl.Clone()
	sorted.SortSections()

	for _, section := range sorted.Sections {
		rendered := RenderedSection{
			ID:          section.ID,
			Title:       section.Title,
			Description: section.Description,
			Fields:      make([]RenderedField, 0, len(section.Fields)),
		}
		for _, field := range section.Fields {
			if !IsVisible(field, values) {
				continue
			}
			rendered.Fields = append(rendered.Fields, renderField(field, resolve))
		}
		out.Sections = append(out.Sections, rendered)
	}
	return out
}

func renderField(field models.FormField, resolve Resolver) RenderedField {
	out := RenderedField{
		ID:           field.ID,
		Widget:       field.Type.Widget(),
		Label:        field.Label.Resolve(resolve),
		Description:  field.Description.Resolve(resolve),
		Placeholder:  field.Placeholder.Resolve(resolve),
		DefaultValue: field.DefaultValue,
		Constraints:  field.Validation.Clone(),
		Grid:         field.Grid.Clone(),
	}
	if field.Type.CarriesValue() {
		out.Name = field.Name
	}
	if len(field.Options) > 0 {
		out.Options = make([]RenderedOption, len(field.Options))
		for i, opt := range field.Options {
			out.Options[i] = RenderedOption{
				Label: opt.Label.Resolve(resolve),
				Value: opt.Value,
			}
		}
	}
	return out
}
