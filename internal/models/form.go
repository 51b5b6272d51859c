package models

import (
	"encoding/json"
	"sort"
	"strings"
	"time"
)

// FieldType is the closed enumeration of supported field kinds. Section and
// divider are layout-only pseudo-fields and never carry a submission value.
type FieldType string

const (
	FieldTypeText        FieldType = "text"
	FieldTypeNumber      FieldType = "number"
	FieldTypeEmail       FieldType = "email"
	FieldTypeTel         FieldType = "tel"
	FieldTypeTextarea    FieldType = "textarea"
	FieldTypeSelect      FieldType = "select"
	FieldTypeMultiselect FieldType = "multiselect"
	FieldTypeCheckbox    FieldType = "checkbox"
	FieldTypeRadio       FieldType = "radio"
	FieldTypeDate        FieldType = "date"
	FieldTypeTime        FieldType = "time"
	FieldTypeDatetime    FieldType = "datetime"
	FieldTypeFile        FieldType = "file"
	FieldTypeRating      FieldType = "rating"
	FieldTypeScale       FieldType = "scale"
	FieldTypeSection     FieldType = "section"
	FieldTypeDivider     FieldType = "divider"
)

// ParseFieldType maps a raw hint onto a FieldType.
func ParseFieldType(raw string) (FieldType, bool) {
	t := FieldType(strings.ToLower(strings.TrimSpace(raw)))
	if t.Valid() {
		return t, true
	}
	return "", false
}

// Valid reports whether the value belongs to the closed enumeration.
func (t FieldType) Valid() bool {
	switch t {
	case FieldTypeText, FieldTypeNumber, FieldTypeEmail, FieldTypeTel,
		FieldTypeTextarea, FieldTypeSelect, FieldTypeMultiselect,
		FieldTypeCheckbox, FieldTypeRadio, FieldTypeDate, FieldTypeTime,
		FieldTypeDatetime, FieldTypeFile, FieldTypeRating, FieldTypeScale,
		FieldTypeSection, FieldTypeDivider:
		return true
	}
	return false
}

// CarriesValue reports whether the type holds a submission value.
func (t FieldType) CarriesValue() bool {
	switch t {
	case FieldTypeSection, FieldTypeDivider:
		return false
	}
	return true
}

// SupportsOptions reports whether the type carries an option set.
func (t FieldType) SupportsOptions() bool {
	switch t {
	case FieldTypeSelect, FieldTypeMultiselect, FieldTypeCheckbox, FieldTypeRadio:
		return true
	}
	return false
}

// WidgetKind names the control a display surface should render for a field.
type WidgetKind string

const (
	WidgetInput          WidgetKind = "input"
	WidgetNumberInput    WidgetKind = "number-input"
	WidgetTextarea       WidgetKind = "textarea"
	WidgetSelect         WidgetKind = "select"
	WidgetMultiSelect    WidgetKind = "multi-select"
	WidgetCheckboxGroup  WidgetKind = "checkbox-group"
	WidgetRadioGroup     WidgetKind = "radio-group"
	WidgetDatePicker     WidgetKind = "date-picker"
	WidgetTimePicker     WidgetKind = "time-picker"
	WidgetDatetimePicker WidgetKind = "datetime-picker"
	WidgetFileUpload     WidgetKind = "file-upload"
	WidgetRate           WidgetKind = "rate"
	WidgetSlider         WidgetKind = "slider"
	WidgetSectionHeading WidgetKind = "section-heading"
	WidgetDivider        WidgetKind = "divider"
)

// Widget is the single exhaustive type-to-widget dispatcher. Adding a field
// type without extending this switch yields the zero WidgetKind, which the
// render layer rejects.
func (t FieldType) Widget() WidgetKind {
	switch t {
	case FieldTypeText, FieldTypeEmail, FieldTypeTel:
		return WidgetInput
	case FieldTypeNumber:
		return WidgetNumberInput
	case FieldTypeTextarea:
		return WidgetTextarea
	case FieldTypeSelect:
		return WidgetSelect
	case FieldTypeMultiselect:
		return WidgetMultiSelect
	case FieldTypeCheckbox:
		return WidgetCheckboxGroup
	case FieldTypeRadio:
		return WidgetRadioGroup
	case FieldTypeDate:
		return WidgetDatePicker
	case FieldTypeTime:
		return WidgetTimePicker
	case FieldTypeDatetime:
		return WidgetDatetimePicker
	case FieldTypeFile:
		return WidgetFileUpload
	case FieldTypeRating:
		return WidgetRate
	case FieldTypeScale:
		return WidgetSlider
	case FieldTypeSection:
		return WidgetSectionHeading
	case FieldTypeDivider:
		return WidgetDivider
	}
	return ""
}

// LabelKind distinguishes literal display text from translation keys.
type LabelKind uint8

const (
	LabelLiteral LabelKind = iota
	LabelKey
)

// LabelRef is an authored label: either literal text shown verbatim or a
// dictionary key resolved by a translation resolver. The variant is fixed at
// authoring time; the dotted-key heuristic only applies when decoding
// external JSON, where the distinction was never recorded.
type LabelRef struct {
	Text string
	Kind LabelKind
}

// Literal wraps display text that is rendered as-is.
func Literal(text string) LabelRef {
	return LabelRef{Text: text}
}

// TranslationKey wraps a dictionary lookup key.
func TranslationKey(key string) LabelRef {
	return LabelRef{Text: key, Kind: LabelKey}
}

// ClassifyLabel applies the legacy heuristic: a string containing a period
// and no whitespace is treated as a translation key.
func ClassifyLabel(raw string) LabelRef {
	if strings.Contains(raw, ".") && !strings.ContainsAny(raw, " \t\n") {
		return TranslationKey(raw)
	}
	return Literal(raw)
}

// IsKey reports whether the label is a translation key.
func (l LabelRef) IsKey() bool { return l.Kind == LabelKey }

// IsZero reports whether the label is unset.
func (l LabelRef) IsZero() bool { return l.Text == "" }

// Resolve applies the resolver for key labels and returns literals verbatim.
func (l LabelRef) Resolve(resolve func(string) string) string {
	if l.IsKey() && resolve != nil {
		return resolve(l.Text)
	}
	return l.Text
}

// MarshalJSON serialises the label as its plain string form.
func (l LabelRef) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.Text)
}

// UnmarshalJSON re-classifies the string via the heuristic.
func (l *LabelRef) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*l = ClassifyLabel(raw)
	return nil
}

// CustomValidator inspects a candidate value and returns a user-facing error
// when it rejects the value. Not serialised; attached programmatically.
type CustomValidator func(value interface{}) error

// FieldValidation holds the optional constraint set for a field. Min/Max are
// numeric bounds (number, scale); MinLength/MaxLength are string bounds
// (text, textarea).
type FieldValidation struct {
	Required  bool            `json:"required,omitempty"`
	Min       *float64        `json:"min,omitempty"`
	Max       *float64        `json:"max,omitempty"`
	MinLength *int            `json:"minLength,omitempty"`
	MaxLength *int            `json:"maxLength,omitempty"`
	Pattern   string          `json:"pattern,omitempty"`
	Custom    CustomValidator `json:"-"`
}

// Clone returns a deep copy.
func (v *FieldValidation) Clone() *FieldValidation {
	if v == nil {
		return nil
	}
	clone := *v
	clone.Min = cloneFloat(v.Min)
	clone.Max = cloneFloat(v.Max)
	clone.MinLength = cloneInt(v.MinLength)
	clone.MaxLength = cloneInt(v.MaxLength)
	return &clone
}

// FieldOption is one selectable choice; Value is unique within the field.
type FieldOption struct {
	Label LabelRef `json:"label"`
	Value string   `json:"value"`
}

// ConditionalOperator compares a referenced field's value against a constant.
type ConditionalOperator string

const (
	OperatorEquals      ConditionalOperator = "equals"
	OperatorNotEquals   ConditionalOperator = "notEquals"
	OperatorContains    ConditionalOperator = "contains"
	OperatorGreaterThan ConditionalOperator = "greaterThan"
	OperatorLessThan    ConditionalOperator = "lessThan"
)

// Valid reports whether the operator is known.
func (o ConditionalOperator) Valid() bool {
	switch o {
	case OperatorEquals, OperatorNotEquals, OperatorContains, OperatorGreaterThan, OperatorLessThan:
		return true
	}
	return false
}

// ConditionalRule gates a field's visibility on another field's current
// value. Field holds the referenced field's submission name.
type ConditionalRule struct {
	Field    string              `json:"field"`
	Operator ConditionalOperator `json:"operator"`
	Value    interface{}         `json:"value"`
}

// Clone returns a copy.
func (r *ConditionalRule) Clone() *ConditionalRule {
	if r == nil {
		return nil
	}
	clone := *r
	return &clone
}

// GridLayout carries per-breakpoint column spans on a 24-column grid.
type GridLayout struct {
	XS int `json:"xs,omitempty"`
	SM int `json:"sm,omitempty"`
	MD int `json:"md,omitempty"`
	LG int `json:"lg,omitempty"`
}

// Valid reports whether every set span is within 1..24.
func (g GridLayout) Valid() bool {
	for _, span := range []int{g.XS, g.SM, g.MD, g.LG} {
		if span < 0 || span > 24 {
			return false
		}
	}
	return true
}

// Clone returns a copy.
func (g *GridLayout) Clone() *GridLayout {
	if g == nil {
		return nil
	}
	clone := *g
	return &clone
}

// FormField is a single input definition. ID is unique within the template,
// Name is the submission-payload key and unique within the template, Order
// defines display sequence within the owning section.
type FormField struct {
	ID           string           `json:"id"`
	Type         FieldType        `json:"type"`
	Name         string           `json:"name"`
	Label        LabelRef         `json:"label"`
	Description  LabelRef         `json:"description,omitempty"`
	Placeholder  LabelRef         `json:"placeholder,omitempty"`
	DefaultValue interface{}      `json:"defaultValue,omitempty"`
	Options      []FieldOption    `json:"options,omitempty"`
	Validation   *FieldValidation `json:"validation,omitempty"`
	Conditional  *ConditionalRule `json:"conditional,omitempty"`
	Grid         *GridLayout      `json:"grid,omitempty"`
	Order        int              `json:"order"`
}

// Clone returns a deep copy.
func (f FormField) Clone() FormField {
	clone := f
	if f.Options != nil {
		clone.Options = make([]FieldOption, len(f.Options))
		copy(clone.Options, f.Options)
	}
	clone.Validation = f.Validation.Clone()
	clone.Conditional = f.Conditional.Clone()
	clone.Grid = f.Grid.Clone()
	return clone
}

// FormSection is an ordered group of fields ("level"/"page"). Order is unique
// within the template; Fields need not be stored pre-sorted.
type FormSection struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	Fields      []FormField `json:"fields"`
	Order       int         `json:"order"`
}

// Clone returns a deep copy.
func (s FormSection) Clone() FormSection {
	clone := s
	clone.Fields = make([]FormField, len(s.Fields))
	for i, f := range s.Fields {
		clone.Fields[i] = f.Clone()
	}
	return clone
}

// SortFields orders fields by ascending Order.
func (s *FormSection) SortFields() {
	sort.SliceStable(s.Fields, func(i, j int) bool {
		return s.Fields[i].Order < s.Fields[j].Order
	})
}

// MaxFieldOrder returns the highest field order, or -1 when empty.
func (s *FormSection) MaxFieldOrder() int {
	max := -1
	for _, f := range s.Fields {
		if f.Order > max {
			max = f.Order
		}
	}
	return max
}

// TemplateCategory classifies a template's purpose.
type TemplateCategory string

const (
	CategoryObservation TemplateCategory = "observation"
	CategoryEvaluation  TemplateCategory = "evaluation"
	CategorySurvey      TemplateCategory = "survey"
	CategoryChecklist   TemplateCategory = "checklist"
	CategoryCustom      TemplateCategory = "custom"
)

// Valid reports whether the category is known.
func (c TemplateCategory) Valid() bool {
	switch c {
	case CategoryObservation, CategoryEvaluation, CategorySurvey, CategoryChecklist, CategoryCustom:
		return true
	}
	return false
}

// TemplateStatus is the template lifecycle state.
type TemplateStatus string

const (
	StatusDraft     TemplateStatus = "draft"
	StatusPublished TemplateStatus = "published"
	StatusArchived  TemplateStatus = "archived"
)

// Valid reports whether the status is known.
func (s TemplateStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusPublished, StatusArchived:
		return true
	}
	return false
}

// TemplateSettings governs submission behaviour.
type TemplateSettings struct {
	AllowSaveDraft   bool       `json:"allowSaveDraft"`
	RequireApproval  bool       `json:"requireApproval"`
	AllowAnonymous   bool       `json:"allowAnonymous"`
	EnableVersioning bool       `json:"enableVersioning"`
	MaxSubmissions   *int       `json:"maxSubmissions,omitempty"`
	ValidFrom        *time.Time `json:"validFrom,omitempty"`
	ValidUntil       *time.Time `json:"validUntil,omitempty"`
}

// TemplateMetadata records authorship and lifecycle timestamps.
type TemplateMetadata struct {
	Version     int        `json:"version"`
	CreatedBy   string     `json:"createdBy"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedBy   *string    `json:"updatedBy,omitempty"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
	ArchivedAt  *time.Time `json:"archivedAt,omitempty"`
}

// FormTemplate is a complete form definition. Sections and fields are owned
// by containment; there is no sharing across templates.
type FormTemplate struct {
	ID             string           `json:"id"`
	Name           string           `json:"name"`
	Description    string           `json:"description,omitempty"`
	Category       TemplateCategory `json:"category"`
	Sections       []FormSection    `json:"sections"`
	Settings       TemplateSettings `json:"settings"`
	Metadata       TemplateMetadata `json:"metadata"`
	Status         TemplateStatus   `json:"status"`
	TargetRoles    []string         `json:"targetRoles,omitempty"`
	TargetGrades   []string         `json:"targetGrades,omitempty"`
	TargetSubjects []string         `json:"targetSubjects,omitempty"`
}

// Clone returns a deep copy.
func (t *FormTemplate) Clone() *FormTemplate {
	if t == nil {
		return nil
	}
	clone := *t
	clone.Sections = make([]FormSection, len(t.Sections))
	for i, s := range t.Sections {
		clone.Sections[i] = s.Clone()
	}
	clone.TargetRoles = cloneStrings(t.TargetRoles)
	clone.TargetGrades = cloneStrings(t.TargetGrades)
	clone.TargetSubjects = cloneStrings(t.TargetSubjects)
	return &clone
}

// SortSections orders sections by Order and each section's fields likewise.
func (t *FormTemplate) SortSections() {
	sort.SliceStable(t.Sections, func(i, j int) bool {
		return t.Sections[i].Order < t.Sections[j].Order
	})
	for i := range t.Sections {
		t.Sections[i].SortFields()
	}
}

// SectionByID returns the section with the given id, or nil.
func (t *FormTemplate) SectionByID(id string) *FormSection {
	for i := range t.Sections {
		if t.Sections[i].ID == id {
			return &t.Sections[i]
		}
	}
	return nil
}

// FieldByID returns the field and its owning section, or nils.
func (t *FormTemplate) FieldByID(id string) (*FormField, *FormSection) {
	for i := range t.Sections {
		for j := range t.Sections[i].Fields {
			if t.Sections[i].Fields[j].ID == id {
				return &t.Sections[i].Fields[j], &t.Sections[i]
			}
		}
	}
	return nil, nil
}

// FieldByName returns the field with the given submission name, or nil.
func (t *FormTemplate) FieldByName(name string) *FormField {
	for i := range t.Sections {
		for j := range t.Sections[i].Fields {
			if t.Sections[i].Fields[j].Name == name {
				return &t.Sections[i].Fields[j]
			}
		}
	}
	return nil
}

// Editable reports whether structural mutation is permitted: drafts always
// are; once published, only templates without the approval workflow.
func (t *FormTemplate) Editable() bool {
	if t.Status == StatusDraft {
		return true
	}
	return t.Status == StatusPublished && !t.Settings.RequireApproval
}

func cloneStrings(src []string) []string {
	if src == nil {
		return nil
	}
	dst := make([]string, len(src))
	copy(dst, src)
	return dst
}

func cloneFloat(src *float64) *float64 {
	if src == nil {
		return nil
	}
	v := *src
	return &v
}

func cloneInt(src *int) *int {
	if src == nil {
		return nil
	}
	v := *src
	return &v
}
