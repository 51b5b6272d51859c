package engine

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/edumon/forms-api/internal/models"
	appErrors "github.com/edumon/forms-api/pkg/errors"
)

// SourceRow is one record of the tabular export the monitoring teams supply.
// Only ID, Order, Subject, Grade, Level, FieldTypeOne, TextLabel and
// Indicator feed the transformer; the remaining columns are carried for
// collaborators downstream.
type SourceRow struct {
	ID             string
	Order          string
	Subject        string
	Grade          string
	Level          string
	FieldTypeOne   string
	FieldTypeTwo   string
	FieldTypeThree string
	FieldTypeFour  string
	LabelType      string
	TextLabel      string
	Indicator      string
	Response       string
}

// TransformOptions tunes template synthesis. The yes/no pair for option-less
// radio questions is a convention of the assessment forms, not a general
// rule, so it stays injectable.
type TransformOptions struct {
	SubjectNames      map[string]string
	LevelTitles       map[string]string
	DefaultFieldType  models.FieldType
	DefaultOptionsFor func(models.FieldType) []models.FieldOption
}

// DefaultTransformOptions returns the conventions of the source domain: the
// two assessed subjects (Khmer literacy and numeracy), the five proficiency
// levels and the bilingual yes/no pair for radio indicators.
func DefaultTransformOptions() TransformOptions {
	return TransformOptions{
		SubjectNames: map[string]string{
			"KH":   "អំណាន ភាសាខ្មែរ - Khmer Reading",
			"MATH": "គណិតវិទ្យា - Numeracy",
		},
		LevelTitles: map[string]string{
			"LEVEL-1": "កម្រិត ១ Beginner",
			"LEVEL-2": "កម្រិត ២ Letter",
			"LEVEL-3": "កម្រិត ៣ Word",
			"LEVEL-4": "កម្រិត ៤ Paragraph",
			"LEVEL-5": "កម្រិត ៥ Story",
		},
		DefaultFieldType: models.FieldTypeRadio,
		DefaultOptionsFor: func(t models.FieldType) []models.FieldOption {
			if t != models.FieldTypeRadio {
				return nil
			}
			return []models.FieldOption{
				{Label: models.Literal("បាទ/ចាស Yes"), Value: "yes"},
				{Label: models.Literal("ទេ No"), Value: "no"},
			}
		},
	}
}

func (o TransformOptions) withDefaults() TransformOptions {
	defaults := DefaultTransformOptions()
	if o.SubjectNames == nil {
		o.SubjectNames = defaults.SubjectNames
	}
	if o.LevelTitles == nil {
		o.LevelTitles = defaults.LevelTitles
	}
	if o.DefaultFieldType == "" {
		o.DefaultFieldType = defaults.DefaultFieldType
	}
	if o.DefaultOptionsFor == nil {
		o.DefaultOptionsFor = defaults.DefaultOptionsFor
	}
	return o
}

// Transform builds one template per distinct (subject, grade) pair, in
// first-seen order, with one section per proficiency level. Any malformed
// row or duplicate field id aborts the whole batch: a partially ingested
// schema is worse than none.
func Transform(rows []SourceRow, opts TransformOptions) ([]*models.FormTemplate, error) {
	opts = opts.withDefaults()

	templates := make(map[string]*models.FormTemplate)
	order := make([]string, 0)
	seenFieldIDs := make(map[string]map[string]struct{})

	for _, row := range rows {
		key := row.Subject + "|" + row.Grade
		tpl, ok := templates[key]
		if !ok {
			tpl = newTemplateForRow(row, opts)
			templates[key] = tpl
			order = append(order, key)
			seenFieldIDs[key] = make(map[string]struct{})
		}

		section, err := locateSection(tpl, row, opts)
		if err != nil {
			return nil, err
		}

		if _, dup := seenFieldIDs[key][row.ID]; dup {
			return nil, appErrors.Clone(appErrors.ErrDuplicateFieldID,
				fmt.Sprintf("row %q repeats a field id already ingested", row.ID))
		}
		seenFieldIDs[key][row.ID] = struct{}{}

		field, err := fieldFromRow(row, opts)
		if err != nil {
			return nil, err
		}
		section.Fields = append(section.Fields, field)
	}

	result := make([]*models.FormTemplate, 0, len(order))
	for _, key := range order {
		tpl := templates[key]
		tpl.SortSections()
		result = append(result, tpl)
	}
	return result, nil
}

func newTemplateForRow(row SourceRow, opts TransformOptions) *models.FormTemplate {
	gradeSlug := strings.ToLower(strings.ReplaceAll(row.Grade, ",", "-"))
	name, ok := opts.SubjectNames[row.Subject]
	if !ok {
		name = row.Subject
	}

	grades := strings.Split(row.Grade, ",")
	for i := range grades {
		grades[i] = strings.TrimSpace(grades[i])
	}

	return &models.FormTemplate{
		ID:       "form_" + strings.ToLower(row.Subject) + "_" + gradeSlug,
		Name:     name,
		Category: models.CategoryObservation,
		Sections: []models.FormSection{},
		Settings: models.TemplateSettings{
			AllowSaveDraft:   true,
			RequireApproval:  false,
			EnableVersioning: true,
		},
		Metadata:       models.TemplateMetadata{Version: 1},
		Status:         models.StatusPublished,
		TargetGrades:   grades,
		TargetSubjects: []string{row.Subject},
	}
}

func locateSection(tpl *models.FormTemplate, row SourceRow, opts TransformOptions) (*models.FormSection, error) {
	id := "section_" + row.Level
	if section := tpl.SectionByID(id); section != nil {
		return section, nil
	}

	sectionOrder, err := levelOrder(row)
	if err != nil {
		return nil, err
	}
	title, ok := opts.LevelTitles[row.Level]
	if !ok {
		title = row.Level
	}
	tpl.Sections = append(tpl.Sections, models.FormSection{
		ID:     id,
		Title:  title,
		Fields: []models.FormField{},
		Order:  sectionOrder,
	})
	return &tpl.Sections[len(tpl.Sections)-1], nil
}

// levelOrder parses the numeric suffix of the level (LEVEL-2 -> 2). A level
// without a numeric suffix is a data error, never coerced to zero.
func levelOrder(row SourceRow) (int, error) {
	idx := strings.LastIndex(row.Level, "-")
	if idx < 0 || idx == len(row.Level)-1 {
		return 0, appErrors.Clone(appErrors.ErrMalformedRow,
			fmt.Sprintf("row %q has level %q without a numeric suffix", row.ID, row.Level))
	}
	n, err := strconv.Atoi(row.Level[idx+1:])
	if err != nil {
		return 0, appErrors.Clone(appErrors.ErrMalformedRow,
			fmt.Sprintf("row %q has level %q without a numeric suffix", row.ID, row.Level))
	}
	return n, nil
}

func fieldFromRow(row SourceRow, opts TransformOptions) (models.FormField, error) {
	fieldOrder, err := strconv.Atoi(strings.TrimSpace(row.Order))
	if err != nil {
		return models.FormField{}, appErrors.Clone(appErrors.ErrMalformedRow,
			fmt.Sprintf("row %q has non-numeric order %q", row.ID, row.Order))
	}

	fieldType, ok := models.ParseFieldType(row.FieldTypeOne)
	if !ok {
		fieldType = opts.DefaultFieldType
	}

	field := models.FormField{
		ID:          "field_" + row.ID,
		Type:        fieldType,
		Name:        "question_" + row.ID,
		Label:       models.Literal(row.Indicator),
		Description: models.Literal(row.TextLabel),
		Validation:  &models.FieldValidation{Required: true},
		Order:       fieldOrder,
	}
	if fieldType.SupportsOptions() {
		field.Options = opts.DefaultOptionsFor(fieldType)
	}
	return field, nil
}
