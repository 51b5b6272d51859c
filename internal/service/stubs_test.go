package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/edumon/forms-api/internal/dto"
	"github.com/edumon/forms-api/internal/models"
)

type templateRepoStub struct {
	items map[string]*models.FormTemplate
	err   error
}

func newTemplateRepoStub(tpls ...*models.FormTemplate) *templateRepoStub {
	stub := &templateRepoStub{items: make(map[string]*models.FormTemplate)}
	for _, tpl := range tpls {
		stub.items[tpl.ID] = tpl.Clone()
	}
	return stub
}

func (s *templateRepoStub) Create(ctx context.Context, tpl *models.FormTemplate) error {
	if s.err != nil {
		return s.err
	}
	s.items[tpl.ID] = tpl.Clone()
	return nil
}

func (s *templateRepoStub) FindByID(ctx context.Context, id string) (*models.FormTemplate, error) {
	if s.err != nil {
		return nil, s.err
	}
	if tpl, ok := s.items[id]; ok {
		return tpl.Clone(), nil
	}
	return nil, sql.ErrNoRows
}

func (s *templateRepoStub) List(ctx context.Context, filter dto.TemplateFilter) ([]*models.FormTemplate, int, error) {
	if s.err != nil {
		return nil, 0, s.err
	}
	result := make([]*models.FormTemplate, 0, len(s.items))
	for _, tpl := range s.items {
		result = append(result, tpl.Clone())
	}
	return result, len(result), nil
}

func (s *templateRepoStub) Update(ctx context.Context, tpl *models.FormTemplate) error {
	if s.err != nil {
		return s.err
	}
	if _, ok := s.items[tpl.ID]; !ok {
		return sql.ErrNoRows
	}
	s.items[tpl.ID] = tpl.Clone()
	return nil
}

func (s *templateRepoStub) Delete(ctx context.Context, id string) error {
	if s.err != nil {
		return s.err
	}
	if _, ok := s.items[id]; !ok {
		return sql.ErrNoRows
	}
	delete(s.items, id)
	return nil
}

func (s *templateRepoStub) BulkUpsert(ctx context.Context, tpls []*models.FormTemplate) error {
	if s.err != nil {
		return s.err
	}
	for _, tpl := range tpls {
		s.items[tpl.ID] = tpl.Clone()
	}
	return nil
}

type submissionRepoStub struct {
	items map[string]*models.FormSubmission
	err   error
}

func newSubmissionRepoStub() *submissionRepoStub {
	return &submissionRepoStub{items: make(map[string]*models.FormSubmission)}
}

func (s *submissionRepoStub) Create(ctx context.Context, sub *models.FormSubmission) error {
	if s.err != nil {
		return s.err
	}
	clone := *sub
	s.items[sub.ID] = &clone
	return nil
}

func (s *submissionRepoStub) FindByID(ctx context.Context, id string) (*models.FormSubmission, error) {
	if s.err != nil {
		return nil, s.err
	}
	if sub, ok := s.items[id]; ok {
		clone := *sub
		return &clone, nil
	}
	return nil, sql.ErrNoRows
}

func (s *submissionRepoStub) ListByForm(ctx context.Context, formID string, filter dto.SubmissionFilter) ([]models.FormSubmission, int, error) {
	if s.err != nil {
		return nil, 0, s.err
	}
	var result []models.FormSubmission
	for _, sub := range s.items {
		if sub.FormID != formID {
			continue
		}
		if filter.Status != "" && sub.Status != filter.Status {
			continue
		}
		result = append(result, *sub)
	}
	return result, len(result), nil
}

func (s *submissionRepoStub) CountByForm(ctx context.Context, formID string) (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	count := 0
	for _, sub := range s.items {
		if sub.FormID == formID {
			count++
		}
	}
	return count, nil
}

func (s *submissionRepoStub) Update(ctx context.Context, sub *models.FormSubmission) error {
	if s.err != nil {
		return s.err
	}
	if _, ok := s.items[sub.ID]; !ok {
		return sql.ErrNoRows
	}
	clone := *sub
	s.items[sub.ID] = &clone
	return nil
}

func (s *submissionRepoStub) DeleteByForm(ctx context.Context, formID string) error {
	if s.err != nil {
		return s.err
	}
	for id, sub := range s.items {
		if sub.FormID == formID {
			delete(s.items, id)
		}
	}
	return nil
}

type cacheStub struct {
	store       map[string]interface{}
	invalidated []string
}

func newCacheStub() *cacheStub {
	return &cacheStub{store: make(map[string]interface{})}
}

func (s *cacheStub) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	_, ok := s.store[key]
	return ok, nil
}

func (s *cacheStub) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	s.store[key] = value
	return nil
}

func (s *cacheStub) Invalidate(ctx context.Context, pattern string) error {
	s.invalidated = append(s.invalidated, pattern)
	return nil
}

type translationRepoStub struct {
	items map[string]map[string]string
	err   error
}

func (s *translationRepoStub) ListByLocale(ctx context.Context, locale string) ([]models.Translation, error) {
	if s.err != nil {
		return nil, s.err
	}
	var result []models.Translation
	for key, text := range s.items[locale] {
		result = append(result, models.Translation{Key: key, Locale: locale, Text: text})
	}
	return result, nil
}

func (s *translationRepoStub) Upsert(ctx context.Context, tr *models.Translation) error {
	if s.err != nil {
		return s.err
	}
	if s.items == nil {
		s.items = make(map[string]map[string]string)
	}
	if s.items[tr.Locale] == nil {
		s.items[tr.Locale] = make(map[string]string)
	}
	s.items[tr.Locale][tr.Key] = tr.Text
	return nil
}

func (s *translationRepoStub) BulkUpsert(ctx context.Context, items []models.Translation) error {
	for i := range items {
		if err := s.Upsert(ctx, &items[i]); err != nil {
			return err
		}
	}
	return nil
}

func draftTemplate(id string) *models.FormTemplate {
	return &models.FormTemplate{
		ID:       id,
		Name:     "Reading Assessment",
		Category: models.CategoryObservation,
		Status:   models.StatusDraft,
		Sections: []models.FormSection{
			{
				ID:    "section_LEVEL-1",
				Title: "Beginner",
				Order: 1,
				Fields: []models.FormField{
					{
						ID:         "field_1",
						Name:       "can_read_letters",
						Type:       models.FieldTypeRadio,
						Label:      models.Literal("Can read letters?"),
						Validation: &models.FieldValidation{Required: true},
						Options: []models.FieldOption{
							{Label: models.Literal("Yes"), Value: "yes"},
							{Label: models.Literal("No"), Value: "no"},
						},
						Order: 1,
					},
					{
						ID:    "field_2",
						Name:  "letter_notes",
						Type:  models.FieldTypeTextarea,
						Label: models.Literal("Notes"),
						Order: 2,
					},
				},
			},
		},
		Settings: models.TemplateSettings{AllowSaveDraft: true},
		Metadata: models.TemplateMetadata{Version: 1, CreatedAt: time.Now().UTC()},
	}
}

func publishedTemplate(id string) *models.FormTemplate {
	tpl := draftTemplate(id)
	tpl.Status = models.StatusPublished
	return tpl
}
