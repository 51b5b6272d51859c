package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edumon/forms-api/internal/models"
	appErrors "github.com/edumon/forms-api/pkg/errors"
)

func TestRenderServiceRendersPublishedForm(t *testing.T) {
	repo := newTemplateRepoStub(publishedTemplate("form-1"))
	svc := NewRenderService(repo, nil, nil, 0, nil)

	rendered, err := svc.Render(context.Background(), "form-1", "", nil)
	require.NoError(t, err)

	assert.Equal(t, "form-1", rendered.ID)
	require.Len(t, rendered.Sections, 1)
	require.Len(t, rendered.Sections[0].Fields, 2)
	assert.Equal(t, "Can read letters?", rendered.Sections[0].Fields[0].Label)
}

func TestRenderServiceHidesDrafts(t *testing.T) {
	repo := newTemplateRepoStub(draftTemplate("form-1"))
	svc := NewRenderService(repo, nil, nil, 0, nil)

	_, err := svc.Render(context.Background(), "form-1", "", nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestRenderServiceCachesBlankRenders(t *testing.T) {
	repo := newTemplateRepoStub(publishedTemplate("form-1"))
	cache := newCacheStub()
	svc := NewRenderService(repo, nil, cache, time.Minute, nil)

	_, err := svc.Render(context.Background(), "form-1", "km", nil)
	require.NoError(t, err)
	assert.Contains(t, cache.store, "render:form-1:km")

	_, err = svc.Render(context.Background(), "form-1", "", map[string]interface{}{"can_read_letters": "yes"})
	require.NoError(t, err)
	assert.NotContains(t, cache.store, "render:form-1:raw")
}

func TestRenderServiceResolvesTranslations(t *testing.T) {
	tpl := publishedTemplate("form-1")
	field, _ := tpl.FieldByID("field_1")
	field.Label = models.TranslationKey("labels.can_read_letters")
	repo := newTemplateRepoStub(tpl)

	translations := NewTranslationService(&translationRepoStub{items: map[string]map[string]string{
		"km": {"labels.can_read_letters": "ចេះអានអក្សរ"},
	}}, nil, 0, nil)
	svc := NewRenderService(repo, translations, nil, 0, nil)

	rendered, err := svc.Render(context.Background(), "form-1", "km", nil)
	require.NoError(t, err)
	assert.Equal(t, "ចេះអានអក្សរ", rendered.Sections[0].Fields[0].Label)

	raw, err := svc.Render(context.Background(), "form-1", "", nil)
	require.NoError(t, err)
	assert.Equal(t, "labels.can_read_letters", raw.Sections[0].Fields[0].Label)
}
