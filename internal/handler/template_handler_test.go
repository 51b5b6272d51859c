package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edumon/forms-api/internal/dto"
	"github.com/edumon/forms-api/internal/middleware"
	"github.com/edumon/forms-api/internal/models"
	appErrors "github.com/edumon/forms-api/pkg/errors"
)

type templateServiceMock struct {
	created    *dto.CreateTemplateRequest
	getResp    *models.FormTemplate
	getErr     error
	publishErr error
}

func (m *templateServiceMock) Create(ctx context.Context, req dto.CreateTemplateRequest, actor *models.JWTClaims) (*models.FormTemplate, error) {
	m.created = &req
	return &models.FormTemplate{ID: "tpl-1", Name: req.Name, Category: req.Category, Status: models.StatusDraft}, nil
}

func (m *templateServiceMock) Get(ctx context.Context, id string) (*models.FormTemplate, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.getResp, nil
}

func (m *templateServiceMock) List(ctx context.Context, filter dto.TemplateFilter) ([]dto.TemplateSummary, *models.Pagination, error) {
	return []dto.TemplateSummary{}, models.NewPagination(1, 20, 0), nil
}

func (m *templateServiceMock) Update(ctx context.Context, id string, req dto.UpdateTemplateRequest, actor *models.JWTClaims) (*models.FormTemplate, error) {
	return &models.FormTemplate{ID: id}, nil
}

func (m *templateServiceMock) Publish(ctx context.Context, id string, actor *models.JWTClaims) (*models.FormTemplate, error) {
	if m.publishErr != nil {
		return nil, m.publishErr
	}
	return &models.FormTemplate{ID: id, Status: models.StatusPublished}, nil
}

func (m *templateServiceMock) Archive(ctx context.Context, id string, actor *models.JWTClaims) (*models.FormTemplate, error) {
	return &models.FormTemplate{ID: id, Status: models.StatusArchived}, nil
}

func (m *templateServiceMock) Duplicate(ctx context.Context, id string, actor *models.JWTClaims) (*models.FormTemplate, error) {
	return &models.FormTemplate{ID: "tpl-copy", Status: models.StatusDraft}, nil
}

func (m *templateServiceMock) Delete(ctx context.Context, id string) error {
	return nil
}

func testContext(t *testing.T, method, target string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	var reader *bytes.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, target, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func TestTemplateHandlerCreate(t *testing.T) {
	mock := &templateServiceMock{}
	handler := NewTemplateHandler(mock)
	body, _ := json.Marshal(dto.CreateTemplateRequest{Name: "Reading Assessment", Category: models.CategoryObservation})
	c, w := testContext(t, http.MethodPost, "/forms", body)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "admin", Role: models.RoleAdmin})

	handler.Create(c)
	require.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, mock.created)
	assert.Equal(t, "Reading Assessment", mock.created.Name)
	assert.Contains(t, w.Body.String(), `"tpl-1"`)
}

func TestTemplateHandlerCreateInvalidBody(t *testing.T) {
	handler := NewTemplateHandler(&templateServiceMock{})
	c, w := testContext(t, http.MethodPost, "/forms", []byte(`not-json`))

	handler.Create(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTemplateHandlerGetNotFound(t *testing.T) {
	handler := NewTemplateHandler(&templateServiceMock{getErr: appErrors.Clone(appErrors.ErrNotFound, "form template not found")})
	c, w := testContext(t, http.MethodGet, "/forms/missing", nil)
	c.Params = gin.Params{{Key: "id", Value: "missing"}}

	handler.Get(c)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "form template not found")
}

func TestTemplateHandlerPublishConflict(t *testing.T) {
	handler := NewTemplateHandler(&templateServiceMock{publishErr: appErrors.Clone(appErrors.ErrConflict, "only draft templates can be published")})
	c, w := testContext(t, http.MethodPost, "/forms/tpl-1/publish", nil)
	c.Params = gin.Params{{Key: "id", Value: "tpl-1"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "admin", Role: models.RoleAdmin})

	handler.Publish(c)
	assert.Equal(t, http.StatusConflict, w.Code)
}
