package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edumon/forms-api/internal/dto"
	"github.com/edumon/forms-api/internal/models"
	appErrors "github.com/edumon/forms-api/pkg/errors"
	"github.com/edumon/forms-api/pkg/response"
)

type templateService interface {
	Create(ctx context.Context, req dto.CreateTemplateRequest, actor *models.JWTClaims) (*models.FormTemplate, error)
	Get(ctx context.Context, id string) (*models.FormTemplate, error)
	List(ctx context.Context, filter dto.TemplateFilter) ([]dto.TemplateSummary, *models.Pagination, error)
	Update(ctx context.Context, id string, req dto.UpdateTemplateRequest, actor *models.JWTClaims) (*models.FormTemplate, error)
	Publish(ctx context.Context, id string, actor *models.JWTClaims) (*models.FormTemplate, error)
	Archive(ctx context.Context, id string, actor *models.JWTClaims) (*models.FormTemplate, error)
	Duplicate(ctx context.Context, id string, actor *models.JWTClaims) (*models.FormTemplate, error)
	Delete(ctx context.Context, id string) error
}

// TemplateHandler exposes form template lifecycle endpoints.
type TemplateHandler struct {
	service templateService
}

// NewTemplateHandler builds a new handler.
func NewTemplateHandler(service templateService) *TemplateHandler {
	return &TemplateHandler{service: service}
}

// List godoc
// @Summary List form templates
// @Tags Templates
// @Produce json
// @Param status query string false "Template status"
// @Param category query string false "Template category"
// @Param subject query string false "Target subject"
// @Param grade query string false "Target grade"
// @Param page query int false "Page number"
// @Param per_page query int false "Items per page"
// @Success 200 {object} response.Envelope
// @Router /forms [get]
func (h *TemplateHandler) List(c *gin.Context) {
	var filter dto.TemplateFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid listing filter"))
		return
	}
	items, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// Create godoc
// @Summary Create a draft form template
// @Tags Templates
// @Accept json
// @Produce json
// @Param payload body dto.CreateTemplateRequest true "Template payload"
// @Success 201 {object} response.Envelope
// @Router /forms [post]
func (h *TemplateHandler) Create(c *gin.Context) {
	var req dto.CreateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid template payload"))
		return
	}
	tpl, err := h.service.Create(c.Request.Context(), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, tpl)
}

// Get godoc
// @Summary Get a form template by id
// @Tags Templates
// @Produce json
// @Param id path string true "Template id"
// @Success 200 {object} response.Envelope
// @Router /forms/{id} [get]
func (h *TemplateHandler) Get(c *gin.Context) {
	tpl, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tpl, nil)
}

// Update godoc
// @Summary Update template attributes
// @Tags Templates
// @Accept json
// @Produce json
// @Param id path string true "Template id"
// @Param payload body dto.UpdateTemplateRequest true "Template patch"
// @Success 200 {object} response.Envelope
// @Router /forms/{id} [put]
func (h *TemplateHandler) Update(c *gin.Context) {
	var req dto.UpdateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid template patch"))
		return
	}
	tpl, err := h.service.Update(c.Request.Context(), c.Param("id"), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tpl, nil)
}

// Publish godoc
// @Summary Publish a draft template
// @Tags Templates
// @Produce json
// @Param id path string true "Template id"
// @Success 200 {object} response.Envelope
// @Router /forms/{id}/publish [post]
func (h *TemplateHandler) Publish(c *gin.Context) {
	tpl, err := h.service.Publish(c.Request.Context(), c.Param("id"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tpl, nil)
}

// Archive godoc
// @Summary Archive a template
// @Tags Templates
// @Produce json
// @Param id path string true "Template id"
// @Success 200 {object} response.Envelope
// @Router /forms/{id}/archive [post]
func (h *TemplateHandler) Archive(c *gin.Context) {
	tpl, err := h.service.Archive(c.Request.Context(), c.Param("id"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tpl, nil)
}

// Duplicate godoc
// @Summary Duplicate a template as a new draft
// @Tags Templates
// @Produce json
// @Param id path string true "Template id"
// @Success 201 {object} response.Envelope
// @Router /forms/{id}/duplicate [post]
func (h *TemplateHandler) Duplicate(c *gin.Context) {
	tpl, err := h.service.Duplicate(c.Request.Context(), c.Param("id"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, tpl)
}

// Delete godoc
// @Summary Delete a template and its submissions
// @Tags Templates
// @Param id path string true "Template id"
// @Success 204
// @Router /forms/{id} [delete]
func (h *TemplateHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
