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

type builderService interface {
	AddSection(ctx context.Context, templateID string, req dto.AddSectionRequest, actor *models.JWTClaims) (*models.FormTemplate, error)
	UpdateSection(ctx context.Context, templateID, sectionID string, req dto.UpdateSectionRequest, actor *models.JWTClaims) (*models.FormTemplate, error)
	DeleteSection(ctx context.Context, templateID, sectionID string, actor *models.JWTClaims) (*models.FormTemplate, error)
	AddField(ctx context.Context, templateID string, req dto.AddFieldRequest, actor *models.JWTClaims) (*models.FormTemplate, error)
	UpdateField(ctx context.Context, templateID, fieldID string, req dto.UpdateFieldRequest, actor *models.JWTClaims) (*models.FormTemplate, error)
	DeleteField(ctx context.Context, templateID, fieldID string, actor *models.JWTClaims) (*models.FormTemplate, error)
	ReorderField(ctx context.Context, templateID, fieldID string, req dto.ReorderFieldRequest, actor *models.JWTClaims) (*models.FormTemplate, error)
	AddOption(ctx context.Context, templateID, fieldID string, req dto.AddOptionRequest, actor *models.JWTClaims) (*models.FormTemplate, error)
	DeleteOption(ctx context.Context, templateID, fieldID, optionValue string, actor *models.JWTClaims) (*models.FormTemplate, error)
}

// BuilderHandler exposes structural template editing endpoints.
type BuilderHandler struct {
	service builderService
}

// NewBuilderHandler builds a new handler.
func NewBuilderHandler(service builderService) *BuilderHandler {
	return &BuilderHandler{service: service}
}

// AddSection godoc
// @Summary Add a section to a template
// @Tags Builder
// @Accept json
// @Produce json
// @Param id path string true "Template id"
// @Param payload body dto.AddSectionRequest true "Section payload"
// @Success 201 {object} response.Envelope
// @Router /forms/{id}/sections [post]
func (h *BuilderHandler) AddSection(c *gin.Context) {
	var req dto.AddSectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid section payload"))
		return
	}
	tpl, err := h.service.AddSection(c.Request.Context(), c.Param("id"), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, tpl)
}

// UpdateSection godoc
// @Summary Update a section
// @Tags Builder
// @Accept json
// @Produce json
// @Param id path string true "Template id"
// @Param sectionId path string true "Section id"
// @Param payload body dto.UpdateSectionRequest true "Section patch"
// @Success 200 {object} response.Envelope
// @Router /forms/{id}/sections/{sectionId} [put]
func (h *BuilderHandler) UpdateSection(c *gin.Context) {
	var req dto.UpdateSectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid section patch"))
		return
	}
	tpl, err := h.service.UpdateSection(c.Request.Context(), c.Param("id"), c.Param("sectionId"), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tpl, nil)
}

// DeleteSection godoc
// @Summary Delete a section and its fields
// @Tags Builder
// @Produce json
// @Param id path string true "Template id"
// @Param sectionId path string true "Section id"
// @Success 200 {object} response.Envelope
// @Router /forms/{id}/sections/{sectionId} [delete]
func (h *BuilderHandler) DeleteSection(c *gin.Context) {
	tpl, err := h.service.DeleteSection(c.Request.Context(), c.Param("id"), c.Param("sectionId"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tpl, nil)
}

// AddField godoc
// @Summary Add a field to a section
// @Tags Builder
// @Accept json
// @Produce json
// @Param id path string true "Template id"
// @Param payload body dto.AddFieldRequest true "Field payload"
// @Success 201 {object} response.Envelope
// @Router /forms/{id}/fields [post]
func (h *BuilderHandler) AddField(c *gin.Context) {
	var req dto.AddFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid field payload"))
		return
	}
	tpl, err := h.service.AddField(c.Request.Context(), c.Param("id"), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, tpl)
}

// UpdateField godoc
// @Summary Update a field
// @Tags Builder
// @Accept json
// @Produce json
// @Param id path string true "Template id"
// @Param fieldId path string true "Field id"
// @Param payload body dto.UpdateFieldRequest true "Field patch"
// @Success 200 {object} response.Envelope
// @Router /forms/{id}/fields/{fieldId} [put]
func (h *BuilderHandler) UpdateField(c *gin.Context) {
	var req dto.UpdateFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid field patch"))
		return
	}
	tpl, err := h.service.UpdateField(c.Request.Context(), c.Param("id"), c.Param("fieldId"), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tpl, nil)
}

// DeleteField godoc
// @Summary Delete a field
// @Tags Builder
// @Produce json
// @Param id path string true "Template id"
// @Param fieldId path string true "Field id"
// @Success 200 {object} response.Envelope
// @Router /forms/{id}/fields/{fieldId} [delete]
func (h *BuilderHandler) DeleteField(c *gin.Context) {
	tpl, err := h.service.DeleteField(c.Request.Context(), c.Param("id"), c.Param("fieldId"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tpl, nil)
}

// ReorderField godoc
// @Summary Move a field within its section
// @Tags Builder
// @Accept json
// @Produce json
// @Param id path string true "Template id"
// @Param fieldId path string true "Field id"
// @Param payload body dto.ReorderFieldRequest true "Reorder payload"
// @Success 200 {object} response.Envelope
// @Router /forms/{id}/fields/{fieldId}/reorder [post]
func (h *BuilderHandler) ReorderField(c *gin.Context) {
	var req dto.ReorderFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid reorder payload"))
		return
	}
	tpl, err := h.service.ReorderField(c.Request.Context(), c.Param("id"), c.Param("fieldId"), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tpl, nil)
}

// AddOption godoc
// @Summary Append an option to an option-bearing field
// @Tags Builder
// @Accept json
// @Produce json
// @Param id path string true "Template id"
// @Param fieldId path string true "Field id"
// @Param payload body dto.AddOptionRequest true "Option payload"
// @Success 201 {object} response.Envelope
// @Router /forms/{id}/fields/{fieldId}/options [post]
func (h *BuilderHandler) AddOption(c *gin.Context) {
	var req dto.AddOptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid option payload"))
		return
	}
	tpl, err := h.service.AddOption(c.Request.Context(), c.Param("id"), c.Param("fieldId"), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, tpl)
}

// DeleteOption godoc
// @Summary Remove an option by value
// @Tags Builder
// @Produce json
// @Param id path string true "Template id"
// @Param fieldId path string true "Field id"
// @Param value path string true "Option value"
// @Success 200 {object} response.Envelope
// @Router /forms/{id}/fields/{fieldId}/options/{value} [delete]
func (h *BuilderHandler) DeleteOption(c *gin.Context) {
	tpl, err := h.service.DeleteOption(c.Request.Context(), c.Param("id"), c.Param("fieldId"), c.Param("value"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tpl, nil)
}
