package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edumon/forms-api/internal/dto"
	"github.com/edumon/forms-api/internal/engine"
	appErrors "github.com/edumon/forms-api/pkg/errors"
	"github.com/edumon/forms-api/pkg/response"
)

type renderService interface {
	Render(ctx context.Context, templateID, locale string, values map[string]interface{}) (*engine.RenderedForm, error)
}

// RenderHandler exposes the presentation projection of published forms.
type RenderHandler struct {
	service renderService
}

// NewRenderHandler builds a new handler.
func NewRenderHandler(service renderService) *RenderHandler {
	return &RenderHandler{service: service}
}

// Render godoc
// @Summary Render a published form for display
// @Tags Render
// @Produce json
// @Param id path string true "Template id"
// @Param locale query string false "Locale for label resolution"
// @Success 200 {object} response.Envelope
// @Router /forms/{id}/render [get]
func (h *RenderHandler) Render(c *gin.Context) {
	form, err := h.service.Render(c.Request.Context(), c.Param("id"), c.Query("locale"), nil)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, form, nil)
}

// Preview godoc
// @Summary Render a form against an in-progress value snapshot
// @Tags Render
// @Accept json
// @Produce json
// @Param id path string true "Template id"
// @Param locale query string false "Locale for label resolution"
// @Param payload body dto.RenderPreviewRequest true "Value snapshot"
// @Success 200 {object} response.Envelope
// @Router /forms/{id}/render [post]
func (h *RenderHandler) Preview(c *gin.Context) {
	var req dto.RenderPreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid preview payload"))
		return
	}
	form, err := h.service.Render(c.Request.Context(), c.Param("id"), c.Query("locale"), req.Values)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, form, nil)
}
