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

type translationService interface {
	Dictionary(ctx context.Context, locale string) (map[string]string, error)
	Upsert(ctx context.Context, tr *models.Translation) error
	BulkUpsert(ctx context.Context, items []models.Translation) error
}

// TranslationHandler exposes the label dictionary endpoints.
type TranslationHandler struct {
	service translationService
}

// NewTranslationHandler builds a new handler.
func NewTranslationHandler(service translationService) *TranslationHandler {
	return &TranslationHandler{service: service}
}

// Dictionary godoc
// @Summary Get the label dictionary for a locale
// @Tags Translations
// @Produce json
// @Param locale path string true "Locale code"
// @Success 200 {object} response.Envelope
// @Router /translations/{locale} [get]
func (h *TranslationHandler) Dictionary(c *gin.Context) {
	dict, err := h.service.Dictionary(c.Request.Context(), c.Param("locale"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dict, nil)
}

// Upsert godoc
// @Summary Create or replace one dictionary entry
// @Tags Translations
// @Accept json
// @Produce json
// @Param payload body dto.UpsertTranslationRequest true "Translation payload"
// @Success 200 {object} response.Envelope
// @Router /translations [put]
func (h *TranslationHandler) Upsert(c *gin.Context) {
	var req dto.UpsertTranslationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid translation payload"))
		return
	}
	tr := &models.Translation{Key: req.Key, Locale: req.Locale, Text: req.Text}
	if err := h.service.Upsert(c.Request.Context(), tr); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tr, nil)
}

// BulkUpsert godoc
// @Summary Create or replace a batch of dictionary entries
// @Tags Translations
// @Accept json
// @Produce json
// @Param payload body dto.BulkUpsertTranslationsRequest true "Translations payload"
// @Success 200 {object} response.Envelope
// @Router /translations/bulk [put]
func (h *TranslationHandler) BulkUpsert(c *gin.Context) {
	var req dto.BulkUpsertTranslationsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid translations payload"))
		return
	}
	items := make([]models.Translation, len(req.Items))
	for i, item := range req.Items {
		items[i] = models.Translation{Key: item.Key, Locale: item.Locale, Text: item.Text}
	}
	if err := h.service.BulkUpsert(c.Request.Context(), items); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"updated": len(items)}, nil)
}
