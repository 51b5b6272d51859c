package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edumon/forms-api/internal/dto"
	"github.com/edumon/forms-api/internal/engine"
	appErrors "github.com/edumon/forms-api/pkg/errors"
	"github.com/edumon/forms-api/pkg/response"
)

type ingestionService interface {
	IngestRows(ctx context.Context, rows []engine.SourceRow) (*dto.IngestionSummary, error)
	IngestCSV(ctx context.Context, r io.Reader) (*dto.IngestionSummary, error)
}

// IngestionHandler exposes tabular template ingestion endpoints.
type IngestionHandler struct {
	service        ingestionService
	maxUploadBytes int64
}

// NewIngestionHandler builds a new handler.
func NewIngestionHandler(service ingestionService, maxUploadBytes int64) *IngestionHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 10 << 20
	}
	return &IngestionHandler{service: service, maxUploadBytes: maxUploadBytes}
}

// UploadCSV godoc
// @Summary Ingest form templates from a CSV upload
// @Tags Ingestion
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CSV source file"
// @Success 200 {object} response.Envelope
// @Router /forms/ingest/csv [post]
func (h *IngestionHandler) UploadCSV(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "missing csv file"))
		return
	}
	if fileHeader.Size > h.maxUploadBytes {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "upload exceeds size limit"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, http.StatusInternalServerError, "failed to open upload"))
		return
	}
	defer file.Close()

	summary, err := h.service.IngestCSV(c.Request.Context(), io.LimitReader(file, h.maxUploadBytes))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// IngestRows godoc
// @Summary Ingest form templates from pre-parsed rows
// @Tags Ingestion
// @Accept json
// @Produce json
// @Param payload body []engine.SourceRow true "Source rows"
// @Success 200 {object} response.Envelope
// @Router /forms/ingest [post]
func (h *IngestionHandler) IngestRows(c *gin.Context) {
	var rows []engine.SourceRow
	if err := c.ShouldBindJSON(&rows); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid rows payload"))
		return
	}
	summary, err := h.service.IngestRows(c.Request.Context(), rows)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}
