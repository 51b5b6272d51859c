package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edumon/forms-api/internal/models"
	"github.com/edumon/forms-api/pkg/response"
)

type metricsSource interface {
	Snapshot() models.SystemMetrics
}

// OpsHandler exposes operational introspection endpoints.
type OpsHandler struct {
	metrics metricsSource
}

// NewOpsHandler builds a new handler.
func NewOpsHandler(metrics metricsSource) *OpsHandler {
	return &OpsHandler{metrics: metrics}
}

// Metrics godoc
// @Summary Get an aggregate metrics snapshot
// @Tags Operations
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /ops/metrics [get]
func (h *OpsHandler) Metrics(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.metrics.Snapshot(), nil)
}
