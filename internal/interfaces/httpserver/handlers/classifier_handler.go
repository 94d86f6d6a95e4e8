package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"jan-server/services/report-api/internal/infrastructure/metrics"
	"jan-server/services/report-api/internal/interfaces/httpserver/responses"
)

// ModelReloader swaps the serving intent model for the one on disk.
type ModelReloader interface {
	Reload() (loaded bool, err error)
}

// ClassifierHandler manages the statistical intent model.
type ClassifierHandler struct {
	reloader ModelReloader
	log      zerolog.Logger
}

func NewClassifierHandler(reloader ModelReloader, log zerolog.Logger) *ClassifierHandler {
	return &ClassifierHandler{reloader: reloader, log: log}
}

// Reload godoc
// @Summary      Reload the intent model
// @Description  Reads the trained model file again. A missing file leaves the service on rules only; a corrupt file keeps the current model.
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  responses.ReloadResponse
// @Failure      401  {object}  responses.ErrorResponse
// @Failure      403  {object}  responses.ErrorResponse
// @Failure      500  {object}  responses.ErrorResponse
// @Router       /v1/admin/classifier/reload [post]
func (h *ClassifierHandler) Reload(c *gin.Context) {
	loaded, err := h.reloader.Reload()
	if err != nil {
		h.log.Error().Err(err).Msg("reload intent model")
		c.AbortWithStatusJSON(http.StatusInternalServerError, responses.ErrorResponse{
			Error:   "MODEL_UNREADABLE",
			Message: "no se pudo cargar el modelo; se mantiene el anterior",
		})
		return
	}
	metrics.SetModelLoaded(loaded)
	h.log.Info().Bool("loaded", loaded).Msg("intent model reloaded")
	c.JSON(http.StatusOK, responses.ReloadResponse{Loaded: loaded})
}
