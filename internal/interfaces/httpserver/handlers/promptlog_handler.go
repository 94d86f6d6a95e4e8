package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"jan-server/services/report-api/internal/domain/report"
	"jan-server/services/report-api/internal/interfaces/httpserver/requests"
	"jan-server/services/report-api/internal/interfaces/httpserver/responses"
)

// PromptLogHandler exposes the prompt review queue.
type PromptLogHandler struct {
	service report.Service
}

func NewPromptLogHandler(service report.Service) *PromptLogHandler {
	return &PromptLogHandler{service: service}
}

// List godoc
// @Summary      List prompts awaiting review
// @Description  Prompts the model did not score or scored below max_confidence, newest first.
// @Tags         prompt-logs
// @Produce      json
// @Security     BearerAuth
// @Param        max_confidence  query     number   false  "Upper confidence bound (default 0.55)"
// @Param        limit           query     integer  false  "Maximum entries (default 200)"
// @Success      200             {object}  responses.PromptLogListResponse
// @Failure      401             {object}  responses.ErrorResponse
// @Failure      403             {object}  responses.ErrorResponse
// @Failure      500             {object}  responses.ErrorResponse
// @Router       /v1/prompt-logs [get]
func (h *PromptLogHandler) List(c *gin.Context) {
	entries, err := h.service.ReviewQueue(c.Request.Context(), requests.ReviewFilterFromQuery(c))
	if err != nil {
		responses.HandleError(c, err)
		return
	}
	if entries == nil {
		entries = []report.UsageEntry{}
	}
	c.JSON(http.StatusOK, responses.PromptLogListResponse{Data: entries, Total: len(entries)})
}

// Label godoc
// @Summary      Label a logged prompt
// @Description  Stores the reviewer's intent for a prompt; labeled prompts feed classifier retraining.
// @Tags         prompt-logs
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                 true  "Prompt log id"
// @Param        request  body      requests.LabelRequest  true  "Label"
// @Success      200      {object}  report.UsageEntry
// @Failure      400      {object}  responses.ErrorResponse
// @Failure      404      {object}  responses.ErrorResponse
// @Router       /v1/prompt-logs/{id}/label [patch]
func (h *PromptLogHandler) Label(c *gin.Context) {
	var req requests.LabelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleBindError(c, err)
		return
	}
	entry, err := h.service.LabelPrompt(c.Request.Context(), c.Param("id"), req.Label)
	if err != nil {
		responses.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}
