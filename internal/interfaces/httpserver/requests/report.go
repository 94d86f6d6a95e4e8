package requests

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"jan-server/services/report-api/internal/domain/report"
)

// PromptRequest asks for a report in free text.
type PromptRequest struct {
	Prompt       string        `json:"prompt" binding:"required" example:"ventas por categoria del mes pasado"`
	Format       report.Format `json:"format,omitempty" binding:"omitempty,oneof=pantalla pdf excel" example:"pantalla"`
	ForcePreview bool          `json:"force_preview,omitempty"`
}

// ToDomain converts the body into a service request for userID.
func (r PromptRequest) ToDomain(userID string) report.InterpretRequest {
	return report.InterpretRequest{
		Prompt:       r.Prompt,
		UserID:       userID,
		Format:       r.Format,
		ForcePreview: r.ForcePreview,
	}
}

// LabelRequest sets the reviewed intent of a logged prompt.
type LabelRequest struct {
	Label string `json:"label" binding:"required" example:"stock_bajo"`
}

// ReviewFilterFromQuery reads max_confidence and limit. Invalid values fall
// back to the service defaults.
func ReviewFilterFromQuery(c *gin.Context) report.ReviewFilter {
	var filter report.ReviewFilter
	if v, err := strconv.ParseFloat(c.Query("max_confidence"), 64); err == nil && v > 0 && v <= 1 {
		filter.MaxConfidence = v
	}
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 {
		filter.Limit = min(v, 1000)
	}
	return filter
}
