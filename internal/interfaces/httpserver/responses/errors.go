package responses

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"jan-server/services/report-api/internal/domain/report"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error" example:"INVALID_DATE"`
	Message string `json:"message" example:"fecha inválida: 31/02/2025"`
}

// HandleError maps domain errors to HTTP statuses. Only input errors carry
// their message to the caller.
func HandleError(c *gin.Context, err error) {
	if inputErr, ok := report.AsInputError(err); ok {
		status := http.StatusBadRequest
		if inputErr.Code == report.CodeProductNotFound {
			status = http.StatusNotFound
		}
		c.AbortWithStatusJSON(status, ErrorResponse{Error: inputErr.Code, Message: inputErr.Message})
		return
	}
	if errors.Is(err, report.ErrUsageEntryNotFound) {
		c.AbortWithStatusJSON(http.StatusNotFound, ErrorResponse{Error: "NOT_FOUND", Message: "registro no encontrado"})
		return
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Error: "INTERNAL", Message: "no se pudo generar el reporte"})
}

// HandleBindError reports a malformed request body.
func HandleBindError(c *gin.Context, err error) {
	_ = c.Error(err).SetType(gin.ErrorTypeBind)
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: "INVALID_REQUEST", Message: err.Error()})
}
