package v1

import (
	"github.com/gin-gonic/gin"

	"jan-server/services/report-api/internal/domain/report"
	"jan-server/services/report-api/internal/interfaces/httpserver/handlers"
	middleware "jan-server/services/report-api/internal/interfaces/httpserver/middlewares"
)

// Routes encapsulates versioned route registration.
type Routes struct {
	handlers *handlers.Provider
}

// NewRoutes builds the v1 route registrar.
func NewRoutes(handlerProvider *handlers.Provider) *Routes {
	return &Routes{
		handlers: handlerProvider,
	}
}

// Register attaches all v1 routes under /v1 prefix. The caller installs the
// auth middleware first.
func (r *Routes) Register(router gin.IRouter) {
	group := router.Group("/v1")

	reports := group.Group("/reports", middleware.RequireCapability(report.CapabilityGenerate))
	reports.POST("/prompt", r.handlers.Report.Prompt)
	reports.POST("/parse", r.handlers.Report.Parse)
	reports.POST("/execute", r.handlers.Report.Execute)
	reports.GET("/registry", r.handlers.Report.Registry)

	logs := group.Group("/prompt-logs", middleware.RequireCapability(report.CapabilityTrain))
	logs.GET("", r.handlers.PromptLog.List)
	logs.PATCH("/:id/label", r.handlers.PromptLog.Label)

	admin := group.Group("/admin", middleware.RequireCapability(report.CapabilityTrain))
	admin.POST("/classifier/reload", r.handlers.Classifier.Reload)
}
