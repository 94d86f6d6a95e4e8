package routes

import (
	"github.com/gin-gonic/gin"

	"jan-server/services/report-api/internal/interfaces/httpserver/handlers"
	v1 "jan-server/services/report-api/internal/interfaces/httpserver/routes/v1"
)

// Provider registers every API version.
type Provider struct {
	v1 *v1.Routes
}

func NewProvider(handlerProvider *handlers.Provider) *Provider {
	return &Provider{v1: v1.NewRoutes(handlerProvider)}
}

func (p *Provider) Register(router gin.IRouter) {
	p.v1.Register(router)
}
