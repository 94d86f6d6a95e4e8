package handlers

import (
	"github.com/rs/zerolog"

	"jan-server/services/report-api/internal/domain/report"
)

// Provider wires all HTTP handlers for dependency injection.
type Provider struct {
	Report     *ReportHandler
	PromptLog  *PromptLogHandler
	Classifier *ClassifierHandler
}

// NewProvider constructs the handler provider with domain services.
func NewProvider(service report.Service, reloader ModelReloader, log zerolog.Logger) *Provider {
	return &Provider{
		Report:     NewReportHandler(service),
		PromptLog:  NewPromptLogHandler(service),
		Classifier: NewClassifierHandler(reloader, log.With().Str("component", "classifier-handler").Logger()),
	}
}
