package responses

import (
	"jan-server/services/report-api/internal/domain/report"
)

// ClassificationResponse tells which tier decided the intent.
type ClassificationResponse struct {
	Source          string   `json:"source" example:"rule"`
	PredictedIntent string   `json:"predicted_intent,omitempty" example:"ventas"`
	Confidence      *float64 `json:"confidence,omitempty" example:"0.82"`
}

// InterpretationResponse is a parsed, unexecuted prompt.
type InterpretationResponse struct {
	Spec           report.Spec            `json:"spec"`
	Warnings       []string               `json:"warnings"`
	Hints          []string               `json:"hints"`
	Classification ClassificationResponse `json:"classification"`
}

// ReportResponse is a screen report.
type ReportResponse struct {
	Intent         report.Intent           `json:"intent" example:"ventas"`
	Spec           report.Spec             `json:"spec"`
	Headers        []string                `json:"headers"`
	Rows           [][]any                 `json:"rows"`
	Cart           *report.CartItem        `json:"cart,omitempty"`
	Warnings       []string                `json:"warnings"`
	Hints          []string                `json:"hints"`
	Classification *ClassificationResponse `json:"classification,omitempty"`
}

// RegistryResponse lists the keys prompts and specs may reference.
type RegistryResponse struct {
	Dimensions []report.Dimension `json:"dimensions"`
	Metrics    []report.Metric    `json:"metrics"`
	Intents    []report.Intent    `json:"intents"`
}

// PromptLogListResponse wraps the review queue.
type PromptLogListResponse struct {
	Data  []report.UsageEntry `json:"data"`
	Total int                 `json:"total"`
}

// ReloadResponse reports the classifier state after a reload.
type ReloadResponse struct {
	Loaded bool `json:"loaded"`
}

func NewClassification(c report.Classification) ClassificationResponse {
	return ClassificationResponse{
		Source:          string(c.Source),
		PredictedIntent: c.PredictedIntent,
		Confidence:      c.Confidence,
	}
}

func NewInterpretation(interp *report.Interpretation) InterpretationResponse {
	return InterpretationResponse{
		Spec:           interp.Spec,
		Warnings:       nonNil(interp.Warnings),
		Hints:          nonNil(interp.Hints),
		Classification: NewClassification(interp.Classification),
	}
}

func NewReport(r *report.Report, classification *report.Classification) ReportResponse {
	rows := r.Result.Rows
	if rows == nil {
		rows = [][]any{}
	}
	out := ReportResponse{
		Intent:   r.Spec.Intent,
		Spec:     r.Spec,
		Headers:  nonNil(r.Result.Headers),
		Rows:     rows,
		Cart:     r.Result.Cart,
		Warnings: nonNil(r.Warnings),
		Hints:    nonNil(r.Hints),
	}
	if classification != nil {
		c := NewClassification(*classification)
		out.Classification = &c
	}
	return out
}

func NewRegistry(reg *report.Registry) RegistryResponse {
	return RegistryResponse{
		Dimensions: reg.Dimensions(),
		Metrics:    reg.Metrics(),
		Intents:    report.Intents,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
