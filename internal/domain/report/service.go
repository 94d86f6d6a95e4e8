package report

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "jan-server/report-api"

// InterpretRequest is a prompt plus caller overrides.
type InterpretRequest struct {
	Prompt       string
	UserID       string
	Format       Format
	ForcePreview bool
	// Authorize, when set, vets the final spec before the prompt is archived.
	// Its error is returned unchanged.
	Authorize func(Spec) error
}

// Interpretation is a built spec ready to be authorized and run.
type Interpretation struct {
	Spec           Spec
	Warnings       []string
	Hints          []string
	Classification Classification
}

// Report is an executed spec and, for document formats, its rendered file.
type Report struct {
	Spec     Spec
	Result   Result
	Warnings []string
	Hints    []string
	Document *Document
}

// Service is the prompt-to-report use case surface.
type Service interface {
	Interpret(ctx context.Context, req InterpretRequest) (*Interpretation, error)
	Run(ctx context.Context, interp *Interpretation) (*Report, error)
	ExecuteSpec(ctx context.Context, spec Spec) (*Report, error)
	Registry() *Registry
	ReviewQueue(ctx context.Context, filter ReviewFilter) ([]UsageEntry, error)
	LabelPrompt(ctx context.Context, id, label string) (UsageEntry, error)
}

type service struct {
	builder   *Builder
	executor  *Executor
	usage     UsageLogger
	usageRepo UsageRepository
	renderers Renderers
	clock     clockwork.Clock
	tracer    trace.Tracer
	log       zerolog.Logger
}

// NewService wires the report pipeline.
func NewService(
	builder *Builder,
	executor *Executor,
	usage UsageLogger,
	usageRepo UsageRepository,
	renderers Renderers,
	clock clockwork.Clock,
	log zerolog.Logger,
) Service {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &service{
		builder:   builder,
		executor:  executor,
		usage:     usage,
		usageRepo: usageRepo,
		renderers: renderers,
		clock:     clock,
		tracer:    otel.Tracer(tracerName),
		log:       log.With().Str("component", "report-service").Logger(),
	}
}

func (s *service) Registry() *Registry {
	return s.builder.Registry()
}

// Interpret builds the spec, applies format overrides, authorizes it and
// archives the attempt. Archiving never fails the request.
func (s *service) Interpret(ctx context.Context, req InterpretRequest) (*Interpretation, error) {
	ctx, span := s.tracer.Start(ctx, "report.interpret", trace.WithSpanKind(trace.SpanKindInternal))
	defer span.End()

	built, err := s.builder.Build(req.Prompt)
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}

	spec := built.Spec
	switch {
	case req.ForcePreview:
		spec.Format = FormatScreen
	case req.Format != "":
		spec.Format = req.Format
	}

	span.SetAttributes(
		attribute.String("report.intent", string(spec.Intent)),
		attribute.String("report.format", string(spec.Format)),
		attribute.String("report.classifier_source", string(built.Classification.Source)),
	)

	if req.Authorize != nil {
		if err := req.Authorize(spec); err != nil {
			recordSpanError(span, err)
			return nil, err
		}
	}

	entry := UsageEntry{
		UserID:         req.UserID,
		PromptText:     req.Prompt,
		ResolvedIntent: spec.Intent,
		Spec:           spec,
		Confidence:     built.Classification.Confidence,
	}
	if p := built.Classification.PredictedIntent; p != "" {
		entry.PredictedIntent = &p
	}
	s.usage.Record(ctx, entry)

	s.log.Debug().
		Str("intent", string(spec.Intent)).
		Str("source", string(built.Classification.Source)).
		Strs("dimensions", spec.Dimensions).
		Strs("metrics", spec.Metrics).
		Msg("prompt interpreted")

	return &Interpretation{
		Spec:           spec,
		Warnings:       built.Warnings,
		Hints:          built.Hints,
		Classification: built.Classification,
	}, nil
}

// Run executes an interpretation and renders documents when requested.
func (s *service) Run(ctx context.Context, interp *Interpretation) (*Report, error) {
	if interp == nil {
		return nil, NewInputError(CodeInvalidSpec, "nada que ejecutar")
	}
	ctx, span := s.tracer.Start(ctx, "report.execute",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.String("report.intent", string(interp.Spec.Intent))),
	)
	defer span.End()

	spec := interp.Spec
	if err := spec.Validate(s.Registry()); err != nil {
		recordSpanError(span, err)
		return nil, err
	}

	result, err := s.executor.Execute(ctx, spec)
	if err != nil {
		recordSpanError(span, err)
		if _, ok := AsInputError(err); !ok {
			s.log.Error().Err(err).Str("intent", string(spec.Intent)).Msg("execute report")
		}
		return nil, err
	}
	span.SetAttributes(attribute.Int("report.rows", len(result.Rows)))

	out := &Report{
		Spec:     spec,
		Result:   result,
		Warnings: interp.Warnings,
		Hints:    interp.Hints,
	}
	if spec.Format.Document() && spec.Intent != IntentAddToCart {
		doc, err := s.render(spec, result)
		if err != nil {
			recordSpanError(span, err)
			return nil, err
		}
		out.Document = &doc
	}
	return out, nil
}

// ExecuteSpec runs a caller-supplied spec, such as one edited after preview.
func (s *service) ExecuteSpec(ctx context.Context, spec Spec) (*Report, error) {
	window := s.builder.dates.TrailingWindow(s.builder.windowDays)
	warnings := spec.EnsureDefaults(window)
	return s.Run(ctx, &Interpretation{Spec: spec, Warnings: warnings})
}

func (s *service) render(spec Spec, result Result) (Document, error) {
	renderer, ok := s.renderers[spec.Format]
	if !ok {
		return Document{}, fmt.Errorf("no renderer for format %q", spec.Format)
	}
	labels := make([]string, 0, len(spec.Dimensions))
	for _, key := range spec.Dimensions {
		if d, ok := s.Registry().Dimension(key); ok {
			labels = append(labels, d.Label)
		}
	}
	meta := DocumentMeta{
		Title:       reportTitle(spec.Intent),
		Intent:      spec.Intent,
		Range:       DateRange{Start: spec.StartDate, End: spec.EndDate},
		GroupedBy:   labels,
		GeneratedAt: s.clock.Now(),
	}
	doc, err := renderer.Render(meta, result)
	if err != nil {
		return Document{}, fmt.Errorf("render %s: %w", spec.Format, err)
	}
	return doc, nil
}

func (s *service) ReviewQueue(ctx context.Context, filter ReviewFilter) ([]UsageEntry, error) {
	if filter.Limit <= 0 {
		filter.Limit = 200
	}
	if filter.MaxConfidence <= 0 {
		filter.MaxConfidence = 0.55
	}
	return s.usageRepo.ListForReview(ctx, filter)
}

// LabelPrompt stores a reviewer's intent label on a usage entry.
func (s *service) LabelPrompt(ctx context.Context, id, label string) (UsageEntry, error) {
	label = strings.TrimSpace(label)
	if !Intent(label).Valid() {
		return UsageEntry{}, NewInputError(CodeInvalidLabel, "etiqueta desconocida: "+label)
	}
	return s.usageRepo.SetHumanLabel(ctx, id, label)
}

func reportTitle(intent Intent) string {
	switch intent {
	case IntentStock:
		return "Reporte de stock"
	case IntentLowStock:
		return "Productos con stock bajo"
	case IntentPrices:
		return "Lista de precios"
	case IntentTopProducts:
		return "Productos más vendidos"
	case IntentNoMovement:
		return "Productos sin movimiento"
	default:
		return "Reporte de ventas"
	}
}

func recordSpanError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
