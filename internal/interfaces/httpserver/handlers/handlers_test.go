package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jan-server/services/report-api/internal/domain"
	"jan-server/services/report-api/internal/domain/report"
	middleware "jan-server/services/report-api/internal/interfaces/httpserver/middlewares"
)

type mockReportService struct {
	interpretFn   func(ctx context.Context, req report.InterpretRequest) (*report.Interpretation, error)
	runFn         func(ctx context.Context, interp *report.Interpretation) (*report.Report, error)
	executeSpecFn func(ctx context.Context, spec report.Spec) (*report.Report, error)
	reviewFn      func(ctx context.Context, filter report.ReviewFilter) ([]report.UsageEntry, error)
	labelFn       func(ctx context.Context, id, label string) (report.UsageEntry, error)
}

func (m *mockReportService) Interpret(ctx context.Context, req report.InterpretRequest) (*report.Interpretation, error) {
	return m.interpretFn(ctx, req)
}

func (m *mockReportService) Run(ctx context.Context, interp *report.Interpretation) (*report.Report, error) {
	return m.runFn(ctx, interp)
}

func (m *mockReportService) ExecuteSpec(ctx context.Context, spec report.Spec) (*report.Report, error) {
	return m.executeSpecFn(ctx, spec)
}

func (m *mockReportService) Registry() *report.Registry {
	return report.DefaultRegistry()
}

func (m *mockReportService) ReviewQueue(ctx context.Context, filter report.ReviewFilter) ([]report.UsageEntry, error) {
	return m.reviewFn(ctx, filter)
}

func (m *mockReportService) LabelPrompt(ctx context.Context, id, label string) (report.UsageEntry, error) {
	return m.labelFn(ctx, id, label)
}

type staticAuth struct {
	capabilities []string
}

func (s staticAuth) Enabled() bool { return false }

func (s staticAuth) Anonymous() domain.Principal {
	return domain.Principal{ID: "user-1", AuthMethod: domain.AuthMethodAnonymous, Capabilities: s.capabilities}
}

func (s staticAuth) Authenticate(string) (domain.Principal, error) {
	return domain.Principal{}, errors.New("unused")
}

type stubReloader struct {
	loaded bool
	err    error
}

func (s stubReloader) Reload() (bool, error) { return s.loaded, s.err }

func setupEngine(svc report.Service, reloader ModelReloader, caps ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	p := NewProvider(svc, reloader, zerolog.Nop())
	engine := gin.New()
	engine.Use(middleware.AuthMiddleware(staticAuth{capabilities: caps}, zerolog.Nop()))
	engine.POST("/v1/reports/prompt", p.Report.Prompt)
	engine.POST("/v1/reports/parse", p.Report.Parse)
	engine.POST("/v1/reports/execute", p.Report.Execute)
	engine.GET("/v1/reports/registry", p.Report.Registry)
	engine.GET("/v1/prompt-logs", p.PromptLog.List)
	engine.PATCH("/v1/prompt-logs/:id/label", p.PromptLog.Label)
	engine.POST("/v1/admin/classifier/reload", p.Classifier.Reload)
	return engine
}

func doJSON(engine *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if s, ok := body.(string); ok {
		buf.WriteString(s)
	} else if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func septemberSpec(format report.Format) report.Spec {
	return report.Spec{
		Intent:     report.IntentSales,
		Metrics:    []string{"monto_total"},
		Dimensions: []string{"categoria"},
		StartDate:  report.NewDate(2025, time.September, 1),
		EndDate:    report.NewDate(2025, time.September, 30),
		Format:     format,
	}
}

func interpretAs(format report.Format) func(context.Context, report.InterpretRequest) (*report.Interpretation, error) {
	return func(_ context.Context, req report.InterpretRequest) (*report.Interpretation, error) {
		spec := septemberSpec(format)
		if req.Authorize != nil {
			if err := req.Authorize(spec); err != nil {
				return nil, err
			}
		}
		return &report.Interpretation{
			Spec:           spec,
			Warnings:       []string{"w"},
			Classification: report.Classification{Intent: report.IntentSales, Source: report.SourceRule},
		}, nil
	}
}

func TestReportHandler_PromptScreen(t *testing.T) {
	var gotUser string
	svc := &mockReportService{
		interpretFn: func(ctx context.Context, req report.InterpretRequest) (*report.Interpretation, error) {
			gotUser = req.UserID
			return interpretAs(report.FormatScreen)(ctx, req)
		},
		runFn: func(_ context.Context, interp *report.Interpretation) (*report.Report, error) {
			return &report.Report{
				Spec:     interp.Spec,
				Result:   report.Result{Headers: []string{"Categoría", "Monto total"}, Rows: [][]any{{"Audio", 125.0}}},
				Warnings: interp.Warnings,
			}, nil
		},
	}
	engine := setupEngine(svc, nil, report.CapabilityGenerate)

	w := doJSON(engine, http.MethodPost, "/v1/reports/prompt", map[string]any{"prompt": "ventas por categoria"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body struct {
		Intent         string   `json:"intent"`
		Headers        []string `json:"headers"`
		Rows           [][]any  `json:"rows"`
		Warnings       []string `json:"warnings"`
		Hints          []string `json:"hints"`
		Classification struct {
			Source string `json:"source"`
		} `json:"classification"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ventas", body.Intent)
	assert.Equal(t, []string{"Categoría", "Monto total"}, body.Headers)
	assert.Equal(t, []any{"Audio", 125.0}, body.Rows[0])
	assert.Equal(t, []string{"w"}, body.Warnings)
	assert.NotNil(t, body.Hints)
	assert.Equal(t, "rule", body.Classification.Source)
	assert.Equal(t, "user-1", gotUser)
}

func TestReportHandler_PromptDocument(t *testing.T) {
	svc := &mockReportService{
		interpretFn: interpretAs(report.FormatExcel),
		runFn: func(_ context.Context, interp *report.Interpretation) (*report.Report, error) {
			return &report.Report{
				Spec:     interp.Spec,
				Document: &report.Document{Filename: "reporte.xlsx", ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", Body: []byte("PK..")},
			}, nil
		},
	}

	engine := setupEngine(svc, nil, report.CapabilityGenerate, report.CapabilityExport)
	w := doJSON(engine, http.MethodPost, "/v1/reports/prompt", map[string]any{"prompt": "ventas en excel"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="reporte.xlsx"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", w.Header().Get("Content-Type"))
	assert.Equal(t, "PK..", w.Body.String())
}

func TestReportHandler_PromptDocumentNeedsExportCapability(t *testing.T) {
	ran, archived := false, false
	svc := &mockReportService{
		interpretFn: func(ctx context.Context, req report.InterpretRequest) (*report.Interpretation, error) {
			require.NotNil(t, req.Authorize, "authorization happens before archiving")
			interp, err := interpretAs(report.FormatPDF)(ctx, req)
			archived = err == nil
			return interp, err
		},
		runFn: func(context.Context, *report.Interpretation) (*report.Report, error) {
			ran = true
			return &report.Report{}, nil
		},
	}

	engine := setupEngine(svc, nil, report.CapabilityGenerate)
	w := doJSON(engine, http.MethodPost, "/v1/reports/prompt", map[string]any{"prompt": "ventas en pdf"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), report.CapabilityExport)
	assert.False(t, archived)
	assert.False(t, ran)
}

func TestReportHandler_PromptErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"invalid date", report.NewInputError(report.CodeInvalidDate, "fecha inválida: 31/02/2025"), http.StatusBadRequest, report.CodeInvalidDate},
		{"product not found", report.NewInputError(report.CodeProductNotFound, "no existe"), http.StatusNotFound, report.CodeProductNotFound},
		{"internal", errors.New("connection refused"), http.StatusInternalServerError, "INTERNAL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockReportService{
				interpretFn: interpretAs(report.FormatScreen),
				runFn: func(context.Context, *report.Interpretation) (*report.Report, error) {
					return nil, tt.err
				},
			}
			engine := setupEngine(svc, nil, report.CapabilityGenerate)
			w := doJSON(engine, http.MethodPost, "/v1/reports/prompt", map[string]any{"prompt": "x"})
			assert.Equal(t, tt.status, w.Code)
			assert.Contains(t, w.Body.String(), tt.code)
			assert.NotContains(t, w.Body.String(), "connection refused")
		})
	}
}

func TestReportHandler_PromptRequiresPrompt(t *testing.T) {
	engine := setupEngine(&mockReportService{}, nil, report.CapabilityGenerate)
	w := doJSON(engine, http.MethodPost, "/v1/reports/prompt", map[string]any{"format": "pdf"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_REQUEST")
}

func TestReportHandler_Parse(t *testing.T) {
	var got report.InterpretRequest
	svc := &mockReportService{
		interpretFn: func(ctx context.Context, req report.InterpretRequest) (*report.Interpretation, error) {
			got = req
			return interpretAs(report.FormatScreen)(ctx, req)
		},
	}
	engine := setupEngine(svc, nil, report.CapabilityGenerate)

	w := doJSON(engine, http.MethodPost, "/v1/reports/parse", map[string]any{"prompt": "ventas", "force_preview": true})
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, got.ForcePreview)
	assert.Contains(t, w.Body.String(), `"start_date":"2025-09-01"`)
	assert.Contains(t, w.Body.String(), `"dimensions":["categoria"]`)
}

func TestReportHandler_Execute(t *testing.T) {
	var got report.Spec
	svc := &mockReportService{
		executeSpecFn: func(_ context.Context, spec report.Spec) (*report.Report, error) {
			got = spec
			return &report.Report{Spec: spec, Result: report.Result{Headers: []string{"Cliente", "Monto total"}}}, nil
		},
	}
	engine := setupEngine(svc, nil, report.CapabilityGenerate)

	body := `{"intent":"ventas","metrics":["monto_total"],"dimensions":["cliente"],"start_date":"2025-09-01","end_date":"2025-09-30","limit":5}`
	w := doJSON(engine, http.MethodPost, "/v1/reports/execute", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, []string{"cliente"}, got.Dimensions)
	assert.Equal(t, report.NewDate(2025, time.September, 1), got.StartDate)
	require.NotNil(t, got.Limit)
	assert.Equal(t, 5, *got.Limit)
	assert.Contains(t, w.Body.String(), `"rows":[]`)
}

func TestReportHandler_ExecuteExcelNeedsExport(t *testing.T) {
	engine := setupEngine(&mockReportService{}, nil, report.CapabilityGenerate)
	body := `{"intent":"ventas","metrics":["monto_total"],"dimensions":["cliente"],"format":"excel"}`
	w := doJSON(engine, http.MethodPost, "/v1/reports/execute", body)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestReportHandler_ExecuteMalformed(t *testing.T) {
	engine := setupEngine(&mockReportService{}, nil, report.CapabilityGenerate)
	w := doJSON(engine, http.MethodPost, "/v1/reports/execute", `{"start_date":"31-02"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReportHandler_Registry(t *testing.T) {
	engine := setupEngine(&mockReportService{}, nil, report.CapabilityGenerate)
	w := doJSON(engine, http.MethodGet, "/v1/reports/registry", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"key":"categoria"`)
	assert.Contains(t, w.Body.String(), `"key":"monto_total"`)
	assert.NotContains(t, w.Body.String(), "synonyms")
}

func TestPromptLogHandler_List(t *testing.T) {
	var got report.ReviewFilter
	svc := &mockReportService{
		reviewFn: func(_ context.Context, filter report.ReviewFilter) ([]report.UsageEntry, error) {
			got = filter
			return []report.UsageEntry{{ID: "a", PromptText: "algo raro", ResolvedIntent: report.IntentSales}}, nil
		},
	}
	engine := setupEngine(svc, nil, report.CapabilityTrain)

	w := doJSON(engine, http.MethodGet, "/v1/prompt-logs?max_confidence=0.4&limit=10", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, report.ReviewFilter{MaxConfidence: 0.4, Limit: 10}, got)
	assert.Contains(t, w.Body.String(), `"total":1`)
}

func TestPromptLogHandler_Label(t *testing.T) {
	svc := &mockReportService{
		labelFn: func(_ context.Context, id, label string) (report.UsageEntry, error) {
			if id != "a" {
				return report.UsageEntry{}, report.ErrUsageEntryNotFound
			}
			if !report.Intent(label).Valid() {
				return report.UsageEntry{}, report.NewInputError(report.CodeInvalidLabel, "etiqueta desconocida")
			}
			return report.UsageEntry{ID: id, HumanLabel: &label}, nil
		},
	}
	engine := setupEngine(svc, nil, report.CapabilityTrain)

	w := doJSON(engine, http.MethodPatch, "/v1/prompt-logs/a/label", map[string]string{"label": "stock_bajo"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"human_label":"stock_bajo"`)

	w = doJSON(engine, http.MethodPatch, "/v1/prompt-logs/zzz/label", map[string]string{"label": "stock"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(engine, http.MethodPatch, "/v1/prompt-logs/a/label", map[string]string{"label": "nope"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), report.CodeInvalidLabel)
}

func TestClassifierHandler_Reload(t *testing.T) {
	engine := setupEngine(&mockReportService{}, stubReloader{loaded: true}, report.CapabilityTrain)
	w := doJSON(engine, http.MethodPost, "/v1/admin/classifier/reload", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"loaded":true}`, w.Body.String())

	engine = setupEngine(&mockReportService{}, stubReloader{err: errors.New("bad json")}, report.CapabilityTrain)
	w = doJSON(engine, http.MethodPost, "/v1/admin/classifier/reload", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "MODEL_UNREADABLE")
}
