package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"jan-server/services/report-api/internal/domain/report"
	"jan-server/services/report-api/internal/infrastructure/metrics"
	middleware "jan-server/services/report-api/internal/interfaces/httpserver/middlewares"
	"jan-server/services/report-api/internal/interfaces/httpserver/requests"
	"jan-server/services/report-api/internal/interfaces/httpserver/responses"
)

// errCapabilityDenied means the 401/403 response was already written.
var errCapabilityDenied = errors.New("capability denied")

// ReportHandler serves prompt-to-report requests.
type ReportHandler struct {
	service report.Service
}

// NewReportHandler wires dependencies for report routes.
func NewReportHandler(service report.Service) *ReportHandler {
	return &ReportHandler{service: service}
}

// Prompt godoc
// @Summary      Generate a report from a Spanish prompt
// @Description  Interprets the prompt and runs the report. pdf and excel formats return a file download and require the reportes.exportar capability.
// @Tags         reports
// @Accept       json
// @Produce      json
// @Produce      application/pdf
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security     BearerAuth
// @Param        request  body      requests.PromptRequest  true  "Prompt"
// @Success      200      {object}  responses.ReportResponse
// @Failure      400      {object}  responses.ErrorResponse
// @Failure      401      {object}  responses.ErrorResponse
// @Failure      403      {object}  responses.ErrorResponse
// @Failure      404      {object}  responses.ErrorResponse
// @Failure      500      {object}  responses.ErrorResponse
// @Router       /v1/reports/prompt [post]
func (h *ReportHandler) Prompt(c *gin.Context) {
	var req requests.PromptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleBindError(c, err)
		return
	}

	start := time.Now()
	in := req.ToDomain(middleware.GetUserIDFromContext(c))
	in.Authorize = func(spec report.Spec) error {
		c.Set(middleware.ReportIntentKey, string(spec.Intent))
		if !middleware.EnsureCapability(c, report.RequiredCapability(spec)) {
			return errCapabilityDenied
		}
		return nil
	}
	interp, err := h.service.Interpret(c.Request.Context(), in)
	if errors.Is(err, errCapabilityDenied) {
		return
	}
	if err != nil {
		metrics.RecordReport("unknown", string(req.Format), outcomeOf(err), time.Since(start).Seconds(), 0)
		responses.HandleError(c, err)
		return
	}
	c.Set(middleware.ReportIntentKey, string(interp.Spec.Intent))
	metrics.RecordClassification(string(interp.Classification.Source), string(interp.Classification.Intent), interp.Classification.Confidence)

	rep, err := h.service.Run(c.Request.Context(), interp)
	h.record(interp.Spec, rep, err, start)
	if err != nil {
		responses.HandleError(c, err)
		return
	}
	writeReport(c, rep, &interp.Classification)
}

// Parse godoc
// @Summary      Interpret a prompt without running it
// @Description  Returns the structured spec, warnings and hints for a prompt so a client can preview and edit it.
// @Tags         reports
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      requests.PromptRequest  true  "Prompt"
// @Success      200      {object}  responses.InterpretationResponse
// @Failure      400      {object}  responses.ErrorResponse
// @Failure      401      {object}  responses.ErrorResponse
// @Failure      403      {object}  responses.ErrorResponse
// @Router       /v1/reports/parse [post]
func (h *ReportHandler) Parse(c *gin.Context) {
	var req requests.PromptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleBindError(c, err)
		return
	}

	interp, err := h.service.Interpret(c.Request.Context(), req.ToDomain(middleware.GetUserIDFromContext(c)))
	if err != nil {
		responses.HandleError(c, err)
		return
	}
	c.Set(middleware.ReportIntentKey, string(interp.Spec.Intent))
	c.JSON(http.StatusOK, responses.NewInterpretation(interp))
}

// Execute godoc
// @Summary      Run a structured report spec
// @Description  Executes a spec, typically one returned by /v1/reports/parse and edited by the client. Missing fields are defaulted.
// @Tags         reports
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        spec  body      report.Spec  true  "Report spec"
// @Success      200   {object}  responses.ReportResponse
// @Failure      400   {object}  responses.ErrorResponse
// @Failure      401   {object}  responses.ErrorResponse
// @Failure      403   {object}  responses.ErrorResponse
// @Failure      500   {object}  responses.ErrorResponse
// @Router       /v1/reports/execute [post]
func (h *ReportHandler) Execute(c *gin.Context) {
	var spec report.Spec
	if err := c.ShouldBindJSON(&spec); err != nil {
		responses.HandleBindError(c, err)
		return
	}
	c.Set(middleware.ReportIntentKey, string(spec.Intent))

	if !middleware.EnsureCapability(c, report.RequiredCapability(spec)) {
		return
	}

	start := time.Now()
	rep, err := h.service.ExecuteSpec(c.Request.Context(), spec)
	h.record(spec, rep, err, start)
	if err != nil {
		responses.HandleError(c, err)
		return
	}
	writeReport(c, rep, nil)
}

// Registry godoc
// @Summary      List report dimensions and metrics
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  responses.RegistryResponse
// @Router       /v1/reports/registry [get]
func (h *ReportHandler) Registry(c *gin.Context) {
	c.JSON(http.StatusOK, responses.NewRegistry(h.service.Registry()))
}

func (h *ReportHandler) record(spec report.Spec, rep *report.Report, err error, start time.Time) {
	rows := 0
	if rep != nil {
		rows = len(rep.Result.Rows)
	}
	format := spec.Format
	if format == "" {
		format = report.FormatScreen
	}
	metrics.RecordReport(string(spec.Intent), string(format), outcomeOf(err), time.Since(start).Seconds(), rows)
}

func writeReport(c *gin.Context, rep *report.Report, classification *report.Classification) {
	if doc := rep.Document; doc != nil {
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, doc.Filename))
		c.Data(http.StatusOK, doc.ContentType, doc.Body)
		return
	}
	c.JSON(http.StatusOK, responses.NewReport(rep, classification))
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return "ok"
	case report.IsInputError(err, ""):
		return "input_error"
	default:
		return "error"
	}
}
