package report

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Intent is the kind of report a prompt asks for.
type Intent string

const (
	IntentSales         Intent = "ventas"
	IntentStock         Intent = "stock"
	IntentLowStock      Intent = "stock_bajo"
	IntentPrices        Intent = "precios"
	IntentTopProducts   Intent = "top_productos"
	IntentNoMovement    Intent = "sin_movimiento"
	IntentAddToCart     Intent = "agregar_carrito"
	IntentCustom        Intent = "custom"
	defaultIntent              = IntentSales
	defaultMetric              = "monto_total"
	defaultDimension           = "producto"
	clientDimension            = "cliente"
	unitsMetric                = "unidades"
	defaultCartQuantity        = 1
)

// Intents lists every intent in a stable order.
var Intents = []Intent{
	IntentSales, IntentStock, IntentLowStock, IntentPrices,
	IntentTopProducts, IntentNoMovement, IntentAddToCart, IntentCustom,
}

// Valid reports whether i is a known intent.
func (i Intent) Valid() bool {
	for _, known := range Intents {
		if i == known {
			return true
		}
	}
	return false
}

// Operator is a filter comparison.
type Operator string

const (
	OpEq       Operator = "eq"
	OpNeq      Operator = "neq"
	OpContains Operator = "contains"
	OpLt       Operator = "lt"
	OpLte      Operator = "lte"
	OpGt       Operator = "gt"
	OpGte      Operator = "gte"
	OpIsNull   Operator = "isnull"
	OpNotNull  Operator = "notnull"
)

// Unary reports whether the operator ignores its value.
func (o Operator) Unary() bool {
	return o == OpIsNull || o == OpNotNull
}

// Format is the output channel of a report.
type Format string

const (
	FormatScreen Format = "pantalla"
	FormatPDF    Format = "pdf"
	FormatExcel  Format = "excel"
)

// Document reports whether the format produces a downloadable file.
func (f Format) Document() bool {
	return f == FormatPDF || f == FormatExcel
}

// OrderDir is the sort direction.
type OrderDir string

const (
	OrderAsc  OrderDir = "asc"
	OrderDesc OrderDir = "desc"
)

// Filter restricts the rows a report reads.
type Filter struct {
	Field string   `json:"field" validate:"required"`
	Op    Operator `json:"op" validate:"required,oneof=eq neq contains lt lte gt gte isnull notnull"`
	Value string   `json:"value,omitempty"`
}

// Spec is the structured, serializable description of a report.
type Spec struct {
	Intent     Intent   `json:"intent" validate:"required,oneof=ventas stock stock_bajo precios top_productos sin_movimiento agregar_carrito custom"`
	Metrics    []string `json:"metrics" validate:"required,min=1,dive,required"`
	Dimensions []string `json:"dimensions" validate:"required,min=1,dive,required"`
	StartDate  Date     `json:"start_date"`
	EndDate    Date     `json:"end_date"`
	Filters    []Filter `json:"filters,omitempty" validate:"dive"`
	OrderBy    []string `json:"order_by,omitempty" validate:"dive,required"`
	OrderDir   OrderDir `json:"order_dir,omitempty" validate:"omitempty,oneof=asc desc"`
	Limit      *int     `json:"limit,omitempty" validate:"omitempty,gt=0"`
	Threshold  *int     `json:"threshold,omitempty" validate:"omitempty,gte=0"`
	Quantity   int      `json:"quantity,omitempty" validate:"gte=0"`
	Format     Format   `json:"format" validate:"omitempty,oneof=pantalla pdf excel"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// ClampLimit drops non-positive limits, which mean "no limit".
func (s *Spec) ClampLimit() {
	if s.Limit != nil && *s.Limit <= 0 {
		s.Limit = nil
	}
}

// EnsureDefaults fills in missing metrics, dimensions, dates and format so
// the spec satisfies its invariants. It returns the warnings describing what
// was assumed.
func (s *Spec) EnsureDefaults(window DateRange) []string {
	var warnings []string
	if s.Intent == "" {
		s.Intent = defaultIntent
	}
	if len(s.Metrics) == 0 {
		s.Metrics = []string{defaultMetric}
		warnings = append(warnings, "No se reconoció una métrica; se usa monto_total.")
	}
	if len(s.Dimensions) == 0 {
		s.Dimensions = []string{defaultDimension}
		warnings = append(warnings, "No se reconoció una agrupación; se agrupa por producto.")
	}
	if s.StartDate.IsZero() || s.EndDate.IsZero() {
		s.StartDate, s.EndDate = window.Start, window.End
		warnings = append(warnings, fmt.Sprintf("Sin rango de fechas; se usan los últimos %d días.", int(window.End.Sub(window.Start.Time).Hours()/24)+1))
	}
	if s.StartDate.After(s.EndDate.Time) {
		s.StartDate, s.EndDate = s.EndDate, s.StartDate
		warnings = append(warnings, "La fecha inicial era posterior a la final; se invirtió el rango.")
	}
	if s.Format == "" {
		s.Format = FormatScreen
	}
	if s.Intent == IntentAddToCart && s.Quantity <= 0 {
		s.Quantity = defaultCartQuantity
	}
	s.ClampLimit()
	return warnings
}

// Validate checks structural invariants and that every key exists in reg.
func (s Spec) Validate(reg *Registry) error {
	if err := validate.Struct(s); err != nil {
		return NewInputError(CodeInvalidSpec, "especificación inválida").WithCause(err)
	}
	if s.StartDate.IsZero() || s.EndDate.IsZero() {
		return NewInputError(CodeInvalidSpec, "start_date y end_date son obligatorios")
	}
	if s.StartDate.After(s.EndDate.Time) {
		return NewInputError(CodeInvalidSpec, "start_date es posterior a end_date")
	}
	if reg == nil {
		return nil
	}
	for _, key := range s.Metrics {
		if _, ok := reg.Metric(key); !ok {
			return NewInputError(CodeInvalidSpec, "métrica desconocida: "+key)
		}
	}
	for _, key := range s.Dimensions {
		if _, ok := reg.Dimension(key); !ok {
			return NewInputError(CodeInvalidSpec, "dimensión desconocida: "+key)
		}
	}
	return nil
}

// HasDimension reports whether key is among the requested dimensions.
func (s Spec) HasDimension(key string) bool {
	return containsKey(s.Dimensions, key)
}

// HasMetric reports whether key is among the requested metrics.
func (s Spec) HasMetric(key string) bool {
	return containsKey(s.Metrics, key)
}

// FilterValue returns the value of the first filter on field.
func (s Spec) FilterValue(field string) (string, bool) {
	for _, f := range s.Filters {
		if strings.EqualFold(f.Field, field) {
			return f.Value, true
		}
	}
	return "", false
}

// Capability names gating report access.
const (
	CapabilityGenerate = "reportes.generar"
	CapabilityExport   = "reportes.exportar"
	CapabilityTrain    = "reportes.entrenar"
)

// RequiredCapability is the permission a caller needs to run s. Document
// formats require the stricter export capability.
func RequiredCapability(s Spec) string {
	if s.Format.Document() {
		return CapabilityExport
	}
	return CapabilityGenerate
}

func containsKey(keys []string, key string) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}
