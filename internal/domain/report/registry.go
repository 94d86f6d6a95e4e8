package report

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed registry.yaml
var defaultRegistryYAML []byte

// Field is the attribute of a sale line a dimension groups by.
type Field string

const (
	FieldProduct  Field = "producto"
	FieldClient   Field = "cliente"
	FieldCategory Field = "categoria"
	FieldBrand    Field = "marca"
	FieldSaleDate Field = "fecha"
)

// TimeBucket truncates the sale timestamp for temporal dimensions.
type TimeBucket string

const (
	BucketNone    TimeBucket = ""
	BucketDay     TimeBucket = "day"
	BucketWeek    TimeBucket = "week"
	BucketMonth   TimeBucket = "month"
	BucketQuarter TimeBucket = "quarter"
	BucketYear    TimeBucket = "year"
)

// MetricKind selects the aggregate computed for a metric.
type MetricKind string

const (
	MetricAmount    MetricKind = "amount"
	MetricUnits     MetricKind = "units"
	MetricOrders    MetricKind = "orders"
	MetricAvgTicket MetricKind = "avg_ticket"
)

// Dimension is a groupable attribute of sales data.
type Dimension struct {
	Key      string     `yaml:"key" json:"key"`
	Label    string     `yaml:"label" json:"label"`
	Field    Field      `yaml:"field" json:"field"`
	Bucket   TimeBucket `yaml:"bucket,omitempty" json:"bucket,omitempty"`
	Synonyms []string   `yaml:"synonyms" json:"-"`
}

// ProductShaped reports whether grouping by the dimension splits an order
// across several rows, which forces line-level summation.
func (d Dimension) ProductShaped() bool {
	switch d.Field {
	case FieldProduct, FieldCategory, FieldBrand:
		return true
	default:
		return false
	}
}

// Metric is a numeric aggregate over sales data.
type Metric struct {
	Key      string     `yaml:"key" json:"key"`
	Label    string     `yaml:"label" json:"label"`
	Kind     MetricKind `yaml:"kind" json:"kind"`
	Synonyms []string   `yaml:"synonyms" json:"-"`
}

// Registry is the immutable catalog of dimensions and metrics. It is built
// once at startup and shared by value-returning accessors.
type Registry struct {
	dimensions  []Dimension
	metrics     []Metric
	dimIndex    map[string]int
	metricIndex map[string]int
}

type registryFile struct {
	Dimensions []Dimension `yaml:"dimensions"`
	Metrics    []Metric    `yaml:"metrics"`
}

// NewRegistry validates and indexes the given entries. Registration order is
// preserved because it breaks ties during fuzzy resolution.
func NewRegistry(dimensions []Dimension, metrics []Metric) (*Registry, error) {
	r := &Registry{
		dimIndex:    make(map[string]int, len(dimensions)),
		metricIndex: make(map[string]int, len(metrics)),
	}
	for _, d := range dimensions {
		d.Key = strings.TrimSpace(d.Key)
		if d.Key == "" {
			return nil, fmt.Errorf("dimension with empty key")
		}
		if _, dup := r.dimIndex[d.Key]; dup {
			return nil, fmt.Errorf("duplicate dimension %q", d.Key)
		}
		switch d.Field {
		case FieldProduct, FieldClient, FieldCategory, FieldBrand:
			if d.Bucket != BucketNone {
				return nil, fmt.Errorf("dimension %q: bucket only applies to %q", d.Key, FieldSaleDate)
			}
		case FieldSaleDate:
			switch d.Bucket {
			case BucketDay, BucketWeek, BucketMonth, BucketQuarter, BucketYear:
			default:
				return nil, fmt.Errorf("dimension %q: unknown bucket %q", d.Key, d.Bucket)
			}
		default:
			return nil, fmt.Errorf("dimension %q: unknown field %q", d.Key, d.Field)
		}
		d.Synonyms = normalizeAll(d.Synonyms)
		r.dimIndex[d.Key] = len(r.dimensions)
		r.dimensions = append(r.dimensions, d)
	}
	for _, m := range metrics {
		m.Key = strings.TrimSpace(m.Key)
		if m.Key == "" {
			return nil, fmt.Errorf("metric with empty key")
		}
		if _, dup := r.metricIndex[m.Key]; dup {
			return nil, fmt.Errorf("duplicate metric %q", m.Key)
		}
		switch m.Kind {
		case MetricAmount, MetricUnits, MetricOrders, MetricAvgTicket:
		default:
			return nil, fmt.Errorf("metric %q: unknown kind %q", m.Key, m.Kind)
		}
		m.Synonyms = normalizeAll(m.Synonyms)
		r.metricIndex[m.Key] = len(r.metrics)
		r.metrics = append(r.metrics, m)
	}
	if len(r.dimensions) == 0 || len(r.metrics) == 0 {
		return nil, fmt.Errorf("registry needs at least one dimension and one metric")
	}
	return r, nil
}

// ParseRegistry decodes a YAML registry document.
func ParseRegistry(data []byte) (*Registry, error) {
	var file registryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode registry: %w", err)
	}
	return NewRegistry(file.Dimensions, file.Metrics)
}

// LoadRegistry reads a registry from path, or returns the embedded default
// when path is empty.
func LoadRegistry(path string) (*Registry, error) {
	if strings.TrimSpace(path) == "" {
		return ParseRegistry(defaultRegistryYAML)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read registry %s: %w", path, err)
	}
	return ParseRegistry(data)
}

// DefaultRegistry returns the embedded catalog and panics if it is invalid.
func DefaultRegistry() *Registry {
	r, err := ParseRegistry(defaultRegistryYAML)
	if err != nil {
		panic(err)
	}
	return r
}

func (r *Registry) Dimension(key string) (Dimension, bool) {
	i, ok := r.dimIndex[key]
	if !ok {
		return Dimension{}, false
	}
	return r.dimensions[i], true
}

func (r *Registry) Metric(key string) (Metric, bool) {
	i, ok := r.metricIndex[key]
	if !ok {
		return Metric{}, false
	}
	return r.metrics[i], true
}

// Dimensions returns a copy of the dimensions in registration order.
func (r *Registry) Dimensions() []Dimension {
	out := make([]Dimension, len(r.dimensions))
	copy(out, r.dimensions)
	return out
}

// Metrics returns a copy of the metrics in registration order.
func (r *Registry) Metrics() []Metric {
	out := make([]Metric, len(r.metrics))
	copy(out, r.metrics)
	return out
}

// DimensionTable is the synonym lookup table used by the resolver.
func (r *Registry) DimensionTable() SynonymTable {
	table := make(SynonymTable, 0, len(r.dimensions))
	for _, d := range r.dimensions {
		table = append(table, SynonymEntry{Key: d.Key, Synonyms: d.Synonyms})
	}
	return table
}

// MetricTable is the synonym lookup table used by the resolver.
func (r *Registry) MetricTable() SynonymTable {
	table := make(SynonymTable, 0, len(r.metrics))
	for _, m := range r.metrics {
		table = append(table, SynonymEntry{Key: m.Key, Synonyms: m.Synonyms})
	}
	return table
}

func normalizeAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if n := Normalize(v); n != "" {
			out = append(out, n)
		}
	}
	return out
}
