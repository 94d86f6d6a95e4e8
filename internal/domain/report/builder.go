package report

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var (
	excelWords = regexp.MustCompile(`\b(excel|xlsx|xls|hoja\s+de\s+calculo)\b`)
	pdfWords   = regexp.MustCompile(`\bpdf\b`)

	groupByMarker  = regexp.MustCompile(`\b(?:agrupad[oa]s?\s+por|group\s+by|por)\s+`)
	groupStopWords = regexp.MustCompile(`\b(?:del|de|desde|hasta|en|entre|para|con|que|ordenad\w*|orden\w*|este|esta|ultim\w*|hoy|ayer|top|bottom|limite|pdf|excel|xlsx|al|segun|mayor|menor|debajo|encima|por)\b`)
	partSeparator  = regexp.MustCompile(`,|\s+y\s+|\s+e\s+`)
	orderedByLead  = regexp.MustCompile(`orden(?:ar|ad[oa]s?)\s+$`)

	clientPlural = regexp.MustCompile(`\bclientes\b`)

	limitPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\btop\s*(\d{1,3})\b`),
		regexp.MustCompile(`\b(?:los|las)?\s*(\d{1,3})\s+(?:productos|articulos|clientes|primeros|primeras|mejores|categorias|marcas)\b`),
		regexp.MustCompile(`\bprimer[oa]s\s+(\d{1,3})\b`),
		regexp.MustCompile(`\blimite?\s+(?:de\s+)?(\d{1,3})\b`),
	}
	// "bottom N" and "menos N" also flip the ranking to ascending.
	bottomPattern = regexp.MustCompile(`\b(?:bottom|menos)\s+(\d{1,3})\b`)

	thresholdPattern = regexp.MustCompile(`(?:menor(?:es)?\s*(?:a|que|de)?|menos\s+de|por\s+debajo\s+de|<|bajo)\s*(\d{1,6})`)

	cartPattern = regexp.MustCompile(`\b(?:agrega|agregar|agregame|agregue|anade|anadir|anademe|pon|poner|ponme|mete|meter|meteme|quiero|suma|sumar)\s+(?:(\d{1,4}|un|una|dos|tres|cuatro|cinco|seis|siete|ocho|nueve|diez)\s+)?(?:unidades?\s+(?:de\s+)?)?(?:(?:el|la|los|las)\s+)?(.+?)\s+(?:al|a\s+mi|a\s+la|en\s+el|en\s+mi|en\s+la)\s+(?:carrito|carro|compra|pedido)\b`)

	orderByPattern = regexp.MustCompile(`\borden(?:ar|ad[oa]s?)\s+por\s+([a-z0-9_]+)(?:\s+(asc\w*|desc\w*))?`)
	ascWords       = regexp.MustCompile(`\b(ascendente|ascendentemente|de\s+menor\s+a\s+mayor|menos\s+vendid\w*)\b`)
	descWords      = regexp.MustCompile(`\b(descendente|descendentemente|de\s+mayor\s+a\s+menor)\b`)

	valueStop = regexp.MustCompile(`(?i)[,;]|\s+(?:en|del|de|desde|hasta|al|por|y|con|que|este|esta|ordenad\w*|ordenar|top|para|entre|mes|semana|año|ano|hoy|ayer|últim\w*|ultim\w*|excel|pdf)\b`)

	filterPatterns = []struct {
		field string
		re    *regexp.Regexp
	}{
		{"categoria", regexp.MustCompile(`(?i)\bcategor[ií]as?\s+([\p{L}\p{N}][\p{L}\p{N} \-_/.&]*)`)},
		{"marca", regexp.MustCompile(`(?i)\bmarcas?\s+([\p{L}\p{N}][\p{L}\p{N} \-_/.&]*)`)},
		{"cliente", regexp.MustCompile(`(?i)\b(?:del|de|para(?:\s+el)?)\s+cliente\s+([\p{L}\p{N}][\p{L}\p{N} \-_/.&]*)`)},
		{"producto", regexp.MustCompile(`(?i)\b(?:que\s+contengan?|contienen?|con\s+nombre|llamad[oa]s?)\s+([\p{L}\p{N}][\p{L}\p{N} \-_/.&]*)`)},
	}
	groupedLead = regexp.MustCompile(`(?i)(?:\bpor|\bgroup\s+by)\s+$`)
)

var numberWords = map[string]int{
	"un": 1, "una": 1, "dos": 2, "tres": 3, "cuatro": 4, "cinco": 5,
	"seis": 6, "siete": 7, "ocho": 8, "nueve": 9, "diez": 10,
}

// Words that join phrases and never name a metric or dimension.
var connectorWords = map[string]bool{
	"por": true, "de": true, "del": true, "la": true, "el": true, "los": true,
	"las": true, "y": true, "e": true, "a": true, "al": true, "en": true,
	"con": true, "para": true, "que": true, "una": true, "uno": true, "mas": true,
}

// BuildResult is a spec plus the non-fatal notes produced while building it.
type BuildResult struct {
	Spec           Spec
	Warnings       []string
	Hints          []string
	Classification Classification
}

// Builder turns a prompt into a Spec.
type Builder struct {
	registry   *Registry
	resolver   *Resolver
	dates      *DateResolver
	classifier Classifier
	windowDays int
}

// BuilderOption customizes a Builder.
type BuilderOption func(*Builder)

// WithWindowDays sets the trailing window used when a prompt has no dates.
func WithWindowDays(days int) BuilderOption {
	return func(b *Builder) {
		if days > 0 {
			b.windowDays = days
		}
	}
}

func NewBuilder(registry *Registry, resolver *Resolver, dates *DateResolver, classifier Classifier, opts ...BuilderOption) *Builder {
	if classifier == nil {
		classifier = NewChain(defaultIntent, NewRuleClassifier(nil))
	}
	b := &Builder{
		registry:   registry,
		resolver:   resolver,
		dates:      dates,
		classifier: classifier,
		windowDays: DefaultWindowDays,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Registry exposes the catalog the builder resolves against.
func (b *Builder) Registry() *Registry {
	return b.registry
}

// Build interprets prompt. Only malformed input (empty prompt, impossible
// date literal) is an error; every other gap is filled with a default and
// reported as a warning.
func (b *Builder) Build(prompt string) (BuildResult, error) {
	if strings.TrimSpace(prompt) == "" {
		return BuildResult{}, NewInputError(CodeEmptyPrompt, "el prompt está vacío")
	}
	norm := Normalize(prompt)
	raw := strings.ToLower(prompt)

	var res BuildResult
	cls, _ := b.classifier.Classify(prompt)
	res.Classification = cls
	spec := Spec{Intent: cls.Intent, Format: detectFormat(norm)}

	rng, found, err := b.dates.Resolve(prompt)
	if err != nil {
		return BuildResult{}, err
	}
	if found {
		spec.StartDate, spec.EndDate = rng.Start, rng.End
	}

	spec.Metrics = b.extractMetrics(norm)
	spec.Dimensions = b.extractDimensions(norm)
	if len(spec.Dimensions) == 0 && clientPlural.MatchString(norm) {
		spec.Dimensions = []string{clientDimension}
	}
	spec.Filters = extractFilters(prompt)
	spec.OrderDir = detectOrderDir(norm)

	if limit, bottom, ok := extractLimit(norm); ok {
		spec.Limit = &limit
		if bottom {
			spec.OrderDir = OrderAsc
		}
		if limit <= 0 {
			res.Warnings = append(res.Warnings, "Se ignoró un límite no positivo.")
		}
	}

	switch spec.Intent {
	case IntentTopProducts:
		b.shapeTopProducts(&spec, norm, &res)
	case IntentLowStock:
		if m := thresholdPattern.FindStringSubmatch(raw); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				spec.Threshold = &n
			}
		}
	case IntentAddToCart:
		b.shapeCart(&spec, norm, &res)
	}

	b.applyOrderBy(&spec, norm, &res)

	window := b.dates.TrailingWindow(b.windowDays)
	defaults := spec.EnsureDefaults(window)
	if usesSalesData(spec.Intent) {
		res.Warnings = append(res.Warnings, defaults...)
	}
	res.Hints = hintsFor(spec, found)
	res.Spec = spec
	return res, nil
}

// extractMetrics finds metric phrases first so multi-word synonyms are not
// split, then resolves the remaining tokens one by one.
func (b *Builder) extractMetrics(norm string) []string {
	type hit struct {
		key string
		pos int
	}
	var hits []hit
	padded := " " + norm + " "
	for _, m := range b.registry.Metrics() {
		for _, syn := range m.Synonyms {
			if !strings.Contains(syn, " ") {
				continue
			}
			needle := " " + syn + " "
			if idx := strings.Index(padded, needle); idx >= 0 {
				hits = append(hits, hit{key: m.Key, pos: idx})
				padded = padded[:idx] + strings.Repeat(" ", len(needle)) + padded[idx+len(needle):]
			}
		}
	}

	table := b.registry.MetricTable()
	offset := 0
	for _, tok := range strings.Fields(padded) {
		pos := strings.Index(padded[offset:], tok) + offset
		offset = pos + len(tok)
		if len(tok) < 3 || connectorWords[tok] || isNumeric(tok) {
			continue
		}
		if key, _, ok := b.resolver.Resolve(tok, table); ok {
			hits = append(hits, hit{key: key, pos: pos})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].pos < hits[j].pos })
	var keys []string
	for _, h := range hits {
		if !containsKey(keys, h.key) {
			keys = append(keys, h.key)
		}
	}
	return keys
}

// extractDimensions resolves the words following each "por" marker.
func (b *Builder) extractDimensions(norm string) []string {
	table := b.registry.DimensionTable()
	var keys []string
	for _, loc := range groupByMarker.FindAllStringIndex(norm, -1) {
		if orderedByLead.MatchString(norm[:loc[0]]) {
			continue
		}
		segment := norm[loc[1]:]
		if stop := groupStopWords.FindStringIndex(segment); stop != nil {
			segment = segment[:stop[0]]
		}
		for _, part := range partSeparator.Split(segment, -1) {
			for _, tok := range strings.Fields(part) {
				if len(tok) < 3 || connectorWords[tok] || isNumeric(tok) {
					continue
				}
				if key, _, ok := b.resolver.Resolve(tok, table); ok && !containsKey(keys, key) {
					keys = append(keys, key)
				}
			}
		}
	}
	return keys
}

func (b *Builder) shapeTopProducts(spec *Spec, norm string, res *BuildResult) {
	want := []string{defaultDimension}
	if spec.HasDimension("categoria") {
		want = []string{"categoria", defaultDimension}
	}
	if len(spec.Dimensions) > 0 && !equalKeys(spec.Dimensions, want) {
		res.Warnings = append(res.Warnings, "El ranking de productos siempre agrupa por producto.")
	}
	spec.Dimensions = want

	if len(spec.Metrics) == 0 {
		spec.Metrics = []string{unitsMetric, defaultMetric}
	}
	if len(spec.OrderBy) == 0 && !orderByPattern.MatchString(norm) {
		spec.OrderBy = []string{spec.Metrics[0]}
	}
	if spec.OrderDir == "" {
		spec.OrderDir = OrderDesc
	}
}

func (b *Builder) shapeCart(spec *Spec, norm string, res *BuildResult) {
	spec.Quantity = defaultCartQuantity
	m := cartPattern.FindStringSubmatch(norm)
	if m == nil {
		res.Warnings = append(res.Warnings, "No se identificó el producto a agregar.")
		return
	}
	if m[1] != "" {
		if n, ok := numberWords[m[1]]; ok {
			spec.Quantity = n
		} else if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			spec.Quantity = n
		}
	}
	name := strings.TrimSpace(m[2])
	if name != "" {
		spec.Filters = append(spec.Filters, Filter{Field: "producto", Op: OpContains, Value: name})
	}
}

// applyOrderBy honours "ordenar por X" and "ordenado por X". Unknown keys are dropped with a
// warning; a metric not yet requested is added to the metrics.
func (b *Builder) applyOrderBy(spec *Spec, norm string, res *BuildResult) {
	m := orderByPattern.FindStringSubmatch(norm)
	if m == nil {
		return
	}
	if strings.HasPrefix(m[2], "asc") {
		spec.OrderDir = OrderAsc
	} else if strings.HasPrefix(m[2], "desc") {
		spec.OrderDir = OrderDesc
	}

	if key, _, ok := b.resolver.Resolve(m[1], b.registry.MetricTable()); ok {
		if !spec.HasMetric(key) {
			spec.Metrics = append(spec.Metrics, key)
		}
		spec.OrderBy = []string{key}
		return
	}
	if key, _, ok := b.resolver.Resolve(m[1], b.registry.DimensionTable()); ok {
		if spec.HasDimension(key) {
			spec.OrderBy = []string{key}
			return
		}
		res.Warnings = append(res.Warnings, "Se ignoró el orden por "+key+" porque no está en la agrupación.")
		return
	}
	res.Warnings = append(res.Warnings, "No se reconoció el criterio de orden \""+m[1]+"\".")
}

func detectFormat(norm string) Format {
	switch {
	case excelWords.MatchString(norm):
		return FormatExcel
	case pdfWords.MatchString(norm):
		return FormatPDF
	default:
		return FormatScreen
	}
}

func detectOrderDir(norm string) OrderDir {
	switch {
	case ascWords.MatchString(norm):
		return OrderAsc
	case descWords.MatchString(norm):
		return OrderDesc
	default:
		return ""
	}
}

// extractLimit reports the row limit and whether it asks for the bottom of
// the ranking.
func extractLimit(norm string) (int, bool, bool) {
	if m := bottomPattern.FindStringSubmatch(norm); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return n, true, true
		}
	}
	for _, re := range limitPatterns {
		if m := re.FindStringSubmatch(norm); m != nil {
			n, err := strconv.Atoi(m[1])
			if err != nil {
				continue
			}
			return n, false, true
		}
	}
	return 0, false, false
}

// extractFilters reads filter values from the original text so their
// casing and accents survive.
func extractFilters(prompt string) []Filter {
	var filters []Filter
	for _, fp := range filterPatterns {
		for _, loc := range fp.re.FindAllStringSubmatchIndex(prompt, -1) {
			if groupedLead.MatchString(prompt[:loc[0]]) {
				continue
			}
			value := prompt[loc[2]:loc[3]]
			// The leading space lets a connector at the very start end the value.
			if stop := valueStop.FindStringIndex(" " + value); stop != nil {
				value = value[:max(stop[0]-1, 0)]
			}
			value = strings.Trim(strings.TrimSpace(value), `"'.`)
			if value == "" || isNumeric(value) || connectorWords[strings.ToLower(value)] {
				continue
			}
			filters = append(filters, Filter{Field: fp.field, Op: OpContains, Value: value})
			break
		}
	}
	return filters
}

func hintsFor(spec Spec, hadDates bool) []string {
	var hints []string
	if spec.Format == FormatScreen {
		hints = append(hints, "Agrega \"en excel\" o \"en pdf\" para descargar el reporte.")
	}
	if usesSalesData(spec.Intent) && !hadDates {
		hints = append(hints, "Indica un rango como \"del 01/09/2025 al 30/09/2025\" o \"mes pasado\".")
	}
	if spec.Intent == IntentSales && len(spec.Dimensions) == 1 && spec.Dimensions[0] == defaultDimension {
		hints = append(hints, "Prueba agrupar \"por cliente\", \"por categoría\" o \"por mes\".")
	}
	return hints
}

// usesSalesData reports whether the intent reads sales within a date range.
func usesSalesData(intent Intent) bool {
	switch intent {
	case IntentSales, IntentTopProducts, IntentCustom, IntentNoMovement:
		return true
	default:
		return false
	}
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if (r < '0' || r > '9') && r != '/' && r != '-' {
			return false
		}
	}
	return true
}

func equalKeys(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
