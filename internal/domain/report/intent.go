package report

import (
	"regexp"
	"strings"
)

// Source names the classifier tier that decided an intent.
type Source string

const (
	SourceRule    Source = "rule"
	SourceModel   Source = "model"
	SourceDefault Source = "default"
)

// DefaultModelThreshold is the minimum probability for a model prediction to be used.
const DefaultModelThreshold = 0.60

// Classification is the outcome of intent classification. PredictedIntent and
// Confidence carry the statistical model's opinion whenever one was computed,
// even if another tier decided.
type Classification struct {
	Intent          Intent
	Source          Source
	PredictedIntent string
	Confidence      *float64
}

// Classifier is a single strategy. ok is false when the strategy abstains.
type Classifier interface {
	Classify(text string) (Classification, bool)
}

// Predictor is a trained text model returning its best label and probability.
type Predictor interface {
	Predict(text string) (label string, confidence float64, ok bool)
}

// Rule maps a text predicate to an intent.
type Rule struct {
	Intent Intent
	Match  func(normalized, raw string) bool
}

// RuleClassifier applies ordered rules; the first match wins.
type RuleClassifier struct {
	rules []Rule
}

var (
	cartVerbs       = regexp.MustCompile(`\b(agrega|agregar|agregame|agregue|anade|anadir|anademe|pon|poner|ponme|mete|meter|meteme|quiero|suma|sumar)\b`)
	cartNouns       = regexp.MustCompile(`\b(carrito|carro|compra|pedido)\b`)
	priceTerms      = regexp.MustCompile(`\b(precio|precios|tarifa|tarifas)\b`)
	stockTerms      = regexp.MustCompile(`\b(stock|inventario|existencia|existencias)\b`)
	lowStockCues    = regexp.MustCompile(`\b(poco|pocos|poca|pocas|bajo|baja|menor|menores|reponer|renovar|critico|minimo|agotad\w*|debajo)\b`)
	lessThanSymbol  = regexp.MustCompile(`<\s*\d`)
	noMovementTerms = regexp.MustCompile(`\b(sin\s+ventas?|sin\s+movimientos?|sin\s+rotacion|no\s+se\s+(han\s+)?vendi\w*|no\s+vendid\w*|que\s+no\s+se\s+vendieron)\b`)
	topTerms        = regexp.MustCompile(`\b(mas\s+vendid\w*|menos\s+vendid\w*|top\s*\d*|bottom\s*\d+|ranking|estrella|populares|mejores\s+productos)\b`)
	orderTerms      = regexp.MustCompile(`\b(compras|ordenes|pedidos)\b`)
)

// DefaultRules is the ordered rule set. Cart requests short-circuit
// everything else.
func DefaultRules() []Rule {
	return []Rule{
		{Intent: IntentAddToCart, Match: func(n, _ string) bool {
			return cartVerbs.MatchString(n) && cartNouns.MatchString(n)
		}},
		{Intent: IntentPrices, Match: func(n, _ string) bool {
			return priceTerms.MatchString(n)
		}},
		{Intent: IntentLowStock, Match: func(n, raw string) bool {
			return stockTerms.MatchString(n) && (lowStockCues.MatchString(n) || lessThanSymbol.MatchString(raw))
		}},
		{Intent: IntentStock, Match: func(n, _ string) bool {
			return stockTerms.MatchString(n)
		}},
		{Intent: IntentNoMovement, Match: func(n, _ string) bool {
			return noMovementTerms.MatchString(n)
		}},
		{Intent: IntentTopProducts, Match: func(n, _ string) bool {
			return topTerms.MatchString(n)
		}},
		{Intent: IntentSales, Match: func(n, _ string) bool {
			return orderTerms.MatchString(n)
		}},
	}
}

func NewRuleClassifier(rules []Rule) *RuleClassifier {
	if rules == nil {
		rules = DefaultRules()
	}
	return &RuleClassifier{rules: rules}
}

func (c *RuleClassifier) Classify(text string) (Classification, bool) {
	normalized := Normalize(text)
	raw := strings.ToLower(text)
	for _, rule := range c.rules {
		if rule.Match(normalized, raw) {
			return Classification{Intent: rule.Intent, Source: SourceRule}, true
		}
	}
	return Classification{}, false
}

// StatisticalClassifier accepts a model prediction only at or above threshold.
type StatisticalClassifier struct {
	predictor Predictor
	threshold float64
}

func NewStatisticalClassifier(predictor Predictor, threshold float64) *StatisticalClassifier {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultModelThreshold
	}
	return &StatisticalClassifier{predictor: predictor, threshold: threshold}
}

func (c *StatisticalClassifier) Classify(text string) (Classification, bool) {
	if c == nil || c.predictor == nil {
		return Classification{}, false
	}
	label, confidence, ok := c.predictor.Predict(text)
	if !ok || label == "" {
		return Classification{}, false
	}
	result := Classification{PredictedIntent: label, Confidence: &confidence}
	intent := Intent(label)
	if confidence < c.threshold || !intent.Valid() {
		return result, false
	}
	result.Intent = intent
	result.Source = SourceModel
	return result, true
}

// Chain runs strategies in order and takes the first that does not abstain,
// falling back to a fixed intent. Every strategy is consulted so the model's
// prediction is recorded even when a rule decides.
type Chain struct {
	strategies []Classifier
	fallback   Intent
}

func NewChain(fallback Intent, strategies ...Classifier) *Chain {
	if fallback == "" {
		fallback = defaultIntent
	}
	return &Chain{strategies: strategies, fallback: fallback}
}

func (c *Chain) Classify(text string) (Classification, bool) {
	var (
		decided    *Classification
		prediction Classification
	)
	for _, strategy := range c.strategies {
		result, ok := strategy.Classify(text)
		if prediction.PredictedIntent == "" && result.PredictedIntent != "" {
			prediction = result
		}
		if ok && decided == nil {
			r := result
			decided = &r
		}
	}

	out := Classification{Intent: c.fallback, Source: SourceDefault}
	if decided != nil {
		out.Intent, out.Source = decided.Intent, decided.Source
	}
	out.PredictedIntent = prediction.PredictedIntent
	out.Confidence = prediction.Confidence
	return out, true
}
