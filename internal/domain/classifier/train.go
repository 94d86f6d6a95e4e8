package classifier

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"
)

// Example is one labeled prompt.
type Example struct {
	Text  string
	Label string
}

// TrainOptions tunes gradient descent.
type TrainOptions struct {
	Epochs       int
	LearningRate float64
	L2           float64
	Folds        int
	HoldoutRatio float64
	Seed         int64
	Clock        clockwork.Clock
}

// DefaultTrainOptions mirrors the production training job.
func DefaultTrainOptions() TrainOptions {
	return TrainOptions{
		Epochs:       300,
		LearningRate: 1.0,
		L2:           1e-3,
		Folds:        5,
		HoldoutRatio: 0.25,
		Seed:         42,
	}
}

func (o TrainOptions) withDefaults() TrainOptions {
	d := DefaultTrainOptions()
	if o.Epochs <= 0 {
		o.Epochs = d.Epochs
	}
	if o.LearningRate <= 0 {
		o.LearningRate = d.LearningRate
	}
	if o.L2 < 0 {
		o.L2 = d.L2
	}
	if o.Folds <= 1 {
		o.Folds = d.Folds
	}
	if o.HoldoutRatio <= 0 || o.HoldoutRatio >= 1 {
		o.HoldoutRatio = d.HoldoutRatio
	}
	if o.Clock == nil {
		o.Clock = clockwork.NewRealClock()
	}
	return o
}

// ErrTooFewClasses is returned when a dataset cannot separate anything.
var ErrTooFewClasses = errors.New("training data needs at least two labels")

// Train fits a class-balanced logistic regression on examples.
func Train(examples []Example, opts TrainOptions) (*Model, error) {
	opts = opts.withDefaults()
	classes := labelsOf(examples)
	if len(classes) < 2 {
		return nil, ErrTooFewClasses
	}

	texts := make([]string, len(examples))
	for i, ex := range examples {
		texts[i] = ex.Text
	}
	vec := FitVectorizer(texts)

	classIndex := make(map[string]int, len(classes))
	for i, c := range classes {
		classIndex[c] = i
	}
	counts := make([]float64, len(classes))
	for _, ex := range examples {
		counts[classIndex[ex.Label]]++
	}
	// balanced weights: n / (k * count)
	sampleWeight := make([]float64, len(classes))
	for c := range classes {
		sampleWeight[c] = float64(len(examples)) / (float64(len(classes)) * counts[c])
	}

	xs := make([][]feature, len(examples))
	ys := make([]int, len(examples))
	var totalWeight float64
	for i, ex := range examples {
		xs[i] = vec.transform(ex.Text)
		ys[i] = classIndex[ex.Label]
		totalWeight += sampleWeight[ys[i]]
	}

	m := &Model{
		Version:    ModelVersion,
		Classes:    classes,
		Vectorizer: vec,
		Weights:    make([][]float64, len(classes)),
		Bias:       make([]float64, len(classes)),
		Examples:   len(examples),
	}
	for c := range classes {
		m.Weights[c] = make([]float64, vec.Size())
	}

	gradW := make([][]float64, len(classes))
	for c := range gradW {
		gradW[c] = make([]float64, vec.Size())
	}
	gradB := make([]float64, len(classes))

	for epoch := 0; epoch < opts.Epochs; epoch++ {
		for c := range gradW {
			clear(gradW[c])
		}
		clear(gradB)

		for i, x := range xs {
			probs := m.probabilities(x)
			w := sampleWeight[ys[i]] / totalWeight
			for c := range classes {
				diff := probs[c]
				if c == ys[i] {
					diff -= 1
				}
				diff *= w
				gradB[c] += diff
				for _, f := range x {
					gradW[c][f.index] += diff * f.value
				}
			}
		}

		for c := range classes {
			m.Bias[c] -= opts.LearningRate * gradB[c]
			for j := range m.Weights[c] {
				m.Weights[c][j] -= opts.LearningRate * (gradW[c][j] + opts.L2*m.Weights[c][j])
			}
		}
	}

	m.TrainedAt = opts.Clock.Now().UTC()
	return m, nil
}

// ClassReport is precision and recall for one label on a holdout set.
type ClassReport struct {
	Label     string
	Precision float64
	Recall    float64
	F1        float64
	Support   int
}

// Evaluation summarizes a model against labeled examples.
type Evaluation struct {
	Accuracy float64
	Classes  []ClassReport
}

// Evaluate scores m on examples.
func Evaluate(m *Model, examples []Example) Evaluation {
	type tally struct{ tp, fp, fn, support int }
	byLabel := make(map[string]*tally)
	get := func(label string) *tally {
		t, ok := byLabel[label]
		if !ok {
			t = &tally{}
			byLabel[label] = t
		}
		return t
	}

	correct := 0
	for _, ex := range examples {
		predicted, _, _ := m.Predict(ex.Text)
		get(ex.Label).support++
		if predicted == ex.Label {
			correct++
			get(ex.Label).tp++
			continue
		}
		get(ex.Label).fn++
		get(predicted).fp++
	}

	var eval Evaluation
	if len(examples) > 0 {
		eval.Accuracy = float64(correct) / float64(len(examples))
	}
	labels := make([]string, 0, len(byLabel))
	for l := range byLabel {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	for _, l := range labels {
		t := byLabel[l]
		r := ClassReport{Label: l, Support: t.support}
		if t.tp+t.fp > 0 {
			r.Precision = float64(t.tp) / float64(t.tp+t.fp)
		}
		if t.tp+t.fn > 0 {
			r.Recall = float64(t.tp) / float64(t.tp+t.fn)
		}
		if r.Precision+r.Recall > 0 {
			r.F1 = 2 * r.Precision * r.Recall / (r.Precision + r.Recall)
		}
		eval.Classes = append(eval.Classes, r)
	}
	return eval
}

// CrossValidate returns the mean accuracy over stratified folds, training
// folds concurrently.
func CrossValidate(ctx context.Context, examples []Example, opts TrainOptions) (float64, error) {
	opts = opts.withDefaults()
	k := opts.Folds
	if n := len(labelsOf(examples)); n < k {
		k = n
	}
	if k < 2 {
		return 0, ErrTooFewClasses
	}
	folds := stratifiedFolds(examples, k, opts.Seed)

	scores := make([]float64, k)
	g, ctx := errgroup.WithContext(ctx)
	for fold := 0; fold < k; fold++ {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			var train, test []Example
			for i, ex := range examples {
				if folds[i] == fold {
					test = append(test, ex)
				} else {
					train = append(train, ex)
				}
			}
			if len(test) == 0 {
				return nil
			}
			m, err := Train(train, opts)
			if err != nil {
				return fmt.Errorf("fold %d: %w", fold, err)
			}
			scores[fold] = Evaluate(m, test).Accuracy
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	var sum float64
	for _, s := range scores {
		sum += s
	}
	return sum / float64(k), nil
}

// Result is the outcome of a full training run.
type Result struct {
	Model      *Model
	CVAccuracy float64
	Holdout    Evaluation
}

// TrainAndEvaluate cross-validates, reports on a stratified holdout and
// returns a final model fit on every example.
func TrainAndEvaluate(ctx context.Context, examples []Example, opts TrainOptions) (Result, error) {
	opts = opts.withDefaults()
	cv, err := CrossValidate(ctx, examples, opts)
	if err != nil {
		return Result{}, err
	}

	train, test := stratifiedSplit(examples, opts.HoldoutRatio, opts.Seed)
	holdoutModel, err := Train(train, opts)
	if err != nil {
		return Result{}, fmt.Errorf("holdout: %w", err)
	}

	final, err := Train(examples, opts)
	if err != nil {
		return Result{}, err
	}
	return Result{Model: final, CVAccuracy: cv, Holdout: Evaluate(holdoutModel, test)}, nil
}

func labelsOf(examples []Example) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, ex := range examples {
		if _, ok := seen[ex.Label]; ok {
			continue
		}
		seen[ex.Label] = struct{}{}
		out = append(out, ex.Label)
	}
	sort.Strings(out)
	return out
}

// byLabelShuffled groups example indexes per label in a seeded random order.
func byLabelShuffled(examples []Example, seed int64) (labels []string, groups map[string][]int) {
	rng := rand.New(rand.NewSource(seed))
	groups = make(map[string][]int)
	for i, ex := range examples {
		groups[ex.Label] = append(groups[ex.Label], i)
	}
	labels = labelsOf(examples)
	for _, l := range labels {
		idx := groups[l]
		rng.Shuffle(len(idx), func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })
	}
	return labels, groups
}

func stratifiedFolds(examples []Example, k int, seed int64) []int {
	folds := make([]int, len(examples))
	labels, groups := byLabelShuffled(examples, seed)
	next := 0
	for _, l := range labels {
		for _, idx := range groups[l] {
			folds[idx] = next % k
			next++
		}
	}
	return folds
}

func stratifiedSplit(examples []Example, ratio float64, seed int64) (train, test []Example) {
	labels, groups := byLabelShuffled(examples, seed)
	for _, l := range labels {
		idx := groups[l]
		n := int(float64(len(idx))*ratio + 0.5)
		if n >= len(idx) {
			n = len(idx) - 1
		}
		for i, e := range idx {
			if i < n {
				test = append(test, examples[e])
			} else {
				train = append(train, examples[e])
			}
		}
	}
	return train, test
}
