package classifier

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var trainedAt = time.Date(2025, time.September, 17, 15, 0, 0, 0, time.UTC)

func trainBase(t *testing.T) *Model {
	t.Helper()
	opts := DefaultTrainOptions()
	opts.Clock = clockwork.NewFakeClockAt(trainedAt)
	m, err := Train(BaseExamples, opts)
	require.NoError(t, err)
	return m
}

// toyModel separates two one-word classes by hand.
func toyModel() *Model {
	vec := FitVectorizer([]string{"alfa", "beta"})
	return &Model{
		Version:    ModelVersion,
		Classes:    []string{"a", "b"},
		Vectorizer: vec,
		Weights:    [][]float64{{5, -5}, {-5, 5}},
		Bias:       []float64{0, 0},
	}
}

func TestTerms(t *testing.T) {
	assert.Equal(t, []string{"ventas", "categoria", "ventas categoria"}, terms("Ventas por la Categoría"))
	assert.Empty(t, terms("de la y"))
}

func TestFitVectorizer(t *testing.T) {
	vec := FitVectorizer([]string{"ventas mes", "ventas cliente"})

	assert.Equal(t, 5, vec.Size())
	idx := vec.Vocabulary["ventas"]
	assert.InDelta(t, 1.0, vec.IDF[idx], 1e-9, "a term in every document keeps weight 1")

	x := vec.transform("ventas ventas mes desconocido")
	var norm float64
	for _, f := range x {
		norm += f.value * f.value
	}
	assert.InDelta(t, 1.0, norm, 1e-9)
}

func TestTrain(t *testing.T) {
	m := trainBase(t)

	assert.Equal(t, []string{"precios", "sin_movimiento", "stock", "stock_bajo", "top_productos", "ventas"}, m.Classes)
	assert.Equal(t, len(BaseExamples), m.Examples)
	assert.Equal(t, trainedAt, m.TrainedAt)

	label, confidence, ok := m.Predict("lista de precios")
	require.True(t, ok)
	assert.Equal(t, "precios", label)
	assert.Greater(t, confidence, 0.0)
	assert.LessOrEqual(t, confidence, 1.0)

	var sum float64
	for _, p := range m.Probabilities("ventas por mes") {
		sum += p
	}
	assert.InDelta(t, 1.0, sum, 1e-9)

	assert.GreaterOrEqual(t, Evaluate(m, BaseExamples).Accuracy, 0.75)
}

func TestTrainNeedsTwoLabels(t *testing.T) {
	_, err := Train([]Example{{"ventas", "ventas"}, {"mas ventas", "ventas"}}, TrainOptions{})
	assert.ErrorIs(t, err, ErrTooFewClasses)
}

func TestPredictWithoutModel(t *testing.T) {
	var m *Model
	_, _, ok := m.Predict("ventas")
	assert.False(t, ok)
}

func TestEvaluate(t *testing.T) {
	eval := Evaluate(toyModel(), []Example{{"alfa", "a"}, {"beta", "b"}, {"alfa", "b"}})

	assert.InDelta(t, 2.0/3.0, eval.Accuracy, 1e-9)
	require.Len(t, eval.Classes, 2)
	assert.Equal(t, ClassReport{Label: "a", Precision: 0.5, Recall: 1, F1: 2.0 / 3.0, Support: 1}, roundReport(eval.Classes[0]))
	assert.Equal(t, ClassReport{Label: "b", Precision: 1, Recall: 0.5, F1: 2.0 / 3.0, Support: 2}, roundReport(eval.Classes[1]))
}

func roundReport(r ClassReport) ClassReport {
	if d := r.F1 - 2.0/3.0; d > -1e-9 && d < 1e-9 {
		r.F1 = 2.0 / 3.0
	}
	return r
}

func TestCrossValidate(t *testing.T) {
	opts := TrainOptions{Epochs: 50, Folds: 3, Seed: 7}
	acc, err := CrossValidate(context.Background(), BaseExamples, opts)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, acc, 0.0)
	assert.LessOrEqual(t, acc, 1.0)

	_, err = CrossValidate(context.Background(), []Example{{"a", "x"}, {"b", "x"}}, opts)
	assert.ErrorIs(t, err, ErrTooFewClasses)
}

func TestTrainAndEvaluate(t *testing.T) {
	res, err := TrainAndEvaluate(context.Background(), BaseExamples, TrainOptions{Epochs: 50, Folds: 3})
	require.NoError(t, err)
	require.NotNil(t, res.Model)
	assert.Equal(t, len(BaseExamples), res.Model.Examples)

	support := 0
	for _, c := range res.Holdout.Classes {
		support += c.Support
	}
	assert.Equal(t, 6, support, "one holdout example per label")
}

func TestStratifiedSplitAndFolds(t *testing.T) {
	train, test := stratifiedSplit(BaseExamples, 0.25, 42)
	assert.Len(t, test, 6)
	assert.Len(t, train, len(BaseExamples)-6)

	again, _ := stratifiedSplit(BaseExamples, 0.25, 42)
	assert.Equal(t, train, again, "split is deterministic for a seed")

	folds := stratifiedFolds(BaseExamples, 3, 42)
	seen := map[int]int{}
	for _, f := range folds {
		seen[f]++
	}
	assert.Len(t, seen, 3)
	for fold, n := range seen {
		assert.Equal(t, 8, n, "fold %d", fold)
	}
}

func TestModelSaveLoad(t *testing.T) {
	m := trainBase(t)
	path := filepath.Join(t.TempDir(), "models", "intent.json")
	require.NoError(t, m.Save(path))

	loaded, err := LoadModel(path)
	require.NoError(t, err)
	assert.Equal(t, m.Classes, loaded.Classes)
	assert.InDeltaSlice(t, m.Probabilities("stock bajo de teclados"), loaded.Probabilities("stock bajo de teclados"), 1e-12)

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temporary file is renamed away")
}

func TestLoadModelErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadModel(filepath.Join(dir, "missing.json"))
	assert.ErrorIs(t, err, ErrNoModel)

	corrupt := filepath.Join(dir, "corrupt.json")
	require.NoError(t, os.WriteFile(corrupt, []byte("{not json"), 0o600))
	_, err = LoadModel(corrupt)
	assert.Error(t, err)

	old := filepath.Join(dir, "old.json")
	require.NoError(t, os.WriteFile(old, []byte(`{"version":0}`), 0o600))
	_, err = LoadModel(old)
	assert.ErrorContains(t, err, "unsupported model version")

	mismatched := toyModel()
	mismatched.Bias = []float64{0}
	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, mismatched.Save(bad))
	_, err = LoadModel(bad)
	assert.ErrorContains(t, err, "corrupt model")
}

func TestHolderReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "intent.json")
	h := NewHolder(path, zerolog.Nop())

	loaded, err := h.Reload()
	require.NoError(t, err)
	assert.False(t, loaded)
	_, _, ok := h.Predict("ventas")
	assert.False(t, ok, "no model predicts nothing")

	require.NoError(t, toyModel().Save(path))
	loaded, err = h.Reload()
	require.NoError(t, err)
	assert.True(t, loaded)
	label, _, ok := h.Predict("alfa")
	require.True(t, ok)
	assert.Equal(t, "a", label)

	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0o600))
	loaded, err = h.Reload()
	assert.Error(t, err)
	assert.False(t, loaded)
	require.NotNil(t, h.Model(), "a corrupt file keeps the previous model")

	loaded, err = NewHolder("", zerolog.Nop()).Reload()
	assert.NoError(t, err)
	assert.False(t, loaded)
}

func TestCSV(t *testing.T) {
	input := "\"ventas por mes\",ventas\nsolo\n,stock\n\"stock, bajo\",stock_bajo\n"
	examples, err := ReadCSV(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, []Example{{"ventas por mes", "ventas"}, {"stock, bajo", "stock_bajo"}}, examples)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, examples))
	again, err := ReadCSV(&buf)
	require.NoError(t, err)
	assert.Equal(t, examples, again)
}

func TestLoadDataset(t *testing.T) {
	examples, err := LoadDataset("")
	require.NoError(t, err)
	assert.Len(t, examples, len(BaseExamples))

	examples, err = LoadDataset(filepath.Join(t.TempDir(), "missing.csv"))
	require.NoError(t, err)
	assert.Len(t, examples, len(BaseExamples))

	path := filepath.Join(t.TempDir(), "extra.csv")
	require.NoError(t, os.WriteFile(path, []byte("agrega un mouse al carrito,agregar_carrito\nprecio del monitor,precios\n"), 0o600))
	examples, err = LoadDataset(path)
	require.NoError(t, err)
	assert.Len(t, examples, len(BaseExamples)+2)
	assert.Equal(t, "agregar_carrito", examples[len(BaseExamples)].Label)
}
