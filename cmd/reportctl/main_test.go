package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jan-server/services/report-api/internal/domain/classifier"
	"jan-server/services/report-api/internal/domain/report"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func memoryEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("REPORT_STORE", "memory")
	t.Setenv("CLASSIFIER_MODEL_PATH", filepath.Join(dir, "model.json"))
	t.Setenv("TRAINING_DATA_PATH", filepath.Join(dir, "training.csv"))
	return dir
}

func TestRunCommand_PrintsTable(t *testing.T) {
	memoryEnv(t)

	out, err := runCLI(t, "run", "ventas por categoria este mes")
	require.NoError(t, err)
	assert.Contains(t, out, "ventas |")
	assert.Contains(t, out, "Periféricos")
}

func TestRunCommand_WritesDocument(t *testing.T) {
	dir := memoryEnv(t)
	path := filepath.Join(dir, "out.xlsx")

	out, err := runCLI(t, "run", "ventas por cliente este mes", "--format", "excel", "--out", path)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote "+path)

	body, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(body, []byte("PK")))
}

func TestParseCommand(t *testing.T) {
	memoryEnv(t)

	out, err := runCLI(t, "parse", "productos con stock bajo")
	require.NoError(t, err)
	assert.Contains(t, out, `"intent": "stock_bajo"`)
	assert.Contains(t, out, "intent source: rule")
}

func TestTrainCommand_WritesLoadableModel(t *testing.T) {
	dir := memoryEnv(t)
	model := filepath.Join(dir, "model.json")

	out, err := runCLI(t, "train", "--epochs", "60", "--folds", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "training on 24 examples")
	assert.Contains(t, out, "model written to "+model)

	m, err := classifier.LoadModel(model)
	require.NoError(t, err)
	assert.NotEmpty(t, m.Classes)
}

func TestExamplesFrom(t *testing.T) {
	label := "stock"
	entries := []report.UsageEntry{
		{PromptText: "cuanto queda", ResolvedIntent: report.IntentSales, HumanLabel: &label},
		{PromptText: "algo", ResolvedIntent: report.IntentPrices},
	}

	assert.Equal(t, []classifier.Example{{Text: "cuanto queda", Label: "stock"}}, examplesFrom(entries, false))
	assert.Equal(t, []classifier.Example{
		{Text: "cuanto queda", Label: "ventas"},
		{Text: "algo", Label: "precios"},
	}, examplesFrom(entries, true))
}

func TestAppendExamples(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "train.csv")
	require.NoError(t, appendExamples(path, []classifier.Example{{Text: "a b", Label: "ventas"}}, true))
	require.NoError(t, appendExamples(path, []classifier.Example{{Text: "c", Label: "stock"}}, true))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	got, err := classifier.ReadCSV(f)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}
