package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  Ventas  por Categoría!! ", "ventas por categoria"},
		{"AÑO pasado", "ano pasado"},
		{"del 01/09/2025 al 2025-09-30", "del 01/09/2025 al 2025-09-30"},
		{"monto_total, ¿por mes?", "monto_total por mes"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := Normalize(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, Normalize(got), "normalize must be idempotent")
		})
	}
}

func TestTokens(t *testing.T) {
	assert.Equal(t, []string{"ventas", "por", "categoria"}, Tokens("Ventas   por\tCategoría"))
	assert.Empty(t, Tokens("  ¡!  "))
}

func TestRatio(t *testing.T) {
	assert.Equal(t, 100.0, Ratio("ventas", "ventas"))
	assert.Equal(t, 100.0, Ratio("", ""))
	assert.InDelta(t, 88.89, Ratio("clientess", "clientes"), 0.01)
}

func TestTokenSetRatio(t *testing.T) {
	assert.Equal(t, 100, TokenSetRatio("ventas", "numero de ventas"), "subset scores full")
	assert.Equal(t, 100, TokenSetRatio("ticket promedio", "promedio ticket"))
	assert.Equal(t, 0, TokenSetRatio("", "ventas"))
	assert.Equal(t, 71, TokenSetRatio("reporte", "importe"))
}

func TestResolverResolve(t *testing.T) {
	reg := DefaultRegistry()
	r := NewResolver(DefaultFuzzyCutoff)

	tests := []struct {
		name      string
		token     string
		table     SynonymTable
		wantKey   string
		wantScore int
		wantOK    bool
	}{
		{"exact key", "producto", reg.DimensionTable(), "producto", 100, true},
		{"accented synonym", "Categorías", reg.DimensionTable(), "categoria", 100, true},
		{"irregular plural", "meses", reg.DimensionTable(), "mes", 100, true},
		{"metric synonym", "facturacion", reg.MetricTable(), "monto_total", 100, true},
		{"typo", "clientess", reg.DimensionTable(), "cliente", 89, true},
		{"unknown", "zzz", reg.DimensionTable(), "", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, score, ok := r.Resolve(tt.token, tt.table)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantKey, key)
			if tt.wantOK {
				assert.Equal(t, tt.wantScore, score)
			}
		})
	}
}

func TestResolverFirstEntryWinsTies(t *testing.T) {
	table := SynonymTable{
		{Key: "alpha", Synonyms: []string{"foobar"}},
		{Key: "beta", Synonyms: []string{"foobaz"}},
	}
	key, score, ok := NewResolver(DefaultFuzzyCutoff).Resolve("fooba", table)
	assert.True(t, ok)
	assert.Equal(t, "alpha", key)
	assert.Equal(t, 83, score)
}

func TestResolverCutoff(t *testing.T) {
	reg := DefaultRegistry()

	_, _, ok := NewResolver(95).Resolve("clientess", reg.DimensionTable())
	assert.False(t, ok)

	key, _, ok := NewResolver(0).Resolve("clientess", reg.DimensionTable())
	assert.True(t, ok, "non-positive cutoff falls back to the default")
	assert.Equal(t, "cliente", key)
}
