package report

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateResolverResolve(t *testing.T) {
	r := NewDateResolver(newTestClock(), time.UTC)

	tests := []struct {
		prompt string
		start  Date
		end    Date
	}{
		{"ventas del 01/09/2025 al 15/09/2025", day(2025, 9, 1), day(2025, 9, 15)},
		{"ventas desde 2025-08-01 hasta 2025-08-31", day(2025, 8, 1), day(2025, 8, 31)},
		{"del 1/1/25 al 5/1/25", day(2025, 1, 1), day(2025, 1, 5)},
		{"ventas del 2025-03-05", day(2025, 3, 5), day(2025, 3, 5)},
		{"ventas de los últimos 7 días", day(2025, 9, 11), day(2025, 9, 17)},
		{"ultimas 2 semanas", day(2025, 9, 4), day(2025, 9, 17)},
		{"ultimos 3 meses", day(2025, 6, 18), day(2025, 9, 17)},
		{"ventas del mes pasado", day(2025, 8, 1), day(2025, 8, 31)},
		{"ventas de este mes", day(2025, 9, 1), day(2025, 9, 17)},
		{"esta semana", day(2025, 9, 15), day(2025, 9, 17)},
		{"la semana pasada", day(2025, 9, 8), day(2025, 9, 14)},
		{"este año", day(2025, 1, 1), day(2025, 9, 17)},
		{"el año pasado", day(2024, 1, 1), day(2024, 12, 31)},
		{"ventas de hoy", day(2025, 9, 17), day(2025, 9, 17)},
		{"ventas de ayer", day(2025, 9, 16), day(2025, 9, 16)},
		{"el mes de febrero 2024", day(2024, 2, 1), day(2024, 2, 29)},
		{"ventas en febrero", day(2025, 2, 1), day(2025, 2, 28)},
	}
	for _, tt := range tests {
		t.Run(tt.prompt, func(t *testing.T) {
			rng, ok, err := r.Resolve(tt.prompt)
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, tt.start.String(), rng.Start.String())
			assert.Equal(t, tt.end.String(), rng.End.String())
		})
	}
}

func TestDateResolverNoDates(t *testing.T) {
	r := NewDateResolver(newTestClock(), time.UTC)
	rng, ok, err := r.Resolve("ventas por producto")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.True(t, rng.Start.IsZero())
}

func TestDateResolverInvalidLiteral(t *testing.T) {
	r := NewDateResolver(newTestClock(), time.UTC)

	for _, prompt := range []string{"ventas del 31/02/2025", "ventas del 2025-13-01 al 2025-12-01"} {
		_, _, err := r.Resolve(prompt)
		require.Error(t, err, prompt)
		assert.True(t, IsInputError(err, CodeInvalidDate), prompt)
	}
}

func TestDateResolverUsesLocation(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2025, time.September, 17, 2, 0, 0, 0, time.UTC))
	r := NewDateResolver(clock, time.FixedZone("ART", -3*3600))

	assert.Equal(t, "2025-09-16", r.Today().String())
	rng, ok, err := r.Resolve("hoy")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "2025-09-16", rng.Start.String())
}

func TestTrailingWindow(t *testing.T) {
	r := NewDateResolver(newTestClock(), time.UTC)

	w := r.TrailingWindow(30)
	assert.Equal(t, "2025-08-19", w.Start.String())
	assert.Equal(t, "2025-09-17", w.End.String())
	assert.Equal(t, w, r.TrailingWindow(0))
}

func TestLastDayOfMonth(t *testing.T) {
	assert.Equal(t, 29, lastDayOfMonth(2024, time.February).Day())
	assert.Equal(t, 28, lastDayOfMonth(2025, time.February).Day())
	assert.Equal(t, 31, lastDayOfMonth(2025, time.December).Day())
}

func TestDateJSON(t *testing.T) {
	data, err := json.Marshal(struct {
		Start Date `json:"start"`
		End   Date `json:"end"`
	}{Start: day(2025, 9, 1)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"start":"2025-09-01","end":null}`, string(data))

	var d Date
	require.NoError(t, json.Unmarshal([]byte(`"2025-02-28"`), &d))
	assert.Equal(t, "2025-02-28", d.String())
	assert.Error(t, json.Unmarshal([]byte(`"28/02/2025"`), &d))
}

func TestDateContains(t *testing.T) {
	loc := time.FixedZone("ART", -3*3600)
	start, end := day(2025, 9, 1), day(2025, 9, 30)

	assert.True(t, Contains(start, end, time.Date(2025, 9, 30, 23, 59, 0, 0, loc), loc))
	assert.False(t, Contains(start, end, time.Date(2025, 10, 1, 0, 0, 0, 0, loc), loc))
	assert.False(t, Contains(start, end, time.Date(2025, 9, 1, 2, 0, 0, 0, time.UTC), loc), "23:00 of Aug 31 local")
}
