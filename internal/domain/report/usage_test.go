package report

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type upperSanitizer struct{}

func (upperSanitizer) SanitizePrompt(input string) string { return strings.ToUpper(input) }
func (upperSanitizer) SanitizeUserID(string) string       { return "hashed" }

func TestUsageLoggerRecord(t *testing.T) {
	var stored *UsageEntry
	repo := &fakeUsageRepo{createFn: func(ctx context.Context, entry *UsageEntry) error {
		require.NoError(t, ctx.Err(), "write must not inherit caller cancellation")
		stored = entry
		return nil
	}}
	logger := NewUsageLogger(repo, zerolog.Nop(), WithClock(newTestClock()), WithSanitizer(upperSanitizer{}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	logger.Record(ctx, UsageEntry{UserID: "user-1", PromptText: "ventas por mes", ResolvedIntent: IntentSales})

	require.NotNil(t, stored)
	assert.NotEmpty(t, stored.ID)
	assert.Equal(t, testNow, stored.CreatedAt)
	assert.Equal(t, "VENTAS POR MES", stored.PromptText)
	assert.Equal(t, "hashed", stored.UserID)
	assert.Equal(t, IntentSales, stored.ResolvedIntent)
}

func TestUsageLoggerKeepsGivenID(t *testing.T) {
	var stored *UsageEntry
	repo := &fakeUsageRepo{createFn: func(_ context.Context, entry *UsageEntry) error {
		stored = entry
		return nil
	}}
	NewUsageLogger(repo, zerolog.Nop()).Record(context.Background(), UsageEntry{ID: "fixed", PromptText: "x"})

	require.NotNil(t, stored)
	assert.Equal(t, "fixed", stored.ID)
	assert.Equal(t, "x", stored.PromptText)
}

func TestUsageLoggerSwallowsFailures(t *testing.T) {
	var failures []error
	hook := WithFailureHook(func(err error) { failures = append(failures, err) })

	failing := &fakeUsageRepo{createFn: func(context.Context, *UsageEntry) error {
		return errors.New("disk full")
	}}
	panicking := &fakeUsageRepo{createFn: func(context.Context, *UsageEntry) error {
		panic("nil map")
	}}

	assert.NotPanics(t, func() {
		NewUsageLogger(failing, zerolog.Nop(), hook).Record(context.Background(), UsageEntry{})
		NewUsageLogger(panicking, zerolog.Nop(), hook).Record(context.Background(), UsageEntry{})
		NewUsageLogger(nil, zerolog.Nop(), hook).Record(context.Background(), UsageEntry{})
	})
	require.Len(t, failures, 2)
	assert.EqualError(t, failures[0], "disk full")
	assert.Contains(t, failures[1].Error(), "panic")
}
