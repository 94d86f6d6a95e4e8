package report

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

// UsageEntry archives one interpreted prompt for later review and retraining.
type UsageEntry struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id,omitempty"`
	PromptText      string    `json:"prompt_text"`
	PredictedIntent *string   `json:"predicted_intent,omitempty"`
	Confidence      *float64  `json:"confidence,omitempty"`
	ResolvedIntent  Intent    `json:"resolved_intent"`
	Spec            Spec      `json:"spec"`
	CreatedAt       time.Time `json:"created_at"`
	HumanLabel      *string   `json:"human_label,omitempty"`
}

// ReviewFilter selects entries worth a human look: no prediction, or a
// prediction below MaxConfidence.
type ReviewFilter struct {
	MaxConfidence float64
	Limit         int
}

// UsageRepository persists usage entries.
type UsageRepository interface {
	Create(ctx context.Context, entry *UsageEntry) error
	ListForReview(ctx context.Context, filter ReviewFilter) ([]UsageEntry, error)
	SetHumanLabel(ctx context.Context, id string, label string) (UsageEntry, error)
	// ListLabeled returns reviewed entries, oldest first.
	ListLabeled(ctx context.Context) ([]UsageEntry, error)
}

// PromptSanitizer scrubs personal data before prompts are stored.
type PromptSanitizer interface {
	SanitizePrompt(input string) string
	SanitizeUserID(userID string) string
}

// UsageLogger records usage entries without ever failing the caller.
type UsageLogger interface {
	Record(ctx context.Context, entry UsageEntry)
}

// UsageLoggerOption customizes the usage logger.
type UsageLoggerOption func(*usageLogger)

// WithSanitizer scrubs prompts and user ids before storage.
func WithSanitizer(s PromptSanitizer) UsageLoggerOption {
	return func(l *usageLogger) { l.sanitizer = s }
}

// WithFailureHook is called with every swallowed error.
func WithFailureHook(hook func(error)) UsageLoggerOption {
	return func(l *usageLogger) { l.onFailure = hook }
}

// WithClock overrides the timestamp source.
func WithClock(clock clockwork.Clock) UsageLoggerOption {
	return func(l *usageLogger) { l.clock = clock }
}

// WithWriteTimeout bounds each write.
func WithWriteTimeout(timeout time.Duration) UsageLoggerOption {
	return func(l *usageLogger) {
		if timeout > 0 {
			l.timeout = timeout
		}
	}
}

type usageLogger struct {
	repo      UsageRepository
	sanitizer PromptSanitizer
	clock     clockwork.Clock
	timeout   time.Duration
	onFailure func(error)
	log       zerolog.Logger
}

// NewUsageLogger wraps repo. A nil repo yields a logger that drops entries.
func NewUsageLogger(repo UsageRepository, log zerolog.Logger, opts ...UsageLoggerOption) UsageLogger {
	l := &usageLogger{
		repo:    repo,
		clock:   clockwork.NewRealClock(),
		timeout: 2 * time.Second,
		log:     log.With().Str("component", "usage-logger").Logger(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Record stores entry. Errors and panics are logged and swallowed; the write
// is detached from the caller's cancellation.
func (l *usageLogger) Record(ctx context.Context, entry UsageEntry) {
	if l.repo == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			l.fail(fmt.Errorf("usage logger panic: %v", r))
		}
	}()

	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = l.clock.Now().UTC()
	}
	if l.sanitizer != nil {
		entry.PromptText = l.sanitizer.SanitizePrompt(entry.PromptText)
		entry.UserID = l.sanitizer.SanitizeUserID(entry.UserID)
	}

	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), l.timeout)
	defer cancel()
	if err := l.repo.Create(writeCtx, &entry); err != nil {
		l.fail(err)
	}
}

func (l *usageLogger) fail(err error) {
	l.log.Warn().Err(err).Msg("usage log write failed")
	if l.onFailure != nil {
		l.onFailure(err)
	}
}
