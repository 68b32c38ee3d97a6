package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Appender hands a finished entry to the trail. Implementations are the
// queue producer (production) and the store itself (worker, tests).
type Appender interface {
	Append(ctx context.Context, entry Entry) error
}

// Logger builds entries and submits them best-effort. Submission failures
// are reported to process diagnostics and never reach the caller: the
// guarded action's own outcome must not depend on audit durability.
type Logger struct {
	appender Appender
	logger   *slog.Logger
	now      func() time.Time
}

// NewLogger constructs a Logger. A nil slog logger falls back to the default.
func NewLogger(appender Appender, logger *slog.Logger) *Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Logger{appender: appender, logger: logger, now: time.Now}
}

// LogSuccess records a completed action.
func (l *Logger) LogSuccess(ctx context.Context, entry Entry) {
	entry.Outcome = OutcomeSuccess
	entry.Reason = ""
	l.submit(ctx, entry)
}

// LogFailure records a failed or denied action with its reason.
func (l *Logger) LogFailure(ctx context.Context, entry Entry, reason string) {
	entry.Outcome = OutcomeFailure
	entry.Reason = reason
	if entry.Severity == "" {
		entry.Severity = SeverityWarning
	}
	l.submit(ctx, entry)
}

func (l *Logger) submit(ctx context.Context, entry Entry) {
	if l == nil || l.appender == nil {
		return
	}
	if entry.Actor == "" {
		// No resolved identity: skip rather than fake a placeholder actor.
		l.logger.Debug("audit entry skipped, no actor", slog.String("action", string(entry.Action)))
		return
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.At.IsZero() {
		entry.At = l.now().UTC()
	}
	if entry.Severity == "" {
		entry.Severity = SeverityInfo
	}
	// The request context may already be cancelled once the response is
	// written; submission still has to happen.
	if err := l.appender.Append(context.WithoutCancel(ctx), entry); err != nil {
		l.logger.Warn("audit append failed",
			slog.String("action", string(entry.Action)),
			slog.String("actor", entry.Actor),
			slog.Any("error", err))
	}
}

// WithAudit wraps fn so that every invocation produces exactly one audit
// entry: a success entry after normal completion, a failure entry carrying
// the error message otherwise. The original result and error pass through
// unchanged. derive builds the entry skeleton from the argument and, on
// success only, the result.
func WithAudit[A, R any](logger *Logger, action Action, fn func(context.Context, A) (R, error), derive func(arg A, result *R) Entry) func(context.Context, A) (R, error) {
	return func(ctx context.Context, arg A) (R, error) {
		result, err := fn(ctx, arg)
		var entry Entry
		if err != nil {
			if derive != nil {
				entry = derive(arg, nil)
			}
			entry.Action = action
			logger.LogFailure(ctx, entry, err.Error())
			return result, err
		}
		if derive != nil {
			entry = derive(arg, &result)
		}
		entry.Action = action
		logger.LogSuccess(ctx, entry)
		return result, nil
	}
}
