// Package jobs wires background task processing. Audit entries travel
// through the queue so the guarded action never waits on audit durability.
package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/praxis-hq/praxis/internal/audit"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskAuditAppend is the task type carrying one audit entry.
	TaskAuditAppend = "audit:append"
)

// NewAuditAppendTask constructs an Asynq task for one audit entry.
func NewAuditAppendTask(entry audit.Entry) (*asynq.Task, error) {
	data, err := json.Marshal(entry)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAuditAppend, data, asynq.MaxRetry(5), asynq.Queue(QueueDefault)), nil
}

// AuditAppendJob writes queued audit entries through the store. Entry IDs
// make redelivery idempotent, so at-least-once queue semantics are safe.
type AuditAppendJob struct {
	store  audit.Appender
	logger *slog.Logger
}

// NewAuditAppendJob constructs the handler.
func NewAuditAppendJob(store audit.Appender, logger *slog.Logger) *AuditAppendJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditAppendJob{store: store, logger: logger}
}

// Handle processes TaskAuditAppend tasks.
func (j *AuditAppendJob) Handle(ctx context.Context, t *asynq.Task) error {
	var entry audit.Entry
	if err := json.Unmarshal(t.Payload(), &entry); err != nil {
		j.logger.Error("audit task payload", slog.Any("error", err))
		return fmt.Errorf("jobs: decode audit entry: %w", asynq.SkipRetry)
	}
	if err := j.store.Append(ctx, entry); err != nil {
		return fmt.Errorf("jobs: append audit entry %s: %w", entry.ID, err)
	}
	return nil
}

// QueueAppender submits audit entries to the queue. It is the production
// audit.Appender: enqueueing is fast and the caller never blocks on the
// store.
type QueueAppender struct {
	client *asynq.Client
}

// NewQueueAppender constructs a QueueAppender.
func NewQueueAppender(client *asynq.Client) *QueueAppender {
	return &QueueAppender{client: client}
}

// Append enqueues the entry for the worker.
func (q *QueueAppender) Append(ctx context.Context, entry audit.Entry) error {
	task, err := NewAuditAppendTask(entry)
	if err != nil {
		return err
	}
	if _, err := q.client.EnqueueContext(ctx, task); err != nil {
		return fmt.Errorf("jobs: enqueue audit entry: %w", err)
	}
	return nil
}
