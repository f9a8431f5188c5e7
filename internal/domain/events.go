package domain

import (
	"context"
	"time"
)

// OperationEvent describes a committed ledger operation. Events are emitted
// after commit, best-effort; consumers must tolerate duplicates and gaps.
type OperationEvent struct {
	EventID       string          `json:"eventId"`
	EntryID       int64           `json:"entryId"`
	OperationType TransactionType `json:"operationType"`
	AccountNumber string          `json:"accountNumber"`
	ToAccount     *string         `json:"toAccount,omitempty"`
	Amount        string          `json:"amount"`
	NewBalance    string          `json:"newBalance"`
	Timestamp     string          `json:"timestamp"`
}

// EventPublisher publishes ledger events to external systems (e.g. RabbitMQ).
type EventPublisher interface {
	PublishOperationCompleted(ctx context.Context, event *OperationEvent) error
}

// FormatEventTimestamp renders an event timestamp in ISO 8601.
func FormatEventTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
