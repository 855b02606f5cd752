package postgres

import (
	"context"

	"imprint/internal/core/id"
	"imprint/internal/domain/statements"
)

// StatementEventPublisher bridges the statement service's event port to the
// transactional outbox.
type StatementEventPublisher struct {
	outbox *OutboxPublisher
}

// NewStatementEventPublisher creates the outbox-backed event publisher.
func NewStatementEventPublisher(outbox *OutboxPublisher) *StatementEventPublisher {
	return &StatementEventPublisher{outbox: outbox}
}

// Publish writes the event to the outbox within the current transaction.
func (p *StatementEventPublisher) Publish(ctx context.Context, aggregateID id.ID, eventType string, payload any) error {
	return p.outbox.Publish(ctx, DomainEvent{
		AggregateType: "Statement",
		AggregateID:   aggregateID,
		EventType:     eventType,
		Payload:       payload,
	})
}

// Ensure interface compliance.
var _ statements.EventPublisher = (*StatementEventPublisher)(nil)
