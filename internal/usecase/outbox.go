package usecase

import (
	"context"
	"encoding/json"

	"github.com/DRSN-tech/inventory-backend/internal/domain"
	"github.com/DRSN-tech/inventory-backend/pkg/e"
)

// OutboxRecorder пишет события в таблицу outbox в той же транзакции, что и изменение остатков.
type OutboxRecorder struct {
	repo OutboxRepository
}

func NewOutboxRecorder(repo OutboxRepository) *OutboxRecorder {
	return &OutboxRecorder{repo: repo}
}

func (o *OutboxRecorder) Record(ctx context.Context, event *domain.StockEvent) error {
	const op = "OutboxRecorder.Record"

	payload, err := json.Marshal(event)
	if err != nil {
		return e.Wrap(op, err)
	}

	if _, err := o.repo.Create(ctx, NewOutboxEvent(event.EventID, OutboxEventType(event.Type), event.Name, payload)); err != nil {
		return e.Wrap(op, err)
	}

	return nil
}

// NopRecorder используется, когда публикация событий выключена.
type NopRecorder struct{}

func (NopRecorder) Record(context.Context, *domain.StockEvent) error { return nil }
