package sqlite

import (
	"context"
	"time"

	"github.com/DRSN-tech/inventory-backend/internal/usecase"
	"github.com/DRSN-tech/inventory-backend/pkg/e"
	"github.com/jimlawless/whereami"
	"gorm.io/gorm"
)

type OutboxEventRepo struct {
	db *gorm.DB
}

func NewOutboxEventRepo(db *gorm.DB) *OutboxEventRepo {
	return &OutboxEventRepo{db: db}
}

// Create сохраняет событие в транзакции бизнес-операции, если она есть в ctx.
func (o *OutboxEventRepo) Create(ctx context.Context, event *usecase.OutboxEvent) (*usecase.OutboxEvent, error) {
	model := outboxEventToModel(event)
	if err := conn(ctx, o.db).Create(model).Error; err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return model.toEntity(), nil
}

// GetAndMarkAsProcessing забирает пачку событий в статусе pending и брошенных в processing дольше staleAfter.
// Транзакция IMMEDIATE блокирует запись, так что два воркера не получат одно событие.
func (o *OutboxEventRepo) GetAndMarkAsProcessing(ctx context.Context, limit int, staleAfter time.Duration) ([]*usecase.OutboxEvent, error) {
	var models []OutboxEventModel

	now := time.Now().UTC()
	err := o.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("status = ? OR (status = ? AND processing_started_at < ?)",
			string(usecase.Pending), string(usecase.Processing), now.Add(-staleAfter)).
			Order("created_at, id").
			Limit(limit).
			Find(&models).Error
		if err != nil || len(models) == 0 {
			return err
		}

		ids := make([]int64, 0, len(models))
		for _, m := range models {
			ids = append(ids, m.ID)
		}

		return tx.Model(&OutboxEventModel{}).
			Where("id IN ?", ids).
			Updates(map[string]any{
				"status":                string(usecase.Processing),
				"processing_started_at": now,
			}).Error
	})
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	events := make([]*usecase.OutboxEvent, 0, len(models))
	for i := range models {
		models[i].Status = string(usecase.Processing)
		events = append(events, models[i].toEntity())
	}

	return events, nil
}

func (o *OutboxEventRepo) MarkAsProcessed(ctx context.Context, id int64) error {
	err := o.db.WithContext(ctx).Model(&OutboxEventModel{}).
		Where("id = ? AND status = ?", id, string(usecase.Processing)).
		Updates(map[string]any{
			"status":       string(usecase.Processed),
			"processed_at": time.Now().UTC(),
		}).Error
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

func (o *OutboxEventRepo) Release(ctx context.Context, id int64) error {
	err := o.db.WithContext(ctx).Model(&OutboxEventModel{}).
		Where("id = ? AND status = ?", id, string(usecase.Processing)).
		Updates(map[string]any{
			"status":                string(usecase.Pending),
			"processing_started_at": nil,
		}).Error
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}
