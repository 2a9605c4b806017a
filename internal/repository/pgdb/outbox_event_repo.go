package pgdb

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/DRSN-tech/inventory-backend/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/inventory-backend/internal/usecase"
	"github.com/DRSN-tech/inventory-backend/pkg/e"
	"github.com/DRSN-tech/inventory-backend/pkg/tr"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

// OutboxChannel: канал LISTEN/NOTIFY для новых событий.
const OutboxChannel = "outbox_pending"

type OutboxEventRepo struct {
	pool *pgxpool.Pool
}

func NewOutboxEventRepo(pool *pgxpool.Pool) *OutboxEventRepo {
	return &OutboxEventRepo{
		pool: pool,
	}
}

// Create сохраняет событие. Должен вызываться внутри транзакции бизнес-операции.
func (o *OutboxEventRepo) Create(ctx context.Context, event *usecase.OutboxEvent) (*usecase.OutboxEvent, error) {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	model := converter.OutboxEventToModel(event)
	query := `
		INSERT INTO outbox_events (
			event_id,
			event_type,
			aggregate_key,
			payload,
			status,
			created_at
		) VALUES ($1::text::uuid, $2, $3, $4, $5, $6)
		RETURNING id, created_at;
	`

	if err := tx.QueryRow(ctx, query,
		model.EventID,
		model.EventType,
		model.AggregateKey,
		model.Payload,
		model.Status,
		model.CreatedAt,
	).Scan(&model.ID, &model.CreatedAt); err != nil {
		if postgresDuplicate(err) {
			return nil, fmt.Errorf("%s: event with id %s already exists", whereami.WhereAmI(), event.EventID)
		}

		return nil, fmt.Errorf("%s: failed to insert event: %w", whereami.WhereAmI(), err)
	}

	// NOTIFY доставляется слушателям только после коммита транзакции.
	if _, err = tx.Exec(ctx, "NOTIFY "+OutboxChannel+";"); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return converter.OutboxEventToEntity(model), nil
}

// GetAndMarkAsProcessing забирает пачку ожидающих событий, пропуская строки, занятые другими воркерами.
// Строка в processing старше staleAfter считается брошенной и забирается заново.
func (o *OutboxEventRepo) GetAndMarkAsProcessing(ctx context.Context, limit int, staleAfter time.Duration) (events []*usecase.OutboxEvent, err error) {
	tx, err := o.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to begin transaction: %w", whereami.WhereAmI(), err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	query := `
		UPDATE outbox_events
		SET status = $1, processing_started_at = NOW()
		WHERE id IN (
			SELECT id FROM outbox_events
			WHERE status = $2
				OR (status = $1 AND processing_started_at < NOW() - $4::bigint * INTERVAL '1 millisecond')
			ORDER BY created_at, id
			LIMIT $3
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id, event_id::text, event_type, aggregate_key, payload, status, created_at, processed_at
	`

	rows, err := tx.Query(ctx, query,
		string(usecase.Processing),
		string(usecase.Pending),
		limit,
		staleAfter.Milliseconds(),
	)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to query pending events: %w", whereami.WhereAmI(), err)
	}
	defer rows.Close()

	var models []*converter.OutboxEventModel
	for rows.Next() {
		var model converter.OutboxEventModel
		var processedAt sql.NullTime

		err = rows.Scan(
			&model.ID,
			&model.EventID,
			&model.EventType,
			&model.AggregateKey,
			&model.Payload,
			&model.Status,
			&model.CreatedAt,
			&processedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to scan event: %w", whereami.WhereAmI(), err)
		}

		if processedAt.Valid {
			model.ProcessedAt = &processedAt.Time
		}

		models = append(models, &model)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows iterator error: %w", whereami.WhereAmI(), err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%s: failed to commit transaction: %w", whereami.WhereAmI(), err)
	}

	return converter.OutboxEventsToEntities(models), nil
}

func (o *OutboxEventRepo) MarkAsProcessed(ctx context.Context, id int64) error {
	query := `
		UPDATE outbox_events
		SET status = $1, processed_at = NOW()
		WHERE id = $2 AND status = $3
	`

	// Если строка не обновилась, событие уже обработано другим воркером.
	if _, err := o.pool.Exec(ctx, query, string(usecase.Processed), id, string(usecase.Processing)); err != nil {
		return fmt.Errorf("%s: failed to mark event %d as processed: %w", whereami.WhereAmI(), id, err)
	}

	return nil
}

// Release возвращает событие в очередь после неудачной отправки.
func (o *OutboxEventRepo) Release(ctx context.Context, id int64) error {
	query := `
		UPDATE outbox_events
		SET status = $1, processing_started_at = NULL
		WHERE id = $2 AND status = $3
	`

	if _, err := o.pool.Exec(ctx, query, string(usecase.Pending), id, string(usecase.Processing)); err != nil {
		return fmt.Errorf("%s: failed to release event %d: %w", whereami.WhereAmI(), id, err)
	}

	return nil
}
