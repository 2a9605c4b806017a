package tr

import (
	"context"

	"github.com/DRSN-tech/inventory-backend/pkg/e"
	transaction "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type txKey struct{}

// Querier — общий набор методов pgx.Tx и pgxpool.Pool, которыми пользуются репозитории.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// WithTx кладёт транзакцию в контекст.
func WithTx(ctx context.Context, tx pgx.Tx) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// TxFromCtx извлекает объект транзакции (pgx.Tx) из контекста
func TxFromCtx(ctx context.Context) (pgx.Tx, error) {
	tx, ok := ctx.Value(txKey{}).(pgx.Tx)
	if !ok {
		return nil, e.ErrTransactionNotFound
	}
	return tx, nil
}

// QuerierFromCtx возвращает транзакцию из контекста или, если её нет, переданный пул.
func QuerierFromCtx(ctx context.Context, fallback Querier) Querier {
	if tx, err := TxFromCtx(ctx); err == nil {
		return tx
	}
	return fallback
}

// PgxTransactor открывает транзакции через go-transaction-manager.
type PgxTransactor struct {
	db   transaction.Transactional
	opts pgx.TxOptions
}

func NewPgxTransactor(db transaction.Transactional) *PgxTransactor {
	return &PgxTransactor{
		db:   db,
		opts: pgx.TxOptions{IsoLevel: pgx.ReadCommitted},
	}
}

// WithinTx выполняет fn в транзакции. При ошибке fn транзакция откатывается.
// Вложенный вызов переиспользует уже открытую транзакцию.
func (t *PgxTransactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	const op = "PgxTransactor.WithinTx"

	if _, txErr := TxFromCtx(ctx); txErr == nil {
		return fn(ctx)
	}

	ctx, tx, err := transaction.NewTransaction(ctx, t.opts, t.db)
	if err != nil {
		return e.Wrap(op, err)
	}
	defer func() {
		if err != nil && tx.IsActive() {
			_ = tx.Rollback(ctx)
		}
	}()

	pgxTx, ok := tx.Transaction().(pgx.Tx)
	if !ok {
		err = e.Wrap(op, e.ErrTransactionNotFound)
		return err
	}

	if err = fn(WithTx(ctx, pgxTx)); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return e.Wrap(op, err)
	}

	return nil
}
