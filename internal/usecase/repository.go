package usecase

import (
	"context"
	"time"

	"github.com/DRSN-tech/inventory-backend/internal/domain"
	"github.com/shopspring/decimal"
)

type ProductRepository interface {
	// AddStock атомарно создаёт товар или увеличивает остаток, возвращает новый остаток.
	AddStock(ctx context.Context, name string, amount int64) (int64, error)
	// DeductStock атомарно списывает amount, если остатка хватает.
	// Возвращает e.ErrProductNotFound или e.ErrInsufficientStock без изменения данных.
	DeductStock(ctx context.Context, name string, amount int64) (int64, error)
	// GetStock возвращает остаток; отсутствующий товар имеет остаток 0.
	GetStock(ctx context.Context, name string) (int64, error)
	ListInStock(ctx context.Context) ([]domain.StockLevel, error)
	// ResetAll одной операцией удаляет все товары и все продажи.
	ResetAll(ctx context.Context) error
}

type SaleRepository interface {
	Create(ctx context.Context, sale *domain.Sale) (*domain.Sale, error)
	TotalRevenue(ctx context.Context) (decimal.Decimal, error)
	List(ctx context.Context) ([]domain.Sale, error)
}

type OutboxRepository interface {
	Create(ctx context.Context, event *OutboxEvent) (*OutboxEvent, error)
	// GetAndMarkAsProcessing выдаёт pending события и события, застрявшие в processing дольше staleAfter.
	GetAndMarkAsProcessing(ctx context.Context, limit int, staleAfter time.Duration) ([]*OutboxEvent, error)
	MarkAsProcessed(ctx context.Context, id int64) error
	Release(ctx context.Context, id int64) error
}
