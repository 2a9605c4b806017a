package usecase

import (
	"context"

	"github.com/DRSN-tech/inventory-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// InventoryUC — операции учёта остатков и продаж, доступные транспортному слою.
type InventoryUC interface {
	Restock(ctx context.Context, req *RestockReq) (*RestockRes, error)
	Sell(ctx context.Context, req *SellReq) (*SellRes, error)
	GetStock(ctx context.Context, name string) (int64, error)
	ListInStock(ctx context.Context) ([]domain.StockLevel, error)
	TotalRevenue(ctx context.Context) (decimal.Decimal, error)
	ListSales(ctx context.Context) ([]domain.Sale, error)
	ResetAll(ctx context.Context) error
}
