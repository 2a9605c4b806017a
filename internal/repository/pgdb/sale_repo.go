package pgdb

import (
	"context"

	"github.com/DRSN-tech/inventory-backend/internal/domain"
	"github.com/DRSN-tech/inventory-backend/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/inventory-backend/pkg/e"
	"github.com/DRSN-tech/inventory-backend/pkg/tr"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
	"github.com/shopspring/decimal"
)

// SaleRepo хранит журнал продаж. Записи только добавляются.
type SaleRepo struct {
	pool *pgxpool.Pool
}

func NewSaleRepo(pool *pgxpool.Pool) *SaleRepo {
	return &SaleRepo{pool: pool}
}

func (s *SaleRepo) Create(ctx context.Context, sale *domain.Sale) (*domain.Sale, error) {
	query := `
		INSERT INTO sales (product_name, amount, price)
		VALUES ($1, $2, $3::text::numeric)
		RETURNING id, created_at;
	`

	created := *sale
	err := tr.QuerierFromCtx(ctx, s.pool).
		QueryRow(ctx, query, sale.ProductName, sale.Amount, sale.Price.String()).
		Scan(&created.ID, &created.CreatedAt)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return &created, nil
}

// TotalRevenue считает сумму amount * price на стороне БД в NUMERIC без потери точности.
func (s *SaleRepo) TotalRevenue(ctx context.Context) (decimal.Decimal, error) {
	var total string
	err := tr.QuerierFromCtx(ctx, s.pool).
		QueryRow(ctx, `SELECT COALESCE(SUM(amount * price), 0)::text FROM sales`).
		Scan(&total)
	if err != nil {
		return decimal.Zero, e.Wrap(whereami.WhereAmI(), err)
	}

	d, err := decimal.NewFromString(total)
	if err != nil {
		return decimal.Zero, e.Wrap(whereami.WhereAmI(), err)
	}

	return d, nil
}

func (s *SaleRepo) List(ctx context.Context) ([]domain.Sale, error) {
	query := `
		SELECT id, product_name, amount, price::text, created_at
		FROM sales
		ORDER BY id
	`

	rows, err := tr.QuerierFromCtx(ctx, s.pool).Query(ctx, query)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	result := make([]domain.Sale, 0)
	for rows.Next() {
		var model converter.SaleModel
		if err := rows.Scan(&model.ID, &model.ProductName, &model.Amount, &model.Price, &model.CreatedAt); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}

		sale, err := converter.SaleToEntity(&model)
		if err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}

		result = append(result, *sale)
	}

	if err := rows.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return result, nil
}
