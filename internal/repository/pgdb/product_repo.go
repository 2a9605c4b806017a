package pgdb

import (
	"context"
	"errors"

	"github.com/DRSN-tech/inventory-backend/internal/domain"
	"github.com/DRSN-tech/inventory-backend/pkg/e"
	"github.com/DRSN-tech/inventory-backend/pkg/tr"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

// ProductRepo реализует репозиторий остатков поверх PostgreSQL.
type ProductRepo struct {
	pool *pgxpool.Pool
}

func NewProductRepo(pool *pgxpool.Pool) *ProductRepo {
	return &ProductRepo{
		pool: pool,
	}
}

// AddStock создаёт товар или увеличивает его остаток одним UPSERT-запросом.
func (p *ProductRepo) AddStock(ctx context.Context, name string, amount int64) (int64, error) {
	query := `
		INSERT INTO products (name, stock)
		VALUES ($1, $2)
		ON CONFLICT (name)
		DO UPDATE SET
			stock = products.stock + EXCLUDED.stock,
			updated_at = NOW()
		RETURNING stock;
	`

	var stock int64
	if err := tr.QuerierFromCtx(ctx, p.pool).QueryRow(ctx, query, name, amount).Scan(&stock); err != nil {
		return 0, e.Wrap(whereami.WhereAmI(), err)
	}

	return stock, nil
}

// DeductStock списывает остаток условным UPDATE: строка меняется, только если остатка хватает.
func (p *ProductRepo) DeductStock(ctx context.Context, name string, amount int64) (int64, error) {
	q := tr.QuerierFromCtx(ctx, p.pool)

	query := `
		UPDATE products
		SET stock = stock - $2,
		    updated_at = NOW()
		WHERE name = $1 AND stock >= $2
		RETURNING stock;
	`

	var stock int64
	err := q.QueryRow(ctx, query, name, amount).Scan(&stock)
	if err == nil {
		return stock, nil
	}

	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, e.Wrap(whereami.WhereAmI(), err)
	}

	var exists bool
	if err := q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM products WHERE name = $1)`, name).Scan(&exists); err != nil {
		return 0, e.Wrap(whereami.WhereAmI(), err)
	}

	if !exists {
		return 0, e.Wrap(name, e.ErrProductNotFound)
	}

	return 0, e.Wrap(name, e.ErrInsufficientStock)
}

// GetStock возвращает остаток товара, 0 если товара нет.
func (p *ProductRepo) GetStock(ctx context.Context, name string) (int64, error) {
	var stock int64
	err := tr.QuerierFromCtx(ctx, p.pool).
		QueryRow(ctx, `SELECT stock FROM products WHERE name = $1`, name).
		Scan(&stock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, e.Wrap(whereami.WhereAmI(), err)
	}

	return stock, nil
}

// ListInStock возвращает товары с положительным остатком в байтовом порядке имён.
func (p *ProductRepo) ListInStock(ctx context.Context) ([]domain.StockLevel, error) {
	query := `
		SELECT name, stock
		FROM products
		WHERE stock > 0
		ORDER BY name COLLATE "C"
	`

	rows, err := tr.QuerierFromCtx(ctx, p.pool).Query(ctx, query)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	result := make([]domain.StockLevel, 0)
	for rows.Next() {
		var level domain.StockLevel
		if err := rows.Scan(&level.Name, &level.Stock); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}

		result = append(result, level)
	}

	if err := rows.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return result, nil
}

// ResetAll очищает товары и продажи одним TRUNCATE. TRUNCATE берёт ACCESS EXCLUSIVE,
// поэтому параллельные пополнения и продажи дожидаются его завершения.
func (p *ProductRepo) ResetAll(ctx context.Context) error {
	if _, err := tr.QuerierFromCtx(ctx, p.pool).Exec(ctx, `TRUNCATE TABLE products, sales RESTART IDENTITY;`); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}
