package sqlite

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/DRSN-tech/inventory-backend/internal/domain"
	"github.com/DRSN-tech/inventory-backend/pkg/e"
	"github.com/jimlawless/whereami"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) *ProductRepo {
	return &ProductRepo{db: db}
}

// AddStock создаёт товар или увеличивает остаток. SQLite при переполнении
// целого молча переходит к REAL, поэтому границу проверяем до записи.
func (p *ProductRepo) AddStock(ctx context.Context, name string, amount int64) (int64, error) {
	var stock int64

	err := conn(ctx, p.db).Transaction(func(tx *gorm.DB) error {
		current, err := stockOf(tx, name)
		if err != nil {
			return err
		}

		if current > math.MaxInt64-amount {
			return e.Wrap(name, e.ErrStockOverflow)
		}

		now := time.Now().UTC()
		model := ProductModel{Name: name, Stock: amount, CreatedAt: now, UpdatedAt: now}

		err = tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "name"}},
			DoUpdates: clause.Assignments(map[string]any{
				"stock":      gorm.Expr("products.stock + excluded.stock"),
				"updated_at": now,
			}),
		}).Create(&model).Error
		if err != nil {
			return err
		}

		stock, err = stockOf(tx, name)
		return err
	})
	if err != nil {
		return 0, e.Wrap(whereami.WhereAmI(), err)
	}

	return stock, nil
}

// DeductStock списывает остаток условным UPDATE ... WHERE stock >= amount.
func (p *ProductRepo) DeductStock(ctx context.Context, name string, amount int64) (int64, error) {
	var stock int64

	err := conn(ctx, p.db).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&ProductModel{}).
			Where("name = ? AND stock >= ?", name, amount).
			UpdateColumns(map[string]any{
				"stock":      gorm.Expr("stock - ?", amount),
				"updated_at": time.Now().UTC(),
			})
		if res.Error != nil {
			return res.Error
		}

		if res.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&ProductModel{}).Where("name = ?", name).Count(&count).Error; err != nil {
				return err
			}

			if count == 0 {
				return e.Wrap(name, e.ErrProductNotFound)
			}

			return e.Wrap(name, e.ErrInsufficientStock)
		}

		var err error
		stock, err = stockOf(tx, name)
		return err
	})
	if err != nil {
		return 0, e.Wrap(whereami.WhereAmI(), err)
	}

	return stock, nil
}

func (p *ProductRepo) GetStock(ctx context.Context, name string) (int64, error) {
	stock, err := stockOf(conn(ctx, p.db), name)
	if err != nil {
		return 0, e.Wrap(whereami.WhereAmI(), err)
	}

	return stock, nil
}

// ListInStock возвращает товары с положительным остатком. Сравнение BINARY даёт байтовый порядок имён.
func (p *ProductRepo) ListInStock(ctx context.Context) ([]domain.StockLevel, error) {
	var models []ProductModel
	err := conn(ctx, p.db).
		Select("name", "stock").
		Where("stock > 0").
		Order("name").
		Find(&models).Error
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	result := make([]domain.StockLevel, 0, len(models))
	for _, m := range models {
		result = append(result, domain.NewStockLevel(m.Name, m.Stock))
	}

	return result, nil
}

// ResetAll удаляет продажи и товары в одной транзакции.
func (p *ProductRepo) ResetAll(ctx context.Context) error {
	err := conn(ctx, p.db).Transaction(func(tx *gorm.DB) error {
		global := tx.Session(&gorm.Session{AllowGlobalUpdate: true})

		if err := global.Delete(&SaleModel{}).Error; err != nil {
			return err
		}

		return global.Delete(&ProductModel{}).Error
	})
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

func stockOf(db *gorm.DB, name string) (int64, error) {
	var model ProductModel
	err := db.Select("stock").Where("name = ?", name).Take(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}

	return model.Stock, nil
}
