package sqlite

import (
	"context"
	"time"

	"github.com/DRSN-tech/inventory-backend/internal/domain"
	"github.com/DRSN-tech/inventory-backend/pkg/e"
	"github.com/jimlawless/whereami"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type SaleRepo struct {
	db *gorm.DB
}

func NewSaleRepo(db *gorm.DB) *SaleRepo {
	return &SaleRepo{db: db}
}

func (s *SaleRepo) Create(ctx context.Context, sale *domain.Sale) (*domain.Sale, error) {
	model := SaleModel{
		ProductName: sale.ProductName,
		Amount:      sale.Amount,
		Price:       sale.Price.String(),
		CreatedAt:   time.Now().UTC(),
	}

	if err := conn(ctx, s.db).Create(&model).Error; err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	res := *sale
	res.ID = model.ID
	res.CreatedAt = model.CreatedAt

	return &res, nil
}

// TotalRevenue суммирует amount*price в decimal: SQLite хранит цену текстом и не умеет точную арифметику.
func (s *SaleRepo) TotalRevenue(ctx context.Context) (decimal.Decimal, error) {
	var models []SaleModel
	if err := conn(ctx, s.db).Select("amount", "price").Find(&models).Error; err != nil {
		return decimal.Zero, e.Wrap(whereami.WhereAmI(), err)
	}

	total := decimal.Zero
	for _, m := range models {
		price, err := decimal.NewFromString(m.Price)
		if err != nil {
			return decimal.Zero, e.Wrap(whereami.WhereAmI(), err)
		}

		total = total.Add(price.Mul(decimal.NewFromInt(m.Amount)))
	}

	return total, nil
}

func (s *SaleRepo) List(ctx context.Context) ([]domain.Sale, error) {
	var models []SaleModel
	if err := conn(ctx, s.db).Order("id").Find(&models).Error; err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	result := make([]domain.Sale, 0, len(models))
	for i := range models {
		sale, err := models[i].toEntity()
		if err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}

		result = append(result, sale)
	}

	return result, nil
}
