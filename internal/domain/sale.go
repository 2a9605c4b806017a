package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale описывает завершённую продажу с ненулевой ценой.
// Price хранит цену за единицу, а не сумму по строке.
type Sale struct {
	ID          int64
	ProductName string
	Amount      int64
	Price       decimal.Decimal
	CreatedAt   time.Time
}

func NewSale(productName string, amount int64, price decimal.Decimal) *Sale {
	return &Sale{
		ProductName: productName,
		Amount:      amount,
		Price:       price,
	}
}

// Total возвращает сумму продажи amount * price без округления.
func (s *Sale) Total() decimal.Decimal {
	return s.Price.Mul(decimal.NewFromInt(s.Amount))
}

// RoundRevenue округляет выручку до копеек для отчёта.
func RoundRevenue(total decimal.Decimal) decimal.Decimal {
	return total.Round(2)
}
