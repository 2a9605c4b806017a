package domain

import "time"

// Product описывает складскую позицию. Имя уникально и служит ключом.
type Product struct {
	ID        int64
	Name      string
	Stock     int64
	CreatedAt time.Time
	UpdatedAt *time.Time
}

func NewProduct(name string, stock int64) *Product {
	return &Product{
		Name:  name,
		Stock: stock,
	}
}

// StockLevel: остаток одного товара в выдаче.
type StockLevel struct {
	Name  string
	Stock int64
}

func NewStockLevel(name string, stock int64) StockLevel {
	return StockLevel{Name: name, Stock: stock}
}
