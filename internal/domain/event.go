package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockEventType — тип события изменения остатков.
type StockEventType string

const (
	StockRestocked StockEventType = "stock.restocked"
	StockSold      StockEventType = "stock.sold"
	StockReset     StockEventType = "stock.reset"
)

// StockEvent публикуется во внешнюю шину после коммита операции.
type StockEvent struct {
	EventID    string         `json:"event_id"`
	Type       StockEventType `json:"type"`
	Name       string         `json:"name,omitempty"`
	Amount     int64          `json:"amount,omitempty"`
	Price      *string        `json:"price,omitempty"`
	Stock      int64          `json:"stock"`
	OccurredAt time.Time      `json:"occurred_at"`
}

func NewRestockedEvent(name string, amount, stock int64) *StockEvent {
	return newStockEvent(StockRestocked, name, amount, nil, stock)
}

func NewSoldEvent(name string, amount int64, price decimal.Decimal, stock int64) *StockEvent {
	var p *string
	if !price.IsZero() {
		s := price.String()
		p = &s
	}

	return newStockEvent(StockSold, name, amount, p, stock)
}

func NewResetEvent() *StockEvent {
	return newStockEvent(StockReset, "", 0, nil, 0)
}

func newStockEvent(t StockEventType, name string, amount int64, price *string, stock int64) *StockEvent {
	return &StockEvent{
		EventID:    uuid.NewString(),
		Type:       t,
		Name:       name,
		Amount:     amount,
		Price:      price,
		Stock:      stock,
		OccurredAt: time.Now().UTC(),
	}
}
