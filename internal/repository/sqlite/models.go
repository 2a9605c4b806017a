package sqlite

import (
	"time"

	"github.com/DRSN-tech/inventory-backend/internal/domain"
	"github.com/DRSN-tech/inventory-backend/internal/usecase"
	"github.com/shopspring/decimal"
)

// ProductModel описывает строку таблицы products.
type ProductModel struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	Name      string    `gorm:"size:8;not null;uniqueIndex"`
	Stock     int64     `gorm:"not null;default:0;check:chk_products_stock,stock >= 0"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time
}

func (ProductModel) TableName() string {
	return "products"
}

// SaleModel описывает строку журнала продаж. Цена хранится текстом, чтобы не терять точность.
type SaleModel struct {
	ID          int64     `gorm:"primaryKey;autoIncrement"`
	ProductName string    `gorm:"size:8;not null;index"`
	Amount      int64     `gorm:"not null;check:chk_sales_amount,amount > 0"`
	Price       string    `gorm:"type:text;not null"`
	CreatedAt   time.Time `gorm:"not null"`
}

func (SaleModel) TableName() string {
	return "sales"
}

type OutboxEventModel struct {
	ID                  int64     `gorm:"primaryKey;autoIncrement"`
	EventID             string    `gorm:"size:36;not null;uniqueIndex"`
	EventType           string    `gorm:"not null"`
	AggregateKey        string    `gorm:"not null"`
	Payload             []byte    `gorm:"not null"`
	Status              string    `gorm:"not null;default:pending;index:idx_outbox_status_created,priority:1"`
	CreatedAt           time.Time `gorm:"not null;index:idx_outbox_status_created,priority:2"`
	ProcessingStartedAt *time.Time
	ProcessedAt         *time.Time
}

func (OutboxEventModel) TableName() string {
	return "outbox_events"
}

func (m *SaleModel) toEntity() (domain.Sale, error) {
	price, err := decimal.NewFromString(m.Price)
	if err != nil {
		return domain.Sale{}, err
	}

	return domain.Sale{
		ID:          m.ID,
		ProductName: m.ProductName,
		Amount:      m.Amount,
		Price:       price,
		CreatedAt:   m.CreatedAt,
	}, nil
}

func outboxEventToModel(event *usecase.OutboxEvent) *OutboxEventModel {
	return &OutboxEventModel{
		EventID:      event.EventID,
		EventType:    string(event.EventType),
		AggregateKey: event.AggregateKey,
		Payload:      event.Payload,
		Status:       string(event.Status),
		CreatedAt:    event.CreatedAt,
		ProcessedAt:  event.ProcessedAt,
	}
}

func (m *OutboxEventModel) toEntity() *usecase.OutboxEvent {
	return &usecase.OutboxEvent{
		ID:           m.ID,
		EventID:      m.EventID,
		EventType:    usecase.OutboxEventType(m.EventType),
		AggregateKey: m.AggregateKey,
		Payload:      m.Payload,
		Status:       usecase.OutboxStatus(m.Status),
		CreatedAt:    m.CreatedAt,
		ProcessedAt:  m.ProcessedAt,
	}
}
