package converter

import "time"

// SaleModel представляет запись таблицы sales. Цена хранится как NUMERIC и читается строкой.
type SaleModel struct {
	ID          int64     `db:"id"`
	ProductName string    `db:"product_name"`
	Amount      int64     `db:"amount"`
	Price       string    `db:"price"`
	CreatedAt   time.Time `db:"created_at"`
}

// OutboxEventModel представляет запись таблицы outbox_events.
type OutboxEventModel struct {
	ID           int64      `db:"id"`
	EventID      string     `db:"event_id"`
	EventType    string     `db:"event_type"`
	AggregateKey string     `db:"aggregate_key"`
	Payload      []byte     `db:"payload"`
	Status       string     `db:"status"`
	CreatedAt    time.Time  `db:"created_at"`
	ProcessedAt  *time.Time `db:"processed_at"`
}
