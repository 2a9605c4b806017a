package usecase

import (
	"time"

	"github.com/shopspring/decimal"
)

// INVENTORY USECASE

// RestockReq — запрос на пополнение остатка.
type RestockReq struct {
	Name   string
	Amount int64
}

// RestockRes — применённое пополнение и итоговый остаток.
type RestockRes struct {
	Name   string
	Amount int64
	Stock  int64
}

// SellReq — запрос на продажу. Price задаёт цену за единицу, 0 означает продажу без учёта выручки.
type SellReq struct {
	Name   string
	Amount int64
	Price  decimal.Decimal
}

// SellRes — результат продажи. Recorded = true, если продажа записана в журнал.
type SellRes struct {
	Name     string
	Amount   int64
	Price    decimal.Decimal
	Recorded bool
	Stock    int64
}

// OUTBOX

type OutboxStatus string

const (
	Pending    OutboxStatus = "pending"
	Processing OutboxStatus = "processing"
	Processed  OutboxStatus = "processed"
)

type OutboxEventType string

// OutboxEvent — событие, ожидающее отправки в Kafka.
type OutboxEvent struct {
	ID           int64
	EventID      string
	EventType    OutboxEventType
	AggregateKey string
	Payload      []byte
	Status       OutboxStatus
	CreatedAt    time.Time
	ProcessedAt  *time.Time
}

// INFRASTUCTURE

type WriteRawMessageReq struct {
	Key     string
	Payload []byte
}

// MAPPERS

func NewRestockReq(name string, amount int64) *RestockReq {
	return &RestockReq{
		Name:   name,
		Amount: amount,
	}
}

func NewRestockRes(name string, amount int64, stock int64) *RestockRes {
	return &RestockRes{
		Name:   name,
		Amount: amount,
		Stock:  stock,
	}
}

func NewSellReq(name string, amount int64, price decimal.Decimal) *SellReq {
	return &SellReq{
		Name:   name,
		Amount: amount,
		Price:  price,
	}
}

func NewSellRes(name string, amount int64, price decimal.Decimal, recorded bool, stock int64) *SellRes {
	return &SellRes{
		Name:     name,
		Amount:   amount,
		Price:    price,
		Recorded: recorded,
		Stock:    stock,
	}
}

func NewOutboxEvent(eventID string, eventType OutboxEventType, key string, payload []byte) *OutboxEvent {
	return &OutboxEvent{
		EventID:      eventID,
		EventType:    eventType,
		AggregateKey: key,
		Payload:      payload,
		Status:       Pending,
		CreatedAt:    time.Now().UTC(),
	}
}

func NewWriteRawMessageReq(key string, payload []byte) *WriteRawMessageReq {
	return &WriteRawMessageReq{
		Key:     key,
		Payload: payload,
	}
}
