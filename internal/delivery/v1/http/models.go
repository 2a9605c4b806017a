package http

import (
	"encoding/json"
	"time"
)

// RestockRequest: тело POST /v1/stocks. amount по умолчанию 1.
type RestockRequest struct {
	Name   string          `json:"name" example:"apple"`
	Amount json.RawMessage `json:"amount,omitempty" swaggertype:"integer" example:"5"`
}

// SellRequest: тело POST /v1/sales. amount по умолчанию 1, price по умолчанию 0.
type SellRequest struct {
	Name   string          `json:"name" example:"apple"`
	Amount json.RawMessage `json:"amount,omitempty" swaggertype:"integer" example:"3"`
	Price  json.RawMessage `json:"price,omitempty" swaggertype:"number" example:"2.5"`
}

type RestockResponse struct {
	Name   string `json:"name" example:"apple"`
	Amount int64  `json:"amount" example:"5"`
}

// SellResponse: price присутствует, только если продажа записана в журнал.
type SellResponse struct {
	Name   string      `json:"name" example:"apple"`
	Amount int64       `json:"amount" example:"3"`
	Price  json.Number `json:"price,omitempty" swaggertype:"number" example:"2.5"`
}

type SalesTotalResponse struct {
	Sales float64 `json:"sales" example:"7.5"`
}

type SaleRecordResponse struct {
	Name      string      `json:"name" example:"apple"`
	Amount    int64       `json:"amount" example:"3"`
	Price     json.Number `json:"price" swaggertype:"number" example:"2.5"`
	CreatedAt time.Time   `json:"created_at"`
}

type MessageResponse struct {
	Message string `json:"message" example:"All data reset"`
}

const resetMessage = "All data reset"
