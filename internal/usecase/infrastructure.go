package usecase

import (
	"context"

	"github.com/DRSN-tech/inventory-backend/internal/domain"
)

// Transactor выполняет fn в одной транзакции хранилища.
// Репозитории, вызванные с переданным ctx, работают внутри этой транзакции.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// EventRecorder сохраняет событие в рамках текущей транзакции.
type EventRecorder interface {
	Record(ctx context.Context, event *domain.StockEvent) error
}

type MessageProducer interface {
	WriteRawMessage(ctx context.Context, req *WriteRawMessageReq) error
}
