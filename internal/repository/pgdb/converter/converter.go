package converter

import (
	"github.com/DRSN-tech/inventory-backend/internal/domain"
	"github.com/DRSN-tech/inventory-backend/internal/usecase"
	"github.com/shopspring/decimal"
)

// SaleToEntity преобразует SaleModel в доменную сущность.
func SaleToEntity(model *SaleModel) (*domain.Sale, error) {
	price, err := decimal.NewFromString(model.Price)
	if err != nil {
		return nil, err
	}

	return &domain.Sale{
		ID:          model.ID,
		ProductName: model.ProductName,
		Amount:      model.Amount,
		Price:       price,
		CreatedAt:   model.CreatedAt,
	}, nil
}

func OutboxEventToModel(entity *usecase.OutboxEvent) *OutboxEventModel {
	return &OutboxEventModel{
		ID:           entity.ID,
		EventID:      entity.EventID,
		EventType:    string(entity.EventType),
		AggregateKey: entity.AggregateKey,
		Payload:      entity.Payload,
		Status:       string(entity.Status),
		CreatedAt:    entity.CreatedAt,
		ProcessedAt:  entity.ProcessedAt,
	}
}

func OutboxEventToEntity(model *OutboxEventModel) *usecase.OutboxEvent {
	return &usecase.OutboxEvent{
		ID:           model.ID,
		EventID:      model.EventID,
		EventType:    usecase.OutboxEventType(model.EventType),
		AggregateKey: model.AggregateKey,
		Payload:      model.Payload,
		Status:       usecase.OutboxStatus(model.Status),
		CreatedAt:    model.CreatedAt,
		ProcessedAt:  model.ProcessedAt,
	}
}

func OutboxEventsToEntities(models []*OutboxEventModel) []*usecase.OutboxEvent {
	res := make([]*usecase.OutboxEvent, 0, len(models))
	for _, m := range models {
		res = append(res, OutboxEventToEntity(m))
	}

	return res
}
