package usecase

import (
	"context"

	"github.com/DRSN-tech/inventory-backend/internal/domain"
	"github.com/DRSN-tech/inventory-backend/pkg/e"
	"github.com/DRSN-tech/inventory-backend/pkg/logger"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// InventoryUseCase реализует учёт остатков (ledger) и журнал продаж.
type InventoryUseCase struct {
	productRepo ProductRepository
	saleRepo    SaleRepository
	txManager   Transactor
	events      EventRecorder
	logger      logger.Logger
	tracer      trace.Tracer
	metrics     *inventoryMetrics
}

type inventoryMetrics struct {
	restocks  metric.Int64Counter
	sales     metric.Int64Counter
	unitsSold metric.Int64Counter
	rejected  metric.Int64Counter
}

func NewInventoryUC(
	productRepo ProductRepository,
	saleRepo SaleRepository,
	txManager Transactor,
	events EventRecorder,
	logger logger.Logger,
	tracer trace.Tracer,
	meter metric.Meter,
) (*InventoryUseCase, error) {
	metrics, err := newInventoryMetrics(meter)
	if err != nil {
		return nil, e.Wrap("NewInventoryUC", err)
	}

	if events == nil {
		events = NopRecorder{}
	}

	return &InventoryUseCase{
		productRepo: productRepo,
		saleRepo:    saleRepo,
		txManager:   txManager,
		events:      events,
		logger:      logger,
		tracer:      tracer,
		metrics:     metrics,
	}, nil
}

// Restock пополняет остаток товара, создавая его при первом пополнении.
func (u *InventoryUseCase) Restock(ctx context.Context, req *RestockReq) (*RestockRes, error) {
	const op = "InventoryUseCase.Restock"

	ctx, span := u.tracer.Start(ctx, op, trace.WithAttributes(
		attribute.String("product.name", req.Name),
		attribute.Int64("amount", req.Amount),
	))
	defer span.End()

	if err := validateRestock(req); err != nil {
		return nil, u.reject(ctx, span, op, err)
	}

	var stock int64
	err := u.txManager.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		stock, err = u.productRepo.AddStock(ctx, req.Name, req.Amount)
		if err != nil {
			return err
		}

		return u.events.Record(ctx, domain.NewRestockedEvent(req.Name, req.Amount, stock))
	})
	if err != nil {
		return nil, u.fail(span, op, err)
	}

	u.metrics.restocks.Add(ctx, 1)
	u.logger.Debugf("restocked %s by %d, stock=%d", req.Name, req.Amount, stock)

	return NewRestockRes(req.Name, req.Amount, stock), nil
}

// Sell списывает остаток и, если цена ненулевая, записывает продажу в журнал.
// Списание и запись в журнал выполняются в одной транзакции.
func (u *InventoryUseCase) Sell(ctx context.Context, req *SellReq) (*SellRes, error) {
	const op = "InventoryUseCase.Sell"

	ctx, span := u.tracer.Start(ctx, op, trace.WithAttributes(
		attribute.String("product.name", req.Name),
		attribute.Int64("amount", req.Amount),
	))
	defer span.End()

	if err := validateSell(req); err != nil {
		return nil, u.reject(ctx, span, op, err)
	}

	// String() для непроверенной цены может разворачивать экспоненту в миллионы цифр.
	span.SetAttributes(attribute.String("price", req.Price.String()))

	recorded := !req.Price.IsZero()

	var stock int64
	err := u.txManager.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		stock, err = u.productRepo.DeductStock(ctx, req.Name, req.Amount)
		if err != nil {
			return err
		}

		if recorded {
			if _, err := u.saleRepo.Create(ctx, domain.NewSale(req.Name, req.Amount, req.Price)); err != nil {
				return err
			}
		}

		return u.events.Record(ctx, domain.NewSoldEvent(req.Name, req.Amount, req.Price, stock))
	})
	if err != nil {
		if e.IsBadRequest(err) {
			return nil, u.reject(ctx, span, op, err)
		}
		return nil, u.fail(span, op, err)
	}

	u.metrics.sales.Add(ctx, 1, metric.WithAttributes(attribute.Bool("recorded", recorded)))
	u.metrics.unitsSold.Add(ctx, req.Amount)

	return NewSellRes(req.Name, req.Amount, req.Price, recorded, stock), nil
}

// GetStock возвращает остаток товара; неизвестный товар имеет остаток 0.
func (u *InventoryUseCase) GetStock(ctx context.Context, name string) (int64, error) {
	const op = "InventoryUseCase.GetStock"

	ctx, span := u.tracer.Start(ctx, op, trace.WithAttributes(attribute.String("product.name", name)))
	defer span.End()

	if !domain.ValidateProductName(name) {
		return 0, u.reject(ctx, span, op, e.ErrInvalidProductName)
	}

	stock, err := u.productRepo.GetStock(ctx, name)
	if err != nil {
		return 0, u.fail(span, op, err)
	}

	return stock, nil
}

// ListInStock возвращает товары с положительным остатком, отсортированные по имени.
func (u *InventoryUseCase) ListInStock(ctx context.Context) ([]domain.StockLevel, error) {
	const op = "InventoryUseCase.ListInStock"

	ctx, span := u.tracer.Start(ctx, op)
	defer span.End()

	levels, err := u.productRepo.ListInStock(ctx)
	if err != nil {
		return nil, u.fail(span, op, err)
	}

	return levels, nil
}

// TotalRevenue возвращает сумму amount*price по журналу, округлённую до 2 знаков.
func (u *InventoryUseCase) TotalRevenue(ctx context.Context) (decimal.Decimal, error) {
	const op = "InventoryUseCase.TotalRevenue"

	ctx, span := u.tracer.Start(ctx, op)
	defer span.End()

	total, err := u.saleRepo.TotalRevenue(ctx)
	if err != nil {
		return decimal.Zero, u.fail(span, op, err)
	}

	return domain.RoundRevenue(total), nil
}

// ListSales возвращает записи журнала продаж в порядке добавления.
func (u *InventoryUseCase) ListSales(ctx context.Context) ([]domain.Sale, error) {
	const op = "InventoryUseCase.ListSales"

	ctx, span := u.tracer.Start(ctx, op)
	defer span.End()

	sales, err := u.saleRepo.List(ctx)
	if err != nil {
		return nil, u.fail(span, op, err)
	}

	return sales, nil
}

// ResetAll удаляет все товары и продажи одной транзакцией.
func (u *InventoryUseCase) ResetAll(ctx context.Context) error {
	const op = "InventoryUseCase.ResetAll"

	ctx, span := u.tracer.Start(ctx, op)
	defer span.End()

	err := u.txManager.WithinTx(ctx, func(ctx context.Context) error {
		if err := u.productRepo.ResetAll(ctx); err != nil {
			return err
		}

		return u.events.Record(ctx, domain.NewResetEvent())
	})
	if err != nil {
		return u.fail(span, op, err)
	}

	u.logger.Infof("inventory reset")
	return nil
}

// reject фиксирует отказ по бизнес-правилам: клиент получит общий ответ об ошибке.
func (u *InventoryUseCase) reject(ctx context.Context, span trace.Span, op string, err error) error {
	span.SetAttributes(attribute.String("rejection", err.Error()))
	u.metrics.rejected.Add(ctx, 1, metric.WithAttributes(attribute.String("op", op)))
	return e.Wrap(op, err)
}

func (u *InventoryUseCase) fail(span trace.Span, op string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return e.Wrap(op, err)
}

func validateRestock(req *RestockReq) error {
	if !domain.ValidateProductName(req.Name) {
		return e.ErrInvalidProductName
	}

	if !domain.ValidateAmount(req.Amount) {
		return e.ErrInvalidAmount
	}

	return nil
}

func validateSell(req *SellReq) error {
	if !domain.ValidateProductName(req.Name) {
		return e.ErrInvalidProductName
	}

	if !domain.ValidateAmount(req.Amount) {
		return e.ErrInvalidAmount
	}

	if !domain.ValidatePrice(req.Price) {
		return e.ErrInvalidPrice
	}

	return nil
}

func newInventoryMetrics(meter metric.Meter) (*inventoryMetrics, error) {
	restocks, err := meter.Int64Counter("inventory.restocks", metric.WithDescription("Committed restock operations"))
	if err != nil {
		return nil, err
	}

	sales, err := meter.Int64Counter("inventory.sales", metric.WithDescription("Committed sale operations"))
	if err != nil {
		return nil, err
	}

	unitsSold, err := meter.Int64Counter("inventory.units_sold", metric.WithDescription("Units deducted by sales"))
	if err != nil {
		return nil, err
	}

	rejected, err := meter.Int64Counter("inventory.rejected", metric.WithDescription("Operations rejected by validation or stock rules"))
	if err != nil {
		return nil, err
	}

	return &inventoryMetrics{
		restocks:  restocks,
		sales:     sales,
		unitsSold: unitsSold,
		rejected:  rejected,
	}, nil
}
