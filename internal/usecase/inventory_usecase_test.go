package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DRSN-tech/inventory-backend/internal/domain"
	"github.com/DRSN-tech/inventory-backend/pkg/e"
	"github.com/DRSN-tech/inventory-backend/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

type MockProductRepo struct {
	mock.Mock
}

func (m *MockProductRepo) AddStock(ctx context.Context, name string, amount int64) (int64, error) {
	args := m.Called(ctx, name, amount)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProductRepo) DeductStock(ctx context.Context, name string, amount int64) (int64, error) {
	args := m.Called(ctx, name, amount)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProductRepo) GetStock(ctx context.Context, name string) (int64, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProductRepo) ListInStock(ctx context.Context) ([]domain.StockLevel, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.StockLevel), args.Error(1)
}

func (m *MockProductRepo) ResetAll(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type MockSaleRepo struct {
	mock.Mock
}

func (m *MockSaleRepo) Create(ctx context.Context, sale *domain.Sale) (*domain.Sale, error) {
	args := m.Called(ctx, sale)
	return args.Get(0).(*domain.Sale), args.Error(1)
}

func (m *MockSaleRepo) TotalRevenue(ctx context.Context) (decimal.Decimal, error) {
	args := m.Called(ctx)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockSaleRepo) List(ctx context.Context) ([]domain.Sale, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Sale), args.Error(1)
}

type MockOutboxRepo struct {
	mock.Mock
}

func (m *MockOutboxRepo) Create(ctx context.Context, event *OutboxEvent) (*OutboxEvent, error) {
	args := m.Called(ctx, event)
	return args.Get(0).(*OutboxEvent), args.Error(1)
}

func (m *MockOutboxRepo) GetAndMarkAsProcessing(ctx context.Context, limit int, staleAfter time.Duration) ([]*OutboxEvent, error) {
	args := m.Called(ctx, limit, staleAfter)
	return args.Get(0).([]*OutboxEvent), args.Error(1)
}

func (m *MockOutboxRepo) MarkAsProcessed(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockOutboxRepo) Release(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

// fakeTransactor выполняет fn без реальной транзакции и считает вызовы.
type fakeTransactor struct {
	calls int
}

func (f *fakeTransactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	return fn(ctx)
}

type recordedEvents struct {
	events []*domain.StockEvent
}

func (r *recordedEvents) Record(_ context.Context, event *domain.StockEvent) error {
	r.events = append(r.events, event)
	return nil
}

type fixture struct {
	uc       *InventoryUseCase
	products *MockProductRepo
	sales    *MockSaleRepo
	tx       *fakeTransactor
	events   *recordedEvents
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		products: new(MockProductRepo),
		sales:    new(MockSaleRepo),
		tx:       &fakeTransactor{},
		events:   &recordedEvents{},
	}

	uc, err := NewInventoryUC(
		f.products,
		f.sales,
		f.tx,
		f.events,
		logger.NewNopLogger(),
		tracenoop.NewTracerProvider().Tracer("test"),
		metricnoop.NewMeterProvider().Meter("test"),
	)
	require.NoError(t, err)
	f.uc = uc

	return f
}

func TestInventoryUseCase_Restock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.products.On("AddStock", mock.Anything, "apple", int64(5)).Return(int64(5), nil)

	res, err := f.uc.Restock(ctx, NewRestockReq("apple", 5))

	require.NoError(t, err)
	assert.Equal(t, "apple", res.Name)
	assert.Equal(t, int64(5), res.Amount)
	assert.Equal(t, int64(5), res.Stock)
	assert.Equal(t, 1, f.tx.calls)
	require.Len(t, f.events.events, 1)
	assert.Equal(t, domain.StockRestocked, f.events.events[0].Type)
	f.products.AssertExpectations(t)
}

func TestInventoryUseCase_Restock_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		req     *RestockReq
		wantErr error
	}{
		{"too long name", NewRestockReq("toolongname", 1), e.ErrInvalidProductName},
		{"digits in name", NewRestockReq("app1e", 1), e.ErrInvalidProductName},
		{"empty name", NewRestockReq("", 1), e.ErrInvalidProductName},
		{"zero amount", NewRestockReq("apple", 0), e.ErrInvalidAmount},
		{"negative amount", NewRestockReq("apple", -1), e.ErrInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			res, err := f.uc.Restock(context.Background(), tt.req)

			assert.Nil(t, res)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.True(t, e.IsBadRequest(err))
			assert.Zero(t, f.tx.calls)
			f.products.AssertNotCalled(t, "AddStock", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestInventoryUseCase_Sell_RecordsSaleWithPrice(t *testing.T) {
	f := newFixture(t)
	price := decimal.RequireFromString("2.5")

	f.products.On("DeductStock", mock.Anything, "apple", int64(3)).Return(int64(2), nil)
	f.sales.On("Create", mock.Anything, mock.MatchedBy(func(s *domain.Sale) bool {
		return s.ProductName == "apple" && s.Amount == 3 && s.Price.Equal(price)
	})).Return(&domain.Sale{ID: 1}, nil)

	res, err := f.uc.Sell(context.Background(), NewSellReq("apple", 3, price))

	require.NoError(t, err)
	assert.True(t, res.Recorded)
	assert.Equal(t, int64(2), res.Stock)
	assert.True(t, res.Price.Equal(price))
	require.Len(t, f.events.events, 1)
	assert.Equal(t, domain.StockSold, f.events.events[0].Type)
	f.products.AssertExpectations(t)
	f.sales.AssertExpectations(t)
}

func TestInventoryUseCase_Sell_ZeroPriceSkipsJournal(t *testing.T) {
	f := newFixture(t)

	f.products.On("DeductStock", mock.Anything, "apple", int64(1)).Return(int64(4), nil)

	res, err := f.uc.Sell(context.Background(), NewSellReq("apple", 1, decimal.Zero))

	require.NoError(t, err)
	assert.False(t, res.Recorded)
	assert.Equal(t, int64(4), res.Stock)
	f.sales.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestInventoryUseCase_Sell_StockRejections(t *testing.T) {
	for _, stockErr := range []error{e.ErrInsufficientStock, e.ErrProductNotFound} {
		t.Run(stockErr.Error(), func(t *testing.T) {
			f := newFixture(t)

			f.products.On("DeductStock", mock.Anything, "apple", int64(10)).Return(int64(0), stockErr)

			res, err := f.uc.Sell(context.Background(), NewSellReq("apple", 10, decimal.RequireFromString("1")))

			assert.Nil(t, res)
			assert.ErrorIs(t, err, stockErr)
			assert.True(t, e.IsBadRequest(err))
			assert.Empty(t, f.events.events)
			f.sales.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestInventoryUseCase_Sell_InvalidInput(t *testing.T) {
	tests := []struct {
		name    string
		req     *SellReq
		wantErr error
	}{
		{"bad name", NewSellReq("a b", 1, decimal.Zero), e.ErrInvalidProductName},
		{"zero amount", NewSellReq("apple", 0, decimal.Zero), e.ErrInvalidAmount},
		{"negative price", NewSellReq("apple", 1, decimal.RequireFromString("-1")), e.ErrInvalidPrice},
		{"huge negative exponent", NewSellReq("apple", 1, decimal.RequireFromString("-1e100000000")), e.ErrInvalidPrice},
		{"price overflows float64", NewSellReq("apple", 1, decimal.RequireFromString("1e400")), e.ErrInvalidPrice},
		{"price too precise", NewSellReq("apple", 1, decimal.RequireFromString("0.000000001")), e.ErrInvalidPrice},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			_, err := f.uc.Sell(context.Background(), tt.req)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Zero(t, f.tx.calls)
		})
	}
}

func TestInventoryUseCase_Sell_StorageFailureIsNotRejection(t *testing.T) {
	f := newFixture(t)
	dbErr := errors.New("connection reset by peer")

	f.products.On("DeductStock", mock.Anything, "apple", int64(1)).Return(int64(4), nil)
	f.sales.On("Create", mock.Anything, mock.Anything).Return((*domain.Sale)(nil), dbErr)

	_, err := f.uc.Sell(context.Background(), NewSellReq("apple", 1, decimal.RequireFromString("3")))

	assert.ErrorIs(t, err, dbErr)
	assert.False(t, e.IsBadRequest(err))
}

func TestInventoryUseCase_GetStock(t *testing.T) {
	f := newFixture(t)

	f.products.On("GetStock", mock.Anything, "ghost").Return(int64(0), nil)

	stock, err := f.uc.GetStock(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Zero(t, stock)

	_, err = f.uc.GetStock(context.Background(), "ghost42")
	assert.ErrorIs(t, err, e.ErrInvalidProductName)
	f.products.AssertNumberOfCalls(t, "GetStock", 1)
}

func TestInventoryUseCase_TotalRevenueIsRounded(t *testing.T) {
	f := newFixture(t)

	f.sales.On("TotalRevenue", mock.Anything).Return(decimal.RequireFromString("10.0049"), nil)

	total, err := f.uc.TotalRevenue(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "10", total.String())
}

func TestInventoryUseCase_ListInStock(t *testing.T) {
	f := newFixture(t)
	levels := []domain.StockLevel{domain.NewStockLevel("apple", 2), domain.NewStockLevel("banana", 7)}

	f.products.On("ListInStock", mock.Anything).Return(levels, nil)

	got, err := f.uc.ListInStock(context.Background())

	require.NoError(t, err)
	assert.Equal(t, levels, got)
}

func TestInventoryUseCase_ResetAll(t *testing.T) {
	f := newFixture(t)

	f.products.On("ResetAll", mock.Anything).Return(nil)

	require.NoError(t, f.uc.ResetAll(context.Background()))
	assert.Equal(t, 1, f.tx.calls)
	require.Len(t, f.events.events, 1)
	assert.Equal(t, domain.StockReset, f.events.events[0].Type)
}

func TestOutboxRecorder_Record(t *testing.T) {
	repo := new(MockOutboxRepo)
	recorder := NewOutboxRecorder(repo)
	event := domain.NewSoldEvent("apple", 3, decimal.RequireFromString("2.5"), 2)

	repo.On("Create", mock.Anything, mock.MatchedBy(func(o *OutboxEvent) bool {
		var decoded domain.StockEvent
		if err := json.Unmarshal(o.Payload, &decoded); err != nil {
			return false
		}
		return o.EventID == event.EventID &&
			o.AggregateKey == "apple" &&
			o.Status == Pending &&
			decoded.Amount == 3 &&
			decoded.Price != nil && *decoded.Price == "2.5"
	})).Return(&OutboxEvent{ID: 1}, nil)

	require.NoError(t, recorder.Record(context.Background(), event))
	repo.AssertExpectations(t)
}
