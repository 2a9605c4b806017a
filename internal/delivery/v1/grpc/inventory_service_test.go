package grpc

import (
	"context"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/DRSN-tech/inventory-backend/internal/cfg"
	"github.com/DRSN-tech/inventory-backend/internal/repository/sqlite"
	"github.com/DRSN-tech/inventory-backend/internal/usecase"
	"github.com/DRSN-tech/inventory-backend/pkg/e"
	"github.com/DRSN-tech/inventory-backend/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
)

func newTestClient(t *testing.T) *InventoryServiceClient {
	t.Helper()

	db, err := sqlite.Open(filepath.Join(t.TempDir(), "inventory.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlite.Close(db) })

	log := logger.NewNopLogger()
	invUC, err := usecase.NewInventoryUC(
		sqlite.NewProductRepo(db),
		sqlite.NewSaleRepo(db),
		sqlite.NewTransactor(db),
		nil,
		log,
		tracenoop.NewTracerProvider().Tracer("test"),
		metricnoop.NewMeterProvider().Meter("test"),
	)
	require.NoError(t, err)

	srv := NewGRPCServer(&cfg.GRPCConfig{Port: "0", NetworkMode: "tcp"}, log)
	srv.RegisterServices(invUC)

	lis := bufconn.Listen(1 << 20)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Stop(ctx)
	})

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return NewInventoryServiceClient(conn)
}

func mustStruct(t *testing.T, fields map[string]interface{}) *structpb.Struct {
	t.Helper()

	s, err := structpb.NewStruct(fields)
	require.NoError(t, err)
	return s
}

func TestInventoryService_RestockSellFlow(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	res, err := client.Call(ctx, methodRestock, mustStruct(t, map[string]interface{}{"name": "apple", "amount": 5}))
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"name": "apple", "amount": float64(5)}, res.AsMap())

	res, err = client.Call(ctx, methodSell, mustStruct(t, map[string]interface{}{"name": "apple", "amount": 3, "price": 2.5}))
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"name": "apple", "amount": float64(3), "price": 2.5}, res.AsMap())

	res, err = client.Call(ctx, methodGetStock, mustStruct(t, map[string]interface{}{"name": "apple"}))
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"apple": float64(2)}, res.AsMap())

	res, err = client.Call(ctx, methodTotalSales, nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"sales": 7.5}, res.AsMap())

	res, err = client.Call(ctx, methodListSales, nil)
	require.NoError(t, err)
	records := res.AsMap()["records"].([]interface{})
	require.Len(t, records, 1)
	assert.Equal(t, "apple", records[0].(map[string]interface{})["name"])

	res, err = client.Call(ctx, methodSell, mustStruct(t, map[string]interface{}{"name": "apple"}))
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"name": "apple", "amount": float64(1)}, res.AsMap())

	res, err = client.Call(ctx, methodListStock, nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"apple": float64(1)}, res.AsMap())

	res, err = client.Call(ctx, methodReset, nil)
	require.NoError(t, err)
	assert.Equal(t, "All data reset", res.AsMap()["message"])

	res, err = client.Call(ctx, methodGetStock, mustStruct(t, map[string]interface{}{"name": "apple"}))
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"apple": float64(0)}, res.AsMap())
}

func TestInventoryService_InvalidArgument(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	_, err := client.Call(ctx, methodRestock, mustStruct(t, map[string]interface{}{"name": "bread", "amount": 2}))
	require.NoError(t, err)

	tests := []struct {
		name   string
		method string
		req    map[string]interface{}
	}{
		{name: "long name", method: methodRestock, req: map[string]interface{}{"name": "toolongname"}},
		{name: "fractional amount", method: methodRestock, req: map[string]interface{}{"name": "bread", "amount": 1.5}},
		{name: "string amount", method: methodRestock, req: map[string]interface{}{"name": "bread", "amount": "2"}},
		{name: "numeric name", method: methodGetStock, req: map[string]interface{}{"name": 7}},
		{name: "insufficient stock", method: methodSell, req: map[string]interface{}{"name": "bread", "amount": 3}},
		{name: "unknown product", method: methodSell, req: map[string]interface{}{"name": "cake"}},
		{name: "negative price", method: methodSell, req: map[string]interface{}{"name": "bread", "price": -1}},
		{name: "bad price", method: methodSell, req: map[string]interface{}{"name": "bread", "price": "abc"}},
		{name: "price overflows float64", method: methodSell, req: map[string]interface{}{"name": "bread", "price": "1e400"}},
		{name: "huge price exponent", method: methodSell, req: map[string]interface{}{"name": "bread", "price": "-1e100000000"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.Call(ctx, tt.method, mustStruct(t, tt.req))
			require.Error(t, err)

			st, ok := status.FromError(err)
			require.True(t, ok)
			assert.Equal(t, codes.InvalidArgument, st.Code())
			assert.Equal(t, e.GenericMessage, st.Message())
		})
	}

	res, err := client.Call(ctx, methodGetStock, mustStruct(t, map[string]interface{}{"name": "bread"}))
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"bread": float64(2)}, res.AsMap())
}

func TestGRPCErrorResponse(t *testing.T) {
	assert.Equal(t, codes.InvalidArgument, status.Code(GRPCErrorResponse(e.Wrap("op", e.ErrInsufficientStock))))
	assert.Equal(t, codes.Internal, status.Code(GRPCErrorResponse(e.ErrStockOverflow)))
}

func TestAmountField(t *testing.T) {
	got, err := amountField(&structpb.Struct{}, "amount")
	require.NoError(t, err)
	assert.Equal(t, int64(1), got)

	got, err = amountField(mustStruct(t, map[string]interface{}{"amount": 42}), "amount")
	require.NoError(t, err)
	assert.Equal(t, int64(42), got)

	_, err = amountField(mustStruct(t, map[string]interface{}{"amount": nil}), "amount")
	assert.ErrorIs(t, err, e.ErrInvalidAmount)

	_, err = amountField(mustStruct(t, map[string]interface{}{"amount": 1e300}), "amount")
	assert.ErrorIs(t, err, e.ErrInvalidAmount)
}

func TestPriceField(t *testing.T) {
	got, err := priceField(&structpb.Struct{}, "price")
	require.NoError(t, err)
	assert.True(t, got.IsZero())

	got, err = priceField(mustStruct(t, map[string]interface{}{"price": "19.99"}), "price")
	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.RequireFromString("19.99")))

	_, err = priceField(mustStruct(t, map[string]interface{}{"price": true}), "price")
	assert.ErrorIs(t, err, e.ErrInvalidPrice)

	for _, raw := range []interface{}{1e300, 1e-300, "1e400", "1e-100000000", "0.123456789"} {
		_, err = priceField(mustStruct(t, map[string]interface{}{"price": raw}), "price")
		assert.ErrorIs(t, err, e.ErrInvalidPrice, "price %v", raw)
	}
}
