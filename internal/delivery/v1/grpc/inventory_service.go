package grpc

import (
	"context"
	"math"

	"github.com/DRSN-tech/inventory-backend/internal/usecase"
	"github.com/DRSN-tech/inventory-backend/pkg/e"
	"github.com/DRSN-tech/inventory-backend/pkg/logger"
	"google.golang.org/protobuf/types/known/structpb"
)

type InventoryService struct {
	invUC  usecase.InventoryUC
	logger logger.Logger
}

func NewInventoryService(invUC usecase.InventoryUC, logger logger.Logger) *InventoryService {
	return &InventoryService{invUC: invUC, logger: logger}
}

func (g *InventoryService) Restock(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	const op = "grpc.Restock"

	name, err := stringField(req, "name")
	if err != nil {
		return nil, g.fail(op, err)
	}

	amount, err := amountField(req, "amount")
	if err != nil {
		return nil, g.fail(op, err)
	}

	res, err := g.invUC.Restock(ctx, usecase.NewRestockReq(name, amount))
	if err != nil {
		return nil, g.fail(op, err)
	}

	return g.reply(op, map[string]interface{}{
		"name":   res.Name,
		"amount": res.Amount,
	})
}

func (g *InventoryService) GetStock(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	const op = "grpc.GetStock"

	name, err := stringField(req, "name")
	if err != nil {
		return nil, g.fail(op, err)
	}

	stock, err := g.invUC.GetStock(ctx, name)
	if err != nil {
		return nil, g.fail(op, err)
	}

	return g.reply(op, map[string]interface{}{name: stock})
}

func (g *InventoryService) ListStock(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	const op = "grpc.ListStock"

	levels, err := g.invUC.ListInStock(ctx)
	if err != nil {
		return nil, g.fail(op, err)
	}

	res := make(map[string]interface{}, len(levels))
	for _, l := range levels {
		res[l.Name] = l.Stock
	}

	return g.reply(op, res)
}

func (g *InventoryService) Sell(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	const op = "grpc.Sell"

	name, err := stringField(req, "name")
	if err != nil {
		return nil, g.fail(op, err)
	}

	amount, err := amountField(req, "amount")
	if err != nil {
		return nil, g.fail(op, err)
	}

	price, err := priceField(req, "price")
	if err != nil {
		return nil, g.fail(op, err)
	}

	res, err := g.invUC.Sell(ctx, usecase.NewSellReq(name, amount, price))
	if err != nil {
		return nil, g.fail(op, err)
	}

	out := map[string]interface{}{
		"name":   res.Name,
		"amount": res.Amount,
	}
	if res.Recorded {
		out["price"] = priceValue(res.Price)
	}

	return g.reply(op, out)
}

func (g *InventoryService) TotalSales(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	const op = "grpc.TotalSales"

	total, err := g.invUC.TotalRevenue(ctx)
	if err != nil {
		return nil, g.fail(op, err)
	}

	sales := priceValue(total)
	if math.IsInf(sales, 0) || math.IsNaN(sales) {
		return nil, g.fail(op, e.Wrap("revenue "+total.String()+" overflows float64", e.ErrInternalServerError))
	}

	return g.reply(op, map[string]interface{}{"sales": sales})
}

func (g *InventoryService) ListSales(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	const op = "grpc.ListSales"

	sales, err := g.invUC.ListSales(ctx)
	if err != nil {
		return nil, g.fail(op, err)
	}

	records := make([]interface{}, 0, len(sales))
	for _, s := range sales {
		records = append(records, map[string]interface{}{
			"name":   s.ProductName,
			"amount": s.Amount,
			"price":  priceValue(s.Price),
		})
	}

	return g.reply(op, map[string]interface{}{"records": records})
}

func (g *InventoryService) Reset(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	const op = "grpc.Reset"

	if err := g.invUC.ResetAll(ctx); err != nil {
		return nil, g.fail(op, err)
	}

	return g.reply(op, map[string]interface{}{"message": "All data reset"})
}

func (g *InventoryService) reply(op string, fields map[string]interface{}) (*structpb.Struct, error) {
	res, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, g.fail(op, err)
	}

	return res, nil
}

func (g *InventoryService) fail(op string, err error) error {
	err = e.Wrap(op, err)
	if e.IsBadRequest(err) {
		g.logger.Warnf("%s", err.Error())
	} else {
		g.logger.Errorf(err, "%s", op)
	}

	return GRPCErrorResponse(err)
}
