package grpc

import (
	"math"

	"github.com/DRSN-tech/inventory-backend/internal/domain"
	"github.com/DRSN-tech/inventory-backend/pkg/e"
	"github.com/shopspring/decimal"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// GRPCErrorResponse скрывает причину ошибки так же, как HTTP API.
func GRPCErrorResponse(err error) error {
	switch {
	case e.IsBadRequest(err):
		return status.Error(codes.InvalidArgument, e.GenericMessage)
	default:
		return status.Error(codes.Internal, e.GenericMessage)
	}
}

func stringField(req *structpb.Struct, key string) (string, error) {
	v, ok := req.GetFields()[key]
	if !ok {
		return "", nil
	}

	s, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return "", e.ErrMalformedRequest
	}

	return s.StringValue, nil
}

// amountField: отсутствующее поле означает 1, дробные и нечисловые значения отклоняются.
func amountField(req *structpb.Struct, key string) (int64, error) {
	v, ok := req.GetFields()[key]
	if !ok {
		return 1, nil
	}

	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, e.ErrInvalidAmount
	}

	f := n.NumberValue
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || f >= math.MaxInt64 || f < math.MinInt64 {
		return 0, e.ErrInvalidAmount
	}

	return int64(f), nil
}

// priceField: отсутствующее поле означает 0. Допускается число или строка с числом
// в границах domain.ValidatePrice.
func priceField(req *structpb.Struct, key string) (decimal.Decimal, error) {
	v, ok := req.GetFields()[key]
	if !ok {
		return decimal.Zero, nil
	}

	var price decimal.Decimal
	switch kind := v.GetKind().(type) {
	case *structpb.Value_NumberValue:
		f := kind.NumberValue
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return decimal.Zero, e.ErrInvalidPrice
		}
		price = decimal.NewFromFloat(f)
	case *structpb.Value_StringValue:
		var err error
		if price, err = decimal.NewFromString(kind.StringValue); err != nil {
			return decimal.Zero, e.ErrInvalidPrice
		}
	default:
		return decimal.Zero, e.ErrInvalidPrice
	}

	if !domain.ValidatePrice(price) {
		return decimal.Zero, e.ErrInvalidPrice
	}

	return price, nil
}

func priceValue(price decimal.Decimal) float64 {
	f, _ := price.Float64()
	return f
}
