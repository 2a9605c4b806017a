package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// InventoryServiceName: полное имя gRPC-сервиса. Сообщения передаются как google.protobuf.Struct
// с теми же полями, что и в HTTP API.
const InventoryServiceName = "inventory.v1.InventoryService"

const (
	methodRestock    = "Restock"
	methodGetStock   = "GetStock"
	methodListStock  = "ListStock"
	methodSell       = "Sell"
	methodTotalSales = "TotalSales"
	methodListSales  = "ListSales"
	methodReset      = "Reset"
)

type InventoryServiceServer interface {
	Restock(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	GetStock(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	ListStock(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	Sell(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	TotalSales(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	ListSales(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	Reset(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

type unaryMethod func(srv InventoryServiceServer, ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)

func unary(name string, call unaryMethod) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}

			if interceptor == nil {
				return call(srv.(InventoryServiceServer), ctx, in)
			}

			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: fullMethod(name),
			}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv.(InventoryServiceServer), ctx, req.(*structpb.Struct))
			}

			return interceptor(ctx, in, info, handler)
		},
	}
}

var InventoryServiceDesc = grpc.ServiceDesc{
	ServiceName: InventoryServiceName,
	HandlerType: (*InventoryServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(methodRestock, InventoryServiceServer.Restock),
		unary(methodGetStock, InventoryServiceServer.GetStock),
		unary(methodListStock, InventoryServiceServer.ListStock),
		unary(methodSell, InventoryServiceServer.Sell),
		unary(methodTotalSales, InventoryServiceServer.TotalSales),
		unary(methodListSales, InventoryServiceServer.ListSales),
		unary(methodReset, InventoryServiceServer.Reset),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "inventory/v1/inventory.proto",
}

func RegisterInventoryServiceServer(s grpc.ServiceRegistrar, srv InventoryServiceServer) {
	s.RegisterService(&InventoryServiceDesc, srv)
}

// InventoryServiceClient вызывает сервис из других Go-сервисов и тестов.
type InventoryServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewInventoryServiceClient(cc grpc.ClientConnInterface) *InventoryServiceClient {
	return &InventoryServiceClient{cc: cc}
}

// Call выполняет метод method сервиса с телом req.
func (c *InventoryServiceClient) Call(ctx context.Context, method string, req *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	if req == nil {
		req = &structpb.Struct{}
	}

	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, fullMethod(method), req, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}

func fullMethod(name string) string {
	return "/" + InventoryServiceName + "/" + name
}
