package grpcapi

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "escrow.v1.EscrowService"

// EscrowServiceServer is the escrow gRPC surface. Requests and responses are
// google.protobuf.Struct documents.
type EscrowServiceServer interface {
	Create(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Fund(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ConfirmDelivery(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Release(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RequestRefund(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Dispute(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Get(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListForUser(context.Context, *structpb.Struct) (*structpb.Struct, error)
	History(context.Context, *structpb.Struct) (*structpb.Struct, error)
	VerifyHistory(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryMethod func(EscrowServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func methodHandler(name string, call unaryMethod) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(EscrowServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: "/" + ServiceName + "/" + name,
			}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(EscrowServiceServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

var EscrowServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*EscrowServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		methodHandler("Create", EscrowServiceServer.Create),
		methodHandler("Fund", EscrowServiceServer.Fund),
		methodHandler("ConfirmDelivery", EscrowServiceServer.ConfirmDelivery),
		methodHandler("Release", EscrowServiceServer.Release),
		methodHandler("RequestRefund", EscrowServiceServer.RequestRefund),
		methodHandler("Dispute", EscrowServiceServer.Dispute),
		methodHandler("Get", EscrowServiceServer.Get),
		methodHandler("ListForUser", EscrowServiceServer.ListForUser),
		methodHandler("History", EscrowServiceServer.History),
		methodHandler("VerifyHistory", EscrowServiceServer.VerifyHistory),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "escrow/v1/escrow.proto",
}

func RegisterEscrowServiceServer(s grpc.ServiceRegistrar, srv EscrowServiceServer) {
	s.RegisterService(&EscrowServiceDesc, srv)
}

// Invoke calls one method over conn; used by clients without generated stubs.
func Invoke(ctx context.Context, conn grpc.ClientConnInterface, method string, in *structpb.Struct) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := conn.Invoke(ctx, "/"+ServiceName+"/"+method, in, out); err != nil {
		return nil, err
	}
	return out, nil
}
