package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "packsim.v1.PackService"

// PackServiceServer is the gRPC pack service. Messages are protobuf
// well-known types; structured replies are JSON-shaped structpb.Structs.
type PackServiceServer interface {
	ListSets(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	SetCards(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	PreparePack(context.Context, *wrapperspb.StringValue) (*emptypb.Empty, error)
	OpenPack(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	RecordPack(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetCollection(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	CardCount(context.Context, *wrapperspb.StringValue) (*wrapperspb.Int64Value, error)
	History(context.Context, *emptypb.Empty) (*structpb.Struct, error)
}

func fullMethod(name string) string { return "/" + ServiceName + "/" + name }

// unary adapts a typed method to grpc.MethodDesc.
func unary[Req proto.Message, Resp proto.Message](name string, newReq func() Req, call func(PackServiceServer, context.Context, Req) (Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := newReq()
			if err := dec(in); err != nil {
				return nil, err
			}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv.(PackServiceServer), ctx, req.(Req))
			}
			if interceptor == nil {
				return handler(ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(name)}
			return interceptor(ctx, in, info, handler)
		},
	}
}

func newEmpty() *emptypb.Empty           { return new(emptypb.Empty) }
func newString() *wrapperspb.StringValue { return new(wrapperspb.StringValue) }
func newStruct() *structpb.Struct        { return new(structpb.Struct) }

// ServiceDesc registers PackServiceServer on a grpc.Server.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*PackServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("ListSets", newEmpty, PackServiceServer.ListSets),
		unary("SetCards", newString, PackServiceServer.SetCards),
		unary("PreparePack", newString, PackServiceServer.PreparePack),
		unary("OpenPack", newString, PackServiceServer.OpenPack),
		unary("RecordPack", newStruct, PackServiceServer.RecordPack),
		unary("GetCollection", newEmpty, PackServiceServer.GetCollection),
		unary("CardCount", newString, PackServiceServer.CardCount),
		unary("History", newEmpty, PackServiceServer.History),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "packsim/v1/pack.proto",
}

func RegisterPackServiceServer(s grpc.ServiceRegistrar, srv PackServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}
