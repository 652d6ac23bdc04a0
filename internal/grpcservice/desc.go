package grpcservice

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"go.klb.dev/pasteboard/internal/message"
)

// PasteboardServer is the server API of pasteboard.v1.Pasteboard.
type PasteboardServer interface {
	Write(context.Context, *message.WriteRequest) (*message.WriteResponse, error)
	Read(context.Context, *message.ReadRequest) (*message.ReadResponse, error)
	Formats(context.Context, *message.FormatsRequest) (*message.FormatsResponse, error)
	NativeFormat(context.Context, *message.NativeFormatRequest) (*message.NativeFormatResponse, error)
	Clear(context.Context, *message.ClearRequest) (*message.ClearResponse, error)
}

// ServiceDesc describes pasteboard.v1.Pasteboard. Messages travel with the
// JSON codec from package message.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: message.ServiceName,
	HandlerType: (*PasteboardServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Write", message.MethodWrite, PasteboardServer.Write),
		unary("Read", message.MethodRead, PasteboardServer.Read),
		unary("Formats", message.MethodFormats, PasteboardServer.Formats),
		unary("NativeFormat", message.MethodNativeFormat, PasteboardServer.NativeFormat),
		unary("Clear", message.MethodClear, PasteboardServer.Clear),
	},
	Metadata: "pasteboard/v1/pasteboard.json",
}

func unary[Req, Resp any](name, fullMethod string, call func(PasteboardServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(PasteboardServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(PasteboardServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// Register installs svc and the standard health service on s. The returned
// health server reports SERVING for the pasteboard service.
func Register(s *grpc.Server, svc PasteboardServer) *health.Server {
	s.RegisterService(&ServiceDesc, svc)

	hs := health.NewServer()
	hs.SetServingStatus(message.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(s, hs)
	return hs
}
