// Package wire declares the backend gRPC service by hand.
// Every request and response is a codec.Row (structpb.Struct), so the standard
// proto codec carries it and no generated stubs are needed.
package wire

import (
	"context"
	"groupchat/codec"

	"google.golang.org/grpc"
)

const ServiceName = "groupchat.v1.Backend"

const (
	SignUpMethod            = "SignUp"
	SignInMethod            = "SignIn"
	RefreshMethod           = "Refresh"
	ListGroupsMethod        = "ListGroups"
	InsertGroupMethod       = "InsertGroup"
	ListMessagesMethod      = "ListMessages"
	InsertMessageMethod     = "InsertMessage"
	SearchMessagesMethod    = "SearchMessages"
	SubscribeMessagesMethod = "SubscribeMessages"
)

func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// BackendServer is the server API of the backend service.
type BackendServer interface {
	SignUp(ctx context.Context, in *codec.Row) (*codec.Row, error)
	SignIn(ctx context.Context, in *codec.Row) (*codec.Row, error)
	Refresh(ctx context.Context, in *codec.Row) (*codec.Row, error)
	ListGroups(ctx context.Context, in *codec.Row) (*codec.Row, error)
	InsertGroup(ctx context.Context, in *codec.Row) (*codec.Row, error)
	ListMessages(ctx context.Context, in *codec.Row) (*codec.Row, error)
	InsertMessage(ctx context.Context, in *codec.Row) (*codec.Row, error)
	SearchMessages(ctx context.Context, in *codec.Row) (*codec.Row, error)
	SubscribeMessages(in *codec.Row, stream grpc.ServerStreamingServer[codec.Row]) error
}

type unaryCall func(srv BackendServer, ctx context.Context, in *codec.Row) (*codec.Row, error)

func unary(name string, call unaryCall) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(codec.Row)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(BackendServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(name)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(BackendServer), ctx, req.(*codec.Row))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

func subscribeMessagesHandler(srv any, stream grpc.ServerStream) error {
	in := new(codec.Row)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(BackendServer).SubscribeMessages(in, &grpc.GenericServerStream[codec.Row, codec.Row]{ServerStream: stream})
}

var BackendServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*BackendServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(SignUpMethod, BackendServer.SignUp),
		unary(SignInMethod, BackendServer.SignIn),
		unary(RefreshMethod, BackendServer.Refresh),
		unary(ListGroupsMethod, BackendServer.ListGroups),
		unary(InsertGroupMethod, BackendServer.InsertGroup),
		unary(ListMessagesMethod, BackendServer.ListMessages),
		unary(InsertMessageMethod, BackendServer.InsertMessage),
		unary(SearchMessagesMethod, BackendServer.SearchMessages),
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    SubscribeMessagesMethod,
			Handler:       subscribeMessagesHandler,
			ServerStreams: true,
		},
	},
	Metadata: "groupchat/v1/backend",
}

func RegisterBackendServer(s grpc.ServiceRegistrar, srv BackendServer) {
	s.RegisterService(&BackendServiceDesc, srv)
}

// BackendClient is the client API of the backend service.
type BackendClient struct {
	cc grpc.ClientConnInterface
}

func NewBackendClient(cc grpc.ClientConnInterface) *BackendClient {
	return &BackendClient{cc: cc}
}

func (c *BackendClient) Call(ctx context.Context, method string, in *codec.Row, opts ...grpc.CallOption) (*codec.Row, error) {
	out := new(codec.Row)
	if err := c.cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *BackendClient) SubscribeMessages(ctx context.Context, in *codec.Row, opts ...grpc.CallOption) (grpc.ServerStreamingClient[codec.Row], error) {
	stream, err := c.cc.NewStream(ctx, &BackendServiceDesc.Streams[0], FullMethod(SubscribeMessagesMethod), opts...)
	if err != nil {
		return nil, err
	}
	x := &grpc.GenericClientStream[codec.Row, codec.Row]{ClientStream: stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}
