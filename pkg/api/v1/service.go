package logsiftv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "logsift.v1.LogSift"

// Method names.
const (
	MethodExtract      = "Extract"
	MethodAnalyze      = "Analyze"
	MethodListFolders  = "ListFolders"
	MethodExtractLocal = "ExtractLocal"
	MethodGetStatus    = "GetStatus"
	MethodShutdown     = "Shutdown"
	MethodTail         = "Tail"
)

// FullMethod returns "/logsift.v1.LogSift/<method>".
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// LogSiftServer is the server API for the LogSift service.
type LogSiftServer interface {
	Extract(context.Context, *ExtractRequest) (*ExtractResponse, error)
	Analyze(context.Context, *AnalyzeRequest) (*AnalyzeResponse, error)
	ListFolders(context.Context, *ListFoldersRequest) (*ListFoldersResponse, error)
	ExtractLocal(context.Context, *ExtractLocalRequest) (*ExtractResponse, error)
	GetStatus(context.Context, *GetStatusRequest) (*Status, error)
	Shutdown(context.Context, *ShutdownRequest) (*ShutdownResponse, error)
	Tail(*TailRequest, TailServerStream) error
}

// TailServerStream is the server side of a Tail stream.
type TailServerStream interface {
	Send(*TailEvent) error
	Context() context.Context
}

// UnimplementedLogSiftServer returns Unimplemented for every method.
type UnimplementedLogSiftServer struct{}

func (UnimplementedLogSiftServer) Extract(context.Context, *ExtractRequest) (*ExtractResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Extract not implemented")
}

func (UnimplementedLogSiftServer) Analyze(context.Context, *AnalyzeRequest) (*AnalyzeResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Analyze not implemented")
}

func (UnimplementedLogSiftServer) ListFolders(context.Context, *ListFoldersRequest) (*ListFoldersResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListFolders not implemented")
}

func (UnimplementedLogSiftServer) ExtractLocal(context.Context, *ExtractLocalRequest) (*ExtractResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ExtractLocal not implemented")
}

func (UnimplementedLogSiftServer) GetStatus(context.Context, *GetStatusRequest) (*Status, error) {
	return nil, status.Error(codes.Unimplemented, "method GetStatus not implemented")
}

func (UnimplementedLogSiftServer) Shutdown(context.Context, *ShutdownRequest) (*ShutdownResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Shutdown not implemented")
}

func (UnimplementedLogSiftServer) Tail(*TailRequest, TailServerStream) error {
	return status.Error(codes.Unimplemented, "method Tail not implemented")
}

func unary[Req, Resp any](method string, call func(LogSiftServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(LogSiftServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(method)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(LogSiftServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

type tailServerStream struct {
	grpc.ServerStream
}

func (s *tailServerStream) Send(ev *TailEvent) error {
	return s.ServerStream.SendMsg(ev)
}

func tailHandler(srv any, stream grpc.ServerStream) error {
	in := new(TailRequest)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(LogSiftServer).Tail(in, &tailServerStream{stream})
}

// ServiceDesc describes the LogSift service for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*LogSiftServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(MethodExtract, LogSiftServer.Extract),
		unary(MethodAnalyze, LogSiftServer.Analyze),
		unary(MethodListFolders, LogSiftServer.ListFolders),
		unary(MethodExtractLocal, LogSiftServer.ExtractLocal),
		unary(MethodGetStatus, LogSiftServer.GetStatus),
		unary(MethodShutdown, LogSiftServer.Shutdown),
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    MethodTail,
			Handler:       tailHandler,
			ServerStreams: true,
		},
	},
	Metadata: "logsift/v1",
}

// RegisterLogSiftServer registers srv on s.
func RegisterLogSiftServer(s grpc.ServiceRegistrar, srv LogSiftServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// LogSiftClient is the client API for the LogSift service. Every call uses
// the JSON content subtype.
type LogSiftClient struct {
	cc grpc.ClientConnInterface
}

// NewLogSiftClient wraps cc.
func NewLogSiftClient(cc grpc.ClientConnInterface) *LogSiftClient {
	return &LogSiftClient{cc: cc}
}

func callOptions(opts []grpc.CallOption) []grpc.CallOption {
	return append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	if err := cc.Invoke(ctx, FullMethod(method), in, out, callOptions(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *LogSiftClient) Extract(ctx context.Context, in *ExtractRequest, opts ...grpc.CallOption) (*ExtractResponse, error) {
	return invoke[ExtractResponse](ctx, c.cc, MethodExtract, in, opts)
}

func (c *LogSiftClient) Analyze(ctx context.Context, in *AnalyzeRequest, opts ...grpc.CallOption) (*AnalyzeResponse, error) {
	return invoke[AnalyzeResponse](ctx, c.cc, MethodAnalyze, in, opts)
}

func (c *LogSiftClient) ListFolders(ctx context.Context, in *ListFoldersRequest, opts ...grpc.CallOption) (*ListFoldersResponse, error) {
	return invoke[ListFoldersResponse](ctx, c.cc, MethodListFolders, in, opts)
}

func (c *LogSiftClient) ExtractLocal(ctx context.Context, in *ExtractLocalRequest, opts ...grpc.CallOption) (*ExtractResponse, error) {
	return invoke[ExtractResponse](ctx, c.cc, MethodExtractLocal, in, opts)
}

func (c *LogSiftClient) GetStatus(ctx context.Context, in *GetStatusRequest, opts ...grpc.CallOption) (*Status, error) {
	return invoke[Status](ctx, c.cc, MethodGetStatus, in, opts)
}

func (c *LogSiftClient) Shutdown(ctx context.Context, in *ShutdownRequest, opts ...grpc.CallOption) (*ShutdownResponse, error) {
	return invoke[ShutdownResponse](ctx, c.cc, MethodShutdown, in, opts)
}

// TailClientStream is the client side of a Tail stream.
type TailClientStream interface {
	Recv() (*TailEvent, error)
	grpc.ClientStream
}

type tailClientStream struct {
	grpc.ClientStream
}

func (s *tailClientStream) Recv() (*TailEvent, error) {
	ev := new(TailEvent)
	if err := s.ClientStream.RecvMsg(ev); err != nil {
		return nil, err
	}
	return ev, nil
}

// Tail opens a server stream. Cancel ctx to end the session.
func (c *LogSiftClient) Tail(ctx context.Context, in *TailRequest, opts ...grpc.CallOption) (TailClientStream, error) {
	stream, err := c.cc.NewStream(ctx, &ServiceDesc.Streams[0], FullMethod(MethodTail), callOptions(opts)...)
	if err != nil {
		return nil, err
	}
	if err := stream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := stream.CloseSend(); err != nil {
		return nil, err
	}
	return &tailClientStream{stream}, nil
}
