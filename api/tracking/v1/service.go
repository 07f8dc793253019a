package trackingv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const ServiceName = "tracking.v1.TrackingService"

// Full method names, for interceptor allow/skip lists.
const (
	TrackingService_RecordHit_FullMethodName        = "/tracking.v1.TrackingService/RecordHit"
	TrackingService_GetStats_FullMethodName         = "/tracking.v1.TrackingService/GetStats"
	TrackingService_GetTrackingStats_FullMethodName = "/tracking.v1.TrackingService/GetTrackingStats"
	TrackingService_GetBreakdown_FullMethodName     = "/tracking.v1.TrackingService/GetBreakdown"
	TrackingService_Seed_FullMethodName             = "/tracking.v1.TrackingService/Seed"
)

// TrackingServiceServer is the server API for TrackingService.
type TrackingServiceServer interface {
	RecordHit(context.Context, *RecordHitRequest) (*RecordHitResponse, error)
	GetStats(context.Context, *GetStatsRequest) (*GetStatsResponse, error)
	GetTrackingStats(context.Context, *GetTrackingStatsRequest) (*GetTrackingStatsResponse, error)
	GetBreakdown(context.Context, *GetBreakdownRequest) (*GetBreakdownResponse, error)
	Seed(context.Context, *SeedRequest) (*SeedResponse, error)
}

// UnimplementedTrackingServiceServer returns Unimplemented for every method. Embed it for forward compatibility.
type UnimplementedTrackingServiceServer struct{}

func (UnimplementedTrackingServiceServer) RecordHit(context.Context, *RecordHitRequest) (*RecordHitResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method RecordHit not implemented")
}
func (UnimplementedTrackingServiceServer) GetStats(context.Context, *GetStatsRequest) (*GetStatsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetStats not implemented")
}
func (UnimplementedTrackingServiceServer) GetTrackingStats(context.Context, *GetTrackingStatsRequest) (*GetTrackingStatsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetTrackingStats not implemented")
}
func (UnimplementedTrackingServiceServer) GetBreakdown(context.Context, *GetBreakdownRequest) (*GetBreakdownResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetBreakdown not implemented")
}
func (UnimplementedTrackingServiceServer) Seed(context.Context, *SeedRequest) (*SeedResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Seed not implemented")
}

// RegisterTrackingServiceServer registers srv with s.
func RegisterTrackingServiceServer(s grpc.ServiceRegistrar, srv TrackingServiceServer) {
	s.RegisterService(&TrackingService_ServiceDesc, srv)
}

// unaryHandler adapts a typed method to grpc.MethodHandler.
func unaryHandler[Req any, Resp any](fullMethod string, call func(TrackingServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(TrackingServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(TrackingServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// TrackingService_ServiceDesc is the grpc.ServiceDesc for TrackingService.
var TrackingService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*TrackingServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "RecordHit", Handler: unaryHandler(TrackingService_RecordHit_FullMethodName, TrackingServiceServer.RecordHit)},
		{MethodName: "GetStats", Handler: unaryHandler(TrackingService_GetStats_FullMethodName, TrackingServiceServer.GetStats)},
		{MethodName: "GetTrackingStats", Handler: unaryHandler(TrackingService_GetTrackingStats_FullMethodName, TrackingServiceServer.GetTrackingStats)},
		{MethodName: "GetBreakdown", Handler: unaryHandler(TrackingService_GetBreakdown_FullMethodName, TrackingServiceServer.GetBreakdown)},
		{MethodName: "Seed", Handler: unaryHandler(TrackingService_Seed_FullMethodName, TrackingServiceServer.Seed)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "tracking/v1/tracking.json",
}

// TrackingServiceClient is the client API for TrackingService. Calls use the JSON codec.
type TrackingServiceClient interface {
	RecordHit(ctx context.Context, in *RecordHitRequest, opts ...grpc.CallOption) (*RecordHitResponse, error)
	GetStats(ctx context.Context, in *GetStatsRequest, opts ...grpc.CallOption) (*GetStatsResponse, error)
	GetTrackingStats(ctx context.Context, in *GetTrackingStatsRequest, opts ...grpc.CallOption) (*GetTrackingStatsResponse, error)
	GetBreakdown(ctx context.Context, in *GetBreakdownRequest, opts ...grpc.CallOption) (*GetBreakdownResponse, error)
	Seed(ctx context.Context, in *SeedRequest, opts ...grpc.CallOption) (*SeedResponse, error)
}

type trackingServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewTrackingServiceClient(cc grpc.ClientConnInterface) TrackingServiceClient {
	return &trackingServiceClient{cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{CallOption()}, opts...)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *trackingServiceClient) RecordHit(ctx context.Context, in *RecordHitRequest, opts ...grpc.CallOption) (*RecordHitResponse, error) {
	return invoke[RecordHitResponse](ctx, c.cc, TrackingService_RecordHit_FullMethodName, in, opts)
}

func (c *trackingServiceClient) GetStats(ctx context.Context, in *GetStatsRequest, opts ...grpc.CallOption) (*GetStatsResponse, error) {
	return invoke[GetStatsResponse](ctx, c.cc, TrackingService_GetStats_FullMethodName, in, opts)
}

func (c *trackingServiceClient) GetTrackingStats(ctx context.Context, in *GetTrackingStatsRequest, opts ...grpc.CallOption) (*GetTrackingStatsResponse, error) {
	return invoke[GetTrackingStatsResponse](ctx, c.cc, TrackingService_GetTrackingStats_FullMethodName, in, opts)
}

func (c *trackingServiceClient) GetBreakdown(ctx context.Context, in *GetBreakdownRequest, opts ...grpc.CallOption) (*GetBreakdownResponse, error) {
	return invoke[GetBreakdownResponse](ctx, c.cc, TrackingService_GetBreakdown_FullMethodName, in, opts)
}

func (c *trackingServiceClient) Seed(ctx context.Context, in *SeedRequest, opts ...grpc.CallOption) (*SeedResponse, error) {
	return invoke[SeedResponse](ctx, c.cc, TrackingService_Seed_FullMethodName, in, opts)
}
