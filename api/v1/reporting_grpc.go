package v1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	Reporting_ServiceName                    = "evalreport.v1.Reporting"
	Reporting_GenerateReports_FullMethodName = "/evalreport.v1.Reporting/GenerateReports"
	Reporting_ListRuns_FullMethodName        = "/evalreport.v1.Reporting/ListRuns"
)

// ReportingClient is the client API for the Reporting service. Calls are
// sent with the JSON content-subtype.
type ReportingClient interface {
	GenerateReports(ctx context.Context, in *GenerateReportsRequest, opts ...grpc.CallOption) (*GenerateReportsResponse, error)
	ListRuns(ctx context.Context, in *ListRunsRequest, opts ...grpc.CallOption) (*ListRunsResponse, error)
}

type reportingClient struct {
	cc grpc.ClientConnInterface
}

func NewReportingClient(cc grpc.ClientConnInterface) ReportingClient {
	return &reportingClient{cc}
}

func callOptions(opts []grpc.CallOption) []grpc.CallOption {
	return append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
}

func (c *reportingClient) GenerateReports(ctx context.Context, in *GenerateReportsRequest, opts ...grpc.CallOption) (*GenerateReportsResponse, error) {
	out := new(GenerateReportsResponse)
	if err := c.cc.Invoke(ctx, Reporting_GenerateReports_FullMethodName, in, out, callOptions(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *reportingClient) ListRuns(ctx context.Context, in *ListRunsRequest, opts ...grpc.CallOption) (*ListRunsResponse, error) {
	out := new(ListRunsResponse)
	if err := c.cc.Invoke(ctx, Reporting_ListRuns_FullMethodName, in, out, callOptions(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

// ReportingServer is the server API for the Reporting service.
type ReportingServer interface {
	GenerateReports(context.Context, *GenerateReportsRequest) (*GenerateReportsResponse, error)
	ListRuns(context.Context, *ListRunsRequest) (*ListRunsResponse, error)
	mustEmbedUnimplementedReportingServer()
}

// UnimplementedReportingServer must be embedded by implementations.
type UnimplementedReportingServer struct{}

func (UnimplementedReportingServer) GenerateReports(context.Context, *GenerateReportsRequest) (*GenerateReportsResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GenerateReports not implemented")
}

func (UnimplementedReportingServer) ListRuns(context.Context, *ListRunsRequest) (*ListRunsResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ListRuns not implemented")
}

func (UnimplementedReportingServer) mustEmbedUnimplementedReportingServer() {}

func RegisterReportingServer(s grpc.ServiceRegistrar, srv ReportingServer) {
	s.RegisterService(&Reporting_ServiceDesc, srv)
}

func _Reporting_GenerateReports_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(GenerateReportsRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ReportingServer).GenerateReports(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: Reporting_GenerateReports_FullMethodName,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ReportingServer).GenerateReports(ctx, req.(*GenerateReportsRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _Reporting_ListRuns_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ListRunsRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ReportingServer).ListRuns(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: Reporting_ListRuns_FullMethodName,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ReportingServer).ListRuns(ctx, req.(*ListRunsRequest))
	}
	return interceptor(ctx, in, info, handler)
}

var Reporting_ServiceDesc = grpc.ServiceDesc{
	ServiceName: Reporting_ServiceName,
	HandlerType: (*ReportingServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GenerateReports", Handler: _Reporting_GenerateReports_Handler},
		{MethodName: "ListRuns", Handler: _Reporting_ListRuns_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "evalreport/v1/reporting.go",
}
