package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"storefront-merchandising-service/internal/countdown"
	"storefront-merchandising-service/internal/service"
	"storefront-merchandising-service/internal/store"
)

// MerchandisingServiceName is the fully qualified gRPC service name.
const MerchandisingServiceName = "merchandising.v1.Merchandising"

// MerchandisingServer is the server API of merchandising.v1.Merchandising.
// Messages are well-known types so that clients need no generated stubs:
// GetHomepage takes {"viewer_id": string} and returns the homepage JSON as a Struct;
// WatchCountdown streams one Struct per countdown snapshot.
type MerchandisingServer interface {
	GetHomepage(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	WatchCountdown(req *emptypb.Empty, stream CountdownStream) error
}

// CountdownStream is the server side of WatchCountdown.
type CountdownStream interface {
	Send(*structpb.Struct) error
	Context() context.Context
}

// RegisterMerchandisingServer registers srv on s.
func RegisterMerchandisingServer(s grpc.ServiceRegistrar, srv MerchandisingServer) {
	s.RegisterService(&MerchandisingServiceDesc, srv)
}

// MerchandisingServiceDesc describes merchandising.v1.Merchandising.
var MerchandisingServiceDesc = grpc.ServiceDesc{
	ServiceName: MerchandisingServiceName,
	HandlerType: (*MerchandisingServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetHomepage", Handler: getHomepageHandler},
	},
	Streams: []grpc.StreamDesc{
		{StreamName: "WatchCountdown", Handler: watchCountdownHandler, ServerStreams: true},
	},
	Metadata: "merchandising/v1/merchandising.proto",
}

func getHomepageHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MerchandisingServer).GetHomepage(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + MerchandisingServiceName + "/GetHomepage"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(MerchandisingServer).GetHomepage(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

type countdownServerStream struct {
	grpc.ServerStream
}

func (s countdownServerStream) Send(m *structpb.Struct) error { return s.ServerStream.SendMsg(m) }

func watchCountdownHandler(srv interface{}, stream grpc.ServerStream) error {
	in := new(emptypb.Empty)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(MerchandisingServer).WatchCountdown(in, countdownServerStream{stream})
}

// GRPCHandler implements MerchandisingServer over the homepage service.
type GRPCHandler struct {
	svc Merchandiser
}

// NewGRPCHandler creates a new GRPCHandler.
func NewGRPCHandler(svc Merchandiser) *GRPCHandler {
	return &GRPCHandler{svc: svc}
}

// --- Helper: Error Mapping ---
func mapServiceErrorToGrpcStatus(err error, op string) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, service.ErrInvalidViewer):
		return status.Errorf(codes.InvalidArgument, "%v", err)
	case errors.Is(err, service.ErrUnknownSection), errors.Is(err, store.ErrProductNotFound), errors.Is(err, store.ErrNoActiveCampaign):
		return status.Errorf(codes.NotFound, "%v", err)
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "request cancelled")
	default:
		log.Printf("ERROR: gRPC %s failed: %v", op, err)
		return status.Errorf(codes.Internal, "Failed to %s", op)
	}
}

// toStruct converts any JSON-encodable value to a Struct.
func toStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("api: encode %T: %w", v, err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("api: decode %T: %w", v, err)
	}
	return structpb.NewStruct(m)
}

// fromStruct is the inverse of toStruct.
func fromStruct(m *structpb.Struct, v any) error {
	data, err := m.MarshalJSON()
	if err != nil {
		return fmt.Errorf("api: encode struct: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("api: decode %T: %w", v, err)
	}
	return nil
}

func (h *GRPCHandler) GetHomepage(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	viewerID := req.GetFields()["viewer_id"].GetStringValue()
	log.Printf("INFO: Received gRPC GetHomepage request for viewer %q", viewerID)

	page, err := h.svc.Homepage(ctx, viewerID)
	if err != nil {
		return nil, mapServiceErrorToGrpcStatus(err, "build homepage")
	}
	out, err := toStruct(page)
	if err != nil {
		return nil, mapServiceErrorToGrpcStatus(err, "encode homepage")
	}
	return out, nil
}

// WatchCountdown streams the active campaign's countdown until the client goes away.
// Slow clients only ever see the latest snapshot.
func (h *GRPCHandler) WatchCountdown(_ *emptypb.Empty, stream CountdownStream) error {
	ctx, cancel := context.WithCancel(stream.Context())
	defer cancel()

	updates := make(chan countdown.Snapshot, 1)
	emit := func(s countdown.Snapshot) {
		for {
			select {
			case updates <- s:
				return
			default:
			}
			select {
			case <-updates:
			default:
			}
		}
	}

	done := make(chan error, 1)
	go func() { done <- h.svc.WatchCountdown(ctx, emit) }()

	for {
		select {
		case snap := <-updates:
			msg, err := toStruct(snap)
			if err != nil {
				return mapServiceErrorToGrpcStatus(err, "encode countdown")
			}
			if err := stream.Send(msg); err != nil {
				return err
			}
		case err := <-done:
			return mapServiceErrorToGrpcStatus(err, "watch countdown")
		}
	}
}
