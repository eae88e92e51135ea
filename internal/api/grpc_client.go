package api

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"storefront-merchandising-service/internal/countdown"
)

// MerchandisingClient calls merchandising.v1.Merchandising.
type MerchandisingClient struct {
	cc grpc.ClientConnInterface
}

func NewMerchandisingClient(cc grpc.ClientConnInterface) *MerchandisingClient {
	return &MerchandisingClient{cc: cc}
}

// GetHomepage fetches the homepage for viewerID; an empty id requests the anonymous page.
func (c *MerchandisingClient) GetHomepage(ctx context.Context, viewerID string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	in, err := structpb.NewStruct(map[string]any{"viewer_id": viewerID})
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+MerchandisingServiceName+"/GetHomepage", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// CountdownReceiver is the client side of WatchCountdown.
type CountdownReceiver struct {
	stream grpc.ClientStream
}

// Recv blocks for the next snapshot. It returns io.EOF once the server ends the stream.
func (r *CountdownReceiver) Recv() (*structpb.Struct, error) {
	m := new(structpb.Struct)
	if err := r.stream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

// RecvSnapshot is Recv decoded into a countdown snapshot.
func (r *CountdownReceiver) RecvSnapshot() (countdown.Snapshot, error) {
	var snap countdown.Snapshot
	m, err := r.Recv()
	if err != nil {
		return snap, err
	}
	err = fromStruct(m, &snap)
	return snap, err
}

// WatchCountdown opens a countdown stream. Cancel ctx to close it.
func (c *MerchandisingClient) WatchCountdown(ctx context.Context, opts ...grpc.CallOption) (*CountdownReceiver, error) {
	stream, err := c.cc.NewStream(ctx, &MerchandisingServiceDesc.Streams[0], "/"+MerchandisingServiceName+"/WatchCountdown", opts...)
	if err != nil {
		return nil, err
	}
	if err := stream.SendMsg(&emptypb.Empty{}); err != nil {
		return nil, err
	}
	if err := stream.CloseSend(); err != nil {
		return nil, err
	}
	return &CountdownReceiver{stream: stream}, nil
}
