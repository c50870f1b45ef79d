package transform

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"splice/vfile"
)

// GRPCClient calls a plugin over gRPC.
type GRPCClient struct {
	conn *grpc.ClientConn
}

func NewGRPCClient(target string, opts ...grpc.DialOption) (*GRPCClient, error) {
	if len(opts) == 0 {
		opts = append(opts, grpc.WithTransportCredentials(insecure.NewCredentials()))
	}
	conn, err := grpc.NewClient(target, opts...)
	if err != nil {
		return nil, err
	}
	return &GRPCClient{conn: conn}, nil
}

func (c *GRPCClient) Transform(ctx context.Context, contents []byte, f *vfile.File) ([]byte, error) {
	out := new(wrapperspb.BytesValue)
	if err := c.conn.Invoke(withUnit(ctx, f), ApplyMethod, wrapperspb.Bytes(contents), out); err != nil {
		return nil, err
	}
	return out.GetValue(), nil
}

func (c *GRPCClient) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
