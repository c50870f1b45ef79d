package transform

import (
	"context"
	"io/fs"
	"path/filepath"
	"strconv"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"splice/vfile"
)

// The plugin protocol is a single unary RPC carrying unit contents as a
// google.protobuf.BytesValue; unit metadata travels in gRPC metadata.
const (
	ServiceName = "splice.transform.v1.Transform"
	ApplyMethod = "/" + ServiceName + "/Apply"

	mdPath     = "splice-path-bin"
	mdRelative = "splice-relative-bin"
	mdMode     = "splice-mode"
)

// TransformServer is implemented by plugins.
type TransformServer interface {
	Apply(context.Context, *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error)
}

func RegisterTransformServer(s grpc.ServiceRegistrar, srv TransformServer) {
	s.RegisterService(&ServiceDesc, srv)
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*TransformServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Apply", Handler: applyHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "splice/transform/v1/transform.proto",
}

func applyHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.BytesValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(TransformServer).Apply(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ApplyMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(TransformServer).Apply(ctx, req.(*wrapperspb.BytesValue))
	}
	return interceptor(ctx, in, info, handler)
}

// withUnit attaches unit metadata to an outgoing call.
func withUnit(ctx context.Context, f *vfile.File) context.Context {
	return metadata.AppendToOutgoingContext(ctx,
		mdPath, f.Path,
		mdRelative, f.Relative(),
		mdMode, strconv.FormatUint(uint64(f.Mode.Perm()), 8),
	)
}

// UnitFromContext rebuilds the unit metadata a client attached to the call.
// Contents are not included.
func UnitFromContext(ctx context.Context) *vfile.File {
	f := &vfile.File{}
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return f
	}
	if v := md.Get(mdPath); len(v) > 0 {
		f.Path = v[0]
	}
	if v := md.Get(mdRelative); len(v) > 0 && v[0] != f.Path {
		if base, ok := strings.CutSuffix(f.Path, v[0]); ok {
			f.Base = filepath.Clean(base)
		}
	}
	if v := md.Get(mdMode); len(v) > 0 {
		if m, err := strconv.ParseUint(v[0], 8, 32); err == nil {
			f.Mode = fs.FileMode(m) & fs.ModePerm
		}
	}
	return f
}

// Server exposes a Transformer as a plugin.
type Server struct {
	impl Transformer
}

func NewServer(impl Transformer) *Server { return &Server{impl: impl} }

func (s *Server) Apply(ctx context.Context, in *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error) {
	out, err := s.impl.Transform(ctx, in.GetValue(), UnitFromContext(ctx))
	if err != nil {
		return nil, status.Errorf(codes.Internal, "transform: %v", err)
	}
	return wrapperspb.Bytes(out), nil
}

var _ TransformServer = (*Server)(nil)
