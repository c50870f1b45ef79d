package transport

import (
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

func Dial(port int, opts ...grpc.DialOption) (healthpb.HealthClient, *grpc.ClientConn, error) {
	return DialTarget(fmt.Sprintf("localhost:%d", port), opts...)
}

func DialTarget(target string, opts ...grpc.DialOption) (healthpb.HealthClient, *grpc.ClientConn, error) {
	if len(opts) == 0 {
		opts = append(opts, grpc.WithTransportCredentials(insecure.NewCredentials()))
	}
	cc, err := grpc.NewClient(target, opts...)
	if err != nil {
		return nil, nil, err
	}
	return healthpb.NewHealthClient(cc), cc, nil
}
