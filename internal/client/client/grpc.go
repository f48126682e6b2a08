package client

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/reelsync/internal/client/auth"
	"github.com/dmitrijs2005/reelsync/internal/common"
	"github.com/dmitrijs2005/reelsync/internal/wire"
	"google.golang.org/grpc"
	"google.golang.org/grpc/backoff"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// GRPCClient sends batches to reelsync.v1.SyncService.
type GRPCClient struct {
	conn    *grpc.ClientConn
	tokens auth.TokenSupplier
	// timeout is the deadline of each call. gRPC has no separate read and
	// write phases, so it also covers the request and response transfer.
	timeout time.Duration
}

// NewGRPCClient creates a lazily connecting client for addr. timeout bounds
// every call on its own and, as MinConnectTimeout, each connection attempt.
// Extra dial options are appended after the defaults.
func NewGRPCClient(addr string, timeout time.Duration, tokens auth.TokenSupplier, opts ...grpc.DialOption) (*GRPCClient, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if tokens == nil {
		tokens = auth.None
	}
	c := &GRPCClient{tokens: tokens, timeout: timeout}

	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(c.accessTokenInterceptor),
		grpc.WithConnectParams(grpc.ConnectParams{
			Backoff:           backoff.DefaultConfig,
			MinConnectTimeout: timeout,
		}),
	}, opts...)

	conn, err := grpc.NewClient(addr, dialOpts...)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	return c, nil
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	return metadata.NewOutgoingContext(ctx, md)
}

func (c *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if token, ok := c.tokens.Token(ctx); ok {
		ctx = withAccessToken(ctx, token)
	}
	return invoker(ctx, method, req, reply, cc, opts...)
}

func (c *GRPCClient) Push(ctx context.Context, b Batch) Outcome {
	in, err := wire.ToStruct(EncodeBatch(b))
	if err != nil {
		return failureOutcome(err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, wire.SyncMethod, in, out); err != nil {
		return failureOutcome(mapError(err))
	}

	var resp wire.SyncResponse
	if err := wire.FromStruct(out, &resp); err != nil {
		return failureOutcome(fmt.Errorf("%w: %v", ErrBadResponse, err))
	}
	return classify(resp)
}

func (c *GRPCClient) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, wire.PingMethod, &structpb.Struct{}, out); err != nil {
		return mapError(err)
	}
	return nil
}

func (c *GRPCClient) Close() error {
	return c.conn.Close()
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return fmt.Errorf("%w: %s", ErrUnauthorized, st.Message())
	case codes.Unavailable, codes.DeadlineExceeded:
		return fmt.Errorf("%w: %s", ErrUnavailable, st.Message())
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
