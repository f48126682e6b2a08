// Package grpc exposes the sync service over gRPC. Requests and replies are
// the wire documents carried as google.protobuf.Struct.
package grpc

import (
	"context"
	"errors"
	"net"

	"github.com/dmitrijs2005/reelsync/internal/logging"
	"github.com/dmitrijs2005/reelsync/internal/wire"
	"google.golang.org/grpc"
)

// SyncService applies a sync batch on behalf of callerID ("" when anonymous).
type SyncService interface {
	Sync(ctx context.Context, callerID string, req wire.SyncRequest) (wire.SyncResponse, error)
}

// Authenticator resolves an access token to a user id.
type Authenticator interface {
	Authenticate(token string) (string, error)
}

type GRPCServer struct {
	address     string
	sync        SyncService
	auth        Authenticator
	requireAuth bool
	logger      logging.Logger
}

func NewGRPCServer(a string, l logging.Logger, s SyncService, auth Authenticator, requireAuth bool) *GRPCServer {
	return &GRPCServer{
		address:     a,
		logger:      l.With("module", "grpc_server"),
		sync:        s,
		auth:        auth,
		requireAuth: requireAuth,
	}
}

func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.accessTokenInterceptor))
	wire.RegisterSyncServiceServer(srv, s)
	return srv
}

// Run listens on the configured address until ctx is done.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis and stops gracefully when ctx is done.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := s.newServer()

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	// Serve reports ErrServerStopped when ctx was done before it started.
	if err := srv.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	<-stopped
	return nil
}
