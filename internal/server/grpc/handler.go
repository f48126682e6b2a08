package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/reelsync/internal/common"
	"github.com/dmitrijs2005/reelsync/internal/server/auth"
	"github.com/dmitrijs2005/reelsync/internal/server/services"
	"github.com/dmitrijs2005/reelsync/internal/wire"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

func (s *GRPCServer) Sync(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req wire.SyncRequest
	if err := wire.FromStruct(in, &req); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	resp, err := s.sync.Sync(ctx, auth.UserIDFromContext(ctx), req)
	if err != nil {
		if !errors.Is(err, common.ErrValidation) {
			s.logger.Error(ctx, "sync failed", "error", err)
			return nil, status.Error(codes.Internal, "internal error")
		}
		s.logger.Warn(ctx, "sync rejected", "reason", err)
		resp = services.Rejection(err)
	}

	out, err := wire.ToStruct(resp)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

func (s *GRPCServer) Ping(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{"status": "OK"})
}
