// Package rpc exposes the pack service over gRPC.
package rpc

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/xtding233/pack-sim/internal/catalog"
	"github.com/xtding233/pack-sim/internal/collection"
	"github.com/xtding233/pack-sim/internal/gacha"
	"github.com/xtding233/pack-sim/internal/pack"
)

// Service implements PackServiceServer over the domain packages.
type Service struct {
	Catalog catalog.Source
	Packs   *pack.Service
	Store   *collection.Store
	Log     *zap.Logger
}

var _ PackServiceServer = (*Service)(nil)

type recordRequest struct {
	Cards []catalog.Card      `json:"cards"`
	Set   *collection.SetInfo `json:"set"`
}

func (s *Service) ListSets(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	return reply(map[string]interface{}{"sets": catalog.SortedSets(ctx, s.Catalog, s.Log)})
}

func (s *Service) SetCards(ctx context.Context, in *wrapperspb.StringValue) (*structpb.Struct, error) {
	if in.GetValue() == "" {
		return nil, status.Error(codes.InvalidArgument, "set id is required")
	}
	return reply(map[string]interface{}{"cards": catalog.SetCards(ctx, s.Catalog, in.GetValue(), s.Log)})
}

func (s *Service) PreparePack(ctx context.Context, in *wrapperspb.StringValue) (*emptypb.Empty, error) {
	if in.GetValue() == "" {
		return nil, status.Error(codes.InvalidArgument, "set id is required")
	}
	s.Packs.Prepare(in.GetValue())
	return &emptypb.Empty{}, nil
}

func (s *Service) OpenPack(ctx context.Context, in *wrapperspb.StringValue) (*structpb.Struct, error) {
	if in.GetValue() == "" {
		return nil, status.Error(codes.InvalidArgument, "set id is required")
	}
	p, err := s.Packs.Open(ctx, in.GetValue())
	if err != nil {
		return nil, drawError(err)
	}
	return reply(p)
}

func (s *Service) RecordPack(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req recordRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid record request: %v", err)
	}
	if req.Cards == nil {
		return nil, status.Error(codes.InvalidArgument, "cards are required")
	}
	st, err := s.Store.Record(ctx, req.Cards, req.Set)
	if err != nil {
		return nil, status.Error(codes.Internal, "collection not saved")
	}
	return reply(st)
}

func (s *Service) GetCollection(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	return reply(s.Store.Snapshot())
}

func (s *Service) CardCount(ctx context.Context, in *wrapperspb.StringValue) (*wrapperspb.Int64Value, error) {
	return wrapperspb.Int64(int64(s.Store.CardCount(in.GetValue()))), nil
}

func (s *Service) History(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	return reply(map[string]interface{}{
		"entries": s.Store.History(),
		"summary": s.Store.HistorySummary(),
	})
}

func reply(v interface{}) (*structpb.Struct, error) {
	st, err := toStruct(v)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return st, nil
}

// drawError maps a draw failure to a gRPC status.
func drawError(err error) error {
	var nf *catalog.NotFoundError
	switch {
	case errors.Is(err, gacha.ErrEmptyPool):
		return status.Error(codes.NotFound, "pack unavailable")
	case errors.As(err, &nf):
		return status.Error(codes.NotFound, "set not found")
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		return status.Error(codes.Unavailable, "catalog unavailable")
	}
}
