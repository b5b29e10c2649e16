package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/xtding233/pack-sim/internal/catalog"
	"github.com/xtding233/pack-sim/internal/collection"
	"github.com/xtding233/pack-sim/internal/gacha"
)

// Client calls a remote PackService.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client { return &Client{cc: cc} }

func (c *Client) OpenPack(ctx context.Context, setID string) (gacha.Pack, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, fullMethod("OpenPack"), wrapperspb.String(setID), out); err != nil {
		return gacha.Pack{}, err
	}
	var p gacha.Pack
	if err := fromStruct(out, &p); err != nil {
		return gacha.Pack{}, err
	}
	return p, nil
}

func (c *Client) PreparePack(ctx context.Context, setID string) error {
	return c.cc.Invoke(ctx, fullMethod("PreparePack"), wrapperspb.String(setID), new(emptypb.Empty))
}

func (c *Client) RecordPack(ctx context.Context, cards []catalog.Card, set *collection.SetInfo) (collection.State, error) {
	in, err := toStruct(recordRequest{Cards: cards, Set: set})
	if err != nil {
		return collection.State{}, err
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, fullMethod("RecordPack"), in, out); err != nil {
		return collection.State{}, err
	}
	var st collection.State
	if err := fromStruct(out, &st); err != nil {
		return collection.State{}, err
	}
	return st, nil
}

func (c *Client) CardCount(ctx context.Context, cardID string) (int, error) {
	out := new(wrapperspb.Int64Value)
	if err := c.cc.Invoke(ctx, fullMethod("CardCount"), wrapperspb.String(cardID), out); err != nil {
		return 0, err
	}
	return int(out.GetValue()), nil
}

func (c *Client) ListSets(ctx context.Context) ([]catalog.Set, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, fullMethod("ListSets"), new(emptypb.Empty), out); err != nil {
		return nil, err
	}
	var reply struct {
		Sets []catalog.Set `json:"sets"`
	}
	if err := fromStruct(out, &reply); err != nil {
		return nil, err
	}
	return reply.Sets, nil
}
