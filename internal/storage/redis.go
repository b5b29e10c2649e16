package storage

import (
	"context"

	"github.com/pkg/errors"
	"github.com/zeromicro/go-zero/core/stores/redis"

	"github.com/xtding233/pack-sim/internal/collection"
)

// Redis stores the blob under one string key.
type Redis struct {
	rds *redis.Redis
	key string
}

func NewRedis(addr, pass, key string) *Redis {
	var opts []redis.Option
	if pass != "" {
		opts = append(opts, redis.WithPass(pass))
	}
	if key == "" {
		key = DefaultKey
	}
	return &Redis{rds: redis.New(addr, opts...), key: key}
}

func (r *Redis) Load(ctx context.Context) (collection.State, error) {
	// go-zero reports a missing key as "" with a nil error
	v, err := r.rds.GetCtx(ctx, r.key)
	if err != nil {
		return collection.State{}, errors.Wrapf(err, "redis get %s", r.key)
	}
	return decode([]byte(v))
}

func (r *Redis) Save(ctx context.Context, state collection.State) error {
	b, err := collection.EncodeState(state)
	if err != nil {
		return err
	}
	if err := r.rds.SetCtx(ctx, r.key, string(b)); err != nil {
		return errors.Wrapf(err, "redis set %s", r.key)
	}
	return nil
}

// Close is a no-op; go-zero pools its clients per address.
func (r *Redis) Close() error { return nil }
