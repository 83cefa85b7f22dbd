package guardkit

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// Invalidator receives one notification for every successful mutation of a
// role, permission or assignment edge. An external permission cache hooks in
// here; GuardKit itself holds no cached state. Full invalidation only: no
// keyed or partial invalidation is ever requested.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// InvalidatorFunc adapts a function to the Invalidator interface.
type InvalidatorFunc func(ctx context.Context) error

// Invalidate implements Invalidator.
func (f InvalidatorFunc) Invalidate(ctx context.Context) error {
	return f(ctx)
}

// NopInvalidator discards invalidation signals. It is the default for
// deployments without a permission cache.
type NopInvalidator struct{}

// Invalidate implements Invalidator.
func (NopInvalidator) Invalidate(context.Context) error {
	return nil
}

// RedisInvalidator invalidates a Redis-resident permission cache: it deletes
// the cache key and publishes on a channel so other processes drop their
// local copies too.
type RedisInvalidator struct {
	client  redis.UniversalClient
	key     string
	channel string
}

// RedisInvalidatorOption configures a RedisInvalidator.
type RedisInvalidatorOption func(*RedisInvalidator)

// WithCacheKey overrides the cache key to delete (default
// "guardkit:permissions").
func WithCacheKey(key string) RedisInvalidatorOption {
	return func(ri *RedisInvalidator) {
		ri.key = key
	}
}

// WithChannel overrides the pub/sub channel to notify (default
// "guardkit:invalidate"). An empty channel disables publishing.
func WithChannel(channel string) RedisInvalidatorOption {
	return func(ri *RedisInvalidator) {
		ri.channel = channel
	}
}

// NewRedisInvalidator creates a RedisInvalidator on an existing client.
func NewRedisInvalidator(client redis.UniversalClient, opts ...RedisInvalidatorOption) *RedisInvalidator {
	ri := &RedisInvalidator{
		client:  client,
		key:     "guardkit:permissions",
		channel: "guardkit:invalidate",
	}
	for _, opt := range opts {
		opt(ri)
	}
	return ri
}

// Invalidate implements Invalidator.
func (ri *RedisInvalidator) Invalidate(ctx context.Context) error {
	if err := ri.client.Del(ctx, ri.key).Err(); err != nil {
		return err
	}
	if ri.channel != "" {
		if err := ri.client.Publish(ctx, ri.channel, "invalidate").Err(); err != nil {
			return err
		}
	}
	return nil
}
