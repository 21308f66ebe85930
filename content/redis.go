package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	DefaultRedisTTL     = 5 * time.Minute
	DefaultRedisTimeout = 25 * time.Millisecond
	DefaultRedisPrefix  = "storefront:content:"
)

// RedisOptions configure the shared cache tier.
type RedisOptions struct {

	// Addrs are the list of redis shards.
	Addrs []string

	// TTL of the cached records. Defaults to DefaultRedisTTL.
	TTL time.Duration

	// Prefix of the keys. Defaults to DefaultRedisPrefix.
	Prefix string

	// Timeouts of the redis operations. Default to
	// DefaultRedisTimeout.
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	DialTimeout  time.Duration
	PoolTimeout  time.Duration
}

type redisTier struct {
	ring   *redis.Ring
	ttl    time.Duration
	prefix string
}

func orDefault(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}

	return d
}

func newRedisTier(o *RedisOptions) *redisTier {
	ringOptions := &redis.RingOptions{
		Addrs:        make(map[string]string),
		ReadTimeout:  orDefault(o.ReadTimeout, DefaultRedisTimeout),
		WriteTimeout: orDefault(o.WriteTimeout, DefaultRedisTimeout),
		DialTimeout:  orDefault(o.DialTimeout, DefaultRedisTimeout),
		PoolTimeout:  orDefault(o.PoolTimeout, DefaultRedisTimeout),
	}

	for idx, addr := range o.Addrs {
		ringOptions.Addrs[fmt.Sprintf("redis%d", idx)] = addr
	}

	prefix := o.Prefix
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}

	return &redisTier{
		ring:   redis.NewRing(ringOptions),
		ttl:    orDefault(o.TTL, DefaultRedisTTL),
		prefix: prefix,
	}
}

// get returns nil without an error when the record is not cached.
func (t *redisTier) get(ctx context.Context, id string) (*Record, error) {
	b, err := t.ring.Get(ctx, t.prefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	var r Record
	if err := json.Unmarshal(b, &r); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}

	return &r, nil
}

func (t *redisTier) set(ctx context.Context, r *Record) error {
	b, err := json.Marshal(r)
	if err != nil {
		return err
	}

	return t.ring.Set(ctx, t.prefix+r.ID, b, t.ttl).Err()
}

func (t *redisTier) close() error {
	return t.ring.Close()
}
