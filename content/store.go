package content

import (
	"context"
	"errors"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"github.com/zalando/storefront/logging"
	"github.com/zalando/storefront/metrics"
)

const DefaultCacheTTL = 30 * time.Second

// StoreOptions configure the content store.
type StoreOptions struct {

	// Fetcher loads the records that are not cached. Required.
	Fetcher Fetcher

	// CacheTTL of the in-process tier. Defaults to DefaultCacheTTL.
	CacheTTL time.Duration

	// Redis enables the shared cache tier when set.
	Redis *RedisOptions

	Metrics metrics.Metrics
	Log     logging.Logger
}

// Store provides the content records, backed by the cache tiers and
// the fetcher. It is safe for concurrent use. Concurrent lookups of the
// same uncached record share a single fetch.
type Store struct {
	fetcher Fetcher
	local   *cache.Cache
	redis   *redisTier
	flight  singleflight.Group
	metrics metrics.Metrics
	log     logging.Logger
	quit    chan struct{}
	done    chan struct{}
}

// NewStore creates a content store. Close it to release its resources.
func NewStore(o StoreOptions) *Store {
	if o.CacheTTL <= 0 {
		o.CacheTTL = DefaultCacheTTL
	}

	if o.Metrics == nil {
		o.Metrics = metrics.Void
	}

	if o.Log == nil {
		o.Log = logging.Default()
	}

	s := &Store{
		fetcher: o.Fetcher,
		local:   cache.New(o.CacheTTL, 0),
		metrics: o.Metrics,
		log:     o.Log,
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}

	if o.Redis != nil && len(o.Redis.Addrs) > 0 {
		s.redis = newRedisTier(o.Redis)
	}

	go s.cleanup(o.CacheTTL)
	return s
}

// cleanup removes the expired records from the in-process tier. The
// janitor of the cache is not used, because it cannot be stopped.
func (s *Store) cleanup(interval time.Duration) {
	defer close(s.done)

	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-t.C:
			s.local.DeleteExpired()
		case <-s.quit:
			return
		}
	}
}

// Get returns the record with the id. When the record doesn't exist,
// it returns ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (*Record, error) {
	if v, ok := s.local.Get(id); ok {
		s.metrics.IncContentCache("local", "hit")
		return v.(*Record), nil
	}

	s.metrics.IncContentCache("local", "miss")

	// the load is shared with the concurrent callers, it must not be
	// canceled together with the request that started it
	loadCtx := context.WithoutCancel(ctx)
	ch := s.flight.DoChan(id, func() (any, error) {
		return s.load(loadCtx, id)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}

		return res.Val.(*Record), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *Store) load(ctx context.Context, id string) (*Record, error) {
	if s.redis != nil {
		r, err := s.redis.get(ctx, id)
		switch {
		case err != nil:
			s.metrics.IncContentCache("redis", "error")
			s.log.Warnf("failed to read content %s from redis: %v", id, err)
		case r != nil:
			s.metrics.IncContentCache("redis", "hit")
			s.local.SetDefault(id, r)
			return r, nil
		default:
			s.metrics.IncContentCache("redis", "miss")
		}
	}

	r, err := s.fetcher.Fetch(ctx, id)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.log.Errorf("failed to fetch content %s: %v", id, err)
		}

		return nil, err
	}

	s.local.SetDefault(id, r)
	if s.redis != nil {
		if err := s.redis.set(ctx, r); err != nil {
			s.metrics.IncContentCache("redis", "error")
			s.log.Warnf("failed to store content %s in redis: %v", id, err)
		}
	}

	return r, nil
}

// Flush drops the records of the in-process tier.
func (s *Store) Flush() {
	s.local.Flush()
}

// Close stops the store and closes the redis connections.
func (s *Store) Close() error {
	close(s.quit)
	<-s.done
	if s.redis != nil {
		return s.redis.close()
	}

	return nil
}
