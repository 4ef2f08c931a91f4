package store

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"remitguard/internal/lists/models"
	"remitguard/pkg/domain"
	"remitguard/pkg/platform/circuit"
)

var (
	membershipLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "remitguard_list_cache_lookups_total",
		Help: "List membership cache lookups by result",
	}, []string{"result"}) // result: "hit", "miss", "error", "bypass"

	membershipDurationMs = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "remitguard_list_membership_duration_ms",
		Help:    "Latency of list membership checks through the cache in milliseconds",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50},
	})
)

const (
	membershipKeyPrefix = "lists:member:"
	listedMarker        = "1"
	defaultCacheTTL     = 5 * time.Minute
	defaultFillTimeout  = 2 * time.Second
)

// CachedStore fronts a Store with a Redis read-through cache for membership
// checks. Only "listed" answers are cached: entries are never deleted, so a
// cached hit can never go stale, while a "not listed" answer is always read
// from the backing store.
type CachedStore struct {
	next        Store
	client      *redis.Client
	ttl         time.Duration
	fillTimeout time.Duration
	group       singleflight.Group
	breaker     *circuit.Breaker
	logger      *slog.Logger
}

// CachedStoreOption configures a CachedStore.
type CachedStoreOption func(*CachedStore)

// WithCacheTTL overrides how long membership answers are cached.
func WithCacheTTL(ttl time.Duration) CachedStoreOption {
	return func(s *CachedStore) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithFillTimeout bounds the shared backing-store lookup behind a cache miss.
func WithFillTimeout(d time.Duration) CachedStoreOption {
	return func(s *CachedStore) {
		if d > 0 {
			s.fillTimeout = d
		}
	}
}

// WithBreaker replaces the default cache circuit breaker.
func WithBreaker(b *circuit.Breaker) CachedStoreOption {
	return func(s *CachedStore) {
		if b != nil {
			s.breaker = b
		}
	}
}

func WithCacheLogger(logger *slog.Logger) CachedStoreOption {
	return func(s *CachedStore) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewCachedStore wraps next with a Redis membership cache.
func NewCachedStore(next Store, client *redis.Client, opts ...CachedStoreOption) *CachedStore {
	s := &CachedStore{
		next:        next,
		client:      client,
		ttl:         defaultCacheTTL,
		fillTimeout: defaultFillTimeout,
		breaker:     circuit.New("lists-cache"),
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Upsert writes through to the backing store, then marks the key as listed.
// The cache write is best-effort: once the backing write commits, a Redis
// failure is logged and counted against the breaker, never returned.
func (s *CachedStore) Upsert(ctx context.Context, entry *models.Entry) (*models.Entry, error) {
	stored, err := s.next.Upsert(ctx, entry)
	if err != nil {
		return nil, err
	}
	if !s.breaker.Allow() {
		return stored, nil
	}
	key := membershipKeyPrefix + stored.Key()
	if err := s.client.Set(ctx, key, listedMarker, s.ttl).Err(); err != nil {
		s.recordFailure(ctx, "list cache write failed", key, err)
		return stored, nil
	}
	s.breaker.RecordSuccess()
	return stored, nil
}

// Exists answers from Redis when possible. Redis failures fall through to the
// backing store so a cache outage never turns into a rule failure; after
// repeated failures the breaker skips Redis until a trial call succeeds.
func (s *CachedStore) Exists(ctx context.Context, listType domain.ListType, address string) (bool, error) {
	start := time.Now()
	defer func() {
		membershipDurationMs.Observe(float64(time.Since(start).Microseconds()) / 1000.0)
	}()

	if !s.breaker.Allow() {
		membershipLookups.WithLabelValues("bypass").Inc()
		return s.next.Exists(ctx, listType, address)
	}

	key := membershipKeyPrefix + models.Key(listType, address)
	val, err := s.client.Get(ctx, key).Result()
	switch {
	case err == nil:
		s.breaker.RecordSuccess()
		membershipLookups.WithLabelValues("hit").Inc()
		return val == listedMarker, nil
	case errors.Is(err, redis.Nil):
		s.breaker.RecordSuccess()
		membershipLookups.WithLabelValues("miss").Inc()
	default:
		s.recordFailure(ctx, "list cache read failed", key, err)
		membershipLookups.WithLabelValues("error").Inc()
		return s.next.Exists(ctx, listType, address)
	}

	// The shared fill outlives any single caller's deadline so one cancelled
	// waiter cannot fail the others.
	ch := s.group.DoChan(key, func() (any, error) {
		fillCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.fillTimeout)
		defer cancel()

		listed, err := s.next.Exists(fillCtx, listType, address)
		if err != nil {
			return false, err
		}
		if listed {
			if err := s.client.Set(fillCtx, key, listedMarker, s.ttl).Err(); err != nil {
				s.recordFailure(fillCtx, "list cache fill failed", key, err)
			}
		}
		return listed, nil
	})

	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return false, res.Err
		}
		return res.Val.(bool), nil
	}
}

func (s *CachedStore) recordFailure(ctx context.Context, msg, key string, err error) {
	_, change := s.breaker.RecordFailure()
	s.logger.WarnContext(ctx, msg,
		"key", key,
		"breaker_opened", change.Opened,
		"error", err,
	)
}

func (s *CachedStore) List(ctx context.Context, listType *domain.ListType) ([]*models.Entry, error) {
	return s.next.List(ctx, listType)
}
