package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/config"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/logger"
)

// Key families under the petco namespace.
const (
	namespace      = "petco"
	familyIdem     = "idem"
	familyAuth     = "auth"
	familyCronLock = "cron"
)

var errNotConnected = errors.New("redis: client not connected")

type cmdable interface {
	Ping(context.Context) *redis.StatusCmd
	Get(context.Context, string) *redis.StringCmd
	SetNX(context.Context, string, any, time.Duration) *redis.BoolCmd
	Incr(context.Context, string) *redis.IntCmd
	PExpire(context.Context, string, time.Duration) *redis.BoolCmd
	PTTL(context.Context, string) *redis.DurationCmd
	Del(context.Context, ...string) *redis.IntCmd
}

// Client is the shared Redis handle behind checkout idempotency, the login and
// register throttles and the cron-worker lease.
type Client struct {
	store cmdable
	raw   *redis.Client
}

// IdempotencyStore is the slice of Client the idempotency middleware needs.
type IdempotencyStore interface {
	Get(context.Context, string) (string, error)
	SetNX(context.Context, string, any, time.Duration) (bool, error)
	IdempotencyKey(scope, id string) string
	Del(context.Context, ...string) error
}

// Throttle is the result of counting one attempt inside a fixed window.
type Throttle struct {
	Count      int64
	Limit      int64
	RetryAfter time.Duration
}

// Allowed reports whether the attempt stayed within the limit. A non-positive
// limit never blocks.
func (t Throttle) Allowed() bool {
	return t.Limit <= 0 || t.Count <= t.Limit
}

// New dials Redis using cfg and pings it once before returning.
func New(ctx context.Context, cfg config.RedisConfig, logg *logger.Logger) (*Client, error) {
	opts, err := clientOptions(cfg)
	if err != nil {
		return nil, err
	}
	raw := redis.NewClient(opts)
	if err := raw.Ping(ctx).Err(); err != nil {
		_ = raw.Close()
		return nil, fmt.Errorf("redis: ping %s: %w", opts.Addr, err)
	}
	if logg != nil {
		logg.Info(logg.WithFields(ctx, map[string]any{
			"redis_addr": opts.Addr,
			"redis_db":   opts.DB,
			"pool_size":  opts.PoolSize,
		}), "redis.connected")
	}
	return &Client{store: raw, raw: raw}, nil
}

// clientOptions prefers PETCO_REDIS_URL and lets the discrete settings fill
// whatever the URL leaves unset.
func clientOptions(cfg config.RedisConfig) (*redis.Options, error) {
	var opts *redis.Options
	switch {
	case strings.TrimSpace(cfg.URL) != "":
		parsed, err := redis.ParseURL(strings.TrimSpace(cfg.URL))
		if err != nil {
			return nil, fmt.Errorf("redis: parse PETCO_REDIS_URL: %w", err)
		}
		opts = parsed
	case strings.TrimSpace(cfg.Address) != "":
		opts = &redis.Options{Addr: strings.TrimSpace(cfg.Address), Password: cfg.Password}
	default:
		return nil, errors.New("redis: PETCO_REDIS_URL or PETCO_REDIS_ADDR is required")
	}

	if opts.DB == 0 {
		opts.DB = cfg.DB
	}
	fillInt(&opts.PoolSize, cfg.PoolSize)
	fillInt(&opts.MinIdleConns, cfg.MinIdleConns)
	fillDuration(&opts.DialTimeout, cfg.DialTimeout)
	fillDuration(&opts.ReadTimeout, cfg.ReadTimeout)
	fillDuration(&opts.WriteTimeout, cfg.WriteTimeout)
	return opts, nil
}

func fillInt(dst *int, v int) {
	if *dst == 0 && v > 0 {
		*dst = v
	}
}

func fillDuration(dst *time.Duration, v time.Duration) {
	if *dst == 0 && v > 0 {
		*dst = v
	}
}

func (c *Client) ready() error {
	if c == nil || c.store == nil {
		return errNotConnected
	}
	return nil
}

func (c *Client) Get(ctx context.Context, key string) (string, error) {
	if err := c.ready(); err != nil {
		return "", err
	}
	return c.store.Get(ctx, key).Result()
}

// SetNX writes value only when key is absent and reports whether it did.
func (c *Client) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if err := c.ready(); err != nil {
		return false, err
	}
	return c.store.SetNX(ctx, key, value, ttl).Result()
}

func (c *Client) Del(ctx context.Context, keys ...string) error {
	if err := c.ready(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.store.Del(ctx, keys...).Err()
}

// Allow counts one attempt against key. The window opens on the first attempt
// and is not extended by later ones. Once the limit is passed, RetryAfter is
// the time left in the window.
func (c *Client) Allow(ctx context.Context, key string, limit int64, window time.Duration) (Throttle, error) {
	if err := c.ready(); err != nil {
		return Throttle{}, err
	}
	count, err := c.store.Incr(ctx, key).Result()
	if err != nil {
		return Throttle{}, fmt.Errorf("redis: incr %s: %w", key, err)
	}
	res := Throttle{Count: count, Limit: limit}
	if count == 1 && window > 0 {
		if err := c.store.PExpire(ctx, key, window).Err(); err != nil {
			return res, fmt.Errorf("redis: expire %s: %w", key, err)
		}
	}
	if res.Allowed() {
		return res, nil
	}
	res.RetryAfter = window
	if ttl, err := c.store.PTTL(ctx, key).Result(); err == nil && ttl > 0 {
		res.RetryAfter = ttl
	}
	return res, nil
}

// Ping backs the readiness probe.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.ready(); err != nil {
		return err
	}
	return c.store.Ping(ctx).Err()
}

func (c *Client) Close() error {
	if c == nil || c.raw == nil {
		return nil
	}
	return c.raw.Close()
}

// IdempotencyKey namespaces a stored checkout response, e.g.
// petco:idem:<scope>:<key>.
func (c *Client) IdempotencyKey(scope, id string) string {
	return joinKey(familyIdem, scope, id)
}

// CronLockKey is the lease key shared by cron-worker replicas.
func (c *Client) CronLockKey(name string) string {
	return joinKey(familyCronLock, name)
}

// AuthThrottleKey names the counter for one auth route and dimension, e.g.
// petco:auth:login:ip:10.0.0.1.
func AuthThrottleKey(route, dimension, subject string) string {
	return joinKey(familyAuth, route, dimension, subject)
}

func joinKey(parts ...string) string {
	out := make([]string, 0, len(parts)+1)
	out = append(out, namespace)
	for _, part := range parts {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, ":")
}
