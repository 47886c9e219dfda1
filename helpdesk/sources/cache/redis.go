// Package cache is a best-effort Redis store. It is never a source of truth:
// every failure degrades to a miss or a false, and nothing is returned as an error.
package cache

import (
	"context"
	"errors"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"helpdesk/helpdesk/utils/logging"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Store is the contract the rest of the service sees. Get reports hit/miss,
// Set and Delete report ok/failed.
type Store interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string, ttl time.Duration) bool
	Delete(ctx context.Context, key string) bool
	Connected() bool
}

const (
	// DefaultTTL is the expiration applied to cached histories.
	DefaultTTL = 24 * time.Hour

	defaultReconnectStep = 50 * time.Millisecond
	defaultReconnectMax  = 2 * time.Second
	defaultCheckInterval = 5 * time.Second
	pingTimeout          = time.Second
	commandTimeout       = 500 * time.Millisecond
	purgeTimeout         = 5 * time.Second
	purgeBatch           = 100
)

type Options struct {
	URL           string
	ReconnectStep time.Duration
	ReconnectMax  time.Duration
	CheckInterval time.Duration
	// PurgePattern is deleted on every disconnected -> connected edge, since
	// invalidations issued while Redis was unreachable were lost. Defaults to
	// the history namespace.
	PurgePattern string
}

type RedisCache struct {
	client *redis.Client

	connected atomic.Bool
	attempts  int

	reconnectStep time.Duration
	reconnectMax  time.Duration
	checkInterval time.Duration
	purgePattern  string

	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewRedisCache parses the URL, pings once and starts the connection
// monitor. An unreachable Redis is not an error: the cache stays
// disconnected and flips to connected once a ping succeeds.
func NewRedisCache(opts Options) (*RedisCache, error) {
	redisOpts, err := redis.ParseURL(opts.URL)
	if err != nil {
		return nil, err
	}
	// fail fast; the monitor owns reconnection
	redisOpts.MaxRetries = -1
	redisOpts.DialTimeout = pingTimeout
	redisOpts.ReadTimeout = commandTimeout
	redisOpts.WriteTimeout = commandTimeout

	c := &RedisCache{
		client:        redis.NewClient(redisOpts),
		reconnectStep: opts.ReconnectStep,
		reconnectMax:  opts.ReconnectMax,
		checkInterval: opts.CheckInterval,
		purgePattern:  opts.PurgePattern,
	}
	if c.purgePattern == "" {
		c.purgePattern = historyKeyPrefix + "*"
	}
	if c.reconnectStep <= 0 {
		c.reconnectStep = defaultReconnectStep
	}
	if c.reconnectMax <= 0 {
		c.reconnectMax = defaultReconnectMax
	}
	if c.checkInterval <= 0 {
		c.checkInterval = defaultCheckInterval
	}
	c.start()
	return c, nil
}

func (c *RedisCache) start() {
	ctx, cancel := context.WithCancel(context.Background())
	c.mu.Lock()
	c.cancel = cancel
	c.mu.Unlock()

	// first attempt is synchronous so a healthy Redis is usable immediately
	c.checkOnce(ctx)

	c.wg.Add(1)
	go c.monitor(ctx)
}

// Close stops the monitor and closes the client.
func (c *RedisCache) Close() error {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	c.mu.Unlock()
	c.wg.Wait()
	c.connected.Store(false)
	err := c.client.Close()
	logging.AppLogger.Info("Redis cache disconnected")
	return err
}

func (c *RedisCache) Connected() bool {
	return c.connected.Load()
}

func (c *RedisCache) monitor(ctx context.Context) {
	defer c.wg.Done()
	for {
		wait := c.checkInterval
		if !c.Connected() {
			wait = c.backoff()
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			c.checkOnce(ctx)
		}
	}
}

// backoff is linear: attempts × step, capped at the configured maximum.
func (c *RedisCache) backoff() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return ReconnectDelay(c.attempts, c.reconnectStep, c.reconnectMax)
}

func ReconnectDelay(attempt int, step, limit time.Duration) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := time.Duration(attempt) * step
	if d > limit {
		return limit
	}
	return d
}

func (c *RedisCache) checkOnce(ctx context.Context) {
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	err := c.client.Ping(pingCtx).Err()
	if err == nil && !c.Connected() {
		// stay disconnected until entries that may have missed an
		// invalidation are gone
		err = c.purge(ctx)
	}
	if err == nil {
		c.mu.Lock()
		c.attempts = 0
		c.mu.Unlock()
		if !c.connected.Swap(true) {
			logging.AppLogger.Info("Redis cache connected")
		}
		return
	}
	if ctx.Err() != nil {
		return
	}
	c.mu.Lock()
	c.attempts++
	c.mu.Unlock()
	c.markDown(err)
}

func (c *RedisCache) purge(ctx context.Context) error {
	purgeCtx, cancel := context.WithTimeout(ctx, purgeTimeout)
	defer cancel()

	var (
		batch   []string
		removed int
	)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := c.client.Del(purgeCtx, batch...).Err(); err != nil {
			return err
		}
		removed += len(batch)
		batch = batch[:0]
		return nil
	}

	iter := c.client.Scan(purgeCtx, 0, c.purgePattern, purgeBatch).Iterator()
	for iter.Next(purgeCtx) {
		batch = append(batch, iter.Val())
		if len(batch) >= purgeBatch {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if err := flush(); err != nil {
		return err
	}
	if removed > 0 {
		logging.AppLogger.Info("Purged cached entries after reconnect",
			zap.String("pattern", c.purgePattern), zap.Int("keys", removed))
	}
	return nil
}

// markDown logs only on the connected -> disconnected edge.
func (c *RedisCache) markDown(err error) {
	if c.connected.Swap(false) {
		logging.AppLogger.Info("Redis unavailable - cache disabled (database will be used instead)",
			zap.Error(err))
	}
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, bool) {
	if !c.Connected() {
		return "", false
	}
	defer logging.LogDuration(ctx, "cache_get")()
	cmdCtx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()
	val, err := c.client.Get(cmdCtx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.fail("get", key, err)
		}
		return "", false
	}
	logging.AppLogger.Info("Cache hit", zap.String("key", key))
	return val, true
}

func (c *RedisCache) Set(ctx context.Context, key, value string, ttl time.Duration) bool {
	if !c.Connected() {
		return false
	}
	defer logging.LogDuration(ctx, "cache_set")()
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	cmdCtx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()
	if err := c.client.Set(cmdCtx, key, value, ttl).Err(); err != nil {
		c.fail("set", key, err)
		return false
	}
	logging.AppLogger.Info("Cache set", zap.String("key", key))
	return true
}

func (c *RedisCache) Delete(ctx context.Context, key string) bool {
	if !c.Connected() {
		return false
	}
	cmdCtx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()
	if err := c.client.Del(cmdCtx, key).Err(); err != nil {
		c.fail("delete", key, err)
		return false
	}
	return true
}

func (c *RedisCache) fail(op, key string, err error) {
	if isConnError(err) {
		c.markDown(err)
		return
	}
	logging.ErrorLogger.Error("cache command failed",
		zap.String("op", op), zap.String("key", key), zap.Error(err))
}

func isConnError(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, redis.ErrClosed) ||
		errors.Is(err, context.DeadlineExceeded)
}

// Disabled is used when no cache is configured. Every read misses.
type Disabled struct{}

func (Disabled) Get(context.Context, string) (string, bool) { return "", false }
func (Disabled) Set(context.Context, string, string, time.Duration) bool { return false }
func (Disabled) Delete(context.Context, string) bool { return false }
func (Disabled) Connected() bool { return false }
