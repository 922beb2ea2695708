package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"karaoke-booking/pkg/utils"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// PeriodLayout formats a billing period key, one per calendar month (UTC).
const PeriodLayout = "2006-01"

// counterTTL keeps last month's counter around long enough to bill it.
const counterTTL = 60 * 24 * time.Hour

// UsageCounter counts metered API calls per tenant and billing period.
type UsageCounter interface {
	IncrAPICalls(ctx context.Context, tenantID uuid.UUID, at time.Time) error
	APICalls(ctx context.Context, tenantID uuid.UUID, period string) (int64, error)
}

type RedisUsageCounter struct {
	client *redis.Client
	log    *zap.Logger
}

func NewRedisClient(ctx context.Context, config utils.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", config.Addr, err)
	}

	return client, nil
}

func NewRedisUsageCounter(client *redis.Client, log *zap.Logger) *RedisUsageCounter {
	return &RedisUsageCounter{
		client: client,
		log:    log.With(zap.String("cache", "usage_counter")),
	}
}

func apiCallsKey(tenantID uuid.UUID, period string) string {
	return fmt.Sprintf("usage:%s:%s:api_calls", tenantID.String(), period)
}

func (c *RedisUsageCounter) IncrAPICalls(ctx context.Context, tenantID uuid.UUID, at time.Time) error {
	key := apiCallsKey(tenantID, at.UTC().Format(PeriodLayout))

	pipe := c.client.TxPipeline()
	pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, counterTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		c.log.Warn("Failed to count api call",
			zap.Error(err),
			zap.String("tenant_id", tenantID.String()),
		)
		return fmt.Errorf("incr %s: %w", key, err)
	}

	return nil
}

func (c *RedisUsageCounter) APICalls(ctx context.Context, tenantID uuid.UUID, period string) (int64, error) {
	key := apiCallsKey(tenantID, period)

	n, err := c.client.Get(ctx, key).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		c.log.Error("Failed to read api call counter",
			zap.Error(err),
			zap.String("key", key),
		)
		return 0, fmt.Errorf("get %s: %w", key, err)
	}

	return n, nil
}
