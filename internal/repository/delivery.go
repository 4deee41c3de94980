package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const deliveryKeyPrefix = "lzar:webhook:delivery:"

// DeliveryGuard remembers webhook deliveries in Redis so exact redeliveries can be
// acknowledged without touching the ledger.
type DeliveryGuard struct {
	client *redis.Client
	ttl    time.Duration
}

// NewDeliveryGuard creates a DeliveryGuard whose claims expire after ttl
func NewDeliveryGuard(client *redis.Client, ttl time.Duration) *DeliveryGuard {
	return &DeliveryGuard{client: client, ttl: ttl}
}

// Claim records key and reports whether this is its first delivery.
func (g *DeliveryGuard) Claim(ctx context.Context, key string) (bool, error) {
	ok, err := g.client.SetNX(ctx, deliveryKeyPrefix+key, 1, g.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to claim delivery %s: %w", key, err)
	}
	return ok, nil
}

// Release forgets key so a redelivery is processed again.
func (g *DeliveryGuard) Release(ctx context.Context, key string) error {
	if err := g.client.Del(ctx, deliveryKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to release delivery %s: %w", key, err)
	}
	return nil
}

// ConnectRedis connects to the redis server and verifies it answers.
func ConnectRedis(ctx context.Context, addr, password string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return rdb, nil
}
