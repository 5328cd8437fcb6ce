package storage

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

type Redis struct {
	Connection *redis.Client
}

func New(ctx context.Context, addr string) (*Redis, error) {
	conn := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	if err := conn.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Redis{Connection: conn}, nil
}

// Ping - verifies the connection is still alive.
func (that *Redis) Ping(ctx context.Context) error {
	if err := that.Connection.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to ping Redis: %w", err)
	}

	return nil
}

// Close - closes the underlying client connection.
func (that *Redis) Close() error {
	if err := that.Connection.Close(); err != nil {
		return fmt.Errorf("failed to close Redis connection: %w", err)
	}

	return nil
}
