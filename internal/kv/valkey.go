// Package kv provides the key-value backends a blob store persists to: a
// Valkey (Redis-compatible) client wrapper and an in-process map for tests
// and single-node development.
package kv

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// ConnectValkey creates a Valkey client on the given logical database and
// verifies the connection with a ping.
func ConnectValkey(host, port, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", host, port),
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("valkey ping: %w", err)
	}

	slog.Info("valkey connected", "addr", fmt.Sprintf("%s:%s", host, port), "db", db)
	return client, nil
}

// Valkey stores raw values as plain strings without expiry.
type Valkey struct {
	client *redis.Client
}

// NewValkey wraps a connected client.
func NewValkey(client *redis.Client) *Valkey {
	return &Valkey{client: client}
}

// Get returns the value under key, or nil when the key is absent.
func (v *Valkey) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := v.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Set overwrites key with value.
func (v *Valkey) Set(ctx context.Context, key string, value []byte) error {
	return v.client.Set(ctx, key, value, 0).Err()
}

// Ping checks the server.
func (v *Valkey) Ping(ctx context.Context) error {
	return v.client.Ping(ctx).Err()
}

// Close releases the underlying client.
func (v *Valkey) Close() error {
	return v.client.Close()
}
