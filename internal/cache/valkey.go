package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ValkeyClient caches rendered flight-list responses. Entries are raw JSON
// so cache hits skip both the store and serialization.
type ValkeyClient struct {
	client *redis.Client
	ttl    time.Duration
}

type Config struct {
	Addr     string
	Password string
	TTLSec   int
}

const flightListPrefix = "flights:list:"

func NewValkeyClient(cfg Config) (*ValkeyClient, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           0,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		DialTimeout:  5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Valkey: %w", err)
	}

	ttl := time.Duration(cfg.TTLSec) * time.Second
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &ValkeyClient{client: rdb, ttl: ttl}, nil
}

// GetFlightList returns the cached JSON body for a query key, or nil on miss.
func (v *ValkeyClient) GetFlightList(ctx context.Context, queryKey string) ([]byte, error) {
	body, err := v.client.Get(ctx, flightListPrefix+queryKey).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache lookup error: %w", err)
	}
	return body, nil
}

func (v *ValkeyClient) SetFlightList(ctx context.Context, queryKey string, body []byte) error {
	return v.client.Set(ctx, flightListPrefix+queryKey, body, v.ttl).Err()
}

// InvalidateFlightLists drops every cached flight listing. Called after a
// catalog write.
func (v *ValkeyClient) InvalidateFlightLists(ctx context.Context) error {
	iter := v.client.Scan(ctx, 0, flightListPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := v.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

func (v *ValkeyClient) Close() error {
	return v.client.Close()
}
