package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mediacore/internal/config"
	"mediacore/internal/logging"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

// Cache envuelve Redis para guardar JSON con TTL. Un *Cache nil (o sin cliente)
// se comporta como cache vacío: lecturas dan miss y escrituras no hacen nada.
type Cache struct {
	client *redis.Client
}

func New(client *redis.Client) *Cache {
	return &Cache{client: client}
}

// Connect crea el cliente y hace ping.
func Connect(ctx context.Context, cfg *config.Config) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	logging.Info().Str("addr", cfg.RedisAddr).Msg("[redis] conectado")
	return New(client), nil
}

func (c *Cache) enabled() bool {
	return c != nil && c.client != nil
}

// =======================================================
//  Helpers JSON para usar desde los servicios
// =======================================================

// GetJSON lee key y, si existe, deserializa el JSON en dest.
func (c *Cache) GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	if !c.enabled() {
		return false, nil
	}

	val, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err := json.Unmarshal(val, dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON serializa value y lo guarda con el TTL dado.
func (c *Cache) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	if !c.enabled() {
		return nil
	}

	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, b, ttl).Err()
}

func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	if !c.enabled() || len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

// Ping para el healthcheck. Sin cliente devuelve nil.
func (c *Cache) Ping(ctx context.Context) error {
	if !c.enabled() {
		return nil
	}
	return c.client.Ping(ctx).Err()
}

func (c *Cache) Close() error {
	if !c.enabled() {
		return nil
	}
	return c.client.Close()
}
