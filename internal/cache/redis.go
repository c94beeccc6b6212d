package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/Barkat-Ullah/seed-lift-backend/internal/config"
	"github.com/redis/go-redis/v9"
)

// Client enveloppe le client Redis partagé (cache de réponses + compteurs de limite)
type Client struct {
	rdb *redis.Client
}

func ConnectRedis(cfg *config.Config) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("unable to ping redis: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

func (c *Client) Close() error {
	return c.rdb.Close()
}

// Get récupère une valeur en cache (redis.Nil si absente)
func (c *Client) Get(ctx context.Context, key string) (string, error) {
	val, err := c.rdb.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", nil
	}
	return val, err
}

// Set stocke une valeur avec TTL
func (c *Client) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.rdb.Set(ctx, key, value, ttl).Err()
}

// Limiter compte les requêtes sur une fenêtre glissante de 24h
type Limiter struct {
	client *Client
	key    string
	limit  int
}

// NewLimiter construit un limiteur journalier, injecté au démarrage
func NewLimiter(client *Client, key string, limit int) *Limiter {
	return &Limiter{client: client, key: key, limit: limit}
}

// Increment incrémente le compteur et retourne la nouvelle valeur
func (l *Limiter) Increment(ctx context.Context) (int, error) {
	count, err := l.client.rdb.Incr(ctx, l.key).Result()
	if err != nil {
		return 0, err
	}
	// Le TTL n'est posé qu'à la première requête de la fenêtre
	if count == 1 {
		l.client.rdb.Expire(ctx, l.key, 24*time.Hour)
	}
	return int(count), nil
}

// Count retourne le compteur courant sans l'incrémenter
func (l *Limiter) Count(ctx context.Context) (int, error) {
	val, err := l.client.rdb.Get(ctx, l.key).Int()
	if err == redis.Nil {
		return 0, nil
	}
	return val, err
}

// IsExceeded indique si la limite journalière est atteinte
func (l *Limiter) IsExceeded(ctx context.Context) (bool, error) {
	count, err := l.Count(ctx)
	if err != nil {
		return false, err
	}
	return count >= l.limit, nil
}

// Limit retourne la limite configurée
func (l *Limiter) Limit() int {
	return l.limit
}
