package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dharmasatrya/ecoflyer/internal/models"
)

// Cache stores serialized search results keyed by the normalized request.
type Cache interface {
	Get(ctx context.Context, req models.SearchRequest) ([]byte, bool)
	Set(ctx context.Context, req models.SearchRequest, body []byte) error
	Close() error
}

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	DB       int
	TTL      time.Duration
}

func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Host:     "localhost",
		Port:     "6379",
		Password: "",
		DB:       0,
		TTL:      5 * time.Minute,
	}
}

// Connect opens a client and checks the server answers.
func Connect(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Host + ":" + cfg.Port,
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{
		client: client,
		ttl:    ttl,
	}
}

func (c *RedisCache) Get(ctx context.Context, req models.SearchRequest) ([]byte, bool) {
	data, err := c.client.Get(ctx, Key(req)).Bytes()
	if err != nil {
		return nil, false
	}
	return data, true
}

func (c *RedisCache) Set(ctx context.Context, req models.SearchRequest, body []byte) error {
	return c.client.Set(ctx, Key(req), body, c.ttl).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

type NoOpCache struct{}

func NewNoOpCache() *NoOpCache {
	return &NoOpCache{}
}

func (c *NoOpCache) Get(ctx context.Context, req models.SearchRequest) ([]byte, bool) {
	return nil, false
}

func (c *NoOpCache) Set(ctx context.Context, req models.SearchRequest, body []byte) error {
	return nil
}

func (c *NoOpCache) Close() error {
	return nil
}

// Key hashes the fields that determine a search result. req should already
// be validated so that equivalent date spellings share a key.
func Key(req models.SearchRequest) string {
	keyData := struct {
		Lat                  float64
		Long                 float64
		TripLength           string
		OutboundDate         string
		OutboundDateEndRange string
		ReturnDate           string
		ReturnDateEndRange   string
		Price                int
	}{
		Lat:                  float64(req.LatLong.Lat),
		Long:                 float64(req.LatLong.Long),
		TripLength:           req.TripLength,
		OutboundDate:         req.OutboundDate,
		OutboundDateEndRange: req.OutboundDateEndRange,
		ReturnDate:           req.ReturnDate,
		ReturnDateEndRange:   req.ReturnDateEndRange,
		Price:                req.PriceLimit(),
	}

	data, _ := json.Marshal(keyData)
	hash := sha256.Sum256(data)
	return "emissions:" + hex.EncodeToString(hash[:])
}
