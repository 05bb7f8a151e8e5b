package cache

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss is returned when the credentials are not cached.
var ErrCacheMiss = errors.New("user not found in cache")

const (
	defaultKeyPrefix = "users:auth"
	defaultAuthTTL   = 5 * time.Minute
)

type Config struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
	// AuthTTL bounds how long a deactivated user keeps passing Basic auth.
	AuthTTL time.Duration
}

// ValkeyClient caches Basic-auth credential lookups, one expiring key per
// credential pair: <prefix>:base64(email:passwordHash) -> user id.
type ValkeyClient struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

func NewValkeyClient(cfg Config) (*ValkeyClient, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		DialTimeout:  5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Valkey: %w", err)
	}

	return NewValkeyClientWithRedis(rdb, cfg.KeyPrefix, cfg.AuthTTL), nil
}

func NewValkeyClientWithRedis(rdb *redis.Client, keyPrefix string, ttl time.Duration) *ValkeyClient {
	if keyPrefix == "" {
		keyPrefix = defaultKeyPrefix
	}
	if ttl <= 0 {
		ttl = defaultAuthTTL
	}
	return &ValkeyClient{
		client:    rdb,
		keyPrefix: keyPrefix,
		ttl:       ttl,
	}
}

func authCacheKey(email, passwordHash string) string {
	authString := fmt.Sprintf("%s:%s", email, passwordHash)
	return base64.StdEncoding.EncodeToString([]byte(authString))
}

func (v *ValkeyClient) key(email, passwordHash string) string {
	return v.keyPrefix + ":" + authCacheKey(email, passwordHash)
}

func (v *ValkeyClient) GetUserIDByAuth(ctx context.Context, email, passwordHash string) (uuid.UUID, error) {
	userIDStr, err := v.client.Get(ctx, v.key(email, passwordHash)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return uuid.Nil, ErrCacheMiss
		}
		return uuid.Nil, fmt.Errorf("cache lookup error: %w", err)
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid user ID in cache: %w", err)
	}

	return userID, nil
}

// SetUserAuth caches a verified credential pair until the TTL runs out.
func (v *ValkeyClient) SetUserAuth(ctx context.Context, email, passwordHash string, userID uuid.UUID) error {
	if err := v.client.Set(ctx, v.key(email, passwordHash), userID.String(), v.ttl).Err(); err != nil {
		return fmt.Errorf("cache store error: %w", err)
	}
	return nil
}

func (v *ValkeyClient) Close() error {
	return v.client.Close()
}
