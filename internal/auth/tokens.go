package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shrimpsizemoose/trekker/logger"
)

const (
	timeFormat  = "2006-01-02 15:04:05"
	tokenPrefix = "sk-kldk-"
)

// TokenManager keeps session tokens in redis, one hash per user, under a
// configurable key template (e.g. "session:{username}"). A nil manager
// means auth is disabled; every check passes.
type TokenManager struct {
	redis       *redis.Client
	keyTemplate string
	ttl         time.Duration
}

func NewTokenManager(url, keyTemplate string, ttl time.Duration) (*TokenManager, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &TokenManager{
		redis:       client,
		keyTemplate: keyTemplate,
		ttl:         ttl,
	}, nil
}

func (m *TokenManager) Close() error {
	if m == nil || m.redis == nil {
		return nil
	}
	return m.redis.Close()
}

func generateToken() (string, error) {
	randomBytes := make([]byte, 12)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return tokenPrefix + hex.EncodeToString(randomBytes), nil
}

func (m *TokenManager) key(username string) string {
	return strings.NewReplacer("{username}", username).Replace(m.keyTemplate)
}

// Issue mints a new session token for the user, replacing any previous one.
func (m *TokenManager) Issue(ctx context.Context, username string) (string, error) {
	if m == nil {
		return "", nil
	}

	token, err := generateToken()
	if err != nil {
		return "", err
	}

	key := m.key(username)
	if err := m.redis.HSet(ctx, key, map[string]any{
		"token":            token,
		"created_dttm_utc": time.Now().UTC().Format(timeFormat),
	}).Err(); err != nil {
		return "", fmt.Errorf("failed to store token: %w", err)
	}
	if m.ttl > 0 {
		if err := m.redis.Expire(ctx, key, m.ttl).Err(); err != nil {
			return "", fmt.Errorf("failed to set token ttl: %w", err)
		}
	}

	return token, nil
}

func (m *TokenManager) Validate(ctx context.Context, username, token string) error {
	if m == nil {
		return nil
	}

	key := m.key(username)
	fields, err := m.redis.HGetAll(ctx, key).Result()
	if err == redis.Nil || len(fields) == 0 {
		logger.Debug.Printf("no session found for key %s", key)
		return fmt.Errorf("session not found")
	}
	if err != nil {
		return fmt.Errorf("redis error: %w", err)
	}

	if fields["token"] != token {
		logger.Debug.Printf("token mismatch for user %s", username)
		return fmt.Errorf("invalid token")
	}
	return nil
}

// Revoke drops the user's session, if any.
func (m *TokenManager) Revoke(ctx context.Context, username string) error {
	if m == nil {
		return nil
	}
	if err := m.redis.Del(ctx, m.key(username)).Err(); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}
