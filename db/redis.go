// db/redis.go
package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/tracebit-io/tracebit/crypto"
	"github.com/tracebit-io/tracebit/logging"
	"github.com/tracebit-io/tracebit/model"
)

var RedisClient *redis.Client

func InitRedis() error {
	RedisClient = redis.NewClient(&redis.Options{
		Addr:     viper.GetString("redis.addr"),
		Password: viper.GetString("redis.password"),
		DB:       viper.GetInt("redis.db"),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := RedisClient.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logging.Info("Successfully connected to Redis")
	return nil
}

func CloseRedis() {
	if RedisClient != nil {
		if err := RedisClient.Close(); err != nil {
			logging.Error("Error closing Redis connection", zap.Error(err))
		}
	}
}

func auditLogKey(id uint64) string {
	return fmt.Sprintf("auditlog:%d", id)
}

// CacheAuditLog stores a decrypted audit log for fast id lookups. The
// JSON is sealed with the field codec before it leaves the process; the
// cache server is as untrusted as the database.
func CacheAuditLog(ctx context.Context, log *model.AuditLog) error {
	logJSON, err := json.Marshal(log)
	if err != nil {
		return fmt.Errorf("failed to marshal audit log: %w", err)
	}

	sealed, err := crypto.Seal(string(logJSON))
	if err != nil {
		return fmt.Errorf("failed to encrypt audit log for cache: %w", err)
	}

	ttl := viper.GetDuration("redis.default_cache_ttl")
	if err := RedisClient.Set(ctx, auditLogKey(log.ID), sealed, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache audit log: %w", err)
	}

	logging.Debug("Audit log cached", zap.Uint64("auditLogID", log.ID))
	return nil
}

// GetCachedAuditLog returns the cached audit log, or nil on a miss.
func GetCachedAuditLog(ctx context.Context, id uint64) (*model.AuditLog, error) {
	sealed, err := RedisClient.Get(ctx, auditLogKey(id)).Result()
	if err == redis.Nil {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to get audit log from cache: %w", err)
	}

	logJSON, err := crypto.Open(sealed)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt cached audit log: %w", err)
	}

	var log model.AuditLog
	if err := json.Unmarshal([]byte(logJSON), &log); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached audit log: %w", err)
	}

	logging.Debug("Audit log retrieved from cache", zap.Uint64("auditLogID", id))
	return &log, nil
}

func DeleteCachedAuditLog(ctx context.Context, id uint64) error {
	if err := RedisClient.Del(ctx, auditLogKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete audit log from cache: %w", err)
	}
	return nil
}

// AuditCache adapts the redis helpers to the cache surface the audit
// service consumes.
type AuditCache struct{}

func (AuditCache) Get(ctx context.Context, id uint64) (*model.AuditLog, error) {
	return GetCachedAuditLog(ctx, id)
}

func (AuditCache) Set(ctx context.Context, log *model.AuditLog) error {
	return CacheAuditLog(ctx, log)
}
