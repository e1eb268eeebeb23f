// config/config.go
package config

import (
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Defaults kept for drop-in compatibility with existing deployments.
// Both trigger a loud warning at startup; see CheckInsecureDefaults.
const (
	DefaultAPIKey           = "test-api-key-123"
	DefaultEncryptionSecret = "audittrailkey123"
)

func InitConfig() error {
	viper.AddConfigPath("config") // path to look for the config file in
	viper.SetConfigName("config") // name of the config file (without extension)
	viper.SetConfigType("yaml")

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv() // read in environment variables that match

	// Server
	viper.SetDefault("server.port", "8080")

	// Event store
	viper.SetDefault("db.driver", "postgres")
	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "5432")
	viper.SetDefault("db.user", "postgres")
	viper.SetDefault("db.password", "postgres")
	viper.SetDefault("db.name", "tracebit")
	viper.SetDefault("db.path", "./tracebit.db")

	// Redis read cache
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.default_cache_ttl", "10m")

	// Ingress gate
	viper.SetDefault("api.keys", DefaultAPIKey)
	viper.SetDefault("api.rate_limit", 100)
	viper.SetDefault("api.rate_limit_reset_ms", 60000)

	// Field encryption
	viper.SetDefault("encryption.secret", DefaultEncryptionSecret)
	viper.SetDefault("encryption.legacy_key_derivation", false)
	viper.SetDefault("encryption.legacy_decrypt", false)

	// Async ingestion tail
	viper.SetDefault("worker.pool_size", 4)
	viper.SetDefault("worker.queue_capacity", 256)

	// Retention purge
	viper.SetDefault("retention.days", 90)

	// Webhook dispatch
	viper.SetDefault("webhook.timeout_ms", 5000)
	viper.SetDefault("webhook.legacy_signature", false)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("No config file found. Using default settings and environment variables.")
		} else {
			return err
		}
	}

	return nil
}

// APIKeys returns the configured set of valid ingestion keys.
func APIKeys() []string {
	raw := viper.GetString("api.keys")
	parts := strings.Split(raw, ",")
	keys := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			keys = append(keys, p)
		}
	}
	return keys
}

// RateLimitReset returns the fixed-window reset interval.
func RateLimitReset() time.Duration {
	return time.Duration(viper.GetInt64("api.rate_limit_reset_ms")) * time.Millisecond
}

// WebhookTimeout returns the per-delivery HTTP timeout.
func WebhookTimeout() time.Duration {
	return time.Duration(viper.GetInt64("webhook.timeout_ms")) * time.Millisecond
}

// UsingDefaultAPIKey reports whether the ingestion key set is still the
// development default.
func UsingDefaultAPIKey() bool {
	return viper.GetString("api.keys") == DefaultAPIKey
}

// UsingDefaultEncryptionSecret reports whether the field-encryption secret
// is still the development default.
func UsingDefaultEncryptionSecret() bool {
	return viper.GetString("encryption.secret") == DefaultEncryptionSecret
}

// GetString retrieves a string value from the configuration
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt retrieves an integer value from the configuration
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool retrieves a boolean value from the configuration
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetDuration retrieves a duration value from the configuration
func GetDuration(key string) time.Duration {
	return viper.GetDuration(key)
}
