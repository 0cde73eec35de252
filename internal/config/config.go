package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	Log     LogConfig
	Store   StoreConfig
	MongoDB MongoDBConfig
	Redis   RedisConfig
	Auth    AuthConfig
}

type LogConfig struct {
	Level string
}

// StoreConfig selects the document store backend. The decision is made once,
// at store construction, and never re-evaluated.
type StoreConfig struct {
	UseMongo  bool   // true: real document database; false: local emulation
	Namespace string // key prefix for persisted collection snapshots
	DataDir   string // directory for the file-backed key/value store
	KVDriver  string // "file" (default) or "redis"
}

type MongoDBConfig struct {
	URI      string
	Database string
	Timeout  time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type AuthConfig struct {
	Issuer        string // OIDC issuer URL; empty selects local-mode verification
	ClientID      string
	JWTSecret     string
	InsecureLocal bool // opt-in: accept unsigned tokens (dev/integration only)
}

// LoadConfig loads configuration from environment variables and a .env file.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load(".env")

	viper.AutomaticEnv()

	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("STORE_NAMESPACE", "bookbuddy")
	viper.SetDefault("STORE_DATA_DIR", "./data")
	viper.SetDefault("STORE_KV_DRIVER", "file")
	viper.SetDefault("MONGODB_DATABASE", "bookbuddy")
	viper.SetDefault("MONGODB_TIMEOUT", 10)
	viper.SetDefault("REDIS_PORT", "6379")

	cfg := &Config{
		Log: LogConfig{
			Level: viper.GetString("LOG_LEVEL"),
		},
		Store: StoreConfig{
			UseMongo:  viper.GetBool("USE_MONGO"),
			Namespace: viper.GetString("STORE_NAMESPACE"),
			DataDir:   viper.GetString("STORE_DATA_DIR"),
			KVDriver:  viper.GetString("STORE_KV_DRIVER"),
		},
		MongoDB: MongoDBConfig{
			URI:      viper.GetString("MONGODB_URI"),
			Database: viper.GetString("MONGODB_DATABASE"),
			Timeout:  time.Duration(viper.GetInt("MONGODB_TIMEOUT")) * time.Second,
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       0,
		},
		Auth: AuthConfig{
			Issuer:        viper.GetString("AUTH_ISSUER"),
			ClientID:      viper.GetString("AUTH_CLIENT_ID"),
			JWTSecret:     viper.GetString("JWT_SECRET"),
			InsecureLocal: viper.GetBool("AUTH_INSECURE_LOCAL"),
		},
	}

	if cfg.Store.UseMongo && cfg.MongoDB.URI == "" {
		return nil, fmt.Errorf("USE_MONGO is set but MONGODB_URI is empty")
	}
	if cfg.Store.KVDriver == "redis" && cfg.Redis.Host == "" {
		return nil, fmt.Errorf("STORE_KV_DRIVER is redis but REDIS_HOST is empty")
	}

	return cfg, nil
}
