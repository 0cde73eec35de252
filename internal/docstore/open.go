package docstore

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/bookbuddy/go-services/internal/config"
	"github.com/bookbuddy/go-services/internal/database"
	"github.com/bookbuddy/go-services/internal/kv"
	"github.com/bookbuddy/go-services/pkg/logger"
)

// Open constructs the document store selected by cfg. The backend decision
// is made here, once; callers inject the returned Store into the services
// and never re-evaluate it.
//
// When Mongo is selected but cannot be reached, Open logs the failure and
// falls back to the local emulation, mirroring the source system's startup.
// Only a failure to initialize the fallback itself is fatal, surfaced as
// ErrBackendUnavailable.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	if cfg.Store.UseMongo {
		client, err := database.ConnectMongo(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout)
		if err == nil {
			s, serr := NewMongoStore(ctx, client, cfg.MongoDB.Database)
			if serr == nil {
				logger.Infof("document store: mongo backend, database %s", cfg.MongoDB.Database)
				return s, nil
			}
			err = serr
		}
		logger.Warnf("cannot use MongoDB (%v), falling back to local emulation", err)
	}

	kvs, err := openKV(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	s, err := NewLocalStore(ctx, kvs, cfg.Store.Namespace)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	logger.Infof("document store: local emulation, namespace %s", cfg.Store.Namespace)
	return s, nil
}

func openKV(ctx context.Context, cfg *config.Config) (kv.Store, error) {
	if cfg.Store.KVDriver == "redis" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("redis ping: %w", err)
		}
		return kv.NewRedisStore(client), nil
	}
	return kv.NewFileStore(cfg.Store.DataDir)
}
