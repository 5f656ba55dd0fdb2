package identity

import (
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/smallbiznis/huddle/internal/config"
)

var Module = fx.Module("identity",
	fx.Provide(
		newCache,
		NewProvider,
	),
)

func newCache(cfg config.Config, log *zap.Logger) Cache {
	if cfg.RedisAddr == "" {
		return NewMemoryCache()
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	return NewRedisCache(rdb, log)
}
