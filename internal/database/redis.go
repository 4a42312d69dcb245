package database

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// InitRedis initializes the Redis client. It returns nil when Redis is
// disabled or unreachable; callers treat a nil client as "no cache, no limits".
func InitRedis(ctx context.Context, v *viper.Viper, log *zap.SugaredLogger) *redis.Client {
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", "6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	if !v.GetBool("redis.enabled") {
		log.Info("redis disabled by configuration")
		return nil
	}

	addr := v.GetString("redis.host") + ":" + v.GetString("redis.port")
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: v.GetString("redis.password"),
		DB:       v.GetInt("redis.db"),
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		log.Warnw("redis connection failed, continuing without redis", "addr", addr, "error", err)
		rdb.Close()
		return nil
	}

	log.Infow("redis connection established", "addr", addr)
	return rdb
}
