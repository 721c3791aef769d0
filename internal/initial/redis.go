package initial

import (
	"context"
	"fmt"
	"time"

	"ChatDesk/internal/config"
	"ChatDesk/pkg/zlog"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// NewRedisClient 未配置主机时返回 nil；连接失败只记日志，不阻塞启动
func NewRedisClient(ctx context.Context, conf *config.Config) *goredis.Client {
	host := conf.RedisConfig.Host
	if host == "" {
		zlog.Info("redis not configured, tenant cache disabled")
		return nil
	}
	port := conf.RedisConfig.Port
	if port == 0 {
		port = 6379
	}
	addr := fmt.Sprintf("%s:%d", host, port)

	client := goredis.NewClient(&goredis.Options{
		Addr:         addr,
		Password:     conf.RedisConfig.Password,
		DB:           conf.RedisConfig.DB,
		PoolSize:     conf.RedisConfig.PoolSize,
		MinIdleConns: conf.RedisConfig.MinIdleConns,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		zlog.Error("redis ping failed", zap.String("addr", addr), zap.Error(err))
		_ = client.Close()
		return nil
	}
	zlog.Info("redis connected", zap.String("addr", addr))
	return client
}
