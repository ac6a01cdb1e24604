package storage

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// Rdb 全局 Redis 客户端：匹配历史与玩家对局索引都存在这里
var Rdb *redis.Client

func InitRedis(ctx context.Context, addr, password string, db int) error {
	Rdb = redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return Rdb.Ping(ctx).Err()
}
