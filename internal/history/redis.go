package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"BlockMatch/internal/engine"
)

// key 约定：
//
//	kv : mm:match:{id}          -> JSON(Match)
//	kv : mm:playerMatch:{id}    -> matchID（防止玩家在局中重复匹配）
//	两类 key 都带 TTL，避免对局异常结束后长期遗留
type redisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) Store {
	return &redisStore{rdb: rdb}
}

func matchKey(id string) string {
	return fmt.Sprintf("mm:match:%s", id)
}

func playerMatchKey(playerID string) string {
	return fmt.Sprintf("mm:playerMatch:%s", playerID)
}

func (r *redisStore) SaveMatch(ctx context.Context, m *engine.Match, ttlSeconds int) error {
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}
	ttl := time.Duration(ttlSeconds) * time.Second
	p := r.rdb.Pipeline()
	p.Set(ctx, matchKey(m.ID), data, ttl)
	for _, id := range m.Players() {
		p.Set(ctx, playerMatchKey(id), m.ID, ttl)
	}
	_, err = p.Exec(ctx)
	return err
}

func (r *redisStore) PlayerMatch(ctx context.Context, playerID string) (string, error) {
	val, err := r.rdb.Get(ctx, playerMatchKey(playerID)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

func (r *redisStore) GetMatch(ctx context.Context, matchID string) (*engine.Match, error) {
	data, err := r.rdb.Get(ctx, matchKey(matchID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var m engine.Match
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *redisStore) ReleasePlayers(ctx context.Context, playerIDs []string) error {
	if len(playerIDs) == 0 {
		return nil
	}
	p := r.rdb.Pipeline()
	for _, id := range playerIDs {
		p.Del(ctx, playerMatchKey(id))
	}
	_, err := p.Exec(ctx)
	return err
}
