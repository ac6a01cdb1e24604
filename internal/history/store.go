package history

import (
	"context"

	"BlockMatch/internal/engine"
)

// Store 成局记录的抽象存储
type Store interface {
	// SaveMatch 保存成局记录并建立 player -> match 反向索引
	SaveMatch(ctx context.Context, m *engine.Match, ttlSeconds int) error
	// PlayerMatch 返回玩家当前所在的 matchID；不在局中返回 ""
	PlayerMatch(ctx context.Context, playerID string) (string, error)
	// GetMatch 按 ID 读取成局记录；不存在返回 nil
	GetMatch(ctx context.Context, matchID string) (*engine.Match, error)
	// ReleasePlayers 对局结束后清掉玩家的反向索引，允许重新匹配
	ReleasePlayers(ctx context.Context, playerIDs []string) error
}
