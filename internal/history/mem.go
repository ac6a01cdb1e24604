package history

import (
	"context"
	"sync"

	"BlockMatch/internal/engine"
)

// memStore 内存实现，主要供测试与无 Redis 的本地开发使用（忽略 TTL）
type memStore struct {
	mu      sync.Mutex
	matches map[string]*engine.Match
	players map[string]string // playerID -> matchID
}

func NewMemoryStore() Store {
	return &memStore{
		matches: make(map[string]*engine.Match),
		players: make(map[string]string),
	}
}

func (m *memStore) SaveMatch(ctx context.Context, match *engine.Match, ttlSeconds int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.matches[match.ID] = match
	for _, id := range match.Players() {
		m.players[id] = match.ID
	}
	return nil
}

func (m *memStore) PlayerMatch(ctx context.Context, playerID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.players[playerID], nil
}

func (m *memStore) GetMatch(ctx context.Context, matchID string) (*engine.Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.matches[matchID], nil
}

func (m *memStore) ReleasePlayers(ctx context.Context, playerIDs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range playerIDs {
		delete(m.players, id)
	}
	return nil
}
