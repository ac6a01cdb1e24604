package history

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"BlockMatch/internal/engine"
)

func sampleMatch() *engine.Match {
	return &engine.Match{
		ID:        "m-123",
		Mode:      "2v2",
		Hosts:     []string{"H1", "H2"},
		Joins:     []string{"J1", "J2"},
		CreatedAt: time.Now().Truncate(time.Second),
	}
}

// ---------- Redis（miniredis）实现测试 ----------
func Test_RedisStore_SaveAndLookup(t *testing.T) {
	ctx := context.Background()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisStore(rdb)

	m := sampleMatch()
	require.NoError(t, store.SaveMatch(ctx, m, 60))

	// mm:match:{id} 与每个玩家的反向索引都应写入
	assert.True(t, mr.Exists("mm:match:m-123"))
	for _, p := range m.Players() {
		got, err := store.PlayerMatch(ctx, p)
		require.NoError(t, err)
		assert.Equal(t, "m-123", got)
	}

	loaded, err := store.GetMatch(ctx, "m-123")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, m.ID, loaded.ID)
	assert.Equal(t, m.Hosts, loaded.Hosts)
	assert.Equal(t, m.Joins, loaded.Joins)

	// 不存在的 ID
	missing, err := store.GetMatch(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func Test_RedisStore_ReleasePlayers(t *testing.T) {
	ctx := context.Background()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisStore(rdb)

	m := sampleMatch()
	require.NoError(t, store.SaveMatch(ctx, m, 60))

	require.NoError(t, store.ReleasePlayers(ctx, m.Players()))
	for _, p := range m.Players() {
		got, err := store.PlayerMatch(ctx, p)
		require.NoError(t, err)
		assert.Equal(t, "", got, "player %s should be released", p)
	}

	// 空列表不报错
	require.NoError(t, store.ReleasePlayers(ctx, nil))
}

func Test_RedisStore_TTL(t *testing.T) {
	ctx := context.Background()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisStore(rdb)

	require.NoError(t, store.SaveMatch(ctx, sampleMatch(), 1))
	assert.True(t, mr.Exists("mm:match:m-123"))

	// miniredis 手动快进时间，TTL 过期后记录消失
	mr.FastForward(2 * time.Second)
	assert.False(t, mr.Exists("mm:match:m-123"))
	got, err := store.PlayerMatch(ctx, "H1")
	require.NoError(t, err)
	assert.Equal(t, "", got)
}

// ---------- 内存实现测试 ----------
func Test_MemoryStore_Roundtrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	m := sampleMatch()
	require.NoError(t, store.SaveMatch(ctx, m, 60))

	got, err := store.PlayerMatch(ctx, "J1")
	require.NoError(t, err)
	assert.Equal(t, "m-123", got)

	loaded, err := store.GetMatch(ctx, "m-123")
	require.NoError(t, err)
	assert.Equal(t, m, loaded)

	require.NoError(t, store.ReleasePlayers(ctx, []string{"J1"}))
	got, err = store.PlayerMatch(ctx, "J1")
	require.NoError(t, err)
	assert.Equal(t, "", got)
}
