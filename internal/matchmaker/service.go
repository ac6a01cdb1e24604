package matchmaker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"BlockMatch/internal/engine"
	"BlockMatch/internal/history"
	"BlockMatch/internal/utils"
	ws "BlockMatch/internal/websocket"
)

type HubBroadcaster interface {
	BroadcastToPlayers(ids []string, msg ws.OutgoingMessage)
	SendToPlayer(id string, msg ws.OutgoingMessage)
}

// Service 把匹配引擎接到外层：HTTP 长轮询、WebSocket 推送、成局落库
type Service struct {
	eng      *engine.Engine
	store    history.Store
	archive  *history.Archive // 可为 nil（未配置 Postgres）
	hub      HubBroadcaster
	matchTTL int // seconds，成局记录的保留时间
}

func NewService(eng *engine.Engine, store history.Store, hub HubBroadcaster, matchTTL int) *Service {
	s := &Service{eng: eng, store: store, hub: hub, matchTTL: matchTTL}
	// 成局回调：引擎每成一局在独立协程里调用一次
	eng.OnMatch = s.onMatch
	return s
}

// WithArchive 挂上可选的 Postgres 归档
func (s *Service) WithArchive(a *history.Archive) *Service {
	s.archive = a
	return s
}

// Join 入队并阻塞到终态（受 ctx 与请求 deadline 双重限制）。
// ctx 被取消（客户端断开）时顺手取消引擎侧请求，避免票据滞留。
func (s *Service) Join(ctx context.Context, req JoinRequest) (engine.Outcome, error) {
	// 防止重复匹配：已在局中的玩家直接拒绝
	if matchID, err := s.store.PlayerMatch(ctx, req.PlayerID); err == nil && matchID != "" {
		return engine.Outcome{}, fmt.Errorf("player %s already in match %s", req.PlayerID, matchID)
	}

	out, err := s.eng.Enqueue(ctx, engine.Request{
		PlayerID: req.PlayerID,
		Mode:     req.Mode,
		Role:     engine.Role(req.Role),
		Deadline: secondsToDuration(req.TimeoutSec),
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			// 调用方只是放弃了等待，引擎里的请求还活着，这里替它收尾
			s.eng.Cancel(req.PlayerID)
		}
		return engine.Outcome{}, err
	}

	// matched 的推送走 onMatch 广播；其余终态单发给本人
	if out.State != engine.OutcomeMatched {
		s.hub.SendToPlayer(req.PlayerID, ws.OutgoingMessage{
			Event: out.State,
			Data:  map[string]any{"mode": req.Mode},
		})
	}
	return out, nil
}

// Cancel 取消等待中的请求；幂等
func (s *Service) Cancel(ctx context.Context, playerID string) bool {
	return s.eng.Cancel(playerID)
}

// Stats 当前计数器快照
func (s *Service) Stats() engine.Snapshot {
	return s.eng.Stats()
}

// HandleIncoming 挂到 Hub.OnIncoming，处理 WebSocket 上行
func (s *Service) HandleIncoming(msg ws.IncomingMessage) {
	switch msg.Event {
	case "cancel":
		s.Cancel(context.Background(), msg.From)
	}
}

// onMatch 成局处理：落库 + 广播。运行在引擎派生的协程里，不在单写循环上
func (s *Service) onMatch(m *engine.Match) {
	ctx := context.Background()

	if err := s.store.SaveMatch(ctx, m, s.matchTTL); err != nil {
		utils.Error.Printf("SaveMatch error: %v", err)
	}
	if s.archive != nil {
		if err := s.archive.Insert(ctx, m); err != nil {
			utils.Error.Printf("archive insert error: %v", err)
		}
	}

	s.hub.BroadcastToPlayers(m.Players(), ws.OutgoingMessage{
		Event: "matched",
		Data: map[string]any{
			"matchId": m.ID,
			"mode":    m.Mode,
			"hosts":   m.Hosts,
			"joins":   m.Joins,
			"players": m.Players(),
		},
	})
}

func secondsToDuration(sec int) time.Duration {
	if sec <= 0 {
		return 0
	}
	return time.Duration(sec) * time.Second
}
