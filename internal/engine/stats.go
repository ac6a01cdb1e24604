package engine

import "sync/atomic"

// Stats 计数器：累计值只增不减，在队深度随进出增减。
// 只有 Processor 写入；读方通过 Snapshot 拿到一致性快照，永不阻塞单写循环。
type Stats struct {
	matched   atomic.Int64
	timedOut  atomic.Int64
	cancelled atomic.Int64
	depths    map[string]*depthPair // 构造后 key 不再变化，只改原子值
}

type depthPair struct {
	hosts atomic.Int64
	joins atomic.Int64
}

func newStats(modes map[string]Mode) *Stats {
	s := &Stats{depths: make(map[string]*depthPair, len(modes))}
	for name := range modes {
		s.depths[name] = &depthPair{}
	}
	return s
}

func (s *Stats) enter(mode string, role Role) {
	s.adjust(mode, role, 1)
}

func (s *Stats) leave(mode string, role Role) {
	s.adjust(mode, role, -1)
}

func (s *Stats) adjust(mode string, role Role, delta int64) {
	d, ok := s.depths[mode]
	if !ok {
		return
	}
	if role == RoleHost {
		d.hosts.Add(delta)
	} else {
		d.joins.Add(delta)
	}
}

// ModeDepth 单个玩法当前等待人数
type ModeDepth struct {
	Hosts int64 `json:"hosts"`
	Joins int64 `json:"joins"`
}

// Snapshot 只读统计快照
type Snapshot struct {
	Matched   int64                `json:"matched"`
	TimedOut  int64                `json:"timedOut"`
	Cancelled int64                `json:"cancelled"`
	Depths    map[string]ModeDepth `json:"depths"`
}

func (s *Stats) snapshot() Snapshot {
	snap := Snapshot{
		Matched:   s.matched.Load(),
		TimedOut:  s.timedOut.Load(),
		Cancelled: s.cancelled.Load(),
		Depths:    make(map[string]ModeDepth, len(s.depths)),
	}
	for name, d := range s.depths {
		snap.Depths[name] = ModeDepth{
			Hosts: d.hosts.Load(),
			Joins: d.joins.Load(),
		}
	}
	return snap
}
