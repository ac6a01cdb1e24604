package engine

import (
	"errors"
	"time"
)

// Role 表示排队方向：开桌方 host 或加入方 join
type Role string

const (
	RoleHost Role = "host"
	RoleJoin Role = "join"
)

// Mode 定义一个玩法成局所需的人数（构造后不可变）
type Mode struct {
	Hosts int `mapstructure:"hosts" json:"hosts"`
	Joins int `mapstructure:"joins" json:"joins"`
}

// Request 玩家提交的匹配请求
type Request struct {
	PlayerID string
	Mode     string
	Role     Role
	Deadline time.Duration // 0 表示使用引擎默认值
}

// 终态常量（一个请求一生只会收到其中一个）
const (
	OutcomeMatched   = "matched"
	OutcomeTimedOut  = "timed_out"
	OutcomeCancelled = "cancelled"
	OutcomeClosed    = "closed"
)

// Outcome 引擎写回给等待方的终态结果
type Outcome struct {
	State   string   `json:"state"`
	MatchID string   `json:"matchId,omitempty"`
	Peers   []string `json:"peers,omitempty"` // 同局所有玩家（含自己）
}

// Match 成局结果，由 Processor 原子生成，创建后不可变
type Match struct {
	ID        string    `json:"matchId"`
	Mode      string    `json:"mode"`
	Hosts     []string  `json:"hosts"`
	Joins     []string  `json:"joins"`
	CreatedAt time.Time `json:"createdAt"`
}

// Players 返回全部参与者（host 在前，join 在后）
func (m *Match) Players() []string {
	all := make([]string, 0, len(m.Hosts)+len(m.Joins))
	all = append(all, m.Hosts...)
	all = append(all, m.Joins...)
	return all
}

// 同步错误分类（终态不走 error，见 Outcome）
var (
	ErrInvalidMode    = errors.New("unknown game mode")
	ErrInvalidRole    = errors.New("role must be host or join")
	ErrAlreadyQueued  = errors.New("player already queued")
	ErrQueueFull      = errors.New("queue is full")
	ErrNotFound       = errors.New("player not waiting")
	ErrBusy           = errors.New("engine busy, retry later")
	ErrClosed         = errors.New("engine closed")
	ErrNotStarted     = errors.New("engine not started")
	ErrAlreadyStarted = errors.New("engine already started")
)

// ticket 内部排队凭据；outcome 为 buffered(1) 的一次性写通道，
// 只由 Processor 写入，保证不阻塞单写循环
type ticket struct {
	id       string
	mode     string
	role     Role
	joinedAt time.Time
	deadline time.Time
	outcome  chan Outcome
}

// opKind 用 uint8 便于对齐与快速路由
type opKind uint8

const (
	opUnknown opKind = iota
	opEnqueue
	opCancel
	opExpire
	opShutdown
)

// operation 进入命令通道的唯一载体；所有状态变更都走这里
type operation struct {
	kind     opKind
	tk       *ticket   // opEnqueue
	id       string    // opCancel / opExpire
	deadline time.Time // opExpire：登记时的截止时间
	errc     chan error
	okc      chan bool
}
