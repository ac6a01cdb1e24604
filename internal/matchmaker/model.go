package matchmaker

// JoinRequest 前端提交的匹配请求
type JoinRequest struct {
	PlayerID   string `json:"playerId" binding:"required"`
	Mode       string `json:"mode" binding:"required"` // 例如 "1v1"、"2v2"、"6max"
	Role       string `json:"role" binding:"required"` // host / join
	TimeoutSec int    `json:"timeoutSec"`              // 0 表示用服务端默认
}

// JoinResponse 终态结果；state=matched 时带房间信息
type JoinResponse struct {
	State   string   `json:"state"`
	MatchID string   `json:"matchId,omitempty"`
	Peers   []string `json:"peers,omitempty"`
	Mode    string   `json:"mode"`
	Role    string   `json:"role"`
}

// CancelRequest 取消匹配
type CancelRequest struct {
	PlayerID string `json:"playerId" binding:"required"`
}
