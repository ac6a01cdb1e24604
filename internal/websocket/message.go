package websocket

// 推送事件：matched / timed_out / cancelled / closed / queue_stats
type OutgoingMessage struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// 客户端上行：目前支持 event = "cancel"
type IncomingMessage struct {
	From  string      `json:"from"`
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}
