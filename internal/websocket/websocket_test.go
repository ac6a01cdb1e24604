package websocket

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHubBroadcast(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Close()

	c1 := &Client{PlayerID: "P1", Send: make(chan OutgoingMessage, 1), Hub: hub}
	c2 := &Client{PlayerID: "P2", Send: make(chan OutgoingMessage, 1), Hub: hub}

	hub.register <- c1
	hub.register <- c2

	msg := OutgoingMessage{
		Event: "matched",
		Data:  map[string]interface{}{"matchId": "m-1"},
	}

	hub.BroadcastToPlayers([]string{"P1", "P2"}, msg)

	time.Sleep(20 * time.Millisecond)

	m1 := <-c1.Send
	m2 := <-c2.Send

	assert.Equal(t, "matched", m1.Event)
	assert.Equal(t, "matched", m2.Event)
}

func TestHubSendToPlayer(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Close()

	c1 := &Client{PlayerID: "P1", Send: make(chan OutgoingMessage, 1), Hub: hub}
	c2 := &Client{PlayerID: "P2", Send: make(chan OutgoingMessage, 1), Hub: hub}

	hub.register <- c1
	hub.register <- c2

	msg := OutgoingMessage{
		Event: "timed_out",
		Data:  map[string]interface{}{"mode": "1v1"},
	}

	hub.SendToPlayer("P1", msg)

	time.Sleep(20 * time.Millisecond)

	received := <-c1.Send
	assert.Equal(t, "timed_out", received.Event)

	// P2 什么都不该收到
	select {
	case <-c2.Send:
		assert.Fail(t, "P2 should NOT receive anything")
	default:
		// success
	}
}

func TestHubRegisterUnregister(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Close()

	c := &Client{
		PlayerID: "P1",
		Send:     make(chan OutgoingMessage, 1),
		Hub:      hub,
	}

	hub.register <- c
	time.Sleep(10 * time.Millisecond)

	hub.mu.RLock()
	_, ok := hub.clients["P1"]
	hub.mu.RUnlock()
	if !ok {
		t.Fatalf("client should be registered")
	}

	hub.unregister <- c
	time.Sleep(10 * time.Millisecond)

	hub.mu.RLock()
	_, ok = hub.clients["P1"]
	hub.mu.RUnlock()
	if ok {
		t.Fatalf("client should be removed after unregister")
	}
}

func TestHubIncomingCallback(t *testing.T) {
	hub := NewHub()

	got := make(chan IncomingMessage, 1)
	hub.OnIncoming = func(msg IncomingMessage) { got <- msg }

	go hub.Run()
	defer hub.Close()

	hub.incoming <- IncomingMessage{From: "P1", Event: "cancel"}

	select {
	case msg := <-got:
		assert.Equal(t, "P1", msg.From)
		assert.Equal(t, "cancel", msg.Event)
	case <-time.After(time.Second):
		t.Fatal("OnIncoming never fired")
	}
}

func TestHubSlowClientDropped(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Close()

	// 缓冲 1，塞满之后的广播应直接丢弃而不是卡死 Hub
	c := &Client{PlayerID: "P1", Send: make(chan OutgoingMessage, 1), Hub: hub}
	hub.register <- c

	msg := OutgoingMessage{Event: "matched"}
	hub.BroadcastToPlayers([]string{"P1"}, msg)
	hub.BroadcastToPlayers([]string{"P1"}, msg)
	hub.BroadcastToPlayers([]string{"P1"}, msg)

	time.Sleep(20 * time.Millisecond)

	// Hub 仍然存活
	hub.SendToPlayer("P1", OutgoingMessage{Event: "still_alive"})
	assert.Equal(t, "matched", (<-c.Send).Event)
}

func BenchmarkHubBroadcast(b *testing.B) {
	hub := NewHub()
	go hub.Run()
	defer hub.Close()

	c1 := &Client{PlayerID: "P1", Send: make(chan OutgoingMessage, 1024), Hub: hub}
	c2 := &Client{PlayerID: "P2", Send: make(chan OutgoingMessage, 1024), Hub: hub}

	// 所有 Send 都必须有人接收，否则堆积后消息被丢
	go func() {
		for range c1.Send {
		}
	}()
	go func() {
		for range c2.Send {
		}
	}()

	hub.register <- c1
	hub.register <- c2

	b.ResetTimer()
	msg := OutgoingMessage{Event: "bench", Data: nil}

	for i := 0; i < b.N; i++ {
		hub.BroadcastToPlayers([]string{"P1", "P2"}, msg)
	}

	time.Sleep(50 * time.Millisecond)
}
