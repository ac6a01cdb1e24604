package engine

import (
	"container/heap"
	"sync"
	"time"
)

// sweeper 周期性检查过期请求。它自己不碰队列：
// 到期的条目会以 ExpireIfStale 操作回投命令通道，由 Processor 统一裁决。
// 索引里可能残留已经成局/取消的条目，Processor 侧会把它们无害地丢弃。
type sweeper struct {
	interval time.Duration
	submit   func(id string, deadline time.Time) error

	mu sync.Mutex
	h  deadlineHeap

	done chan struct{}
}

func newSweeper(interval time.Duration, submit func(string, time.Time) error) *sweeper {
	return &sweeper{
		interval: interval,
		submit:   submit,
		done:     make(chan struct{}),
	}
}

// track 登记一个等待中的请求（由 Processor 在入队时调用）
func (s *sweeper) track(id string, deadline time.Time) {
	s.mu.Lock()
	heap.Push(&s.h, deadlineEntry{id: id, at: deadline})
	s.mu.Unlock()
}

func (s *sweeper) run() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			s.sweep(now)
		case <-s.done:
			return
		}
	}
}

// sweep 弹出所有已过期的条目并逐个投递 ExpireIfStale
func (s *sweeper) sweep(now time.Time) {
	expired := s.popExpired(now)
	for _, e := range expired {
		if err := s.submit(e.id, e.at); err != nil {
			// 命令通道饱和时不丢条目，下个 tick 重试
			s.track(e.id, e.at)
		}
	}
}

func (s *sweeper) popExpired(now time.Time) []deadlineEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	var expired []deadlineEntry
	for s.h.Len() > 0 && !s.h[0].at.After(now) {
		expired = append(expired, heap.Pop(&s.h).(deadlineEntry))
	}
	return expired
}

func (s *sweeper) stop() {
	close(s.done)
}

type deadlineEntry struct {
	id string
	at time.Time
}

// deadlineHeap 按截止时间排序的小顶堆
type deadlineHeap []deadlineEntry

func (h deadlineHeap) Len() int            { return len(h) }
func (h deadlineHeap) Less(i, j int) bool  { return h[i].at.Before(h[j].at) }
func (h deadlineHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *deadlineHeap) Push(x interface{}) { *h = append(*h, x.(deadlineEntry)) }
func (h *deadlineHeap) Pop() interface{} {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[:n-1]
	return e
}
