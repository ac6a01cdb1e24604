package engine

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// 默认配置（参考单核压测：单写循环每秒可处理数万操作，瓶颈在序列化点）
const (
	defaultQueueCapacity   = 256
	defaultCommandBuffer   = 1024
	defaultSweepInterval   = 200 * time.Millisecond
	defaultDeadline        = 30 * time.Second
	defaultShutdownTimeout = 5 * time.Second
)

// Config 引擎构造参数
type Config struct {
	Modes           map[string]Mode
	QueueCapacity   int           // 每个玩法每个角色的队列上限
	CommandBuffer   int           // 命令通道容量（背压阈值）
	SweepInterval   time.Duration // 超时扫描周期
	DefaultDeadline time.Duration // 请求未指定 deadline 时的默认值
}

func (c *Config) fillDefaults() {
	if c.QueueCapacity <= 0 {
		c.QueueCapacity = defaultQueueCapacity
	}
	if c.CommandBuffer <= 0 {
		c.CommandBuffer = defaultCommandBuffer
	}
	if c.SweepInterval <= 0 {
		c.SweepInterval = defaultSweepInterval
	}
	if c.DefaultDeadline <= 0 {
		c.DefaultDeadline = defaultDeadline
	}
}

// Engine 匹配引擎：单写 actor。
// 所有并发调用方只往命令通道投递操作，唯一的 run 协程串行消费并
// 独占修改队列注册表 / 统计 / 超时索引，匹配逻辑因此完全无锁。
type Engine struct {
	cfg    Config
	queues map[string]*modeQueue // modeID -> 等待队列（仅 run 协程访问）
	wait   map[string]*ticket    // playerID -> 等待中的凭据（仅 run 协程访问）
	ops    chan operation
	sw     *sweeper
	stats  *Stats

	// OnMatch 成局回调（每局单独协程触发，不会阻塞 Processor）
	OnMatch func(*Match)

	started  atomic.Bool
	closed   atomic.Bool
	shutdown sync.Once
	loopDone chan struct{}
}

// New 根据配置构造引擎；玩法表在此固化并校验，运行期不再变化
func New(cfg Config) (*Engine, error) {
	cfg.fillDefaults()
	for name, mode := range cfg.Modes {
		if mode.Hosts < 0 || mode.Joins < 0 {
			return nil, fmt.Errorf("engine: mode %q has negative seats (hosts=%d joins=%d)",
				name, mode.Hosts, mode.Joins)
		}
		if mode.Hosts == 0 && mode.Joins == 0 {
			// 双零座位会让 canForm 永真，单写循环将陷入不断产出空局的死循环
			return nil, fmt.Errorf("engine: mode %q needs at least one seat", name)
		}
	}

	e := &Engine{
		cfg:      cfg,
		queues:   make(map[string]*modeQueue, len(cfg.Modes)),
		wait:     make(map[string]*ticket),
		ops:      make(chan operation, cfg.CommandBuffer),
		stats:    newStats(cfg.Modes),
		loopDone: make(chan struct{}),
	}
	for name, mode := range cfg.Modes {
		e.queues[name] = newModeQueue(mode)
	}
	e.sw = newSweeper(cfg.SweepInterval, e.submitExpire)
	return e, nil
}

// Start 启动单写循环与超时扫描
func (e *Engine) Start() error {
	if !e.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}
	go e.run()
	go e.sw.run()
	log.Printf("engine started (modes=%d buffer=%d sweep=%s)",
		len(e.queues), e.cfg.CommandBuffer, e.cfg.SweepInterval)
	return nil
}

// Close 停止接收新操作，排空在途操作，给所有等待中的请求发 closed 终态。
// ctx 控制等待排空的上限时间。
func (e *Engine) Close(ctx context.Context) error {
	if !e.started.Load() {
		return ErrNotStarted
	}
	var err error
	e.shutdown.Do(func() {
		e.closed.Store(true)
		e.sw.stop()
		// shutdown 哨兵走阻塞发送：Processor 仍在消费，不会卡死
		e.ops <- operation{kind: opShutdown}
		select {
		case <-e.loopDone:
		case <-ctx.Done():
			err = ctx.Err()
		}
	})
	return err
}

// Enqueue 入队并等待终态。返回值语义：
//   - 同步错误：ErrInvalidMode / ErrAlreadyQueued / ErrQueueFull / ErrBusy / ErrClosed
//   - 正常终态：Matched / TimedOut / Cancelled / Closed（走 Outcome，不算错误）
//   - ctx 到期只放弃本次等待，引擎侧请求仍然存活，需调用方自行 Cancel
func (e *Engine) Enqueue(ctx context.Context, req Request) (Outcome, error) {
	if req.Role != RoleHost && req.Role != RoleJoin {
		return Outcome{}, ErrInvalidRole
	}
	// 玩法表不可变，提交前即可校验
	if _, ok := e.queues[req.Mode]; !ok {
		return Outcome{}, ErrInvalidMode
	}

	d := req.Deadline
	if d <= 0 {
		d = e.cfg.DefaultDeadline
	}
	now := time.Now()
	tk := &ticket{
		id:       req.PlayerID,
		mode:     req.Mode,
		role:     req.Role,
		joinedAt: now,
		deadline: now.Add(d),
		outcome:  make(chan Outcome, 1),
	}

	errc := make(chan error, 1)
	if err := e.submit(operation{kind: opEnqueue, tk: tk, errc: errc}); err != nil {
		return Outcome{}, err
	}

	// 第一段：等 Processor 的受理回执（重复 / 满员在这里同步失败）。
	// closed 检查与入通道之间存在窗口：操作可能落在已退出的循环后面，
	// 因此同时监听 loopDone，循环退出后以已有回执为准，否则按关停处理
	select {
	case err := <-errc:
		if err != nil {
			return Outcome{}, err
		}
	case <-ctx.Done():
		return Outcome{}, ctx.Err()
	case <-e.loopDone:
		select {
		case err := <-errc:
			if err != nil {
				return Outcome{}, err
			}
		default:
			return Outcome{}, ErrClosed
		}
	}

	// 第二段：等终态
	select {
	case out := <-tk.outcome:
		return out, nil
	case <-ctx.Done():
		return Outcome{}, ctx.Err()
	}
}

// Cancel 取消等待中的请求；已成局/已超时/不存在时返回 false（幂等）
func (e *Engine) Cancel(playerID string) bool {
	okc := make(chan bool, 1)
	if err := e.submit(operation{kind: opCancel, id: playerID, okc: okc}); err != nil {
		return false
	}
	select {
	case ok := <-okc:
		return ok
	case <-e.loopDone:
		// 关停排空后才落入缓冲的操作不会再有人应答
		select {
		case ok := <-okc:
			return ok
		default:
			return false
		}
	}
}

// Stats 返回当前统计快照；读原子计数器，不经过命令通道
func (e *Engine) Stats() Snapshot {
	return e.stats.snapshot()
}

// submit 带背压的投递：通道满立即失败，不做无界排队
func (e *Engine) submit(op operation) error {
	if !e.started.Load() {
		return ErrNotStarted
	}
	if e.closed.Load() {
		return ErrClosed
	}
	select {
	case e.ops <- op:
		return nil
	default:
		return ErrBusy
	}
}

// submitExpire 超时扫描器专用入口
func (e *Engine) submitExpire(id string, deadline time.Time) error {
	return e.submit(operation{kind: opExpire, id: id, deadline: deadline})
}

//-------------------------------------------------------
// 以下全部只在 run 协程内执行
//-------------------------------------------------------

func (e *Engine) run() {
	defer close(e.loopDone)
	for op := range e.ops {
		if op.kind == opShutdown {
			e.drainAndClose()
			return
		}
		e.apply(op)
	}
}

func (e *Engine) apply(op operation) {
	switch op.kind {
	case opEnqueue:
		e.handleEnqueue(op.tk, op.errc)
	case opCancel:
		op.okc <- e.handleCancel(op.id)
	case opExpire:
		e.handleExpire(op.id, time.Now())
	}
}

func (e *Engine) handleEnqueue(tk *ticket, errc chan error) {
	if _, dup := e.wait[tk.id]; dup {
		errc <- ErrAlreadyQueued
		return
	}
	q := e.queues[tk.mode]
	f := q.byRole(tk.role)
	if f.len() >= e.cfg.QueueCapacity {
		errc <- ErrQueueFull
		return
	}

	// 受理：先进队再尝试成局，成局与出队在同一处理步内完成，
	// 外界观察不到半成的局
	f.push(tk)
	e.wait[tk.id] = tk
	e.stats.enter(tk.mode, tk.role)
	errc <- nil

	e.formMatches(tk.mode, q)
	// 未成局才需要超时登记；成局时本凭据已是终态
	if _, waiting := e.wait[tk.id]; waiting {
		e.sw.track(tk.id, tk.deadline)
	}
}

// formMatches 尽可能成局（积压场景下一次入队可能触发多局）
func (e *Engine) formMatches(mode string, q *modeQueue) {
	for q.canForm() {
		hosts, joins := q.take()
		m := &Match{
			ID:        uuid.NewString(),
			Mode:      mode,
			Hosts:     ids(hosts),
			Joins:     ids(joins),
			CreatedAt: time.Now(),
		}
		peers := m.Players()
		out := Outcome{State: OutcomeMatched, MatchID: m.ID, Peers: peers}
		for _, t := range append(hosts, joins...) {
			delete(e.wait, t.id)
			e.stats.leave(t.mode, t.role)
			e.deliver(t, out)
		}
		e.stats.matched.Add(1)

		if e.OnMatch != nil {
			go e.OnMatch(m)
		}
	}
}

func (e *Engine) handleCancel(id string) bool {
	tk, ok := e.wait[id]
	if !ok {
		return false // 已终态或从未入队，幂等返回
	}
	e.evict(tk)
	e.stats.cancelled.Add(1)
	e.deliver(tk, Outcome{State: OutcomeCancelled})
	return true
}

// handleExpire 只有仍在等待且确实过期才生效；
// 已成局/已取消的请求在这里自然变成 no-op，不会与成局竞争
func (e *Engine) handleExpire(id string, now time.Time) {
	tk, ok := e.wait[id]
	if !ok {
		return
	}
	if now.Before(tk.deadline) {
		// 同名玩家重新入队后残留的旧索引条目：新 deadline 在入队时
		// 已经登记过，直接丢弃即可，避免索引中堆积重复条目
		return
	}
	e.evict(tk)
	e.stats.timedOut.Add(1)
	e.deliver(tk, Outcome{State: OutcomeTimedOut})
}

// evict 把凭据从队列与等待表中摘除
func (e *Engine) evict(tk *ticket) {
	e.queues[tk.mode].byRole(tk.role).remove(tk.id)
	delete(e.wait, tk.id)
	e.stats.leave(tk.mode, tk.role)
}

// deliver 一次性写入终态；通道 buffered(1) 且单写者，永不阻塞
func (e *Engine) deliver(tk *ticket, out Outcome) {
	select {
	case tk.outcome <- out:
	default:
		// 不变量被破坏才会走到这里（同一凭据二次写入）
		log.Printf("engine: duplicate outcome dropped player=%s state=%s", tk.id, out.State)
	}
}

// drainAndClose 排空缓冲中的在途操作，然后给所有等待者发 closed
func (e *Engine) drainAndClose() {
	for {
		select {
		case op := <-e.ops:
			switch op.kind {
			case opEnqueue:
				op.errc <- ErrClosed
			case opCancel:
				op.okc <- e.handleCancel(op.id)
			case opExpire:
				e.handleExpire(op.id, time.Now())
			}
		default:
			for _, tk := range e.wait {
				e.stats.leave(tk.mode, tk.role)
				e.deliver(tk, Outcome{State: OutcomeClosed})
			}
			e.wait = make(map[string]*ticket)
			for name, q := range e.queues {
				e.queues[name] = newModeQueue(q.mode)
			}
			log.Printf("engine closed")
			return
		}
	}
}

func ids(ts []*ticket) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.id
	}
	return out
}
