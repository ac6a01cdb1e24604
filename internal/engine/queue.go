package engine

import "container/list"

// fifo 有序等待队列：尾部 O(1) 追加，按 ID O(1) 摘除（取消/超时不用扫描）
type fifo struct {
	ll    *list.List               // *ticket，队首最老
	index map[string]*list.Element // playerID -> 节点
}

func newFIFO() *fifo {
	return &fifo{
		ll:    list.New(),
		index: make(map[string]*list.Element),
	}
}

func (f *fifo) len() int { return f.ll.Len() }

func (f *fifo) has(id string) bool {
	_, ok := f.index[id]
	return ok
}

func (f *fifo) push(tk *ticket) {
	f.index[tk.id] = f.ll.PushBack(tk)
}

// pop 弹出等待最久的请求；空队列返回 nil
func (f *fifo) pop() *ticket {
	el := f.ll.Front()
	if el == nil {
		return nil
	}
	tk := el.Value.(*ticket)
	f.ll.Remove(el)
	delete(f.index, tk.id)
	return tk
}

// remove 按 ID 摘除；不在队列中返回 nil
func (f *fifo) remove(id string) *ticket {
	el, ok := f.index[id]
	if !ok {
		return nil
	}
	tk := el.Value.(*ticket)
	f.ll.Remove(el)
	delete(f.index, id)
	return tk
}

// modeQueue 一个玩法对应的两条等待队列
type modeQueue struct {
	mode  Mode
	hosts *fifo
	joins *fifo
}

func newModeQueue(mode Mode) *modeQueue {
	return &modeQueue{
		mode:  mode,
		hosts: newFIFO(),
		joins: newFIFO(),
	}
}

func (q *modeQueue) byRole(role Role) *fifo {
	if role == RoleHost {
		return q.hosts
	}
	return q.joins
}

// canForm 判断当前等待人数是否足够成一局
func (q *modeQueue) canForm() bool {
	return q.hosts.len() >= q.mode.Hosts && q.joins.len() >= q.mode.Joins
}

// take 按 FIFO 取出一局所需的全部请求；调用前必须保证 canForm
func (q *modeQueue) take() (hosts, joins []*ticket) {
	hosts = make([]*ticket, 0, q.mode.Hosts)
	joins = make([]*ticket, 0, q.mode.Joins)
	for i := 0; i < q.mode.Hosts; i++ {
		hosts = append(hosts, q.hosts.pop())
	}
	for i := 0; i < q.mode.Joins; i++ {
		joins = append(joins, q.joins.pop())
	}
	return hosts, joins
}
