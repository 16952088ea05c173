package distributor

import (
	"fmt"
	"sync"

	"heat/model"
)

const Root = 0

// Comm 进程内的集合通信：广播、分发、收集
// 每个集合操作结束时所有 worker 都要经过同一个屏障，任何 worker 都不能提前离开
type Comm struct {
	size int

	counts  []chan int       // 广播，每个 worker 一个
	inboxes []chan []float64 // 分发，每个 worker 一个
	gather  chan piece       // 收集，只有 root 读

	barrier *barrier
}

type piece struct {
	rank int
	data []float64
}

func NewComm(size int) *Comm {
	c := &Comm{
		size:    size,
		counts:  make([]chan int, size),
		inboxes: make([]chan []float64, size),
		gather:  make(chan piece, size),
		barrier: newBarrier(size),
	}
	for r := 0; r < size; r++ {
		c.counts[r] = make(chan int, 1)
		c.inboxes[r] = make(chan []float64, 1)
	}
	return c
}

func (c *Comm) Size() int {
	return c.size
}

func (c *Comm) Endpoint(rank int) *Endpoint {
	if rank < 0 || rank >= c.size {
		panic(fmt.Sprintf("rank %d out of range [0, %d)", rank, c.size))
	}
	return &Endpoint{c: c, rank: rank}
}

// Endpoint 某个 worker 在 Comm 中的视图
type Endpoint struct {
	c    *Comm
	rank int
}

func (e *Endpoint) Rank() int {
	return e.rank
}

func (e *Endpoint) Size() int {
	return e.c.size
}

func (e *Endpoint) IsRoot() bool {
	return e.rank == Root
}

// Barrier 所有 worker 都到达后才返回
func (e *Endpoint) Barrier() {
	e.c.barrier.wait()
}

// Bcast root 的 v 广播给所有 worker，非 root 传入的 v 被忽略
func (e *Endpoint) Bcast(v int) int {
	if e.IsRoot() {
		for r := 0; r < e.c.size; r++ {
			if r != Root {
				e.c.counts[r] <- v
			}
		}
	} else {
		v = <-e.c.counts[e.rank]
	}
	e.Barrier()
	return v
}

// Scatterv root 按 chunks 把 send 切片发给每个 worker（包括自己）
// 每个 worker 拿到的是独立的拷贝
func (e *Endpoint) Scatterv(send []float64, chunks []model.Chunk) []float64 {
	var local []float64
	if e.IsRoot() {
		for _, ch := range chunks {
			part := make([]float64, ch.Count)
			copy(part, send[ch.Offset:ch.Offset+ch.Count])
			if ch.Rank == Root {
				local = part
				continue
			}
			e.c.inboxes[ch.Rank] <- part
		}
	} else {
		local = <-e.c.inboxes[e.rank]
	}
	e.Barrier()
	return local
}

// Gatherv 每个 worker 把 local 交给 root，root 按 chunks 中的 offset 放回 recv
// 不依赖到达顺序
func (e *Endpoint) Gatherv(local []float64, recv []float64, chunks []model.Chunk) error {
	var err error
	if e.IsRoot() {
		err = place(recv, chunks, piece{rank: Root, data: local})
		for i := 1; i < e.c.size; i++ {
			p := <-e.c.gather
			if perr := place(recv, chunks, p); perr != nil && err == nil {
				err = perr
			}
		}
	} else {
		data := make([]float64, len(local))
		copy(data, local)
		e.c.gather <- piece{rank: e.rank, data: data}
	}
	e.Barrier()
	return err
}

func place(recv []float64, chunks []model.Chunk, p piece) error {
	ch := chunks[p.rank]
	if len(p.data) != ch.Count {
		return fmt.Errorf("rank %d returned %d results, expected %d", p.rank, len(p.data), ch.Count)
	}
	copy(recv[ch.Offset:ch.Offset+ch.Count], p.data)
	return nil
}

// 可重复使用的屏障
type barrier struct {
	mu      sync.Mutex
	cond    *sync.Cond
	n       int
	waiting int
	gen     int
}

func newBarrier(n int) *barrier {
	b := &barrier{n: n}
	b.cond = sync.NewCond(&b.mu)
	return b
}

func (b *barrier) wait() {
	b.mu.Lock()
	defer b.mu.Unlock()
	gen := b.gen
	b.waiting++
	if b.waiting == b.n {
		b.waiting = 0
		b.gen++
		b.cond.Broadcast()
		return
	}
	for gen == b.gen {
		b.cond.Wait()
	}
}
