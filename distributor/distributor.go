package distributor

import (
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"heat/model"
)

var (
	ErrAborted        = errors.New("batch aborted by coordinator")
	ErrInvalidWorkers = errors.New("worker count must be positive")
)

// ChunkRunner 计算一个本地 chunk，结果与输入下标一一对应
type ChunkRunner interface {
	RunChunk(temps []float64) []float64
}

// Source 批次输入，只有 coordinator 使用
type Source interface {
	Load() ([]float64, error)
}

// Sink 批次输出，只有 coordinator 使用
type Sink interface {
	Store(results []float64) error
}

// Worker 所有 worker 都具备的能力
type Worker interface {
	Rank() int
	RunLocalChunk() error
}

// Coordinator 唯一持有完整批次的 worker
type Coordinator interface {
	Worker
	LoadBatch() error
	StoreResults() error
}

type worker struct {
	ep     *Endpoint
	runner ChunkRunner

	// 仅 coordinator 使用
	count   int
	batch   []float64
	results []float64
}

func NewWorker(ep *Endpoint, runner ChunkRunner) Worker {
	return &worker{ep: ep, runner: runner}
}

func (w *worker) Rank() int {
	return w.ep.Rank()
}

// RunLocalChunk 广播 -> 分发 -> 计算 -> 收集
// 收到 -1 时直接返回 ErrAborted，不再参与后续集合操作
func (w *worker) RunLocalChunk() error {
	m := w.ep.Bcast(w.count)
	if m < 0 {
		return ErrAborted
	}
	chunks := Partition(m, w.ep.Size())
	local := w.ep.Scatterv(w.batch, chunks)

	start := time.Now()
	results := w.runner.RunChunk(local)
	log.WithFields(log.Fields{
		"rank":   w.Rank(),
		"offset": chunks[w.Rank()].Offset,
		"count":  len(local),
		"cost":   time.Since(start),
	}).Debug("local chunk finished")

	return w.ep.Gatherv(results, w.results, chunks)
}

type coordinator struct {
	*worker
	source Source
	sink   Sink
}

func NewCoordinator(ep *Endpoint, runner ChunkRunner, source Source, sink Sink) Coordinator {
	if !ep.IsRoot() {
		panic(fmt.Sprintf("coordinator must be rank %d, got %d", Root, ep.Rank()))
	}
	return &coordinator{
		worker: &worker{ep: ep, runner: runner, count: model.InvalidCount},
		source: source,
		sink:   sink,
	}
}

// LoadBatch 失败时 count 保持 -1，随后的 RunLocalChunk 会通知所有 worker 退出
func (c *coordinator) LoadBatch() error {
	batch, err := c.source.Load()
	if err != nil {
		c.count = model.InvalidCount
		c.batch, c.results = nil, nil
		return err
	}
	c.count = len(batch)
	c.batch = batch
	c.results = make([]float64, len(batch))
	log.WithFields(log.Fields{
		"count":   c.count,
		"workers": c.ep.Size(),
	}).Info("batch loaded")
	return nil
}

func (c *coordinator) StoreResults() error {
	if c.count < 0 {
		return ErrAborted
	}
	return c.sink.Store(c.results)
}

// Run 启动 workers 个 worker 完成一次批量计算
// coordinator 的错误优先返回；其他 worker 收到 -1 时正常退出
func Run(workers int, source Source, sink Sink, runner ChunkRunner) error {
	if workers < 1 {
		return ErrInvalidWorkers
	}
	comm := NewComm(workers)
	start := time.Now()

	var g errgroup.Group
	coord := NewCoordinator(comm.Endpoint(Root), runner, source, sink)
	g.Go(func() error {
		if err := coord.LoadBatch(); err != nil {
			_ = coord.RunLocalChunk()
			return fmt.Errorf("load batch: %w", err)
		}
		if err := coord.RunLocalChunk(); err != nil {
			return err
		}
		if err := coord.StoreResults(); err != nil {
			return fmt.Errorf("store results: %w", err)
		}
		return nil
	})
	for r := 1; r < workers; r++ {
		w := NewWorker(comm.Endpoint(r), runner)
		g.Go(func() error {
			err := w.RunLocalChunk()
			if errors.Is(err, ErrAborted) {
				log.WithField("rank", w.Rank()).Debug("worker exits, batch aborted")
				return nil
			}
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"workers": workers,
		"cost":    time.Since(start),
	}).Info("batch finished")
	return nil
}
