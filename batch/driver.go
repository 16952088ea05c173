package batch

import (
	"sync"

	"heat/calculator"
	"heat/distributor"
)

// Driver 每个 worker 的本地计算：把 chunk 交给 Scheduler
type Driver struct {
	scheduler *calculator.Scheduler

	mu   sync.Mutex
	axes map[string]int // 各并行方向被选中的次数
}

var _ distributor.ChunkRunner = (*Driver)(nil)

func NewDriver(scheduler *calculator.Scheduler) *Driver {
	return &Driver{
		scheduler: scheduler,
		axes:      make(map[string]int),
	}
}

func (d *Driver) RunChunk(temps []float64) []float64 {
	results, axis := d.scheduler.Run(temps)
	d.mu.Lock()
	d.axes[axis.String()]++
	d.mu.Unlock()
	return results
}

// Axes 返回各并行方向被使用的次数
func (d *Driver) Axes() map[string]int {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make(map[string]int, len(d.axes))
	for k, v := range d.axes {
		out[k] = v
	}
	return out
}

// Solve 用 cfg 的并行配置计算一个批次，供内存调用方使用（server、测试）
func Solve(cfg calculator.Config, n, maxIter int, temps []float64) ([]float64, *Driver, error) {
	axis, err := calculator.ParseAxis(cfg.Axis)
	if err != nil {
		return nil, nil, err
	}
	driver := NewDriver(calculator.NewScheduler(n, maxIter, cfg.ThreadsPerWorker(), axis, cfg.GridThreshold))
	sink := &MemorySink{}
	if err := distributor.Run(cfg.Workers, MemorySource{Temperatures: temps}, sink, driver); err != nil {
		return nil, driver, err
	}
	return sink.Results, driver, nil
}
