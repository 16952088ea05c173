package calculator

import (
	"sync"
	"time"
)

// 基于行切片的任务分配
// 一次 sweep 被切成若干行块交给常驻 worker，全部完成后才允许 swap
type rowExecutor struct {
	workers      int
	dispatchChan chan task
	done         sync.WaitGroup // 每次 sweep 的屏障
	closeOnce    sync.Once
}

type task struct {
	start int
	end   int
	f     *Field
}

func newRowExecutor(workers int) *rowExecutor {
	if workers < 1 {
		workers = 1
	}
	e := &rowExecutor{
		workers:      workers,
		dispatchChan: make(chan task, workers*2),
	}
	e.run()
	return e
}

func (e *rowExecutor) run() {
	for i := 0; i < e.workers; i++ {
		go func() {
			for t := range e.dispatchChan {
				t.f.sweep(t.start, t.end)
				e.done.Done()
			}
		}()
	}
}

// dispatchTask 把 [first, last) 行分给 worker，阻塞直到全部行块完成
func (e *rowExecutor) dispatchTask(f *Field, first, last int) time.Duration {
	start := time.Now()
	tasks := splitRows(first, last, e.workers*2)
	if len(tasks) == 0 {
		return time.Since(start)
	}
	e.done.Add(len(tasks))
	for _, t := range tasks {
		t.f = f
		e.dispatchChan <- t
	}
	e.done.Wait()
	return time.Since(start)
}

func (e *rowExecutor) close() {
	e.closeOnce.Do(func() {
		close(e.dispatchChan)
	})
}

// splitRows 把 [first, last) 切成至多 parts 个连续行块，块大小相差不超过 1
func splitRows(first, last, parts int) []task {
	total := last - first
	if total <= 0 {
		return nil
	}
	if parts > total {
		parts = total
	}
	taskLen, remainder := total/parts, total%parts
	tasks := make([]task, 0, parts)
	start := first
	for i := 0; i < parts; i++ {
		size := taskLen
		if i < remainder {
			size++
		}
		tasks = append(tasks, task{start: start, end: start + size})
		start += size
	}
	return tasks
}
