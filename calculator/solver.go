package calculator

import (
	"time"

	log "github.com/sirupsen/logrus"
)

// Solve 单个实例的顺序计算：固定迭代 maxIter 次，返回中心点温度
func Solve(n, maxIter int, radTemp float64) float64 {
	f := NewField(n, radTemp)
	for iter := 0; iter < maxIter; iter++ {
		f.sweep(1, n-1)
		f.swap()
	}
	return f.Center()
}

// Solver 在一个实例内部按行并行计算
type Solver struct {
	n       int
	maxIter int
	e       *rowExecutor
}

// NewSolver threads <= 1 时退化为顺序计算，不启动 goroutine
func NewSolver(n, maxIter, threads int) *Solver {
	s := &Solver{
		n:       n,
		maxIter: maxIter,
	}
	if threads > 1 {
		s.e = newRowExecutor(threads)
	}
	return s
}

func (s *Solver) Solve(radTemp float64) float64 {
	if s.e == nil {
		return Solve(s.n, s.maxIter, radTemp)
	}
	f := NewField(s.n, radTemp)
	var cost time.Duration
	for iter := 0; iter < s.maxIter; iter++ {
		cost += s.e.dispatchTask(f, 1, s.n-1)
		f.swap()
	}
	log.WithFields(log.Fields{
		"n":       s.n,
		"threads": s.e.workers,
		"radTemp": radTemp,
		"cost":    cost,
	}).Debug("grid solved")
	return f.Center()
}

// Close 停止行 worker，之后不能再调用 Solve
func (s *Solver) Close() {
	if s.e != nil {
		s.e.close()
	}
}
