package calculator

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Axis 一个 worker 内部的并行方向，每次只选一个，避免嵌套并行
type Axis int

const (
	AxisAuto     Axis = iota
	AxisSerial        // 顺序计算
	AxisInstance      // 多个实例并行，每个实例顺序计算
	AxisGrid          // 实例顺序执行，单个网格内部按行并行
)

func (a Axis) String() string {
	switch a {
	case AxisSerial:
		return "serial"
	case AxisInstance:
		return "instance"
	case AxisGrid:
		return "grid"
	default:
		return "auto"
	}
}

func ParseAxis(s string) (Axis, error) {
	switch s {
	case "", "auto":
		return AxisAuto, nil
	case "serial":
		return AxisSerial, nil
	case "instance":
		return AxisInstance, nil
	case "grid":
		return AxisGrid, nil
	}
	return AxisAuto, fmt.Errorf("unknown axis %q", s)
}

// Scheduler 负责把本地 chunk 交给 Solve 计算
type Scheduler struct {
	n             int
	maxIter       int
	threads       int
	axis          Axis
	gridThreshold int
}

func NewScheduler(n, maxIter, threads int, axis Axis, gridThreshold int) *Scheduler {
	if threads < 1 {
		threads = 1
	}
	return &Scheduler{
		n:             n,
		maxIter:       maxIter,
		threads:       threads,
		axis:          axis,
		gridThreshold: gridThreshold,
	}
}

// Choose 根据本地任务数和网格大小选择并行方向
// 任务多、网格小 -> 实例并行；任务少、网格大 -> 网格内并行
func (s *Scheduler) Choose(count int) Axis {
	if count == 0 || s.threads == 1 {
		return AxisSerial
	}
	if s.axis != AxisAuto {
		return s.axis
	}
	if count >= s.threads {
		return AxisInstance
	}
	if s.n >= s.gridThreshold {
		return AxisGrid
	}
	if count > 1 {
		return AxisInstance
	}
	return AxisSerial
}

// Run 计算 temps 中每个温度，结果与输入下标一一对应
func (s *Scheduler) Run(temps []float64) ([]float64, Axis) {
	results := make([]float64, len(temps))
	axis := s.Choose(len(temps))
	start := time.Now()

	switch axis {
	case AxisInstance:
		var g errgroup.Group
		g.SetLimit(s.threads)
		for i := range temps {
			i := i
			g.Go(func() error {
				results[i] = Solve(s.n, s.maxIter, temps[i])
				return nil
			})
		}
		_ = g.Wait()
	default:
		c := s.calculator(axis)
		for i, t := range temps {
			results[i] = c.Solve(t)
		}
		c.Close()
	}

	log.WithFields(log.Fields{
		"axis":    axis.String(),
		"count":   len(temps),
		"n":       s.n,
		"threads": s.threads,
		"cost":    time.Since(start),
	}).Debug("chunk calculated")
	return results, axis
}

// calculator 顺序处理实例时使用的计算器，只有网格方向才启动行 worker
func (s *Scheduler) calculator(axis Axis) Calculator {
	if axis == AxisGrid {
		return NewSolver(s.n, s.maxIter, s.threads)
	}
	return NewSolver(s.n, s.maxIter, 1)
}
