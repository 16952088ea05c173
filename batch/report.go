package batch

import (
	"os"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gopkg.in/yaml.v3"
)

// Report 一次批量计算的摘要
type Report struct {
	N       int            `yaml:"n"`
	MaxIter int            `yaml:"max_iter"`
	Workers int            `yaml:"workers"`
	Threads int            `yaml:"threads"`
	Axes    map[string]int `yaml:"axes"`
	Count   int            `yaml:"count"`
	Elapsed string         `yaml:"elapsed"`
	Summary *Summary       `yaml:"summary,omitempty"`
}

type Summary struct {
	Min  float64 `yaml:"min"`
	Max  float64 `yaml:"max"`
	Mean float64 `yaml:"mean"`
}

func NewReport(n, maxIter, workers, threads int, axes map[string]int, results []float64, elapsed time.Duration) Report {
	r := Report{
		N:       n,
		MaxIter: maxIter,
		Workers: workers,
		Threads: threads,
		Axes:    axes,
		Count:   len(results),
		Elapsed: elapsed.String(),
	}
	if len(results) > 0 {
		r.Summary = &Summary{
			Min:  floats.Min(results),
			Max:  floats.Max(results),
			Mean: stat.Mean(results, nil),
		}
	}
	return r
}

func (r Report) Write(path string) error {
	data, err := yaml.Marshal(&r)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
