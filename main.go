package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"

	"heat/batch"
	"heat/calculator"
	"heat/distributor"
	"heat/server"
)

const usage = "Usage: heat [flags] <N> <maxIter> <input_file> <output_file>\n       heat [flags] -serve"

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

func run(args []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("heat", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, usage)
		fs.PrintDefaults()
	}
	configPath := fs.String("config", calculator.DefaultConfigPath, "path to the ini config file")
	workers := fs.Int("workers", 0, "number of workers, 0 uses the config value")
	threads := fs.Int("threads", 0, "threads per worker, 0 uses the config value")
	axis := fs.String("axis", "", "parallel axis: auto, serial, instance or grid")
	report := fs.String("report", "", "write a YAML run report to this path")
	serve := fs.Bool("serve", false, "start the websocket server instead of running a batch")
	addr := fs.String("addr", "", "websocket listen address, empty uses the config value")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	cfg := calculator.LoadConfig(*configPath)
	if *workers > 0 {
		cfg.Workers = *workers
	}
	if *threads > 0 {
		cfg.Threads = *threads
	}
	if *axis != "" {
		cfg.Axis = *axis
	}
	if *addr != "" {
		cfg.Addr = *addr
	}
	initLogger(cfg.LogLevel)

	if *serve {
		s := server.NewServer(cfg.Addr, server.NewUpgrader(cfg.AllowAnyOrigin), cfg)
		if err := s.Serve(); err != nil {
			log.WithField("err", err).Error("server stopped")
			return 1
		}
		return 0
	}

	if fs.NArg() != 4 {
		fs.Usage()
		return 1
	}
	n, errN := strconv.Atoi(fs.Arg(0))
	maxIter, errIter := strconv.Atoi(fs.Arg(1))
	if errN != nil || errIter != nil || n < 1 || maxIter < 0 {
		fmt.Fprintln(stderr, "N must be a positive integer and maxIter a non-negative integer")
		fs.Usage()
		return 1
	}
	parsedAxis, err := calculator.ParseAxis(cfg.Axis)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	threadsPerWorker := cfg.ThreadsPerWorker()
	driver := batch.NewDriver(calculator.NewScheduler(n, maxIter, threadsPerWorker, parsedAxis, cfg.GridThreshold))
	source := batch.FileSource{Path: fs.Arg(2)}
	sink := &reportingSink{FileSink: batch.FileSink{Path: fs.Arg(3), Precision: cfg.Precision}}

	log.WithFields(log.Fields{
		"n":       n,
		"maxIter": maxIter,
		"workers": cfg.Workers,
		"threads": threadsPerWorker,
		"axis":    parsedAxis.String(),
	}).Info("start")
	start := time.Now()
	if err := distributor.Run(cfg.Workers, source, sink, driver); err != nil {
		log.WithField("err", err).Error("batch failed")
		return 1
	}

	if *report != "" {
		r := batch.NewReport(n, maxIter, cfg.Workers, threadsPerWorker, driver.Axes(), sink.results, time.Since(start))
		if err := r.Write(*report); err != nil {
			log.WithField("err", err).Error("write report failed")
			return 1
		}
	}
	return 0
}

// reportingSink 写文件的同时保留结果，用于生成报告
type reportingSink struct {
	batch.FileSink
	results []float64
}

func (s *reportingSink) Store(results []float64) error {
	s.results = results
	return s.FileSink.Store(results)
}

func initLogger(level string) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
}
