package server

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"heat/batch"
	"heat/calculator"
	"heat/model"
)

// 单次请求的上限，避免一个连接耗尽内存或 goroutine
const (
	maxGridSize  = 4096
	maxWorkers   = 64
	maxBatchSize = 1 << 20
)

// Hub 负责一个连接上的请求与响应
type Hub struct {
	cfg  calculator.Config
	conn *websocket.Conn
	// request
	msg chan model.Msg
	// response
	replies chan model.Msg
}

func NewHub(cfg calculator.Config) *Hub {
	return &Hub{
		cfg:     cfg,
		msg:     make(chan model.Msg, 10),
		replies: make(chan model.Msg, 10),
	}
}

// handleResponse 是连接上唯一的写者
func (h *Hub) handleResponse() {
	for reply := range h.replies {
		if err := h.conn.WriteJSON(&reply); err != nil {
			log.WithField("err", err).Warn("write reply failed")
		}
	}
}

// handleRequest 在 msg 关闭后关闭 replies
func (h *Hub) handleRequest() {
	for msg := range h.msg {
		h.replies <- h.dispatch(msg)
	}
	close(h.replies)
}

func (h *Hub) dispatch(msg model.Msg) model.Msg {
	switch msg.Type {
	case model.MsgSolve:
		return h.solve(msg.Content)
	case model.MsgConfig:
		data, _ := json.Marshal(model.ConfigReply{
			Workers:       h.cfg.Workers,
			Threads:       h.cfg.ThreadsPerWorker(),
			Axis:          h.cfg.Axis,
			GridThreshold: h.cfg.GridThreshold,
		})
		return model.Msg{Type: model.MsgConfigOK, Content: string(data)}
	default:
		log.WithField("type", msg.Type).Warn("no such type")
		return errorMsg(fmt.Errorf("no such type: %q", msg.Type))
	}
}

func (h *Hub) solve(content string) model.Msg {
	var req model.SolveRequest
	if err := json.Unmarshal([]byte(content), &req); err != nil {
		return errorMsg(err)
	}
	env := req.Env
	if env.N < 1 || env.N > maxGridSize {
		return errorMsg(fmt.Errorf("n must be in [1, %d], got %d", maxGridSize, env.N))
	}
	if env.MaxIter < 0 {
		return errorMsg(fmt.Errorf("max_iter must be non-negative, got %d", env.MaxIter))
	}
	if env.Workers < 0 || env.Workers > maxWorkers {
		return errorMsg(fmt.Errorf("workers must be in [0, %d], got %d", maxWorkers, env.Workers))
	}
	if len(req.Temperatures) > maxBatchSize {
		return errorMsg(fmt.Errorf("batch size must be at most %d, got %d", maxBatchSize, len(req.Temperatures)))
	}
	cfg := h.cfg
	if env.Workers > 0 {
		cfg.Workers = env.Workers
	}
	// worker 数不超过批次大小
	cfg.Workers = min(cfg.Workers, max(1, len(req.Temperatures)))
	env.Workers = cfg.Workers

	start := time.Now()
	results, driver, err := batch.Solve(cfg, env.N, env.MaxIter, req.Temperatures)
	if err != nil {
		return errorMsg(err)
	}
	elapsed := time.Since(start)
	log.WithFields(log.Fields{
		"n":       env.N,
		"maxIter": env.MaxIter,
		"workers": env.Workers,
		"count":   len(results),
		"cost":    elapsed,
	}).Info("solve request finished")

	data, err := json.Marshal(model.SolveReply{
		Env:     env,
		Axis:    axisSummary(driver.Axes()),
		Results: results,
		Elapsed: elapsed.String(),
	})
	if err != nil {
		return errorMsg(err)
	}
	return model.Msg{Type: model.MsgSolved, Content: string(data)}
}

// 所有 worker 选择同一方向时直接返回该方向，否则返回 mixed
func axisSummary(axes map[string]int) string {
	if len(axes) == 1 {
		for k := range axes {
			return k
		}
	}
	return "mixed"
}

func errorMsg(err error) model.Msg {
	return model.Msg{Type: model.MsgError, Content: err.Error()}
}
