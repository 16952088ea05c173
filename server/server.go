package server

import (
	"net/http"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"heat/calculator"
	"heat/model"
)

type Server struct {
	addr     string
	upgrader websocket.Upgrader
	cfg      calculator.Config
}

// NewUpgrader allowAnyOrigin 为 false 时使用 websocket 默认的同源检查
func NewUpgrader(allowAnyOrigin bool) websocket.Upgrader {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
	if allowAnyOrigin {
		upgrader.CheckOrigin = func(r *http.Request) bool {
			return true
		}
	}
	return upgrader
}

func NewServer(addr string, upgrader websocket.Upgrader, cfg calculator.Config) *Server {
	return &Server{
		addr:     addr,
		upgrader: upgrader,
		cfg:      cfg,
	}
}

// serveWs handles websocket requests from the peer.
func (s *Server) serveWs(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithField("err", err).Warn("upgrade failed")
		return
	}
	defer conn.Close()

	hub := NewHub(s.cfg)
	hub.conn = conn
	done := make(chan struct{})
	go hub.handleRequest()
	go func() {
		hub.handleResponse()
		close(done)
	}()

	for {
		var msg model.Msg
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.WithField("err", err).Warn("read failed")
			}
			break
		}
		hub.msg <- msg
	}
	close(hub.msg)
	<-done
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.serveWs)
	return mux
}

func (s *Server) Serve() error {
	log.WithField("addr", s.addr).Info("server started")
	return http.ListenAndServe(s.addr, s.Handler())
}
