package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"

	"heat/calculator"
	"heat/model"
)

func testConfig() calculator.Config {
	cfg := calculator.DefaultConfig()
	cfg.Workers = 2
	cfg.Threads = 2
	return cfg
}

func solveMsg(t *testing.T, req model.SolveRequest) model.Msg {
	t.Helper()
	data, err := json.Marshal(req)
	if err != nil {
		t.Fatal(err)
	}
	return model.Msg{Type: model.MsgSolve, Content: string(data)}
}

func TestHub_Solve(t *testing.T) {
	h := NewHub(testConfig())
	temps := []float64{100, 20, 60}
	reply := h.dispatch(solveMsg(t, model.SolveRequest{
		Env:          model.Env{N: 9, MaxIter: 50},
		Temperatures: temps,
	}))
	if reply.Type != model.MsgSolved {
		t.Fatalf("got %+v", reply)
	}
	var res model.SolveReply
	if err := json.Unmarshal([]byte(reply.Content), &res); err != nil {
		t.Fatal(err)
	}
	if res.Env.Workers != 2 || len(res.Results) != len(temps) {
		t.Fatalf("got %+v", res)
	}
	for i, temp := range temps {
		if want := calculator.Solve(9, 50, temp); res.Results[i] != want {
			t.Errorf("result %d = %v, want %v", i, res.Results[i], want)
		}
	}
}

func TestHub_SolveInvalid(t *testing.T) {
	h := NewHub(testConfig())
	cases := []model.Msg{
		{Type: model.MsgSolve, Content: "{"},
		solveMsg(t, model.SolveRequest{Env: model.Env{N: 0, MaxIter: 1}}),
		solveMsg(t, model.SolveRequest{Env: model.Env{N: maxGridSize + 1, MaxIter: 1}}),
		solveMsg(t, model.SolveRequest{Env: model.Env{N: 5, MaxIter: -1}}),
		solveMsg(t, model.SolveRequest{Env: model.Env{N: 5, MaxIter: 1, Workers: maxWorkers + 1}, Temperatures: []float64{1}}),
		solveMsg(t, model.SolveRequest{Env: model.Env{N: 5, MaxIter: 1, Workers: -1}, Temperatures: []float64{1}}),
		solveMsg(t, model.SolveRequest{Env: model.Env{N: 1, MaxIter: 0}, Temperatures: make([]float64, maxBatchSize+1)}),
		{Type: "stop"},
	}
	for i, msg := range cases {
		if reply := h.dispatch(msg); reply.Type != model.MsgError {
			t.Errorf("case %d: got %+v", i, reply)
		}
	}
}

// 请求的 worker 数超过批次大小时按批次大小截断
func TestHub_SolveClampsWorkers(t *testing.T) {
	h := NewHub(testConfig())
	for _, c := range []struct {
		workers int
		temps   []float64
		want    int
	}{
		{maxWorkers, []float64{30, 40}, 2},
		{0, []float64{30}, 1},
		{0, nil, 1},
		{3, []float64{1, 2, 3, 4}, 3},
	} {
		reply := h.dispatch(solveMsg(t, model.SolveRequest{
			Env:          model.Env{N: 5, MaxIter: 10, Workers: c.workers},
			Temperatures: c.temps,
		}))
		if reply.Type != model.MsgSolved {
			t.Fatalf("workers %d: got %+v", c.workers, reply)
		}
		var res model.SolveReply
		if err := json.Unmarshal([]byte(reply.Content), &res); err != nil {
			t.Fatal(err)
		}
		if res.Env.Workers != c.want || len(res.Results) != len(c.temps) {
			t.Errorf("workers %d: got %+v, want %d workers", c.workers, res.Env, c.want)
		}
	}
}

func TestHub_Config(t *testing.T) {
	h := NewHub(testConfig())
	reply := h.dispatch(model.Msg{Type: model.MsgConfig})
	var cfg model.ConfigReply
	if err := json.Unmarshal([]byte(reply.Content), &cfg); err != nil {
		t.Fatal(err)
	}
	if reply.Type != model.MsgConfigOK || cfg.Workers != 2 || cfg.Threads != 2 {
		t.Errorf("got %+v", cfg)
	}
}

func TestServer_Websocket(t *testing.T) {
	s := NewServer(":0", websocket.Upgrader{}, testConfig())
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(solveMsg(t, model.SolveRequest{
		Env:          model.Env{N: 5, MaxIter: 0, Workers: 1},
		Temperatures: []float64{100},
	})); err != nil {
		t.Fatal(err)
	}
	var reply model.Msg
	if err := conn.ReadJSON(&reply); err != nil {
		t.Fatal(err)
	}
	var res model.SolveReply
	if err := json.Unmarshal([]byte(reply.Content), &res); err != nil {
		t.Fatal(err)
	}
	if len(res.Results) != 1 || res.Results[0] != model.DefaultTemperature {
		t.Errorf("got %+v", res)
	}

	if err := conn.WriteJSON(model.Msg{Type: "unknown"}); err != nil {
		t.Fatal(err)
	}
	if err := conn.ReadJSON(&reply); err != nil {
		t.Fatal(err)
	}
	if reply.Type != model.MsgError {
		t.Errorf("got %+v", reply)
	}
}

// 浏览器前端通常与服务不同源
func TestServer_CrossOrigin(t *testing.T) {
	for _, c := range []struct {
		allow bool
		ok    bool
	}{
		{true, true},
		{false, false},
	} {
		s := NewServer(":0", NewUpgrader(c.allow), testConfig())
		ts := httptest.NewServer(s.Handler())

		url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
		header := http.Header{"Origin": []string{"http://frontend.example:8080"}}
		conn, resp, err := websocket.DefaultDialer.Dial(url, header)
		if (err == nil) != c.ok {
			t.Errorf("allow %v: dial err = %v", c.allow, err)
		}
		if err == nil {
			conn.Close()
		} else if resp == nil || resp.StatusCode != http.StatusForbidden {
			t.Errorf("allow %v: got response %+v", c.allow, resp)
		}
		ts.Close()
	}
}
