package model

// 一次批量计算的输入参数
type Env struct {
	N       int `json:"n"`        // 网格边长
	MaxIter int `json:"max_iter"` // 迭代次数
	Workers int `json:"workers"`  // 参与计算的 worker 个数
}

// 单个 worker 分到的连续区间 [Offset, Offset+Count)
type Chunk struct {
	Rank   int `json:"rank"`
	Offset int `json:"offset"`
	Count  int `json:"count"`
}

// 前后端通信消息结构
type Msg struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

const (
	MsgSolve    = "solve"
	MsgSolved   = "solved"
	MsgConfig   = "config"
	MsgConfigOK = "configSet"
	MsgError    = "error"
)

// 计算请求
type SolveRequest struct {
	Env          Env       `json:"env"`
	Temperatures []float64 `json:"temperatures"`
}

// 计算结果
type SolveReply struct {
	Env     Env       `json:"env"`
	Axis    string    `json:"axis"`
	Results []float64 `json:"results"`
	Elapsed string    `json:"elapsed"`
}

// 当前配置
type ConfigReply struct {
	Workers       int    `json:"workers"`
	Threads       int    `json:"threads"`
	Axis          string `json:"axis"`
	GridThreshold int    `json:"grid_threshold"`
}
