package calculator

// calculator 的接口定义

type Calculator interface {
	// 计算一个散热器温度对应的中心点温度
	Solve(radTemp float64) float64

	// 释放计算资源
	Close()
}

var _ Calculator = (*Solver)(nil)
