package model

// 网格参数
// 1. 散热器位于最后一行，列区间 [floor(0.3*(N-1)), ceil(0.7*(N-1))]
// 2. 其余单元初始温度为 DefaultTemperature
// 3. 结果取中心点 ((N-1)/2, (N-1)/2)

const (
	DefaultTemperature = 10.0

	RadiatorStart = 0.3
	RadiatorEnd   = 0.7

	// 计数为 -1 表示输入批次无效，所有 worker 收到后直接退出
	InvalidCount = -1
)
