package calculator

import (
	"math"

	"heat/model"
)

// Grid 以行优先方式存放 N×N 温度，单块连续内存
type Grid struct {
	n     int
	cells []float64
}

func newGrid(n int) *Grid {
	return &Grid{
		n:     n,
		cells: make([]float64, n*n),
	}
}

func (g *Grid) Size() int {
	return g.n
}

func (g *Grid) At(i, j int) float64 {
	return g.cells[i*g.n+j]
}

func (g *Grid) row(i int) []float64 {
	return g.cells[i*g.n : (i+1)*g.n]
}

// Field 双缓冲温度场
// curr: 本轮写入; prev: 上一轮结果，本轮只读
type Field struct {
	n       int
	radTemp float64

	curr *Grid
	prev *Grid
}

// NewField 分配两块网格并按散热器规则初始化，两块内容相同
func NewField(n int, radTemp float64) *Field {
	if n < 1 {
		panic("grid size must be positive")
	}
	f := &Field{
		n:       n,
		radTemp: radTemp,
		curr:    newGrid(n),
		prev:    newGrid(n),
	}
	for i := 0; i < n; i++ {
		cr, pr := f.curr.row(i), f.prev.row(i)
		for j := 0; j < n; j++ {
			t := model.DefaultTemperature
			if IsRadiator(i, j, n) {
				t = radTemp
			}
			cr[j] = t
			pr[j] = t
		}
	}
	return f
}

// 散热器所在列区间
func radiatorColumns(n int) (int, int) {
	lo := math.Floor(float64(n-1) * model.RadiatorStart)
	hi := math.Ceil(float64(n-1) * model.RadiatorEnd)
	return int(lo), int(hi)
}

// IsRadiator 判断 (i, j) 是否为散热器单元
func IsRadiator(i, j, n int) bool {
	if i != n-1 {
		return false
	}
	lo, hi := radiatorColumns(n)
	return j >= lo && j <= hi
}

// sweep 更新内部行 [first, last) 与 [1, n-2] 的交集
// 散热器只在第 n-1 行，不在内部行范围内，因此内部单元都需要更新
// 只读 prev、只写 curr，不同行之间没有依赖，可以并发调用
func (f *Field) sweep(first, last int) {
	n := f.n
	if first < 1 {
		first = 1
	}
	if last > n-1 {
		last = n - 1
	}
	for i := first; i < last; i++ {
		up, mid, down := f.prev.row(i-1), f.prev.row(i), f.prev.row(i+1)
		out := f.curr.row(i)
		for j := 1; j < n-1; j++ {
			out[j] = (mid[j+1] + mid[j-1] + down[j] + up[j]) / 4.0
		}
	}
}

// swap 只交换指针
func (f *Field) swap() {
	f.curr, f.prev = f.prev, f.curr
}

// Latest 返回最近一次写入的网格
// 每轮写入后都会 swap，因此最新结果总在 prev 中
func (f *Field) Latest() *Grid {
	return f.prev
}

// Center 中心点温度
func (f *Field) Center() float64 {
	c := (f.n - 1) / 2
	return f.Latest().At(c, c)
}

func (f *Field) RadiatorTemperature() float64 {
	return f.radTemp
}
