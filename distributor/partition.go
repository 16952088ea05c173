package distributor

import "heat/model"

// Partition 把长度为 m 的批次切给 w 个 worker
// worker r 分到 m/w 个，r < m%w 的再多分一个；offset 为前面 count 的前缀和
func Partition(m, w int) []model.Chunk {
	if w < 1 {
		return nil
	}
	if m < 0 {
		m = 0
	}
	chunks := make([]model.Chunk, w)
	taskLen, remainder := m/w, m%w
	offset := 0
	for r := 0; r < w; r++ {
		count := taskLen
		if r < remainder {
			count++
		}
		chunks[r] = model.Chunk{Rank: r, Offset: offset, Count: count}
		offset += count
	}
	return chunks
}
