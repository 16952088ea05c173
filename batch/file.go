package batch

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
)

var ErrInvalidBatch = errors.New("invalid batch")

// 预分配上限，个数来自文件头，不可信
const maxPrealloc = 1 << 16

// FileSource 读取批次文件
// 第一行第一个字段为个数 M（该行其余字段忽略），之后是 M 个以空白分隔的浮点数
type FileSource struct {
	Path string
}

func (s FileSource) Load() ([]float64, error) {
	file, err := os.Open(s.Path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := bufio.NewReader(file)
	header, err := reader.ReadString('\n')
	if err != nil && header == "" {
		return nil, fmt.Errorf("%w: missing header in %s", ErrInvalidBatch, s.Path)
	}
	fields := strings.Fields(header)
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: empty header in %s", ErrInvalidBatch, s.Path)
	}
	m, err := strconv.Atoi(fields[0])
	if err != nil || m < 0 {
		return nil, fmt.Errorf("%w: bad count %q in %s", ErrInvalidBatch, fields[0], s.Path)
	}

	scanner := bufio.NewScanner(reader)
	scanner.Split(bufio.ScanWords)
	temps := make([]float64, 0, min(m, maxPrealloc))
	for len(temps) < m && scanner.Scan() {
		v, err := strconv.ParseFloat(scanner.Text(), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: value %d: %v", ErrInvalidBatch, len(temps), err)
		}
		temps = append(temps, v)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(temps) < m {
		return nil, fmt.Errorf("%w: expected %d values, got %d", ErrInvalidBatch, m, len(temps))
	}

	log.WithFields(log.Fields{
		"path":  s.Path,
		"count": m,
	}).Info("batch read")
	return temps, nil
}

// FileSink 每行写一个结果
type FileSink struct {
	Path      string
	Precision int // -1 表示最短表示
}

// Store 先写临时文件再改名，失败时不留下半截输出
func (s FileSink) Store(results []float64) error {
	tmp := s.Path + ".tmp"
	if err := s.write(tmp, results); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, s.Path); err != nil {
		os.Remove(tmp)
		return err
	}

	log.WithFields(log.Fields{
		"path":  s.Path,
		"count": len(results),
	}).Info("results written")
	return nil
}

func (s FileSink) write(path string, results []float64) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	writer := bufio.NewWriter(file)
	for _, v := range results {
		writer.WriteString(strconv.FormatFloat(v, 'f', s.Precision, 64))
		writer.WriteByte('\n')
	}
	if err := writer.Flush(); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// MemorySource 内存中的批次
type MemorySource struct {
	Temperatures []float64
}

func (s MemorySource) Load() ([]float64, error) {
	if s.Temperatures == nil {
		return []float64{}, nil
	}
	return s.Temperatures, nil
}

// MemorySink 保存结果供调用方读取
type MemorySink struct {
	Results []float64
}

func (s *MemorySink) Store(results []float64) error {
	s.Results = append(make([]float64, 0, len(results)), results...)
	return nil
}
