package calculator

import (
	"runtime"

	log "github.com/sirupsen/logrus"
	"gopkg.in/ini.v1"
)

const DefaultConfigPath = "conf/config.ini"

type Config struct {
	Workers int // 参与计算的 worker 个数

	Threads       int    // 每个 worker 的线程数，0 表示按 CPU 数平均分配
	Axis          string // auto | serial | instance | grid
	GridThreshold int    // 网格边长达到该值且本地任务较少时，在网格内部并行

	Precision int // 输出精度，-1 表示最短表示

	Addr           string
	AllowAnyOrigin bool // 是否接受任意来源的 websocket 连接
	LogLevel       string
}

func DefaultConfig() Config {
	return Config{
		Workers:       1,
		Axis:          AxisAuto.String(),
		GridThreshold: 128,
		Precision:     -1,
		Addr:           ":9000",
		AllowAnyOrigin: true,
		LogLevel:       "info",
	}
}

// LoadConfig 读取 ini 配置，文件不存在时使用默认值
func LoadConfig(path string) Config {
	file, err := ini.Load(path)
	if err != nil {
		log.WithFields(log.Fields{
			"path": path,
			"err":  err,
		}).Warn("配置文件读取错误，使用默认配置")
		return DefaultConfig()
	}
	return loadCfg(file)
}

func loadCfg(file *ini.File) Config {
	def := DefaultConfig()
	return Config{
		Workers:        file.Section("distributor").Key("Workers").MustInt(def.Workers),
		Threads:        file.Section("scheduler").Key("Threads").MustInt(def.Threads),
		Axis:           file.Section("scheduler").Key("Axis").MustString(def.Axis),
		GridThreshold:  file.Section("scheduler").Key("GridThreshold").MustInt(def.GridThreshold),
		Precision:      file.Section("output").Key("Precision").MustInt(def.Precision),
		Addr:           file.Section("server").Key("Addr").MustString(def.Addr),
		AllowAnyOrigin: file.Section("server").Key("AllowAnyOrigin").MustBool(def.AllowAnyOrigin),
		LogLevel:       file.Section("log").Key("Level").MustString(def.LogLevel),
	}
}

// ThreadsPerWorker 每个 worker 可用的线程数
// 所有 worker 共享同一进程，按 CPU 数平均分配以避免超额订阅
func (c Config) ThreadsPerWorker() int {
	if c.Threads > 0 {
		return c.Threads
	}
	workers := c.Workers
	if workers < 1 {
		workers = 1
	}
	return max(1, runtime.NumCPU()/workers)
}
