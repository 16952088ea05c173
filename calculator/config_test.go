package calculator

import (
	"path/filepath"
	"testing"

	"gopkg.in/ini.v1"
)

func TestLoadCfg(t *testing.T) {
	file, err := ini.Load([]byte(`
[distributor]
Workers = 3

[scheduler]
Threads = 2
Axis = grid

[output]
Precision = 6

[server]
AllowAnyOrigin = false
`))
	if err != nil {
		t.Fatal(err)
	}
	cfg := loadCfg(file)
	if cfg.Workers != 3 || cfg.Threads != 2 || cfg.Axis != "grid" || cfg.Precision != 6 || cfg.AllowAnyOrigin {
		t.Errorf("unexpected config %+v", cfg)
	}
	// 未配置的项使用默认值
	def := DefaultConfig()
	if cfg.GridThreshold != def.GridThreshold || cfg.Addr != def.Addr || cfg.LogLevel != def.LogLevel {
		t.Errorf("defaults not applied: %+v", cfg)
	}
}

func TestLoadConfig_Missing(t *testing.T) {
	cfg := LoadConfig(filepath.Join(t.TempDir(), "none.ini"))
	if cfg != DefaultConfig() {
		t.Errorf("got %+v", cfg)
	}
}

func TestThreadsPerWorker(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Threads = 5
	if cfg.ThreadsPerWorker() != 5 {
		t.Errorf("explicit threads ignored")
	}
	cfg.Threads = 0
	cfg.Workers = 1 << 20
	if cfg.ThreadsPerWorker() != 1 {
		t.Errorf("threads per worker must be at least 1")
	}
}
