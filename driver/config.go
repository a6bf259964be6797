package driver

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/colorfulnotion/sh4core/backend"
	"github.com/colorfulnotion/sh4core/backend/x64"
	"github.com/colorfulnotion/sh4core/blockcache"
	"github.com/colorfulnotion/sh4core/ir"
	"github.com/colorfulnotion/sh4core/sh4errors"
)

// Config selects the backend and tunes the compile pipeline.
type Config struct {
	// Backend is one of backend.Threaded, backend.X64 or backend.None.
	Backend string `json:"backend"`

	// CompileThreshold is the visit count at which a block is compiled.
	// Earlier visits interpret it instruction by instruction.
	CompileThreshold int `json:"compileThreshold"`

	MaxBlockOps   int  `json:"maxBlockOps"`
	CacheCapacity int  `json:"cacheCapacity"`
	ArenaSize     int  `json:"arenaSize"`
	Optimize      bool `json:"optimize"`

	// BlockCheck re-hashes guest code before every compiled run.
	BlockCheck bool `json:"blockCheck"`

	// Debug checks every optimized block against its unoptimized form and
	// panics on invariant violations.
	Debug bool `json:"debug"`

	// SleepCycles is charged per step while the CPU sleeps.
	SleepCycles int `json:"sleepCycles"`
}

func DefaultConfig() Config {
	return Config{
		Backend:          backend.Threaded,
		CompileThreshold: 1,
		MaxBlockOps:      ir.DefaultMaxBlockOps,
		CacheCapacity:    blockcache.DefaultCapacity,
		ArenaSize:        x64.DefaultArenaSize,
		Optimize:         true,
		SleepCycles:      64,
	}
}

func (cfg *Config) Validate() error {
	switch cfg.Backend {
	case backend.Threaded, backend.X64, backend.None:
	default:
		return fmt.Errorf("backend %q: %w", cfg.Backend, sh4errors.ErrDUnknownBack)
	}
	if cfg.CompileThreshold < 0 || cfg.MaxBlockOps < 1 || cfg.CacheCapacity < 1 || cfg.ArenaSize < 0 || cfg.SleepCycles < 1 {
		return fmt.Errorf("%+v: %w", *cfg, sh4errors.ErrDBadConfig)
	}
	return nil
}

// LoadConfig reads a JSON file over DefaultConfig.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %v: %w", path, err, sh4errors.ErrDBadConfig)
	}
	return cfg, cfg.Validate()
}
