package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"
)

const (
	CpuInterp  = "sh4_interp"  // reference interpreter
	Dynarec    = "sh4_dynarec" // emitter, optimizer, backends
	BlockCache = "sh4_cache"   // block cache
	Driver     = "sh4_driver"  // execution driver
	MemoryMap  = "sh4_mem"     // bus and memory map
	StateStore = "sh4_state"   // save-state history
)

var root atomic.Pointer[slog.Logger]

func init() {
	root.Store(slog.New(discardHandler{}))
}

func ParseLevel(lvl string) (slog.Level, error) {
	switch strings.ToUpper(lvl) {
	case "MAX", "MAXVERBOSITY":
		return levelMaxVerbosity, nil
	case "TRACE":
		return LevelTrace, nil
	case "DEBUG":
		return LevelDebug, nil
	case "INFO":
		return LevelInfo, nil
	case "WARN", "WARNING":
		return LevelWarn, nil
	case "ERROR":
		return LevelError, nil
	case "CRIT", "CRITICAL":
		return LevelCrit, nil
	default:
		return 0, fmt.Errorf("invalid level: %s", lvl)
	}
}

// InitLogger sends records at logLevel and above to stderr.
func InitLogger(logLevel string) error {
	lvl, err := ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("log: %w", err)
	}
	setOutput(os.Stderr, lvl, true)
	return nil
}

func setOutput(w io.Writer, lvl slog.Level, color bool) *slog.Logger {
	l := slog.New(newTerminalHandler(w, lvl, color))
	slog.SetDefault(l)
	return root.Swap(l)
}

var knownModules = []string{CpuInterp, Dynarec, BlockCache, Driver, MemoryMap, StateStore}

// moduleEnabled gates Trace and Debug per module.
var (
	moduleMu      sync.RWMutex
	moduleEnabled = make(map[string]bool)
)

func setModules(modules string, on bool) {
	moduleMu.Lock()
	defer moduleMu.Unlock()
	for _, m := range strings.Split(modules, ",") {
		switch m = strings.TrimSpace(m); m {
		case "":
		case "all":
			for _, known := range knownModules {
				moduleEnabled[known] = on
			}
		default:
			moduleEnabled[m] = on
		}
	}
}

// EnableModules turns on Trace and Debug output for a comma separated list
// of modules. "all" names every module.
func EnableModules(modules string) { setModules(modules, true) }

// DisableModules is the inverse of EnableModules.
func DisableModules(modules string) { setModules(modules, false) }

func isModuleEnabled(module string) bool {
	moduleMu.RLock()
	defer moduleMu.RUnlock()
	return moduleEnabled[module]
}

func Trace(module string, msg string, ctx ...any) {
	if isModuleEnabled(module) {
		write(root.Load(), LevelTrace, module, msg, ctx)
	}
}

func Debug(module string, msg string, ctx ...any) {
	if isModuleEnabled(module) {
		write(root.Load(), LevelDebug, module, msg, ctx)
	}
}

// Info, Warn and Error are not filtered by module.
func Info(module string, msg string, ctx ...any) {
	write(root.Load(), LevelInfo, module, msg, ctx)
}

func Warn(module string, msg string, ctx ...any) {
	write(root.Load(), LevelWarn, module, msg, ctx)
}

func Error(module string, msg string, ctx ...any) {
	write(root.Load(), LevelError, module, msg, ctx)
}
