package log

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withBuffer(t *testing.T, lvl string) *bytes.Buffer {
	t.Helper()
	l, err := ParseLevel(lvl)
	require.NoError(t, err)
	var buf bytes.Buffer
	prev := setOutput(&buf, l, false)
	t.Cleanup(func() { root.Store(prev) })
	return &buf
}

func resetModules(t *testing.T) {
	t.Cleanup(func() { DisableModules("all") })
}

func TestModuleFilter(t *testing.T) {
	buf := withBuffer(t, "trace")
	resetModules(t)

	Debug(Dynarec, "hidden", "pc", 0x8c010000)
	assert.Empty(t, buf.String())

	EnableModules(Dynarec)
	Debug(Dynarec, "compiled block", "pc", 0x8c010000)
	out := buf.String()
	assert.Contains(t, out, "compiled block")
	assert.Contains(t, out, "module=sh4_dynarec")
	assert.Contains(t, out, "level=DEBUG")

	buf.Reset()
	Warn(CpuInterp, "unimplemented opcode", "op", "fsca")
	assert.Contains(t, buf.String(), "level=WARN")
}

func TestLevelThreshold(t *testing.T) {
	buf := withBuffer(t, "warn")
	Info(Driver, "not shown")
	assert.Empty(t, buf.String())
	Error(Driver, "shown")
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), "level=ERROR")
}

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("Trace")
	require.NoError(t, err)
	assert.Equal(t, LevelTrace, lvl)
	lvl, err = ParseLevel("critical")
	require.NoError(t, err)
	assert.Equal(t, LevelCrit, lvl)
	_, err = ParseLevel("loud")
	assert.Error(t, err)
	assert.Error(t, InitLogger("loud"))
}

func TestEnableAndDisableModules(t *testing.T) {
	resetModules(t)
	EnableModules("sh4_cache, sh4_mem")
	assert.True(t, isModuleEnabled(BlockCache))
	assert.True(t, isModuleEnabled(MemoryMap))
	assert.False(t, isModuleEnabled(Driver))

	EnableModules("all")
	DisableModules("sh4_mem")
	for _, m := range knownModules {
		assert.Equal(t, m != MemoryMap, isModuleEnabled(m), m)
	}
}
