package statestore

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/colorfulnotion/sh4core/cpu"
	"github.com/colorfulnotion/sh4core/decoder"
	"github.com/colorfulnotion/sh4core/driver"
	"github.com/colorfulnotion/sh4core/memory"
	"github.com/colorfulnotion/sh4core/sh4asm"
	"github.com/colorfulnotion/sh4core/sh4errors"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openMem(t *testing.T) *Store {
	t.Helper()
	s, err := Open("")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPutGetHead(t *testing.T) {
	s := openMem(t)
	_, err := s.Head()
	assert.True(t, errors.Is(err, sh4errors.ErrSNotFound))

	d, err := s.Put(3, []byte("three"))
	require.NoError(t, err)
	assert.Equal(t, Sum([]byte("three")), d)
	_, err = s.Put(1, []byte("one"))
	require.NoError(t, err)

	blob, err := s.Get(3)
	require.NoError(t, err)
	assert.Equal(t, []byte("three"), blob)
	head, err := s.Head()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), head)

	frames, err := s.Frames()
	require.NoError(t, err)
	assert.Equal(t, []uint64{1, 3}, frames)

	_, err = s.Get(2)
	assert.True(t, errors.Is(err, sh4errors.ErrSNotFound))
}

func TestDigestMismatch(t *testing.T) {
	s := openMem(t)
	_, err := s.Put(7, []byte("payload"))
	require.NoError(t, err)
	val, err := s.db.Get(frameKey(7), nil)
	require.NoError(t, err)
	val[len(val)-1] ^= 1
	require.NoError(t, s.db.Put(frameKey(7), val, nil))

	_, err = s.Get(7)
	assert.True(t, errors.Is(err, sh4errors.ErrSDigestMismatch))
}

func TestTruncateAndPrune(t *testing.T) {
	s := openMem(t)
	for f := uint64(0); f < 10; f++ {
		_, err := s.Put(f, []byte{byte(f)})
		require.NoError(t, err)
	}
	n, err := s.Truncate(6)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	head, err := s.Head()
	require.NoError(t, err)
	assert.Equal(t, uint64(6), head)

	n, err = s.Prune(2)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	frames, err := s.Frames()
	require.NoError(t, err)
	assert.Equal(t, []uint64{5, 6}, frames)

	_, err = s.Truncate(2)
	assert.True(t, errors.Is(err, sh4errors.ErrSNotFound))
}

func TestReopenOnDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "states")
	s, err := Open(path)
	require.NoError(t, err)
	_, err = s.Put(42, []byte("persisted"))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	blob, err := s.Get(42)
	require.NoError(t, err)
	assert.Equal(t, []byte("persisted"), blob)
}

func TestRollbackDriver(t *testing.T) {
	const org = 0x8C000000
	prog := sh4asm.New(org).
		Label("top").
		Op(decoder.ADD_IMM, 2, 0, 1).
		Branch(decoder.BRA, "top").
		Op(decoder.NOP, 0, 0, 0)
	bus := memory.NewMap()
	_, err := bus.AddRAM("ram", 0x0C000000, 0x100000, 0)
	require.NoError(t, err)
	bus.LoadBytes(org, prog.MustBytes())
	c := cpu.NewContext()
	c.PC = org
	d, err := driver.New(c, bus, driver.DefaultConfig())
	require.NoError(t, err)
	defer d.Close()

	s := openMem(t)
	var saved []cpu.Context
	for f := uint64(0); f < 5; f++ {
		_, err := s.Checkpoint(d, f)
		require.NoError(t, err)
		saved = append(saved, *c)
		d.Step()
		d.Step()
	}
	assert.Equal(t, uint32(10), c.R[2])

	require.NoError(t, s.Rollback(d, 2))
	assert.Empty(t, cmp.Diff(saved[2], *c))
	assert.Equal(t, uint32(4), c.R[2])
	assert.Zero(t, d.Cache().Len())
	frames, err := s.Frames()
	require.NoError(t, err)
	assert.Equal(t, []uint64{0, 1, 2}, frames)

	assert.True(t, errors.Is(s.Rollback(d, 4), sh4errors.ErrSNotFound))
}
