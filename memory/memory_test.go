package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type regDevice struct {
	regs   map[uint32]uint32
	writes int
}

func (d *regDevice) Read(off uint32, width int) uint32 { return d.regs[off] }
func (d *regDevice) Write(off uint32, width int, v uint32) {
	d.regs[off] = v
	d.writes++
}

type sq struct{ addrs []uint32 }

func (s *sq) Prefetch(addr uint32) { s.addrs = append(s.addrs, addr) }

func newTestMap(t *testing.T) (*Map, *Region) {
	m := NewMap()
	ram, err := m.AddRAM("ram", 0x0C000000, 0x10000, 0x40000)
	require.NoError(t, err)
	return m, ram
}

func TestReadWriteWidths(t *testing.T) {
	m, ram := newTestMap(t)
	m.Write32(0x8C000000, 0x11223344)
	assert.Equal(t, uint8(0x44), m.Read8(0x8C000000))
	assert.Equal(t, uint16(0x3344), m.Read16(0x8C000000))
	assert.Equal(t, uint32(0x11223344), m.Read32(0xAC000000))
	assert.Equal(t, []byte{0x44, 0x33, 0x22, 0x11}, ram.Data()[:4])

	m.Write16(0x0C000006, 0xBEEF)
	m.Write8(0x0C000005, 0x7F)
	assert.Equal(t, uint32(0xBEEF7F00), m.Read32(0x0C000004))
}

func TestMirrors(t *testing.T) {
	m, _ := newTestMap(t)
	m.Write32(0x0C000010, 0xCAFEBABE)
	assert.Equal(t, uint32(0xCAFEBABE), m.Read32(0x0C010010))
	assert.Equal(t, uint32(0xCAFEBABE), m.Read32(0x8C030010))

	loc, ok := m.Locate(0x8C020010, 4)
	require.True(t, ok)
	assert.Equal(t, uint32(0x10), loc.Offset)
	assert.Equal(t, "ram", m.Region(loc.Region).Name)

	assert.Equal(t, uint32(0x0C000010), m.Canonical(0x8C030010))
	assert.Equal(t, uint32(0x0C000010), m.Canonical(0x0C000010))
	assert.Equal(t, uint32(0x00400000), m.Canonical(0xA0400000))
}

func TestOpenBus(t *testing.T) {
	m, _ := newTestMap(t)
	assert.Equal(t, uint32(OpenBusValue), m.Read32(0x00400000))
	m.Write32(0x00400000, 1)
	assert.Equal(t, uint32(OpenBusValue), m.Read32(0x00400000))

	_, ok := m.Locate(0x00400000, 4)
	assert.False(t, ok)
	// straddles the end of the backing store
	_, ok = m.Locate(0x0C00FFFE, 4)
	assert.False(t, ok)
}

func TestDevicesAndROM(t *testing.T) {
	m, _ := newTestMap(t)
	dev := &regDevice{regs: map[uint32]uint32{8: 0x55}}
	require.NoError(t, m.AddDevice("tmu", 0xFFD80000, 0x100, dev))
	assert.Equal(t, uint32(0x55), m.Read32(0xFFD80008))
	m.Write16(0xFFD80004, 7)
	assert.Equal(t, 1, dev.writes)
	assert.Equal(t, uint32(7), dev.regs[4])

	_, err := m.AddROM("bios", 0, []byte{1, 2, 3, 4})
	require.NoError(t, err)
	m.Write8(0xA0000000, 9)
	assert.Equal(t, uint32(0x04030201), m.Read32(0xA0000000))
}

func TestOverlapAndGeneration(t *testing.T) {
	m, _ := newTestMap(t)
	g := m.Generation()
	_, err := m.AddRAM("dup", 0x0C020000, 0x1000, 0)
	assert.Error(t, err)
	assert.Equal(t, g, m.Generation())

	_, err = m.AddRAM("odd", 0x10000000, 0x3000, 0x6000)
	assert.Error(t, err)

	_, err = m.AddRAM("vram", 0x05000000, 0x1000, 0)
	require.NoError(t, err)
	assert.Greater(t, m.Generation(), g)
	assert.Equal(t, "vram", m.Regions()[0].Name)

	g = m.Generation()
	assert.True(t, m.Remove("vram"))
	assert.False(t, m.Remove("vram"))
	assert.Greater(t, m.Generation(), g)
	assert.Nil(t, m.Region(5))
}

func TestCodeWriteWatch(t *testing.T) {
	m, ram := newTestMap(t)
	var hits []uint32
	m.SetCodeWriteHook(func(phys, size uint32) { hits = append(hits, phys) })

	m.Write32(0x8C000100, 1)
	assert.Empty(t, hits)

	m.Watch(0x8C000100, 0x20)
	m.Write32(0x8C000100, 2)
	m.Write8(0x8C000FFF, 2)
	m.Write8(0x8C001000, 2)
	assert.Equal(t, []uint32{0x0C000100, 0x0C000FFF}, hits)

	ram.Store(0x104, 4, 3)
	m.NotifyWrite(0xAC000200, 4)
	assert.Equal(t, []uint32{0x0C000100, 0x0C000FFF, 0x0C000104, 0x0C000200}, hits)

	// Mirrors report the same address as the base alias.
	m.Write16(0x8C010100, 5)
	m.NotifyWrite(0xAC020200, 4)
	assert.Equal(t, []uint32{0x0C000100, 0x0C000FFF, 0x0C000104, 0x0C000200, 0x0C000100, 0x0C000200}, hits)

	m.ClearWatches()
	m.Write32(0x8C000100, 4)
	assert.Len(t, hits, 6)
}

func TestPrefetchAndBytes(t *testing.T) {
	m, _ := newTestMap(t)
	m.Prefetch(0xE0000000)
	q := &sq{}
	m.SetPrefetcher(q)
	m.Prefetch(0xE0000020)
	assert.Equal(t, []uint32{0xE0000020}, q.addrs)

	m.LoadBytes(0x8C000000, []byte{9, 0, 0x0B, 0})
	assert.Equal(t, uint16(0x000B), m.Read16(0x8C000002))
	assert.Equal(t, []byte{9, 0, 0x0B, 0}, m.ReadBytes(0x8C000000, 4))
}

func TestPhysical(t *testing.T) {
	assert.Equal(t, uint32(0x0C000000), Physical(0x8C000000))
	assert.Equal(t, uint32(0x0C000000), Physical(0xAC000000))
	assert.Equal(t, uint32(0x0C000000), Physical(0xCC000000))
	assert.Equal(t, uint32(0xFF000000), Physical(0xFF000000))
}
