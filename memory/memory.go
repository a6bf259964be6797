// Package memory implements the guest bus seen by the SH4 core: RAM and ROM
// regions, device handlers, open bus for unmapped addresses and a write watch
// over pages that hold compiled code.
package memory

import (
	"encoding/binary"
	"fmt"
	"sort"
	"sync/atomic"

	"github.com/colorfulnotion/sh4core/log"
)

// Bus is the memory interface used by the interpreter and the emitter.
type Bus interface {
	Read8(addr uint32) uint8
	Read16(addr uint32) uint16
	Read32(addr uint32) uint32
	Write8(addr uint32, v uint8)
	Write16(addr uint32, v uint16)
	Write32(addr uint32, v uint32)
}

// Device handles accesses to a mapped register window. width is 1, 2 or 4 and
// off is relative to the window base.
type Device interface {
	Read(off uint32, width int) uint32
	Write(off uint32, width int, v uint32)
}

// Prefetcher receives pref @Rn requests, usually a store queue flush.
type Prefetcher interface {
	Prefetch(addr uint32)
}

// OpenBusValue is returned by reads from unmapped addresses.
const OpenBusValue = 0

// P4Base is the start of the untranslated control area.
const P4Base = 0xE0000000

// Physical strips the P0-P3 segment bits. P4 addresses are returned as is.
func Physical(addr uint32) uint32 {
	if addr >= P4Base {
		return addr
	}
	return addr & 0x1FFFFFFF
}

type device struct {
	name string
	base uint32
	size uint32
	dev  Device
}

// Map is the concrete bus. It is owned by one driver; Generation may be read
// from any goroutine.
type Map struct {
	regions []*Region
	devices []device

	generation atomic.Uint64

	onCodeWrite func(phys uint32, size uint32)
	prefetch    Prefetcher

	last *Region
}

func NewMap() *Map {
	return &Map{}
}

// Generation changes whenever the layout of the map changes.
func (m *Map) Generation() uint64 { return m.generation.Load() }

func (m *Map) bump() {
	m.generation.Add(1)
	m.last = nil
}

func (m *Map) overlaps(base, size uint32) error {
	end := uint64(base) + uint64(size)
	for _, r := range m.regions {
		if uint64(base) < uint64(r.Base)+uint64(r.Span) && uint64(r.Base) < end {
			return fmt.Errorf("memory: window %08x+%x overlaps region %s", base, size, r.Name)
		}
	}
	for _, d := range m.devices {
		if uint64(base) < uint64(d.base)+uint64(d.size) && uint64(d.base) < end {
			return fmt.Errorf("memory: window %08x+%x overlaps device %s", base, size, d.name)
		}
	}
	return nil
}

// AddRAM maps size bytes of RAM at physical base. span, when larger than
// size, mirrors the RAM across the window; it must be a multiple of size
// and size a power of two.
func (m *Map) AddRAM(name string, base, size, span uint32) (*Region, error) {
	return m.addRegion(name, base, size, span, false, nil)
}

// AddROM maps read-only data at physical base. Writes are dropped.
func (m *Map) AddROM(name string, base uint32, data []byte) (*Region, error) {
	return m.addRegion(name, base, uint32(len(data)), 0, true, data)
}

func (m *Map) addRegion(name string, base, size, span uint32, ro bool, data []byte) (*Region, error) {
	if size == 0 {
		return nil, fmt.Errorf("memory: region %s has zero size", name)
	}
	if span == 0 {
		span = size
	}
	if span != size && (size&(size-1) != 0 || span%size != 0) {
		return nil, fmt.Errorf("memory: region %s mirror span %x is not a multiple of power-of-two size %x", name, span, size)
	}
	if err := m.overlaps(base, span); err != nil {
		return nil, err
	}
	if data == nil {
		data = make([]byte, size)
	}
	r := &Region{
		Name:     name,
		Base:     base,
		Size:     size,
		Span:     span,
		ReadOnly: ro,
		index:    len(m.regions),
		data:     data,
		watch:    make([]uint64, (size/WatchPageSize+64)/64),
		owner:    m,
	}
	m.regions = append(m.regions, r)
	sort.SliceStable(m.regions, func(i, j int) bool { return m.regions[i].Base < m.regions[j].Base })
	for i, rr := range m.regions {
		rr.index = i
	}
	m.bump()
	log.Info(log.MemoryMap, "region mapped", "name", name, "base", fmt.Sprintf("%08x", base), "size", size, "span", span, "rom", ro)
	return r, nil
}

// AddDevice maps a register window at physical base.
func (m *Map) AddDevice(name string, base, size uint32, dev Device) error {
	if err := m.overlaps(base, size); err != nil {
		return err
	}
	m.devices = append(m.devices, device{name: name, base: base, size: size, dev: dev})
	m.bump()
	return nil
}

// Remove unmaps a region or device by name.
func (m *Map) Remove(name string) bool {
	for i, r := range m.regions {
		if r.Name == name {
			m.regions = append(m.regions[:i], m.regions[i+1:]...)
			for j, rr := range m.regions {
				rr.index = j
			}
			m.bump()
			return true
		}
	}
	for i, d := range m.devices {
		if d.name == name {
			m.devices = append(m.devices[:i], m.devices[i+1:]...)
			m.bump()
			return true
		}
	}
	return false
}

// Regions returns the mapped RAM and ROM regions ordered by base.
func (m *Map) Regions() []*Region { return m.regions }

// Region returns region i as numbered by Location.Region.
func (m *Map) Region(i int) *Region {
	if i < 0 || i >= len(m.regions) {
		return nil
	}
	return m.regions[i]
}

// Location is a resolved position inside a region.
type Location struct {
	Region int
	Offset uint32
}

// Locate returns where a width byte access at addr lands, if it lands
// completely inside one region.
func (m *Map) Locate(addr uint32, width int) (Location, bool) {
	r, off := m.find(Physical(addr))
	if r == nil || off+uint32(width) > r.Size {
		return Location{}, false
	}
	return Location{Region: r.index, Offset: off}, true
}

func (m *Map) find(phys uint32) (*Region, uint32) {
	if r := m.last; r != nil && phys >= r.Base && phys-r.Base < r.Span {
		return r, r.offset(phys)
	}
	for _, r := range m.regions {
		if phys >= r.Base && phys-r.Base < r.Span {
			m.last = r
			return r, r.offset(phys)
		}
	}
	return nil, 0
}

// Canonical folds addr onto the address the code write hook reports for the
// same byte: the physical address with RAM mirrors collapsed onto the region
// base. Unmapped addresses are returned physical.
func (m *Map) Canonical(addr uint32) uint32 {
	phys := Physical(addr)
	if r, off := m.find(phys); r != nil {
		return r.Base + off
	}
	return phys
}

func (m *Map) findDevice(phys uint32) (*device, uint32) {
	for i := range m.devices {
		d := &m.devices[i]
		if phys >= d.base && phys-d.base < d.size {
			return d, phys - d.base
		}
	}
	return nil, 0
}

func (m *Map) read(addr uint32, width int) uint32 {
	phys := Physical(addr)
	if r, off := m.find(phys); r != nil && off+uint32(width) <= r.Size {
		return r.load(off, width)
	}
	if d, off := m.findDevice(phys); d != nil {
		return d.dev.Read(off, width)
	}
	log.Debug(log.MemoryMap, "open bus read", "addr", fmt.Sprintf("%08x", addr), "width", width)
	return OpenBusValue
}

func (m *Map) write(addr uint32, width int, v uint32) {
	phys := Physical(addr)
	if r, off := m.find(phys); r != nil && off+uint32(width) <= r.Size {
		if r.ReadOnly {
			log.Debug(log.MemoryMap, "write to rom dropped", "region", r.Name, "addr", fmt.Sprintf("%08x", addr))
			return
		}
		r.store(off, width, v)
		return
	}
	if d, off := m.findDevice(phys); d != nil {
		d.dev.Write(off, width, v)
		return
	}
	log.Debug(log.MemoryMap, "open bus write", "addr", fmt.Sprintf("%08x", addr), "width", width, "value", v)
}

func (m *Map) Read8(addr uint32) uint8   { return uint8(m.read(addr, 1)) }
func (m *Map) Read16(addr uint32) uint16 { return uint16(m.read(addr, 2)) }
func (m *Map) Read32(addr uint32) uint32 { return m.read(addr, 4) }

func (m *Map) Write8(addr uint32, v uint8)   { m.write(addr, 1, uint32(v)) }
func (m *Map) Write16(addr uint32, v uint16) { m.write(addr, 2, uint32(v)) }
func (m *Map) Write32(addr uint32, v uint32) { m.write(addr, 4, v) }

// LoadBytes copies data into guest memory starting at addr through the bus.
func (m *Map) LoadBytes(addr uint32, data []byte) {
	for i, b := range data {
		m.Write8(addr+uint32(i), b)
	}
}

// ReadBytes copies n bytes of guest memory starting at addr.
func (m *Map) ReadBytes(addr uint32, n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = m.Read8(addr + uint32(i))
	}
	return out
}

// SetCodeWriteHook installs the callback run when a write hits a watched page.
func (m *Map) SetCodeWriteHook(f func(phys uint32, size uint32)) {
	m.onCodeWrite = f
}

// Watch marks the pages covering [addr, addr+size) as holding compiled code.
func (m *Map) Watch(addr, size uint32) {
	for a := addr &^ (WatchPageSize - 1); a < addr+size; a += WatchPageSize {
		if r, off := m.find(Physical(a)); r != nil {
			r.setWatch(off, true)
		}
		if a+WatchPageSize < a {
			break
		}
	}
}

// ClearWatches drops every page watch, typically after the cache is flushed.
func (m *Map) ClearWatches() {
	for _, r := range m.regions {
		clear(r.watch)
	}
}

// NotifyWrite reports a write made outside the bus, by generated code, so the
// watch hook still sees it.
func (m *Map) NotifyWrite(addr uint32, width int) {
	if r, off := m.find(Physical(addr)); r != nil && r.watched(off) && m.onCodeWrite != nil {
		m.onCodeWrite(r.Base+off, uint32(width))
	}
}

func (m *Map) SetPrefetcher(p Prefetcher) { m.prefetch = p }

// Prefetch forwards a pref request to the installed prefetcher, if any.
func (m *Map) Prefetch(addr uint32) {
	if m.prefetch != nil {
		m.prefetch.Prefetch(addr)
	}
}

// WatchPageSize is the granularity of the code write watch.
const WatchPageSize = 4096

// Region is a block of host memory backing guest RAM or ROM.
type Region struct {
	Name     string
	Base     uint32
	Size     uint32
	Span     uint32
	ReadOnly bool

	index int
	data  []byte
	watch []uint64
	owner *Map
}

// Data exposes the backing store. Generated code reads and writes it directly.
func (r *Region) Data() []byte { return r.data }

func (r *Region) Index() int { return r.index }

func (r *Region) offset(phys uint32) uint32 {
	off := phys - r.Base
	if r.Span != r.Size {
		off &= r.Size - 1
	}
	return off
}

func (r *Region) load(off uint32, width int) uint32 {
	switch width {
	case 1:
		return uint32(r.data[off])
	case 2:
		return uint32(binary.LittleEndian.Uint16(r.data[off:]))
	default:
		return binary.LittleEndian.Uint32(r.data[off:])
	}
}

func (r *Region) store(off uint32, width int, v uint32) {
	switch width {
	case 1:
		r.data[off] = uint8(v)
	case 2:
		binary.LittleEndian.PutUint16(r.data[off:], uint16(v))
	default:
		binary.LittleEndian.PutUint32(r.data[off:], v)
	}
	if r.watched(off) && r.owner.onCodeWrite != nil {
		r.owner.onCodeWrite(r.Base+off, uint32(width))
	}
}

// Load reads at a resolved offset.
func (r *Region) Load(off uint32, width int) uint32 { return r.load(off, width) }

// Store writes at a resolved offset and runs the code write hook for watched
// pages.
func (r *Region) Store(off uint32, width int, v uint32) {
	if r.ReadOnly {
		return
	}
	r.store(off, width, v)
}

func (r *Region) setWatch(off uint32, on bool) {
	p := off / WatchPageSize
	if on {
		r.watch[p/64] |= 1 << (p % 64)
	} else {
		r.watch[p/64] &^= 1 << (p % 64)
	}
}

func (r *Region) watched(off uint32) bool {
	p := off / WatchPageSize
	return r.watch[p/64]&(1<<(p%64)) != 0
}
