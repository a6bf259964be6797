// Package blockcache tracks translated guest blocks keyed by start address
// and CPU mode.
package blockcache

import (
	"container/list"
	"fmt"
	"sort"
	"sync"

	"github.com/colorfulnotion/sh4core/backend"
	"github.com/colorfulnotion/sh4core/cpu"
	"github.com/colorfulnotion/sh4core/ir"
	"github.com/colorfulnotion/sh4core/log"
	"github.com/colorfulnotion/sh4core/memory"
	"github.com/colorfulnotion/sh4core/sh4errors"
)

// DefaultCapacity is the entry limit used when New is given zero.
const DefaultCapacity = 16384

type Key struct {
	Addr uint32
	Mode cpu.Mode
}

func (k Key) String() string { return fmt.Sprintf("%08x/%s", k.Addr, k.Mode) }

type State uint8

const (
	Uncompiled State = iota
	Compiling
	Compiled
	Invalidated
)

var stateNames = [...]string{"uncompiled", "compiling", "compiled", "invalidated"}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("state(%d)", uint8(s))
}

// Entry is the cache record of one block. Only the cache owner reads or
// writes an Entry; other goroutines use Snapshot.
type Entry struct {
	Key   Key
	State State
	// Block is the optimized IR, set once compiled.
	Block *ir.Block
	// Code is nil for a compiled entry that must be interpreted.
	Code backend.Code
	// Err is the compile failure that left Code nil.
	Err error

	Visits int
	Runs   uint64
	Cycles uint64

	elem  *list.Element
	spans []span
}

// span is a half-open range of canonical guest addresses.
type span struct{ start, end uint32 }

// Native reports whether the entry has host code to run.
func (e *Entry) Native() bool { return e.State == Compiled && e.Code != nil }

// Stats accumulates cache events.
type Stats struct {
	Lookups       uint64 `json:"lookups"`
	Hits          uint64 `json:"hits"`
	Compiles      uint64 `json:"compiles"`
	Failures      uint64 `json:"failures"`
	Invalidations uint64 `json:"invalidations"`
	Evictions     uint64 `json:"evictions"`
	Flushes       uint64 `json:"flushes"`
}

// AddressFunc maps a guest address to the address code writes to the same
// byte are reported at.
type AddressFunc func(addr uint32) uint32

type Option func(*Cache)

// WithAddressFunc sets how block ranges and written addresses are compared.
// The default strips the segment bits with memory.Physical.
func WithAddressFunc(f AddressFunc) Option {
	return func(bc *Cache) { bc.canon = f }
}

// Cache holds at most one live entry per Key and evicts the least recently
// looked up entry when over capacity. Mutations take the write lock so that
// Snapshot, Tree and Top may run on other goroutines.
type Cache struct {
	mu       sync.RWMutex
	capacity int
	entries  map[Key]*Entry
	lru      *list.List // front = oldest
	canon    AddressFunc
	// pages indexes entries with code by canonical watch page.
	pages map[uint32]map[*Entry]struct{}
	stats Stats
}

func New(capacity int, opts ...Option) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	bc := &Cache{
		capacity: capacity,
		entries:  make(map[Key]*Entry),
		lru:      list.New(),
		canon:    memory.Physical,
		pages:    make(map[uint32]map[*Entry]struct{}),
	}
	for _, opt := range opts {
		opt(bc)
	}
	return bc
}

func (bc *Cache) Len() int {
	bc.mu.RLock()
	defer bc.mu.RUnlock()
	return len(bc.entries)
}

func (bc *Cache) Stats() Stats {
	bc.mu.RLock()
	defer bc.mu.RUnlock()
	return bc.stats
}

// Peek returns the live entry for k without counting a visit.
func (bc *Cache) Peek(k Key) *Entry {
	bc.mu.RLock()
	defer bc.mu.RUnlock()
	return bc.entries[k]
}

// Lookup returns the live entry for k, creating an Uncompiled one when there
// is none, and counts a visit.
func (bc *Cache) Lookup(k Key) *Entry {
	bc.mu.Lock()
	defer bc.mu.Unlock()
	bc.stats.Lookups++
	e, ok := bc.entries[k]
	if ok {
		bc.lru.MoveToBack(e.elem)
		if e.State == Compiled {
			bc.stats.Hits++
		}
	} else {
		e = &Entry{Key: k}
		e.elem = bc.lru.PushBack(e)
		bc.entries[k] = e
		bc.evict()
	}
	e.Visits++
	return e
}

func (bc *Cache) evict() {
	for el := bc.lru.Front(); el != nil && len(bc.entries) > bc.capacity; {
		next := el.Next()
		e := el.Value.(*Entry)
		// The entry being compiled and the one just added stay.
		if e.State != Compiling && el != bc.lru.Back() {
			bc.drop(e)
			bc.stats.Evictions++
			log.Trace(log.BlockCache, "evict", "key", e.Key, "runs", e.Runs)
		}
		el = next
	}
}

func (bc *Cache) drop(e *Entry) {
	e.State = Invalidated
	bc.lru.Remove(e.elem)
	e.elem = nil
	delete(bc.entries, e.Key)
	bc.unindex(e)
}

func page(addr uint32) uint32 { return addr / memory.WatchPageSize }

// index records the canonical ranges of e's guest code. The guest range is
// split at watch pages since each page may land on a different mirror.
func (bc *Cache) index(e *Entry) {
	b := e.Block
	if b == nil || b.End <= b.Start {
		return
	}
	for a := b.Start; a < b.End; {
		next := (a | (memory.WatchPageSize - 1)) + 1
		if next > b.End || next < a {
			next = b.End
		}
		start := bc.canon(a)
		end := start + (next - a)
		if n := len(e.spans); n > 0 && e.spans[n-1].end == start {
			e.spans[n-1].end = end
		} else {
			e.spans = append(e.spans, span{start, end})
		}
		for p := page(start); p <= page(end-1); p++ {
			set := bc.pages[p]
			if set == nil {
				set = make(map[*Entry]struct{})
				bc.pages[p] = set
			}
			set[e] = struct{}{}
		}
		a = next
	}
}

func (bc *Cache) unindex(e *Entry) {
	for _, sp := range e.spans {
		for p := page(sp.start); p <= page(sp.end-1); p++ {
			if set := bc.pages[p]; set != nil {
				delete(set, e)
				if len(set) == 0 {
					delete(bc.pages, p)
				}
			}
		}
	}
	e.spans = nil
}

func (e *Entry) overlaps(start, end uint32) bool {
	for _, sp := range e.spans {
		if start < sp.end && sp.start < end {
			return true
		}
	}
	return false
}

func badTransition(e *Entry, to State) error {
	return fmt.Errorf("block %s %s -> %s: %w", e.Key, e.State, to, sh4errors.ErrVBadTransition)
}

// Begin moves an Uncompiled entry to Compiling.
func (bc *Cache) Begin(e *Entry) error {
	bc.mu.Lock()
	defer bc.mu.Unlock()
	if e.State != Uncompiled {
		return badTransition(e, Compiling)
	}
	e.State = Compiling
	return nil
}

// Commit publishes the compiled block and its host code.
func (bc *Cache) Commit(e *Entry, b *ir.Block, code backend.Code) error {
	bc.mu.Lock()
	defer bc.mu.Unlock()
	if e.State != Compiling {
		return badTransition(e, Compiled)
	}
	e.State, e.Block, e.Code, e.Err = Compiled, b, code, nil
	bc.index(e)
	bc.stats.Compiles++
	return nil
}

// Fail marks the entry compiled without host code; it is interpreted from
// then on. b may be nil when the block could not be emitted.
func (bc *Cache) Fail(e *Entry, b *ir.Block, err error) error {
	bc.mu.Lock()
	defer bc.mu.Unlock()
	if e.State != Compiling {
		return badTransition(e, Compiled)
	}
	e.State, e.Block, e.Code, e.Err = Compiled, b, nil, err
	bc.index(e)
	bc.stats.Compiles++
	bc.stats.Failures++
	return nil
}

// Record adds one run of the entry.
func (bc *Cache) Record(e *Entry, cycles int) {
	bc.mu.Lock()
	e.Runs++
	e.Cycles += uint64(cycles)
	bc.mu.Unlock()
}

// Invalidate drops e. It returns false when e is no longer live.
func (bc *Cache) Invalidate(e *Entry) bool {
	bc.mu.Lock()
	defer bc.mu.Unlock()
	if cur, ok := bc.entries[e.Key]; !ok || cur != e {
		return false
	}
	bc.drop(e)
	bc.stats.Invalidations++
	return true
}

// InvalidateRange drops every entry whose guest code overlaps the range
// [addr, addr+size), compared after the address function. It returns the
// dropped keys ordered by address then mode.
func (bc *Cache) InvalidateRange(addr, size uint32) []Key {
	if size == 0 {
		return nil
	}
	bc.mu.Lock()
	defer bc.mu.Unlock()
	addr = bc.canon(addr)
	end := addr + size
	var dropped []Key
	for p := page(addr); p <= page(end-1); p++ {
		for e := range bc.pages[p] {
			if !e.overlaps(addr, end) {
				continue
			}
			dropped = append(dropped, e.Key)
			bc.drop(e)
			bc.stats.Invalidations++
		}
	}
	sort.Slice(dropped, func(i, j int) bool {
		if dropped[i].Addr != dropped[j].Addr {
			return dropped[i].Addr < dropped[j].Addr
		}
		return dropped[i].Mode < dropped[j].Mode
	})
	if len(dropped) > 0 {
		log.Debug(log.BlockCache, "code write", "addr", fmt.Sprintf("%08x", addr), "size", size, "dropped", len(dropped))
	}
	return dropped
}

// InvalidateAll drops every entry and returns how many there were.
func (bc *Cache) InvalidateAll(reason string) int {
	bc.mu.Lock()
	defer bc.mu.Unlock()
	n := len(bc.entries)
	for _, e := range bc.entries {
		e.State = Invalidated
		e.elem = nil
		e.spans = nil
	}
	bc.entries = make(map[Key]*Entry)
	bc.pages = make(map[uint32]map[*Entry]struct{})
	bc.lru = list.New()
	bc.stats.Flushes++
	bc.stats.Invalidations += uint64(n)
	log.Debug(log.BlockCache, "flush", "reason", reason, "entries", n)
	return n
}

// Info is a copy of an entry safe to hand to another goroutine.
type Info struct {
	Addr     uint32 `json:"addr"`
	Mode     string `json:"mode"`
	State    string `json:"state"`
	End      uint32 `json:"end,omitempty"`
	Insns    int    `json:"insns,omitempty"`
	Cost     int    `json:"cost,omitempty"`
	Native   bool   `json:"native"`
	CodeSize int    `json:"codeSize,omitempty"`
	Visits   int    `json:"visits"`
	Runs     uint64 `json:"runs"`
	Cycles   uint64 `json:"cycles"`
	Err      string `json:"err,omitempty"`
}

func (e *Entry) info() Info {
	in := Info{
		Addr:   e.Key.Addr,
		Mode:   e.Key.Mode.String(),
		State:  e.State.String(),
		Native: e.Native(),
		Visits: e.Visits,
		Runs:   e.Runs,
		Cycles: e.Cycles,
	}
	if e.Block != nil {
		in.End, in.Insns, in.Cost = e.Block.End, e.Block.Count, e.Block.Cycles
	}
	if e.Code != nil {
		in.CodeSize = e.Code.Size()
	}
	if e.Err != nil {
		in.Err = e.Err.Error()
	}
	return in
}

// Snapshot copies every live entry ordered by address then mode.
func (bc *Cache) Snapshot() []Info {
	bc.mu.RLock()
	out := make([]Info, 0, len(bc.entries))
	for _, e := range bc.entries {
		out = append(out, e.info())
	}
	bc.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].Addr != out[j].Addr {
			return out[i].Addr < out[j].Addr
		}
		return out[i].Mode < out[j].Mode
	})
	return out
}

// Top returns the n entries that consumed the most cycles.
func (bc *Cache) Top(n int) []Info {
	all := bc.Snapshot()
	sort.SliceStable(all, func(i, j int) bool { return all[i].Cycles > all[j].Cycles })
	if n >= 0 && n < len(all) {
		all = all[:n]
	}
	return all
}
