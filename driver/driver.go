// Package driver runs guest code from the current PC, choosing per block
// between compiled host code and the reference interpreter.
package driver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/colorfulnotion/sh4core/backend"
	"github.com/colorfulnotion/sh4core/backend/x64"
	"github.com/colorfulnotion/sh4core/blockcache"
	"github.com/colorfulnotion/sh4core/cpu"
	"github.com/colorfulnotion/sh4core/decoder"
	"github.com/colorfulnotion/sh4core/interpreter"
	"github.com/colorfulnotion/sh4core/ir"
	"github.com/colorfulnotion/sh4core/log"
	"github.com/colorfulnotion/sh4core/memory"
	"github.com/colorfulnotion/sh4core/sh4errors"
)

const tracerName = "github.com/colorfulnotion/sh4core/driver"

// Stats counts what the driver did since New.
type Stats struct {
	Steps          uint64 `json:"steps"`
	NativeRuns     uint64 `json:"nativeRuns"`
	InterpBlocks   uint64 `json:"interpBlocks"`
	InterpInsns    uint64 `json:"interpInsns"`
	NativeInsns    uint64 `json:"nativeInsns"`
	Compiles       uint64 `json:"compiles"`
	Fallbacks      uint64 `json:"fallbacks"`
	CompileErrors  uint64 `json:"compileErrors"`
	ArenaResets    uint64 `json:"arenaResets"`
	CheckFails     uint64 `json:"checkFails"`
	StaleMaps      uint64 `json:"staleMaps"`
	EarlyExits     uint64 `json:"earlyExits"`
	Interrupts     uint64 `json:"interrupts"`
	SleepSteps     uint64 `json:"sleepSteps"`
	Cycles         uint64 `json:"cycles"`
	CodeWrites     uint64 `json:"codeWrites"`
	OptimizeErrors uint64 `json:"optimizeErrors"`
}

// Driver owns one guest context. Step, Run, SaveState, LoadState and
// RaiseInterrupt must be called from a single goroutine; Stop and the cache
// snapshots may be used from any.
type Driver struct {
	cfg   Config
	ctx   *cpu.Context
	bus   *memory.Map
	in    *interpreter.Interpreter
	em    *ir.Emitter
	be    backend.Backend
	cache *blockcache.Cache
	// fallback compiles the blocks be has no lowering for.
	fallback backend.Backend

	// nativeStores is set when compiled code writes memory behind the bus.
	nativeStores bool

	stop    atomic.Bool
	pending uint16 // bit n: an interrupt of level n is pending
	intevt  [16]uint32

	onCycles func(int)
	unimpl   interpreter.UnimplementedFunc
	prefetch memory.Prefetcher
	tracer   trace.Tracer
	spanCtx  context.Context

	stats Stats
}

// New builds a driver over c and bus. The driver installs itself as the
// bus code write hook.
func New(c *cpu.Context, bus *memory.Map, cfg Config, opts ...Option) (*Driver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	d := &Driver{
		cfg:     cfg,
		ctx:     c,
		bus:     bus,
		em:      ir.NewEmitter(bus, ir.Config{MaxBlockOps: cfg.MaxBlockOps}),
		cache:   blockcache.New(cfg.CacheCapacity, blockcache.WithAddressFunc(bus.Canonical)),
		spanCtx: context.Background(),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.tracer == nil {
		d.tracer = otel.Tracer(tracerName)
	}
	inOpts := []interpreter.Option{interpreter.WithUnimplementedHook(d.unimplemented)}
	if d.prefetch != nil {
		inOpts = append(inOpts, interpreter.WithPrefetcher(d.prefetch))
	}
	d.in = interpreter.New(bus, inOpts...)

	if d.be == nil {
		switch cfg.Backend {
		case backend.Threaded:
			d.be = backend.NewThreaded(bus, bus, d.in)
		case backend.X64:
			x, err := x64.New(bus, cfg.ArenaSize)
			if err != nil {
				return nil, fmt.Errorf("driver: %w", err)
			}
			d.be = x
		}
	}
	if d.be != nil && d.be.Name() == backend.X64 {
		d.nativeStores = true
		d.fallback = backend.NewThreaded(bus, bus, d.in)
	}
	bus.SetCodeWriteHook(d.codeWrite)
	log.Info(log.Driver, "driver ready", "backend", d.BackendName(), "threshold", cfg.CompileThreshold, "maxBlockOps", cfg.MaxBlockOps)
	return d, nil
}

func (d *Driver) BackendName() string {
	if d.be == nil {
		return backend.None
	}
	return d.be.Name()
}

func (d *Driver) Context() *cpu.Context                 { return d.ctx }
func (d *Driver) Bus() *memory.Map                      { return d.bus }
func (d *Driver) Cache() *blockcache.Cache              { return d.cache }
func (d *Driver) Interpreter() *interpreter.Interpreter { return d.in }
func (d *Driver) Config() Config                        { return d.cfg }
func (d *Driver) Stats() Stats                          { return d.stats }

// Close releases the backend's executable memory.
func (d *Driver) Close() error {
	if c, ok := d.be.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (d *Driver) unimplemented(pc uint32, op uint16, reason string) {
	log.Warn(log.Driver, "unimplemented", "pc", fmt.Sprintf("%08x", pc), "op", decoder.Disassemble(pc, op), "reason", reason)
	if d.unimpl != nil {
		d.unimpl(pc, op, reason)
	}
}

func (d *Driver) codeWrite(phys, size uint32) {
	if dropped := d.cache.InvalidateRange(phys, size); len(dropped) > 0 {
		d.stats.CodeWrites++
	}
}

// RaiseInterrupt marks an interrupt of the given level pending. It is taken
// between blocks once SR allows it.
func (d *Driver) RaiseInterrupt(level int, intevt uint32) error {
	if level < 1 || level > 15 {
		return fmt.Errorf("level %d: %w", level, sh4errors.ErrDBadInterrupt)
	}
	d.pending |= 1 << level
	d.intevt[level] = intevt
	return nil
}

func (d *Driver) serviceInterrupts() {
	for level := 15; level >= 1 && d.pending != 0; level-- {
		if d.pending&(1<<level) == 0 {
			continue
		}
		// Only the highest pending level competes.
		if d.ctx.InterruptAccepted(level) {
			d.pending &^= 1 << level
			d.ctx.AcceptInterrupt(d.intevt[level])
			d.stats.Interrupts++
			log.Trace(log.Driver, "interrupt", "level", level, "intevt", fmt.Sprintf("%x", d.intevt[level]), "pc", fmt.Sprintf("%08x", d.ctx.PC))
		}
		return
	}
}

// Step runs one block from the current PC and returns the cycles it took.
func (d *Driver) Step() int {
	d.stats.Steps++
	d.serviceInterrupts()
	var cycles int
	switch {
	case d.ctx.Sleeping:
		d.stats.SleepSteps++
		cycles = d.cfg.SleepCycles
	case d.be == nil:
		cycles = d.interpretBlock()
	default:
		cycles = d.stepCached()
	}
	d.stats.Cycles += uint64(cycles)
	if d.onCycles != nil {
		d.onCycles(cycles)
	}
	return cycles
}

func (d *Driver) stepCached() int {
	e := d.cache.Lookup(blockcache.Key{Addr: d.ctx.PC, Mode: d.ctx.Mode()})
	if e.State == blockcache.Uncompiled {
		if e.Visits < d.cfg.CompileThreshold {
			return d.interpretBlock()
		}
		e = d.compile(e)
	}
	return d.run(e)
}

// run executes a compiled entry, interpreting it when it has no usable code.
func (d *Driver) run(e *blockcache.Entry) int {
	b := e.Block
	if b == nil || e.Code == nil {
		cycles := d.interpretBlock()
		d.cache.Record(e, cycles)
		return cycles
	}
	if b.MapGeneration != d.bus.Generation() {
		d.stats.StaleMaps++
		d.cache.Invalidate(e)
		return d.interpretBlock()
	}
	if d.cfg.BlockCheck && ir.HashCode(d.bus, b.Start, b.End) != b.CodeHash {
		d.stats.CheckFails++
		log.Debug(log.Driver, "block check failed", "block", e.Key)
		d.cache.Invalidate(e)
		return d.interpretBlock()
	}
	// Compiled code does not test SR.FD; the interpreter raises the exception.
	if b.UsesFPU && d.ctx.SR&cpu.SR_FD != 0 {
		return d.interpretBlock()
	}
	ex := e.Code.Run(d.ctx)
	if _, threaded := e.Code.(fallbackCode); d.nativeStores && !threaded {
		for _, s := range b.DirectStores {
			d.bus.NotifyWrite(s.Addr, s.Width)
		}
	}
	d.stats.NativeRuns++
	d.stats.NativeInsns += uint64(b.Count)
	if ex.Early {
		d.stats.EarlyExits++
	}
	d.cache.Record(e, ex.Cycles)
	return ex.Cycles
}

// interpretBlock runs the interpreter up to the end of the block at PC.
func (d *Driver) interpretBlock() int {
	c := d.ctx
	cycles := 0
	for n := 0; n < d.cfg.MaxBlockOps; n++ {
		pc := c.PC
		mode := c.Mode()
		dec := decoder.Decode(d.bus.Read16(pc))
		cycles += d.in.Step(c)
		d.stats.InterpInsns++
		if dec.Is(decoder.ClassBranch) || dec.Is(decoder.ClassEndsBlock) || c.PC != pc+2 || c.Mode() != mode || c.Sleeping {
			break
		}
	}
	d.stats.InterpBlocks++
	return cycles
}

// compile emits, optimizes, resolves and generates e. It returns the entry
// to run, which differs from e when the arena had to be reset.
func (d *Driver) compile(e *blockcache.Entry) *blockcache.Entry {
	_, span := d.tracer.Start(d.spanCtx, "sh4.compile", trace.WithAttributes(
		attribute.String("block", e.Key.String()),
		attribute.String("backend", d.be.Name()),
	))
	defer span.End()

	if err := d.cache.Begin(e); err != nil {
		panic(err)
	}
	d.stats.Compiles++
	b, err := d.build(e.Key)
	if err != nil {
		d.stats.CompileErrors++
		log.Warn(log.Driver, "emit failed", "block", e.Key, "err", err)
		span.SetStatus(codes.Error, err.Error())
		d.cache.Fail(e, nil, err)
		return e
	}
	span.SetAttributes(attribute.Int("insns", b.Count), attribute.Int("cycles", b.Cycles), attribute.Int("ops", len(b.Ops)))

	code, err := d.be.Compile(b)
	if errors.Is(err, sh4errors.ErrCArenaFull) {
		d.resetBackend("arena full")
		e = d.cache.Lookup(e.Key)
		if err := d.cache.Begin(e); err != nil {
			panic(err)
		}
		code, err = d.be.Compile(b)
	}
	if errors.Is(err, sh4errors.ErrCUnsupportedOp) && d.fallback != nil {
		log.Trace(log.Driver, "no native lowering, threading", "block", e.Key, "detail", err)
		var fc backend.Code
		if fc, err = d.fallback.Compile(b); err == nil {
			d.stats.Fallbacks++
			code = fallbackCode{fc}
			span.SetAttributes(attribute.String("fallback", d.fallback.Name()))
		}
	}
	d.bus.Watch(b.Start, b.End-b.Start)
	if err != nil {
		d.stats.CompileErrors++
		log.Warn(log.Driver, "codegen failed, interpreting", "block", e.Key, "err", sh4errors.GetErrorName(err), "detail", err)
		span.SetStatus(codes.Error, err.Error())
		d.cache.Fail(e, b, err)
		return e
	}
	span.SetAttributes(attribute.Int("codeSize", code.Size()))
	d.cache.Commit(e, b, code)
	return e
}

// build runs the IR pipeline. Invariant violations fall back to the
// unoptimized block unless Debug is set.
func (d *Driver) build(k blockcache.Key) (*ir.Block, error) {
	raw, err := d.em.EmitBlock(k.Mode, k.Addr)
	if err != nil {
		return nil, err
	}
	if _, err := ir.Resolve(raw, d.bus); err != nil {
		return nil, err
	}
	if !d.cfg.Optimize {
		return raw, nil
	}
	b := raw.Clone()
	err = d.optimize(b)
	if err == nil && d.cfg.Debug {
		err = ir.CheckLiveOut(raw, b, d.ctx, d.bus)
	}
	if err != nil {
		if d.cfg.Debug {
			panic(fmt.Sprintf("driver: block %s: %v", k, err))
		}
		d.stats.OptimizeErrors++
		log.Warn(log.Driver, "optimizer failed, using unoptimized block", "block", k, "err", err)
		return raw, nil
	}
	return b, nil
}

func (d *Driver) optimize(b *ir.Block) error {
	if _, err := ir.Optimize(b, ir.DefaultOptions()); err != nil {
		return err
	}
	if _, err := ir.Resolve(b, d.bus); err != nil {
		return err
	}
	_, err := ir.Optimize(b, ir.DefaultOptions())
	return err
}

// fallbackCode is threaded code standing in for a block the primary backend
// rejected. Its stores already go through the bus.
type fallbackCode struct{ backend.Code }

func (d *Driver) resetBackend(reason string) {
	d.stats.ArenaResets++
	d.be.Reset()
	if d.fallback != nil {
		d.fallback.Reset()
	}
	d.cache.InvalidateAll(reason)
	d.bus.ClearWatches()
}

// Stop asks a running Run to return at the next block boundary.
func (d *Driver) Stop() { d.stop.Store(true) }

// Run steps until at least maxCycles have elapsed, Stop is called or ctx is
// done. A maxCycles of zero runs until stopped. It returns the cycles run.
func (d *Driver) Run(ctx context.Context, maxCycles uint64) (uint64, error) {
	spanCtx, span := d.tracer.Start(ctx, "sh4.run", trace.WithAttributes(attribute.Int64("maxCycles", int64(maxCycles))))
	defer span.End()
	d.spanCtx = spanCtx
	defer func() { d.spanCtx = context.Background() }()

	var done uint64
	for maxCycles == 0 || done < maxCycles {
		if d.stop.CompareAndSwap(true, false) {
			span.SetAttributes(attribute.Int64("cycles", int64(done)))
			return done, sh4errors.ErrDStopped
		}
		if err := ctx.Err(); err != nil {
			return done, fmt.Errorf("%w: %w", sh4errors.ErrDStopped, err)
		}
		done += uint64(d.Step())
	}
	span.SetAttributes(attribute.Int64("cycles", int64(done)))
	return done, nil
}

// SaveState encodes the guest context.
func (d *Driver) SaveState() ([]byte, error) { return d.ctx.MarshalBinary() }

// LoadState replaces the guest context and drops every compiled block.
func (d *Driver) LoadState(blob []byte) error {
	var c cpu.Context
	if err := c.UnmarshalBinary(blob); err != nil {
		return err
	}
	*d.ctx = c
	d.pending = 0
	if d.be != nil {
		d.be.Reset()
	}
	if d.fallback != nil {
		d.fallback.Reset()
	}
	d.cache.InvalidateAll("load state")
	d.bus.ClearWatches()
	return nil
}
