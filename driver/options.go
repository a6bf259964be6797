package driver

import (
	"github.com/colorfulnotion/sh4core/backend"
	"github.com/colorfulnotion/sh4core/interpreter"
	"github.com/colorfulnotion/sh4core/memory"
	"go.opentelemetry.io/otel/trace"
)

type Option func(*Driver)

// WithCycleCallback reports the cycles consumed by every step.
func WithCycleCallback(f func(cycles int)) Option {
	return func(d *Driver) { d.onCycles = f }
}

// WithUnimplementedHook is called for every instruction the interpreter
// does not model.
func WithUnimplementedHook(f interpreter.UnimplementedFunc) Option {
	return func(d *Driver) { d.unimpl = f }
}

// WithTracer records compile and run spans.
func WithTracer(t trace.Tracer) Option {
	return func(d *Driver) { d.tracer = t }
}

// WithPrefetcher receives pref requests for the store queue area.
func WithPrefetcher(p memory.Prefetcher) Option {
	return func(d *Driver) { d.prefetch = p }
}

// WithBackend replaces the backend named by Config.Backend.
func WithBackend(b backend.Backend) Option {
	return func(d *Driver) { d.be = b }
}
