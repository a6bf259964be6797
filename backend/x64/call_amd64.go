package x64

// nativeCalls reports whether generated code can be entered on this host.
const nativeCalls = true

//go:noescape
func callBlock(entry, ctx uintptr) uint64
