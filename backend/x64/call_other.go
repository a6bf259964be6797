//go:build !amd64

package x64

const nativeCalls = false

func callBlock(entry, ctx uintptr) uint64 {
	panic("x64: native calls need an amd64 host")
}
