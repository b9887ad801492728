//go:build !llama

package engine

// llamaBuilt indicates this binary was compiled without llama support.
const llamaBuilt = false

// NewLlamaNative returns a stub that refuses to initialize. Build with
// `-tags=llama` to link the in-process llama.cpp backend.
func NewLlamaNative() Native {
	return NewStubNative("llama", "llama support not built (missing 'llama' build tag)")
}
