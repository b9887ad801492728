// Package engine owns the lifecycle of the process's native inference engine.
// It is structured into small files by concern:
//
//   - native.go: the native boundary (Native, Output) and the stub backend.
//   - native_llama.go: in-process go-llama.cpp backend. Enabled with `-tags=llama`.
//     llama_cgo.go carries the linker hints; native_llama_stub.go replaces the
//     backend with a dependency error when the tag is not set.
//   - native_shim.go: purego backend for a C library exporting kb_llm_init,
//     kb_llm_generate and kb_llm_unload. No CGO required (darwin, linux).
//   - config.go: Config and package defaults.
//   - bridge.go: Bridge state machine (Init, EnsureReady, Unload, Close).
//   - worker.go: serial worker, Submit and Generate.
//   - pressure.go: memory-pressure driven unloads.
//   - errors.go: error types and IsX helpers.
//
// A Bridge runs every native call on one goroutine-guarded lane: at most one
// native call is in flight per Bridge, and jobs complete in submission order.
package engine
