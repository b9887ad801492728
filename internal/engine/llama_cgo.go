//go:build llama

package engine

// Linker hints for the llama backend: libllama.so is expected next to the
// binary at runtime ($ORIGIN rpath) and in ./bin at link time.
/*
#cgo LDFLAGS: -Wl,-rpath,'$ORIGIN' -L${SRCDIR}/../../bin -lllama
*/
import "C"
