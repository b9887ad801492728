//go:build darwin || linux

package engine

import (
	"fmt"
	"runtime"
	"unsafe"

	"github.com/ebitengine/purego"
)

// shimNative calls a C library exporting the kb_llm_* ABI:
//
//	int kb_llm_init(const char *model_path, int n_ctx, int n_threads);
//	int kb_llm_unload(void);
//	int kb_llm_generate(const char *prompt, int max_tokens, float temp,
//	                    int top_k, float top_p, const char **out_text);
//
// out_text is malloc'd by the library and released with libc free.
type shimNative struct {
	libPath  string
	init     func(path string, nCtx, nThreads int32) int32
	generate func(prompt string, maxTokens int32, temp float32, topK int32, topP float32, out *uintptr) int32
	unload   func() int32
	free     func(ptr uintptr)
}

// OpenShim loads the shim library at libPath and resolves its symbols.
func OpenShim(libPath string) (Native, error) {
	lib, err := purego.Dlopen(libPath, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return nil, ErrDependencyUnavailable(fmt.Sprintf("load shim %s: %v", libPath, err))
	}
	n := &shimNative{libPath: libPath}
	for sym, fptr := range map[string]any{
		"kb_llm_init":     &n.init,
		"kb_llm_generate": &n.generate,
		"kb_llm_unload":   &n.unload,
	} {
		addr, err := purego.Dlsym(lib, sym)
		if err != nil {
			return nil, ErrDependencyUnavailable(fmt.Sprintf("shim %s: missing symbol %s", libPath, sym))
		}
		purego.RegisterFunc(fptr, addr)
	}
	libc, err := purego.Dlopen(libcPath(), purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return nil, ErrDependencyUnavailable(fmt.Sprintf("load libc: %v", err))
	}
	freeAddr, err := purego.Dlsym(libc, "free")
	if err != nil {
		return nil, ErrDependencyUnavailable("libc: missing symbol free")
	}
	purego.RegisterFunc(&n.free, freeAddr)
	return n, nil
}

func libcPath() string {
	if runtime.GOOS == "darwin" {
		return "/usr/lib/libSystem.B.dylib"
	}
	return "libc.so.6"
}

func (n *shimNative) Name() string { return "shim" }

func (n *shimNative) Init(path string, contextSize, threadCount int32) bool {
	return n.init(path, contextSize, threadCount) != 0
}

func (n *shimNative) Generate(prompt string, maxTokens int32, temperature float32, topK int32, topP float32) (bool, Output) {
	var out uintptr
	ok := n.generate(prompt, maxTokens, temperature, topK, topP, &out) != 0
	if out == 0 {
		return ok, nil
	}
	return ok, &cOutput{ptr: out, free: n.free}
}

func (n *shimNative) Unload() bool { return n.unload() != 0 }

// cOutput is a malloc'd, NUL-terminated C string owned by the shim.
type cOutput struct {
	ptr  uintptr
	free func(uintptr)
}

func (o *cOutput) String() string {
	if o.ptr == 0 {
		return ""
	}
	p := *(*unsafe.Pointer)(unsafe.Pointer(&o.ptr))
	n := 0
	for *(*byte)(unsafe.Add(p, n)) != 0 {
		n++
	}
	return string(unsafe.Slice((*byte)(p), n))
}

func (o *cOutput) Release() {
	if o.ptr != 0 {
		o.free(o.ptr)
		o.ptr = 0
	}
}
