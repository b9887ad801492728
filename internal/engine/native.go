package engine

// Native is the boundary to a native, blocking, single-threaded-at-a-time
// inference engine. Implementations are never called concurrently by a Bridge.
type Native interface {
	// Name identifies the backend (llama, shim, stub).
	Name() string
	// Init loads the model at path. It reports success only.
	Init(path string, contextSize, threadCount int32) bool
	// Generate runs one completion. On success out is a borrowed buffer the
	// caller must copy with String and then hand back with Release.
	Generate(prompt string, maxTokens int32, temperature float32, topK int32, topP float32) (ok bool, out Output)
	// Unload releases native resources. The return value is advisory.
	Unload() bool
}

// Output is a native-owned result buffer lent to the caller.
type Output interface {
	// String copies the buffer into Go memory.
	String() string
	// Release returns the buffer to the engine layer. Must be called once.
	Release()
}

// Diagnoser is optionally implemented by backends that can explain a failure.
type Diagnoser interface {
	LastError() string
}

// goOutput is an Output already living in Go memory; Release is a no-op.
type goOutput string

func (o goOutput) String() string { return string(o) }
func (o goOutput) Release()       {}

// stubNative refuses to initialize. It stands in for backends that were not
// compiled in or could not be loaded, so callers get a clear diagnostic.
type stubNative struct {
	name   string
	reason string
}

// NewStubNative returns a backend whose Init always fails with reason.
func NewStubNative(name, reason string) Native {
	return stubNative{name: name, reason: reason}
}

func (s stubNative) Name() string                  { return s.name }
func (s stubNative) Init(string, int32, int32) bool { return false }
func (s stubNative) Generate(string, int32, float32, int32, float32) (bool, Output) {
	return false, nil
}
func (s stubNative) Unload() bool      { return true }
func (s stubNative) LastError() string { return s.reason }

// LlamaBuilt reports whether the llama backend was compiled in.
func LlamaBuilt() bool { return llamaBuilt }
