//go:build llama

package engine

import (
	"strings"

	llama "github.com/go-skynet/go-llama.cpp"
)

// llamaBuilt indicates this binary was compiled with real llama support.
const llamaBuilt = true

// llamaNative owns one in-process go-llama.cpp model.
type llamaNative struct {
	model   *llama.LLama
	threads int
	lastErr string
}

// NewLlamaNative returns the in-process llama.cpp backend.
func NewLlamaNative() Native { return &llamaNative{} }

func (n *llamaNative) Name() string { return "llama" }

func (n *llamaNative) Init(path string, contextSize, threadCount int32) bool {
	if n.model != nil {
		return true
	}
	if strings.TrimSpace(path) == "" {
		n.lastErr = "model path is empty"
		return false
	}
	m, err := llama.New(path, llama.SetContext(int(contextSize)))
	if err != nil {
		n.lastErr = err.Error()
		return false
	}
	n.model = m
	n.threads = int(threadCount)
	n.lastErr = ""
	return true
}

func (n *llamaNative) Generate(prompt string, maxTokens int32, temperature float32, topK int32, topP float32) (bool, Output) {
	if n.model == nil {
		n.lastErr = "llama model not initialized"
		return false, nil
	}
	text, err := n.model.Predict(prompt,
		llama.SetTokens(max(1, int(maxTokens))),
		llama.SetThreads(max(1, n.threads)),
		llama.SetTopK(zn(int(topK), llama.DefaultOptions.TopK)),
		llama.SetTopP(zf(topP, llama.DefaultOptions.TopP)),
		llama.SetTemperature(zf(temperature, llama.DefaultOptions.Temperature)),
	)
	if err != nil {
		n.lastErr = err.Error()
		return false, nil
	}
	return true, goOutput(text)
}

func (n *llamaNative) Unload() bool {
	if n.model != nil {
		n.model.Free()
		n.model = nil
	}
	return true
}

func (n *llamaNative) LastError() string { return n.lastErr }

func zn(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}

func zf(v, def float32) float32 {
	if v > 0 {
		return v
	}
	return def
}
