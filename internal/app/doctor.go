package app

import (
	"fmt"

	"keyboardai/internal/engine"
	"keyboardai/internal/locator"
)

// Check is one line of the doctor report.
type Check struct {
	Name   string `json:"name"`
	OK     bool   `json:"ok"`
	Detail string `json:"detail"`
}

// Doctor reports whether this process could serve a local generation: shared
// store reachable, a model found, a native backend present. It does not load
// the model.
func (a *App) Doctor() []Check {
	var out []Check
	dir := a.locator.SharedDir()
	switch {
	case dir == "":
		out = append(out, Check{Name: "shared store", Detail: "not configured"})
	case a.locator.SharedReachable():
		out = append(out, Check{Name: "shared store", OK: true, Detail: dir})
	default:
		out = append(out, Check{Name: "shared store", Detail: dir + " (not provisioned, run `model install`)"})
	}

	if m, ok := a.locator.Installed(); ok {
		out = append(out, Check{Name: "installed model", OK: true, Detail: fmt.Sprintf("%s (%s)", m.Path, locator.FileSize(m.Path))})
	} else {
		out = append(out, Check{Name: "installed model", Detail: "none"})
	}
	if m, ok := a.locator.Bundled(); ok {
		out = append(out, Check{Name: "bundled model", OK: true, Detail: m.Path})
	} else {
		out = append(out, Check{Name: "bundled model", Detail: "none"})
	}

	st := a.engine.Status()
	switch st.Backend {
	case "stub":
		out = append(out, Check{Name: "native backend", Detail: "stub (no native engine)"})
	case "llama":
		if engine.LlamaBuilt() {
			out = append(out, Check{Name: "native backend", OK: true, Detail: "llama"})
		} else {
			out = append(out, Check{Name: "native backend", Detail: "llama (binary built without -tags llama)"})
		}
	default:
		out = append(out, Check{Name: "native backend", OK: true, Detail: st.Backend})
	}
	p := a.router.Policy()
	out = append(out, Check{Name: "routing", OK: true, Detail: fmt.Sprintf("prefer_local=%t allow_fallback=%t offline_only=%t", p.PreferLocal, p.AllowFallback, p.OfflineOnly)})
	if st.LastError != "" {
		out = append(out, Check{Name: "last engine error", Detail: st.LastError})
	}
	return out
}
