package types

// Location tells where a model asset lives.
type Location string

const (
	// LocationBundle is a read-only, per-process resource root.
	LocationBundle Location = "bundle"
	// LocationShared is the cross-process shared asset store.
	LocationShared Location = "shared"
)

// ModelAsset is a model weights file found by the locator.
type ModelAsset struct {
	// File name including extension.
	// example: gemma-3-270m-it.gguf
	Name string `json:"name" example:"gemma-3-270m-it.gguf"`
	// Absolute path to the file.
	Path string `json:"path"`
	// Size of the file in bytes.
	// example: 52428800
	SizeBytes int64 `json:"size_bytes" example:"52428800"`
	// Where the asset was found (bundle or shared).
	// example: shared
	Location Location `json:"location" example:"shared"`
}

// TransformRequest is the payload of POST /transform and of the remote transform service.
type TransformRequest struct {
	// Input text to transform.
	// example: hey are we still on for lunch
	Text string `json:"text" example:"hey are we still on for lunch"`
	// Transformation mode: enhance or reply.
	// example: reply
	Mode string `json:"mode" example:"reply"`
	// Writing style: formal, friendly, lovely, concise or technical.
	// example: friendly
	Style string `json:"style" example:"friendly"`
}

// TransformResponse carries the generated text.
type TransformResponse struct {
	// Generated text.
	// example: Yes! See you at noon.
	Text string `json:"text" example:"Yes! See you at noon."`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: invalid JSON body
	Error string `json:"error" example:"invalid JSON body"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
	// Guidance shown when the local model is missing and fallback is disabled.
	InstallHint string `json:"install_hint,omitempty"`
}

// EngineStatus summarizes the engine bridge of this process.
type EngineStatus struct {
	// Native backend name (llama, shim, stub).
	// example: llama
	Backend string `json:"backend" example:"llama"`
	// Lifecycle state: uninitialized or ready.
	// example: ready
	State string `json:"state" example:"ready"`
	// Model file the engine is bound to, if ready.
	ModelPath string `json:"model_path,omitempty"`
	// Context size passed to native init.
	// example: 512
	ContextSize int `json:"context_size" example:"512"`
	// Thread count passed to native init.
	// example: 6
	Threads int `json:"threads" example:"6"`
	// Jobs waiting for the serial worker.
	// example: 0
	QueueLen int `json:"queue_len" example:"0"`
	// Number of native calls currently running (0 or 1).
	// example: 1
	Inflight int `json:"inflight" example:"1"`
	// Total completed generations (success or failure).
	// example: 12
	GenerationsTotal uint64 `json:"generations_total" example:"12"`
	// Last init error recorded for diagnostics.
	LastError string `json:"last_error,omitempty"`
}

// PolicyStatus is the routing policy as read at request time.
type PolicyStatus struct {
	PreferLocal   bool `json:"prefer_local"`
	AllowFallback bool `json:"allow_fallback"`
	OfflineOnly   bool `json:"offline_only"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	Engine EngineStatus `json:"engine"`
	// Installed model in the shared store, if any.
	Installed *ModelAsset `json:"installed,omitempty"`
	// Human-readable size of the installed model.
	// example: 50.0 MB
	InstalledSize string       `json:"installed_size,omitempty" example:"50.0 MB"`
	Policy        PolicyStatus `json:"policy"`
	// Uptime of the server in seconds.
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// Server time in unix seconds.
	// example: 1700000000
	ServerTimeUnix int64 `json:"server_time_unix" example:"1700000000"`
}

// Settings is the user-editable routing and remote configuration. On writes,
// nil fields are left unchanged and an empty string clears the value.
type Settings struct {
	// Remote endpoint, normalized to carry a scheme.
	// example: https://api.example.com
	Endpoint *string `json:"endpoint,omitempty" example:"https://api.example.com"`
	// Remote API key; write-only, reads report api_key_set instead.
	APIKey    *string `json:"api_key,omitempty"`
	APIKeySet bool    `json:"api_key_set"`
	// Prefer the on-device model.
	PreferLocal *bool `json:"prefer_local,omitempty"`
	// Allow remote fallback when the local model fails.
	AllowFallback *bool `json:"allow_fallback,omitempty"`
}
