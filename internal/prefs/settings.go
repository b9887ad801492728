package prefs

import (
	"encoding/json"
	"strconv"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/rs/zerolog"

	"keyboardai/internal/prompt"
	"keyboardai/pkg/types"
)

// Preference keys.
const (
	KeyUseLocalModel = "useLocalModel"
	KeyAllowFallback = "allowRemoteFallback"
	KeyEndpoint      = "api.endpoint"
	KeyAPIKey        = "api.key"
	KeyHintUses      = "tipUsesRemaining"
	KeyLastReply     = "lastGeneratedReply"
	stickyPrefix     = "sticky."
)

// DefaultHintUses is the onboarding hint counter before any use.
const DefaultHintUses = 5

// Settings gives typed, defaulted access to a Store. Every getter reads the
// store, so changes made by another process are seen on the next call.
type Settings struct {
	store Store
	log   zerolog.Logger
	// hintMu makes DecrementHint atomic within this process.
	hintMu sync.Mutex
}

// NewSettings wraps store. A nil logger disables logging.
func NewSettings(store Store, logger *zerolog.Logger) *Settings {
	l := zerolog.Nop()
	if logger != nil {
		l = logger.With().Str("component", "prefs").Logger()
	}
	return &Settings{store: store, log: l}
}

// Store returns the underlying store.
func (s *Settings) Store() Store { return s.store }

func (s *Settings) get(key string) ([]byte, bool) {
	v, ok, err := s.store.Get(key)
	if err != nil {
		// unreadable values behave as unset
		s.log.Warn().Err(err).Str("key", key).Msg("read preference")
		return nil, false
	}
	return v, ok
}

func (s *Settings) boolOr(key string, def bool) bool {
	v, ok := s.get(key)
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(string(v))
	if err != nil {
		return def
	}
	return b
}

func (s *Settings) setBool(key string, v bool) error {
	return s.store.Set(key, []byte(strconv.FormatBool(v)))
}

func (s *Settings) str(key string) string {
	v, _ := s.get(key)
	return string(v)
}

// PreferLocal reports whether the on-device model is preferred. Default true.
func (s *Settings) PreferLocal() bool { return s.boolOr(KeyUseLocalModel, true) }

// SetPreferLocal stores the local-first flag.
func (s *Settings) SetPreferLocal(v bool) error { return s.setBool(KeyUseLocalModel, v) }

// AllowFallback reports whether a failed local generation may go remote. Default false.
func (s *Settings) AllowFallback() bool { return s.boolOr(KeyAllowFallback, false) }

// SetAllowFallback stores the fallback flag.
func (s *Settings) SetAllowFallback(v bool) error { return s.setBool(KeyAllowFallback, v) }

// NormalizeEndpoint trims raw and adds an https scheme when none is given.
// ok is false when the trimmed input is empty.
func NormalizeEndpoint(raw string) (endpoint string, ok bool) {
	e := strings.TrimSpace(raw)
	if e == "" {
		return "", false
	}
	if strings.Contains(e, "://") {
		return e, true
	}
	return "https://" + e, true
}

// Endpoint returns the stored remote endpoint, or "".
func (s *Settings) Endpoint() string { return s.str(KeyEndpoint) }

// SetEndpoint normalizes and stores raw. Empty input deletes the endpoint.
func (s *Settings) SetEndpoint(raw string) error {
	e, ok := NormalizeEndpoint(raw)
	if !ok {
		return s.store.Delete(KeyEndpoint)
	}
	return s.store.Set(KeyEndpoint, []byte(e))
}

// APIKey returns the stored remote API key, or "".
func (s *Settings) APIKey() string { return s.str(KeyAPIKey) }

// SetAPIKey stores key. Empty input deletes it.
func (s *Settings) SetAPIKey(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return s.store.Delete(KeyAPIKey)
	}
	return s.store.Set(KeyAPIKey, []byte(key))
}

// HintUsesRemaining returns how many more times the onboarding hint shows.
func (s *Settings) HintUsesRemaining() int {
	v, ok := s.get(KeyHintUses)
	if !ok {
		return DefaultHintUses
	}
	n, err := strconv.Atoi(string(v))
	if err != nil {
		return DefaultHintUses
	}
	return max(0, n)
}

// DecrementHint consumes one hint use and returns the remaining count. It
// never goes below zero.
func (s *Settings) DecrementHint() (int, error) {
	s.hintMu.Lock()
	defer s.hintMu.Unlock()
	n := s.HintUsesRemaining()
	if n == 0 {
		return 0, nil
	}
	n--
	return n, s.store.Set(KeyHintUses, []byte(strconv.Itoa(n)))
}

// StickyKey describes the text field the keyboard is attached to. Mode and
// style choices are remembered per distinct key.
type StickyKey struct {
	ReturnKey    string `json:"return_key"`
	KeyboardType string `json:"keyboard_type"`
	AutoCap      string `json:"auto_cap"`
}

func (k StickyKey) storeKey() string {
	h := xxhash.New()
	_, _ = h.WriteString(k.ReturnKey)
	_, _ = h.WriteString("\x00")
	_, _ = h.WriteString(k.KeyboardType)
	_, _ = h.WriteString("\x00")
	_, _ = h.WriteString(k.AutoCap)
	return stickyPrefix + strconv.FormatUint(h.Sum64(), 16)
}

// StickyPref is the remembered mode and style for a StickyKey.
type StickyPref struct {
	Mode  prompt.Mode  `json:"mode"`
	Style prompt.Style `json:"style"`
}

// DefaultSticky is used when nothing is stored for k: reply for fields whose
// return key sends or finishes a message, enhance otherwise.
func DefaultSticky(k StickyKey) StickyPref {
	p := StickyPref{Mode: prompt.ModeEnhance, Style: prompt.StyleFormal}
	switch strings.ToLower(k.ReturnKey) {
	case "send", "done":
		p.Mode = prompt.ModeReply
	}
	return p
}

// Sticky returns the remembered preference for k, or DefaultSticky(k).
func (s *Settings) Sticky(k StickyKey) StickyPref {
	v, ok := s.get(k.storeKey())
	if !ok {
		return DefaultSticky(k)
	}
	var p StickyPref
	if err := json.Unmarshal(v, &p); err != nil {
		s.log.Warn().Err(err).Msg("decode sticky preference")
		return DefaultSticky(k)
	}
	return p
}

// SaveSticky remembers p for k.
func (s *Settings) SaveSticky(k StickyKey, p StickyPref) error {
	b, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return s.store.Set(k.storeKey(), b)
}

// LastReply returns the reply handed over by the share surface, if any.
func (s *Settings) LastReply() string { return s.str(KeyLastReply) }

// SetLastReply stores a generated reply for later insertion.
func (s *Settings) SetLastReply(text string) error {
	return s.store.Set(KeyLastReply, []byte(text))
}

// ClearLastReply forgets the stored reply once it has been inserted.
func (s *Settings) ClearLastReply() error { return s.store.Delete(KeyLastReply) }

// Snapshot reports the user-editable settings. The API key itself is not
// included, only whether one is set.
func (s *Settings) Snapshot() types.Settings {
	pl, af, ep := s.PreferLocal(), s.AllowFallback(), s.Endpoint()
	return types.Settings{
		Endpoint:      &ep,
		APIKeySet:     s.APIKey() != "",
		PreferLocal:   &pl,
		AllowFallback: &af,
	}
}

// Apply writes the non-nil fields of in.
func (s *Settings) Apply(in types.Settings) error {
	if in.Endpoint != nil {
		if err := s.SetEndpoint(*in.Endpoint); err != nil {
			return err
		}
	}
	if in.APIKey != nil {
		if err := s.SetAPIKey(*in.APIKey); err != nil {
			return err
		}
	}
	if in.PreferLocal != nil {
		if err := s.SetPreferLocal(*in.PreferLocal); err != nil {
			return err
		}
	}
	if in.AllowFallback != nil {
		if err := s.SetAllowFallback(*in.AllowFallback); err != nil {
			return err
		}
	}
	return nil
}
