// Package prefs holds the key/value preferences shared by every process of
// the application family: routing flags, remote settings, the onboarding hint
// counter and sticky mode/style choices.
//
// Writes are last-write-wins per key. There are no cross-key transactions.
package prefs

// Store is a raw preference store. Values are opaque bytes; Settings layers
// typed keys and defaults on top.
type Store interface {
	Get(key string) (value []byte, ok bool, err error)
	Set(key string, value []byte) error
	Delete(key string) error
	Close() error
}
