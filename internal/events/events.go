// Package events carries lifecycle notifications from the locator and the
// engine bridge to whoever wants to observe them (logs, tests, status pages).
package events

// Event represents a lifecycle event.
// Minimal and stable: name + subject (model file or job id) and optional fields.
type Event struct {
	Name    string
	Subject string
	Fields  map[string]any
}

// Publisher receives events. Implementations should be lightweight and
// non-blocking; Publish must not panic.
type Publisher interface {
	Publish(Event)
}

// Nop drops events. It is the default publisher.
type Nop struct{}

func (Nop) Publish(Event) {}

// OrNop returns p, or Nop when p is nil.
func OrNop(p Publisher) Publisher {
	if p == nil {
		return Nop{}
	}
	return p
}
