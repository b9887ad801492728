package engine

import (
	"context"
	"runtime"

	"github.com/rs/zerolog"

	"keyboardai/internal/events"
	"keyboardai/pkg/types"
)

// Defaults applied when corresponding Config fields are unset.
const (
	// DefaultContextSize is a conservative context window for mobile-class memory budgets.
	DefaultContextSize = 512
	defaultQueueDepth  = 32
)

// DefaultThreads reserves two cores of headroom for the host UI, never going below two.
func DefaultThreads() int {
	return max(2, runtime.NumCPU()-2)
}

// ModelLocator resolves the model file to load on first use.
type ModelLocator interface {
	Locate(ctx context.Context) (types.ModelAsset, error)
}

// Config encapsulates all tunables for Bridge construction.
type Config struct {
	Native  Native
	Locator ModelLocator
	// ContextSize passed to native init. Fixed by policy.
	ContextSize int
	// Threads passed to native init.
	Threads int
	// QueueDepth bounds buffered jobs; submissions beyond it wait, they are not rejected.
	QueueDepth int

	Publisher events.Publisher
	Logger    *zerolog.Logger
}

func (c Config) withDefaults() Config {
	if c.Native == nil {
		c.Native = NewLlamaNative()
	}
	if c.ContextSize <= 0 {
		c.ContextSize = DefaultContextSize
	}
	if c.Threads <= 0 {
		c.Threads = DefaultThreads()
	}
	if c.QueueDepth <= 0 {
		c.QueueDepth = defaultQueueDepth
	}
	c.Publisher = events.OrNop(c.Publisher)
	if c.Logger == nil {
		nop := zerolog.Nop()
		c.Logger = &nop
	}
	return c
}
