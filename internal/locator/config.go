package locator

import (
	"github.com/rs/zerolog"

	"keyboardai/internal/events"
	"keyboardai/internal/registry"
)

// DefaultCanonicalName is the model file searched for first in bundle roots.
const DefaultCanonicalName = "gemma-3-270m-it.gguf"

// Config configures a Locator.
type Config struct {
	// SharedDir is the cross-process shared store. Empty means not provisioned.
	SharedDir string
	// BundleRoots are this process's read-only resource roots in priority order.
	BundleRoots []string
	// CanonicalName is preferred over any other model file in the bundle roots.
	CanonicalName string
	// Ext is the model file extension including the dot.
	Ext string

	Publisher events.Publisher
	Logger    *zerolog.Logger
}

func (c Config) withDefaults() Config {
	if c.CanonicalName == "" {
		c.CanonicalName = DefaultCanonicalName
	}
	if c.Ext == "" {
		c.Ext = registry.DefaultExt
	}
	c.Publisher = events.OrNop(c.Publisher)
	if c.Logger == nil {
		nop := zerolog.Nop()
		c.Logger = &nop
	}
	c.BundleRoots = append([]string(nil), c.BundleRoots...)
	return c
}
