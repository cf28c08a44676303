// Package compiler turns style sources into rule tables. Values are compiled
// into expression trees which are evaluated against runtime environment when
// styles are resolved.
package compiler

import (
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"stylewind/common"
	"stylewind/config"
)

const defaultRem = 16

// Compiler keeps compilation settings and collects diagnostics. It is not
// safe for concurrent use.
type Compiler struct {
	log      *zap.Logger
	rem      float64
	platform common.Platform
	themes   []string
	diags    []error
}

// New creates compiler for style configuration.
func New(cfg *config.StyleConfig, log *zap.Logger) *Compiler {
	if log == nil {
		log = zap.NewNop()
	}
	c := &Compiler{
		log:      log.Named("compiler"),
		rem:      defaultRem,
		platform: common.PlatformIOS,
	}
	if cfg != nil {
		if cfg.Polyfills.Rem > 0 {
			c.rem = cfg.Polyfills.Rem
		}
		if cfg.Platform != "" {
			c.platform = cfg.Platform
		}
		c.themes = cfg.AllThemes()
	}
	return c
}

// Diagnostics returns all problems noticed so far combined into single error
// or nil.
func (c *Compiler) Diagnostics() error {
	return multierr.Combine(c.diags...)
}

func (c *Compiler) diag(msg string, value string, fields ...zap.Field) {
	c.log.Warn(msg, append([]zap.Field{zap.String("value", value)}, fields...)...)
	c.diags = append(c.diags, fmt.Errorf("%s: %s", msg, value))
}
