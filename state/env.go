// Package state defines shared program state.
package state

import (
	"go.uber.org/zap"

	"stylewind/config"
)

// LocalEnv keeps everything embedding application needs in a single place.
type LocalEnv struct {
	Cfg     *config.Config
	Log     *zap.Logger
	Runtime *Runtime
}

// NewLocalEnv creates environment with runtime initialized from host
// according to configured platform and default theme. Nil logger is
// replaced with no-op one.
func NewLocalEnv(cfg *config.Config, log *zap.Logger, host Host) *LocalEnv {
	if log == nil {
		log = zap.NewNop()
	}
	rt := NewRuntime(host, cfg.Style.Platform, cfg.Style.DefaultTheme)
	log.Debug("Runtime initialized",
		zap.Float64("width", rt.Screen.Width),
		zap.Float64("height", rt.Screen.Height),
		zap.Stringer("orientation", rt.Orientation),
		zap.Stringer("scheme", rt.ColorScheme),
		zap.String("theme", rt.ThemeName),
		zap.Bool("rtl", rt.RTL),
		zap.String("platform", string(rt.Platform)))
	return &LocalEnv{
		Cfg:     cfg,
		Log:     log,
		Runtime: rt,
	}
}
