// Package logging builds the process-wide logr.Logger on top of zap.
package logging

import (
	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns the process logger. Verbose lowers the level so that V(1)
// debug output (per-decision retention traces) is emitted, using the
// development console encoding; otherwise output is production JSON at info.
func New(verbose bool) logr.Logger {
	var cfg zap.Config
	if verbose {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	return zapr.NewLogger(zap.Must(cfg.Build()))
}
