// Package logger configures the process-wide zap logger.
package logger

import (
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Defaults used before configuration is loaded.
const (
	DefaultLevel  = "info"
	DefaultFormat = "json"
)

// Bootstrap installs the default logger so configuration errors can be logged.
func Bootstrap() error {
	return Init(DefaultLevel, DefaultFormat)
}

// Init builds a zap logger for the given level and format ("json" or "console")
// and installs it as the global logger returned by zap.L().
func Init(level, format string) error {
	var zapCfg zap.Config
	if strings.EqualFold(format, "console") {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
		zapCfg.EncoderConfig.TimeKey = "ts"
		zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	lvl, err := zapcore.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		return eris.Wrap(err, "logger: parse level")
	}
	zapCfg.Level.SetLevel(lvl)

	l, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "logger: build")
	}
	zap.ReplaceGlobals(l)
	return nil
}
