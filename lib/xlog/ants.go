package xlog

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// AntsXLogger adapts an XLogger to the ants.Logger of the worker pool.
// The pool messages are logged at debug level under the "ants" component.
type AntsXLogger struct {
	logger XLogger
}

func (l *AntsXLogger) Printf(format string, args ...any) {
	if l == nil {
		return
	}
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func NewAntsXLogger(logger XLogger) *AntsXLogger {
	return &AntsXLogger{
		logger: newComponentXLogger(logger, "ants"),
	}
}

// newComponentXLogger shares the parent's cores and level under the named
// component, with the component encoder config.
func newComponentXLogger(logger XLogger, name string) *xLogger {
	l := &xLogger{
		xcores: make([]XLogCore, 0, len(logger.cores())),
	}
	for _, core := range logger.cores() {
		if cc, err := WrapCore(core, componentCoreEncoderCfg); err == nil {
			l.xcores = append(l.xcores, cc)
		}
	}
	l.logger.Store(logger.
		zap().
		Named(name).
		WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
			return teeCore(l.xcores...)
		})),
	)
	return l
}
