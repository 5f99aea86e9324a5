package xlog

import (
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// FxXLogger adapts an XLogger to the fxevent.Logger of an fx application.
// Lifecycle events go to debug level under the "fx" component, failures
// to error level.
type FxXLogger struct {
	logger XLogger
}

func (l *FxXLogger) LogEvent(event fxevent.Event) {
	if l == nil || l.logger == nil {
		return
	}

	switch e := event.(type) {
	case *fxevent.OnStartExecuted:
		l.hookExecuted("OnStart", e.FunctionName, e.CallerName, e.Runtime.Milliseconds(), e.Err)
	case *fxevent.OnStopExecuted:
		l.hookExecuted("OnStop", e.FunctionName, e.CallerName, e.Runtime.Milliseconds(), e.Err)
	case *fxevent.Supplied:
		if e.Err != nil {
			l.logger.Error(e.Err, "SUPPLY failed", zap.String("type", e.TypeName))
			return
		}
		l.logger.Debug("SUPPLY", zap.String("type", e.TypeName))
	case *fxevent.Provided:
		if e.Err != nil {
			l.logger.Error(e.Err, "PROVIDE failed", zap.String("constructor", e.ConstructorName))
			return
		}
		l.logger.Debug("PROVIDE",
			zap.String("constructor", e.ConstructorName),
			zap.Strings("types", e.OutputTypeNames),
		)
	case *fxevent.Invoked:
		if e.Err != nil {
			l.logger.Error(e.Err, "INVOKE failed",
				zap.String("function", e.FunctionName),
				zap.String("trace", e.Trace),
			)
			return
		}
		l.logger.Debug("INVOKE", zap.String("function", e.FunctionName))
	case *fxevent.RollingBack:
		l.logger.Warn("start failed, rolling back", zap.Error(e.StartErr))
	case *fxevent.RolledBack:
		if e.Err != nil {
			l.logger.Error(e.Err, "couldn't roll back cleanly")
		}
	case *fxevent.Started:
		if e.Err != nil {
			l.logger.Error(e.Err, "failed to start")
			return
		}
		l.logger.Debug("RUNNING")
	case *fxevent.Stopped:
		if e.Err != nil {
			l.logger.Error(e.Err, "failed to stop cleanly")
		}
	case *fxevent.LoggerInitialized:
		if e.Err != nil {
			l.logger.Error(e.Err, "failed to initialize custom logger")
		}
	}
}

func (l *FxXLogger) hookExecuted(hook, function, caller string, ms int64, err error) {
	fields := []zap.Field{
		zap.String("hook", hook),
		zap.String("function", function),
		zap.String("caller", caller),
		zap.Int64("ms", ms),
	}
	if err != nil {
		l.logger.Error(err, "HOOK failed", fields...)
		return
	}
	l.logger.Debug("HOOK executed", fields...)
}

func NewFxXLogger(logger XLogger) *FxXLogger {
	return &FxXLogger{
		logger: newComponentXLogger(logger, "fx"),
	}
}
