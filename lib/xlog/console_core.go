package xlog

import (
	"io"
	"os"

	"go.uber.org/zap/zapcore"
)

var (
	writerMap = map[LogOutWriterType]zapcore.WriteSyncer{
		StdOut: zapcore.Lock(os.Stdout),
		StdErr: zapcore.Lock(os.Stderr),
	}
	encoderMap = map[LogEncoderType]func(cfg zapcore.EncoderConfig) zapcore.Encoder{
		JSON:      zapcore.NewJSONEncoder,
		PlainText: zapcore.NewConsoleEncoder,
	}
)

func getEncoderByType(typ LogEncoderType) func(cfg zapcore.EncoderConfig) zapcore.Encoder {
	enc, ok := encoderMap[typ]
	if !ok {
		return zapcore.NewJSONEncoder
	}
	return enc
}

func getOutWriterByType(typ LogOutWriterType) zapcore.WriteSyncer {
	out, ok := writerMap[typ]
	if !ok {
		return zapcore.Lock(os.Stderr)
	}
	return out
}

var consoleCoreEncoderCfg = zapcore.EncoderConfig{
	MessageKey:    "msg",
	LevelKey:      "lvl",
	TimeKey:       "ts",
	CallerKey:     "callAt",
	EncodeCaller:  zapcore.ShortCallerEncoder,
	FunctionKey:   coreKeyIgnored,
	NameKey:       "component",
	EncodeName:    zapcore.FullNameEncoder,
	StacktraceKey: coreKeyIgnored,
}

func newConsoleCore(writer LogOutWriterType) XLogCoreConstructor {
	return newWriteSyncerCore(getOutWriterByType(writer))
}

// newWriterCore logs into an arbitrary writer, e.g. a buffer in tests.
func newWriterCore(w io.Writer) XLogCoreConstructor {
	return newWriteSyncerCore(zapcore.Lock(zapcore.AddSync(w)))
}

func newWriteSyncerCore(ws zapcore.WriteSyncer) XLogCoreConstructor {
	return func(
		lvlEnabler zapcore.LevelEnabler,
		encoder LogEncoderType,
		lvlEnc zapcore.LevelEncoder,
		tsEnc zapcore.TimeEncoder,
	) (XLogCore, error) {
		return newCommonCore(lvlEnabler, encoder, ws, lvlEnc, tsEnc, consoleCoreEncoderCfg), nil
	}
}
