package xlog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	res := make([]map[string]any, 0, len(lines))
	for _, line := range lines {
		if len(line) == 0 {
			continue
		}
		m := map[string]any{}
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		res = append(res, m)
	}
	return res
}

func TestParseLogLevel(t *testing.T) {
	testcases := []struct {
		in       string
		expected LogLevel
		hasErr   bool
	}{
		{"debug", LogLevelDebug, false},
		{" Info ", LogLevelInfo, false},
		{"WARN", LogLevelWarn, false},
		{"error", LogLevelError, false},
		{"trace", LogLevelDebug, true},
	}
	for _, tc := range testcases {
		t.Run(tc.in, func(tt *testing.T) {
			lvl, err := ParseLogLevel(tc.in)
			if tc.hasErr {
				require.Error(tt, err)
				return
			}
			require.NoError(tt, err)
			require.Equal(tt, tc.expected, lvl)
		})
	}

	require.Equal(t, zapcore.InfoLevel, getLogLevelOrDefault("info"))
	require.Equal(t, zapcore.DebugLevel, getLogLevelOrDefault(" "))
	require.Equal(t, zapcore.DebugLevel, getLogLevelOrDefault("unknown"))
}

func TestParseLogEncoder(t *testing.T) {
	enc, err := ParseLogEncoder("JSON")
	require.NoError(t, err)
	require.Equal(t, JSON, enc)
	enc, err = ParseLogEncoder("text")
	require.NoError(t, err)
	require.Equal(t, PlainText, enc)
	_, err = ParseLogEncoder("yaml")
	require.Error(t, err)
}

func TestXLogger_WriterAndLevel(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewXLogger(
		WithXLoggerWriter(buf),
		WithXLoggerLevel(LogLevelInfo),
		WithXLoggerEncoder(JSON),
	)
	require.Equal(t, "info", logger.Level())

	logger.Debug("hidden")
	logger.Info("tree built", zap.Int64("len", 5))
	logger.Error(errors.New("llrb red violation"), "verify failed")
	logger.Error(nil, "no error")
	logger.Logf(zapcore.WarnLevel, "replaced %d", 3)

	logger.IncreaseLogLevel(zapcore.DebugLevel)
	require.Equal(t, "debug", logger.Level())
	logger.Debug("visible")
	require.NoError(t, logger.Close())

	lines := decodeLines(t, buf)
	require.Len(t, lines, 5)
	require.Equal(t, "tree built", lines[0]["msg"])
	require.Equal(t, "INFO", lines[0]["lvl"])
	require.Equal(t, float64(5), lines[0]["len"])
	require.Equal(t, "llrb red violation", lines[1]["error"])
	require.NotContains(t, lines[2], "error")
	require.Equal(t, "replaced 3", lines[3]["msg"])
	require.Equal(t, "WARN", lines[3]["lvl"])
	require.Equal(t, "visible", lines[4]["msg"])
	require.Contains(t, lines[4]["callAt"], "xlog_test.go")
}

func TestXLogger_EnvLevel(t *testing.T) {
	t.Setenv("XLOG_LVL", "error")
	buf := &bytes.Buffer{}
	logger := NewXLogger(WithXLoggerWriter(buf))
	logger.Warn("hidden")
	logger.Error(errors.New("boom"), "shown")
	require.Len(t, decodeLines(t, buf), 1)
}

func TestXLogger_PlainText(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewXLogger(
		WithXLoggerWriter(buf),
		WithXLoggerEncoder(PlainText),
		WithXLoggerLevel(LogLevelDebug),
	)
	logger.Info("plain")
	_ = logger.Sync()
	require.Contains(t, buf.String(), "INFO")
	require.Contains(t, buf.String(), "plain")
	require.False(t, strings.HasPrefix(buf.String(), "{"))
}

func TestXLogger_LevelAndTimeEncoders(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewXLogger(
		WithXLoggerWriter(buf),
		WithXLoggerEncoder(JSON),
		WithXLoggerLevel(LogLevelDebug),
		WithXLoggerLevelEncoder(zapcore.LowercaseLevelEncoder),
		WithXLoggerTimeEncoder(zapcore.EpochMillisTimeEncoder),
	)
	logger.Info("encoded")
	_ = logger.Sync()
	lines := decodeLines(t, buf)
	require.Len(t, lines, 1)
	require.Equal(t, "info", lines[0]["lvl"])
	_, isNumber := lines[0]["ts"].(float64)
	require.True(t, isNumber)

	// Nil encoders fall back to colour levels and ISO8601 times.
	buf.Reset()
	logger = NewXLogger(
		WithXLoggerWriter(buf),
		WithXLoggerEncoder(PlainText),
		WithXLoggerLevel(LogLevelDebug),
		WithXLoggerLevelEncoder(nil),
		WithXLoggerTimeEncoder(nil),
	)
	logger.Warn("fallback")
	_ = logger.Sync()
	require.Contains(t, buf.String(), "\x1b[")
	require.Contains(t, buf.String(), "fallback")
}

func TestParseTimeEncoder(t *testing.T) {
	for _, name := range []string{"", "ISO8601", "rfc3339", "millis", "epoch"} {
		enc, err := ParseTimeEncoder(name)
		require.NoError(t, err)
		require.NotNil(t, enc)
	}
	_, err := ParseTimeEncoder("unix")
	require.Error(t, err)
}

func TestXLogger_ContextFields(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewXLogger(
		WithXLoggerWriter(buf),
		WithXLoggerLevel(LogLevelDebug),
		WithXLoggerContextFieldExtract("cmd"),
		WithXLoggerContextFieldExtract("seed", "rand_seed"),
		WithXLoggerContextFieldExtract("locale", ContextKeyMapToOmitempty),
	)
	ctx := context.WithValue(context.Background(), ContextKey("cmd"), "dedup")
	logger.InfoContext(ctx, "start")
	ctx = context.WithValue(ctx, ContextKey("locale"), "de")
	ctx = context.WithValue(ctx, ContextKey("seed"), 42)
	logger.DebugContext(ctx, "again")
	var nilCtx context.Context
	logger.InfoContext(nilCtx, "no context")

	lines := decodeLines(t, buf)
	require.Len(t, lines, 3)
	require.Equal(t, "dedup", lines[0]["cmd"])
	require.Equal(t, "nil", lines[0]["rand_seed"])
	require.NotContains(t, lines[0], "locale")
	require.Equal(t, "de", lines[1]["locale"])
	require.Equal(t, float64(42), lines[1]["rand_seed"])
	require.NotContains(t, lines[2], "cmd")
}

func TestXLogger_InvalidOptions(t *testing.T) {
	require.Panics(t, func() {
		NewXLogger(WithXLoggerEncoder(_encMax))
	})
	require.Panics(t, func() {
		NewXLogger(WithXLoggerWriter(nil))
	})
	require.Panics(t, func() {
		NewXLogger(WithXLoggerFileWriter(&FileCoreConfig{}))
	})
	require.NotPanics(t, func() {
		NewXLogger(nil, WithXLoggerStdErrWriter(), WithXLoggerStdOutWriter())
	})
}

func TestXLogger_FileWriter(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "llrb.log")
	buf := &bytes.Buffer{}
	logger := NewXLogger(
		WithXLoggerFileWriter(&FileCoreConfig{
			Filename:      filename,
			FileMaxSizeMB: 1,
			FileMaxBackup: 2,
		}),
		WithXLoggerWriter(buf),
		WithXLoggerLevel(LogLevelInfo),
	)
	logger.Info("to both")
	require.NoError(t, logger.Close())

	data, err := os.ReadFile(filename)
	require.NoError(t, err)
	require.Contains(t, string(data), "to both")
	require.Contains(t, buf.String(), "to both")
}

func TestAntsXLogger_ParentLogLevelChanged(t *testing.T) {
	var logger *AntsXLogger
	logger.Printf("test %d", 123)

	buf := &bytes.Buffer{}
	parent := NewXLogger(
		WithXLoggerWriter(buf),
		WithXLoggerLevel(LogLevelDebug),
		WithXLoggerEncoder(JSON),
	)
	logger = NewAntsXLogger(parent)
	parent.IncreaseLogLevel(zapcore.InfoLevel)
	logger.Printf("hidden %d", 1)
	parent.IncreaseLogLevel(zapcore.DebugLevel)
	logger.Printf("shown %d", 2)
	_ = parent.Sync()

	lines := decodeLines(t, buf)
	require.Len(t, lines, 1)
	require.Equal(t, "shown 2", lines[0]["msg"])
	require.Equal(t, "ants", lines[0]["component"])
	require.NotContains(t, lines[0], "callAt")
}

func TestFxXLogger_Events(t *testing.T) {
	var nilLogger *FxXLogger
	nilLogger.LogEvent(&fxevent.Started{})

	testcases := []struct {
		name    string
		event   fxevent.Event
		wantMsg string
		wantLvl string
	}{
		{
			name:    "on start executed",
			event:   &fxevent.OnStartExecuted{FunctionName: "f1", CallerName: "c1", Runtime: time.Millisecond},
			wantMsg: "HOOK executed",
			wantLvl: "DEBUG",
		},
		{
			name:    "on stop failed",
			event:   &fxevent.OnStopExecuted{FunctionName: "f2", CallerName: "c2", Err: errors.New("stop")},
			wantMsg: "HOOK failed",
			wantLvl: "ERROR",
		},
		{
			name:    "provided",
			event:   &fxevent.Provided{ConstructorName: "newTree", OutputTypeNames: []string{"tree.LLRBTree"}},
			wantMsg: "PROVIDE",
			wantLvl: "DEBUG",
		},
		{
			name:    "invoke failed",
			event:   &fxevent.Invoked{FunctionName: "run", Err: errors.New("invoke")},
			wantMsg: "INVOKE failed",
			wantLvl: "ERROR",
		},
		{
			name:    "rolling back",
			event:   &fxevent.RollingBack{StartErr: errors.New("start")},
			wantMsg: "start failed, rolling back",
			wantLvl: "WARN",
		},
		{
			name:    "started",
			event:   &fxevent.Started{},
			wantMsg: "RUNNING",
			wantLvl: "DEBUG",
		},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(tt *testing.T) {
			buf := &bytes.Buffer{}
			parent := NewXLogger(
				WithXLoggerWriter(buf),
				WithXLoggerLevel(LogLevelDebug),
				WithXLoggerEncoder(JSON),
			)
			NewFxXLogger(parent).LogEvent(tc.event)
			_ = parent.Sync()

			lines := decodeLines(tt, buf)
			require.Len(tt, lines, 1)
			require.Equal(tt, tc.wantMsg, lines[0]["msg"])
			require.Equal(tt, tc.wantLvl, lines[0]["lvl"])
			require.Equal(tt, "fx", lines[0]["component"])
		})
	}
}

func TestFxXLogger_AppLifecycle(t *testing.T) {
	buf := &bytes.Buffer{}
	parent := NewXLogger(
		WithXLoggerWriter(buf),
		WithXLoggerLevel(LogLevelDebug),
		WithXLoggerEncoder(JSON),
	)
	var started, stopped bool
	app := fx.New(
		fx.WithLogger(func() fxevent.Logger { return NewFxXLogger(parent) }),
		fx.Invoke(func(lc fx.Lifecycle) {
			lc.Append(fx.Hook{
				OnStart: func(context.Context) error {
					started = true
					return nil
				},
				OnStop: func(context.Context) error {
					stopped = true
					return nil
				},
			})
		}),
	)
	require.NoError(t, app.Err())
	require.NoError(t, app.Start(context.Background()))
	require.NoError(t, app.Stop(context.Background()))
	require.True(t, started)
	require.True(t, stopped)
	_ = parent.Sync()

	hooks := map[string]bool{}
	for _, line := range decodeLines(t, buf) {
		require.Equal(t, "fx", line["component"])
		if line["msg"] == "HOOK executed" {
			hooks[line["hook"].(string)] = true
		}
	}
	require.True(t, hooks["OnStart"])
	require.True(t, hooks["OnStop"])
}

func TestWrapCore(t *testing.T) {
	_, err := WrapCore(nil, componentCoreEncoderCfg)
	require.Error(t, err)

	buf := &bytes.Buffer{}
	lvl := zap.NewAtomicLevelAt(zapcore.DebugLevel)
	core, err := newWriterCore(buf)(lvl, JSON, zapcore.CapitalLevelEncoder, zapcore.ISO8601TimeEncoder)
	require.NoError(t, err)
	_, err = WrapCore(core, nil)
	require.Error(t, err)

	wrapped, err := WrapCore(core, componentCoreEncoderCfg)
	require.NoError(t, err)
	require.True(t, wrapped.Enabled(zapcore.DebugLevel))
	lvl.SetLevel(zapcore.ErrorLevel)
	require.False(t, wrapped.Enabled(zapcore.InfoLevel))
	require.Nil(t, wrapped.Check(zapcore.Entry{Level: zapcore.InfoLevel}, nil))
	require.NoError(t, wrapped.Write(zapcore.Entry{Level: zapcore.ErrorLevel, LoggerName: "wrapped", Message: "m"}, nil))
	require.Contains(t, buf.String(), `"component":"wrapped"`)
}
