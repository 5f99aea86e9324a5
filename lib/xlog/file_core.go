package xlog

import (
	"errors"
	"path/filepath"
	"strings"

	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// FileCoreConfig rotates the log file by size, the rotated files are
// named with a timestamp next to the log file.
type FileCoreConfig struct {
	Filename      string
	FileMaxSizeMB int
	FileMaxAge    int // Days
	FileMaxBackup int
}

func (cfg *FileCoreConfig) validate() error {
	if cfg == nil || len(strings.TrimSpace(cfg.Filename)) == 0 {
		return errors.New("[XLogger] file core without filename")
	}
	if cfg.FileMaxSizeMB <= 0 {
		cfg.FileMaxSizeMB = 100
	}
	if cfg.FileMaxAge < 0 {
		cfg.FileMaxAge = 0
	}
	if cfg.FileMaxBackup < 0 {
		cfg.FileMaxBackup = 0
	}
	cfg.Filename = filepath.Clean(cfg.Filename)
	return nil
}

type fileCore struct {
	*commonCore
	rotation *lumberjack.Logger
}

func (fc *fileCore) Close() error {
	return fc.rotation.Close()
}

func newFileCore(cfg *FileCoreConfig) XLogCoreConstructor {
	return func(
		lvlEnabler zapcore.LevelEnabler,
		encoder LogEncoderType,
		lvlEnc zapcore.LevelEncoder,
		tsEnc zapcore.TimeEncoder,
	) (XLogCore, error) {
		if err := cfg.validate(); err != nil {
			return nil, err
		}
		rotation := &lumberjack.Logger{
			Filename:   cfg.Filename,
			MaxSize:    cfg.FileMaxSizeMB,
			MaxAge:     cfg.FileMaxAge,
			MaxBackups: cfg.FileMaxBackup,
			LocalTime:  true,
		}
		return &fileCore{
			commonCore: newCommonCore(
				lvlEnabler,
				encoder,
				zapcore.Lock(zapcore.AddSync(rotation)),
				lvlEnc,
				tsEnc,
				consoleCoreEncoderCfg,
			),
			rotation: rotation,
		}, nil
	}
}
