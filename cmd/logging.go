package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/khanhnv2901/seca-scan/internal/shared/constants"
)

// newLogger builds a JSON logger writing to console and, when cfg.File is set,
// to a rotated file. The returned func flushes and closes the file.
func newLogger(cfg LogConfig, defaultLevel string, console io.Writer) (*zap.Logger, func(), error) {
	levelName := strings.TrimSpace(cfg.Level)
	if levelName == "" {
		levelName = defaultLevel
	}
	level, err := zapcore.ParseLevel(levelName)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid log level %q: %w", levelName, err)
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoder := zapcore.NewJSONEncoder(encoderCfg)

	sinks := []zapcore.WriteSyncer{zapcore.Lock(zapcore.AddSync(console))}
	var rotator *lumberjack.Logger
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), constants.DefaultDirPerm); err != nil {
			return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		rotator = &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   true,
		}
		sinks = append(sinks, zapcore.AddSync(rotator))
	}

	core := zapcore.NewCore(encoder, zapcore.NewMultiWriteSyncer(sinks...), level)
	logger := zap.New(core, zap.AddCaller())

	var once sync.Once
	closeFn := func() {
		once.Do(func() {
			_ = logger.Sync()
			if rotator != nil {
				_ = rotator.Close()
			}
		})
	}
	return logger, closeFn, nil
}
