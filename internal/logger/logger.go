// Package logger provides the engine's structured, leveled logging: a
// console sink plus an optional rotating file sink when a log file is set.
package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Log is the process-wide logger. cmd/ear calls Init once at startup;
// every other package logs through this handle.
var Log *zap.Logger

// RotationConfig controls the lumberjack-backed file sink.
type RotationConfig struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

func defaultRotation(path string) RotationConfig {
	return RotationConfig{Path: path, MaxSizeMB: 20, MaxBackups: 5, MaxAgeDays: 14}
}

// Init builds the global logger at the given level (debug/info/warn/
// error), with an optional rotating file sink at logFile. Pass an empty
// logFile to log to stderr only.
func Init(level, logFile string) {
	InitWithRotation(level, logFile, defaultRotation(logFile))
}

// InitWithRotation is Init with an explicit rotation policy.
func InitWithRotation(level, logFile string, rotation RotationConfig) {
	lvl := parseLevel(level)

	consoleEncoder := zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
		TimeKey:      "time",
		LevelKey:     "level",
		MessageKey:   "msg",
		EncodeTime:   zapcore.TimeEncoderOfLayout("15:04:05"),
		EncodeLevel:  zapcore.CapitalLevelEncoder,
		EncodeCaller: zapcore.ShortCallerEncoder,
	})
	cores := []zapcore.Core{zapcore.NewCore(consoleEncoder, zapcore.AddSync(os.Stderr), lvl)}

	if logFile != "" {
		fileWriter := &lumberjack.Logger{
			Filename:   rotation.Path,
			MaxSize:    rotation.MaxSizeMB,
			MaxBackups: rotation.MaxBackups,
			MaxAge:     rotation.MaxAgeDays,
			LocalTime:  true,
		}
		fileEncoder := zapcore.NewJSONEncoder(zapcore.EncoderConfig{
			TimeKey:      "time",
			LevelKey:     "level",
			MessageKey:   "msg",
			EncodeTime:   zapcore.ISO8601TimeEncoder,
			EncodeLevel:  zapcore.LowercaseLevelEncoder,
			EncodeCaller: zapcore.ShortCallerEncoder,
		})
		cores = append(cores, zapcore.NewCore(fileEncoder, zapcore.AddSync(fileWriter), lvl))
	}

	Log = zap.New(zapcore.NewTee(cores...))
}

func parseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Sync flushes buffered log entries; call before process exit.
func Sync() {
	if Log != nil {
		_ = Log.Sync()
	}
}

func ensure() *zap.Logger {
	if Log == nil {
		Init("info", "")
	}
	return Log
}

func Debug(msg string, fields ...zap.Field) { ensure().Debug(msg, fields...) }
func Info(msg string, fields ...zap.Field)  { ensure().Info(msg, fields...) }
func Warn(msg string, fields ...zap.Field)  { ensure().Warn(msg, fields...) }
func Error(msg string, fields ...zap.Field) { ensure().Error(msg, fields...) }
