package logger

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Global logger instance. Only the service layer and the entry points log; the
// storage and clipboard packages return errors instead.
var Logger *zap.SugaredLogger

func init() {
	// Safe no-op until Initialize is called
	Logger = zap.NewNop().Sugar()
}

// Verbosity levels for the -v style log.verbosity setting
const (
	VerbosityUser  = 0 // warnings and errors
	VerbosityInfo  = 1 // + flow progress
	VerbosityDebug = 2 // + file paths, watcher events
)

// Options selects the log destination and format.
type Options struct {
	// File receives the log when set; otherwise logs go to stderr.
	File      string
	Verbosity int
	JSON      bool
}

// VerbosityToLevel maps a verbosity count to a zap level
func VerbosityToLevel(verbosity int) zapcore.Level {
	switch {
	case verbosity <= VerbosityUser:
		return zapcore.WarnLevel
	case verbosity == VerbosityInfo:
		return zapcore.InfoLevel
	default:
		return zapcore.DebugLevel
	}
}

// Initialize replaces the global logger.
func Initialize(opts Options) error {
	l, err := New(opts)
	if err != nil {
		return err
	}
	Logger = l
	return nil
}

// New builds a logger without touching the global one.
func New(opts Options) (*zap.SugaredLogger, error) {
	sink := zapcore.Lock(os.Stderr)
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0755); err != nil {
			return nil, err
		}
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, err
		}
		sink = zapcore.AddSync(f)
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	var enc zapcore.Encoder
	if opts.JSON {
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	}

	core := zapcore.NewCore(enc, sink, VerbosityToLevel(opts.Verbosity))
	return zap.New(core).Sugar(), nil
}

// Sync flushes buffered log entries
func Sync() {
	_ = Logger.Sync()
}
