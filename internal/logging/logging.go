// Package logging configures the process-wide logger. Schedule generation
// is silent on fallback by design, so provenance and conflict decisions are
// only visible here.
package logging

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is the global logger instance.
var Logger = log.NewWithOptions(os.Stderr, log.Options{Level: log.WarnLevel})

// Config holds logger configuration.
type Config struct {
	Debug  bool
	LogDir string
}

// Init initializes the global logger with rotating file output. When Debug
// is set, logs are mirrored to stderr at debug level.
func Init(cfg Config) error {
	if err := os.MkdirAll(cfg.LogDir, 0o755); err != nil {
		return err
	}

	fileWriter := &lumberjack.Logger{
		Filename:   filepath.Join(cfg.LogDir, "blockday.log"),
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}

	level := log.InfoLevel
	writer := io.Writer(fileWriter)
	if cfg.Debug {
		level = log.DebugLevel
		writer = io.MultiWriter(fileWriter, os.Stderr)
	}

	Logger = log.NewWithOptions(writer, log.Options{
		Level:           level,
		ReportTimestamp: true,
	})
	return nil
}
