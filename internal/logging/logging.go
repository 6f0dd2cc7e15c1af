// Package logging configures the shared logrus logger for the console.
// Output goes to a rotating file: the TUI owns the terminal, so nothing
// may be written to stdout or stderr while it runs.
package logging

import (
	"io"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// SetupBaseLogger applies the base formatter and a conservative default
// level. Called from init in main before the config file is available.
func SetupBaseLogger() {
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	log.SetLevel(log.InfoLevel)
	log.SetOutput(io.Discard)
}

// Setup redirects the shared logger to a rotating file and applies the
// configured level.
func Setup(file, level string, maxSizeMB, maxBackups int) {
	if lvl, err := log.ParseLevel(level); err == nil {
		log.SetLevel(lvl)
	}
	if file == "" {
		return
	}
	_ = os.MkdirAll(filepath.Dir(file), 0o755)
	log.SetOutput(&lumberjack.Logger{
		Filename:   file,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
	})
}
