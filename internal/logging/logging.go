// Package logging builds the server's slog logger from config.
package logging

import (
	"io"
	"log/slog"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/claude/athletconnect/internal/config"
)

// New returns a text logger writing to stdout and, when cfg.File is set, to a
// rotated log file. The returned close func flushes and closes that file.
func New(cfg config.LogConfig, stdout io.Writer) (*slog.Logger, func() error, error) {
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, nil, err
	}

	w := stdout
	closeFn := func() error { return nil }
	if cfg.File != "" {
		rotated := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
		}
		w = io.MultiWriter(stdout, rotated)
		closeFn = rotated.Close
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), closeFn, nil
}
