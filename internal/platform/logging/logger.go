package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"fxconvert/internal/config"

	"github.com/sirupsen/logrus"
)

// Logger is the process logger. It is created once in app.Run and handed to
// every component; Close flushes the optional log file.
type Logger struct {
	*logrus.Logger
	file *os.File
}

func New(cfg config.Logging) (*Logger, error) {
	l := logrus.New()
	l.SetOutput(os.Stdout)

	if parsedLvl, parseErr := logrus.ParseLevel(cfg.Level); parseErr != nil {
		l.SetLevel(logrus.InfoLevel)
	} else {
		l.SetLevel(parsedLvl)
	}

	if strings.EqualFold(cfg.Format, "json") {
		l.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02 15:04:05"})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: "2006-01-02 15:04:05"})
	}

	logger := &Logger{Logger: l}
	if cfg.File == "" {
		return logger, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	l.SetOutput(io.MultiWriter(os.Stdout, f))
	logger.file = f
	return logger, nil
}

func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	l.SetOutput(os.Stdout)
	if err := l.file.Sync(); err != nil {
		_ = l.file.Close()
		return err
	}
	err := l.file.Close()
	l.file = nil
	return err
}
