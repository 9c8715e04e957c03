package cache

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// badgerLogger routes badger's printf-style logging into slog.
type badgerLogger struct {
	log *slog.Logger
}

func newBadgerLogger(log *slog.Logger) *badgerLogger {
	return &badgerLogger{log: log}
}

func (l *badgerLogger) emit(level slog.Level, f string, v ...interface{}) {
	if !l.log.Enabled(context.Background(), level) {
		return
	}
	l.log.Log(context.Background(), level, strings.TrimSpace(fmt.Sprintf(f, v...)))
}

func (l *badgerLogger) Errorf(f string, v ...interface{}) { l.emit(slog.LevelError, f, v...) }

func (l *badgerLogger) Warningf(f string, v ...interface{}) { l.emit(slog.LevelWarn, f, v...) }

// Badger is chatty at info level; demote it.
func (l *badgerLogger) Infof(f string, v ...interface{}) { l.emit(slog.LevelDebug, f, v...) }

func (l *badgerLogger) Debugf(f string, v ...interface{}) { l.emit(slog.LevelDebug, f, v...) }
