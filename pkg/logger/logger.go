package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Logger используется во всех слоях приложения.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(err error, format string, args ...any)
	With(args ...any) Logger
}

// SlogLogger реализует Logger поверх log/slog.
type SlogLogger struct {
	l *slog.Logger
}

// NewSlogLogger создаёт JSON-логгер, пишущий в stdout.
// Уровень берётся из LOG_LEVEL (debug, info, warn, error), по умолчанию info.
func NewSlogLogger() *SlogLogger {
	return NewSlogLoggerWithWriter(os.Stdout, parseLevel(os.Getenv("LOG_LEVEL")))
}

func NewSlogLoggerWithWriter(w io.Writer, level slog.Level) *SlogLogger {
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	return &SlogLogger{l: slog.New(h)}
}

// NewNopLogger возвращает логгер, который ничего не пишет. Удобен в тестах.
func NewNopLogger() *SlogLogger {
	return NewSlogLoggerWithWriter(io.Discard, slog.LevelError+1)
}

func (s *SlogLogger) Debugf(format string, args ...any) {
	s.log(slog.LevelDebug, fmt.Sprintf(format, args...))
}

func (s *SlogLogger) Infof(format string, args ...any) {
	s.log(slog.LevelInfo, fmt.Sprintf(format, args...))
}

func (s *SlogLogger) Warnf(format string, args ...any) {
	s.log(slog.LevelWarn, fmt.Sprintf(format, args...))
}

func (s *SlogLogger) Errorf(err error, format string, args ...any) {
	if err == nil {
		s.log(slog.LevelError, fmt.Sprintf(format, args...))
		return
	}
	s.log(slog.LevelError, fmt.Sprintf(format, args...), slog.String("error", err.Error()))
}

// With возвращает логгер с дополнительными атрибутами.
func (s *SlogLogger) With(args ...any) Logger {
	return &SlogLogger{l: s.l.With(args...)}
}

func (s *SlogLogger) log(level slog.Level, msg string, attrs ...slog.Attr) {
	s.l.LogAttrs(context.Background(), level, msg, attrs...)
}

func parseLevel(v string) slog.Level {
	switch v {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
