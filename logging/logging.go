// Package logging wraps zap behind the small Print/Printf/Println
// surface the facade and CLI need, mirroring the teacher's
// database.Logger shape while getting structured, leveled output from
// zap instead of hand-rolled fmt calls.
package logging

import (
	"go.uber.org/zap"
)

// Logger is the narrow logging surface the rest of the module depends
// on, so swapping the backing implementation never touches call sites.
type Logger interface {
	Print(v ...any)
	Printf(format string, v ...any)
	Println(v ...any)
}

type zapLogger struct {
	s *zap.SugaredLogger
}

// NewDevelopment returns a Logger backed by zap's development config:
// human-readable, colorized-if-a-TTY console output at debug level.
func NewDevelopment() (Logger, error) {
	l, err := zap.NewDevelopment()
	if err != nil {
		return nil, err
	}
	return &zapLogger{s: l.Sugar()}, nil
}

// NewProduction returns a Logger backed by zap's production config:
// JSON output at info level and above.
func NewProduction() (Logger, error) {
	l, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}
	return &zapLogger{s: l.Sugar()}, nil
}

func (z *zapLogger) Print(v ...any)                 { z.s.Info(v...) }
func (z *zapLogger) Printf(format string, v ...any) { z.s.Infof(format, v...) }
func (z *zapLogger) Println(v ...any)               { z.s.Info(v...) }

// Null discards everything, for library callers (tests, embedders)
// that never want log output.
type Null struct{}

func (Null) Print(v ...any)                 {}
func (Null) Printf(format string, v ...any) {}
func (Null) Println(v ...any)               {}
