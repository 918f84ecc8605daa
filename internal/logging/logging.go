// Package logging builds the process logger and installs it into contexts.
package logging

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/facebookincubator/go-belt/tool/logger"
	xlogrus "github.com/facebookincubator/go-belt/tool/logger/implementation/logrus"
	"github.com/sirupsen/logrus"
)

// Config selects the verbosity and an optional log file.
type Config struct {
	Level string `mapstructure:"level" yaml:"level"`
	File  string `mapstructure:"file"  yaml:"file,omitempty"`
}

// ParseLevel converts a level name (trace, debug, info, warning, error) to a
// logger.Level.
func ParseLevel(s string) (logger.Level, error) {
	var l logger.Level
	if err := l.Set(strings.TrimSpace(s)); err != nil {
		return logger.LevelUndefined, fmt.Errorf("unexpected logger level '%s': %w", s, err)
	}
	if l == logger.LevelUndefined {
		return logger.LevelUndefined, fmt.Errorf("unexpected logger level '%s'", s)
	}
	return l, nil
}

// New returns a logrus-backed logger. Output goes to stderr, and also to
// cfg.File when set. The returned closer releases the file.
func New(cfg Config) (logger.Logger, io.Closer, error) {
	level := logger.LevelWarning
	if cfg.Level != "" {
		var err error
		if level, err = ParseLevel(cfg.Level); err != nil {
			return nil, nil, err
		}
	}

	ll := xlogrus.DefaultLogrusLogger()
	var closer io.Closer = nopCloser{}
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o640)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file '%s': %w", cfg.File, err)
		}
		ll.SetOutput(io.MultiWriter(os.Stderr, f))
		closer = f
	} else {
		ll.SetOutput(os.Stderr)
	}

	l := xlogrus.New(ll).WithLevel(level)
	logrus.SetLevel(xlogrus.LevelToLogrus(level))
	return l, closer, nil
}

// CtxWithLogger installs l into ctx and makes it the fallback for contexts
// that carry no logger.
func CtxWithLogger(ctx context.Context, l logger.Logger) context.Context {
	logger.Default = func() logger.Logger {
		return l
	}
	return logger.CtxWithLogger(ctx, l)
}

// SetLevel changes the level of the logger carried by ctx.
func SetLevel(ctx context.Context, level logger.Level) context.Context {
	return logger.CtxWithLogger(ctx, logger.FromCtx(ctx).WithLevel(level))
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
