// Package milog implements the optional, process-wide diagnostic log
// described by spec §6.4: a file-backed sink with four severity levels,
// safe for concurrent use, that the parser core never requires in order
// to function.
//
// It is built on github.com/sirupsen/logrus, the logging library already
// present in the retrieved example corpus (vippsas/sqlcode's command
// layer opens a logrus.StandardLogger the same way a Sink opens its
// own).
package milog

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Level is one of the four severities spec §6.4 names.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) logrusLevel() logrus.Level {
	switch l {
	case LevelDebug:
		return logrus.DebugLevel
	case LevelInfo:
		return logrus.InfoLevel
	case LevelWarn:
		return logrus.WarnLevel
	case LevelError:
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

// Sink is a diagnostic log the driver and façade packages log to. It is
// safe for concurrent use by multiple goroutines because the underlying
// *logrus.Logger is.
type Sink struct {
	logger *logrus.Logger
	file   *os.File
}

// Open opens (creating if absent, appending otherwise) a file at path
// and returns a Sink logging at level and above to it.
func Open(path string, level Level) (*Sink, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	l := logrus.New()
	l.SetOutput(f)
	l.SetLevel(level.logrusLevel())
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return &Sink{logger: l, file: f}, nil
}

// NopSink returns a Sink that discards everything. driver.New and
// mi.New use this as the default so neither package ever needs to
// branch on "is logging enabled."
func NopSink() *Sink {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return &Sink{logger: l}
}

// Close releases the sink's underlying file, if any. It is a no-op on a
// NopSink.
func (s *Sink) Close() error {
	if s.file == nil {
		return nil
	}
	return s.file.Close()
}

func (s *Sink) Debugf(format string, args ...any) { s.logger.Debugf(format, args...) }
func (s *Sink) Infof(format string, args ...any)  { s.logger.Infof(format, args...) }
func (s *Sink) Warnf(format string, args ...any)  { s.logger.Warnf(format, args...) }
func (s *Sink) Errorf(format string, args ...any) { s.logger.Errorf(format, args...) }
