// Package log contains simple leveled logging implementation on top of stdlib logger.
// The cache takes a Logger by injection, so callers can pass an adapter to
// whatever logging stack they already run.
package log

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
)

// Logger interface is subset of github.com/uber-common/bark.Logger methods.
type Logger interface {
	Debug(args ...interface{})
	Debugf(format string, args ...interface{})
	Info(args ...interface{})
	Infof(format string, args ...interface{})
	Warn(args ...interface{})
	Warnf(format string, args ...interface{})
	Error(args ...interface{})
	Errorf(format string, args ...interface{})
	Panic(args ...interface{})
	Panicf(format string, args ...interface{})
	WithFields(keyValues LogFields) Logger
	Fields() Fields
}

type LogFields interface {
	Fields() map[string]interface{}
}

type Fields map[string]interface{}

func (f Fields) Fields() map[string]interface{} { return f }

type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
	PanicLevel
)

func (l Level) String() string {
	switch l {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	case PanicLevel:
		return "PANIC"
	}
	panic("unexpected level: " + strconv.Itoa(int(l)))
}

var stringToLevel = func() map[string]Level {
	var levels = []Level{DebugLevel, InfoLevel, WarnLevel, ErrorLevel, PanicLevel}
	res := make(map[string]Level, len(levels))
	for _, l := range levels {
		res[l.String()] = l
	}
	return res
}()

func LevelFromString(s string) (Level, error) {
	var err error
	l, ok := stringToLevel[s]
	if !ok {
		err = errors.New("invalid level " + s)
	}
	return l, err
}

const stdLoggerFlags = log.LstdFlags | log.Lmicroseconds

// NewLogger returns Logger writing entries of level l and above to w.
func NewLogger(l Level, w io.Writer) Logger {
	return &logger{
		std:   log.New(w, "", stdLoggerFlags),
		level: l,
	}
}

// Discard returns Logger that drops everything.
// It is the default for caches constructed without a logger.
func Discard() Logger {
	return &logger{
		std:   log.New(io.Discard, "", 0),
		level: PanicLevel,
	}
}

// logger is primitive stdlib log.Logger wrapper for more common interface.
type logger struct {
	std    *log.Logger
	level  Level
	fields Fields
}

func (l *logger) Fields() Fields { return l.fields }

func (l *logger) WithFields(keyValues LogFields) Logger {
	copy := *l

	extraFields := keyValues.Fields()
	if copy.fields == nil {
		copy.fields = extraFields
	} else {
		copy.fields = make(Fields, len(l.fields)+len(extraFields))
		for k, v := range l.fields {
			copy.fields[k] = v
		}
		for k, v := range extraFields {
			copy.fields[k] = v
		}
	}
	return &copy
}

func (l *logger) Debug(args ...interface{})                 { l.log(DebugLevel, args...) }
func (l *logger) Debugf(format string, args ...interface{}) { l.logf(DebugLevel, format, args...) }
func (l *logger) Info(args ...interface{})                  { l.log(InfoLevel, args...) }
func (l *logger) Infof(format string, args ...interface{})  { l.logf(InfoLevel, format, args...) }
func (l *logger) Warn(args ...interface{})                  { l.log(WarnLevel, args...) }
func (l *logger) Warnf(format string, args ...interface{})  { l.logf(WarnLevel, format, args...) }
func (l *logger) Error(args ...interface{})                 { l.log(ErrorLevel, args...) }
func (l *logger) Errorf(format string, args ...interface{}) { l.logf(ErrorLevel, format, args...) }

func (l *logger) Panic(args ...interface{}) {
	msg := fmt.Sprint(args...)
	l.log(PanicLevel, msg)
	panic(msg)
}

func (l *logger) Panicf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	l.log(PanicLevel, msg)
	panic(msg)
}

const loggerCallDepth = 3

func (l *logger) log(level Level, args ...interface{}) {
	if level >= l.level {
		l.std.Output(loggerCallDepth, format(level, l.fields, fmt.Sprint(args...)))
	}
}

func (l *logger) logf(level Level, f string, args ...interface{}) {
	if level >= l.level {
		l.std.Output(loggerCallDepth, format(level, l.fields, fmt.Sprintf(f, args...)))
	}
}

func format(l Level, f Fields, msg string) string {
	if len(f) == 0 {
		return l.String() + ": " + msg
	}
	fBytes, err := json.Marshal(f)
	if err != nil {
		panic(err)
	}
	return fmt.Sprintf("%s: %s %s", l.String(), fBytes, msg)
}
