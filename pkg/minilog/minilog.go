// Copyright 2015-2021 National Technology & Engineering Solutions of Sandia, LLC (NTESS).
// Under the terms of Contract DE-NA0003525 with NTESS, the U.S. Government retains certain
// rights in this software.

// Package minilog extends Go's logging functionality to allow for multiple
// loggers, each with their own level. Call AddLogger to register a
// destination, then use the package-level functions to send messages to
// every registered logger willing to log at that level.
package minilog

import (
	"errors"
	"fmt"
	"io"
	golog "log"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
)

type Level int

// Log levels supported, lowest to highest severity.
const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
	FATAL
)

func (l Level) String() string {
	switch l {
	case DEBUG:
		return "debug"
	case INFO:
		return "info"
	case WARN:
		return "warn"
	case ERROR:
		return "error"
	case FATAL:
		return "fatal"
	}
	return fmt.Sprintf("Level(%d)", int(l))
}

// ParseLevel returns the log level named by s.
func ParseLevel(s string) (Level, error) {
	switch s {
	case "debug":
		return DEBUG, nil
	case "info":
		return INFO, nil
	case "warn":
		return WARN, nil
	case "error":
		return ERROR, nil
	case "fatal":
		return FATAL, nil
	}
	return -1, errors.New("invalid log level")
}

type logger struct {
	*golog.Logger

	Level   Level
	filters []string
}

func (l *logger) prologue(level Level) string {
	var msg string

	switch level {
	case DEBUG:
		msg = "DEBUG "
	case INFO:
		msg = "INFO "
	case WARN:
		msg = "WARN "
	case ERROR:
		msg = "ERROR "
	default:
		msg = "FATAL "
	}

	if _, file, line, ok := runtime.Caller(4); ok {
		short := file
		for i := len(file) - 1; i > 0; i-- {
			if file[i] == '/' {
				short = file[i+1:]
				break
			}
		}
		msg += fmt.Sprintf("%s:%d: ", short, line)
	}

	return msg
}

func (l *logger) log(level Level, format string, arg ...interface{}) {
	msg := l.prologue(level) + fmt.Sprintf(format, arg...)
	for _, f := range l.filters {
		if strings.Contains(msg, f) {
			return
		}
	}
	l.Println(msg)
}

func (l *logger) logln(level Level, arg ...interface{}) {
	msg := l.prologue(level) + fmt.Sprint(arg...)
	for _, f := range l.filters {
		if strings.Contains(msg, f) {
			return
		}
	}
	l.Println(msg)
}

var (
	loggers = make(map[string]*logger)
	mu      sync.RWMutex
)

// AddLogger registers a logger named name that writes to output, logging
// only events at level or higher.
func AddLogger(name string, output io.Writer, level Level) {
	mu.Lock()
	defer mu.Unlock()

	loggers[name] = &logger{Logger: golog.New(output, "", golog.LstdFlags)}
	loggers[name].Level = level
}

// AddLogRing registers a Ring as a named logger, letting recent log entries
// be retained in memory and dumped later (e.g. for an operator "show recent
// errors" diagnostic) without reading back through a file or terminal
// scrollback. Unlike AddLogger, the underlying golog.Logger carries no flags:
// Ring.Println already composes its own timestamp, so a second one from
// golog would double up on every entry.
func AddLogRing(name string, r *Ring, level Level) {
	mu.Lock()
	defer mu.Unlock()

	loggers[name] = &logger{Logger: golog.New(r, "", 0)}
	loggers[name].Level = level
}

// DelLogger removes a named logger added with AddLogger.
func DelLogger(name string) {
	mu.Lock()
	defer mu.Unlock()

	delete(loggers, name)
}

// WillLog reports whether logging at level would produce output on any
// registered logger. Useful when the message itself is expensive to build.
func WillLog(level Level) bool {
	mu.RLock()
	defer mu.RUnlock()

	for _, l := range loggers {
		if l.Level <= level {
			return true
		}
	}
	return false
}

func SetLevel(name string, level Level) error {
	mu.Lock()
	defer mu.Unlock()

	l, ok := loggers[name]
	if !ok {
		return fmt.Errorf("no such logger %v", name)
	}
	l.Level = level
	return nil
}

func AddFilter(name, filter string) error {
	mu.Lock()
	defer mu.Unlock()

	l, ok := loggers[name]
	if !ok {
		return fmt.Errorf("no such logger %v", name)
	}
	for _, f := range l.filters {
		if f == filter {
			return nil
		}
	}
	l.filters = append(l.filters, filter)
	return nil
}

// Init sets up the stderr logger at the given level. Called once at process
// startup, before any connection is accepted or dialed, so no locking
// against concurrent readers is required.
func Init(level Level) {
	AddLogger("stderr", os.Stderr, level)
}

// InitFile additionally logs to the named file, creating its parent
// directory if necessary.
func InitFile(path string, level Level) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0660)
	if err != nil {
		return err
	}

	AddLogger("file", f, level)
	return nil
}

func log(level Level, format string, arg ...interface{}) {
	mu.RLock()
	defer mu.RUnlock()

	for _, l := range loggers {
		if l.Level <= level {
			l.log(level, format, arg...)
		}
	}
}

func logln(level Level, arg ...interface{}) {
	mu.RLock()
	defer mu.RUnlock()

	for _, l := range loggers {
		if l.Level <= level {
			l.logln(level, arg...)
		}
	}
}

func Debug(format string, arg ...interface{}) { log(DEBUG, format, arg...) }
func Info(format string, arg ...interface{})  { log(INFO, format, arg...) }
func Warn(format string, arg ...interface{})  { log(WARN, format, arg...) }
func Error(format string, arg ...interface{}) { log(ERROR, format, arg...) }

func Fatal(format string, arg ...interface{}) {
	log(FATAL, format, arg...)
	os.Exit(1)
}

func Debugln(arg ...interface{}) { logln(DEBUG, arg...) }
func Infoln(arg ...interface{})  { logln(INFO, arg...) }
func Warnln(arg ...interface{})  { logln(WARN, arg...) }
func Errorln(arg ...interface{}) { logln(ERROR, arg...) }

func Fatalln(arg ...interface{}) {
	logln(FATAL, arg...)
	os.Exit(1)
}
