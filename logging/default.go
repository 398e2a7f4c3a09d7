package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strings"
	"sync"
)

// DefaultLogger writes Debug/Info to stdout and Warn/Error/Fatal to stderr.
// Warn is yellow, Error red, Fatal bold red when colors are on.
type DefaultLogger struct {
	stdoutLogger *log.Logger
	stderrLogger *log.Logger
	level        *Level
	fields       Fields
	useColors    bool
}

// NewDefaultLogger creates a new default logger with colored output on terminals
func NewDefaultLogger() *DefaultLogger {
	return NewWriterLogger(os.Stdout, os.Stderr, isTerminal())
}

// NewWriterLogger creates a default logger over arbitrary writers
func NewWriterLogger(out, errOut io.Writer, colors bool) *DefaultLogger {
	level := InfoLevel
	return &DefaultLogger{
		stdoutLogger: log.New(out, "", log.LstdFlags),
		stderrLogger: log.New(errOut, "", log.LstdFlags),
		level:        &level,
		fields:       make(Fields),
		useColors:    colors,
	}
}

func isTerminal() bool {
	if fileInfo, _ := os.Stdout.Stat(); fileInfo != nil {
		return (fileInfo.Mode() & os.ModeCharDevice) != 0
	}
	return false
}

// formatFields renders fields sorted by key so output is stable
func formatFields(fields Fields) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%v", k, fields[k])
	}
	return strings.Join(parts, " ")
}

func (d *DefaultLogger) formatMessage(level Level, err error, msg string, fields ...Fields) string {
	allFields := mergeFields(d.fields, fields...)

	logMsg := fmt.Sprintf("[%s] %s", level.String(), msg)
	if err != nil {
		logMsg += fmt.Sprintf(": %v", err)
	}
	if len(allFields) > 0 {
		logMsg += " " + formatFields(allFields)
	}

	if d.useColors {
		switch level {
		case WarnLevel:
			logMsg = ColorYellow + logMsg + ColorReset
		case ErrorLevel:
			logMsg = ColorRed + logMsg + ColorReset
		case FatalLevel:
			logMsg = ColorBold + ColorRed + logMsg + ColorReset
		}
	}

	return logMsg
}

func (d *DefaultLogger) log(level Level, err error, msg string, fields ...Fields) {
	if level < *d.level {
		return
	}

	formattedMsg := d.formatMessage(level, err, msg, fields...)

	switch level {
	case DebugLevel, InfoLevel:
		d.stdoutLogger.Println(formattedMsg)
	case WarnLevel, ErrorLevel:
		d.stderrLogger.Println(formattedMsg)
	case FatalLevel:
		d.stderrLogger.Println(formattedMsg)
		os.Exit(1)
	}
}

func (d *DefaultLogger) Debug(msg string, fields ...Fields) {
	d.log(DebugLevel, nil, msg, fields...)
}

func (d *DefaultLogger) Info(msg string, fields ...Fields) {
	d.log(InfoLevel, nil, msg, fields...)
}

func (d *DefaultLogger) Warn(msg string, fields ...Fields) {
	d.log(WarnLevel, nil, msg, fields...)
}

func (d *DefaultLogger) Error(err error, msg string, fields ...Fields) {
	d.log(ErrorLevel, err, msg, fields...)
}

func (d *DefaultLogger) Fatal(err error, msg string, fields ...Fields) {
	d.log(FatalLevel, err, msg, fields...)
}

// WithFields shares the level with its parent so SetLevel on the root applies everywhere
func (d *DefaultLogger) WithFields(fields Fields) Logger {
	return &DefaultLogger{
		stdoutLogger: d.stdoutLogger,
		stderrLogger: d.stderrLogger,
		level:        d.level,
		fields:       mergeFields(d.fields, fields),
		useColors:    d.useColors,
	}
}

func (d *DefaultLogger) SetLevel(level Level) {
	*d.level = level
}

// NoOpLogger discards everything
type NoOpLogger struct{}

func (n *NoOpLogger) Debug(msg string, fields ...Fields)            {}
func (n *NoOpLogger) Info(msg string, fields ...Fields)             {}
func (n *NoOpLogger) Warn(msg string, fields ...Fields)             {}
func (n *NoOpLogger) Error(err error, msg string, fields ...Fields) {}
func (n *NoOpLogger) Fatal(err error, msg string, fields ...Fields) {}
func (n *NoOpLogger) WithFields(fields Fields) Logger               { return n }
func (n *NoOpLogger) SetLevel(level Level)                          {}

// Entry is one record captured by a Recorder
type Entry struct {
	Level   Level
	Message string
	Err     error
	Fields  Fields
}

// Recorder keeps every entry in memory. Loggers derived with WithFields append
// to the same store.
type Recorder struct {
	mu      *sync.Mutex
	entries *[]Entry
	fields  Fields
	level   *Level
}

// NewRecorder returns an empty recorder capturing from DebugLevel
func NewRecorder() *Recorder {
	level := DebugLevel
	return &Recorder{
		mu:      &sync.Mutex{},
		entries: &[]Entry{},
		fields:  make(Fields),
		level:   &level,
	}
}

func (r *Recorder) record(level Level, err error, msg string, fields ...Fields) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if level < *r.level {
		return
	}
	*r.entries = append(*r.entries, Entry{
		Level:   level,
		Message: msg,
		Err:     err,
		Fields:  mergeFields(r.fields, fields...),
	})
}

func (r *Recorder) Debug(msg string, fields ...Fields) { r.record(DebugLevel, nil, msg, fields...) }
func (r *Recorder) Info(msg string, fields ...Fields)  { r.record(InfoLevel, nil, msg, fields...) }
func (r *Recorder) Warn(msg string, fields ...Fields)  { r.record(WarnLevel, nil, msg, fields...) }

func (r *Recorder) Error(err error, msg string, fields ...Fields) {
	r.record(ErrorLevel, err, msg, fields...)
}

// Fatal records the entry without exiting
func (r *Recorder) Fatal(err error, msg string, fields ...Fields) {
	r.record(FatalLevel, err, msg, fields...)
}

func (r *Recorder) WithFields(fields Fields) Logger {
	return &Recorder{
		mu:      r.mu,
		entries: r.entries,
		fields:  mergeFields(r.fields, fields),
		level:   r.level,
	}
}

func (r *Recorder) SetLevel(level Level) {
	r.mu.Lock()
	defer r.mu.Unlock()
	*r.level = level
}

// Entries returns a copy of everything recorded so far
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, len(*r.entries))
	copy(out, *r.entries)
	return out
}

// AtLevel returns the recorded entries with exactly the given level
func (r *Recorder) AtLevel(level Level) []Entry {
	var out []Entry
	for _, e := range r.Entries() {
		if e.Level == level {
			out = append(out, e)
		}
	}
	return out
}
