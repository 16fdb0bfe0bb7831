package diag

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// MsgData is a structured data attached to a log message
type MsgData map[string]interface{}

// Logger is a structured logger. Messages are printf style formats
type Logger interface {
	Error(ctx context.Context, msg string, args ...interface{})
	Warn(ctx context.Context, msg string, args ...interface{})
	Info(ctx context.Context, msg string, args ...interface{})
	Debug(ctx context.Context, msg string, args ...interface{})

	WithError(err error) Logger
	WithData(data MsgData) Logger
}

type logrusLogger struct {
	entry *logrus.Entry
}

func newLogrusLogger(out io.Writer) *logrusLogger {
	target := &logrus.Logger{
		Out:       out,
		Formatter: new(logrus.JSONFormatter),
		Hooks:     make(logrus.LevelHooks),
		Level:     logrus.DebugLevel,
	}
	return &logrusLogger{entry: logrus.NewEntry(target).WithField("v", 1)}
}

func (l *logrusLogger) derive(entry *logrus.Entry) *logrusLogger {
	return &logrusLogger{entry: entry}
}

func (l *logrusLogger) log(ctx context.Context, level logrus.Level, msg string, args ...interface{}) {
	if !l.entry.Logger.IsLevelEnabled(level) {
		return
	}
	entry := l.entry
	if ctx != nil {
		if fields := contextFields(ctx); len(fields) > 0 {
			entry = entry.WithField("context", fields)
		}
	}
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	entry.Log(level, msg)
}

func (l *logrusLogger) WithError(err error) Logger {
	return l.derive(l.entry.WithError(err))
}

func (l *logrusLogger) WithData(data MsgData) Logger {
	return l.derive(l.entry.WithField("msgData", data))
}

func (l *logrusLogger) withTime(t time.Time) *logrusLogger {
	return l.derive(l.entry.WithTime(t))
}

func (l *logrusLogger) Error(ctx context.Context, msg string, args ...interface{}) {
	l.log(ctx, logrus.ErrorLevel, msg, args...)
}

func (l *logrusLogger) Warn(ctx context.Context, msg string, args ...interface{}) {
	l.log(ctx, logrus.WarnLevel, msg, args...)
}

func (l *logrusLogger) Info(ctx context.Context, msg string, args ...interface{}) {
	l.log(ctx, logrus.InfoLevel, msg, args...)
}

func (l *logrusLogger) Debug(ctx context.Context, msg string, args ...interface{}) {
	l.log(ctx, logrus.DebugLevel, msg, args...)
}

// LoggingSystemSetup allows tuning the root logger
type LoggingSystemSetup interface {
	SetLogMode(mode string)
	SetLogLevel(level string)
	SetOutput(out io.Writer)
}

type loggingSystem struct {
	root        *logrusLogger
	projectRoot string
}

/*
SetLogMode switches the output. Possible values:
  - json: JSON lines to stdout
  - text: human readable lines to stdout
  - test: JSON lines appended to test.log in the project root
*/
func (s *loggingSystem) SetLogMode(mode string) {
	target := s.root.entry.Logger
	switch mode {
	case "json":
		target.Formatter = new(logrus.JSONFormatter)
		target.Out = os.Stdout
	case "text":
		target.Formatter = &logrus.TextFormatter{FullTimestamp: true}
		target.Out = os.Stdout
	case "test":
		path := filepath.Join(s.projectRoot, "test.log")
		file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0666)
		if err != nil {
			panic(err)
		}
		target.Formatter = new(logrus.JSONFormatter)
		target.Out = file
	default:
		panic(fmt.Sprintf("Unexpected log mode: %v", mode))
	}
}

// SetLogLevel sets min level to output: error, warn, info or debug
func (s *loggingSystem) SetLogLevel(level string) {
	logrusLevel, err := logrus.ParseLevel(level)
	if err != nil {
		panic(err)
	}
	s.root.entry.Logger.SetLevel(logrusLevel)
}

func (s *loggingSystem) SetOutput(out io.Writer) {
	s.root.entry.Logger.SetOutput(out)
}

var defaultLoggingSystem loggingSystem

func init() {
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		panic("Can not get project root")
	}
	defaultLoggingSystem.projectRoot = filepath.Join(file, "..", "..", "..", "..")
	defaultLoggingSystem.root = newLogrusLogger(os.Stdout)

	// test flags are not registered yet at init since go 1.13
	if flag.Lookup("test.v") == nil && !strings.HasSuffix(os.Args[0], ".test") {
		defaultLoggingSystem.SetLogMode("json")
	} else {
		defaultLoggingSystem.SetLogMode("test")
	}
}

// SetupLoggingSystem tunes the root logger all other loggers derive from.
// Call it once when the app starts
func SetupLoggingSystem(setup ...func(LoggingSystemSetup)) {
	for _, setupFn := range setup {
		setupFn(&defaultLoggingSystem)
	}
}

// CreateLogger returns a logger derived from the root one and tagged with
// the package of the caller. Suitable as a package wide logger
func CreateLogger() Logger {
	pkg := "unknown"
	if _, file, _, ok := runtime.Caller(1); ok {
		if rel, err := filepath.Rel(defaultLoggingSystem.projectRoot, filepath.Dir(file)); err == nil {
			pkg = rel
		}
	}
	root := defaultLoggingSystem.root
	return root.derive(root.entry.WithField("package", pkg))
}
