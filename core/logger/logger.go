package logger

// LogFormat is format type
type LogFormat string

const (
	TextFormat LogFormat = "text"
	JSONFormat LogFormat = "json"
)

// LogLevel is Logger Level type
type LogLevel string

const (
	// TraceLevel has verbose message
	TraceLevel LogLevel = "trace"
	// DebugLevel has verbose message
	DebugLevel LogLevel = "debug"
	// InfoLevel is default log level
	InfoLevel LogLevel = "info"
	// WarnLevel is for logging messages about possible issues
	WarnLevel LogLevel = "warn"
	// ErrorLevel is for logging errors
	ErrorLevel LogLevel = "error"
	// FatalLevel is for logging fatal messages. The system shuts down after logging the message.
	FatalLevel LogLevel = "fatal"
)

type ILogger interface {
	WithFields(map[string]any) ILogger
	Trace(args ...any)
	Tracef(format string, args ...any)
	Debug(args ...any)
	Debugf(format string, args ...any)
	Info(args ...any)
	Infof(format string, args ...any)
	Warn(args ...any)
	Warnf(format string, args ...any)
	Error(args ...any)
	Errorf(format string, args ...any)
	Fatal(args ...any)
	Fatalf(format string, args ...any)
	GetLevel() LogLevel
	IsLevelEnabled(level LogLevel) bool
}

var (
	defaultLogger ILogger = &nopLogger{}
)

func Default() ILogger {
	return defaultLogger
}

func SetDefault(logger ILogger) {
	if logger != nil {
		defaultLogger = logger
	}
}

type nopLogger struct{}

func (l *nopLogger) WithFields(map[string]any) ILogger { return l }
func (l *nopLogger) Trace(args ...any) {}
func (l *nopLogger) Tracef(format string, args ...any) {}
func (l *nopLogger) Debug(args ...any) {}
func (l *nopLogger) Debugf(format string, args ...any) {}
func (l *nopLogger) Info(args ...any) {}
func (l *nopLogger) Infof(format string, args ...any) {}
func (l *nopLogger) Warn(args ...any) {}
func (l *nopLogger) Warnf(format string, args ...any) {}
func (l *nopLogger) Error(args ...any) {}
func (l *nopLogger) Errorf(format string, args ...any) {}
func (l *nopLogger) Fatal(args ...any) {}
func (l *nopLogger) Fatalf(format string, args ...any) {}
func (l *nopLogger) GetLevel() LogLevel { return "" }
func (l *nopLogger) IsLevelEnabled(level LogLevel) bool { return false }
