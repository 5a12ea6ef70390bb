// Package logging provides the process-wide logger for trailmcp.
// Callers dot-import it and use L_info, L_debug, etc. directly.
//
// Stdout belongs to the MCP transport, so nothing here ever writes to it.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

// Log levels
const (
	LevelFatal = iota
	LevelError
	LevelWarn
	LevelInfo
	LevelDebug
	LevelTrace
)

var (
	logger  *log.Logger
	once    sync.Once
	logFile *os.File
)

// Config holds logging configuration
type Config struct {
	Level      int
	TimeFormat string
	ShowCaller bool
	File       string    // optional file that receives a copy of every line
	Output     io.Writer // defaults to os.Stderr
}

// DefaultConfig returns the defaults used when Init is never called
func DefaultConfig() *Config {
	return &Config{
		Level:      LevelInfo,
		TimeFormat: "15:04:05",
		ShowCaller: false,
	}
}

// ParseLevel maps a level name to one of the Level constants.
// Unknown names fall back to LevelInfo with ok=false.
func ParseLevel(name string) (level int, ok bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "trace":
		return LevelTrace, true
	case "debug":
		return LevelDebug, true
	case "info", "":
		return LevelInfo, true
	case "warn", "warning":
		return LevelWarn, true
	case "error":
		return LevelError, true
	case "fatal":
		return LevelFatal, true
	}
	return LevelInfo, false
}

// Init initializes the global logger. Only the first call has an effect.
func Init(cfg *Config) {
	once.Do(func() {
		if cfg == nil {
			cfg = DefaultConfig()
		}

		var out io.Writer = os.Stderr
		if cfg.Output != nil {
			out = cfg.Output
		}
		if cfg.File != "" {
			f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
			if err != nil {
				fmt.Fprintf(os.Stderr, "logging: cannot open %s: %v\n", cfg.File, err)
			} else {
				logFile = f
				out = io.MultiWriter(out, f)
			}
		}

		logger = log.NewWithOptions(out, log.Options{
			ReportTimestamp: true,
			TimeFormat:      cfg.TimeFormat,
			ReportCaller:    cfg.ShowCaller,
			CallerOffset:    2, // logMsg -> L_* -> caller
		})
		logger.SetLevel(charmLevel(cfg.Level))
	})
}

// Close flushes and closes the optional log file.
func Close() {
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
}

func charmLevel(level int) log.Level {
	switch level {
	case LevelTrace, LevelDebug:
		return log.DebugLevel
	case LevelWarn:
		return log.WarnLevel
	case LevelError, LevelFatal:
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

func ensureInit() {
	if logger == nil {
		Init(nil)
	}
}

// hasFmtVerb reports whether s looks like a printf format string
func hasFmtVerb(s string) bool {
	for i := 0; i < len(s)-1; i++ {
		if s[i] == '%' {
			next := s[i+1]
			if next != '%' && strings.ContainsRune("vsdtfgeopqxXbcUT+#", rune(next)) {
				return true
			}
		}
	}
	return false
}

// logMsg accepts three call shapes:
//
//	L_info("message")
//	L_info("value is %d", 42)
//	L_info("loaded", "key", val, ...)
func logMsg(level log.Level, msg string, args ...interface{}) {
	ensureInit()

	var keyvals []interface{}
	switch {
	case len(args) == 0:
	case hasFmtVerb(msg):
		msg = fmt.Sprintf(msg, args...)
	default:
		keyvals = args
	}

	switch level {
	case log.DebugLevel:
		logger.Debug(msg, keyvals...)
	case log.InfoLevel:
		logger.Info(msg, keyvals...)
	case log.WarnLevel:
		logger.Warn(msg, keyvals...)
	case log.ErrorLevel:
		logger.Error(msg, keyvals...)
	case log.FatalLevel:
		logger.Fatal(msg, keyvals...)
	}
}

// L_trace logs at trace level (mapped to debug)
func L_trace(msg string, args ...interface{}) {
	logMsg(log.DebugLevel, msg, args...)
}

// L_debug logs at debug level
func L_debug(msg string, args ...interface{}) {
	logMsg(log.DebugLevel, msg, args...)
}

// L_info logs at info level
func L_info(msg string, args ...interface{}) {
	logMsg(log.InfoLevel, msg, args...)
}

// L_warn logs at warn level
func L_warn(msg string, args ...interface{}) {
	logMsg(log.WarnLevel, msg, args...)
}

// L_error logs at error level
func L_error(msg string, args ...interface{}) {
	logMsg(log.ErrorLevel, msg, args...)
}

// L_fatal logs at fatal level and exits. Prefer returning an error from
// main paths so the browser gets shut down first.
func L_fatal(msg string, args ...interface{}) {
	logMsg(log.FatalLevel, msg, args...)
}

// SetLevel changes the log level at runtime
func SetLevel(level int) {
	ensureInit()
	logger.SetLevel(charmLevel(level))
}

