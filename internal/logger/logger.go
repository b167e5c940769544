package logger

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is the process-wide logger. It stays nil until Init, and every
// helper below is a no-op while it is.
var Logger *log.Logger

type Config struct {
	Debug     bool
	ConfigDir string
}

// FilePath is where Init writes the rotating log for a settings directory.
func FilePath(configDir string) string {
	return filepath.Join(configDir, "logs", "habitual.log")
}

// Init opens the rotating log file next to the settings database. The log
// stays off the terminal unless debugging, since the TUI owns the screen.
func Init(cfg Config) error {
	path := FilePath(cfg.ConfigDir)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	var w io.Writer = &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10,
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	}
	level := log.InfoLevel
	if cfg.Debug {
		level = log.DebugLevel
		w = io.MultiWriter(os.Stderr, w)
	}

	Logger = log.NewWithOptions(w, log.Options{
		ReportCaller:    cfg.Debug,
		ReportTimestamp: true,
		Level:           level,
		Prefix:          "habitual",
	})
	return nil
}

func Debug(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Debug(msg, keyvals...)
	}
}

func Info(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Info(msg, keyvals...)
	}
}

func Warn(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Warn(msg, keyvals...)
	}
}

func Error(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Error(msg, keyvals...)
	}
}

// Fatal logs and exits with status 1, logger or not.
func Fatal(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Fatal(msg, keyvals...)
	}
	os.Exit(1)
}

// RequestLog tags every line with one service call's method, path and
// request ID, so a failure shown to the user can be matched to the log.
type RequestLog struct {
	l     *log.Logger
	start time.Time
}

// Request starts the log for one API call. The returned value is safe to use
// before Init; it then drops everything.
func Request(method, path, requestID string) *RequestLog {
	r := &RequestLog{start: time.Now()}
	if Logger != nil {
		r.l = Logger.With("method", method, "path", path, "request_id", requestID)
		r.l.Debug("API request")
	}
	return r
}

// Done records the response status and how long the call took. Server errors
// are logged at warn level, everything else at debug.
func (r *RequestLog) Done(status int) {
	if r.l == nil {
		return
	}
	elapsed := time.Since(r.start).Round(time.Millisecond)
	if status >= 500 {
		r.l.Warn("API response", "status", status, "elapsed", elapsed)
		return
	}
	r.l.Debug("API response", "status", status, "elapsed", elapsed)
}

// Failed records a call that never produced a response.
func (r *RequestLog) Failed(err error) {
	if r.l == nil {
		return
	}
	r.l.Warn("API request failed", "error", err, "elapsed", time.Since(r.start).Round(time.Millisecond))
}

func (r *RequestLog) Warn(msg string, keyvals ...interface{}) {
	if r.l != nil {
		r.l.Warn(msg, keyvals...)
	}
}

// Leveled adapts the package logger for go-retryablehttp. Its per-attempt
// "performing request" lines are Info there and Debug here.
func Leveled() LeveledLogger {
	return LeveledLogger{}
}

type LeveledLogger struct{}

func (LeveledLogger) Error(msg string, keysAndValues ...interface{}) { Error(msg, keysAndValues...) }
func (LeveledLogger) Info(msg string, keysAndValues ...interface{})  { Debug(msg, keysAndValues...) }
func (LeveledLogger) Debug(msg string, keysAndValues ...interface{}) { Debug(msg, keysAndValues...) }
func (LeveledLogger) Warn(msg string, keysAndValues ...interface{})  { Warn(msg, keysAndValues...) }
