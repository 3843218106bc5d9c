package log

import (
	"fmt"
	"io"
	"runtime"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Options is a function type that can be used to configure the logger
type Options func(*LogWrapper)

// WithLevel sets the log level, falling back to info for unknown names.
// Debug and trace levels also report the calling function and source line.
func WithLevel(level string) Options {
	return func(lw *LogWrapper) {
		l, err := logrus.ParseLevel(level)
		if err != nil {
			l = defaultLogLevel
		}
		lw.entry.Logger.SetLevel(l)
		if l < logrus.DebugLevel {
			return
		}
		lw.entry.Logger.SetReportCaller(true)
		lw.entry.Logger.SetFormatter(&logrus.TextFormatter{
			TimestampFormat: time.RFC3339,
			FullTimestamp:   true,
			CallerPrettyfier: func(f *runtime.Frame) (string, string) {
				return fmt.Sprintf("func: %s : ", trimPath(f.Function, 1)), fmt.Sprintf(" src: %s:%d -", trimPath(f.File, 2), f.Line)
			},
		})
	}
}

// WithOutput configures the output destination
func WithOutput(output io.Writer) Options {
	return func(lw *LogWrapper) {
		lw.entry.Logger.SetOutput(output)
	}
}

// WithNullLogger sets the logger to discard all output
func WithNullLogger() Options {
	return func(lw *LogWrapper) {
		lw.entry.Logger.SetOutput(io.Discard)
	}
}

// trimPath keeps the last n slash separated elements of a path.
func trimPath(path string, n int) string {
	arr := strings.Split(path, "/")
	if len(arr) < n {
		return path
	}
	return strings.Join(arr[len(arr)-n:], "/")
}
