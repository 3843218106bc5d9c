package log

import (
	"io"
	"os"
	"path/filepath"

	"github.com/natefinch/lumberjack"
	"github.com/sirupsen/logrus"
)

const (
	// default log level
	defaultLogLevel = logrus.InfoLevel

	// log file name
	globalLogFileName = "global.log"
	// default log directory
	logDir = "nodelogs"
	// default log file params
	defaultLogMaxSize    = 100  // maximum file size before rotation, in MB
	defaultLogMaxBackups = 3    // maximum number of old log files to keep
	defaultLogMaxAge     = 28   // maximum number of days to retain old log files
	defaultLogCompress   = true // whether to compress the rotated log files using gzip
)

// Global is the process-wide logger used by the command line tooling. Library
// components take their logger through their constructors instead.
var Global Logger = New(WithOutput(os.Stdout))

// SetGlobalLogger points the global logger at a rotated log file (mirrored to
// stdout) and sets its level. An empty file name keeps stdout only.
func SetGlobalLogger(logFilename string, logLevel string) {
	var output io.Writer = os.Stdout
	if logFilename != "" {
		output = io.MultiWriter(newRotatingFile(logFilename), os.Stdout)
	}
	Global = New(WithOutput(output), WithLevel(logLevel))
}

// NewLogger creates a logger writing to the given file only. An empty file
// name selects the default location under the working directory.
func NewLogger(logFilename string, logLevel string) Logger {
	if logFilename == "" {
		logFilename = filepath.Join(".", logDir, globalLogFileName)
	}
	logger := New(WithOutput(newRotatingFile(logFilename)), WithLevel(logLevel))
	logger.WithFields(Fields{
		"path":  logFilename,
		"level": logLevel,
	}).Info("Logger started")
	return logger
}

func newRotatingFile(logFilename string) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   logFilename,
		MaxSize:    defaultLogMaxSize,
		MaxBackups: defaultLogMaxBackups,
		MaxAge:     defaultLogMaxAge,
		Compress:   defaultLogCompress,
	}
}

// New builds a standalone logger and applies the given options in order.
func New(opts ...Options) Logger {
	logger := logrus.New()
	logger.SetLevel(defaultLogLevel)
	logger.SetFormatter(&logrus.TextFormatter{
		ForceColors:     true,
		PadLevelText:    true,
		FullTimestamp:   true,
		TimestampFormat: "01-02|15:04:05.000",
	})
	lw := &LogWrapper{entry: logrus.NewEntry(logger)}
	for _, opt := range opts {
		opt(lw)
	}
	return lw
}

// NewNullLogger returns a logger that discards everything, for tests.
func NewNullLogger() Logger {
	return New(WithNullLogger())
}
