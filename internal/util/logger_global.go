package util

import (
	"io"
	"os"
	"sync"
)

// StderrLogFile selects stderr instead of a log file
const StderrLogFile = "-"

var (
	globalLogger LoggerInterface
	loggerMu     sync.RWMutex

	stderr io.Writer = os.Stderr
)

// InitLogger installs the global logger. Log lines go to logFile, or to
// stderr when logFile is StderrLogFile; stdout is owned by the stopwatch
// while it runs.
func InitLogger(logLevel, logFile string, format LogFormat) error {
	var output Output
	if logFile == StderrLogFile {
		output = NewWriterOutput(stderr, format)
	} else {
		var err error
		if output, err = NewFileOutput(logFile, format); err != nil {
			return err
		}
	}
	SetLogger(NewLogger(logLevel, output))
	return nil
}

// SetLogger replaces the global logger. A nil logger disables logging.
func SetLogger(logger LoggerInterface) {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	globalLogger = logger
}

// CloseLogger flushes and detaches the global logger.
func CloseLogger() error {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	if globalLogger == nil {
		return nil
	}
	err := globalLogger.Close()
	globalLogger = nil
	return err
}

func current() LoggerInterface {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	return globalLogger
}

// LogInfo convenience functions for logging
func LogInfo(msg string, fields ...Field) {
	if l := current(); l != nil {
		l.Info(msg, fields...)
	}
}

func LogInfof(format string, args ...interface{}) {
	if l := current(); l != nil {
		l.Infof(format, args...)
	}
}

func LogDebug(msg string, fields ...Field) {
	if l := current(); l != nil {
		l.Debug(msg, fields...)
	}
}

func LogDebugf(format string, args ...interface{}) {
	if l := current(); l != nil {
		l.Debugf(format, args...)
	}
}

func LogWarn(msg string, fields ...Field) {
	if l := current(); l != nil {
		l.Warn(msg, fields...)
	}
}

func LogWarnf(format string, args ...interface{}) {
	if l := current(); l != nil {
		l.Warnf(format, args...)
	}
}

func LogError(msg string, fields ...Field) {
	if l := current(); l != nil {
		l.Error(msg, fields...)
	}
}

func LogErrorf(format string, args ...interface{}) {
	if l := current(); l != nil {
		l.Errorf(format, args...)
	}
}
