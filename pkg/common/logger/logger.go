package logger

import (
	"flag"
	"path"
	"time"

	"github.com/go-logr/logr"
	"k8s.io/klog/v2"
	"k8s.io/klog/v2/klogr"
)

// Constants for logging
const (
	Name = "Priosched"
	User = "heyfey"

	// TODO: replace these
	LogDir  = "/logs"
	LogName = "priosched"

	LogToStderr     = "false"
	AlsoLogtoStderr = "true"
	V               = "4"
)

var log logr.Logger = klogr.New()

// Usage:
// log := logger.GetLogger()
// defer logger.Flush()
// ...do some logging

// InitLogger initializes klog with constants for logging.
func InitLogger() {
	logName := LogName + "-" + time.Now().Format("20060102-030405") + ".log"
	logPath := path.Join(LogDir, logName)

	klog.InitFlags(nil)
	flag.Set("v", V)
	flag.Set("log_file", logPath)
	flag.Set("logtostderr", LogToStderr)
	flag.Set("alsologtostderr", AlsoLogtoStderr)
	if !flag.Parsed() {
		flag.Parse()
	}
}

// GetLogger returns the package-wide structured logger.
func GetLogger() logr.Logger {
	return log
}

// Flush flushes any buffered log entries to their output.
func Flush() {
	klog.Flush()
}
