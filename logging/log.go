package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

type prefixFormatter struct {
	prefix    string
	formatter logrus.Formatter
}

// Init options for logging.
type Options struct {

	// Prefix for application log entries. Primarily used to be
	// able to select between access log and application log
	// entries.
	ApplicationLogPrefix string

	// Output for the application log entries, when nil,
	// os.Stderr is used.
	ApplicationLogOutput io.Writer

	// Minimum level of the application log entries. When not set,
	// the level of the application log is not changed.
	ApplicationLogLevel logrus.Level

	// When set, the application log is written in JSON format.
	ApplicationLogJSONEnabled bool

	// Output for the access log entries, when nil, os.Stderr is
	// used.
	AccessLogOutput io.Writer

	// When set, no access log is printed.
	AccessLogDisabled bool

	// When set, log in JSON format is used
	AccessLogJSONEnabled bool

	// When set, the query part of the request URI is not logged.
	AccessLogStripQuery bool
}

func (f *prefixFormatter) Format(e *logrus.Entry) ([]byte, error) {
	b, err := f.formatter.Format(e)
	if err != nil {
		return nil, err
	}

	return append([]byte(f.prefix), b...), nil
}

func initApplicationLog(o Options) {
	var formatter logrus.Formatter = &logrus.TextFormatter{}
	if o.ApplicationLogJSONEnabled {
		formatter = &logrus.JSONFormatter{}
	}

	if o.ApplicationLogPrefix != "" {
		formatter = &prefixFormatter{o.ApplicationLogPrefix, formatter}
	}

	logrus.SetFormatter(formatter)

	if o.ApplicationLogOutput != nil {
		logrus.SetOutput(o.ApplicationLogOutput)
	}

	if o.ApplicationLogLevel != logrus.PanicLevel {
		logrus.SetLevel(o.ApplicationLogLevel)
	}
}

func initAccessLog(o Options) {
	l := logrus.New()
	if o.AccessLogJSONEnabled {
		l.Formatter = &logrus.JSONFormatter{TimestampFormat: dateFormat, DisableTimestamp: true}
	} else {
		l.Formatter = &accessLogFormatter{accessLogFormat}
	}

	l.Out = o.AccessLogOutput
	l.Level = logrus.InfoLevel
	accessLog = l
	stripQuery = o.AccessLogStripQuery
}

// Init initializes logging.
func Init(o Options) {
	initApplicationLog(o)

	if o.AccessLogDisabled {
		accessLog = nil
		return
	}

	if o.AccessLogOutput == nil {
		o.AccessLogOutput = os.Stderr
	}

	initAccessLog(o)
}
