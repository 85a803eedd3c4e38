package infrastructure

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	baseLogger *logrus.Logger
	loggerOnce sync.Once
)

// InitLogger configures the process logger once; later calls return the same logger.
func InitLogger(level, format string) *logrus.Logger {
	loggerOnce.Do(func() {
		baseLogger = newLogger(os.Stdout, level, format)
	})
	return baseLogger
}

func newLogger(out io.Writer, level, format string) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)

	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		l.SetFormatter(&logrus.JSONFormatter{})
	default:
		l.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02T15:04:05-07:00",
			PadLevelText:    true,
		})
	}

	parsed, err := logrus.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		parsed = logrus.InfoLevel
	}
	l.SetLevel(parsed)
	return l
}

// L returns the process logger, initializing it from LOG_LEVEL and LOG_FORMAT when
// InitLogger has not run yet.
func L() *logrus.Logger {
	return InitLogger(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))
}

// C returns a logger tagged with the component name.
func C(component string) *logrus.Entry {
	return L().WithField("component", component)
}
