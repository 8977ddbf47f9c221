package logger

import (
	"io"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	projectLogger *logrus.Logger
	once          sync.Once
)

// GetProjectLogger returns the logger shared by every halosync package.
func GetProjectLogger() *logrus.Logger {
	once.Do(func() {
		projectLogger = logrus.New()
		projectLogger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "15:04:05.000",
		})
		projectLogger.SetLevel(logrus.InfoLevel)
	})
	return projectLogger
}

// WithComponent returns an entry tagged with the name of the subsystem doing the logging.
func WithComponent(name string) *logrus.Entry {
	return GetProjectLogger().WithField("component", name)
}

// SetLevel parses a level name such as "debug" or "warn" and applies it to the project logger.
func SetLevel(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	GetProjectLogger().SetLevel(lvl)
	return nil
}

// SetOutput redirects the project logger, e.g. away from the terminal while a TUI owns it.
func SetOutput(w io.Writer) {
	GetProjectLogger().SetOutput(w)
}
