package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// New returns a JSON logrus logger at the given level. Unknown levels fall
// back to info; the test environment logs to io.Discard.
func New(level, env string) *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)

	if env == "test" {
		log.SetOutput(io.Discard)
	}
	return log
}

// Service returns an entry tagged with the service name.
func Service(log *logrus.Logger, name string) *logrus.Entry {
	return log.WithField("service", name)
}

// Discard returns a logger that writes nowhere, for tests and tools.
func Discard() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}
