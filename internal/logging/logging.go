// Package logging builds the process-wide logrus logger. Components
// never reach for a package-level singleton; main.go builds one
// *logrus.Logger and hands each component a scoped *logrus.Entry.
package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

func New(environment string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)

	if environment == "production" {
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetLevel(logrus.InfoLevel)
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		logger.SetLevel(logrus.DebugLevel)
	}

	return logger
}

// Component scopes a logger to a named component, the way each
// service in this core identifies itself in every log line.
func Component(logger *logrus.Logger, name string) *logrus.Entry {
	return logger.WithField("component", name)
}
