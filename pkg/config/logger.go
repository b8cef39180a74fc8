package config

import (
	"os"

	"github.com/sirupsen/logrus"
)

// InitLogger configures the standard logrus logger for a service binary.
func InitLogger(level string) {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logrus.SetLevel(lvl)
}

// LogError writes a structured error entry.
func LogError(moduleName string, funcName string, context string, data any, err error) {
	fields := logrus.Fields{
		"module":   moduleName,
		"funcName": funcName,
		"context":  context,
	}
	if data != nil {
		fields["data"] = data
	}
	logrus.WithFields(fields).Error(err.Error())
}
