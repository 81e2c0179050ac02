package logging

import (
	"github.com/sirupsen/logrus"
	"os"
)

var Logger *logrus.Logger

func InitLogger() {
	Logger = logrus.New()
	Logger.SetFormatter(&logrus.JSONFormatter{})
	Logger.SetOutput(os.Stdout)
	Logger.SetLevel(logrus.InfoLevel)
}

func LogInfo(message string, fields logrus.Fields) {
	Logger.WithFields(fields).Info(message)
}

func LogError(message string, err error, fields logrus.Fields) {
	if err != nil {
		fields["error"] = err.Error()
	}
	Logger.WithFields(fields).Error(message)
}

// LogWarn — для best-effort путей (fan-out, push), где ошибка не фатальна.
func LogWarn(message string, err error, fields logrus.Fields) {
	if err != nil {
		fields["error"] = err.Error()
	}
	Logger.WithFields(fields).Warn(message)
}

func LogDebug(message string, fields logrus.Fields) {
	Logger.WithFields(fields).Debug(message)
}
