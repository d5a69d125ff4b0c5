package llamabridge

import (
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

var pkgLogger atomic.Pointer[logrus.Logger]

func init() {
	l := logrus.New()
	l.SetLevel(logrus.WarnLevel)
	pkgLogger.Store(l)
}

// SetLogger replaces the package logger. A nil logger is ignored.
func SetLogger(l *logrus.Logger) {
	if l == nil {
		return
	}
	pkgLogger.Store(l)
}

func logger() *logrus.Logger {
	return pkgLogger.Load()
}

func pathFields(path string) logrus.Fields {
	return logrus.Fields{"model": path}
}
