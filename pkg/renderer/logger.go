package renderer

import (
	"github.com/golang/glog"
)

// GlogLogger adapts glog to the core.Logger interface
type GlogLogger struct{}

// Printf logs at info level
func (GlogLogger) Printf(format string, args ...interface{}) {
	glog.Infof(format, args...)
}
