// Package observer replaces the process-wide logger golang-dep's log
// package and gps's trace.go use with an injected capability, per spec §9
// ("Global mutable state... the process-wide Log in the source is replaced
// by an injected observer capability"). Implementations wrap a structured
// logger; NopObserver discards everything for tests that don't care.
package observer

import (
	"github.com/sirupsen/logrus"
)

// Observer receives progress and diagnostic messages from the solver and
// store. Tracef is for step-by-step solver tracing (only useful with
// verbose logging enabled), Infof for user-visible progress (store adds,
// solve results), Warnf for recoverable problems worth surfacing.
type Observer interface {
	Tracef(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
}

// nopObserver discards every message.
type nopObserver struct{}

// NopObserver is an Observer that does nothing, for tests and callers that
// don't want logging.
var NopObserver Observer = nopObserver{}

func (nopObserver) Tracef(string, ...interface{}) {}
func (nopObserver) Infof(string, ...interface{})  {}
func (nopObserver) Warnf(string, ...interface{})  {}

// Logrus adapts a *logrus.Entry (or Logger, via its own Entry) into an
// Observer, mapping Tracef/Infof/Warnf onto the matching logrus levels.
type Logrus struct {
	Entry *logrus.Entry
}

// NewLogrus builds a Logrus observer from a *logrus.Logger, attaching the
// given fields so every message is scoped (e.g. {"component": "store"}).
func NewLogrus(l *logrus.Logger, fields logrus.Fields) Logrus {
	if l == nil {
		l = logrus.StandardLogger()
	}
	return Logrus{Entry: l.WithFields(fields)}
}

func (o Logrus) Tracef(format string, args ...interface{}) { o.Entry.Tracef(format, args...) }
func (o Logrus) Infof(format string, args ...interface{})  { o.Entry.Infof(format, args...) }
func (o Logrus) Warnf(format string, args ...interface{})  { o.Entry.Warnf(format, args...) }
