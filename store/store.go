// Package store holds application state fed by the OMS bridge: the signed-in
// user's profile, settings and facilities, and push notifications.
//
// Stores never propagate backend failures for reads they can recover from;
// they log and keep their previous state. Getters are safe for concurrent
// use.
package store

import (
	"time"

	"github.com/sirupsen/logrus"
)

// Notifier shows a short message to the user. A nil Notifier is silent.
type Notifier interface {
	Notify(message string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(message string)

func (f NotifierFunc) Notify(message string) { f(message) }

type options struct {
	notifier      Notifier
	log           logrus.FieldLogger
	localeOptions map[string]string
	now           func() time.Time
}

type Option func(*options)

func WithNotifier(n Notifier) Option {
	return func(o *options) { o.notifier = n }
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(o *options) { o.log = log }
}

// WithLocaleOptions sets the supported locales, code to display name.
func WithLocaleOptions(locales map[string]string) Option {
	return func(o *options) { o.localeOptions = locales }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func buildOptions(opts []Option) options {
	o := options{
		log:           logrus.StandardLogger(),
		localeOptions: map[string]string{"en-US": "English"},
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o options) notify(message string) {
	if o.notifier != nil {
		o.notifier.Notify(message)
	}
}
