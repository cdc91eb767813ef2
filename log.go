// Copyright (c) 2012, Sean Treadway, SoundCloud Ltd.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package amqp

import "go.uber.org/zap"

// logger is the subset of *zap.SugaredLogger the engine uses. Applications
// that want visibility into deliveries discarded for an unknown consumer
// tag set one with SetLogger; by default the engine is silent.
type logger interface {
	Debugw(msg string, kv ...interface{})
	Warnw(msg string, kv ...interface{})
	Errorw(msg string, kv ...interface{})
}

type nopLogger struct{}

func (nopLogger) Debugw(string, ...interface{}) {}
func (nopLogger) Warnw(string, ...interface{})  {}
func (nopLogger) Errorw(string, ...interface{}) {}

var defaultLogger logger = nopLogger{}

// SetLogger installs a zap-backed logger used by every Connection and
// Channel created afterward. Passing nil restores the silent default.
func SetLogger(l *zap.SugaredLogger) {
	if l == nil {
		defaultLogger = nopLogger{}
		return
	}
	defaultLogger = l
}
