// Copyright (C) MongoDB, Inc. 2023-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package logger

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// LogrusSink adapts a logrus logger to the LogSink interface. Level 0 is logged at logrus' info level and
// anything more verbose at its debug level.
type LogrusSink struct {
	log logrus.FieldLogger
}

var _ LogSink = &LogrusSink{}

// NewLogrusSink returns a LogSink writing to log. If log is nil the logrus standard logger is used.
func NewLogrusSink(log logrus.FieldLogger) *LogrusSink {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &LogrusSink{log: log}
}

func fields(keysAndValues []interface{}) logrus.Fields {
	f := make(logrus.Fields, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		f[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return f
}

// Info implements LogSink.
func (sink *LogrusSink) Info(level int, msg string, keysAndValues ...interface{}) {
	entry := sink.log.WithFields(fields(keysAndValues))
	if level > 0 {
		entry.Debug(msg)
		return
	}
	entry.Info(msg)
}

// Error implements LogSink.
func (sink *LogrusSink) Error(err error, msg string, keysAndValues ...interface{}) {
	sink.log.WithFields(fields(keysAndValues)).WithError(err).Error(msg)
}
