// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package cursor

import (
	"github.com/patrickfreed/raw-bson-benchmarks/event"
	"github.com/patrickfreed/raw-bson-benchmarks/internal/logger"
)

// Option configures a Cursor.
type Option func(*config)

type config struct {
	logger   *logger.Logger
	monitor  *event.CursorMonitor
	validate bool
	name     string
}

// WithLogger sets the logger cursor lifecycle messages are written to.
func WithLogger(l *logger.Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithMonitor sets the monitor notified of cursor events.
func WithMonitor(m *event.CursorMonitor) Option {
	return func(c *config) { c.monitor = m }
}

// WithValidation makes the cursor fully validate every document it advances to. A document that
// fails validation moves the cursor to the errored state.
func WithValidation(validate bool) Option {
	return func(c *config) { c.validate = validate }
}

// WithName sets the source name reported in events and log messages. It defaults to the String
// method of the source, or its type.
func WithName(name string) Option {
	return func(c *config) { c.name = name }
}
