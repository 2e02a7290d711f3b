// Copyright (C) MongoDB, Inc. 2023-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package logger is the component and level filtered logger used by cursors, sources and the benchmark
// harness. Messages are handed to a LogSink on a background goroutine so logging never blocks the caller.
package logger

import (
	"os"
	"sync"
)

// jobBufferSize is the number of messages that can wait for the printer before new ones are dropped.
const jobBufferSize = 256

// LogSink is an interface that can be implemented to provide a custom sink for the logs.
type LogSink interface {
	// Info logs a non-error message with the given key/value pairs. The level argument is provided for
	// optional logging.
	Info(level int, msg string, keysAndValues ...interface{})

	// Error logs an error, with the given message and key/value pairs.
	Error(err error, msg string, keysAndValues ...interface{})
}

type job struct {
	level Level
	msg   ComponentMessage
}

// Logger represents the configuration for the internal logger.
type Logger struct {
	ComponentLevels map[Component]Level
	Sink            LogSink

	jobs chan job
	done chan struct{}
	once *sync.Once
}

// New will construct a new logger with the given LogSink. If the given LogSink is nil, then the logger will
// log to os.Stderr as extended JSON.
//
// The "componentLevels" parameter is variadic with the latest value taking precedence. Levels configured
// through the environment are applied first.
func New(sink LogSink, componentLevels ...map[Component]Level) *Logger {
	levels := getEnvComponentLevels()
	for _, m := range componentLevels {
		for component, level := range m {
			if component == ComponentAll {
				for c := range levels {
					levels[c] = level
				}
				continue
			}
			levels[component] = level
		}
	}

	if sink == nil {
		sink = NewIOSink(os.Stderr)
	}

	logger := &Logger{
		ComponentLevels: levels,
		Sink:            sink,
		jobs:            make(chan job, jobBufferSize),
		done:            make(chan struct{}),
		once:            &sync.Once{},
	}
	go logger.startPrinter()
	return logger
}

// Close stops the printer goroutine once every queued message has reached the sink.
func (logger *Logger) Close() {
	if logger == nil {
		return
	}
	logger.once.Do(func() { close(logger.jobs) })
	<-logger.done
}

// LevelComponentEnabled will return true if the given Level is enabled for the given Component.
func (logger *Logger) LevelComponentEnabled(level Level, component Component) bool {
	if logger == nil || level == OffLevel {
		return false
	}
	return logger.ComponentLevels[component] >= level
}

// Print queues msg for the sink. If the queue is full the message is dropped.
func (logger *Logger) Print(level Level, msg ComponentMessage) {
	if !logger.LevelComponentEnabled(level, msg.Component()) {
		return
	}
	select {
	case logger.jobs <- job{level, msg}:
	default:
	}
}

func (logger *Logger) startPrinter() {
	defer close(logger.done)
	for j := range logger.jobs {
		kv := append([]interface{}{KeyComponent, j.msg.Component().String()}, j.msg.Serialize()...)
		if ef, ok := j.msg.(interface{ Err() error }); ok && ef.Err() != nil {
			logger.Sink.Error(ef.Err(), j.msg.Message(), kv...)
			continue
		}
		logger.Sink.Info(int(j.level)-DiffToInfo, j.msg.Message(), kv...)
	}
}
