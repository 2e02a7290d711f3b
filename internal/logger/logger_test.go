// Copyright (C) MongoDB, Inc. 2023-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package logger

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedEntry struct {
	level int
	msg   string
	err   error
	kv    []interface{}
}

type recordingSink struct {
	mu      sync.Mutex
	entries []recordedEntry
}

func (s *recordingSink) Info(level int, msg string, kv ...interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, recordedEntry{level: level, msg: msg, kv: kv})
}

func (s *recordingSink) Error(err error, msg string, kv ...interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, recordedEntry{msg: msg, err: err, kv: kv})
}

func TestParseLevel(t *testing.T) {
	testCases := []struct {
		input string
		want  Level
	}{
		{"", OffLevel},
		{"off", OffLevel},
		{"emergency", OffLevel},
		{"WARN", InfoLevel},
		{"info", InfoLevel},
		{"Debug", DebugLevel},
		{"trace", DebugLevel},
		{"bogus", OffLevel},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.want, ParseLevel(tc.input), "input %q", tc.input)
	}
}

func TestGetEnvComponentLevels(t *testing.T) {
	t.Run("all applies to unset components", func(t *testing.T) {
		t.Setenv("RAWBENCH_LOG_ALL", "info")
		t.Setenv("RAWBENCH_LOG_CURSOR", "debug")
		t.Setenv("RAWBENCH_LOG_SOURCE", "")
		t.Setenv("RAWBENCH_LOG_BENCHMARK", "")

		levels := getEnvComponentLevels()
		assert.Equal(t, DebugLevel, levels[ComponentCursor])
		assert.Equal(t, InfoLevel, levels[ComponentSource])
		assert.Equal(t, InfoLevel, levels[ComponentBenchmark])
	})
	t.Run("nothing set", func(t *testing.T) {
		for _, env := range allComponentEnvVars {
			t.Setenv(string(env), "")
		}
		for c, level := range getEnvComponentLevels() {
			assert.Equal(t, OffLevel, level, "component %v", c)
		}
	})
}

func TestComponentLiteral(t *testing.T) {
	assert.Equal(t, ComponentCursor, ComponentLiteral("Cursor").Component())
	assert.Equal(t, ComponentAll, ComponentLiteral("unknown").Component())
	assert.Equal(t, "benchmark", ComponentBenchmark.String())
}

func TestLoggerPrint(t *testing.T) {
	for _, env := range allComponentEnvVars {
		t.Setenv(string(env), "")
	}

	sink := &recordingSink{}
	logger := New(sink, map[Component]Level{ComponentCursor: DebugLevel})

	logger.Print(DebugLevel, &BatchFetchedMessage{
		CursorMessage: CursorMessage{MessageLiteral: CursorMessageBatchFetchedDefault, Source: "slice"},
		BatchLength:   3,
		BatchBytes:    120,
	})
	logger.Print(InfoLevel, &BenchmarkMessage{MessageLiteral: BenchmarkMessageCaseStartedDefault})
	logger.Print(InfoLevel, &CursorFailedMessage{
		CursorMessage: CursorMessage{MessageLiteral: CursorMessageFailedDefault},
		Failure:       errors.New("boom"),
	})
	logger.Close()

	require.Len(t, sink.entries, 2, "benchmark component is off and should be dropped")
	assert.Equal(t, CursorMessageBatchFetchedDefault, sink.entries[0].msg)
	assert.Equal(t, 1, sink.entries[0].level)
	assert.Contains(t, sink.entries[0].kv, KeyBatchLength)
	assert.Equal(t, []interface{}{KeyComponent, "cursor"}, sink.entries[0].kv[:2])
	assert.EqualError(t, sink.entries[1].err, "boom")

	assert.False(t, logger.LevelComponentEnabled(OffLevel, ComponentCursor))
	var nilLogger *Logger
	assert.False(t, nilLogger.LevelComponentEnabled(InfoLevel, ComponentCursor))
	nilLogger.Print(InfoLevel, &CursorMessage{})
	nilLogger.Close()
}

func TestIOSink(t *testing.T) {
	var buf bytes.Buffer
	sink := NewIOSink(&buf)
	sink.Info(0, "hello", "count", int32(3), "name", "x")
	sink.Error(errors.New("bad"), "failed")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `{"message":"hello","count":3,"name":"x"}`)
	assert.Contains(t, lines[1], `{"message":"failed","error":"bad"}`)
}

func TestLogrusSink(t *testing.T) {
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	sink := NewLogrusSink(log)

	sink.Info(0, "info", "k", "v")
	sink.Info(1, "debug")
	sink.Error(errors.New("bad"), "failed", "k", 1)

	entries := hook.AllEntries()
	require.Len(t, entries, 3)
	assert.Equal(t, logrus.InfoLevel, entries[0].Level)
	assert.Equal(t, "v", entries[0].Data["k"])
	assert.Equal(t, logrus.DebugLevel, entries[1].Level)
	assert.Equal(t, logrus.ErrorLevel, entries[2].Level)
	assert.EqualError(t, entries[2].Data[logrus.ErrorKey].(error), "bad")
}
