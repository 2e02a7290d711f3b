// Copyright (C) MongoDB, Inc. 2023-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package logger

import "time"

const (
	BenchmarkMessageCaseStartedDefault   = "Benchmark case started"
	BenchmarkMessageCaseCompletedDefault = "Benchmark case completed"
	BenchmarkMessageCaseFailedDefault    = "Benchmark case failed"

	SourceMessageOpenedDefault = "Source opened"
	SourceMessageSeededDefault = "Source seeded"
)

// BenchmarkMessage reports the progress of one benchmark case.
type BenchmarkMessage struct {
	MessageLiteral string
	Case           string
	Iterations     int
	Duration       time.Duration
	Failure        error
}

func (*BenchmarkMessage) Component() Component {
	return ComponentBenchmark
}

func (msg *BenchmarkMessage) Message() string {
	return msg.MessageLiteral
}

func (msg *BenchmarkMessage) Serialize() []interface{} {
	return []interface{}{
		KeyCase, msg.Case,
		KeyIterations, msg.Iterations,
		KeyDurationMS, msg.Duration.Milliseconds(),
	}
}

func (msg *BenchmarkMessage) Err() error { return msg.Failure }

// SourceMessage reports activity of a batch source, such as opening a dump file or seeding a store.
type SourceMessage struct {
	MessageLiteral string
	Source         string
	Documents      int
}

func (*SourceMessage) Component() Component {
	return ComponentSource
}

func (msg *SourceMessage) Message() string {
	return msg.MessageLiteral
}

func (msg *SourceMessage) Serialize() []interface{} {
	return []interface{}{
		KeySource, msg.Source,
		KeyDocuments, msg.Documents,
	}
}
