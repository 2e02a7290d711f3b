// Copyright (C) MongoDB, Inc. 2023-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package logger

import (
	"strings"
)

// DiffToInfo is the number of levels that come before the "Info" level. This should ensure that "Info"
// is the 0th level passed to the sink.
const DiffToInfo = 1

// Level is an enumeration representing the supported log severity levels.
//
// The order of the logging levels is important. Sinks follow the logr convention of an Info level of 0, so any
// additions to the Level enumeration before InfoLevel need to also update the DiffToInfo constant.
type Level int

const (
	// OffLevel supresses logging.
	OffLevel Level = iota

	// InfoLevel enables logging of informational messages. These logs are high-level information about normal
	// behavior. Example: a cursor being exhausted.
	InfoLevel

	// DebugLevel enables logging of debug messages. These logs can be voluminous and are intended for detailed
	// information that may be helpful when debugging an application. Example: a batch being fetched.
	DebugLevel
)

// LevelLiteral are the logging levels that can be set through the environment. See the "LevelLiteral.Level"
// method for how they map to a Level.
type LevelLiteral string

const (
	OffLevelLiteral       LevelLiteral = "off"
	EmergencyLevelLiteral LevelLiteral = "emergency"
	AlertLevelLiteral     LevelLiteral = "alert"
	CriticalLevelLiteral  LevelLiteral = "critical"
	ErrorLevelLiteral     LevelLiteral = "error"
	WarnLevelLiteral      LevelLiteral = "warn"
	NoticeLevelLiteral    LevelLiteral = "notice"
	InfoLevelLiteral      LevelLiteral = "info"
	DebugLevelLiteral     LevelLiteral = "debug"
	TraceLevelLiteral     LevelLiteral = "trace"
)

// Level will return the Level associated with the level literal. If the literal is not a valid level, then the
// default level is returned.
func (levell LevelLiteral) Level() Level {
	switch levell {
	case ErrorLevelLiteral, WarnLevelLiteral, NoticeLevelLiteral, InfoLevelLiteral:
		return InfoLevel
	case DebugLevelLiteral, TraceLevelLiteral:
		return DebugLevel
	default:
		return OffLevel
	}
}

// equalFold will check if the "str" value is case-insensitive equal to the environment variable literal value.
func (levell LevelLiteral) equalFold(str string) bool {
	return strings.EqualFold(string(levell), str)
}

// AllLevelLiterals returns every LevelLiteral in order of increasing verbosity.
func AllLevelLiterals() []LevelLiteral {
	return []LevelLiteral{
		OffLevelLiteral,
		EmergencyLevelLiteral,
		AlertLevelLiteral,
		CriticalLevelLiteral,
		ErrorLevelLiteral,
		WarnLevelLiteral,
		NoticeLevelLiteral,
		InfoLevelLiteral,
		DebugLevelLiteral,
		TraceLevelLiteral,
	}
}

// ParseLevel will check if the given string is a valid level literal. If it is, then it will return the
// Level. The default Level is "Off".
func ParseLevel(level string) Level { return parseLevel(level) }

func parseLevel(level string) Level {
	for _, llevel := range AllLevelLiterals() {
		if llevel.equalFold(level) {
			return llevel.Level()
		}
	}

	return OffLevel
}
