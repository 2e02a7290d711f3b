// Copyright (C) MongoDB, Inc. 2023-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package logger

import (
	"os"
	"strings"
)

// Component is an enumeration representing the "components" which can be logged against. A Level can be
// configured on a per-component basis.
type Component int

const (
	// ComponentAll enables logging for all components.
	ComponentAll Component = iota

	// ComponentCursor enables cursor lifecycle logging: batches fetched, failures and closes.
	ComponentCursor

	// ComponentSource enables logging from the batch sources that feed cursors.
	ComponentSource

	// ComponentBenchmark enables benchmark harness logging.
	ComponentBenchmark
)

// ComponentLiteral is an enumeration representing the string literal "components" which can be logged against.
type ComponentLiteral string

const (
	ComponentLiteralAll       ComponentLiteral = "all"
	ComponentLiteralCursor    ComponentLiteral = "cursor"
	ComponentLiteralSource    ComponentLiteral = "source"
	ComponentLiteralBenchmark ComponentLiteral = "benchmark"
)

// Component returns the Component for the given ComponentLiteral.
func (componentLiteral ComponentLiteral) Component() Component {
	switch ComponentLiteral(strings.ToLower(string(componentLiteral))) {
	case ComponentLiteralCursor:
		return ComponentCursor
	case ComponentLiteralSource:
		return ComponentSource
	case ComponentLiteralBenchmark:
		return ComponentBenchmark
	default:
		return ComponentAll
	}
}

func (component Component) String() string {
	switch component {
	case ComponentCursor:
		return string(ComponentLiteralCursor)
	case ComponentSource:
		return string(ComponentLiteralSource)
	case ComponentBenchmark:
		return string(ComponentLiteralBenchmark)
	default:
		return string(ComponentLiteralAll)
	}
}

// componentEnvVar is an enumeration representing the environment variables which can be used to configure
// a component's log level.
type componentEnvVar string

const (
	componentEnvVarAll       componentEnvVar = "RAWBENCH_LOG_ALL"
	componentEnvVarCursor    componentEnvVar = "RAWBENCH_LOG_CURSOR"
	componentEnvVarSource    componentEnvVar = "RAWBENCH_LOG_SOURCE"
	componentEnvVarBenchmark componentEnvVar = "RAWBENCH_LOG_BENCHMARK"
)

var allComponentEnvVars = []componentEnvVar{
	componentEnvVarAll,
	componentEnvVarCursor,
	componentEnvVarSource,
	componentEnvVarBenchmark,
}

func (env componentEnvVar) component() Component {
	switch env {
	case componentEnvVarCursor:
		return ComponentCursor
	case componentEnvVarSource:
		return ComponentSource
	case componentEnvVarBenchmark:
		return ComponentBenchmark
	default:
		return ComponentAll
	}
}

// getEnvComponentLevels returns the component levels configured through the environment. A level set on
// RAWBENCH_LOG_ALL applies to every component unless that component has its own variable set.
func getEnvComponentLevels() map[Component]Level {
	levels := make(map[Component]Level)
	var globalLevel Level
	for _, envVar := range allComponentEnvVars {
		level := parseLevel(os.Getenv(string(envVar)))
		if envVar == componentEnvVarAll {
			globalLevel = level
			continue
		}
		levels[envVar.component()] = level
	}
	for component, level := range levels {
		if level == OffLevel {
			levels[component] = globalLevel
		}
	}
	return levels
}

// Keys used in the key/value pairs passed to a LogSink.
const (
	KeyMessage       = "message"
	KeyComponent     = "component"
	KeyBatchLength   = "batchLength"
	KeyBatchBytes    = "batchBytes"
	KeyDocuments     = "documents"
	KeyError         = "error"
	KeyCase          = "case"
	KeyDurationMS    = "durationMS"
	KeyIterations    = "iterations"
	KeySource        = "source"
	KeyDocumentIndex = "documentIndex"
)

// ComponentMessage is a message that can be logged against a Component.
type ComponentMessage interface {
	Component() Component
	Message() string
	Serialize() []interface{}
}
