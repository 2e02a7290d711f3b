// Copyright (C) MongoDB, Inc. 2023-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package logger

import (
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/patrickfreed/raw-bson-benchmarks/bson"
)

// IOSink writes to an io.Writer using the standard library logging solution and
// is the default sink for the logger, with the default IO being os.Stderr.
type IOSink struct {
	mu  sync.Mutex
	log *log.Logger
}

// Compile-time check to ensure IOSink implements the LogSink interface.
var _ LogSink = &IOSink{}

// NewIOSink will create a new IOSink that writes to the provided io.Writer.
func NewIOSink(out io.Writer) *IOSink {
	return &IOSink{
		log: log.New(out, "", log.LstdFlags),
	}
}

// Info will write the provided message and key-value pairs to the io.Writer
// as relaxed extended JSON.
func (sink *IOSink) Info(_ int, msg string, keysAndValues ...interface{}) {
	d := bson.D{{Key: KeyMessage, Value: msg}}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		d = append(d, bson.E{Key: fmt.Sprint(keysAndValues[i]), Value: keysAndValues[i+1]})
	}

	kvBytes, err := bson.MarshalExtJSON(d, false)
	if err != nil {
		kvBytes = []byte(fmt.Sprintf(`{"message":%q,"logError":%q}`, msg, err.Error()))
	}

	sink.mu.Lock()
	defer sink.mu.Unlock()
	sink.log.Println(string(kvBytes))
}

// Error will write the provided error and key-value pairs to the io.Writer
// as extended JSON.
func (sink *IOSink) Error(err error, msg string, kv ...interface{}) {
	sink.Info(0, msg, append(kv, KeyError, err.Error())...)
}
