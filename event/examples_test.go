// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package event_test

import (
	"context"
	"fmt"
	"log"

	"github.com/patrickfreed/raw-bson-benchmarks/cursor"
	"github.com/patrickfreed/raw-bson-benchmarks/event"
	"github.com/patrickfreed/raw-bson-benchmarks/x/bsonx/bsoncore"
)

// CursorMonitor represents a monitor that is triggered for different events.
func ExampleCursorMonitor() {
	var batches, bytes int
	monitor := &event.CursorMonitor{
		BatchFetched: func(_ context.Context, evt *event.BatchFetchedEvent) {
			batches++
			bytes += evt.BatchBytes
		},
		Failed: func(evt *event.CursorFailedEvent) {
			log.Printf("cursor failed after %d documents: %v", evt.Documents, evt.Failure)
		},
	}

	doc := bsoncore.NewDocumentBuilder().AppendInt32("x", 1).Build()
	src := cursor.NewSliceSource(cursor.Batch(doc, doc), cursor.Batch(doc))

	ctx := context.Background()
	cur := cursor.New(src, cursor.WithMonitor(monitor))
	defer cur.Close(ctx)

	var n int
	for cur.Next(ctx) {
		n++
	}
	if err := cur.Err(); err != nil {
		log.Fatal(err)
	}
	fmt.Println(n, batches, bytes)
	// Output: 3 2 36
}
