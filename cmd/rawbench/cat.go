// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package main

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/patrickfreed/raw-bson-benchmarks/bson"
	"github.com/patrickfreed/raw-bson-benchmarks/cursor"
)

type catOptions struct {
	eager     bool
	canonical bool
	limit     int
}

func newCatCmd(a *app) *cobra.Command {
	var opts catOptions
	cmd := &cobra.Command{
		Use:   "cat",
		Short: "Print the documents of the source as Extended JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.cat(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}
	f := cmd.Flags()
	f.BoolVar(&opts.eager, "eager", false, "decode each document into a bson.D before printing it")
	f.BoolVar(&opts.canonical, "canonical", false, "print canonical instead of relaxed Extended JSON")
	f.IntVar(&opts.limit, "limit", 0, "stop after this many documents")
	return cmd
}

func (a *app) cat(ctx context.Context, w io.Writer, opts catOptions) error {
	open, release, err := a.opener(ctx)
	if err != nil {
		return err
	}
	defer release()
	src, err := open(ctx)
	if err != nil {
		return err
	}

	cur := cursor.New(src, cursor.WithName(a.sourceName()), cursor.WithLogger(a.log))
	defer cur.Close(ctx)

	var n int
	for (opts.limit <= 0 || n < opts.limit) && cur.Next(ctx) {
		var val interface{} = cur.Current
		if opts.eager {
			var d bson.D
			if err := cur.Decode(&d); err != nil {
				return err
			}
			val = d
		}
		j, err := bson.MarshalExtJSONIndent(val, opts.canonical, "", "  ")
		if err != nil {
			return err
		}
		if _, err := w.Write(j); err != nil {
			return err
		}
		n++
	}
	return cur.Err()
}
