// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/patrickfreed/raw-bson-benchmarks/benchmark"
	"github.com/patrickfreed/raw-bson-benchmarks/bson/primitive"
)

func newSeedCmd(a *app) *cobra.Command {
	var snappy bool
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Replace the source contents with copies of the fixture document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			doc := benchmark.NewFixtureDocument(primitive.NewObjectID())
			if err := a.seed(cmd.Context(), doc, snappy); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %s with %d documents\n", a.sourceName(), a.cfg.Documents)
			return nil
		},
	}
	cmd.Flags().BoolVar(&snappy, "snappy", false, "compress dump files with snappy")
	return cmd
}
