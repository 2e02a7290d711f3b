// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Command rawbench seeds a collection with the benchmark fixture and compares eager and lazy
// decoding of its find results.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/patrickfreed/raw-bson-benchmarks/internal/config"
	"github.com/patrickfreed/raw-bson-benchmarks/internal/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

type app struct {
	cfgPath string
	verbose bool
	flags   config.Config

	cfg *config.Config
	log *logger.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "rawbench",
		Short: "Eager vs lazy BSON decoding benchmarks",
		Long: `rawbench seeds a collection with copies of a small fixture document and measures
finding it back with eagerly decoded documents and with zero-copy raw views.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	f := root.PersistentFlags()
	f.StringVarP(&a.cfgPath, "config", "c", "", "TOML configuration file")
	f.BoolVarP(&a.verbose, "verbose", "v", false, "log cursor and source activity at debug level")
	f.StringVar(&a.flags.Source, "source", "", "source kind: memory, mongo, pebble or dump")
	f.StringVar(&a.flags.URI, "uri", "", "MongoDB connection string")
	f.StringVar(&a.flags.Database, "database", "", "database name")
	f.StringVar(&a.flags.Collection, "collection", "", "collection name")
	f.StringVar(&a.flags.PebbleDir, "pebble-dir", "", "directory of the pebble store")
	f.StringVar(&a.flags.DumpDir, "dump-dir", "", "directory of the dump files")
	f.IntVar(&a.flags.Documents, "documents", 0, "number of fixture documents")
	f.IntVar(&a.flags.BatchSize, "batch-size", 0, "documents per batch")

	root.AddCommand(newSeedCmd(a), newRunCmd(a), newCatCmd(a))
	for _, cmd := range root.Commands() {
		a.flushLogOnReturn(cmd)
	}
	return root
}

// flushLogOnReturn makes cmd close the logger when its RunE returns, on success or error, so the
// queued messages reach the sink before the process exits. PersistentPostRun is skipped when RunE
// fails, so it cannot be used for this.
func (a *app) flushLogOnReturn(cmd *cobra.Command) {
	run := cmd.RunE
	if run == nil {
		return
	}
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		defer a.log.Close()
		return run(cmd, args)
	}
}

// setup loads the configuration and applies the flags that were set on the command line.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.cfgPath)
	if err != nil {
		return err
	}
	f := cmd.Flags()
	overrides := map[string]func(){
		"source":     func() { cfg.Source = a.flags.Source },
		"uri":        func() { cfg.URI = a.flags.URI },
		"database":   func() { cfg.Database = a.flags.Database },
		"collection": func() { cfg.Collection = a.flags.Collection },
		"pebble-dir": func() { cfg.PebbleDir = a.flags.PebbleDir },
		"dump-dir":   func() { cfg.DumpDir = a.flags.DumpDir },
		"documents":  func() { cfg.Documents = a.flags.Documents },
		"batch-size": func() { cfg.BatchSize = a.flags.BatchSize },
	}
	for name, apply := range overrides {
		if f.Changed(name) {
			apply()
		}
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	log := logrus.New()
	log.SetOutput(cmd.ErrOrStderr())
	levels := map[logger.Component]logger.Level{
		logger.ComponentBenchmark: logger.InfoLevel,
		logger.ComponentSource:    logger.InfoLevel,
	}
	if a.verbose {
		log.SetLevel(logrus.DebugLevel)
		levels[logger.ComponentAll] = logger.DebugLevel
	}
	a.log = logger.New(logger.NewLogrusSink(log), levels)
	return nil
}

func (a *app) sourceName() string {
	return fmt.Sprintf("%s:%s.%s", a.cfg.Source, a.cfg.Database, a.cfg.Collection)
}
