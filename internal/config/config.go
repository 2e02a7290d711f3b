// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package config loads rawbench settings. Later layers override earlier ones: defaults, the TOML
// file, a .env file, the process environment, then command line flags.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
)

// Source kinds.
const (
	SourceMemory = "memory"
	SourceMongo  = "mongo"
	SourcePebble = "pebble"
	SourceDump   = "dump"
)

// Environment variables read by FromEnv.
const (
	EnvURI         = "MONGODB_URI"
	EnvSource      = "RAWBENCH_SOURCE"
	EnvDocuments   = "RAWBENCH_DOCUMENTS"
	EnvBatchSize   = "RAWBENCH_BATCH_SIZE"
	EnvRuntime     = "RAWBENCH_RUNTIME"
	EnvMetricsAddr = "RAWBENCH_METRICS_ADDR"
)

// Config holds the settings of a rawbench run.
type Config struct {
	Source     string `toml:"source"`
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
	PebbleDir  string `toml:"pebble_dir"`
	DumpDir    string `toml:"dump_dir"`

	Documents         int      `toml:"documents"`
	BatchSize         int      `toml:"batch_size"`
	Iterations        int      `toml:"iterations"`
	Runtime           string   `toml:"runtime"`
	Parallel          int      `toml:"parallel"`
	ValidateDocuments bool     `toml:"validate"`
	Cases             []string `toml:"cases"`

	MetricsAddr string `toml:"metrics_addr"`
	JSON        bool   `toml:"json"`
}

// Default returns the settings of the original find benchmark: ten thousand fixture documents in
// bench.coll on a local server.
func Default() *Config {
	return &Config{
		Source:     SourceMemory,
		URI:        "mongodb://localhost:27017",
		Database:   "bench",
		Collection: "coll",
		PebbleDir:  "rawbench.pebble",
		DumpDir:    "dump",
		Documents:  10000,
		BatchSize:  101,
		Iterations: 10,
		Runtime:    "1m",
		Parallel:   1,
	}
}

// Load returns the defaults overlaid with the TOML file at path, if it is not empty, and then with
// the environment. A .env file in the working directory is loaded into the environment first
// without overriding variables already set.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(err, "config")
		}
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrapf(err, "config: parsing %s", path)
		}
	}
	if err := godotenv.Load(); err != nil && !os.IsNotExist(errors.Cause(err)) {
		return nil, errors.Wrap(err, "config: loading .env")
	}
	if err := cfg.FromEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

// FromEnv overlays the variables that lookup finds.
func (c *Config) FromEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvURI); ok && v != "" {
		c.URI = v
	}
	if v, ok := lookup(EnvSource); ok && v != "" {
		c.Source = strings.ToLower(v)
	}
	if v, ok := lookup(EnvRuntime); ok && v != "" {
		c.Runtime = v
	}
	if v, ok := lookup(EnvMetricsAddr); ok {
		c.MetricsAddr = v
	}
	for name, dst := range map[string]*int{EnvDocuments: &c.Documents, EnvBatchSize: &c.BatchSize} {
		v, ok := lookup(name)
		if !ok || v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.Wrapf(err, "config: %s", name)
		}
		*dst = n
	}
	return nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch c.Source {
	case SourceMemory, SourceMongo, SourcePebble, SourceDump:
	default:
		return errors.Errorf("config: unknown source %q", c.Source)
	}
	if c.Documents < 0 {
		return errors.Errorf("config: documents must not be negative, got %d", c.Documents)
	}
	if c.BatchSize < 0 {
		return errors.Errorf("config: batch_size must not be negative, got %d", c.BatchSize)
	}
	if c.Parallel < 1 {
		return errors.Errorf("config: parallel must be at least 1, got %d", c.Parallel)
	}
	if _, err := c.RuntimeDuration(); err != nil {
		return err
	}
	return nil
}

// RuntimeDuration parses Runtime.
func (c *Config) RuntimeDuration() (time.Duration, error) {
	d, err := time.ParseDuration(c.Runtime)
	if err != nil {
		return 0, errors.Wrap(err, "config: runtime")
	}
	return d, nil
}

// WantCase reports whether the case named name was selected. An empty selection selects every
// case.
func (c *Config) WantCase(name string) bool {
	if len(c.Cases) == 0 {
		return true
	}
	for _, want := range c.Cases {
		if strings.EqualFold(want, name) {
			return true
		}
	}
	return false
}
