// Copyright (c) 2025 The chatrelay Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package config loads chatrelay's server configuration from an optional
// TOML file, falling back to spec.md's literal defaults for any field left
// unset.
package config

import (
	"time"

	"github.com/BurntSushi/toml"

	"go.chatrelay.io/chatrelay/transfer"
)

// DefaultListenAddr binds TCP on all interfaces per spec.md §6.
const DefaultListenAddr = "0.0.0.0:12345"

// DefaultStorageRoot is the working directory under which ServerFiles/ is
// created, per spec.md §4.9.
const DefaultStorageRoot = "."

// DefaultLogLevel is the level the logging backend starts at.
const DefaultLogLevel = "INFO"

// DefaultReadLimit caps an accepted frame payload_length.
const DefaultReadLimit = 16 << 20

// Config is the server's tunable surface. All fields are optional in the
// TOML source; zero values are replaced by spec.md's defaults in Load.
type Config struct {
	ListenAddr      string        `toml:"listen_addr"`
	StorageRoot     string        `toml:"storage_root"`
	OfferTimeout    time.Duration `toml:"-"`
	OfferTimeoutRaw string        `toml:"offer_timeout"`
	ChunkSize       int           `toml:"chunk_size"`
	ReadLimit       int           `toml:"read_limit"`
	LogLevel        string        `toml:"log_level"`
}

// Default returns a Config populated entirely with spec.md's literal
// defaults.
func Default() Config {
	return Config{
		ListenAddr:   DefaultListenAddr,
		StorageRoot:  DefaultStorageRoot,
		OfferTimeout: transfer.DefaultOfferTimeout,
		ChunkSize:    transfer.DefaultChunkSize,
		ReadLimit:    DefaultReadLimit,
		LogLevel:     DefaultLogLevel,
	}
}

// Load reads a TOML config file at path and merges it onto Default(). An
// empty path is not an error; Load simply returns the defaults. A path that
// names a file which cannot be read or decoded is an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	var raw Config
	if _, err := toml.DecodeFile(path, &raw); err != nil {
		return Config{}, err
	}

	if raw.ListenAddr != "" {
		cfg.ListenAddr = raw.ListenAddr
	}
	if raw.StorageRoot != "" {
		cfg.StorageRoot = raw.StorageRoot
	}
	if raw.OfferTimeoutRaw != "" {
		d, err := time.ParseDuration(raw.OfferTimeoutRaw)
		if err != nil {
			return Config{}, err
		}
		cfg.OfferTimeout = d
	}
	if raw.ChunkSize != 0 {
		cfg.ChunkSize = raw.ChunkSize
	}
	if raw.ReadLimit != 0 {
		cfg.ReadLimit = raw.ReadLimit
	}
	if raw.LogLevel != "" {
		cfg.LogLevel = raw.LogLevel
	}
	return cfg, nil
}
