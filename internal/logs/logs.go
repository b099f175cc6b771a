// Copyright (c) 2025 The chatrelay Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package logs wraps gopkg.in/op/go-logging.v1 in a small Backend type that
// hands out *logging.Logger values tagged with a component name.
// cmd/chatrelayd asks for a single logger named "chatrelayd" and the server
// passes that same logger to the session, rooms and transfer code, so their
// log lines carry that one name, not the name of the package that logged
// them. Package promise does not log.
package logs

import (
	"io"
	"os"

	logging "gopkg.in/op/go-logging.v1"
)

var format = logging.MustStringFormatter(
	`%{time:2006-01-02 15:04:05.000} %{level:.4s} %{module}: %{message}`,
)

// Backend owns the process-wide logging configuration and hands out named
// loggers to callers.
type Backend struct {
	level logging.Level
}

// New constructs a Backend writing to w (typically os.Stderr, per spec.md
// §6's "the server writes operational messages to standard error") at the
// given level. An unparsable level falls back to INFO.
func New(w io.Writer, level string) *Backend {
	lvl, err := logging.LogLevel(level)
	if err != nil {
		lvl = logging.INFO
	}
	backend := logging.NewLogBackend(w, "", 0)
	formatted := logging.NewBackendFormatter(backend, format)
	leveled := logging.AddModuleLevel(formatted)
	leveled.SetLevel(lvl, "")
	logging.SetBackend(leveled)
	return &Backend{level: lvl}
}

// NewStderr is a convenience constructor matching the default deployment:
// log to standard error at INFO level.
func NewStderr() *Backend {
	return New(os.Stderr, "INFO")
}

// GetLogger returns a logger tagged with the given component name.
func (b *Backend) GetLogger(name string) *logging.Logger {
	return logging.MustGetLogger(name)
}
