// Copyright (c) 2025 The chatrelay Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Command chatrelayd runs the chat-relay server: it loads configuration,
// wires up logging, and serves connections until SIGINT/SIGTERM.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.chatrelay.io/chatrelay/config"
	"go.chatrelay.io/chatrelay/internal/logs"
	"go.chatrelay.io/chatrelay/session"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		configPath string
		addr       string
		root       string
	)
	flag.StringVar(&configPath, "config", "", "path to a chatrelay.toml configuration file")
	flag.StringVar(&addr, "addr", "", "listen address, overrides the config file and default")
	flag.StringVar(&root, "root", "", "storage root directory, overrides the config file and default")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "chatrelayd: load config: %v\n", err)
		return 1
	}
	if addr != "" {
		cfg.ListenAddr = addr
	}
	if root != "" {
		cfg.StorageRoot = root
	}

	backend := logs.New(os.Stderr, cfg.LogLevel)
	logger := backend.GetLogger("chatrelayd")

	srv := session.NewServer(session.Options{
		ListenAddr:   cfg.ListenAddr,
		StorageRoot:  cfg.StorageRoot,
		OfferTimeout: cfg.OfferTimeout,
		ChunkSize:    cfg.ChunkSize,
		ReadLimit:    cfg.ReadLimit,
		Logger:       logger,
	})

	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, closing listener")
		cancel()
	}()

	logger.Infof("listening on %s, storage root %s", cfg.ListenAddr, cfg.StorageRoot)
	if err := srv.Serve(ctx); err != nil {
		logger.Errorf("serve: %v", err)
		return 1
	}
	return 0
}
