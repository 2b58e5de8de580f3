// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianRAG/cmd/ragctl/config"
	"github.com/AleutianAI/AleutianRAG/pkg/ux"
)

// watchCmd continuously ingests files dropped into a directory.
//
// # Description
//
// Watches one directory (non-recursive) with fsnotify. Create and write
// events for ingestable files are debounced: a file is only posted after it
// has been quiet for the configured window, so a file still being copied in
// is not ingested half-written. Runs until interrupted.
var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Watch a directory and ingest new or changed text files",
	Args:  cobra.ExactArgs(1),
	RunE:  runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	dir := args[0]
	info, err := os.Stat(dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	debounce := time.Duration(config.Global.Ingest.WatchDebounceMillis) * time.Millisecond
	client := gatewayClient()

	ux.Success("watching %s (debounce %s)", dir, debounce)

	// pending maps path -> timer; a new event on the same path resets it
	pending := make(map[string]*time.Timer)
	ingested := make(chan string)

	for {
		select {
		case <-ctx.Done():
			ux.Warn("shutting down")
			return nil

		case path := <-ingested:
			delete(pending, path)
			if err := ingestOne(ctx, client, path); err != nil {
				ux.Error("failed to ingest %s: %v", path, err)
				continue
			}
			ux.Success("ingested %s", path)

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if !ingestable(event.Name) {
				continue
			}
			path := event.Name
			if timer, exists := pending[path]; exists {
				timer.Reset(debounce)
				continue
			}
			pending[path] = time.AfterFunc(debounce, func() {
				select {
				case ingested <- path:
				case <-ctx.Done():
				}
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			ux.Error("watch error: %v", err)
		}
	}
}

func ingestOne(ctx context.Context, client *GatewayClient, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return fmt.Errorf("file is empty")
	}
	_, err = client.InsertDocuments(ctx, []string{string(data)})
	return err
}
