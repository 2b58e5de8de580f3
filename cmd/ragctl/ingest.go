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
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/AleutianAI/AleutianRAG/cmd/ragctl/config"
	"github.com/AleutianAI/AleutianRAG/pkg/ux"
)

var ingestBatchSize int

// ingestCmd ingests files or directories of text documents.
//
// # Description
//
// Files are read concurrently, then posted to the gateway in fixed-size
// batches. Batch requests are paced with a rate limiter rather than fired
// back to back: the engine serializes writes, so hammering it only builds a
// queue. A failed batch stops the run and reports which batch failed;
// documents from earlier batches stay ingested.
var ingestCmd = &cobra.Command{
	Use:   "ingest <path>...",
	Short: "Ingest text files into the knowledge graph",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runIngest,
}

func init() {
	ingestCmd.Flags().IntVar(&ingestBatchSize, "batch-size", 0, "documents per request (overrides config)")
}

func runIngest(cmd *cobra.Command, args []string) error {
	files, err := collectFiles(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no ingestable files found under %s", strings.Join(args, ", "))
	}

	docs, err := readAll(cmd.Context(), files, config.Global.Ingest.Concurrency)
	if err != nil {
		return err
	}

	batchSize := config.Global.Ingest.BatchSize
	if ingestBatchSize > 0 {
		batchSize = ingestBatchSize
	}

	client := gatewayClient()
	limiter := rate.NewLimiter(rate.Limit(config.Global.Ingest.RequestsPerSecond), 1)

	total := 0
	for start := 0; start < len(docs); start += batchSize {
		end := start + batchSize
		if end > len(docs) {
			end = len(docs)
		}
		batch := docs[start:end]

		if err := limiter.Wait(cmd.Context()); err != nil {
			return err
		}

		resp, err := client.InsertDocuments(cmd.Context(), batch)
		if err != nil {
			ux.Error("batch %d-%d failed: %v", start, end-1, err)
			return fmt.Errorf("ingestion stopped after %d documents: %w", total, err)
		}
		total += resp.DocumentsProcessed
		ux.Success("batch %d-%d ingested (%.2fs)", start, end-1, resp.ProcessingTime)
	}

	ux.Success("ingested %d documents from %d files", total, len(files))
	return nil
}

// collectFiles expands paths into a sorted list of text files.
func collectFiles(paths []string) ([]string, error) {
	var files []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, path)
			continue
		}
		err = filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && ingestable(p) {
				files = append(files, p)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	sort.Strings(files)
	return files, nil
}

func ingestable(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".md", ".text":
		return true
	default:
		return false
	}
}

// readAll reads every file with bounded concurrency, preserving order.
func readAll(ctx context.Context, files []string, concurrency int) ([]string, error) {
	if concurrency < 1 {
		concurrency = 1
	}

	docs := make([]string, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, file := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", file, err)
			}
			docs[i] = string(data)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return docs, nil
}
