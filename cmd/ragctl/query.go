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
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianRAG/pkg/ux"
)

var queryMode string

var queryCmd = &cobra.Command{
	Use:   "query <question>",
	Short: "Run one retrieval-augmented query",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runQuery,
}

func init() {
	queryCmd.Flags().StringVar(&queryMode, "mode", "hybrid", "retrieval mode: naive|local|global|hybrid")
}

func runQuery(cmd *cobra.Command, args []string) error {
	question := strings.Join(args, " ")

	resp, err := gatewayClient().Query(cmd.Context(), question, queryMode)
	if err != nil {
		return err
	}

	fmt.Println(ux.Styles.Title.Render(question))
	fmt.Println(ux.Styles.Muted.Render(fmt.Sprintf("mode=%s  %.2fs", resp.Mode, resp.ProcessingTime)))
	fmt.Println()
	fmt.Println(ux.Styles.Box.Render(resp.Answer))
	return nil
}
