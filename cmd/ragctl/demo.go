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

	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianRAG/pkg/ux"
)

// demoCorpus is a small self-contained document set about clinical data
// management, enough for the engine to extract a usable entity graph.
var demoCorpus = []string{
	"Clinical data management (CDM) is the process of collecting, cleaning, " +
		"and managing subject data in compliance with regulatory standards. " +
		"The primary objective of CDM is to provide high-quality data by " +
		"keeping the number of errors and missing data as low as possible.",

	"Data quality in clinical trials rests on key principles: accuracy, " +
		"completeness, consistency, and timeliness. Case report forms (CRFs) " +
		"are the primary data collection instrument, and edit checks validate " +
		"entered data against predefined rules.",

	"A clinical data management system (CDMS) supports double data entry, " +
		"discrepancy management, and medical coding with dictionaries such as " +
		"MedDRA and WHO Drug. Database lock occurs after all discrepancies are " +
		"resolved and the data are declared clean.",

	"Regulatory bodies including the FDA and EMA require audit trails for " +
		"all data changes. Good Clinical Data Management Practices (GCDMP) " +
		"provide guidance on standard operating procedures, quality assurance, " +
		"and the roles of the data manager throughout a trial.",
}

// demoQueries exercise each retrieval mode against the corpus.
var demoQueries = []struct {
	question string
	mode     string
}{
	{"What is clinical data management?", "naive"},
	{"What are the key principles of data quality?", "local"},
	{"How do regulatory requirements shape clinical data handling?", "global"},
	{"How does a CDMS support the data manager's work across a trial?", "hybrid"},
}

// demoCmd seeds the demo corpus and runs one query per retrieval mode.
var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Seed a sample corpus and demonstrate all four query modes",
	RunE:  runDemo,
}

func runDemo(cmd *cobra.Command, args []string) error {
	client := gatewayClient()

	fmt.Println(ux.Styles.Title.Render("AleutianRAG demo"))
	fmt.Println(ux.Styles.Muted.Render(fmt.Sprintf("seeding %d documents", len(demoCorpus))))

	resp, err := client.InsertDocuments(cmd.Context(), demoCorpus)
	if err != nil {
		return fmt.Errorf("failed to seed demo corpus: %w", err)
	}
	ux.Success("seeded %d documents in %.2fs", resp.DocumentsProcessed, resp.ProcessingTime)

	for i, q := range demoQueries {
		fmt.Println()
		fmt.Println(ux.Styles.Subtitle.Render(fmt.Sprintf("[%d/%d] %s mode", i+1, len(demoQueries), q.mode)))
		fmt.Println(ux.Styles.Bold.Render(q.question))

		answer, err := client.Query(cmd.Context(), q.question, q.mode)
		if err != nil {
			ux.Error("query failed: %v", err)
			continue
		}
		fmt.Println(ux.Styles.Box.Render(answer.Answer))
		fmt.Println(ux.Styles.Muted.Render(fmt.Sprintf("%.2fs", answer.ProcessingTime)))
	}

	graph, err := client.Graph(cmd.Context())
	if err != nil {
		ux.Warn("could not fetch graph stats: %v", err)
		return nil
	}
	fmt.Println()
	ux.Success("knowledge graph: %d nodes, %d edges", graph.Stats.NodeCount, graph.Stats.EdgeCount)
	return nil
}
