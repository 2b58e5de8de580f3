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
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianRAG/cmd/ragctl/config"
	"github.com/AleutianAI/AleutianRAG/pkg/ux"
)

var (
	evalDataset string
	evalMode    string
)

// evalCase is one entry of the evaluation dataset file.
type evalCase struct {
	Question string `json:"question"`
	Expected string `json:"expected_answer"`
}

// evalResult scores one case.
type evalResult struct {
	Question string  `json:"question"`
	Answer   string  `json:"answer"`
	Score    float64 `json:"score"`
	Judged   bool    `json:"judged"` // true when an LLM judge produced the score
	Err      string  `json:"error,omitempty"`
}

// evalCmd scores the deployment's answers against a Q/A dataset.
//
// # Description
//
// Each dataset question is sent through the gateway; the answer is scored
// against the expected answer either by an LLM judge (when an
// OpenAI-compatible judge endpoint is configured) or by keyword overlap as a
// cheap fallback. Scores are 0..1; the command reports the per-case and
// aggregate results.
var evalCmd = &cobra.Command{
	Use:   "eval",
	Short: "Evaluate answer quality against a Q/A dataset",
	RunE:  runEval,
}

func init() {
	evalCmd.Flags().StringVar(&evalDataset, "dataset", "", "path to a JSON file of {question, expected_answer} pairs")
	evalCmd.Flags().StringVar(&evalMode, "mode", "hybrid", "retrieval mode to evaluate")
	evalCmd.MarkFlagRequired("dataset")
}

func runEval(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(evalDataset)
	if err != nil {
		return fmt.Errorf("failed to read dataset: %w", err)
	}
	var cases []evalCase
	if err := json.Unmarshal(data, &cases); err != nil {
		return fmt.Errorf("failed to parse dataset: %w", err)
	}
	if len(cases) == 0 {
		return fmt.Errorf("dataset is empty")
	}

	client := gatewayClient()
	judge := newJudge(config.Global.Eval)

	fmt.Println(ux.Styles.Title.Render(fmt.Sprintf("Evaluating %d cases (%s mode)", len(cases), evalMode)))

	results := make([]evalResult, 0, len(cases))
	var total float64
	for i, tc := range cases {
		result := evalResult{Question: tc.Question}

		resp, err := client.Query(cmd.Context(), tc.Question, evalMode)
		if err != nil {
			result.Err = err.Error()
			ux.Error("[%d/%d] query failed: %v", i+1, len(cases), err)
			results = append(results, result)
			continue
		}
		result.Answer = resp.Answer
		result.Score, result.Judged = judge.score(cmd.Context(), tc, resp.Answer)
		total += result.Score

		style := ux.Styles.Success
		if result.Score < 0.5 {
			style = ux.Styles.Warning
		}
		fmt.Println(style.Render(fmt.Sprintf("[%d/%d] %.2f  %s", i+1, len(cases), result.Score, tc.Question)))
		results = append(results, result)
	}

	avg := total / float64(len(cases))
	fmt.Println()
	fmt.Println(ux.Styles.Box.Render(fmt.Sprintf("average score: %.3f over %d cases", avg, len(cases))))
	return nil
}

// judge scores answers, via an LLM when configured.
type judge struct {
	client *openai.Client
	model  string
}

func newJudge(cfg config.EvalConfig) *judge {
	if cfg.JudgeBaseURL == "" {
		return &judge{}
	}
	clientConfig := openai.DefaultConfig(cfg.JudgeAPIKey)
	clientConfig.BaseURL = cfg.JudgeBaseURL
	return &judge{client: openai.NewClientWithConfig(clientConfig), model: cfg.JudgeModel}
}

// score returns a 0..1 score and whether an LLM judge produced it.
func (j *judge) score(ctx context.Context, tc evalCase, answer string) (float64, bool) {
	if j.client == nil {
		return keywordOverlap(tc.Expected, answer), false
	}

	prompt := fmt.Sprintf(
		"Score how well the candidate answer matches the expected answer on a scale from 0.0 to 1.0. "+
			"Reply with only the number.\n\nQuestion: %s\nExpected answer: %s\nCandidate answer: %s",
		tc.Question, tc.Expected, answer)

	resp, err := j.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: j.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0,
	})
	if err != nil || len(resp.Choices) == 0 {
		ux.Warn("judge unavailable, falling back to keyword overlap: %v", err)
		return keywordOverlap(tc.Expected, answer), false
	}

	score, err := strconv.ParseFloat(strings.TrimSpace(resp.Choices[0].Message.Content), 64)
	if err != nil || score < 0 || score > 1 {
		return keywordOverlap(tc.Expected, answer), false
	}
	return score, true
}

// keywordOverlap is the judgeless fallback: the fraction of expected-answer
// words (4+ chars, deduplicated) present in the candidate answer.
func keywordOverlap(expected, answer string) float64 {
	words := map[string]bool{}
	for _, w := range strings.Fields(strings.ToLower(expected)) {
		w = strings.Trim(w, ".,;:!?\"'()")
		if len(w) >= 4 {
			words[w] = true
		}
	}
	if len(words) == 0 {
		return 0
	}

	lowered := strings.ToLower(answer)
	hits := 0
	for w := range words {
		if strings.Contains(lowered, w) {
			hits++
		}
	}
	return float64(hits) / float64(len(words))
}
