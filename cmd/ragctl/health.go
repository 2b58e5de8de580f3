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

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Show gateway health and per-dependency readiness",
	RunE:  runHealth,
}

func runHealth(cmd *cobra.Command, args []string) error {
	client := gatewayClient()

	hc, err := client.Health(cmd.Context())
	if err != nil {
		return err
	}
	ready, err := client.Ready(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Println(ux.Styles.Title.Render("AleutianRAG gateway"))
	fmt.Printf("%s  %s\n",
		ux.StatusStyle(hc.Status).Render(hc.Status),
		ux.Styles.Muted.Render(fmt.Sprintf("version %s, up %.0fs", hc.Version, hc.Uptime)))
	fmt.Printf("readiness: %s\n", ux.StatusStyle(ready.Status).Render(ready.Status))

	fmt.Println()
	for _, check := range ready.Checks {
		line := fmt.Sprintf("%-12s %s", check.Name, ux.StatusStyle(check.Status).Render(check.Status))
		if check.ResponseTimeMS != nil {
			line += ux.Styles.Muted.Render(fmt.Sprintf("  %.1fms", *check.ResponseTimeMS))
		}
		if check.Error != nil {
			line += ux.Styles.Error.Render("  " + *check.Error)
		}
		fmt.Println(line)
	}
	return nil
}
