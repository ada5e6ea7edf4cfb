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
	"log"

	"github.com/AleutianAI/AleutianDesk/services/orchestrator"
	"github.com/spf13/cobra"
)

func runServe(cmd *cobra.Command, args []string) {
	cfg := orchestrator.ConfigFromEnv()
	if servePort != 0 {
		cfg.Port = servePort
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}

	svc, err := orchestrator.New(cfg)
	if err != nil {
		log.Fatalf("Failed to create the desk service: %v", err)
	}
	defer svc.Close()

	if err := svc.Run(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
