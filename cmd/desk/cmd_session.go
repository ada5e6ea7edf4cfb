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
	"log"

	"github.com/spf13/cobra"
)

func runListSessions(cmd *cobra.Command, args []string) {
	conversations, err := openLocalStore()
	if err != nil {
		log.Fatalf("Could not open the conversation store: %v", err)
	}
	defer conversations.Close()

	sessions, err := conversations.ListSessions(context.Background(), args[0])
	if err != nil {
		log.Fatalf("Could not list sessions: %v", err)
	}
	if len(sessions) == 0 {
		fmt.Println("No sessions found.")
		return
	}

	for _, sess := range sessions {
		state := "open"
		if sess.Ended {
			state = "ended"
		}
		fmt.Printf("%s  %-5s  %3d messages  last activity %s\n",
			sess.ID, state, len(sess.Messages),
			sess.UpdatedAt.Format("2006-01-02 15:04:05"))
	}
}

func runEndSession(cmd *cobra.Command, args []string) {
	conversations, err := openLocalStore()
	if err != nil {
		log.Fatalf("Could not open the conversation store: %v", err)
	}
	defer conversations.Close()

	sess, err := conversations.EndSession(context.Background(), args[0])
	if err != nil {
		log.Fatalf("Could not end session %s: %v", args[0], err)
	}
	fmt.Printf("Session %s ended.\n", sess.ID)
}
