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
	"github.com/spf13/cobra"
)

// --- Global Command Variables ---
var (
	servePort int
	dataDir   string
	ephemeral bool
	ownerID   string
	resumeID  string

	rootCmd = &cobra.Command{
		Use:   "desk",
		Short: "A cli to run and manage the Aleutian support desk",
		Long: `Desk runs the customer support conversation service: an HTTP
				server backed by a local conversation store, plus offline
				chat and session management against the same store.`,
	}

	// --- Server ---
	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Start the support desk HTTP server",
		Run:   runServe, // Defined in cmd_serve.go
	}

	// --- Chat ---
	chatCmd = &cobra.Command{
		Use:   "chat",
		Short: "Starts an interactive support conversation against the local store",
		Run:   runChatCommand, // Defined in cmd_chat.go
	}

	// --- Sessions ---
	sessionCmd = &cobra.Command{
		Use:   "session",
		Short: "Manage conversation sessions",
	}
	listSessionsCmd = &cobra.Command{
		Use:   "list [owner_id]",
		Short: "List the stored sessions belonging to an owner",
		Args:  cobra.ExactArgs(1),
		Run:   runListSessions, // Defined in cmd_session.go
	}
	endSessionCmd = &cobra.Command{
		Use:   "end [session_id]",
		Short: "Mark a conversation session as ended",
		Args:  cobra.ExactArgs(1),
		Run:   runEndSession, // Defined in cmd_session.go
	}
)

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0,
		"HTTP listen port (overrides DESK_PORT)")

	chatCmd.Flags().StringVar(&ownerID, "owner", "",
		"Owner id to record on the session")
	chatCmd.Flags().StringVar(&resumeID, "resume", "",
		"Resume an existing session instead of creating a new one")
	chatCmd.Flags().BoolVar(&ephemeral, "ephemeral", false,
		"Keep the conversation in memory only, nothing is written to disk")

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", "",
		"Conversation store directory (overrides DESK_DATA_DIR)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(listSessionsCmd)
	sessionCmd.AddCommand(endSessionCmd)
}
