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
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/AleutianAI/AleutianDesk/services/engine"
	"github.com/AleutianAI/AleutianDesk/services/orchestrator"
	"github.com/AleutianAI/AleutianDesk/services/store"
	"github.com/spf13/cobra"
)

// runChatCommand holds an interactive conversation using the engine
// directly, no HTTP server involved. With --ephemeral the transcript
// lives only in process memory; otherwise it persists to the local
// Badger store and can be resumed with --resume.
func runChatCommand(cmd *cobra.Command, args []string) {
	conversations, err := openLocalStore()
	if err != nil {
		log.Fatalf("Could not open the conversation store: %v", err)
	}
	defer conversations.Close()

	client, err := orchestrator.NewCompletionClient(os.Getenv("LLM_BACKEND_TYPE"))
	if err != nil {
		log.Fatalf("Failed to initialize the completion client: %v", err)
	}
	eng := engine.New(conversations,
		engine.NewReplyGenerator(client, os.Getenv("SUPPORT_AGENT_INSTRUCTIONS")))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	sessionID := resumeID
	if sessionID == "" {
		sess, err := eng.CreateSession(ctx, ownerID)
		if err != nil {
			log.Fatalf("Could not create a session: %v", err)
		}
		sessionID = sess.ID
	}
	fmt.Printf("Session: %s\n", sessionID)
	fmt.Println("Type 'exit' or 'quit' to leave the conversation.")

	if err := chatLoop(ctx, eng, sessionID); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("Chat error: %v", err)
	}
}

func chatLoop(ctx context.Context, eng *engine.Engine, sessionID string) error {
	scanner := bufio.NewScanner(os.Stdin)
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		fmt.Print("> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			return nil
		}

		result, err := eng.SendTurn(ctx, sessionID, line)
		if err != nil {
			if errors.Is(err, store.ErrSessionNotFound) {
				return fmt.Errorf("session %s does not exist", sessionID)
			}
			return err
		}

		fmt.Printf("\n%s\n\n", result.Reply)
		if result.Escalation {
			fmt.Println("[This conversation may need a human agent.]")
		}
	}
}

// openLocalStore opens the store the CLI commands share: in-memory when
// --ephemeral is set, the local Badger directory otherwise.
func openLocalStore() (store.ConversationStore, error) {
	if ephemeral {
		return store.NewMemory(), nil
	}
	dir := dataDir
	if dir == "" {
		dir = os.Getenv("DESK_DATA_DIR")
	}
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		dir = home + "/.aleutian-desk"
	}
	return store.OpenBadger(store.DefaultBadgerConfig(dir))
}
