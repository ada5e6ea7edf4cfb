// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package store persists support conversations.
//
// The engine only ever talks to the ConversationStore interface; the
// concrete implementation is chosen at wiring time. Two implementations
// exist: Memory (tests, offline CLI sessions) and Badger (server, durable
// across restarts). Business logic must never reach for a process-wide
// store directly.
//
// # Ordering Guarantees
//
// AppendMessage is atomic per call and the appended message is visible to
// the immediately following read. Nothing here serializes concurrent
// appends to the same session from different requests; a well-behaved
// client sends one turn at a time.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/AleutianAI/AleutianDesk/services/orchestrator/datatypes"
)

// Sentinel errors for store operations.
var (
	// ErrSessionNotFound is returned when a session id references no
	// stored session. The HTTP layer maps this to 404 so clients can
	// offer "start a new session".
	ErrSessionNotFound = errors.New("session not found")

	// ErrEmptyMessage is returned when an append carries no text after
	// trimming. Messages are non-empty by construction.
	ErrEmptyMessage = errors.New("message text is empty")

	// ErrInvalidRole is returned when an append carries a role other
	// than "user" or "assistant".
	ErrInvalidRole = errors.New("invalid message role")
)

// EndedMarkerText is the terminal message appended by EndSession. The
// record itself is never deleted; history stays inspectable for audit and
// human handoff.
const EndedMarkerText = "This session has ended. Start a new session to continue."

// ConversationStore is the durable record of sessions and their ordered
// messages.
//
// Every write must be durable before the call returns. All methods return
// detached copies; mutating a returned session never affects stored state.
type ConversationStore interface {
	// CreateSession creates a session with empty history. ownerID may be
	// empty for anonymous sessions.
	CreateSession(ctx context.Context, ownerID string) (*datatypes.Session, error)

	// AppendMessage appends one message and returns the updated session.
	// Returns ErrSessionNotFound for unknown ids.
	AppendMessage(ctx context.Context, sessionID, role, text string) (*datatypes.Session, error)

	// GetSession returns the session or ErrSessionNotFound.
	GetSession(ctx context.Context, sessionID string) (*datatypes.Session, error)

	// ListSessions returns the owner's sessions newest first. Sessions
	// with zero messages are considered abandoned and are not listed.
	ListSessions(ctx context.Context, ownerID string) ([]*datatypes.Session, error)

	// EndSession appends the terminal marker and flags the session as
	// ended. Ending an already-ended session appends another marker; it
	// never corrupts history.
	EndSession(ctx context.Context, sessionID string) (*datatypes.Session, error)

	// Close releases underlying resources.
	Close() error
}

// validateAppend is the shared append precondition for both implementations.
func validateAppend(role, text string) error {
	if role != datatypes.RoleUser && role != datatypes.RoleAssistant {
		return ErrInvalidRole
	}
	if len(text) == 0 {
		return ErrEmptyMessage
	}
	return nil
}

// newMessage stamps a message with the store's clock.
func newMessage(role, text string) datatypes.Message {
	return datatypes.Message{Role: role, Text: text, Timestamp: nowUTC()}
}

func nowUTC() time.Time {
	return time.Now().UTC()
}
