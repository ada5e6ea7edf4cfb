// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package datatypes provides data structures for the support desk service.
package datatypes

import "time"

// Message sender roles. Only these two roles are ever persisted; system
// instructions are composed at generation time and never stored.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single turn half in a support conversation. Messages are
// append-only: once stored they are never edited or removed.
type Message struct {
	Role      string    `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Session is one customer-support conversation thread.
//
// OwnerID is the opaque identifier handed to us by the identity layer and
// may be empty for anonymous sessions. Messages are strictly ordered by
// arrival. Ended sessions keep their full history for audit and agent
// handoff; ending a session appends a terminal marker instead of deleting
// anything.
type Session struct {
	ID        string    `json:"session_id"`
	OwnerID   string    `json:"owner_id,omitempty"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Ended     bool      `json:"ended"`
}

// Clone returns a deep copy of the session. Stores hand out clones so a
// caller can never mutate history behind the store's back.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := *s
	out.Messages = make([]Message, len(s.Messages))
	copy(out.Messages, s.Messages)
	return &out
}

// LastMessage returns the most recent message, or nil for an empty session.
func (s *Session) LastMessage() *Message {
	if len(s.Messages) == 0 {
		return nil
	}
	return &s.Messages[len(s.Messages)-1]
}
