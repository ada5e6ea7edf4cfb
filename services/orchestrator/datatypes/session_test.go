// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package datatypes

import (
	"strings"
	"testing"
	"time"
)

func TestSessionClone_IsDeep(t *testing.T) {
	orig := &Session{
		ID:      "sess-1",
		OwnerID: "user-1",
		Messages: []Message{
			{Role: RoleUser, Text: "hello", Timestamp: time.Now()},
			{Role: RoleAssistant, Text: "hi there", Timestamp: time.Now()},
		},
	}

	clone := orig.Clone()
	clone.Messages[0].Text = "mutated"
	clone.Messages = append(clone.Messages, Message{Role: RoleUser, Text: "extra"})

	if orig.Messages[0].Text != "hello" {
		t.Errorf("clone mutation leaked into original: got %q", orig.Messages[0].Text)
	}
	if len(orig.Messages) != 2 {
		t.Errorf("clone append leaked into original: got %d messages", len(orig.Messages))
	}
}

func TestSessionClone_Nil(t *testing.T) {
	var s *Session
	if s.Clone() != nil {
		t.Error("cloning a nil session should return nil")
	}
}

func TestLastMessage(t *testing.T) {
	t.Run("empty session has no last message", func(t *testing.T) {
		s := &Session{ID: "sess-1"}
		if s.LastMessage() != nil {
			t.Error("expected nil last message for empty session")
		}
	})

	t.Run("returns most recent message", func(t *testing.T) {
		s := &Session{
			Messages: []Message{
				{Role: RoleUser, Text: "first"},
				{Role: RoleAssistant, Text: "second"},
			},
		}
		last := s.LastMessage()
		if last == nil || last.Text != "second" {
			t.Errorf("expected last message 'second', got %+v", last)
		}
	})
}

func TestNewSessionRequest_Validate(t *testing.T) {
	t.Run("empty userId is allowed", func(t *testing.T) {
		req := NewSessionRequest{}
		if err := req.Validate(); err != nil {
			t.Errorf("anonymous session request should validate: %v", err)
		}
	})

	t.Run("oversized userId is rejected", func(t *testing.T) {
		req := NewSessionRequest{UserID: strings.Repeat("x", MaxOwnerIDLength+1)}
		if err := req.Validate(); err == nil {
			t.Error("expected validation error for oversized userId")
		}
	})
}

func TestChatRequest_Validate(t *testing.T) {
	t.Run("valid request passes", func(t *testing.T) {
		req := ChatRequest{SessionID: "sess-1", Message: "Where is my order?"}
		if err := req.Validate(); err != nil {
			t.Errorf("valid request should pass: %v", err)
		}
	})

	t.Run("missing sessionId fails", func(t *testing.T) {
		req := ChatRequest{Message: "hello"}
		if err := req.Validate(); err == nil {
			t.Error("expected validation error for missing sessionId")
		}
	})

	t.Run("missing message fails", func(t *testing.T) {
		req := ChatRequest{SessionID: "sess-1"}
		if err := req.Validate(); err == nil {
			t.Error("expected validation error for missing message")
		}
	})

	t.Run("oversized message fails", func(t *testing.T) {
		req := ChatRequest{
			SessionID: "sess-1",
			Message:   strings.Repeat("a", MaxMessageBytes+1),
		}
		if err := req.Validate(); err == nil {
			t.Error("expected validation error for message over size limit")
		}
	})
}
