// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// This file contains request and response types for the session endpoints.
package datatypes

import (
	"github.com/go-playground/validator/v10"
)

// MaxMessageBytes is the maximum size of a single user message. Checked as
// byte length, not rune count, so oversized payloads are rejected before
// they reach the store or the completion provider.
const MaxMessageBytes = 32 * 1024 // 32KB

// MaxOwnerIDLength bounds the opaque owner identifier. The identity layer
// owns the format; we only refuse values that cannot plausibly reference a
// user.
const MaxOwnerIDLength = 128

// sessionValidate is the validator instance for session datatypes.
// Initialized in init() with custom validators.
var sessionValidate *validator.Validate

func init() {
	sessionValidate = validator.New()
	_ = sessionValidate.RegisterValidation("maxbytes", validateMaxBytes)
}

// validateMaxBytes enforces MaxMessageBytes on string fields.
func validateMaxBytes(fl validator.FieldLevel) bool {
	return len(fl.Field().String()) <= MaxMessageBytes
}

// NewSessionRequest is the body for POST /api/session/new.
//
// UserID is optional: anonymous sessions are permitted. When present it is
// treated as an opaque reference issued by the identity provider.
type NewSessionRequest struct {
	UserID string `json:"userId" validate:"omitempty,min=1,max=128"`
}

// Validate validates the NewSessionRequest fields.
func (r *NewSessionRequest) Validate() error {
	return sessionValidate.Struct(r)
}

// NewSessionResponse carries the id of a freshly created session.
type NewSessionResponse struct {
	SessionID string `json:"sessionId"`
}

// ChatRequest is the body for POST /api/session/chat: one user turn
// addressed to an existing session.
type ChatRequest struct {
	SessionID string `json:"sessionId" validate:"required"`
	Message   string `json:"message" validate:"required,maxbytes"`
}

// Validate validates the ChatRequest fields.
func (r *ChatRequest) Validate() error {
	return sessionValidate.Struct(r)
}

// ChatResponse is the reply to a user turn.
//
// Reply is always non-empty: provider failures are masked into a fallback
// string, with Fallback set so clients (and dashboards) can tell a degraded
// answer from a real one. Escalation signals that a human agent should take
// the thread over.
type ChatResponse struct {
	Reply      string `json:"reply"`
	Escalation bool   `json:"escalation"`
	Fallback   bool   `json:"fallback"`
}

// SessionResponse wraps a full session for GET /api/session/:sessionId.
type SessionResponse struct {
	Session *Session `json:"session"`
}

// SessionListResponse wraps an owner's sessions, newest first.
type SessionListResponse struct {
	Sessions []*Session `json:"sessions"`
}

// EndSessionResponse acknowledges POST /api/session/:sessionId/end.
type EndSessionResponse struct {
	OK        bool   `json:"ok"`
	SessionID string `json:"sessionId"`
}
