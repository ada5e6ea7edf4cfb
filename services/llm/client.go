// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package llm provides pluggable completion-provider backends.
//
// The engine treats the provider as an opaque text-completion function: a
// role-tagged message sequence goes in, generated text plus the raw
// provider payload comes out. Backends are selected by LLM_BACKEND_TYPE at
// startup.
package llm

import (
	"context"
	"encoding/json"
	"errors"
)

// Roles for prompt messages. System is only used for the fixed support
// instructions; it never appears in stored history.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ErrInvalidResponse is returned when the provider answered 2xx but the
// payload lacks the expected text field. The raw payload is still returned
// alongside so diagnostics keep the evidence.
var ErrInvalidResponse = errors.New("provider response lacks generated text")

// Message is one role-tagged entry of a completion request.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Completion is a provider answer: the generated text plus the raw payload
// kept for diagnostics. Raw is opaque; nothing downstream parses it.
type Completion struct {
	Text string
	Raw  json.RawMessage
}

// CompletionClient is the standard interface for any completion backend.
//
// Complete sends the full role-tagged prompt (system instructions, context
// window, new user turn) in order. Implementations must keep roles
// distinguishable on the wire and must honor ctx cancellation. Transport
// and provider failures are returned as errors; masking them into fallback
// replies is the caller's policy, not the backend's.
type CompletionClient interface {
	Complete(ctx context.Context, messages []Message) (*Completion, error)
}
