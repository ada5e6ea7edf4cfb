// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package engine is the conversation session engine: session lifecycle,
// context-window construction, reply generation with fallback, and
// escalation detection, composed over an injected ConversationStore.
//
// # Failure Policy
//
// Three outcomes reach callers: validation errors (bad input), not-found
// (unknown session, surfaced via store.ErrSessionNotFound), and internal
// errors (store failure). Completion-provider failures never reach the
// caller; the reply generator masks them into fallback replies so the chat
// always gets some answer. That masking is a deliberate
// availability-over-correctness choice and is tagged on the result, not
// silently swallowed.
package engine

import "errors"

// ErrValidation is returned for missing or malformed caller input. The
// HTTP layer maps it to a rejected request.
var ErrValidation = errors.New("invalid input")
