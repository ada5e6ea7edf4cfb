// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package engine

import (
	"github.com/AleutianAI/AleutianDesk/services/llm"
	"github.com/AleutianAI/AleutianDesk/services/orchestrator/datatypes"
)

// ContextWindowSize is the number of most recent messages sent to the
// completion provider. Older history is dropped, not summarized; the fixed
// window bounds prompt size and cost.
const ContextWindowSize = 20

// BuildContext projects a session's recent history into the prompt context
// for the completion provider. Pure: the result is at most
// ContextWindowSize messages in original order, and an empty history
// yields an empty context, which is valid provider input.
func BuildContext(session *datatypes.Session) []llm.Message {
	if session == nil || len(session.Messages) == 0 {
		return nil
	}
	start := 0
	if len(session.Messages) > ContextWindowSize {
		start = len(session.Messages) - ContextWindowSize
	}
	window := session.Messages[start:]
	out := make([]llm.Message, 0, len(window))
	for _, m := range window {
		out = append(out, llm.Message{Role: m.Role, Content: m.Text})
	}
	return out
}
