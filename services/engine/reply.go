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
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"

	"github.com/AleutianAI/AleutianDesk/services/llm"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var replyTracer = otel.Tracer("aleutian.desk.engine.reply")

// DefaultInstructions is the fixed system prompt for the support agent.
const DefaultInstructions = "You are a customer support agent. Answer the " +
	"customer's question concisely and helpfully using the conversation so " +
	"far. If you do not have the information needed to resolve the issue, " +
	"say so plainly so the conversation can be escalated to a human agent."

// Fallback texts. FallbackNoAnswer covers a 2xx response without usable
// text; FallbackUnavailable covers transport and provider errors,
// including timeouts.
const (
	FallbackNoAnswer = "I wasn't able to come up with an answer to that. " +
		"Could you rephrase your question?"
	FallbackUnavailable = "I'm having trouble reaching the support service " +
		"right now. Please try again in a moment."
)

// Reply is a generated answer.
//
// Fallback distinguishes a real provider answer from a canned one; when it
// is set, Cause carries the masked error. Keeping the outcome tagged (and
// not just returning a string) is what lets tests and metrics assert which
// path was taken.
type Reply struct {
	Text     string
	Raw      json.RawMessage
	Fallback bool
	Cause    error
}

// ReplyGenerator invokes a completion provider and normalizes its output.
//
// This is the single external-network dependency in the engine and the
// only unbounded-latency call; callers bound it with a context timeout.
// Generate never returns an error: every failure degrades to a fallback
// Reply so the chat always receives some answer.
type ReplyGenerator struct {
	client       llm.CompletionClient
	instructions string
}

// NewReplyGenerator wires a generator to a provider backend. Empty
// instructions select DefaultInstructions.
func NewReplyGenerator(client llm.CompletionClient, instructions string) *ReplyGenerator {
	if instructions == "" {
		instructions = DefaultInstructions
	}
	return &ReplyGenerator{client: client, instructions: instructions}
}

// Generate builds the completion request from the fixed instructions, the
// context window, and the new user utterance, and normalizes the provider
// answer.
func (g *ReplyGenerator) Generate(ctx context.Context, contextWindow []llm.Message, userText string) Reply {
	ctx, span := replyTracer.Start(ctx, "ReplyGenerator.Generate")
	defer span.End()
	span.SetAttributes(attribute.Int("engine.context_messages", len(contextWindow)))

	messages := make([]llm.Message, 0, len(contextWindow)+2)
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: g.instructions})
	messages = append(messages, contextWindow...)
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: userText})

	completion, err := g.client.Complete(ctx, messages)
	if err != nil {
		if errors.Is(err, llm.ErrInvalidResponse) {
			slog.Warn("Provider payload had no usable text, substituting fallback")
			reply := Reply{Text: FallbackNoAnswer, Fallback: true, Cause: err}
			if completion != nil {
				reply.Raw = completion.Raw
			}
			return reply
		}
		// Transport or provider failure. Masked so the chat stays up;
		// the error rides in Raw for diagnostics.
		slog.Error("Provider call failed, substituting degraded-service fallback", "error", err)
		raw, _ := json.Marshal(map[string]string{"error": err.Error()})
		return Reply{Text: FallbackUnavailable, Raw: raw, Fallback: true, Cause: err}
	}

	text := strings.TrimSpace(completion.Text)
	if text == "" {
		slog.Warn("Provider returned blank text, substituting fallback")
		return Reply{Text: FallbackNoAnswer, Raw: completion.Raw, Fallback: true, Cause: llm.ErrInvalidResponse}
	}
	return Reply{Text: text, Raw: completion.Raw}
}
