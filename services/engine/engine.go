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
	"fmt"
	"log/slog"
	"strings"

	"github.com/AleutianAI/AleutianDesk/services/orchestrator/datatypes"
	"github.com/AleutianAI/AleutianDesk/services/store"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var engineTracer = otel.Tracer("aleutian.desk.engine")

// TurnResult is the outcome of one user turn: the assistant reply, the
// escalation hint, whether the reply was a fallback, and the raw provider
// payload for diagnostics.
type TurnResult struct {
	Reply      string
	Escalation bool
	Fallback   bool
	Raw        json.RawMessage
}

// Engine composes the conversation store, context window builder, reply
// generator, and escalation classifier into the session operations exposed
// to clients.
//
// The engine holds no state of its own and is safe for concurrent use. It
// does not serialize requests: two concurrent turns against the same
// session may interleave their appends, and only per-append atomicity is
// guaranteed (by the store). A well-behaved client sends one turn at a
// time per session.
type Engine struct {
	store     store.ConversationStore
	generator *ReplyGenerator
}

// New creates an engine over the given store and generator.
func New(conversations store.ConversationStore, generator *ReplyGenerator) *Engine {
	return &Engine{store: conversations, generator: generator}
}

// CreateSession starts a new conversation thread. ownerID may be empty for
// an anonymous session; when present it is checked only for plausible
// shape, the identity provider already validated it.
func (e *Engine) CreateSession(ctx context.Context, ownerID string) (*datatypes.Session, error) {
	ctx, span := engineTracer.Start(ctx, "Engine.CreateSession")
	defer span.End()

	ownerID = strings.TrimSpace(ownerID)
	if len(ownerID) > datatypes.MaxOwnerIDLength {
		return nil, fmt.Errorf("%w: owner id too long", ErrValidation)
	}

	sess, err := e.store.CreateSession(ctx, ownerID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("create session: %w", err)
	}
	slog.Info("Created session", "sessionId", sess.ID, "anonymous", ownerID == "")
	return sess, nil
}

// SendTurn handles one user message: persist it, build the prompt context,
// generate a reply, classify it, persist the assistant turn, and return
// the result.
//
// The user message is durably appended before the provider is invoked, so
// a crash mid-reply loses at most the assistant's answer, never the user's
// turn. The assistant append is not rolled back if the caller has gone
// away; at-least-once persistence of the assistant turn is acceptable.
func (e *Engine) SendTurn(ctx context.Context, sessionID, text string) (*TurnResult, error) {
	ctx, span := engineTracer.Start(ctx, "Engine.SendTurn")
	defer span.End()
	span.SetAttributes(attribute.String("session.id", sessionID))

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: message text is required", ErrValidation)
	}
	if sessionID == "" {
		return nil, fmt.Errorf("%w: session id is required", ErrValidation)
	}

	sess, err := e.store.AppendMessage(ctx, sessionID, datatypes.RoleUser, text)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	// The window is built from history before this turn; the new
	// utterance travels separately so it is never duplicated in the
	// prompt.
	prior := sess.Clone()
	prior.Messages = prior.Messages[:len(prior.Messages)-1]
	contextWindow := BuildContext(prior)

	reply := e.generator.Generate(ctx, contextWindow, text)
	escalation := NeedsEscalation(reply.Text)
	span.SetAttributes(
		attribute.Bool("engine.fallback", reply.Fallback),
		attribute.Bool("engine.escalation", escalation),
	)

	if _, err := e.store.AppendMessage(ctx, sessionID, datatypes.RoleAssistant, reply.Text); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("persist assistant turn: %w", err)
	}

	slog.Info("Completed turn", "sessionId", sessionID,
		"fallback", reply.Fallback, "escalation", escalation)
	return &TurnResult{
		Reply:      reply.Text,
		Escalation: escalation,
		Fallback:   reply.Fallback,
		Raw:        reply.Raw,
	}, nil
}

// GetSession returns a session's full history.
func (e *Engine) GetSession(ctx context.Context, sessionID string) (*datatypes.Session, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("%w: session id is required", ErrValidation)
	}
	return e.store.GetSession(ctx, sessionID)
}

// ListSessions returns an owner's sessions, newest first. Sessions that
// never received a message are hidden.
func (e *Engine) ListSessions(ctx context.Context, ownerID string) ([]*datatypes.Session, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, fmt.Errorf("%w: owner id is required", ErrValidation)
	}
	return e.store.ListSessions(ctx, ownerID)
}

// EndSession appends the terminal marker to a session. The record stays
// inspectable; ending twice appends another marker.
func (e *Engine) EndSession(ctx context.Context, sessionID string) (*datatypes.Session, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("%w: session id is required", ErrValidation)
	}
	sess, err := e.store.EndSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	slog.Info("Ended session", "sessionId", sessionID)
	return sess, nil
}
