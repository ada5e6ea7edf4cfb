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
	"errors"
	"strings"
	"testing"

	"github.com/AleutianAI/AleutianDesk/services/llm"
	"github.com/AleutianAI/AleutianDesk/services/orchestrator/datatypes"
	"github.com/AleutianAI/AleutianDesk/services/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(client llm.CompletionClient) (*Engine, store.ConversationStore) {
	conversations := store.NewMemory()
	return New(conversations, NewReplyGenerator(client, "")), conversations
}

func TestEngine_CreateSession(t *testing.T) {
	eng, _ := newTestEngine(&stubCompletionClient{})
	ctx := context.Background()

	t.Run("anonymous", func(t *testing.T) {
		sess, err := eng.CreateSession(ctx, "")
		require.NoError(t, err)
		assert.NotEmpty(t, sess.ID)
		assert.Empty(t, sess.OwnerID)
	})

	t.Run("owned", func(t *testing.T) {
		sess, err := eng.CreateSession(ctx, "user-42")
		require.NoError(t, err)
		assert.Equal(t, "user-42", sess.OwnerID)
	})

	t.Run("overlong owner id rejected", func(t *testing.T) {
		_, err := eng.CreateSession(ctx, strings.Repeat("x", datatypes.MaxOwnerIDLength+1))
		assert.ErrorIs(t, err, ErrValidation)
	})
}

// TestEngine_SendTurn_Scenario is the end-to-end happy path: create, ask,
// get a real answer, history holds both turns in order.
func TestEngine_SendTurn_Scenario(t *testing.T) {
	client := &stubCompletionClient{
		completion: &llm.Completion{Text: "Your order ships tomorrow."},
	}
	eng, _ := newTestEngine(client)
	ctx := context.Background()

	sess, err := eng.CreateSession(ctx, "")
	require.NoError(t, err)

	result, err := eng.SendTurn(ctx, sess.ID, "Where is my order?")
	require.NoError(t, err)
	assert.Equal(t, "Your order ships tomorrow.", result.Reply)
	assert.False(t, result.Escalation)
	assert.False(t, result.Fallback)

	got, err := eng.GetSession(ctx, sess.ID)
	require.NoError(t, err)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, datatypes.RoleUser, got.Messages[0].Role)
	assert.Equal(t, "Where is my order?", got.Messages[0].Text)
	assert.Equal(t, datatypes.RoleAssistant, got.Messages[1].Role)
	assert.Equal(t, "Your order ships tomorrow.", got.Messages[1].Text)
}

func TestEngine_SendTurn_EscalationFlag(t *testing.T) {
	client := &stubCompletionClient{
		completion: &llm.Completion{Text: "I am not sure, let me escalate this."},
	}
	eng, _ := newTestEngine(client)
	ctx := context.Background()

	sess, err := eng.CreateSession(ctx, "")
	require.NoError(t, err)

	result, err := eng.SendTurn(ctx, sess.ID, "Why was I charged twice?")
	require.NoError(t, err)
	assert.True(t, result.Escalation)
}

// TestEngine_SendTurn_ProviderFailure verifies the ordering invariant: the
// user's message is durable before the provider runs, so a failing
// provider still leaves the user turn (plus the fallback answer) in
// history.
func TestEngine_SendTurn_ProviderFailure(t *testing.T) {
	client := &stubCompletionClient{err: errors.New("provider exploded")}
	eng, _ := newTestEngine(client)
	ctx := context.Background()

	sess, err := eng.CreateSession(ctx, "")
	require.NoError(t, err)

	result, err := eng.SendTurn(ctx, sess.ID, "Hello?")
	require.NoError(t, err, "provider failures are masked, not surfaced")
	assert.True(t, result.Fallback)
	assert.NotEmpty(t, result.Reply)

	got, err := eng.GetSession(ctx, sess.ID)
	require.NoError(t, err)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "Hello?", got.Messages[0].Text)
	assert.Equal(t, FallbackUnavailable, got.Messages[1].Text)
}

func TestEngine_SendTurn_ContextExcludesNewUtterance(t *testing.T) {
	client := &stubCompletionClient{completion: &llm.Completion{Text: "ok"}}
	eng, _ := newTestEngine(client)
	ctx := context.Background()

	sess, err := eng.CreateSession(ctx, "")
	require.NoError(t, err)

	_, err = eng.SendTurn(ctx, sess.ID, "first question")
	require.NoError(t, err)
	_, err = eng.SendTurn(ctx, sess.ID, "second question")
	require.NoError(t, err)

	require.Len(t, client.requests, 2)

	// First turn: system + new utterance only, no context yet.
	require.Len(t, client.requests[0], 2)

	// Second turn: system + [user, assistant] window + new utterance.
	second := client.requests[1]
	require.Len(t, second, 4)
	assert.Equal(t, "first question", second[1].Content)
	assert.Equal(t, "ok", second[2].Content)
	assert.Equal(t, "second question", second[3].Content)
}

func TestEngine_SendTurn_Validation(t *testing.T) {
	eng, _ := newTestEngine(&stubCompletionClient{})
	ctx := context.Background()

	_, err := eng.SendTurn(ctx, "sess-1", "   ")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = eng.SendTurn(ctx, "", "hello")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = eng.SendTurn(ctx, "no-such-session", "hello")
	assert.ErrorIs(t, err, store.ErrSessionNotFound)
}

func TestEngine_GetSession_NotFound(t *testing.T) {
	eng, _ := newTestEngine(&stubCompletionClient{})
	_, err := eng.GetSession(context.Background(), "missing")
	assert.ErrorIs(t, err, store.ErrSessionNotFound)
}

func TestEngine_ListSessions(t *testing.T) {
	client := &stubCompletionClient{completion: &llm.Completion{Text: "ok"}}
	eng, _ := newTestEngine(client)
	ctx := context.Background()

	_, err := eng.ListSessions(ctx, "")
	assert.ErrorIs(t, err, ErrValidation)

	// A session that never got a message stays hidden.
	_, err = eng.CreateSession(ctx, "owner-1")
	require.NoError(t, err)

	active, err := eng.CreateSession(ctx, "owner-1")
	require.NoError(t, err)
	_, err = eng.SendTurn(ctx, active.ID, "hello")
	require.NoError(t, err)

	list, err := eng.ListSessions(ctx, "owner-1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, active.ID, list[0].ID)
}

func TestEngine_EndSession(t *testing.T) {
	client := &stubCompletionClient{completion: &llm.Completion{Text: "ok"}}
	eng, _ := newTestEngine(client)
	ctx := context.Background()

	sess, err := eng.CreateSession(ctx, "")
	require.NoError(t, err)
	_, err = eng.SendTurn(ctx, sess.ID, "hello")
	require.NoError(t, err)

	ended, err := eng.EndSession(ctx, sess.ID)
	require.NoError(t, err)
	assert.True(t, ended.Ended)
	assert.Equal(t, store.EndedMarkerText, ended.LastMessage().Text)

	_, err = eng.EndSession(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrSessionNotFound)
}
