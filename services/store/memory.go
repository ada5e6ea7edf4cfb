// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package store

import (
	"context"
	"sort"
	"sync"

	"github.com/AleutianAI/AleutianDesk/services/orchestrator/datatypes"
	"github.com/google/uuid"
)

// Memory is an in-process ConversationStore.
//
// Used by tests and by the offline CLI chat mode, where "durable" means
// "for the life of the process". All operations are guarded by a single
// mutex; session reads return deep copies.
type Memory struct {
	mu       sync.Mutex
	sessions map[string]*datatypes.Session
}

var _ ConversationStore = (*Memory)(nil)

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{sessions: make(map[string]*datatypes.Session)}
}

func (m *Memory) CreateSession(ctx context.Context, ownerID string) (*datatypes.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := nowUTC()
	sess := &datatypes.Session{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Messages:  []datatypes.Message{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.sessions[sess.ID] = sess
	return sess.Clone(), nil
}

func (m *Memory) AppendMessage(ctx context.Context, sessionID, role, text string) (*datatypes.Session, error) {
	if err := validateAppend(role, text); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	msg := newMessage(role, text)
	sess.Messages = append(sess.Messages, msg)
	sess.UpdatedAt = msg.Timestamp
	return sess.Clone(), nil
}

func (m *Memory) GetSession(ctx context.Context, sessionID string) (*datatypes.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess.Clone(), nil
}

func (m *Memory) ListSessions(ctx context.Context, ownerID string) ([]*datatypes.Session, error) {
	out := make([]*datatypes.Session, 0)
	if ownerID == "" {
		// Anonymous sessions are unowned; there is nothing to list.
		return out, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, sess := range m.sessions {
		if sess.OwnerID != ownerID {
			continue
		}
		// Empty sessions are abandoned "new chat" clicks; hide them.
		if len(sess.Messages) == 0 {
			continue
		}
		out = append(out, sess.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

func (m *Memory) EndSession(ctx context.Context, sessionID string) (*datatypes.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	msg := newMessage(datatypes.RoleAssistant, EndedMarkerText)
	sess.Messages = append(sess.Messages, msg)
	sess.UpdatedAt = msg.Timestamp
	sess.Ended = true
	return sess.Clone(), nil
}

func (m *Memory) Close() error {
	return nil
}
