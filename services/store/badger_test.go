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
	"fmt"
	"sync"
	"testing"

	"github.com/AleutianAI/AleutianDesk/services/orchestrator/datatypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestOpenBadger_RequiresPath verifies persistent mode rejects an empty path.
func TestOpenBadger_RequiresPath(t *testing.T) {
	_, err := OpenBadger(BadgerConfig{})
	require.Error(t, err)
}

// TestBadger_SurvivesReopen verifies the durability contract: writes that
// returned are still there after the database is closed and reopened.
func TestBadger_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	cfg := DefaultBadgerConfig(dir)
	cfg.SyncWrites = false // keep the test fast; reopen still exercises the log

	s, err := OpenBadger(cfg)
	require.NoError(t, err)

	sess, err := s.CreateSession(ctx, "user-1")
	require.NoError(t, err)
	_, err = s.AppendMessage(ctx, sess.ID, datatypes.RoleUser, "where is my order?")
	require.NoError(t, err)
	_, err = s.AppendMessage(ctx, sess.ID, datatypes.RoleAssistant, "it ships tomorrow")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s2, err := OpenBadger(cfg)
	require.NoError(t, err)
	defer s2.Close()

	got, err := s2.GetSession(ctx, sess.ID)
	require.NoError(t, err)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "where is my order?", got.Messages[0].Text)
	assert.Equal(t, "it ships tomorrow", got.Messages[1].Text)

	list, err := s2.ListSessions(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, sess.ID, list[0].ID)
}

// TestBadger_ConcurrentAppends verifies that concurrent appends to one
// session never lose a message. Relative order between the goroutines is
// unspecified; completeness is the contract.
func TestBadger_ConcurrentAppends(t *testing.T) {
	s, err := OpenBadger(InMemoryBadgerConfig())
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	sess, err := s.CreateSession(ctx, "")
	require.NoError(t, err)

	const writers = 8
	const perWriter = 10

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				_, err := s.AppendMessage(ctx, sess.ID, datatypes.RoleUser,
					fmt.Sprintf("writer-%d-msg-%d", w, i))
				assert.NoError(t, err)
			}
		}(w)
	}
	wg.Wait()

	got, err := s.GetSession(ctx, sess.ID)
	require.NoError(t, err)
	assert.Len(t, got.Messages, writers*perWriter)
}
