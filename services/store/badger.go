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
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"sync"

	"github.com/AleutianAI/AleutianDesk/services/orchestrator/datatypes"
	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

// Key layout:
//
//	session/<sessionID>          -> JSON-encoded datatypes.Session
//	owner/<ownerID>/<sessionID>  -> empty (index for ListSessions)
//
// Sessions are small (a support thread, not a document corpus), so the
// whole record is rewritten on every append. SyncWrites keeps the
// durability contract: a write that returned has hit disk.
const (
	sessionKeyPrefix = "session/"
	ownerKeyPrefix   = "owner/"
)

// BadgerConfig holds configuration for the durable store.
type BadgerConfig struct {
	// Path is the directory for database files. Ignored when InMemory
	// is true.
	Path string

	// InMemory disables disk persistence. Useful for testing.
	InMemory bool

	// SyncWrites forces every write to fsync before returning. Default
	// true in production; tests turn it off for speed.
	SyncWrites bool

	// Logger receives BadgerDB's internal log output. If nil, internal
	// logging is disabled.
	Logger *slog.Logger
}

// DefaultBadgerConfig returns production defaults: durable, synced writes.
func DefaultBadgerConfig(path string) BadgerConfig {
	return BadgerConfig{Path: path, SyncWrites: true}
}

// InMemoryBadgerConfig returns a configuration for tests: no disk I/O,
// no fsync.
func InMemoryBadgerConfig() BadgerConfig {
	return BadgerConfig{InMemory: true}
}

// badgerLogger adapts slog.Logger to BadgerDB's Logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

// Badger is the durable ConversationStore backed by BadgerDB.
//
// Appends take a per-session lock around the read-modify-write so a single
// append is atomic and immediately visible to the next read. Concurrent
// appends to the same session from different requests are serialized here
// but their relative order is whatever the lock hands out; the engine does
// not promise more than that.
type Badger struct {
	db *badger.DB

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

var _ ConversationStore = (*Badger)(nil)

// OpenBadger opens a durable store with the given configuration.
func OpenBadger(cfg BadgerConfig) (*Badger, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("path is required for persistent database")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0750); err != nil {
			return nil, fmt.Errorf("create database directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites)
	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}
	return &Badger{db: db, locks: make(map[string]*sync.Mutex)}, nil
}

// sessionLock returns the mutex guarding one session's read-modify-write.
func (b *Badger) sessionLock(sessionID string) *sync.Mutex {
	b.mu.Lock()
	defer b.mu.Unlock()
	l, ok := b.locks[sessionID]
	if !ok {
		l = &sync.Mutex{}
		b.locks[sessionID] = l
	}
	return l
}

func sessionKey(sessionID string) []byte {
	return []byte(sessionKeyPrefix + sessionID)
}

func ownerKey(ownerID, sessionID string) []byte {
	return []byte(ownerKeyPrefix + ownerID + "/" + sessionID)
}

func (b *Badger) CreateSession(ctx context.Context, ownerID string) (*datatypes.Session, error) {
	now := nowUTC()
	sess := &datatypes.Session{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Messages:  []datatypes.Message{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := b.db.Update(func(txn *badger.Txn) error {
		if err := writeSession(txn, sess); err != nil {
			return err
		}
		if ownerID != "" {
			return txn.Set(ownerKey(ownerID, sess.ID), nil)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return sess, nil
}

func (b *Badger) AppendMessage(ctx context.Context, sessionID, role, text string) (*datatypes.Session, error) {
	if err := validateAppend(role, text); err != nil {
		return nil, err
	}
	return b.appendLocked(sessionID, newMessage(role, text), false)
}

func (b *Badger) GetSession(ctx context.Context, sessionID string) (*datatypes.Session, error) {
	var sess *datatypes.Session
	err := b.db.View(func(txn *badger.Txn) error {
		var err error
		sess, err = readSession(txn, sessionID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return sess, nil
}

func (b *Badger) ListSessions(ctx context.Context, ownerID string) ([]*datatypes.Session, error) {
	out := make([]*datatypes.Session, 0)
	if ownerID == "" {
		return out, nil
	}

	prefix := []byte(ownerKeyPrefix + ownerID + "/")
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.ValidForPrefix(prefix); it.Next() {
			sessionID := string(it.Item().Key()[len(prefix):])
			sess, err := readSession(txn, sessionID)
			if err != nil {
				if errors.Is(err, ErrSessionNotFound) {
					// Dangling index entry; skip rather than fail the listing.
					slog.Warn("owner index references missing session",
						"ownerId", ownerID, "sessionId", sessionID)
					continue
				}
				return err
			}
			if len(sess.Messages) == 0 {
				continue
			}
			out = append(out, sess)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list sessions for owner: %w", err)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

func (b *Badger) EndSession(ctx context.Context, sessionID string) (*datatypes.Session, error) {
	return b.appendLocked(sessionID, newMessage(datatypes.RoleAssistant, EndedMarkerText), true)
}

// appendLocked performs the atomic read-modify-write for one append.
func (b *Badger) appendLocked(sessionID string, msg datatypes.Message, end bool) (*datatypes.Session, error) {
	lock := b.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	var sess *datatypes.Session
	err := b.db.Update(func(txn *badger.Txn) error {
		var err error
		sess, err = readSession(txn, sessionID)
		if err != nil {
			return err
		}
		sess.Messages = append(sess.Messages, msg)
		sess.UpdatedAt = msg.Timestamp
		if end {
			sess.Ended = true
		}
		return writeSession(txn, sess)
	})
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("append message: %w", err)
	}
	return sess, nil
}

func (b *Badger) Close() error {
	return b.db.Close()
}

func readSession(txn *badger.Txn, sessionID string) (*datatypes.Session, error) {
	item, err := txn.Get(sessionKey(sessionID))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read session %s: %w", sessionID, err)
	}

	var sess datatypes.Session
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &sess)
	})
	if err != nil {
		return nil, fmt.Errorf("decode session %s: %w", sessionID, err)
	}
	return &sess, nil
}

func writeSession(txn *badger.Txn, sess *datatypes.Session) error {
	encoded, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", sess.ID, err)
	}
	return txn.Set(sessionKey(sess.ID), encoded)
}
