// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package handlers provides HTTP handlers for the support desk service.
//
// Handlers stay thin: bind and validate the request, call the engine, map
// the error taxonomy onto status codes. Business logic lives in the engine
// package.
package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/AleutianAI/AleutianDesk/services/engine"
	"github.com/AleutianAI/AleutianDesk/services/orchestrator/datatypes"
	"github.com/AleutianAI/AleutianDesk/services/orchestrator/middleware"
	"github.com/AleutianAI/AleutianDesk/services/orchestrator/observability"
	"github.com/AleutianAI/AleutianDesk/services/store"
	"github.com/gin-gonic/gin"
)

// writeEngineError maps the engine's error taxonomy onto HTTP statuses.
// Validation errors reject the request, not-found is distinct so clients
// can offer "start a new session", everything else is a retryable internal
// failure.
func writeEngineError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, engine.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
	default:
		slog.Error("Request failed with internal error", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "an internal server error occurred"})
	}
}

// NewSession handles POST /api/session/new.
func NewSession(eng *engine.Engine, metrics *observability.EngineMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req datatypes.NewSessionRequest
		if err := c.BindJSON(&req); err != nil {
			slog.Error("Failed to parse the new-session request", "error", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		if err := req.Validate(); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ownerID := middleware.ResolveOwnerID(c, req.UserID)
		sess, err := eng.CreateSession(c.Request.Context(), ownerID)
		if err != nil {
			writeEngineError(c, err)
			return
		}
		metrics.ObserveSessionCreated()
		c.JSON(http.StatusOK, datatypes.NewSessionResponse{SessionID: sess.ID})
	}
}

// GetSession handles GET /api/session/:sessionId.
func GetSession(eng *engine.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.Param("sessionId")
		sess, err := eng.GetSession(c.Request.Context(), sessionID)
		if err != nil {
			writeEngineError(c, err)
			return
		}
		c.JSON(http.StatusOK, datatypes.SessionResponse{Session: sess})
	}
}

// ListSessions handles GET /api/session/list/:userId.
func ListSessions(eng *engine.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		ownerID := middleware.ResolveOwnerID(c, c.Param("userId"))
		slog.Info("Received request to list sessions", "ownerId", ownerID)

		sessions, err := eng.ListSessions(c.Request.Context(), ownerID)
		if err != nil {
			writeEngineError(c, err)
			return
		}
		c.JSON(http.StatusOK, datatypes.SessionListResponse{Sessions: sessions})
	}
}

// EndSession handles POST /api/session/:sessionId/end.
func EndSession(eng *engine.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.Param("sessionId")
		slog.Info("Received a request to end a session", "sessionId", sessionID)

		sess, err := eng.EndSession(c.Request.Context(), sessionID)
		if err != nil {
			writeEngineError(c, err)
			return
		}
		c.JSON(http.StatusOK, datatypes.EndSessionResponse{OK: true, SessionID: sess.ID})
	}
}
