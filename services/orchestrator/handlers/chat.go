// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/AleutianAI/AleutianDesk/services/engine"
	"github.com/AleutianAI/AleutianDesk/services/orchestrator/datatypes"
	"github.com/AleutianAI/AleutianDesk/services/orchestrator/observability"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var chatTracer = otel.Tracer("aleutian.desk.handlers")

// DefaultTurnTimeout bounds one turn end to end. The provider call is the
// only unbounded-latency operation inside; on timeout the engine still
// produces a fallback reply rather than an error.
const DefaultTurnTimeout = 30 * time.Second

// HandleSessionChat handles POST /api/session/chat: one user turn.
func HandleSessionChat(eng *engine.Engine, metrics *observability.EngineMetrics,
	turnTimeout time.Duration) gin.HandlerFunc {

	if turnTimeout <= 0 {
		turnTimeout = DefaultTurnTimeout
	}

	return func(c *gin.Context) {
		ctx, span := chatTracer.Start(c.Request.Context(), "HandleSessionChat")
		defer span.End()

		var req datatypes.ChatRequest
		if err := c.BindJSON(&req); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			slog.Error("Failed to parse the chat request", "error", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		if err := req.Validate(); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(ctx, turnTimeout)
		defer cancel()

		start := time.Now()
		result, err := eng.SendTurn(ctx, req.SessionID, req.Message)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			metrics.ObserveTurn(observability.TurnError, time.Since(start))
			writeEngineError(c, err)
			return
		}

		metrics.ObserveTurn(observability.TurnOutcome(result), time.Since(start))
		if result.Escalation {
			metrics.ObserveEscalation()
		}

		c.JSON(http.StatusOK, datatypes.ChatResponse{
			Reply:      result.Reply,
			Escalation: result.Escalation,
			Fallback:   result.Fallback,
		})
	}
}
