// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package routes

import (
	"time"

	"github.com/AleutianAI/AleutianDesk/services/engine"
	"github.com/AleutianAI/AleutianDesk/services/orchestrator/handlers"
	"github.com/AleutianAI/AleutianDesk/services/orchestrator/middleware"
	"github.com/AleutianAI/AleutianDesk/services/orchestrator/observability"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRoutes registers the session API. The route shapes match the
// original support client: POST new/chat, GET by id, GET list by owner,
// POST end.
func SetupRoutes(router *gin.Engine, eng *engine.Engine,
	metrics *observability.EngineMetrics, turnTimeout time.Duration) {

	router.GET("/health", handlers.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	api.Use(middleware.OwnerIdentity())
	{
		session := api.Group("/session")
		{
			session.POST("/new", handlers.NewSession(eng, metrics))
			session.POST("/chat", handlers.HandleSessionChat(eng, metrics, turnTimeout))
			session.GET("/list/:userId", handlers.ListSessions(eng))
			session.GET("/:sessionId", handlers.GetSession(eng))
			session.POST("/:sessionId/end", handlers.EndSession(eng))
		}
	}
}
