// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/AleutianAI/AleutianDesk/services/engine"
	"github.com/AleutianAI/AleutianDesk/services/llm"
	"github.com/AleutianAI/AleutianDesk/services/orchestrator/datatypes"
	"github.com/AleutianAI/AleutianDesk/services/orchestrator/observability"
	"github.com/AleutianAI/AleutianDesk/services/store"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type echoClient struct{}

func (echoClient) Complete(ctx context.Context, messages []llm.Message) (*llm.Completion, error) {
	return &llm.Completion{Text: "All set.", Raw: json.RawMessage(`{}`)}, nil
}

func newTestRouter() *gin.Engine {
	conversations := store.NewMemory()
	eng := engine.New(conversations, engine.NewReplyGenerator(echoClient{}, ""))
	metrics := observability.NewEngineMetrics(prometheus.NewRegistry())

	router := gin.New()
	SetupRoutes(router, eng, metrics, 5*time.Second)
	return router
}

// TestSetupRoutes_FullSessionFlow drives the whole API surface through the
// registered routes: new -> chat -> get -> list -> end.
func TestSetupRoutes_FullSessionFlow(t *testing.T) {
	router := newTestRouter()

	do := func(method, path string, body interface{}) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		if body != nil {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
		req, _ := http.NewRequest(method, path, &buf)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Aleutian-User", "user-1")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	w := do("POST", "/api/session/new", gin.H{})
	require.Equal(t, http.StatusOK, w.Code)
	var created datatypes.NewSessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = do("POST", "/api/session/chat",
		gin.H{"sessionId": created.SessionID, "message": "hi"})
	require.Equal(t, http.StatusOK, w.Code)

	w = do("GET", "/api/session/"+created.SessionID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = do("GET", "/api/session/list/user-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list datatypes.SessionListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list.Sessions, 1)

	w = do("POST", "/api/session/"+created.SessionID+"/end", nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestSetupRoutes_HealthAndMetrics(t *testing.T) {
	router := newTestRouter()

	req, _ := http.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req, _ = http.NewRequest("GET", "/metrics", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
