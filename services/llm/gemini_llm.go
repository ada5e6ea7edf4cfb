// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var geminiTracer = otel.Tracer("aleutian.desk.llm.gemini")

// GeminiClient talks to the Gemini generateContent REST endpoint directly.
// The raw response body is preserved byte-for-byte in Completion.Raw, which
// is why this backend does not go through a wrapper SDK.
type GeminiClient struct {
	httpClient *http.Client
	apiURL     string
	apiKey     string
}

var _ CompletionClient = (*GeminiClient)(nil)

// Gemini generateContent request/response structures. Only the fields we
// touch; everything else stays inside the raw payload.
type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiGenerateRequest struct {
	SystemInstruction *geminiContent  `json:"system_instruction,omitempty"`
	Contents          []geminiContent `json:"contents"`
}

type geminiGenerateResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

func NewGeminiClient() (*GeminiClient, error) {
	apiURL := os.Getenv("GEMINI_API_URL")
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiURL == "" {
		return nil, fmt.Errorf("GEMINI_API_URL environment variable not set")
	}
	if apiKey == "" {
		secretPath := "/run/secrets/gemini_api_key"
		apiKeyBytes, err := os.ReadFile(secretPath)
		if err == nil {
			apiKey = strings.TrimSpace(string(apiKeyBytes))
			slog.Info("Read the Gemini API Key from Podman Secrets")
		} else {
			slog.Error("GEMINI_API_KEY environment variable not set and secret not found", "path", secretPath)
			return nil, fmt.Errorf("GEMINI_API_KEY environment variable not set")
		}
	}
	slog.Info("Initializing Gemini client", "api_url", apiURL)
	return &GeminiClient{
		httpClient: &http.Client{Timeout: 2 * time.Minute},
		apiURL:     apiURL,
		apiKey:     apiKey,
	}, nil
}

// Complete implements the CompletionClient interface.
func (g *GeminiClient) Complete(ctx context.Context, messages []Message) (*Completion, error) {
	ctx, span := geminiTracer.Start(ctx, "GeminiClient.Complete")
	defer span.End()
	span.SetAttributes(attribute.Int("llm.num_messages", len(messages)))

	payload := geminiGenerateRequest{}
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			payload.SystemInstruction = &geminiContent{
				Parts: []geminiPart{{Text: m.Content}},
			}
		default:
			payload.Contents = append(payload.Contents, geminiContent{
				Role:  geminiRole(m.Role),
				Parts: []geminiPart{{Text: m.Content}},
			})
		}
	}

	reqBody, err := json.Marshal(payload)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to marshal request to Gemini: %w", err)
	}

	fullURL := g.apiURL + "?key=" + g.apiKey
	req, err := http.NewRequestWithContext(ctx, "POST", fullURL, bytes.NewBuffer(reqBody))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to create request to Gemini: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		slog.Error("Gemini API call failed", "error", err)
		return nil, fmt.Errorf("Gemini API call failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to read response body from Gemini: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		slog.Error("Gemini returned an error", "status_code", resp.StatusCode,
			"response", string(respBody))
		return nil, fmt.Errorf("Gemini failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	var geminiResp geminiGenerateResponse
	if err := json.Unmarshal(respBody, &geminiResp); err != nil {
		slog.Error("Failed to parse JSON response from Gemini", "error", err,
			"response", string(respBody))
		return &Completion{Raw: respBody}, ErrInvalidResponse
	}

	if len(geminiResp.Candidates) == 0 ||
		len(geminiResp.Candidates[0].Content.Parts) == 0 ||
		strings.TrimSpace(geminiResp.Candidates[0].Content.Parts[0].Text) == "" {
		slog.Warn("Gemini returned no usable candidates")
		return &Completion{Raw: respBody}, ErrInvalidResponse
	}

	slog.Debug("Received response from Gemini")
	return &Completion{
		Text: geminiResp.Candidates[0].Content.Parts[0].Text,
		Raw:  respBody,
	}, nil
}

// Gemini names the assistant role "model" on the wire.
func geminiRole(role string) string {
	if role == RoleAssistant {
		return "model"
	}
	return "user"
}
