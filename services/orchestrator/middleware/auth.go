// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package middleware provides HTTP middleware for the support desk service.
//
// Identity is external to this service: an upstream gateway authenticates
// the request and forwards the owner identifier in a trusted header. The
// engine treats that identifier as an opaque token; no validation happens
// here beyond "non-empty". Requests without the header are anonymous,
// which the engine permits for session creation and chat.
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// OwnerHeader is the trusted header carrying the authenticated owner id.
const OwnerHeader = "X-Aleutian-User"

// ownerIDKey is the gin context key for the resolved owner id.
// Using a typed key string prevents collisions with other context values.
const ownerIDKey = "aleutian_owner_id"

// OwnerIdentity extracts the authenticated owner id from the trusted
// header and stores it in the request context for downstream handlers.
func OwnerIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		if owner := strings.TrimSpace(c.GetHeader(OwnerHeader)); owner != "" {
			c.Set(ownerIDKey, owner)
		}
		c.Next()
	}
}

// OwnerID returns the authenticated owner id, or "" for anonymous
// requests.
func OwnerID(c *gin.Context) string {
	if v, ok := c.Get(ownerIDKey); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// ResolveOwnerID picks the effective owner for a request: the
// authenticated identity wins, the caller-supplied value (body field or
// path segment) is the fallback for deployments without a gateway in
// front.
func ResolveOwnerID(c *gin.Context, requested string) string {
	if owner := OwnerID(c); owner != "" {
		return owner
	}
	return strings.TrimSpace(requested)
}
