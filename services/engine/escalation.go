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

import "strings"

// escalationPhrases are the signals that a reply should be handed to a
// human agent. Matching is case-insensitive substring; any single hit is
// enough, no phrase outranks another.
var escalationPhrases = []string{
	"i don't know",
	"unable to",
	"cannot",
	"escalate",
	"not sure",
	"transfer to",
}

// NeedsEscalation reports whether a generated reply suggests human
// handoff.
//
// This is a keyword heuristic, not a guarantee: "cannot" inside a
// perfectly confident answer is a false positive, and an evasive reply
// phrased without any listed phrase is a false negative. Both are accepted
// behavior; the flag is a hint for the support UI, not a routing decision.
func NeedsEscalation(replyText string) bool {
	lowered := strings.ToLower(replyText)
	for _, phrase := range escalationPhrases {
		if strings.Contains(lowered, phrase) {
			return true
		}
	}
	return false
}
