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

import "testing"

func TestNeedsEscalation(t *testing.T) {
	cases := []struct {
		name  string
		reply string
		want  bool
	}{
		{"uncertain reply", "I am not sure about that", true},
		{"confident reply", "Your order ships tomorrow", false},
		{"mixed case phrase", "I DON'T KNOW what happened to it", true},
		{"phrase mid-sentence", "We are unable to process refunds by phone", true},
		{"explicit escalation", "Let me escalate this to a specialist", true},
		{"transfer phrasing", "I will transfer to a human agent now", true},
		{"cannot embedded", "I cannot locate that order number", true},
		{"empty reply", "", false},
		// Known false positive: the phrase match has no understanding of
		// negation or context. Accepted behavior.
		{"false positive", "You cannot beat our prices!", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NeedsEscalation(tc.reply); got != tc.want {
				t.Errorf("NeedsEscalation(%q) = %v, want %v", tc.reply, got, tc.want)
			}
		})
	}
}
