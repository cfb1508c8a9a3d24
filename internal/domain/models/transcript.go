// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package models

import (
	"sort"
	"strings"
	"time"
)

// Utterance is one speaker turn in a downloaded transcript payload.
type Utterance struct {
	SpeakerID   string  `json:"speaker_id,omitempty"`
	SpeakerName string  `json:"speaker_name"`
	Text        string  `json:"text"`
	StartSec    float64 `json:"start_sec,omitempty"`
	EndSec      float64 `json:"end_sec,omitempty"`
}

// TranscriptPayload is the structured transcript downloaded from the
// provider for one bot.
type TranscriptPayload struct {
	BotUID     string      `json:"bot_uid"`
	Utterances []Utterance `json:"utterances"`
	CreatedAt  *time.Time  `json:"created_at,omitempty"`
}

// ContinuousText flattens the payload into one "Speaker: text" line per
// utterance. Line boundaries are significant downstream: the chunker never
// splits inside a line, so utterances stay intact.
func (t *TranscriptPayload) ContinuousText() string {
	lines := make([]string, 0, len(t.Utterances))
	for _, u := range t.Utterances {
		text := strings.TrimSpace(u.Text)
		if text == "" {
			continue
		}
		if u.SpeakerName != "" {
			lines = append(lines, u.SpeakerName+": "+text)
		} else {
			lines = append(lines, text)
		}
	}
	return strings.Join(lines, "\n")
}

// ParticipantNames returns the distinct speaker names, sorted so that the
// stored participant set is stable across downloads.
func (t *TranscriptPayload) ParticipantNames() []string {
	seen := make(map[string]struct{})
	for _, u := range t.Utterances {
		if u.SpeakerName != "" {
			seen[u.SpeakerName] = struct{}{}
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
