// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package service contains the business logic of the twin attendant service:
// the meeting lifecycle, the auto-join scheduler, the join orchestrator, the
// transcript finalizer, and the reaper.
package service

import "time"

// Default tuning values. All of them are env-overridable in cmd.
const (
	// DefaultCheckInterval is how often the auto-join scheduler sweeps.
	DefaultCheckInterval = 30 * time.Second
	// DefaultJoinAdvance is how far ahead of the scheduled start a meeting is
	// claimed and joined.
	DefaultJoinAdvance = 2 * time.Minute
	// DefaultJoinWorkers bounds concurrent join dispatches per sweep.
	DefaultJoinWorkers = 4
	// DefaultReaperSafetyMargin is added past a meeting's scheduled end before
	// the reaper considers it stuck.
	DefaultReaperSafetyMargin = 4 * time.Hour
	// DefaultReaperQuiescence is how long a stuck meeting must have gone
	// without updates before the reaper touches it, so an in-flight finalizer
	// wins the race.
	DefaultReaperQuiescence = 15 * time.Minute
	// DefaultBotDisplayName is the name the bot joins meetings under.
	DefaultBotDisplayName = "LFX Twin Notetaker"
	// DefaultTranscriptProvider selects the provider-side transcription source.
	DefaultTranscriptProvider = "meeting_captions"
	// DefaultWaitingRoomTimeoutSec is how long the bot waits to be admitted
	// before the provider pulls it out.
	DefaultWaitingRoomTimeoutSec = 1200
	// DefaultNooneJoinedTimeoutSec is how long the bot stays in a call nobody
	// else joined.
	DefaultNooneJoinedTimeoutSec = 600
)

// ServiceConfig holds the tunables shared across the service components.
type ServiceConfig struct {
	CheckInterval      time.Duration
	JoinAdvance        time.Duration
	JoinWorkers        int
	ReaperSafetyMargin time.Duration
	ReaperQuiescence   time.Duration
	BotDisplayName     string
	TranscriptProvider string
}

// withDefaults fills in zero values.
func (c ServiceConfig) withDefaults() ServiceConfig {
	if c.CheckInterval <= 0 {
		c.CheckInterval = DefaultCheckInterval
	}
	if c.JoinAdvance <= 0 {
		c.JoinAdvance = DefaultJoinAdvance
	}
	if c.JoinWorkers <= 0 {
		c.JoinWorkers = DefaultJoinWorkers
	}
	if c.ReaperSafetyMargin <= 0 {
		c.ReaperSafetyMargin = DefaultReaperSafetyMargin
	}
	if c.ReaperQuiescence <= 0 {
		c.ReaperQuiescence = DefaultReaperQuiescence
	}
	if c.BotDisplayName == "" {
		c.BotDisplayName = DefaultBotDisplayName
	}
	if c.TranscriptProvider == "" {
		c.TranscriptProvider = DefaultTranscriptProvider
	}
	return c
}
