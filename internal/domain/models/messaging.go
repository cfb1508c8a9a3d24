// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package models

// NATS subjects that the twin attendant service handles messages about.
const (
	// MeetingGetStatusSubject is the subject for reading a meeting's current
	// lifecycle status.
	// The subject is of the form: lfx.twin-attendant-api.get_status
	MeetingGetStatusSubject = "lfx.twin-attendant-api.get_status"

	// MeetingForceJoinSubject is the subject for triggering an immediate join
	// that bypasses the scheduler's window check but reuses the identical
	// claim-then-orchestrate path.
	// The subject is of the form: lfx.twin-attendant-api.force_join
	MeetingForceJoinSubject = "lfx.twin-attendant-api.force_join"

	// MeetingAutoJoinToggleSubject is the subject for flipping a meeting's
	// auto-join flag.
	// The subject is of the form: lfx.twin-attendant-api.auto_join_toggle
	MeetingAutoJoinToggleSubject = "lfx.twin-attendant-api.auto_join_toggle"

	// TranscriptReadySubject is the subject on which the provider integration
	// announces that a transcript became available for a bot.
	// The subject is of the form: lfx.twin-attendant-api.transcript_ready
	TranscriptReadySubject = "lfx.twin-attendant-api.transcript_ready"

	// MeetingSummarizedSubject is the subject the service publishes on after a
	// meeting is finalized, so that downstream consumers (twin memory
	// ingestion, notifications) can pick up the transcript and summary.
	// The subject is of the form: lfx.twin-attendant-api.meeting_summarized
	MeetingSummarizedSubject = "lfx.twin-attendant-api.meeting_summarized"
)

// TwinAttendantQueue is the NATS queue group for the twin attendant service.
const TwinAttendantQueue = "lfx.twin-attendant-service.queue"

// ForceJoinRequest is the payload of a force-join message.
type ForceJoinRequest struct {
	MeetingUID string `json:"meeting_uid"`
}

// ForceJoinResponse is the synchronous acknowledgment of a force-join.
type ForceJoinResponse struct {
	Success bool   `json:"success"`
	BotUID  string `json:"bot_uid,omitempty"`
	Error   string `json:"error,omitempty"`
}

// AutoJoinToggleRequest is the payload of an auto-join toggle message.
type AutoJoinToggleRequest struct {
	MeetingUID string `json:"meeting_uid"`
	AutoJoin   bool   `json:"auto_join"`
}

// MeetingStatusResponse is the reply payload for a get-status message.
type MeetingStatusResponse struct {
	MeetingUID string        `json:"meeting_uid"`
	Status     MeetingStatus `json:"status"`
	BotUID     string        `json:"bot_uid,omitempty"`
}

// TranscriptReadyMessage is the payload of a transcript-ready message.
type TranscriptReadyMessage struct {
	BotUID string `json:"bot_uid"`
}

// MeetingSummarizedMessage is the payload published after finalization.
type MeetingSummarizedMessage struct {
	MeetingUID   string   `json:"meeting_uid"`
	UserUID      string   `json:"user_uid"`
	TwinUID      string   `json:"twin_uid"`
	Summary      string   `json:"summary,omitempty"`
	Participants []string `json:"participants,omitempty"`
}
