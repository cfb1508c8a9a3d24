// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package models

import (
	"time"
)

// RecordingStatus is the status of the provider-side recording for a bot.
type RecordingStatus string

// Recording statuses reported against a bot registration.
const (
	RecordingStatusNotRequested RecordingStatus = "not_requested"
	RecordingStatusPending      RecordingStatus = "pending"
	RecordingStatusRecording    RecordingStatus = "recording"
	RecordingStatusCompleted    RecordingStatus = "completed"
	RecordingStatusFailed       RecordingStatus = "failed"
	RecordingStatusExpired      RecordingStatus = "expired"
)

// BotRegistration is the key-value store representation of one successful
// provisioning attempt against the external bot provider. The bot UID is the
// provider's identifier and is globally unique; the registration is keyed by
// it so repeated orchestrations of the same result upsert rather than insert.
type BotRegistration struct {
	BotUID      string `json:"bot_uid"`
	UserUID     string `json:"user_uid"`
	DisplayName string `json:"display_name,omitempty"`
	Platform    string `json:"platform,omitempty"`
	// MeetingUID is empty for an orphan registration (manual join path) until
	// reconciliation associates it with a meeting.
	MeetingUID           string            `json:"meeting_uid,omitempty"`
	RecordingStatus      RecordingStatus   `json:"recording_status"`
	RecordingMetadata    map[string]string `json:"recording_metadata,omitempty"`
	RecordingDownloadURL string            `json:"recording_download_url,omitempty"`
	RecordingExpiresAt   *time.Time        `json:"recording_expires_at,omitempty"`
	CreatedAt            *time.Time        `json:"created_at,omitempty"`
	UpdatedAt            *time.Time        `json:"updated_at,omitempty"`
}
