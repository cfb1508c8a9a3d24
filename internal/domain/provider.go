// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package domain

import (
	"context"
	"time"

	"github.com/linuxfoundation/lfx-v2-twin-attendant-service/internal/domain/models"
)

// JoinRequest is the provisioning request handed to the bot provider.
// AvatarURL is optional and shown as the bot's profile image where the
// platform supports it.
type JoinRequest struct {
	MeetingURL     string
	DisplayName    string
	AvatarURL      string
	Recording      RecordingOptions
	AutomaticLeave AutomaticLeaveOptions
}

// RecordingOptions configures the provider-side recording for a join.
type RecordingOptions struct {
	TranscriptProvider string
	VideoEnabled       bool
}

// AutomaticLeaveOptions bounds how long the bot lingers in a call that never
// starts. Zero values leave the provider's defaults in place.
type AutomaticLeaveOptions struct {
	// WaitingRoomTimeoutSec is how long the bot waits to be admitted.
	WaitingRoomTimeoutSec int
	// NooneJoinedTimeoutSec is how long the bot stays in an empty call.
	NooneJoinedTimeoutSec int
}

// BotStatus is the provider's view of a bot, used to reconcile orphan
// registrations with meetings.
type BotStatus struct {
	BotUID      string
	Status      string
	MeetingURL  string
	Platform    string
	DisplayName string
}

// TranscriptHandle is one entry of the provider's transcript listing for a
// bot, resolvable to a downloadable payload.
type TranscriptHandle struct {
	UID         string
	DownloadURL string
	ExpiresAt   *time.Time
	CreatedAt   *time.Time
}

// BotProvider defines the interface to the external meeting-bot provisioning
// service. All calls are network I/O with bounded timeouts; implementations
// must never block past their configured deadline.
type BotProvider interface {
	// CreateBot asks the provider to join a meeting and returns the provider's
	// bot UID on success.
	CreateBot(ctx context.Context, request *JoinRequest) (*BotStatus, error)
	// GetBot fetches the provider's current view of a bot.
	GetBot(ctx context.Context, botUID string) (*BotStatus, error)
	// ListTranscripts lists the transcript handles available for a bot,
	// newest first.
	ListTranscripts(ctx context.Context, botUID string) ([]TranscriptHandle, error)
	// FetchTranscript downloads and decodes the payload behind a handle.
	FetchTranscript(ctx context.Context, handle TranscriptHandle) (*models.TranscriptPayload, error)
}
