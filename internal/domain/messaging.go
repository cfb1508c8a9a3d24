// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package domain

import (
	"context"

	"github.com/linuxfoundation/lfx-v2-twin-attendant-service/internal/domain/models"
)

// Message represents a domain message interface
type Message interface {
	Subject() string
	Data() []byte
	Respond(data []byte) error
	HasReply() bool
}

// MessageHandler defines how the service handles incoming messages
type MessageHandler interface {
	HandleMessage(ctx context.Context, msg Message)
	HandlerReady() bool
}

// MeetingEventSender publishes meeting lifecycle events for downstream
// consumers (twin memory ingestion, notification fan-out).
type MeetingEventSender interface {
	SendMeetingSummarized(ctx context.Context, data models.MeetingSummarizedMessage) error
}
