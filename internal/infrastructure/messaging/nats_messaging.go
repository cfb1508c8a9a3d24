// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package messaging contains the NATS messaging infrastructure of the twin
// attendant service: the outbound event publisher and the inbound message
// adapter.
package messaging

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/linuxfoundation/lfx-v2-twin-attendant-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-twin-attendant-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-twin-attendant-service/internal/logging"
)

// INatsConn is the NATS connection interface needed for the [MessageBuilder].
type INatsConn interface {
	IsConnected() bool
	Publish(subj string, data []byte) error
}

// MessageBuilder builds messages and sends them to the NATS server.
type MessageBuilder struct {
	NatsConn INatsConn
}

// Ensure that MessageBuilder implements MeetingEventSender.
var _ domain.MeetingEventSender = (*MessageBuilder)(nil)

// NewMessageBuilder creates a new MessageBuilder.
func NewMessageBuilder(natsConn INatsConn) *MessageBuilder {
	return &MessageBuilder{
		NatsConn: natsConn,
	}
}

// sendMessage sends the message to the NATS server.
func (m *MessageBuilder) sendMessage(ctx context.Context, subject string, data []byte) error {
	err := m.NatsConn.Publish(subject, data)
	if err != nil {
		slog.ErrorContext(ctx, "error sending message to NATS", logging.ErrKey, err, "subject", subject)
		return err
	}
	slog.DebugContext(ctx, "sent message to NATS", "subject", subject)
	return nil
}

// SendMeetingSummarized publishes a meeting-summarized event so downstream
// consumers can ingest the transcript and summary.
func (m *MessageBuilder) SendMeetingSummarized(ctx context.Context, data models.MeetingSummarizedMessage) error {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		slog.ErrorContext(ctx, "error marshalling data into JSON", logging.ErrKey, err)
		return err
	}

	return m.sendMessage(ctx, models.MeetingSummarizedSubject, dataBytes)
}
