// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package messaging

import (
	"github.com/nats-io/nats.go"

	"github.com/linuxfoundation/lfx-v2-twin-attendant-service/internal/domain"
)

// NatsMessage adapts a [nats.Msg] to the domain message interface consumed by
// the handlers.
type NatsMessage struct {
	msg *nats.Msg
}

// Ensure that NatsMessage implements Message.
var _ domain.Message = (*NatsMessage)(nil)

// NewNatsMessage wraps a NATS message.
func NewNatsMessage(msg *nats.Msg) *NatsMessage {
	return &NatsMessage{msg: msg}
}

// Subject returns the subject the message arrived on.
func (m *NatsMessage) Subject() string {
	return m.msg.Subject
}

// Data returns the message payload.
func (m *NatsMessage) Data() []byte {
	return m.msg.Data
}

// HasReply reports whether the sender expects a response.
func (m *NatsMessage) HasReply() bool {
	return m.msg.Reply != ""
}

// Respond sends a response back on the reply subject.
func (m *NatsMessage) Respond(data []byte) error {
	return m.msg.Respond(data)
}
