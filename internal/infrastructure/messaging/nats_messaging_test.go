// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/linuxfoundation/lfx-v2-twin-attendant-service/internal/domain/models"
)

// MockNATSConn is a testify mock of the NATS connection interface.
type MockNATSConn struct {
	mock.Mock
}

func (m *MockNATSConn) IsConnected() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockNATSConn) Publish(subj string, data []byte) error {
	args := m.Called(subj, data)
	return args.Error(0)
}

func TestMessageBuilderSendMessage(t *testing.T) {
	tests := []struct {
		name         string
		publishError error
		expectError  bool
	}{
		{
			name:         "successful send",
			publishError: nil,
			expectError:  false,
		},
		{
			name:         "publish error",
			publishError: errors.New("publish failed"),
			expectError:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockConn := new(MockNATSConn)
			mockConn.On("Publish", "test.subject", []byte("test data")).Return(tt.publishError)

			builder := NewMessageBuilder(mockConn)
			err := builder.sendMessage(context.Background(), "test.subject", []byte("test data"))

			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			mockConn.AssertExpectations(t)
		})
	}
}

func TestMessageBuilderSendMeetingSummarized(t *testing.T) {
	mockConn := new(MockNATSConn)
	mockConn.On("Publish", models.MeetingSummarizedSubject, mock.MatchedBy(func(data []byte) bool {
		var msg models.MeetingSummarizedMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return false
		}
		return msg.MeetingUID == "meeting-1" &&
			msg.TwinUID == "twin-1" &&
			msg.Summary == "The team shipped the API." &&
			len(msg.Participants) == 2
	})).Return(nil)

	builder := NewMessageBuilder(mockConn)
	err := builder.SendMeetingSummarized(context.Background(), models.MeetingSummarizedMessage{
		MeetingUID:   "meeting-1",
		UserUID:      "user-1",
		TwinUID:      "twin-1",
		Summary:      "The team shipped the API.",
		Participants: []string{"Alice", "Bob"},
	})

	assert.NoError(t, err)
	mockConn.AssertExpectations(t)
}

func TestNatsMessageAdapter(t *testing.T) {
	t.Run("with reply subject", func(t *testing.T) {
		msg := NewNatsMessage(&nats.Msg{
			Subject: models.MeetingGetStatusSubject,
			Reply:   "_INBOX.abc",
			Data:    []byte("meeting-1"),
		})

		assert.Equal(t, models.MeetingGetStatusSubject, msg.Subject())
		assert.Equal(t, []byte("meeting-1"), msg.Data())
		assert.True(t, msg.HasReply())
	})

	t.Run("without reply subject", func(t *testing.T) {
		msg := NewNatsMessage(&nats.Msg{
			Subject: models.TranscriptReadySubject,
			Data:    []byte(`{"bot_uid":"b-1"}`),
		})

		assert.False(t, msg.HasReply())
	})
}
