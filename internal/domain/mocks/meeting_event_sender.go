// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/linuxfoundation/lfx-v2-twin-attendant-service/internal/domain/models"
)

// MockMeetingEventSender implements MeetingEventSender for testing
type MockMeetingEventSender struct {
	mock.Mock
}

func (m *MockMeetingEventSender) SendMeetingSummarized(ctx context.Context, data models.MeetingSummarizedMessage) error {
	args := m.Called(ctx, data)
	return args.Error(0)
}
