// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/linuxfoundation/lfx-v2-twin-attendant-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-twin-attendant-service/internal/domain/models"
)

// MockBotProvider implements BotProvider for testing
type MockBotProvider struct {
	mock.Mock
}

func (m *MockBotProvider) CreateBot(ctx context.Context, request *domain.JoinRequest) (*domain.BotStatus, error) {
	args := m.Called(ctx, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BotStatus), args.Error(1)
}

func (m *MockBotProvider) GetBot(ctx context.Context, botUID string) (*domain.BotStatus, error) {
	args := m.Called(ctx, botUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BotStatus), args.Error(1)
}

func (m *MockBotProvider) ListTranscripts(ctx context.Context, botUID string) ([]domain.TranscriptHandle, error) {
	args := m.Called(ctx, botUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TranscriptHandle), args.Error(1)
}

func (m *MockBotProvider) FetchTranscript(ctx context.Context, handle domain.TranscriptHandle) (*models.TranscriptPayload, error) {
	args := m.Called(ctx, handle)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TranscriptPayload), args.Error(1)
}
