// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/linuxfoundation/lfx-v2-twin-attendant-service/internal/domain/models"
)

// MockBotRegistrationRepository implements BotRegistrationRepository for testing
type MockBotRegistrationRepository struct {
	mock.Mock
}

func (m *MockBotRegistrationRepository) Create(ctx context.Context, registration *models.BotRegistration) error {
	args := m.Called(ctx, registration)
	return args.Error(0)
}

func (m *MockBotRegistrationRepository) Exists(ctx context.Context, botUID string) (bool, error) {
	args := m.Called(ctx, botUID)
	return args.Bool(0), args.Error(1)
}

func (m *MockBotRegistrationRepository) Get(ctx context.Context, botUID string) (*models.BotRegistration, error) {
	args := m.Called(ctx, botUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BotRegistration), args.Error(1)
}

func (m *MockBotRegistrationRepository) GetWithRevision(ctx context.Context, botUID string) (*models.BotRegistration, uint64, error) {
	args := m.Called(ctx, botUID)
	if args.Get(0) == nil {
		return nil, args.Get(1).(uint64), args.Error(2)
	}
	return args.Get(0).(*models.BotRegistration), args.Get(1).(uint64), args.Error(2)
}

func (m *MockBotRegistrationRepository) Update(ctx context.Context, registration *models.BotRegistration, revision uint64) error {
	args := m.Called(ctx, registration, revision)
	return args.Error(0)
}

func (m *MockBotRegistrationRepository) ListAll(ctx context.Context) ([]*models.BotRegistration, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BotRegistration), args.Error(1)
}
