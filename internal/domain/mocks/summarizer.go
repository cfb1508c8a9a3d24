// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/linuxfoundation/lfx-v2-twin-attendant-service/internal/domain"
)

// MockSummarizer implements Summarizer for testing
type MockSummarizer struct {
	mock.Mock
}

func (m *MockSummarizer) SummarizeText(ctx context.Context, text string, minWords, maxWords int) (string, error) {
	args := m.Called(ctx, text, minWords, maxWords)
	return args.String(0), args.Error(1)
}

func (m *MockSummarizer) Probe(ctx context.Context) domain.Capability {
	args := m.Called(ctx)
	return args.Get(0).(domain.Capability)
}
