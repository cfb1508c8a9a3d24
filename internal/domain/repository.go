// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package domain

import (
	"context"

	"github.com/linuxfoundation/lfx-v2-twin-attendant-service/internal/domain/models"
)

// MeetingRepository defines the interface for meeting storage operations.
// This interface can be implemented by different storage backends (NATS KV,
// PostgreSQL, etc.). Revisions implement optimistic concurrency: an update
// with a stale revision fails with a conflict error, which callers treat as
// a benign lost race.
type MeetingRepository interface {
	Create(ctx context.Context, meeting *models.Meeting) error
	Exists(ctx context.Context, meetingUID string) (bool, error)

	Get(ctx context.Context, meetingUID string) (*models.Meeting, error)
	GetWithRevision(ctx context.Context, meetingUID string) (*models.Meeting, uint64, error)
	Update(ctx context.Context, meeting *models.Meeting, revision uint64) error

	ListAll(ctx context.Context) ([]*models.Meeting, error)
}

// BotRegistrationRepository defines the interface for bot registration
// storage operations. Registrations are keyed by the provider's bot UID,
// which is globally unique.
type BotRegistrationRepository interface {
	Create(ctx context.Context, registration *models.BotRegistration) error
	Exists(ctx context.Context, botUID string) (bool, error)

	Get(ctx context.Context, botUID string) (*models.BotRegistration, error)
	GetWithRevision(ctx context.Context, botUID string) (*models.BotRegistration, uint64, error)
	Update(ctx context.Context, registration *models.BotRegistration, revision uint64) error

	ListAll(ctx context.Context) ([]*models.BotRegistration, error)
}
