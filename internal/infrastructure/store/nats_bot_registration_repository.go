// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"log/slog"
	"time"

	"github.com/linuxfoundation/lfx-v2-twin-attendant-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-twin-attendant-service/internal/domain/models"
)

// NatsBotRegistrationRepository is the NATS KV store repository for bot
// registrations, keyed by the provider's bot UID.
type NatsBotRegistrationRepository struct {
	*NatsBaseRepository[models.BotRegistration]
}

// NewNatsBotRegistrationRepository creates a new NATS KV store repository for bot registrations.
func NewNatsBotRegistrationRepository(registrations INatsKeyValue) *NatsBotRegistrationRepository {
	return &NatsBotRegistrationRepository{
		NatsBaseRepository: NewNatsBaseRepository[models.BotRegistration](registrations, "bot registration"),
	}
}

// Create stores a new bot registration keyed by the provider bot UID.
func (s *NatsBotRegistrationRepository) Create(ctx context.Context, registration *models.BotRegistration) error {
	if registration.BotUID == "" {
		return domain.NewValidationError("bot UID is required")
	}

	now := time.Now().UTC()
	registration.CreatedAt = &now
	registration.UpdatedAt = &now

	err := s.NatsBaseRepository.Create(ctx, registration.BotUID, registration)
	if err != nil {
		return err
	}

	slog.DebugContext(ctx, "created bot registration",
		"bot_uid", registration.BotUID, "meeting_uid", registration.MeetingUID)
	return nil
}

// Update rewrites a registration conditional on the given revision.
func (s *NatsBotRegistrationRepository) Update(ctx context.Context, registration *models.BotRegistration, revision uint64) error {
	if registration.BotUID == "" {
		return domain.NewValidationError("bot UID is required")
	}

	now := time.Now().UTC()
	registration.UpdatedAt = &now

	return s.NatsBaseRepository.Update(ctx, registration.BotUID, registration, revision)
}

// ListAll returns every bot registration in the bucket.
func (s *NatsBotRegistrationRepository) ListAll(ctx context.Context) ([]*models.BotRegistration, error) {
	return s.ListEntities(ctx)
}
