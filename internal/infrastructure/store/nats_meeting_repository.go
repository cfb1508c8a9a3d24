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

// NatsMeetingRepository is the NATS KV store repository for meetings.
type NatsMeetingRepository struct {
	*NatsBaseRepository[models.Meeting]
}

// NewNatsMeetingRepository creates a new NATS KV store repository for meetings.
func NewNatsMeetingRepository(meetings INatsKeyValue) *NatsMeetingRepository {
	return &NatsMeetingRepository{
		NatsBaseRepository: NewNatsBaseRepository[models.Meeting](meetings, "meeting"),
	}
}

// Create stores a new meeting keyed by its UID.
func (s *NatsMeetingRepository) Create(ctx context.Context, meeting *models.Meeting) error {
	if meeting.UID == "" {
		return domain.NewValidationError("meeting UID is required")
	}

	now := time.Now().UTC()
	meeting.CreatedAt = &now
	meeting.UpdatedAt = &now

	err := s.NatsBaseRepository.Create(ctx, meeting.UID, meeting)
	if err != nil {
		return err
	}

	slog.DebugContext(ctx, "created meeting", "meeting_uid", meeting.UID, "status", meeting.Status)
	return nil
}

// Update rewrites a meeting conditional on the given revision. A stale
// revision returns a conflict error.
func (s *NatsMeetingRepository) Update(ctx context.Context, meeting *models.Meeting, revision uint64) error {
	if meeting.UID == "" {
		return domain.NewValidationError("meeting UID is required")
	}

	now := time.Now().UTC()
	meeting.UpdatedAt = &now

	return s.NatsBaseRepository.Update(ctx, meeting.UID, meeting, revision)
}

// ListAll returns every meeting in the bucket. The scheduler and reaper scan
// this list; bucket sizes stay small enough that a full scan per sweep is fine.
func (s *NatsMeetingRepository) ListAll(ctx context.Context) ([]*models.Meeting, error) {
	return s.ListEntities(ctx)
}
