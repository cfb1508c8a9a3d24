// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/linuxfoundation/lfx-v2-twin-attendant-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-twin-attendant-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-twin-attendant-service/internal/logging"
	"github.com/linuxfoundation/lfx-v2-twin-attendant-service/internal/telemetry"
)

// MeetingService implements the meeting lifecycle operations.
type MeetingService struct {
	MeetingRepository domain.MeetingRepository
	Config            ServiceConfig
}

// NewMeetingService creates a new MeetingService.
func NewMeetingService(meetingRepository domain.MeetingRepository, config ServiceConfig) *MeetingService {
	return &MeetingService{
		MeetingRepository: meetingRepository,
		Config:            config.withDefaults(),
	}
}

// ServiceReady checks if the service is ready for use.
func (s *MeetingService) ServiceReady() bool {
	return s.MeetingRepository != nil
}

// CreateMeeting registers a new meeting for the twin to attend.
func (s *MeetingService) CreateMeeting(ctx context.Context, meeting *models.Meeting) (*models.Meeting, error) {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return nil, domain.NewUnavailableError("meeting service is not ready")
	}

	if meeting.MeetingURL == "" {
		return nil, domain.NewValidationError("meeting URL is required")
	}
	if meeting.ScheduledTime.IsZero() {
		return nil, domain.NewValidationError("scheduled time is required")
	}

	if meeting.UID == "" {
		meeting.UID = uuid.New().String()
	}
	meeting.Status = models.MeetingStatusScheduled

	if err := s.MeetingRepository.Create(ctx, meeting); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "meeting registered",
		"meeting_uid", meeting.UID,
		"scheduled_time", meeting.ScheduledTime,
		"auto_join", meeting.AutoJoin)

	return meeting, nil
}

// GetMeetingStatus reports a meeting's current lifecycle status.
func (s *MeetingService) GetMeetingStatus(ctx context.Context, meetingUID string) (*models.MeetingStatusResponse, error) {
	if !s.ServiceReady() {
		return nil, domain.NewUnavailableError("meeting service is not ready")
	}
	if meetingUID == "" {
		return nil, domain.NewValidationError("meeting UID is required")
	}

	meeting, err := s.MeetingRepository.Get(ctx, meetingUID)
	if err != nil {
		return nil, err
	}

	return &models.MeetingStatusResponse{
		MeetingUID: meeting.UID,
		Status:     meeting.Status,
		BotUID:     meeting.BotUID,
	}, nil
}

// ToggleAutoJoin flips a meeting's auto-join flag. The flag only matters
// while the meeting is still scheduled; later states ignore it.
func (s *MeetingService) ToggleAutoJoin(ctx context.Context, meetingUID string, autoJoin bool) error {
	if !s.ServiceReady() {
		return domain.NewUnavailableError("meeting service is not ready")
	}
	if meetingUID == "" {
		return domain.NewValidationError("meeting UID is required")
	}

	meeting, revision, err := s.MeetingRepository.GetWithRevision(ctx, meetingUID)
	if err != nil {
		return err
	}

	if meeting.AutoJoin == autoJoin {
		return nil
	}

	meeting.AutoJoin = autoJoin
	if err := s.MeetingRepository.Update(ctx, meeting, revision); err != nil {
		return err
	}

	slog.InfoContext(ctx, "auto-join flag updated",
		"meeting_uid", meetingUID, "auto_join", autoJoin)
	return nil
}

// ClaimForJoin transitions a meeting from scheduled to joining with a
// revision-conditional write. Exactly one claimant can win: everyone else
// gets a conflict error, which callers treat as a benign lost race.
//
// On success the claimed meeting and its new revision are returned so the
// caller can continue operating on fresh state.
func (s *MeetingService) ClaimForJoin(ctx context.Context, meetingUID string) (*models.Meeting, error) {
	if !s.ServiceReady() {
		return nil, domain.NewUnavailableError("meeting service is not ready")
	}

	meeting, revision, err := s.MeetingRepository.GetWithRevision(ctx, meetingUID)
	if err != nil {
		return nil, err
	}

	if meeting.Status != models.MeetingStatusScheduled {
		return nil, domain.NewConflictError("meeting is not in scheduled state")
	}

	meeting.Status = models.MeetingStatusJoining
	meeting.LastJoinError = ""
	if err := s.MeetingRepository.Update(ctx, meeting, revision); err != nil {
		if domain.IsConflict(err) {
			telemetry.Inc(telemetry.ClaimConflictsTotal)
			slog.DebugContext(ctx, "lost claim race", "meeting_uid", meetingUID)
		}
		return nil, err
	}

	slog.InfoContext(ctx, "claimed meeting for join", "meeting_uid", meetingUID)
	return meeting, nil
}
