// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"log/slog"

	"github.com/linuxfoundation/lfx-v2-twin-attendant-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-twin-attendant-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-twin-attendant-service/internal/logging"
	"github.com/linuxfoundation/lfx-v2-twin-attendant-service/internal/telemetry"
)

// JoinOrchestrator drives a claimed meeting through bot provisioning. It is
// only ever invoked on meetings in the joining state, after a successful
// claim.
type JoinOrchestrator struct {
	MeetingRepository         domain.MeetingRepository
	BotRegistrationRepository domain.BotRegistrationRepository
	BotProvider               domain.BotProvider
	Config                    ServiceConfig
}

// NewJoinOrchestrator creates a new JoinOrchestrator.
func NewJoinOrchestrator(
	meetingRepository domain.MeetingRepository,
	botRegistrationRepository domain.BotRegistrationRepository,
	botProvider domain.BotProvider,
	config ServiceConfig,
) *JoinOrchestrator {
	return &JoinOrchestrator{
		MeetingRepository:         meetingRepository,
		BotRegistrationRepository: botRegistrationRepository,
		BotProvider:               botProvider,
		Config:                    config.withDefaults(),
	}
}

// ExecuteJoin provisions a bot for a claimed meeting and moves it to
// in_progress. On provider failure the meeting is reverted to scheduled with
// the error recorded, so a later sweep can retry.
//
// The meeting must already hold a bot UID only if a previous join partially
// completed; in that case the existing bot is reused rather than provisioning
// a second one into the same call.
func (o *JoinOrchestrator) ExecuteJoin(ctx context.Context, meetingUID string) error {
	ctx = logging.AppendCtx(ctx, slog.String("meeting_uid", meetingUID))

	meeting, revision, err := o.MeetingRepository.GetWithRevision(ctx, meetingUID)
	if err != nil {
		return err
	}

	if meeting.Status != models.MeetingStatusJoining {
		slog.WarnContext(ctx, "join dispatched for meeting no longer in joining state",
			"status", meeting.Status)
		return domain.NewConflictError("meeting is not in joining state")
	}

	botUID := meeting.BotUID
	if botUID == "" {
		bot, err := o.BotProvider.CreateBot(ctx, &domain.JoinRequest{
			MeetingURL:  meeting.MeetingURL,
			DisplayName: o.displayName(meeting),
			AvatarURL:   meeting.BotAvatarURL,
			Recording: domain.RecordingOptions{
				TranscriptProvider: o.Config.TranscriptProvider,
			},
			AutomaticLeave: domain.AutomaticLeaveOptions{
				WaitingRoomTimeoutSec: DefaultWaitingRoomTimeoutSec,
				NooneJoinedTimeoutSec: DefaultNooneJoinedTimeoutSec,
			},
		})
		if err != nil {
			telemetry.Inc(telemetry.JoinsFailed)
			return o.revertToScheduled(ctx, meeting, revision, err)
		}
		botUID = bot.BotUID
	} else {
		slog.InfoContext(ctx, "reusing existing bot for join", "bot_uid", botUID)
	}

	if err := o.upsertRegistration(ctx, meeting, botUID); err != nil {
		// The bot is already in the call; losing its registration record is
		// recoverable via orphan reconciliation, so don't fail the join.
		slog.ErrorContext(ctx, "failed to upsert bot registration",
			logging.ErrKey, err, "bot_uid", botUID)
	}

	meeting.Status = models.MeetingStatusInProgress
	meeting.BotUID = botUID
	meeting.LastJoinError = ""
	if err := o.MeetingRepository.Update(ctx, meeting, revision); err != nil {
		telemetry.Inc(telemetry.JoinsFailed)
		return err
	}

	telemetry.Inc(telemetry.JoinsSucceeded)
	slog.InfoContext(ctx, "bot joined meeting", "bot_uid", botUID)
	return nil
}

// displayName resolves the name the bot joins under: the twin's per-meeting
// preference when set, otherwise the configured default.
func (o *JoinOrchestrator) displayName(meeting *models.Meeting) string {
	if meeting.BotDisplayName != "" {
		return meeting.BotDisplayName
	}
	return o.Config.BotDisplayName
}

// revertToScheduled undoes a claim after a failed provisioning attempt so the
// meeting becomes eligible for a retry on a later sweep.
func (o *JoinOrchestrator) revertToScheduled(ctx context.Context, meeting *models.Meeting, revision uint64, cause error) error {
	slog.ErrorContext(ctx, "bot provisioning failed, reverting claim", logging.ErrKey, cause)

	meeting.Status = models.MeetingStatusScheduled
	meeting.LastJoinError = cause.Error()
	if err := o.MeetingRepository.Update(ctx, meeting, revision); err != nil {
		slog.ErrorContext(ctx, "failed to revert meeting to scheduled",
			logging.ErrKey, err, logging.PriorityCritical())
		return err
	}

	return cause
}

// upsertRegistration records the bot in the registration bucket, updating an
// existing record when a reused bot is already registered.
func (o *JoinOrchestrator) upsertRegistration(ctx context.Context, meeting *models.Meeting, botUID string) error {
	existing, revision, err := o.BotRegistrationRepository.GetWithRevision(ctx, botUID)
	if err != nil {
		if !domain.IsNotFound(err) {
			return err
		}
		return o.BotRegistrationRepository.Create(ctx, &models.BotRegistration{
			BotUID:          botUID,
			UserUID:         meeting.UserUID,
			DisplayName:     o.displayName(meeting),
			Platform:        meeting.Platform,
			MeetingUID:      meeting.UID,
			RecordingStatus: models.RecordingStatusPending,
		})
	}

	existing.MeetingUID = meeting.UID
	existing.UserUID = meeting.UserUID
	if existing.RecordingStatus == models.RecordingStatusNotRequested {
		existing.RecordingStatus = models.RecordingStatusPending
	}
	return o.BotRegistrationRepository.Update(ctx, existing, revision)
}
