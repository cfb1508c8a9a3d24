// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/linuxfoundation/lfx-v2-twin-attendant-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-twin-attendant-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-twin-attendant-service/internal/logging"
	"github.com/linuxfoundation/lfx-v2-twin-attendant-service/internal/telemetry"
)

// DefaultReaperSchedule runs the reaper daily at 02:00.
const DefaultReaperSchedule = "0 2 * * *"

// Reaper forces meetings stuck in joining or in_progress to completed once
// they are well past their scheduled end. A crashed orchestrator or a lost
// transcript event would otherwise leave a meeting active forever.
type Reaper struct {
	MeetingRepository domain.MeetingRepository
	Config            ServiceConfig
	Schedule          string

	cron *cron.Cron
	// now is swappable for tests.
	now func() time.Time
}

// NewReaper creates a new Reaper.
func NewReaper(meetingRepository domain.MeetingRepository, schedule string, config ServiceConfig) *Reaper {
	if schedule == "" {
		schedule = DefaultReaperSchedule
	}
	return &Reaper{
		MeetingRepository: meetingRepository,
		Config:            config.withDefaults(),
		Schedule:          schedule,
		now:               time.Now,
	}
}

// Start registers the cron schedule and begins running sweeps.
func (r *Reaper) Start(ctx context.Context) error {
	r.cron = cron.New()
	_, err := r.cron.AddFunc(r.Schedule, func() {
		if reaped, err := r.Sweep(ctx); err != nil {
			slog.ErrorContext(ctx, "reaper sweep failed", logging.ErrKey, err)
		} else if reaped > 0 {
			slog.InfoContext(ctx, "reaper sweep completed", "reaped", reaped)
		}
	})
	if err != nil {
		return domain.NewInternalError("invalid reaper schedule", err)
	}

	r.cron.Start()
	slog.InfoContext(ctx, "reaper started",
		"schedule", r.Schedule,
		"safety_margin", r.Config.ReaperSafetyMargin.String())
	return nil
}

// Stop halts the cron scheduler and waits for a running sweep to finish.
func (r *Reaper) Stop() {
	if r.cron != nil {
		<-r.cron.Stop().Done()
	}
}

// Sweep scans all meetings and completes those that are stuck. Returns the
// number of meetings reaped.
func (r *Reaper) Sweep(ctx context.Context) (int, error) {
	meetings, err := r.MeetingRepository.ListAll(ctx)
	if err != nil {
		return 0, err
	}

	now := r.now()
	reaped := 0
	for _, meeting := range meetings {
		if !r.isStuck(meeting, now) {
			continue
		}
		if err := r.reap(ctx, meeting.UID); err != nil {
			if domain.IsConflict(err) {
				// A finalizer got there first; its write wins.
				continue
			}
			slog.ErrorContext(ctx, "failed to reap meeting",
				logging.ErrKey, err, "meeting_uid", meeting.UID)
			continue
		}
		reaped++
	}

	return reaped, nil
}

// isStuck reports whether a meeting is active well past its end and has been
// quiet long enough that no finalizer is plausibly working on it.
func (r *Reaper) isStuck(meeting *models.Meeting, now time.Time) bool {
	if meeting.Status != models.MeetingStatusJoining && meeting.Status != models.MeetingStatusInProgress {
		return false
	}
	if now.Before(meeting.EndTime().Add(r.Config.ReaperSafetyMargin)) {
		return false
	}
	if meeting.UpdatedAt != nil && now.Sub(*meeting.UpdatedAt) < r.Config.ReaperQuiescence {
		return false
	}
	return true
}

// reap re-reads the meeting and conditionally completes it, so that a
// concurrent finalization with fresher data always wins the write.
func (r *Reaper) reap(ctx context.Context, meetingUID string) error {
	meeting, revision, err := r.MeetingRepository.GetWithRevision(ctx, meetingUID)
	if err != nil {
		return err
	}

	if meeting.Status != models.MeetingStatusJoining && meeting.Status != models.MeetingStatusInProgress {
		return nil
	}

	slog.WarnContext(ctx, "reaping stuck meeting",
		"meeting_uid", meetingUID,
		"status", meeting.Status,
		"scheduled_time", meeting.ScheduledTime)

	meeting.Status = models.MeetingStatusCompleted
	if meeting.Transcript == "" {
		meeting.SummaryError = "meeting reaped without a transcript"
	}
	if err := r.MeetingRepository.Update(ctx, meeting, revision); err != nil {
		return err
	}

	telemetry.Inc(telemetry.MeetingsReaped)
	return nil
}
