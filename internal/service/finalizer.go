// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/linuxfoundation/lfx-v2-twin-attendant-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-twin-attendant-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-twin-attendant-service/internal/logging"
	"github.com/linuxfoundation/lfx-v2-twin-attendant-service/internal/summarize"
	"github.com/linuxfoundation/lfx-v2-twin-attendant-service/internal/telemetry"
)

// TranscriptFinalizer turns a transcript-ready event into a completed
// meeting: it downloads the transcript, summarizes it, and writes both onto
// the meeting record.
type TranscriptFinalizer struct {
	MeetingRepository         domain.MeetingRepository
	BotRegistrationRepository domain.BotRegistrationRepository
	BotProvider               domain.BotProvider
	Summarizer                *summarize.ChunkedSummarizer
	SummarizerCapability      domain.Capability
	EventSender               domain.MeetingEventSender
}

// NewTranscriptFinalizer creates a new TranscriptFinalizer. The capability is
// the result of probing the summarization backend at startup; when it is
// unavailable, meetings are finalized with a transcript but no summary.
func NewTranscriptFinalizer(
	meetingRepository domain.MeetingRepository,
	botRegistrationRepository domain.BotRegistrationRepository,
	botProvider domain.BotProvider,
	summarizer *summarize.ChunkedSummarizer,
	capability domain.Capability,
	eventSender domain.MeetingEventSender,
) *TranscriptFinalizer {
	return &TranscriptFinalizer{
		MeetingRepository:         meetingRepository,
		BotRegistrationRepository: botRegistrationRepository,
		BotProvider:               botProvider,
		Summarizer:                summarizer,
		SummarizerCapability:      capability,
		EventSender:               eventSender,
	}
}

// FinalizeBot processes a transcript-ready event for a bot.
func (f *TranscriptFinalizer) FinalizeBot(ctx context.Context, botUID string) error {
	if botUID == "" {
		return domain.NewValidationError("bot UID is required")
	}
	ctx = logging.AppendCtx(ctx, slog.String("bot_uid", botUID))

	registration, err := f.resolveRegistration(ctx, botUID)
	if err != nil {
		telemetry.Inc(telemetry.FinalizedFailed)
		return err
	}

	payload, handle, err := f.downloadLatestTranscript(ctx, botUID)
	if err != nil {
		telemetry.Inc(telemetry.FinalizedFailed)
		return err
	}

	meetingUID := registration.MeetingUID
	if meetingUID == "" {
		meetingUID = f.reconcileOrphan(ctx, registration)
	}

	if meetingUID == "" {
		// No meeting claims this bot. Keep the registration as the system of
		// record for the download so a later consumer can still fetch it.
		slog.WarnContext(ctx, "transcript ready for orphan bot, no meeting matched")
		return f.completeRegistration(ctx, botUID, handle)
	}

	transcript := payload.ContinuousText()
	summary, summaryErr := f.summarizeTranscript(ctx, transcript)

	if err := f.completeMeeting(ctx, meetingUID, botUID, transcript, summary, summaryErr, payload.ParticipantNames()); err != nil {
		telemetry.Inc(telemetry.FinalizedFailed)
		return err
	}

	if err := f.completeRegistration(ctx, botUID, handle); err != nil {
		slog.ErrorContext(ctx, "failed to update bot registration after finalization",
			logging.ErrKey, err)
	}

	telemetry.Inc(telemetry.FinalizedSucceeded)
	slog.InfoContext(ctx, "meeting finalized",
		"meeting_uid", meetingUID,
		"transcript_words", summarize.WordCount(transcript),
		"summarized", summaryErr == "")
	return nil
}

// resolveRegistration loads the registration for a bot, creating an orphan
// record from the provider's view when the event arrived for a bot this
// service never registered (e.g. a manually provisioned bot).
func (f *TranscriptFinalizer) resolveRegistration(ctx context.Context, botUID string) (*models.BotRegistration, error) {
	registration, err := f.BotRegistrationRepository.Get(ctx, botUID)
	if err == nil {
		return registration, nil
	}
	if !domain.IsNotFound(err) {
		return nil, err
	}

	bot, err := f.BotProvider.GetBot(ctx, botUID)
	if err != nil {
		return nil, err
	}

	registration = &models.BotRegistration{
		BotUID:          bot.BotUID,
		DisplayName:     bot.DisplayName,
		Platform:        bot.Platform,
		RecordingStatus: models.RecordingStatusPending,
	}
	if err := f.BotRegistrationRepository.Create(ctx, registration); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "created orphan bot registration")
	return registration, nil
}

// downloadLatestTranscript fetches the newest transcript available for a bot.
func (f *TranscriptFinalizer) downloadLatestTranscript(ctx context.Context, botUID string) (*models.TranscriptPayload, *domain.TranscriptHandle, error) {
	handles, err := f.BotProvider.ListTranscripts(ctx, botUID)
	if err != nil {
		return nil, nil, err
	}
	if len(handles) == 0 {
		return nil, nil, domain.NewNotFoundError("no transcripts available for bot")
	}

	handle := handles[0]
	payload, err := f.BotProvider.FetchTranscript(ctx, handle)
	if err != nil {
		return nil, nil, err
	}
	payload.BotUID = botUID

	return payload, &handle, nil
}

// reconcileOrphan tries to associate an orphan registration with an active
// meeting by matching the provider's meeting URL. Returns the matched
// meeting UID, or empty when nothing matched.
func (f *TranscriptFinalizer) reconcileOrphan(ctx context.Context, registration *models.BotRegistration) string {
	bot, err := f.BotProvider.GetBot(ctx, registration.BotUID)
	if err != nil || bot.MeetingURL == "" {
		return ""
	}

	meetings, err := f.MeetingRepository.ListAll(ctx)
	if err != nil {
		return ""
	}

	for _, meeting := range meetings {
		if meeting.MeetingURL != bot.MeetingURL {
			continue
		}
		if meeting.Status != models.MeetingStatusJoining && meeting.Status != models.MeetingStatusInProgress {
			continue
		}

		reg, revision, err := f.BotRegistrationRepository.GetWithRevision(ctx, registration.BotUID)
		if err != nil {
			return ""
		}
		reg.MeetingUID = meeting.UID
		reg.UserUID = meeting.UserUID
		if err := f.BotRegistrationRepository.Update(ctx, reg, revision); err != nil {
			return ""
		}

		slog.InfoContext(ctx, "reconciled orphan bot with meeting", "meeting_uid", meeting.UID)
		return meeting.UID
	}

	return ""
}

// summarizeTranscript produces a summary, degrading to a recorded error when
// the backend is unavailable or fails. A transcript without a summary is
// still a successful finalization.
func (f *TranscriptFinalizer) summarizeTranscript(ctx context.Context, transcript string) (summary, summaryError string) {
	if !f.SummarizerCapability.Available {
		return "", "summarization unavailable: " + f.SummarizerCapability.Reason
	}

	result, err := f.Summarizer.Summarize(ctx, transcript)
	if err != nil {
		telemetry.Inc(telemetry.SummarizerFailures)
		slog.ErrorContext(ctx, "summarization failed", logging.ErrKey, err)
		return "", err.Error()
	}
	if result.NoContent {
		return "", "transcript contained no summarizable content"
	}

	telemetry.ObserveCompression(result.CompressionRatio())
	return result.Summary, ""
}

// completeMeeting writes the transcript and summary onto the meeting and
// marks it completed. One conflict retry covers the race against a reaper or
// a concurrent status write; the finalizer's data always wins.
func (f *TranscriptFinalizer) completeMeeting(ctx context.Context, meetingUID, botUID, transcript, summary, summaryError string, participants []string) error {
	for attempt := 0; attempt < 2; attempt++ {
		meeting, revision, err := f.MeetingRepository.GetWithRevision(ctx, meetingUID)
		if err != nil {
			return err
		}

		meeting.Status = models.MeetingStatusCompleted
		meeting.BotUID = botUID
		meeting.Transcript = transcript
		meeting.Summary = summary
		meeting.SummaryError = summaryError
		meeting.Participants = participants

		err = f.MeetingRepository.Update(ctx, meeting, revision)
		if err == nil {
			f.publishSummarized(ctx, meeting)
			return nil
		}
		if !domain.IsConflict(err) || attempt == 1 {
			return err
		}
		slog.DebugContext(ctx, "finalization write conflicted, retrying", "meeting_uid", meetingUID)
	}
	return nil
}

// completeRegistration records the finished recording on the registration.
func (f *TranscriptFinalizer) completeRegistration(ctx context.Context, botUID string, handle *domain.TranscriptHandle) error {
	registration, revision, err := f.BotRegistrationRepository.GetWithRevision(ctx, botUID)
	if err != nil {
		return err
	}

	registration.RecordingStatus = models.RecordingStatusCompleted
	if handle != nil {
		registration.RecordingDownloadURL = handle.DownloadURL
		registration.RecordingExpiresAt = handle.ExpiresAt
		if registration.RecordingMetadata == nil {
			registration.RecordingMetadata = map[string]string{}
		}
		registration.RecordingMetadata["transcript_uid"] = handle.UID
		registration.RecordingMetadata["downloaded_at"] = time.Now().UTC().Format(time.RFC3339)
	}

	return f.BotRegistrationRepository.Update(ctx, registration, revision)
}

// publishSummarized emits the downstream event. Publish failures are logged,
// not propagated: the meeting record is already consistent.
func (f *TranscriptFinalizer) publishSummarized(ctx context.Context, meeting *models.Meeting) {
	if f.EventSender == nil {
		return
	}
	err := f.EventSender.SendMeetingSummarized(ctx, models.MeetingSummarizedMessage{
		MeetingUID:   meeting.UID,
		UserUID:      meeting.UserUID,
		TwinUID:      meeting.TwinUID,
		Summary:      meeting.Summary,
		Participants: meeting.Participants,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to publish meeting summarized event",
			logging.ErrKey, err, "meeting_uid", meeting.UID)
	}
}
