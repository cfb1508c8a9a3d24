// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/linuxfoundation/lfx-v2-twin-attendant-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-twin-attendant-service/internal/domain/mocks"
	"github.com/linuxfoundation/lfx-v2-twin-attendant-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-twin-attendant-service/internal/summarize"
)

type finalizerFixture struct {
	meetings      *fakeMeetingRepository
	registrations *fakeBotRegistrationRepository
	provider      *mocks.MockBotProvider
	backend       *mocks.MockSummarizer
	events        *mocks.MockMeetingEventSender
	finalizer     *TranscriptFinalizer
}

func newFinalizerFixture(t *testing.T, capability domain.Capability) *finalizerFixture {
	t.Helper()
	f := &finalizerFixture{
		meetings:      newFakeMeetingRepository(),
		registrations: newFakeBotRegistrationRepository(),
		provider:      &mocks.MockBotProvider{},
		backend:       &mocks.MockSummarizer{},
		events:        &mocks.MockMeetingEventSender{},
	}
	f.finalizer = NewTranscriptFinalizer(
		f.meetings,
		f.registrations,
		f.provider,
		summarize.NewChunkedSummarizer(f.backend, summarize.Options{}),
		capability,
		f.events,
	)
	return f
}

func (f *finalizerFixture) seedActiveMeeting(t *testing.T, meetingUID, botUID string) {
	t.Helper()
	meeting := scheduledMeeting(meetingUID, time.Now().Add(-30*time.Minute))
	meeting.Status = models.MeetingStatusInProgress
	meeting.BotUID = botUID
	require.NoError(t, f.meetings.Create(context.Background(), meeting))
	require.NoError(t, f.registrations.Create(context.Background(), &models.BotRegistration{
		BotUID:          botUID,
		UserUID:         "user-1",
		MeetingUID:      meetingUID,
		RecordingStatus: models.RecordingStatusRecording,
	}))
}

func (f *finalizerFixture) stubTranscript(botUID string) {
	handle := domain.TranscriptHandle{
		UID:         "t-1",
		DownloadURL: "https://cdn.example.com/t-1.json",
	}
	f.provider.On("ListTranscripts", mock.Anything, botUID).
		Return([]domain.TranscriptHandle{handle}, nil)
	f.provider.On("FetchTranscript", mock.Anything, handle).
		Return(&models.TranscriptPayload{
			Utterances: []models.Utterance{
				{SpeakerName: "Alice", Text: "We shipped the new API today."},
				{SpeakerName: "Bob", Text: "Traffic looks healthy so far."},
			},
		}, nil)
}

func TestFinalizerHappyPath(t *testing.T) {
	ctx := context.Background()
	f := newFinalizerFixture(t, domain.Available())
	f.seedActiveMeeting(t, "meeting-1", "b-1")
	f.stubTranscript("b-1")

	f.backend.On("SummarizeText", mock.Anything, mock.AnythingOfType("string"), mock.Anything, mock.Anything).
		Return("The team shipped the API and traffic is healthy.", nil)
	f.events.On("SendMeetingSummarized", mock.Anything, mock.MatchedBy(func(msg models.MeetingSummarizedMessage) bool {
		return msg.MeetingUID == "meeting-1" && msg.TwinUID == "twin-1" && msg.Summary != ""
	})).Return(nil)

	require.NoError(t, f.finalizer.FinalizeBot(ctx, "b-1"))

	meeting, err := f.meetings.Get(ctx, "meeting-1")
	require.NoError(t, err)
	assert.Equal(t, models.MeetingStatusCompleted, meeting.Status)
	assert.Equal(t, "Alice: We shipped the new API today.\nBob: Traffic looks healthy so far.", meeting.Transcript)
	assert.Equal(t, "The team shipped the API and traffic is healthy.", meeting.Summary)
	assert.Empty(t, meeting.SummaryError)
	assert.Equal(t, []string{"Alice", "Bob"}, meeting.Participants)

	registration, err := f.registrations.Get(ctx, "b-1")
	require.NoError(t, err)
	assert.Equal(t, models.RecordingStatusCompleted, registration.RecordingStatus)
	assert.Equal(t, "https://cdn.example.com/t-1.json", registration.RecordingDownloadURL)
	assert.Equal(t, "t-1", registration.RecordingMetadata["transcript_uid"])

	f.events.AssertExpectations(t)
}

func TestFinalizerSummarizerUnavailable(t *testing.T) {
	ctx := context.Background()
	f := newFinalizerFixture(t, domain.Unavailable("model not installed"))
	f.seedActiveMeeting(t, "meeting-1", "b-1")
	f.stubTranscript("b-1")
	f.events.On("SendMeetingSummarized", mock.Anything, mock.Anything).Return(nil)

	require.NoError(t, f.finalizer.FinalizeBot(ctx, "b-1"))

	meeting, err := f.meetings.Get(ctx, "meeting-1")
	require.NoError(t, err)
	assert.Equal(t, models.MeetingStatusCompleted, meeting.Status)
	assert.NotEmpty(t, meeting.Transcript)
	assert.Empty(t, meeting.Summary)
	assert.Contains(t, meeting.SummaryError, "model not installed")

	// The backend is never touched when the capability probe failed.
	f.backend.AssertNotCalled(t, "SummarizeText", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestFinalizerSummarizerFailureDegrades(t *testing.T) {
	ctx := context.Background()
	f := newFinalizerFixture(t, domain.Available())
	f.seedActiveMeeting(t, "meeting-1", "b-1")
	f.stubTranscript("b-1")

	f.backend.On("SummarizeText", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("", domain.NewUnavailableError("summarization service unreachable"))
	f.events.On("SendMeetingSummarized", mock.Anything, mock.Anything).Return(nil)

	require.NoError(t, f.finalizer.FinalizeBot(ctx, "b-1"))

	meeting, err := f.meetings.Get(ctx, "meeting-1")
	require.NoError(t, err)
	assert.Equal(t, models.MeetingStatusCompleted, meeting.Status)
	assert.NotEmpty(t, meeting.Transcript)
	assert.Contains(t, meeting.SummaryError, "unreachable")
}

func TestFinalizerReconcilesOrphanBot(t *testing.T) {
	ctx := context.Background()
	f := newFinalizerFixture(t, domain.Available())

	meeting := scheduledMeeting("meeting-1", time.Now().Add(-time.Hour))
	meeting.Status = models.MeetingStatusInProgress
	require.NoError(t, f.meetings.Create(ctx, meeting))

	// Orphan registration: no meeting UID recorded.
	require.NoError(t, f.registrations.Create(ctx, &models.BotRegistration{
		BotUID:          "b-orphan",
		RecordingStatus: models.RecordingStatusPending,
	}))

	f.stubTranscript("b-orphan")
	f.provider.On("GetBot", mock.Anything, "b-orphan").
		Return(&domain.BotStatus{BotUID: "b-orphan", MeetingURL: "https://zoom.us/j/123456789"}, nil)
	f.backend.On("SummarizeText", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("Summary of the reconciled meeting discussion.", nil)
	f.events.On("SendMeetingSummarized", mock.Anything, mock.Anything).Return(nil)

	require.NoError(t, f.finalizer.FinalizeBot(ctx, "b-orphan"))

	stored, err := f.meetings.Get(ctx, "meeting-1")
	require.NoError(t, err)
	assert.Equal(t, models.MeetingStatusCompleted, stored.Status)
	assert.NotEmpty(t, stored.Transcript)

	registration, err := f.registrations.Get(ctx, "b-orphan")
	require.NoError(t, err)
	assert.Equal(t, "meeting-1", registration.MeetingUID)
	assert.Equal(t, models.RecordingStatusCompleted, registration.RecordingStatus)
}

func TestFinalizerOrphanWithoutMatchKeepsRegistration(t *testing.T) {
	ctx := context.Background()
	f := newFinalizerFixture(t, domain.Available())

	require.NoError(t, f.registrations.Create(ctx, &models.BotRegistration{
		BotUID:          "b-orphan",
		RecordingStatus: models.RecordingStatusPending,
	}))

	f.stubTranscript("b-orphan")
	f.provider.On("GetBot", mock.Anything, "b-orphan").
		Return(&domain.BotStatus{BotUID: "b-orphan", MeetingURL: "https://zoom.us/j/unknown"}, nil)

	require.NoError(t, f.finalizer.FinalizeBot(ctx, "b-orphan"))

	registration, err := f.registrations.Get(ctx, "b-orphan")
	require.NoError(t, err)
	assert.Empty(t, registration.MeetingUID)
	assert.Equal(t, models.RecordingStatusCompleted, registration.RecordingStatus)
	assert.Equal(t, "https://cdn.example.com/t-1.json", registration.RecordingDownloadURL)

	f.events.AssertNotCalled(t, "SendMeetingSummarized", mock.Anything, mock.Anything)
}

func TestFinalizerNoTranscriptsAvailable(t *testing.T) {
	ctx := context.Background()
	f := newFinalizerFixture(t, domain.Available())
	f.seedActiveMeeting(t, "meeting-1", "b-1")

	f.provider.On("ListTranscripts", mock.Anything, "b-1").
		Return([]domain.TranscriptHandle{}, nil)

	err := f.finalizer.FinalizeBot(ctx, "b-1")
	require.Error(t, err)
	assert.True(t, domain.IsNotFound(err))

	// The meeting is untouched so a later retry can finalize it.
	meeting, getErr := f.meetings.Get(ctx, "meeting-1")
	require.NoError(t, getErr)
	assert.Equal(t, models.MeetingStatusInProgress, meeting.Status)
}

func TestFinalizerUnknownBotRegistersFromProvider(t *testing.T) {
	ctx := context.Background()
	f := newFinalizerFixture(t, domain.Available())

	f.provider.On("GetBot", mock.Anything, "b-new").
		Return(&domain.BotStatus{BotUID: "b-new", DisplayName: "Twin Notetaker", MeetingURL: ""}, nil)
	f.stubTranscript("b-new")

	require.NoError(t, f.finalizer.FinalizeBot(ctx, "b-new"))

	registration, err := f.registrations.Get(ctx, "b-new")
	require.NoError(t, err)
	assert.Equal(t, "Twin Notetaker", registration.DisplayName)
	assert.Equal(t, models.RecordingStatusCompleted, registration.RecordingStatus)
}

func TestFinalizerValidatesBotUID(t *testing.T) {
	f := newFinalizerFixture(t, domain.Available())
	err := f.finalizer.FinalizeBot(context.Background(), "")
	require.Error(t, err)
	assert.Equal(t, domain.ErrorTypeValidation, domain.GetErrorType(err))
}
