// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/linuxfoundation/lfx-v2-twin-attendant-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-twin-attendant-service/internal/domain/models"
)

// Ensure that Client implements BotProvider
var _ domain.BotProvider = (*Client)(nil)

// createBotRequest is the wire format for provisioning a bot.
type createBotRequest struct {
	MeetingURL      string          `json:"meeting_url"`
	BotName         string          `json:"bot_name"`
	BotImage        string          `json:"bot_image,omitempty"`
	RecordingConfig recordingConfig `json:"recording_config"`
	AutomaticLeave  *automaticLeave `json:"automatic_leave,omitempty"`
}

type recordingConfig struct {
	Transcript *transcriptConfig `json:"transcript,omitempty"`
}

type transcriptConfig struct {
	Provider map[string]any `json:"provider"`
}

type automaticLeave struct {
	WaitingRoomTimeout int `json:"waiting_room_timeout,omitempty"`
	NooneJoinedTimeout int `json:"noone_joined_timeout,omitempty"`
}

// botResponse is the provider's representation of a bot.
type botResponse struct {
	ID            string `json:"id"`
	MeetingURL    any    `json:"meeting_url"`
	BotName       string `json:"bot_name"`
	StatusChanges []struct {
		Code      string `json:"code"`
		CreatedAt string `json:"created_at"`
	} `json:"status_changes"`
}

// status returns the most recent status change code, or empty when the
// provider has not reported any yet.
func (b *botResponse) status() string {
	if len(b.StatusChanges) == 0 {
		return ""
	}
	return b.StatusChanges[len(b.StatusChanges)-1].Code
}

// meetingURL tolerates both the string and the object form the provider uses
// across API versions.
func (b *botResponse) meetingURL() string {
	switch v := b.MeetingURL.(type) {
	case string:
		return v
	case map[string]any:
		if id, ok := v["meeting_id"].(string); ok {
			return id
		}
	}
	return ""
}

// transcriptListEntry is one element of the provider's transcript listing.
type transcriptListEntry struct {
	ID   string `json:"id"`
	Data struct {
		DownloadURL string `json:"download_url"`
	} `json:"data"`
	ExpiresAt *time.Time `json:"expires_at"`
	CreatedAt *time.Time `json:"created_at"`
}

// transcriptSegment is one speaker segment of a downloaded transcript.
type transcriptSegment struct {
	Participant struct {
		ID   json.Number `json:"id"`
		Name string      `json:"name"`
	} `json:"participant"`
	Words []struct {
		Text           string `json:"text"`
		StartTimestamp struct {
			Relative float64 `json:"relative"`
		} `json:"start_timestamp"`
		EndTimestamp struct {
			Relative float64 `json:"relative"`
		} `json:"end_timestamp"`
	} `json:"words"`
}

// CreateBot asks the provider to send a notetaker bot into a meeting.
func (c *Client) CreateBot(ctx context.Context, request *domain.JoinRequest) (*domain.BotStatus, error) {
	if request.MeetingURL == "" {
		return nil, domain.NewValidationError("meeting URL is required")
	}

	body := createBotRequest{
		MeetingURL: request.MeetingURL,
		BotName:    request.DisplayName,
		BotImage:   request.AvatarURL,
	}
	if request.Recording.TranscriptProvider != "" {
		body.RecordingConfig.Transcript = &transcriptConfig{
			Provider: map[string]any{request.Recording.TranscriptProvider: map[string]any{}},
		}
	}
	if request.AutomaticLeave.WaitingRoomTimeoutSec > 0 || request.AutomaticLeave.NooneJoinedTimeoutSec > 0 {
		body.AutomaticLeave = &automaticLeave{
			WaitingRoomTimeout: request.AutomaticLeave.WaitingRoomTimeoutSec,
			NooneJoinedTimeout: request.AutomaticLeave.NooneJoinedTimeoutSec,
		}
	}

	resp, err := c.doRequest(ctx, http.MethodPost, c.config.BaseURL+"/bot/", body)
	if err != nil {
		return nil, domain.NewUnavailableError("bot provider unreachable", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, domain.NewInternalError("bot creation failed", parseErrorResponse(resp.StatusCode, respBody))
	}

	var bot botResponse
	if err := json.NewDecoder(resp.Body).Decode(&bot); err != nil {
		return nil, domain.NewInternalError("failed to decode bot response", err)
	}
	if bot.ID == "" {
		return nil, domain.NewInternalError("bot provider returned no bot ID")
	}

	return &domain.BotStatus{
		BotUID:      bot.ID,
		Status:      bot.status(),
		MeetingURL:  bot.meetingURL(),
		DisplayName: bot.BotName,
	}, nil
}

// GetBot fetches the provider's current view of a bot.
func (c *Client) GetBot(ctx context.Context, botUID string) (*domain.BotStatus, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("%s/bot/%s/", c.config.BaseURL, botUID), nil)
	if err != nil {
		return nil, domain.NewUnavailableError("bot provider unreachable", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return nil, domain.NewNotFoundError(fmt.Sprintf("bot '%s' not found", botUID))
	}
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, domain.NewInternalError("bot lookup failed", parseErrorResponse(resp.StatusCode, respBody))
	}

	var bot botResponse
	if err := json.NewDecoder(resp.Body).Decode(&bot); err != nil {
		return nil, domain.NewInternalError("failed to decode bot response", err)
	}

	return &domain.BotStatus{
		BotUID:      bot.ID,
		Status:      bot.status(),
		MeetingURL:  bot.meetingURL(),
		DisplayName: bot.BotName,
	}, nil
}

// ListTranscripts lists the transcript handles available for a bot.
func (c *Client) ListTranscripts(ctx context.Context, botUID string) ([]domain.TranscriptHandle, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("%s/bot/%s/transcripts/", c.config.BaseURL, botUID), nil)
	if err != nil {
		return nil, domain.NewUnavailableError("bot provider unreachable", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return nil, domain.NewNotFoundError(fmt.Sprintf("bot '%s' not found", botUID))
	}
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, domain.NewInternalError("transcript listing failed", parseErrorResponse(resp.StatusCode, respBody))
	}

	var entries []transcriptListEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, domain.NewInternalError("failed to decode transcript listing", err)
	}

	handles := make([]domain.TranscriptHandle, 0, len(entries))
	for _, entry := range entries {
		if entry.Data.DownloadURL == "" {
			continue
		}
		handles = append(handles, domain.TranscriptHandle{
			UID:         entry.ID,
			DownloadURL: entry.Data.DownloadURL,
			ExpiresAt:   entry.ExpiresAt,
			CreatedAt:   entry.CreatedAt,
		})
	}

	return handles, nil
}

// FetchTranscript downloads the payload behind a handle and flattens the
// provider's word-level segments into speaker utterances.
func (c *Client) FetchTranscript(ctx context.Context, handle domain.TranscriptHandle) (*models.TranscriptPayload, error) {
	if handle.DownloadURL == "" {
		return nil, domain.NewValidationError("transcript download URL is required")
	}

	resp, err := c.doRequest(ctx, http.MethodGet, handle.DownloadURL, nil)
	if err != nil {
		return nil, domain.NewUnavailableError("transcript download failed", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, domain.NewInternalError("transcript download failed", parseErrorResponse(resp.StatusCode, respBody))
	}

	var segments []transcriptSegment
	if err := json.NewDecoder(resp.Body).Decode(&segments); err != nil {
		return nil, domain.NewInternalError("failed to decode transcript payload", err)
	}

	payload := &models.TranscriptPayload{
		Utterances: make([]models.Utterance, 0, len(segments)),
	}
	for _, segment := range segments {
		words := make([]string, 0, len(segment.Words))
		for _, w := range segment.Words {
			if w.Text != "" {
				words = append(words, w.Text)
			}
		}
		if len(words) == 0 {
			continue
		}
		utterance := models.Utterance{
			SpeakerID:   segment.Participant.ID.String(),
			SpeakerName: segment.Participant.Name,
			Text:        strings.Join(words, " "),
		}
		if len(segment.Words) > 0 {
			utterance.StartSec = segment.Words[0].StartTimestamp.Relative
			utterance.EndSec = segment.Words[len(segment.Words)-1].EndTimestamp.Relative
		}
		payload.Utterances = append(payload.Utterances, utterance)
	}

	return payload, nil
}
