// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package handlers contains the NATS message handlers of the twin attendant service.
package handlers

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/linuxfoundation/lfx-v2-twin-attendant-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-twin-attendant-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-twin-attendant-service/internal/logging"
	"github.com/linuxfoundation/lfx-v2-twin-attendant-service/internal/service"
)

// MeetingHandler handles meeting-related messages and events.
type MeetingHandler struct {
	meetingService *service.MeetingService
	orchestrator   *service.JoinOrchestrator
	finalizer      *service.TranscriptFinalizer
}

// NewMeetingHandler creates a new MeetingHandler.
func NewMeetingHandler(
	meetingService *service.MeetingService,
	orchestrator *service.JoinOrchestrator,
	finalizer *service.TranscriptFinalizer,
) *MeetingHandler {
	return &MeetingHandler{
		meetingService: meetingService,
		orchestrator:   orchestrator,
		finalizer:      finalizer,
	}
}

// HandlerReady reports whether all backing services are initialized.
func (h *MeetingHandler) HandlerReady() bool {
	return h.meetingService != nil && h.meetingService.ServiceReady() &&
		h.orchestrator != nil && h.finalizer != nil
}

// HandleMessage implements domain.MessageHandler interface
func (h *MeetingHandler) HandleMessage(ctx context.Context, msg domain.Message) {
	subject := msg.Subject()
	ctx = logging.AppendCtx(ctx, slog.String("subject", subject))
	slog.DebugContext(ctx, "handling NATS message")

	handlers := map[string]func(ctx context.Context, msg domain.Message) ([]byte, error){
		models.MeetingGetStatusSubject:      h.HandleGetStatus,
		models.MeetingForceJoinSubject:      h.HandleForceJoin,
		models.MeetingAutoJoinToggleSubject: h.HandleAutoJoinToggle,
		models.TranscriptReadySubject:       h.HandleTranscriptReady,
	}

	handler, ok := handlers[subject]
	if !ok {
		slog.WarnContext(ctx, "unknown subject")
		h.respond(ctx, msg, nil)
		return
	}

	response, err := handler(ctx, msg)
	if err != nil {
		slog.ErrorContext(ctx, "error handling message", logging.ErrKey, err)
		h.respond(ctx, msg, nil)
		return
	}

	h.respond(ctx, msg, response)
}

func (h *MeetingHandler) respond(ctx context.Context, msg domain.Message, response []byte) {
	if !msg.HasReply() {
		return
	}
	if err := msg.Respond(response); err != nil {
		slog.ErrorContext(ctx, "error responding to NATS message", logging.ErrKey, err)
	}
}

// HandleGetStatus reports a meeting's lifecycle status. The message data is
// the meeting UID.
func (h *MeetingHandler) HandleGetStatus(ctx context.Context, msg domain.Message) ([]byte, error) {
	meetingUID := string(msg.Data())
	ctx = logging.AppendCtx(ctx, slog.String("meeting_uid", meetingUID))

	status, err := h.meetingService.GetMeetingStatus(ctx, meetingUID)
	if err != nil {
		return nil, err
	}

	return json.Marshal(status)
}

// HandleForceJoin triggers an immediate join, bypassing the scheduler's
// window check but going through the identical claim-then-orchestrate path
// so all the same invariants hold.
func (h *MeetingHandler) HandleForceJoin(ctx context.Context, msg domain.Message) ([]byte, error) {
	var request models.ForceJoinRequest
	if err := json.Unmarshal(msg.Data(), &request); err != nil {
		return nil, domain.NewValidationError("invalid force join payload", err)
	}
	ctx = logging.AppendCtx(ctx, slog.String("meeting_uid", request.MeetingUID))

	if _, err := h.meetingService.ClaimForJoin(ctx, request.MeetingUID); err != nil {
		return json.Marshal(models.ForceJoinResponse{Success: false, Error: err.Error()})
	}

	if err := h.orchestrator.ExecuteJoin(ctx, request.MeetingUID); err != nil {
		return json.Marshal(models.ForceJoinResponse{Success: false, Error: err.Error()})
	}

	meeting, err := h.meetingService.MeetingRepository.Get(ctx, request.MeetingUID)
	if err != nil {
		return nil, err
	}

	return json.Marshal(models.ForceJoinResponse{Success: true, BotUID: meeting.BotUID})
}

// HandleAutoJoinToggle flips a meeting's auto-join flag.
func (h *MeetingHandler) HandleAutoJoinToggle(ctx context.Context, msg domain.Message) ([]byte, error) {
	var request models.AutoJoinToggleRequest
	if err := json.Unmarshal(msg.Data(), &request); err != nil {
		return nil, domain.NewValidationError("invalid auto-join toggle payload", err)
	}
	ctx = logging.AppendCtx(ctx, slog.String("meeting_uid", request.MeetingUID))

	if err := h.meetingService.ToggleAutoJoin(ctx, request.MeetingUID, request.AutoJoin); err != nil {
		return nil, err
	}

	return []byte(`{"success":true}`), nil
}

// HandleTranscriptReady runs the finalization pipeline for a bot whose
// transcript became available.
func (h *MeetingHandler) HandleTranscriptReady(ctx context.Context, msg domain.Message) ([]byte, error) {
	var event models.TranscriptReadyMessage
	if err := json.Unmarshal(msg.Data(), &event); err != nil {
		return nil, domain.NewValidationError("invalid transcript ready payload", err)
	}

	if err := h.finalizer.FinalizeBot(ctx, event.BotUID); err != nil {
		return nil, err
	}

	return []byte(`{"success":true}`), nil
}
