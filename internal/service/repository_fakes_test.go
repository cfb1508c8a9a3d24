// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/linuxfoundation/lfx-v2-twin-attendant-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-twin-attendant-service/internal/domain/models"
)

// fakeMeetingRepository is an in-memory MeetingRepository with the same
// revision-conditional update semantics as the NATS KV store.
type fakeMeetingRepository struct {
	mu        sync.Mutex
	data      map[string][]byte
	revisions map[string]uint64
}

func newFakeMeetingRepository() *fakeMeetingRepository {
	return &fakeMeetingRepository{
		data:      make(map[string][]byte),
		revisions: make(map[string]uint64),
	}
}

func (f *fakeMeetingRepository) Create(ctx context.Context, meeting *models.Meeting) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now().UTC()
	meeting.CreatedAt = &now
	meeting.UpdatedAt = &now
	raw, err := json.Marshal(meeting)
	if err != nil {
		return domain.NewInternalError("marshal", err)
	}
	f.data[meeting.UID] = raw
	f.revisions[meeting.UID]++
	return nil
}

func (f *fakeMeetingRepository) Exists(ctx context.Context, meetingUID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.data[meetingUID]
	return ok, nil
}

func (f *fakeMeetingRepository) Get(ctx context.Context, meetingUID string) (*models.Meeting, error) {
	meeting, _, err := f.GetWithRevision(ctx, meetingUID)
	return meeting, err
}

func (f *fakeMeetingRepository) GetWithRevision(ctx context.Context, meetingUID string) (*models.Meeting, uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	raw, ok := f.data[meetingUID]
	if !ok {
		return nil, 0, domain.NewNotFoundError("meeting not found")
	}
	var meeting models.Meeting
	if err := json.Unmarshal(raw, &meeting); err != nil {
		return nil, 0, domain.NewInternalError("unmarshal", err)
	}
	return &meeting, f.revisions[meetingUID], nil
}

func (f *fakeMeetingRepository) Update(ctx context.Context, meeting *models.Meeting, revision uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	current, ok := f.revisions[meeting.UID]
	if !ok {
		return domain.NewNotFoundError("meeting not found")
	}
	if current != revision {
		return domain.NewConflictError("meeting has been modified")
	}
	now := time.Now().UTC()
	meeting.UpdatedAt = &now
	raw, err := json.Marshal(meeting)
	if err != nil {
		return domain.NewInternalError("marshal", err)
	}
	f.data[meeting.UID] = raw
	f.revisions[meeting.UID] = current + 1
	return nil
}

func (f *fakeMeetingRepository) ListAll(ctx context.Context) ([]*models.Meeting, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	meetings := make([]*models.Meeting, 0, len(f.data))
	for _, raw := range f.data {
		var meeting models.Meeting
		if err := json.Unmarshal(raw, &meeting); err != nil {
			return nil, domain.NewInternalError("unmarshal", err)
		}
		meetings = append(meetings, &meeting)
	}
	return meetings, nil
}

// setUpdatedAt rewrites a meeting's update timestamp, bypassing revision
// bumps, so tests can simulate quiescence.
func (f *fakeMeetingRepository) setUpdatedAt(meetingUID string, at time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var meeting models.Meeting
	_ = json.Unmarshal(f.data[meetingUID], &meeting)
	meeting.UpdatedAt = &at
	raw, _ := json.Marshal(&meeting)
	f.data[meetingUID] = raw
}

// fakeBotRegistrationRepository mirrors fakeMeetingRepository for bot
// registrations.
type fakeBotRegistrationRepository struct {
	mu        sync.Mutex
	data      map[string][]byte
	revisions map[string]uint64
}

func newFakeBotRegistrationRepository() *fakeBotRegistrationRepository {
	return &fakeBotRegistrationRepository{
		data:      make(map[string][]byte),
		revisions: make(map[string]uint64),
	}
}

func (f *fakeBotRegistrationRepository) Create(ctx context.Context, registration *models.BotRegistration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now().UTC()
	registration.CreatedAt = &now
	registration.UpdatedAt = &now
	raw, err := json.Marshal(registration)
	if err != nil {
		return domain.NewInternalError("marshal", err)
	}
	f.data[registration.BotUID] = raw
	f.revisions[registration.BotUID]++
	return nil
}

func (f *fakeBotRegistrationRepository) Exists(ctx context.Context, botUID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.data[botUID]
	return ok, nil
}

func (f *fakeBotRegistrationRepository) Get(ctx context.Context, botUID string) (*models.BotRegistration, error) {
	registration, _, err := f.GetWithRevision(ctx, botUID)
	return registration, err
}

func (f *fakeBotRegistrationRepository) GetWithRevision(ctx context.Context, botUID string) (*models.BotRegistration, uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	raw, ok := f.data[botUID]
	if !ok {
		return nil, 0, domain.NewNotFoundError("bot registration not found")
	}
	var registration models.BotRegistration
	if err := json.Unmarshal(raw, &registration); err != nil {
		return nil, 0, domain.NewInternalError("unmarshal", err)
	}
	return &registration, f.revisions[botUID], nil
}

func (f *fakeBotRegistrationRepository) Update(ctx context.Context, registration *models.BotRegistration, revision uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	current, ok := f.revisions[registration.BotUID]
	if !ok {
		return domain.NewNotFoundError("bot registration not found")
	}
	if current != revision {
		return domain.NewConflictError("bot registration has been modified")
	}
	now := time.Now().UTC()
	registration.UpdatedAt = &now
	raw, err := json.Marshal(registration)
	if err != nil {
		return domain.NewInternalError("marshal", err)
	}
	f.data[registration.BotUID] = raw
	f.revisions[registration.BotUID] = current + 1
	return nil
}

func (f *fakeBotRegistrationRepository) ListAll(ctx context.Context) ([]*models.BotRegistration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	registrations := make([]*models.BotRegistration, 0, len(f.data))
	for _, raw := range f.data {
		var registration models.BotRegistration
		if err := json.Unmarshal(raw, &registration); err != nil {
			return nil, domain.NewInternalError("unmarshal", err)
		}
		registrations = append(registrations, &registration)
	}
	return registrations, nil
}
