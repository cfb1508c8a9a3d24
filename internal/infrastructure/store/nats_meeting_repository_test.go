// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linuxfoundation/lfx-v2-twin-attendant-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-twin-attendant-service/internal/domain/models"
)

func newTestMeeting(uid string, status models.MeetingStatus) *models.Meeting {
	scheduled := time.Now().UTC().Add(30 * time.Minute)
	return &models.Meeting{
		UID:             uid,
		UserUID:         "user-1",
		Title:           "Weekly Sync",
		MeetingURL:      "https://zoom.us/j/123456789",
		Platform:        "zoom",
		ScheduledTime:   scheduled,
		DurationMinutes: 60,
		TwinUID:         "twin-1",
		Status:          status,
		AutoJoin:        true,
	}
}

func TestNatsMeetingRepositoryCreate(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name          string
		meeting       *models.Meeting
		expectError   bool
		expectedType  domain.ErrorType
		validateAfter func(t *testing.T, repo *NatsMeetingRepository)
	}{
		{
			name:    "creates meeting with timestamps",
			meeting: newTestMeeting("meeting-1", models.MeetingStatusScheduled),
			validateAfter: func(t *testing.T, repo *NatsMeetingRepository) {
				got, err := repo.Get(ctx, "meeting-1")
				require.NoError(t, err)
				assert.Equal(t, "meeting-1", got.UID)
				assert.Equal(t, models.MeetingStatusScheduled, got.Status)
				assert.NotNil(t, got.CreatedAt)
				assert.NotNil(t, got.UpdatedAt)
			},
		},
		{
			name:         "rejects missing UID",
			meeting:      &models.Meeting{Title: "No UID"},
			expectError:  true,
			expectedType: domain.ErrorTypeValidation,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			repo := NewNatsMeetingRepository(newMockNatsKeyValue())

			err := repo.Create(ctx, tc.meeting)
			if tc.expectError {
				require.Error(t, err)
				assert.Equal(t, tc.expectedType, domain.GetErrorType(err))
				return
			}
			require.NoError(t, err)
			if tc.validateAfter != nil {
				tc.validateAfter(t, repo)
			}
		})
	}
}

func TestNatsMeetingRepositoryGet(t *testing.T) {
	ctx := context.Background()
	repo := NewNatsMeetingRepository(newMockNatsKeyValue())

	require.NoError(t, repo.Create(ctx, newTestMeeting("meeting-1", models.MeetingStatusScheduled)))

	t.Run("existing meeting", func(t *testing.T) {
		meeting, revision, err := repo.GetWithRevision(ctx, "meeting-1")
		require.NoError(t, err)
		assert.Equal(t, "meeting-1", meeting.UID)
		assert.Equal(t, uint64(1), revision)
	})

	t.Run("missing meeting returns not found", func(t *testing.T) {
		_, err := repo.Get(ctx, "missing")
		require.Error(t, err)
		assert.True(t, domain.IsNotFound(err))
	})

	t.Run("exists", func(t *testing.T) {
		exists, err := repo.Exists(ctx, "meeting-1")
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = repo.Exists(ctx, "missing")
		require.NoError(t, err)
		assert.False(t, exists)
	})
}

func TestNatsMeetingRepositoryUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("update with current revision succeeds", func(t *testing.T) {
		repo := NewNatsMeetingRepository(newMockNatsKeyValue())
		require.NoError(t, repo.Create(ctx, newTestMeeting("meeting-1", models.MeetingStatusScheduled)))

		meeting, revision, err := repo.GetWithRevision(ctx, "meeting-1")
		require.NoError(t, err)

		meeting.Status = models.MeetingStatusJoining
		require.NoError(t, repo.Update(ctx, meeting, revision))

		got, newRevision, err := repo.GetWithRevision(ctx, "meeting-1")
		require.NoError(t, err)
		assert.Equal(t, models.MeetingStatusJoining, got.Status)
		assert.Equal(t, revision+1, newRevision)
	})

	t.Run("update with stale revision returns conflict", func(t *testing.T) {
		repo := NewNatsMeetingRepository(newMockNatsKeyValue())
		require.NoError(t, repo.Create(ctx, newTestMeeting("meeting-1", models.MeetingStatusScheduled)))

		meeting, revision, err := repo.GetWithRevision(ctx, "meeting-1")
		require.NoError(t, err)

		meeting.Status = models.MeetingStatusJoining
		require.NoError(t, repo.Update(ctx, meeting, revision))

		// Second writer still holds the old revision.
		stale := newTestMeeting("meeting-1", models.MeetingStatusJoining)
		err = repo.Update(ctx, stale, revision)
		require.Error(t, err)
		assert.True(t, domain.IsConflict(err))
	})

	t.Run("update of missing meeting returns not found", func(t *testing.T) {
		repo := NewNatsMeetingRepository(newMockNatsKeyValue())
		err := repo.Update(ctx, newTestMeeting("missing", models.MeetingStatusScheduled), 1)
		require.Error(t, err)
		assert.True(t, domain.IsNotFound(err))
	})
}

// Two sweepers read the same meeting at the same revision and both try to
// claim it. Exactly one conditional update can win.
func TestNatsMeetingRepositoryClaimRace(t *testing.T) {
	ctx := context.Background()
	repo := NewNatsMeetingRepository(newMockNatsKeyValue())
	require.NoError(t, repo.Create(ctx, newTestMeeting("meeting-1", models.MeetingStatusScheduled)))

	first, revision, err := repo.GetWithRevision(ctx, "meeting-1")
	require.NoError(t, err)
	second, sameRevision, err := repo.GetWithRevision(ctx, "meeting-1")
	require.NoError(t, err)
	require.Equal(t, revision, sameRevision)

	first.Status = models.MeetingStatusJoining
	second.Status = models.MeetingStatusJoining

	errFirst := repo.Update(ctx, first, revision)
	errSecond := repo.Update(ctx, second, sameRevision)

	require.NoError(t, errFirst)
	require.Error(t, errSecond)
	assert.True(t, domain.IsConflict(errSecond))

	got, err := repo.Get(ctx, "meeting-1")
	require.NoError(t, err)
	assert.Equal(t, models.MeetingStatusJoining, got.Status)
}

func TestNatsMeetingRepositoryListAll(t *testing.T) {
	ctx := context.Background()
	repo := NewNatsMeetingRepository(newMockNatsKeyValue())

	require.NoError(t, repo.Create(ctx, newTestMeeting("meeting-1", models.MeetingStatusScheduled)))
	require.NoError(t, repo.Create(ctx, newTestMeeting("meeting-2", models.MeetingStatusCompleted)))

	meetings, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, meetings, 2)

	uids := make(map[string]bool)
	for _, m := range meetings {
		uids[m.UID] = true
	}
	assert.True(t, uids["meeting-1"])
	assert.True(t, uids["meeting-2"])
}

func TestNatsMeetingRepositoryNotReady(t *testing.T) {
	ctx := context.Background()
	repo := NewNatsMeetingRepository(nil)

	_, err := repo.Get(ctx, "meeting-1")
	require.Error(t, err)
	assert.Equal(t, domain.ErrorTypeUnavailable, domain.GetErrorType(err))

	err = repo.Create(ctx, newTestMeeting("meeting-1", models.MeetingStatusScheduled))
	require.Error(t, err)
	assert.Equal(t, domain.ErrorTypeUnavailable, domain.GetErrorType(err))
}
