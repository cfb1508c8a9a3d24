// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package models

import (
	"time"
)

// MeetingStatus is the lifecycle status of a meeting.
type MeetingStatus string

// Meeting lifecycle statuses. Transitions only move along the directed edges
// of the lifecycle: scheduled -> joining -> in_progress -> completed, with
// joining -> scheduled as the retry edge on provisioning failure.
const (
	// MeetingStatusScheduled is the initial status of a meeting.
	MeetingStatusScheduled MeetingStatus = "scheduled"
	// MeetingStatusJoining marks a meeting claimed by a join attempt. The
	// status doubles as a mutual-exclusion lock: only one writer can move a
	// meeting from scheduled to joining.
	MeetingStatusJoining MeetingStatus = "joining"
	// MeetingStatusInProgress means a bot was provisioned and is attending.
	MeetingStatusInProgress MeetingStatus = "in_progress"
	// MeetingStatusCompleted is the terminal status of a meeting.
	MeetingStatusCompleted MeetingStatus = "completed"
	// MeetingStatusFailed marks a meeting that permanently failed.
	MeetingStatusFailed MeetingStatus = "failed"
	// MeetingStatusCancelled is the terminal status for user-cancelled meetings.
	MeetingStatusCancelled MeetingStatus = "cancelled"
)

// IsTerminal reports whether the status allows no further transitions.
func (s MeetingStatus) IsTerminal() bool {
	return s == MeetingStatusCompleted || s == MeetingStatusCancelled
}

// Meeting is the key-value store representation of a meeting occurrence that
// a digital twin is expected to attend.
type Meeting struct {
	UID             string        `json:"uid"`
	UserUID         string        `json:"user_uid"`
	Title           string        `json:"title,omitempty"`
	Description     string        `json:"description,omitempty"`
	MeetingURL      string        `json:"meeting_url"`
	Platform        string        `json:"platform"`
	ScheduledTime   time.Time     `json:"scheduled_time"`
	DurationMinutes int           `json:"duration_minutes"`
	TwinUID         string        `json:"twin_uid,omitempty"`
	BotUID          string        `json:"bot_uid,omitempty"`
	Status          MeetingStatus `json:"status"`
	AutoJoin        bool          `json:"auto_join"`
	Transcript      string        `json:"transcript,omitempty"`
	Summary         string        `json:"summary,omitempty"`
	Participants    []string      `json:"participants,omitempty"`
	// BotDisplayName and BotAvatarURL carry the twin's presentation
	// preferences, written by the web layer alongside the twin assignment.
	// Empty values fall back to the service-wide defaults.
	BotDisplayName string `json:"bot_display_name,omitempty"`
	BotAvatarURL   string `json:"bot_avatar_url,omitempty"`
	// LastJoinError records the most recent provisioning failure so that
	// retries are observable without digging through logs.
	LastJoinError string `json:"last_join_error,omitempty"`
	// SummaryError is set when summarization failed after the transcript was
	// persisted; the meeting still completes and can be reprocessed later.
	SummaryError     string     `json:"summary_error,omitempty"`
	CalendarEventUID string     `json:"calendar_event_uid,omitempty"`
	CreatedAt        *time.Time `json:"created_at,omitempty"`
	UpdatedAt        *time.Time `json:"updated_at,omitempty"`
}

// EndTime returns the scheduled end of the meeting.
func (m *Meeting) EndTime() time.Time {
	return m.ScheduledTime.Add(time.Duration(m.DurationMinutes) * time.Minute)
}

// EligibleForAutoJoin reports whether the scheduler should consider the
// meeting at all, independent of the join window.
func (m *Meeting) EligibleForAutoJoin() bool {
	return m.AutoJoin &&
		m.Status == MeetingStatusScheduled &&
		m.TwinUID != "" &&
		m.MeetingURL != ""
}

// InJoinWindow reports whether the meeting's start time falls within
// [now, now+advance). Meetings whose window has already elapsed are excluded
// on purpose: the scheduler silently skips them rather than failing them.
func (m *Meeting) InJoinWindow(now time.Time, advance time.Duration) bool {
	return !m.ScheduledTime.Before(now) && m.ScheduledTime.Before(now.Add(advance))
}
