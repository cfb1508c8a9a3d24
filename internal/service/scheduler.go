// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/linuxfoundation/lfx-v2-twin-attendant-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-twin-attendant-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-twin-attendant-service/internal/logging"
	"github.com/linuxfoundation/lfx-v2-twin-attendant-service/internal/telemetry"
	"github.com/linuxfoundation/lfx-v2-twin-attendant-service/pkg/concurrent"
)

// AutoJoinScheduler periodically sweeps the meeting bucket and dispatches
// join attempts for meetings entering their join window.
type AutoJoinScheduler struct {
	MeetingRepository domain.MeetingRepository
	MeetingService    *MeetingService
	Orchestrator      *JoinOrchestrator
	Config            ServiceConfig

	pool *concurrent.WorkerPool
	// inflight tracks dispatched join batches so shutdown can drain them.
	inflight sync.WaitGroup
	// now is swappable for tests.
	now func() time.Time
}

// NewAutoJoinScheduler creates a new AutoJoinScheduler.
func NewAutoJoinScheduler(
	meetingRepository domain.MeetingRepository,
	meetingService *MeetingService,
	orchestrator *JoinOrchestrator,
	config ServiceConfig,
) *AutoJoinScheduler {
	config = config.withDefaults()
	return &AutoJoinScheduler{
		MeetingRepository: meetingRepository,
		MeetingService:    meetingService,
		Orchestrator:      orchestrator,
		Config:            config,
		pool:              concurrent.NewWorkerPool(config.JoinWorkers),
		now:               time.Now,
	}
}

// Start runs the sweep loop until the context is cancelled. A sweep runs
// immediately at startup so meetings are picked up without waiting a full
// interval after a restart.
func (s *AutoJoinScheduler) Start(ctx context.Context) {
	slog.InfoContext(ctx, "auto-join scheduler started",
		"check_interval", s.Config.CheckInterval.String(),
		"join_advance", s.Config.JoinAdvance.String())

	s.Sweep(ctx)

	ticker := time.NewTicker(s.Config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.inflight.Wait()
			slog.InfoContext(ctx, "auto-join scheduler stopped")
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep scans all meetings once, claims those entering their join window,
// and dispatches join attempts for the claims it wins.
func (s *AutoJoinScheduler) Sweep(ctx context.Context) {
	startTime := s.now()
	defer func() { telemetry.ObserveSweep(time.Since(startTime)) }()

	meetings, err := s.MeetingRepository.ListAll(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "sweep failed to list meetings", logging.ErrKey, err)
		return
	}

	now := s.now()
	var jobs []func() error
	for _, meeting := range meetings {
		if !meeting.EligibleForAutoJoin() {
			continue
		}

		// An eligible meeting whose window has fully elapsed is left alone:
		// joining long after the start would surprise the participants more
		// than skipping does. It stays visible in the metric.
		if meeting.ScheduledTime.Before(now) {
			telemetry.Inc(telemetry.WindowMissedTotal)
			slog.WarnContext(ctx, "join window elapsed, skipping meeting",
				"meeting_uid", meeting.UID,
				"scheduled_time", meeting.ScheduledTime)
			continue
		}

		if !meeting.InJoinWindow(now, s.Config.JoinAdvance) {
			continue
		}

		jobs = append(jobs, s.claimAndJoin(ctx, meeting))
	}

	if len(jobs) == 0 {
		return
	}

	// Joins run in the background: a slow provider call must not stall the
	// ticker loop past the next meeting's window.
	slog.InfoContext(ctx, "dispatching join attempts", "count", len(jobs))
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		for _, err := range s.pool.RunAll(ctx, jobs...) {
			if domain.IsConflict(err) {
				// Another instance won the claim.
				continue
			}
			slog.ErrorContext(ctx, "join attempt failed", logging.ErrKey, err)
		}
	}()
}

// Wait blocks until every dispatched join attempt has finished.
func (s *AutoJoinScheduler) Wait() {
	s.inflight.Wait()
}

// claimAndJoin returns the job for one meeting: claim it, then orchestrate
// the join. A lost claim is a benign no-op.
func (s *AutoJoinScheduler) claimAndJoin(ctx context.Context, meeting *models.Meeting) func() error {
	meetingUID := meeting.UID
	return func() error {
		if _, err := s.MeetingService.ClaimForJoin(ctx, meetingUID); err != nil {
			return err
		}
		return s.Orchestrator.ExecuteJoin(ctx, meetingUID)
	}
}
